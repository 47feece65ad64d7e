package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquagem-backend/internal/models"
)

func TestReconcile_CustomDayNotDueProducesNoTask(t *testing.T) {
	e := NewEngine(Resolver{})
	res := e.Reconcile([]*models.Customer{customer(1, nil, custom("Mon", "Wed", "Fri"))}, nil, tuesday)

	assert.Empty(t, res.Tasks)
	assert.Equal(t, 1, res.ActiveCount)
	assert.Equal(t, 0, res.DueCount)
	assert.Equal(t, 1, res.NotDueCount)
}

func TestReconcile_DueWithoutRecordIsPending(t *testing.T) {
	e := NewEngine(Resolver{})
	res := e.Reconcile([]*models.Customer{customer(1, nil, custom("Mon", "Wed", "Fri"))}, nil, wednesday)

	require.Len(t, res.Tasks, 1)
	assert.Equal(t, models.TaskPending, res.Tasks[0].Status)
	assert.Nil(t, res.Tasks[0].Delivery)
	assert.True(t, res.Tasks[0].Due)
}

func TestReconcile_RecordOutcomeBecomesStatus(t *testing.T) {
	e := NewEngine(Resolver{})
	d := delivery(10, 1, models.DeliveryDelivered, wednesday.Add(11*time.Hour))
	d.DeliveredQty, d.ReturnedQty = 2, 1

	res := e.Reconcile([]*models.Customer{customer(1, nil, custom("Mon", "Wed", "Fri"))}, []*models.Delivery{d}, wednesday)

	require.Len(t, res.Tasks, 1)
	assert.Equal(t, models.TaskDelivered, res.Tasks[0].Status)
	assert.Equal(t, 1, res.Tasks[0].Delivery.NetJars())
	// the jar balance on the task is whatever the directory reported
	assert.Equal(t, 0, res.Tasks[0].Customer.JarBalance)
}

func TestReconcile_InactiveCustomersIgnored(t *testing.T) {
	e := NewEngine(Resolver{})
	inactive := customer(2, nil, daily())
	inactive.IsActive = false

	res := e.Reconcile([]*models.Customer{customer(1, nil, daily()), inactive}, nil, tuesday)

	require.Len(t, res.Tasks, 1)
	assert.Equal(t, 1, res.Tasks[0].Customer.ID)
	assert.Equal(t, 1, res.ActiveCount)
}

func TestReconcile_RecordsOutsideDayIgnored(t *testing.T) {
	e := NewEngine(Resolver{})
	deliveries := []*models.Delivery{
		delivery(1, 1, models.DeliveryDelivered, tuesday.Add(-time.Nanosecond)),
		delivery(2, 1, models.DeliveryDelivered, wednesday),
	}
	res := e.Reconcile([]*models.Customer{customer(1, nil, daily())}, deliveries, tuesday)

	require.Len(t, res.Tasks, 1)
	assert.Equal(t, models.TaskPending, res.Tasks[0].Status)
	assert.Equal(t, 0, res.UnscheduledAttempts)
}

func TestReconcile_DayBoundariesInclusive(t *testing.T) {
	e := NewEngine(Resolver{})
	deliveries := []*models.Delivery{
		delivery(1, 1, models.DeliveryDelivered, tuesday),
		delivery(2, 2, models.DeliveryPartial, wednesday.Add(-time.Millisecond)),
	}
	customers := []*models.Customer{customer(1, nil, daily()), customer(2, nil, daily())}

	res := e.Reconcile(customers, deliveries, tuesday)

	require.Len(t, res.Tasks, 2)
	assert.Equal(t, models.TaskDelivered, res.Tasks[0].Status)
	assert.Equal(t, models.TaskPartial, res.Tasks[1].Status)
}

func TestReconcile_DuplicateTieBreak(t *testing.T) {
	e := NewEngine(Resolver{})
	early := delivery(5, 1, models.DeliveryNotDelivered, tuesday.Add(9*time.Hour))
	late := delivery(3, 1, models.DeliveryDelivered, tuesday.Add(15*time.Hour))

	for _, order := range [][]*models.Delivery{{early, late}, {late, early}} {
		res := e.Reconcile([]*models.Customer{customer(1, nil, daily())}, order, tuesday)
		require.Len(t, res.Tasks, 1)
		assert.Equal(t, 3, res.Tasks[0].Delivery.ID, "most recently created record wins")
		assert.Equal(t, 1, res.DuplicateRecords)
	}
}

func TestReconcile_DuplicateTieBreakEqualCreatedAt(t *testing.T) {
	e := NewEngine(Resolver{})
	at := tuesday.Add(10 * time.Hour)
	a := delivery(7, 1, models.DeliveryPartial, at)
	b := delivery(9, 1, models.DeliveryDelivered, at)

	for _, order := range [][]*models.Delivery{{a, b}, {b, a}} {
		res := e.Reconcile([]*models.Customer{customer(1, nil, daily())}, order, tuesday)
		require.Len(t, res.Tasks, 1)
		assert.Equal(t, 9, res.Tasks[0].Delivery.ID, "higher id wins on equal creation time")
	}
}

func TestReconcile_PendingFirstStable(t *testing.T) {
	e := NewEngine(Resolver{})
	customers := []*models.Customer{
		customer(1, nil, daily()),
		customer(2, nil, daily()),
		customer(3, nil, daily()),
		customer(4, nil, daily()),
	}
	deliveries := []*models.Delivery{
		delivery(1, 1, models.DeliveryDelivered, tuesday.Add(time.Hour)),
		delivery(2, 3, models.DeliveryNotDelivered, tuesday.Add(time.Hour)),
	}

	res := e.Reconcile(customers, deliveries, tuesday)

	var ids []int
	for _, task := range res.Tasks {
		ids = append(ids, task.Customer.ID)
	}
	assert.Equal(t, []int{2, 4, 1, 3}, ids)
}

func TestReconcile_MalformedRecordsSkipped(t *testing.T) {
	e := NewEngine(Resolver{})
	customers := []*models.Customer{nil, customer(1, nil, daily())}
	deliveries := []*models.Delivery{
		nil,
		{ID: 2, Date: tuesday, Status: models.DeliveryDelivered},
		{ID: 3, CustomerID: 1, Date: tuesday, Status: "lost"},
	}

	res := e.Reconcile(customers, deliveries, tuesday)

	require.Len(t, res.Tasks, 1)
	assert.Equal(t, models.TaskPending, res.Tasks[0].Status)
	assert.Equal(t, 4, res.Skipped)
}

func TestReconcile_UnscheduledAttempts(t *testing.T) {
	e := NewEngine(Resolver{})
	customers := []*models.Customer{customer(1, nil, custom("Mon")), customer(2, nil, daily())}
	deliveries := []*models.Delivery{
		delivery(1, 1, models.DeliveryDelivered, tuesday.Add(time.Hour)),
		delivery(2, 99, models.DeliveryDelivered, tuesday.Add(time.Hour)),
	}

	res := e.Reconcile(customers, deliveries, tuesday)

	require.Len(t, res.Tasks, 1)
	assert.Equal(t, 2, res.UnscheduledAttempts)
}

func TestReconcile_ZeroDueIsEmptyNotNil(t *testing.T) {
	res := NewEngine(Resolver{}).Reconcile(nil, nil, tuesday)
	assert.NotNil(t, res.Tasks)
	assert.Empty(t, res.Tasks)
}

func TestReconcile_Idempotent(t *testing.T) {
	e := NewEngine(Resolver{})
	customers := []*models.Customer{
		customer(1, intPtr(1), daily()),
		customer(2, intPtr(1), custom("Tue")),
		customer(3, nil, custom("Wed")),
	}
	deliveries := []*models.Delivery{
		delivery(1, 2, models.DeliveryPartial, tuesday.Add(time.Hour)),
		delivery(2, 2, models.DeliveryDelivered, tuesday.Add(time.Hour)),
	}

	first := e.Reconcile(customers, deliveries, tuesday)
	second := e.Reconcile(customers, deliveries, tuesday)
	assert.Equal(t, first, second)
}

func TestReconcile_Completeness(t *testing.T) {
	e := NewEngine(Resolver{})
	var customers []*models.Customer
	policies := []*models.SchedulePolicy{daily(), custom("Mon"), custom("Tue", "Thu"), nil, custom(), {Kind: models.ScheduleAlternate}}
	for i := 0; i < 30; i++ {
		c := customer(i+1, nil, policies[i%len(policies)])
		c.IsActive = i%5 != 0
		customers = append(customers, c)
	}

	for day := 0; day < 7; day++ {
		target := tuesday.AddDate(0, 0, day)
		res := e.Reconcile(customers, nil, target)

		assert.Equal(t, res.ActiveCount, res.DueCount+res.NotDueCount)
		assert.Len(t, res.Tasks, res.DueCount)

		seen := map[int]bool{}
		for _, task := range res.Tasks {
			assert.False(t, seen[task.Customer.ID], "one task per customer")
			seen[task.Customer.ID] = true
			assert.Contains(t, []models.TaskStatus{models.TaskPending, models.TaskDelivered, models.TaskNotDelivered, models.TaskPartial}, task.Status)
		}
	}
}

func TestPlan(t *testing.T) {
	e := NewEngine(Resolver{})
	inactive := customer(3, nil, daily())
	inactive.IsActive = false

	due, skipped := e.Plan([]*models.Customer{customer(1, nil, custom("Wed")), customer(2, nil, daily()), inactive, nil}, tuesday)

	require.Len(t, due, 1)
	assert.Equal(t, 2, due[0].ID)
	assert.Equal(t, 1, skipped)
}
