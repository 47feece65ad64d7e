package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aquagem-backend/internal/models"
)

func TestSuccessRate(t *testing.T) {
	assert.Equal(t, 0.0, SuccessRate(0, 0))
	assert.Equal(t, 66.67, SuccessRate(2, 3))
	assert.Equal(t, 100.0, SuccessRate(4, 4))
}

func TestLedgerByRoute(t *testing.T) {
	routeOf := map[int]*int{1: intPtr(1), 2: intPtr(2), 3: nil, 4: intPtr(42)}
	deliveries := []*models.Delivery{
		delivery(1, 1, models.DeliveryDelivered, tuesday),
		delivery(2, 1, models.DeliveryNotDelivered, wednesday),
		delivery(3, 1, models.DeliveryDelivered, wednesday),
		delivery(4, 2, models.DeliveryPartial, tuesday),
		delivery(5, 3, models.DeliveryDelivered, tuesday),
		delivery(6, 4, models.DeliveryDelivered, tuesday),
		delivery(7, 9, models.DeliveryDelivered, tuesday),
		nil,
	}

	stats, anomalies := LedgerByRoute(deliveries, routeOf, routes(), false)

	require.Len(t, stats, 3)
	assert.Equal(t, "North", stats[0].RouteName)
	assert.Equal(t, 3, stats[0].Total)
	assert.Equal(t, 66.67, stats[0].SuccessRate)
	assert.Equal(t, models.UnassignedRoute, stats[1].RouteName)
	assert.Equal(t, 3, stats[1].Total)
	assert.Equal(t, "South", stats[2].RouteName)
	assert.Equal(t, 0.0, stats[2].SuccessRate)
	assert.Equal(t, 3, anomalies)

	stats, _ = LedgerByRoute(nil, routeOf, routes(), true)
	assert.Len(t, stats, 4)
}

func TestLedgerByAgent(t *testing.T) {
	deliveries := []*models.Delivery{
		{ID: 1, CustomerID: 1, DeliveryBoyID: 200, Status: models.DeliveryDelivered, Date: tuesday},
		{ID: 2, CustomerID: 2, DeliveryBoyID: 200, Status: models.DeliveryPartial, Date: tuesday},
		{ID: 3, CustomerID: 3, DeliveryBoyID: 300, Status: models.DeliveryDelivered, Date: tuesday},
	}

	stats := LedgerByAgent(deliveries, agents())

	require.Len(t, stats, 3)
	assert.Equal(t, "Suresh", stats[0].DeliveryBoy.Name)
	assert.Equal(t, 50.0, stats[0].SuccessRate)
	assert.Equal(t, 300, stats[1].DeliveryBoy.ID)
	assert.Equal(t, 100, stats[2].DeliveryBoy.ID)
	assert.Equal(t, 0, stats[2].Total)
	assert.Equal(t, 0.0, stats[2].SuccessRate)
}

func TestLedgerByDay_ZeroFilledMostRecentFirst(t *testing.T) {
	deliveries := []*models.Delivery{
		delivery(1, 1, models.DeliveryDelivered, tuesday.Add(20*time.Hour)),
		delivery(2, 2, models.DeliveryNotDelivered, tuesday.AddDate(0, 0, 2)),
		delivery(3, 3, models.DeliveryDelivered, tuesday.AddDate(0, 0, 5)),
	}

	days := LedgerByDay(deliveries, tuesday, tuesday.AddDate(0, 0, 3))

	require.Len(t, days, 4)
	assert.Equal(t, "2026-01-09", days[0].Date)
	assert.Equal(t, 0, days[0].Total)
	assert.Equal(t, "2026-01-08", days[1].Date)
	assert.Equal(t, 1, days[1].NotDelivered)
	assert.Equal(t, 0, days[2].Total)
	assert.Equal(t, "2026-01-06", days[3].Date)
	assert.Equal(t, 100.0, days[3].SuccessRate)

	assert.Empty(t, LedgerByDay(nil, wednesday, tuesday))
}

func TestStats(t *testing.T) {
	deliveries := []*models.Delivery{
		{ID: 1, CustomerID: 1, Status: models.DeliveryDelivered, DeliveredQty: 3, ReturnedQty: 1, Date: tuesday},
		{ID: 2, CustomerID: 2, Status: models.DeliveryPartial, DeliveredQty: 1, Date: tuesday},
		{ID: 3, CustomerID: 3, Status: models.DeliveryNotDelivered, Date: wednesday},
	}

	st := Stats(deliveries, time.Time{}, time.Time{})

	assert.Equal(t, 3, st.TotalDeliveries)
	assert.Equal(t, 33.33, st.SuccessRate)
	assert.Equal(t, 33.33, st.PartialRate)
	assert.Equal(t, 33.33, st.FailureRate)
	assert.Equal(t, 4, st.TotalJarsDelivered)
	assert.Equal(t, 3, st.NetJars)
	assert.Equal(t, 1.33, st.AvgJarsDelivered)
	require.Len(t, st.Daily, 2)
	assert.Equal(t, "2026-01-07", st.Daily[0].Date)

	empty := Stats(nil, time.Time{}, time.Time{})
	assert.Equal(t, 0.0, empty.SuccessRate)
	assert.NotNil(t, empty.Daily)
}

func TestPerformance(t *testing.T) {
	agent := models.AgentRef{ID: 1, Name: "Ravi"}
	var deliveries []*models.Delivery
	for i := 0; i < 5; i++ {
		deliveries = append(deliveries, delivery(i+1, i+1, models.DeliveryDelivered, tuesday.Add(time.Duration(i)*time.Hour)))
	}
	for i := 0; i < 6; i++ {
		d := delivery(10+i, 20+i, models.DeliveryNotDelivered, wednesday.Add(time.Duration(i)*time.Hour))
		d.Notes = "door locked " + string(rune('a'+i))
		deliveries = append(deliveries, d)
	}
	other := delivery(99, 1, models.DeliveryDelivered, tuesday)
	other.DeliveryBoyID = 2
	deliveries = append(deliveries, other)

	p := Performance(agent, deliveries)

	assert.Equal(t, 11, p.TotalDeliveries)
	assert.Equal(t, 5, p.Successful)
	assert.Equal(t, 6, p.Failed)
	assert.Equal(t, 45.45, p.SuccessRate)
	assert.Equal(t, 2, p.ActiveDays)
	assert.Equal(t, 5.5, p.AvgDeliveriesPerDay)
	require.Len(t, p.RecentFeedback, 5)
	assert.Equal(t, "door locked f", p.RecentFeedback[0])

	none := Performance(agent, nil)
	assert.Equal(t, 0.0, none.AvgDeliveriesPerDay)
	assert.NotNil(t, none.RecentFeedback)
}

func TestAlerts(t *testing.T) {
	now := tuesday.Add(12 * time.Hour)
	today := []*models.Delivery{
		{ID: 1, CustomerID: 1, DeliveryBoyID: 100, Status: models.DeliveryPartial, Date: now},
		{ID: 2, CustomerID: 2, DeliveryBoyID: 100, Status: models.DeliveryNotDelivered, Date: now},
	}

	alerts := Alerts(today, routes(), agents(), now, 10)

	require.Len(t, alerts, 3)
	assert.Equal(t, "delivery_failed", alerts[0].Type)
	assert.Equal(t, "no_activity", alerts[1].Type)
	assert.Equal(t, 200, alerts[1].AgentID)
	assert.Contains(t, alerts[1].Message, "Suresh")
	assert.Equal(t, "partial_delivery", alerts[2].Type)

	early := Alerts(today, routes(), agents(), tuesday.Add(8*time.Hour), 10)
	assert.Len(t, early, 2)
}
