package scheduling

import (
	"sort"
	"time"

	"aquagem-backend/internal/models"
	"aquagem-backend/internal/timeutil"
)

// Result is the outcome of reconciling one calendar day.
type Result struct {
	Date  time.Time
	Tasks []models.ScheduledTask

	ActiveCount int
	DueCount    int
	NotDueCount int

	// Skipped counts malformed input records: nil customers and deliveries
	// without a customer or with an unknown status.
	Skipped int
	// DuplicateRecords counts same-day records that lost the tie-break.
	DuplicateRecords int
	// UnscheduledAttempts counts same-day records for customers with no task.
	UnscheduledAttempts int
}

// Engine joins the due set for a date against the delivery ledger.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	Resolver Resolver
}

func NewEngine(resolver Resolver) *Engine {
	return &Engine{Resolver: resolver}
}

// Reconcile produces one task per due active customer, in input order with
// pending tasks first. When a customer has several records on the day, the
// most recently created one wins and equal creation times fall back to the
// higher record id.
func (e *Engine) Reconcile(customers []*models.Customer, deliveries []*models.Delivery, target time.Time) *Result {
	res := &Result{Date: timeutil.StartOfDay(target), Tasks: []models.ScheduledTask{}}

	due, skipped := e.dueCustomers(customers, target, res)
	res.Skipped += skipped

	byCustomer := make(map[int]*models.Delivery)
	for _, d := range deliveries {
		if d == nil || d.CustomerID <= 0 || !d.Status.Valid() {
			res.Skipped++
			continue
		}
		if !timeutil.SameDay(d.Date, target) {
			continue
		}
		current, ok := byCustomer[d.CustomerID]
		if !ok {
			byCustomer[d.CustomerID] = d
			continue
		}
		res.DuplicateRecords++
		if supersedes(d, current) {
			byCustomer[d.CustomerID] = d
		}
	}

	matched := make(map[int]bool, len(byCustomer))
	for _, c := range due {
		task := models.ScheduledTask{
			Customer: taskCustomer(c),
			RouteID:  c.RouteID,
			Due:      true,
			Status:   models.TaskPending,
		}
		if d, ok := byCustomer[c.ID]; ok {
			task.Delivery = d
			task.Status = models.TaskStatus(d.Status)
			matched[c.ID] = true
		}
		res.Tasks = append(res.Tasks, task)
	}
	for id := range byCustomer {
		if !matched[id] {
			res.UnscheduledAttempts++
		}
	}

	sort.SliceStable(res.Tasks, func(i, j int) bool {
		return res.Tasks[i].IsPending() && !res.Tasks[j].IsPending()
	})
	return res
}

// Plan returns the due active customers for a date without consulting the
// ledger. The second result counts skipped nil entries.
func (e *Engine) Plan(customers []*models.Customer, target time.Time) ([]*models.Customer, int) {
	return e.dueCustomers(customers, target, nil)
}

func (e *Engine) dueCustomers(customers []*models.Customer, target time.Time, res *Result) ([]*models.Customer, int) {
	var due []*models.Customer
	skipped := 0
	for _, c := range customers {
		if c == nil {
			skipped++
			continue
		}
		if !c.IsActive {
			continue
		}
		isDue := e.Resolver.IsDue(c.Schedule, target)
		if res != nil {
			res.ActiveCount++
			if isDue {
				res.DueCount++
			} else {
				res.NotDueCount++
			}
		}
		if isDue {
			due = append(due, c)
		}
	}
	return due, skipped
}

func supersedes(candidate, current *models.Delivery) bool {
	if !candidate.CreatedAt.Equal(current.CreatedAt) {
		return candidate.CreatedAt.After(current.CreatedAt)
	}
	return candidate.ID > current.ID
}

func taskCustomer(c *models.Customer) models.TaskCustomer {
	return models.TaskCustomer{
		ID:                   c.ID,
		Name:                 c.Name,
		Mobile:               c.Mobile,
		Address:              c.Address,
		JarBalance:           c.JarBalance,
		Schedule:             c.Schedule,
		DeliveryInstructions: c.DeliveryInstructions,
	}
}
