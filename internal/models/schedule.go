package models

import "time"

// TaskStatus is the reconciled state of a scheduled task.
type TaskStatus string

const (
	TaskPending      TaskStatus = "pending"
	TaskDelivered    TaskStatus = TaskStatus(DeliveryDelivered)
	TaskNotDelivered TaskStatus = TaskStatus(DeliveryNotDelivered)
	TaskPartial      TaskStatus = TaskStatus(DeliveryPartial)
)

// UnassignedRoute is the bucket name for tasks without a route.
const UnassignedRoute = "Unassigned"

// TaskCustomer is the customer projection carried on a task.
type TaskCustomer struct {
	ID                   int             `json:"id"`
	Name                 string          `json:"name"`
	Mobile               string          `json:"mobile"`
	Address              Address         `json:"address"`
	JarBalance           int             `json:"jar_balance"`
	Schedule             *SchedulePolicy `json:"delivery_schedule,omitempty"`
	DeliveryInstructions string          `json:"delivery_instructions,omitempty"`
}

// ScheduledTask is one due customer for a date, joined against the ledger.
// It is derived and never persisted.
type ScheduledTask struct {
	Customer TaskCustomer `json:"customer"`
	RouteID  *int         `json:"route_id"`
	Due      bool         `json:"due"`
	Status   TaskStatus   `json:"status"`
	Delivery *Delivery    `json:"delivery,omitempty"`
}

// IsPending reports whether no attempt has been recorded for the task.
func (t *ScheduledTask) IsPending() bool {
	return t.Status == TaskPending
}

// ManifestEntry is one line of a planned manifest (before reconciliation).
type ManifestEntry struct {
	Customer  TaskCustomer `json:"customer"`
	RouteID   *int         `json:"route_id"`
	RouteName string       `json:"route_name"`
}

// RouteTaskGroup groups reconciled tasks under one route.
type RouteTaskGroup struct {
	RouteID     *int            `json:"route_id"`
	RouteName   string          `json:"route_name"`
	DeliveryBoy *AgentRef       `json:"delivery_boy"`
	Tasks       []ScheduledTask `json:"tasks"`
	Count       int             `json:"count"`
}

// AgentRef is the minimal projection of a delivery boy.
type AgentRef struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
}

// ScheduleMeta describes a schedule response.
type ScheduleMeta struct {
	Date              string `json:"date"`
	Day               string `json:"day"`
	TotalRoutesActive int    `json:"total_routes_active"`
	TotalDeliveries   int    `json:"total_deliveries"`
	Skipped           int    `json:"skipped"`
}

// ScheduleResponse is the per-route schedule for a date.
type ScheduleResponse struct {
	Groups []RouteTaskGroup `json:"groups"`
	Meta   ScheduleMeta     `json:"meta"`
}

// ManifestResponse is the planned manifest for a date.
type ManifestResponse struct {
	Date        string          `json:"date"`
	Day         string          `json:"day"`
	Entries     []ManifestEntry `json:"entries"`
	Total       int             `json:"total"`
	GeneratedAt time.Time       `json:"generated_at"`
	ArchiveURL  string          `json:"archive_url,omitempty"`
}
