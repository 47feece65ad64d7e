package models

import "time"

// ScheduleKind is the recurring delivery policy of a customer.
type ScheduleKind string

const (
	ScheduleDaily     ScheduleKind = "daily"
	ScheduleAlternate ScheduleKind = "alternate"
	ScheduleCustom    ScheduleKind = "custom"
)

// Weekdays lists the accepted custom-day names in calendar order.
var Weekdays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// SchedulePolicy is embedded in a customer profile. CustomDays is only
// populated for the custom kind. AnchorDate is the reference day for
// alternate-day policies; it is optional and only read in anchored mode.
type SchedulePolicy struct {
	Kind       ScheduleKind `json:"type"`
	CustomDays []string     `json:"custom_days,omitempty"`
	AnchorDate *time.Time   `json:"anchor_date,omitempty"`
}

type Address struct {
	Flat     string `json:"flat,omitempty"`
	Building string `json:"building,omitempty"`
	Society  string `json:"society,omitempty"`
	Area     string `json:"area,omitempty"`
	City     string `json:"city,omitempty"`
	Pincode  string `json:"pincode,omitempty"`
	Landmark string `json:"landmark,omitempty"`
}

// Customer is the delivery-relevant profile of one customer. JarBalance may
// go negative when the customer owes jars.
type Customer struct {
	ID                   int             `json:"id"`
	Name                 string          `json:"name"`
	Mobile               string          `json:"mobile"`
	WhatsApp             string          `json:"whatsapp,omitempty"`
	Address              Address         `json:"address"`
	RouteID              *int            `json:"route_id"`
	Schedule             *SchedulePolicy `json:"delivery_schedule"`
	SecurityDeposit      float64         `json:"security_deposit"`
	JarBalance           int             `json:"jar_balance"`
	DeliveryInstructions string          `json:"delivery_instructions,omitempty"`
	IsActive             bool            `json:"is_active"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// UpdateScheduleRequest represents the request body for changing a delivery schedule
type UpdateScheduleRequest struct {
	Type       string   `json:"type"`
	CustomDays []string `json:"custom_days"`
	AnchorDate string   `json:"anchor_date,omitempty"` // YYYY-MM-DD, alternate only
}

// UpdateStatusRequest toggles a customer's active flag
type UpdateStatusRequest struct {
	IsActive *bool `json:"is_active"`
}

// UpdateJarBalanceRequest is an admin correction of the running jar balance.
// Negative means the customer owes jars.
type UpdateJarBalanceRequest struct {
	JarBalance *int `json:"jar_balance"`
}

// AssignRouteRequest assigns (or clears, when nil) a customer's route
type AssignRouteRequest struct {
	RouteID *int `json:"route_id"`
}
