package models

// RouteProgress is the reconciled progress of one route for a date.
// Completed counts every recorded attempt; Failed counts not_delivered only.
type RouteProgress struct {
	RouteID     *int      `json:"route_id"`
	RouteName   string    `json:"route_name"`
	DeliveryBoy *AgentRef `json:"delivery_boy"`
	Scheduled   int       `json:"scheduled"`
	Completed   int       `json:"completed"`
	Pending     int       `json:"pending"`
	Failed      int       `json:"failed"`
	Percentage  int       `json:"percentage"`
}

// AgentProgress is the reconciled progress of one delivery boy for a date.
type AgentProgress struct {
	DeliveryBoy AgentRef `json:"delivery_boy"`
	Scheduled   int      `json:"scheduled"`
	Completed   int      `json:"completed"`
	Pending     int      `json:"pending"`
	Failed      int      `json:"failed"`
	Percentage  int      `json:"percentage"`
}

// OperationsSummary is the scalar view of one day's reconciliation.
type OperationsSummary struct {
	TotalScheduled      int `json:"total_scheduled"`
	Completed           int `json:"completed"`
	Delivered           int `json:"delivered"`
	Failed              int `json:"failed"`
	Partial             int `json:"partial"`
	Pending             int `json:"pending"`
	TotalAttempted      int `json:"total_attempted"`
	UnscheduledAttempts int `json:"unscheduled_attempts"`
	Skipped             int `json:"skipped"`
}

// DashboardResponse is today's operations dashboard.
type DashboardResponse struct {
	Date               string            `json:"date"`
	Summary            OperationsSummary `json:"summary"`
	ActiveDeliveryBoys int               `json:"active_delivery_boys"`
	RouteStatus        []RouteProgress   `json:"route_status"`
}

// AgentTodayStats summarises one agent's list for today.
type AgentTodayStats struct {
	Total          int     `json:"total"`
	Completed      int     `json:"completed"`
	Pending        int     `json:"pending"`
	CompletionRate float64 `json:"completion_rate"`
}

// AgentTodayResponse is one agent's reconciled list for today.
type AgentTodayResponse struct {
	DeliveryBoy AgentRef        `json:"delivery_boy"`
	Route       *Route          `json:"route"`
	Tasks       []ScheduledTask `json:"tasks"`
	Stats       AgentTodayStats `json:"stats"`
}

// LedgerCounts are outcome counters over historical delivery records.
type LedgerCounts struct {
	Total         int     `json:"total_deliveries"`
	Delivered     int     `json:"delivered"`
	NotDelivered  int     `json:"not_delivered"`
	Partial       int     `json:"partial"`
	TotalJars     int     `json:"total_jars_delivered"`
	TotalReturned int     `json:"total_jars_returned"`
	SuccessRate   float64 `json:"success_rate"`
}

// RouteLedgerStats is ledger-only aggregation for one route.
type RouteLedgerStats struct {
	RouteID   *int   `json:"route_id"`
	RouteName string `json:"route_name"`
	LedgerCounts
}

// AgentLedgerStats is ledger-only aggregation for one delivery boy.
type AgentLedgerStats struct {
	DeliveryBoy AgentRef `json:"delivery_boy"`
	LedgerCounts
}

// DailyLedgerStats is ledger-only aggregation for one calendar day.
type DailyLedgerStats struct {
	Date string `json:"date"`
	LedgerCounts
}

// DeliveryStats is the aggregate over a filtered ledger range.
type DeliveryStats struct {
	TotalDeliveries    int                `json:"total_deliveries"`
	Delivered          int                `json:"delivered"`
	NotDelivered       int                `json:"not_delivered"`
	Partial            int                `json:"partial"`
	SuccessRate        float64            `json:"success_rate"`
	PartialRate        float64            `json:"partial_rate"`
	FailureRate        float64            `json:"failure_rate"`
	TotalJarsDelivered int                `json:"total_jars_delivered"`
	TotalJarsReturned  int                `json:"total_jars_returned"`
	NetJars            int                `json:"net_jars"`
	AvgJarsDelivered   float64            `json:"avg_jars_delivered"`
	AvgJarsReturned    float64            `json:"avg_jars_returned"`
	Daily              []DailyLedgerStats `json:"daily_breakdown"`
}

// AgentPerformance is the historical performance of one delivery boy.
type AgentPerformance struct {
	DeliveryBoy         AgentRef `json:"delivery_boy"`
	TotalDeliveries     int      `json:"total_deliveries"`
	Successful          int      `json:"successful_deliveries"`
	Failed              int      `json:"failed_deliveries"`
	Partial             int      `json:"partial_deliveries"`
	SuccessRate         float64  `json:"success_rate"`
	TotalJarsDelivered  int      `json:"total_jars_delivered"`
	TotalJarsReturned   int      `json:"total_jars_returned"`
	ActiveDays          int      `json:"active_days"`
	AvgDeliveriesPerDay float64  `json:"avg_deliveries_per_day"`
	RecentFeedback      []string `json:"recent_feedback"`
}

// Alert severities
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// Alert is one operational alert for today.
type Alert struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	CustomerID int    `json:"customer_id,omitempty"`
	AgentID    int    `json:"delivery_boy_id,omitempty"`
	DeliveryID int    `json:"delivery_id,omitempty"`
}

// RouteFilter narrows a directory read. An empty filter selects all routes.
type RouteFilter struct {
	RouteIDs   []int
	Unassigned bool // customers with no route
}

// IsEmpty reports whether the filter selects everything.
func (f RouteFilter) IsEmpty() bool {
	return len(f.RouteIDs) == 0 && !f.Unassigned
}

// Matches reports whether a customer's route satisfies the filter.
func (f RouteFilter) Matches(routeID *int) bool {
	if f.IsEmpty() {
		return true
	}
	if routeID == nil {
		return f.Unassigned
	}
	for _, id := range f.RouteIDs {
		if id == *routeID {
			return true
		}
	}
	return false
}
