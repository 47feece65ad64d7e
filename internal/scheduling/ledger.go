package scheduling

import (
	"fmt"
	"sort"
	"time"

	"aquagem-backend/internal/models"
	"aquagem-backend/internal/timeutil"
)

// SuccessRate is delivered/total as a percent rounded to two decimals.
func SuccessRate(delivered, total int) float64 {
	if total <= 0 {
		return 0
	}
	return round2(float64(delivered) / float64(total) * 100)
}

func tally(c *models.LedgerCounts, d *models.Delivery) {
	c.Total++
	switch d.Status {
	case models.DeliveryDelivered:
		c.Delivered++
	case models.DeliveryNotDelivered:
		c.NotDelivered++
	case models.DeliveryPartial:
		c.Partial++
	}
	c.TotalJars += d.DeliveredQty
	c.TotalReturned += d.ReturnedQty
}

func validRecord(d *models.Delivery) bool {
	return d != nil && d.CustomerID > 0 && d.Status.Valid()
}

// LedgerByRoute attributes each record to its customer's route. Records for
// customers missing from routeOf, or whose route no longer exists, go to the
// unassigned bucket and are counted in the second result. Output is sorted
// by total attempts, largest first.
func LedgerByRoute(deliveries []*models.Delivery, routeOf map[int]*int, routes []*models.Route, includeEmpty bool) ([]models.RouteLedgerStats, int) {
	byID := make(map[int]*models.RouteLedgerStats, len(routes))
	out := make([]*models.RouteLedgerStats, 0, len(routes)+1)
	for _, r := range routes {
		if r == nil {
			continue
		}
		id := r.ID
		s := &models.RouteLedgerStats{RouteID: &id, RouteName: r.Name}
		byID[id] = s
		out = append(out, s)
	}
	unassigned := &models.RouteLedgerStats{RouteName: models.UnassignedRoute}

	anomalies := 0
	for _, d := range deliveries {
		if !validRecord(d) {
			anomalies++
			continue
		}
		s := unassigned
		routeID, known := routeOf[d.CustomerID]
		switch {
		case !known:
			anomalies++
		case routeID != nil:
			if rs, ok := byID[*routeID]; ok {
				s = rs
			} else {
				anomalies++
			}
		}
		tally(&s.LedgerCounts, d)
	}
	out = append(out, unassigned)

	result := make([]models.RouteLedgerStats, 0, len(out))
	for _, s := range out {
		if s.Total == 0 && !includeEmpty {
			continue
		}
		s.SuccessRate = SuccessRate(s.Delivered, s.Total)
		result = append(result, *s)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Total > result[j].Total })
	return result, anomalies
}

// LedgerByAgent counts records per delivery boy. Every agent in the index
// is reported; records by agents outside the index are reported under
// their id alone. Sorted by total attempts, then id.
func LedgerByAgent(deliveries []*models.Delivery, agents map[int]models.AgentRef) []models.AgentLedgerStats {
	byID := make(map[int]*models.AgentLedgerStats, len(agents))
	for id, ref := range agents {
		byID[id] = &models.AgentLedgerStats{DeliveryBoy: ref}
	}
	for _, d := range deliveries {
		if !validRecord(d) {
			continue
		}
		s, ok := byID[d.DeliveryBoyID]
		if !ok {
			s = &models.AgentLedgerStats{DeliveryBoy: models.AgentRef{ID: d.DeliveryBoyID}}
			byID[d.DeliveryBoyID] = s
		}
		tally(&s.LedgerCounts, d)
	}

	out := make([]models.AgentLedgerStats, 0, len(byID))
	for _, s := range byID {
		s.SuccessRate = SuccessRate(s.Delivered, s.Total)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].DeliveryBoy.ID < out[j].DeliveryBoy.ID
	})
	return out
}

// LedgerByDay reports every IST calendar day from..to inclusive, most
// recent first, zero-filled. Records outside the range are ignored.
func LedgerByDay(deliveries []*models.Delivery, from, to time.Time) []models.DailyLedgerStats {
	start, end := timeutil.StartOfDay(from), timeutil.StartOfDay(to)
	n := timeutil.DaysBetween(start, end) + 1
	if n <= 0 {
		return []models.DailyLedgerStats{}
	}

	out := make([]models.DailyLedgerStats, n)
	for i := range out {
		out[i].Date = timeutil.FormatIST(end.AddDate(0, 0, -i), timeutil.DateLayout)
	}
	for _, d := range deliveries {
		if !validRecord(d) {
			continue
		}
		i := timeutil.DaysBetween(d.Date, end)
		if i < 0 || i >= n {
			continue
		}
		tally(&out[i].LedgerCounts, d)
	}
	for i := range out {
		out[i].SuccessRate = SuccessRate(out[i].Delivered, out[i].Total)
	}
	return out
}

// Stats aggregates a ledger range. When from or to is zero the daily
// breakdown spans the days present in the records.
func Stats(deliveries []*models.Delivery, from, to time.Time) models.DeliveryStats {
	var c models.LedgerCounts
	var first, last time.Time
	for _, d := range deliveries {
		if !validRecord(d) {
			continue
		}
		tally(&c, d)
		if first.IsZero() || d.Date.Before(first) {
			first = d.Date
		}
		if last.IsZero() || d.Date.After(last) {
			last = d.Date
		}
	}
	if from.IsZero() {
		from = first
	}
	if to.IsZero() {
		to = last
	}

	st := models.DeliveryStats{
		TotalDeliveries:    c.Total,
		Delivered:          c.Delivered,
		NotDelivered:       c.NotDelivered,
		Partial:            c.Partial,
		SuccessRate:        SuccessRate(c.Delivered, c.Total),
		PartialRate:        SuccessRate(c.Partial, c.Total),
		FailureRate:        SuccessRate(c.NotDelivered, c.Total),
		TotalJarsDelivered: c.TotalJars,
		TotalJarsReturned:  c.TotalReturned,
		NetJars:            c.TotalJars - c.TotalReturned,
		Daily:              []models.DailyLedgerStats{},
	}
	if c.Total > 0 {
		st.AvgJarsDelivered = round2(float64(c.TotalJars) / float64(c.Total))
		st.AvgJarsReturned = round2(float64(c.TotalReturned) / float64(c.Total))
	}
	if !from.IsZero() && !to.IsZero() {
		st.Daily = LedgerByDay(deliveries, from, to)
	}
	return st
}

const recentFeedbackLimit = 5

// Performance summarises one agent's records. The average is per active
// day (a day with at least one attempt), rounded to one decimal.
func Performance(agent models.AgentRef, deliveries []*models.Delivery) models.AgentPerformance {
	p := models.AgentPerformance{DeliveryBoy: agent, RecentFeedback: []string{}}

	days := make(map[string]bool)
	var feedback []*models.Delivery
	for _, d := range deliveries {
		if !validRecord(d) || d.DeliveryBoyID != agent.ID {
			continue
		}
		p.TotalDeliveries++
		switch d.Status {
		case models.DeliveryDelivered:
			p.Successful++
		case models.DeliveryNotDelivered:
			p.Failed++
		case models.DeliveryPartial:
			p.Partial++
		}
		p.TotalJarsDelivered += d.DeliveredQty
		p.TotalJarsReturned += d.ReturnedQty
		days[timeutil.FormatIST(d.Date, timeutil.DateLayout)] = true
		if d.Status != models.DeliveryDelivered && d.Notes != "" {
			feedback = append(feedback, d)
		}
	}

	p.ActiveDays = len(days)
	p.SuccessRate = SuccessRate(p.Successful, p.TotalDeliveries)
	if p.ActiveDays > 0 {
		p.AvgDeliveriesPerDay = round1(float64(p.TotalDeliveries) / float64(p.ActiveDays))
	}

	sort.SliceStable(feedback, func(i, j int) bool { return supersedes(feedback[i], feedback[j]) })
	for i := 0; i < len(feedback) && i < recentFeedbackLimit; i++ {
		p.RecentFeedback = append(p.RecentFeedback, feedback[i].Notes)
	}
	return p
}

var severityRank = map[string]int{
	models.SeverityHigh:   0,
	models.SeverityMedium: 1,
	models.SeverityLow:    2,
}

// Alerts derives today's operational alerts: failed attempts, assigned
// agents with no attempt once operations have started, and partial
// attempts. Sorted by severity, high first.
func Alerts(today []*models.Delivery, routes []*models.Route, agents map[int]models.AgentRef, now time.Time, opsStartHour int) []models.Alert {
	alerts := []models.Alert{}
	active := make(map[int]bool)

	for _, d := range today {
		if !validRecord(d) || !timeutil.SameDay(d.Date, now) {
			continue
		}
		active[d.DeliveryBoyID] = true
		switch d.Status {
		case models.DeliveryNotDelivered:
			alerts = append(alerts, models.Alert{
				Type:       "delivery_failed",
				Severity:   models.SeverityHigh,
				Message:    fmt.Sprintf("Delivery failed for customer #%d", d.CustomerID),
				CustomerID: d.CustomerID,
				AgentID:    d.DeliveryBoyID,
				DeliveryID: d.ID,
			})
		case models.DeliveryPartial:
			alerts = append(alerts, models.Alert{
				Type:       "partial_delivery",
				Severity:   models.SeverityLow,
				Message:    fmt.Sprintf("Partial delivery for customer #%d", d.CustomerID),
				CustomerID: d.CustomerID,
				AgentID:    d.DeliveryBoyID,
				DeliveryID: d.ID,
			})
		}
	}

	if now.In(timeutil.IST).Hour() >= opsStartHour {
		seen := make(map[int]bool)
		for _, r := range routes {
			if r == nil || r.AssignedDeliveryBoy == nil {
				continue
			}
			id := *r.AssignedDeliveryBoy
			if active[id] || seen[id] {
				continue
			}
			seen[id] = true
			name := agents[id].Name
			if name == "" {
				name = fmt.Sprintf("#%d", id)
			}
			alerts = append(alerts, models.Alert{
				Type:     "no_activity",
				Severity: models.SeverityMedium,
				Message:  fmt.Sprintf("Delivery boy %s has not started deliveries on %s", name, r.Name),
				AgentID:  id,
			})
		}
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		return severityRank[alerts[i].Severity] < severityRank[alerts[j].Severity]
	})
	return alerts
}
