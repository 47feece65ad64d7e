package services

import (
	"context"
	"fmt"
	"time"

	"aquagem-backend/internal/cache"
	"aquagem-backend/internal/metrics"
	"aquagem-backend/internal/models"
	"aquagem-backend/internal/obs"
	"aquagem-backend/internal/scheduling"
	"aquagem-backend/internal/timeutil"
)

const (
	DefaultAnalyticsDays = 30
	MaxAnalyticsDays     = 366
)

// AnalyticsService serves historical views computed from the ledger alone.
// Results are cached in Redis until the next recorded delivery.
type AnalyticsService struct {
	Directory    scheduling.Directory
	Ledger       scheduling.Ledger
	Customers    CustomerStore
	CacheTTL     time.Duration
	OpsStartHour int
	Now          func() time.Time
}

func NewAnalyticsService(dir scheduling.Directory, ledger scheduling.Ledger, customers CustomerStore, cacheTTL time.Duration, opsStartHour int) *AnalyticsService {
	return &AnalyticsService{
		Directory:    dir,
		Ledger:       ledger,
		Customers:    customers,
		CacheTTL:     cacheTTL,
		OpsStartHour: opsStartHour,
		Now:          timeutil.Now,
	}
}

// Period is a resolved inclusive range of IST calendar days.
type Period struct {
	From time.Time
	To   time.Time
}

func (p Period) Range() models.DateRange {
	return models.DateRange{From: timeutil.StartOfDay(p.From), To: timeutil.EndOfDay(p.To)}
}

func (p Period) key() string {
	return timeutil.FormatIST(p.From, timeutil.DateLayout) + ":" + timeutil.FormatIST(p.To, timeutil.DateLayout)
}

// ResolvePeriod parses optional YYYY-MM-DD bounds. A missing upper bound is
// today; a missing lower bound is defaultDays before the upper bound.
func (s *AnalyticsService) ResolvePeriod(from, to string, defaultDays int) (Period, error) {
	var p Period
	var err error

	if to == "" {
		p.To = timeutil.StartOfDay(s.Now())
	} else if p.To, err = parseDay(to); err != nil {
		return Period{}, err
	}
	if from == "" {
		p.From = p.To.AddDate(0, 0, -(defaultDays - 1))
	} else if p.From, err = parseDay(from); err != nil {
		return Period{}, err
	}

	days := timeutil.DaysBetween(p.From, p.To) + 1
	if days <= 0 {
		return Period{}, fmt.Errorf("%w: date_from is after date_to", ErrInvalidDate)
	}
	if days > MaxAnalyticsDays {
		return Period{}, fmt.Errorf("%w: range exceeds %d days", ErrInvalidDate, MaxAnalyticsDays)
	}
	return p, nil
}

// ByRoute attributes every record in the period to its customer's current
// route. Routes without attempts are reported only with includeEmpty.
func (s *AnalyticsService) ByRoute(ctx context.Context, p Period, includeEmpty bool) (out []models.RouteLedgerStats, err error) {
	key := fmt.Sprintf("%sby-route:%s:%t", cache.AnalyticsPrefix, p.key(), includeEmpty)
	if cache.GetJSON(ctx, key, &out) {
		return out, nil
	}
	defer obs.Time(ctx, "analytics.by_route")(&err)

	deliveries, err := s.Ledger.FetchDeliveries(ctx, p.Range(), models.DeliveryFilter{})
	if err != nil {
		return nil, fmt.Errorf("fetch deliveries: %w", err)
	}
	routeOf, err := s.Customers.RouteAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch route assignments: %w", err)
	}
	routes, err := s.Directory.FetchRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch routes: %w", err)
	}

	out, anomalies := scheduling.LedgerByRoute(deliveries, routeOf, routes, includeEmpty)
	metrics.RecordAnomalies(metrics.AnomalyOrphanRoute, anomalies)

	cache.SetJSON(ctx, key, out, s.CacheTTL)
	return out, nil
}

// ByAgent groups the period's records by the delivery boy who made them.
func (s *AnalyticsService) ByAgent(ctx context.Context, p Period) (out []models.AgentLedgerStats, err error) {
	key := cache.AnalyticsPrefix + "by-agent:" + p.key()
	if cache.GetJSON(ctx, key, &out) {
		return out, nil
	}
	defer obs.Time(ctx, "analytics.by_agent")(&err)

	deliveries, err := s.Ledger.FetchDeliveries(ctx, p.Range(), models.DeliveryFilter{})
	if err != nil {
		return nil, fmt.Errorf("fetch deliveries: %w", err)
	}
	agents, err := s.Directory.FetchDeliveryBoys(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch delivery boys: %w", err)
	}

	out = scheduling.LedgerByAgent(deliveries, scheduling.AgentIndex(agents))
	cache.SetJSON(ctx, key, out, s.CacheTTL)
	return out, nil
}

// Daily returns one zero-filled row per day for the last n days, most recent first.
func (s *AnalyticsService) Daily(ctx context.Context, days int) (out []models.DailyLedgerStats, err error) {
	if days <= 0 {
		days = DefaultAnalyticsDays
	}
	if days > MaxAnalyticsDays {
		return nil, fmt.Errorf("%w: days must be at most %d", ErrInvalidInput, MaxAnalyticsDays)
	}
	p, err := s.ResolvePeriod("", "", days)
	if err != nil {
		return nil, err
	}

	key := cache.AnalyticsPrefix + "daily:" + p.key()
	if cache.GetJSON(ctx, key, &out) {
		return out, nil
	}
	defer obs.Time(ctx, "analytics.daily")(&err)

	deliveries, err := s.Ledger.FetchDeliveries(ctx, p.Range(), models.DeliveryFilter{})
	if err != nil {
		return nil, fmt.Errorf("fetch deliveries: %w", err)
	}

	out = scheduling.LedgerByDay(deliveries, p.From, p.To)
	cache.SetJSON(ctx, key, out, s.CacheTTL)
	return out, nil
}

// StatsQuery narrows the stats view. Zero values mean no filter.
type StatsQuery struct {
	Period        Period
	RouteID       int
	DeliveryBoyID int
}

// Stats returns totals, rates and a daily breakdown for the query.
func (s *AnalyticsService) Stats(ctx context.Context, q StatsQuery) (out models.DeliveryStats, err error) {
	key := fmt.Sprintf("%sstats:%s:%d:%d", cache.AnalyticsPrefix, q.Period.key(), q.RouteID, q.DeliveryBoyID)
	if cache.GetJSON(ctx, key, &out) {
		return out, nil
	}
	defer obs.Time(ctx, "analytics.stats")(&err)

	filter := models.DeliveryFilter{DeliveryBoyID: q.DeliveryBoyID}
	if q.RouteID > 0 {
		var routeOf map[int]*int
		if routeOf, err = s.Customers.RouteAssignments(ctx); err != nil {
			return out, fmt.Errorf("fetch route assignments: %w", err)
		}
		for customerID, routeID := range routeOf {
			if routeID != nil && *routeID == q.RouteID {
				filter.CustomerIDs = append(filter.CustomerIDs, customerID)
			}
		}
		// an empty id list would match every customer
		if len(filter.CustomerIDs) == 0 {
			return scheduling.Stats(nil, q.Period.From, q.Period.To), nil
		}
	}

	deliveries, err := s.Ledger.FetchDeliveries(ctx, q.Period.Range(), filter)
	if err != nil {
		return out, fmt.Errorf("fetch deliveries: %w", err)
	}

	out = scheduling.Stats(deliveries, q.Period.From, q.Period.To)
	cache.SetJSON(ctx, key, out, s.CacheTTL)
	return out, nil
}

// Performance summarises one delivery boy over the period.
func (s *AnalyticsService) Performance(ctx context.Context, agentID int, p Period) (out models.AgentPerformance, err error) {
	defer obs.Time(ctx, "analytics.performance")(&err)

	agents, err := s.Directory.FetchDeliveryBoys(ctx)
	if err != nil {
		return out, fmt.Errorf("fetch delivery boys: %w", err)
	}
	ref, ok := scheduling.AgentIndex(agents)[agentID]
	if !ok {
		return out, fmt.Errorf("delivery boy %d: %w", agentID, ErrNotFound)
	}

	deliveries, err := s.Ledger.FetchDeliveries(ctx, p.Range(), models.DeliveryFilter{DeliveryBoyID: agentID})
	if err != nil {
		return out, fmt.Errorf("fetch deliveries: %w", err)
	}
	return scheduling.Performance(ref, deliveries), nil
}

// Undelivered lists failed and partial attempts in the period, most recent first.
func (s *AnalyticsService) Undelivered(ctx context.Context, p Period) ([]*models.Delivery, error) {
	deliveries, err := s.Ledger.FetchDeliveries(ctx, p.Range(), models.DeliveryFilter{
		Statuses: []models.DeliveryStatus{models.DeliveryNotDelivered, models.DeliveryPartial},
	})
	if err != nil {
		return nil, fmt.Errorf("fetch deliveries: %w", err)
	}

	out := make([]*models.Delivery, 0, len(deliveries))
	for i := len(deliveries) - 1; i >= 0; i-- {
		out = append(out, deliveries[i])
	}
	return out, nil
}

// Alerts derives today's operational alerts.
func (s *AnalyticsService) Alerts(ctx context.Context) ([]models.Alert, error) {
	now := s.Now()
	today := models.DateRange{From: timeutil.StartOfDay(now), To: timeutil.EndOfDay(now)}

	deliveries, err := s.Ledger.FetchDeliveries(ctx, today, models.DeliveryFilter{})
	if err != nil {
		return nil, fmt.Errorf("fetch deliveries: %w", err)
	}
	routes, err := s.Directory.FetchRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch routes: %w", err)
	}
	agents, err := s.Directory.FetchDeliveryBoys(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch delivery boys: %w", err)
	}

	return scheduling.Alerts(deliveries, routes, scheduling.AgentIndex(agents), now, s.OpsStartHour), nil
}
