package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"aquagem-backend/internal/metrics"
	"aquagem-backend/internal/models"
	"aquagem-backend/internal/obs"
	"aquagem-backend/internal/scheduling"
	"aquagem-backend/internal/timeutil"
)

// ScheduleService answers the day-level operational views. Every view runs
// the same reconciliation over a fresh read of the directory and ledger.
type ScheduleService struct {
	Directory scheduling.Directory
	Ledger    scheduling.Ledger
	Engine    *scheduling.Engine
	Now       func() time.Time
}

func NewScheduleService(dir scheduling.Directory, ledger scheduling.Ledger, engine *scheduling.Engine) *ScheduleService {
	return &ScheduleService{
		Directory: dir,
		Ledger:    ledger,
		Engine:    engine,
		Now:       timeutil.Now,
	}
}

// snapshot is one reconciled day plus the directory data it was built from.
type snapshot struct {
	result *scheduling.Result
	routes []*models.Route
	agents []*models.User
}

func (s *ScheduleService) reconcile(ctx context.Context, view string, target time.Time) (snap *snapshot, err error) {
	defer obs.Time(ctx, "schedule."+view)(&err)
	start := time.Now()

	customers, err := s.Directory.FetchActiveCustomers(ctx, models.RouteFilter{})
	if err != nil {
		return nil, fmt.Errorf("fetch customers: %w", err)
	}
	routes, err := s.Directory.FetchRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch routes: %w", err)
	}
	agents, err := s.Directory.FetchDeliveryBoys(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch delivery boys: %w", err)
	}
	day := models.DateRange{From: timeutil.StartOfDay(target), To: timeutil.EndOfDay(target)}
	deliveries, err := s.Ledger.FetchDeliveries(ctx, day, models.DeliveryFilter{})
	if err != nil {
		return nil, fmt.Errorf("fetch deliveries: %w", err)
	}

	res := s.Engine.Reconcile(customers, deliveries, target)

	metrics.ReconciliationsTotal.WithLabelValues(view).Inc()
	metrics.ReconciliationDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
	metrics.RecordAnomalies(metrics.AnomalySkipped, res.Skipped)
	metrics.RecordAnomalies(metrics.AnomalyDuplicate, res.DuplicateRecords)
	metrics.RecordAnomalies(metrics.AnomalyUnscheduled, res.UnscheduledAttempts)
	if res.Skipped > 0 || res.DuplicateRecords > 0 {
		log.Printf("[Schedule] %s %s: skipped %d malformed, %d duplicate records",
			view, timeutil.FormatIST(target, timeutil.DateLayout), res.Skipped, res.DuplicateRecords)
	}

	return &snapshot{result: res, routes: routes, agents: agents}, nil
}

func parseDay(date string) (time.Time, error) {
	t, err := timeutil.ParseDate(date)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidDate, err)
	}
	return t, nil
}

// ForDate returns the reconciled tasks for a date grouped by route, largest
// group first. Routes without tasks are included only with includeEmpty.
func (s *ScheduleService) ForDate(ctx context.Context, date string, includeEmpty bool) (*models.ScheduleResponse, error) {
	target, err := parseDay(date)
	if err != nil {
		return nil, err
	}

	snap, err := s.reconcile(ctx, "schedule", target)
	if err != nil {
		return nil, err
	}

	groups, orphans := scheduling.GroupByRoute(snap.result.Tasks, snap.routes, scheduling.AgentIndex(snap.agents), includeEmpty)
	metrics.RecordAnomalies(metrics.AnomalyOrphanRoute, orphans)

	active := 0
	for _, g := range groups {
		if g.Count > 0 {
			active++
		}
	}

	resp := &models.ScheduleResponse{
		Groups: groups,
		Meta: models.ScheduleMeta{
			Date:              date,
			Day:               target.Weekday().String(),
			TotalRoutesActive: active,
			TotalDeliveries:   len(snap.result.Tasks),
			Skipped:           snap.result.Skipped,
		},
	}
	return resp, nil
}

// Manifest lists the customers due on a date without consulting the ledger.
// An empty date means today.
func (s *ScheduleService) Manifest(ctx context.Context, date string, filter models.RouteFilter) (resp *models.ManifestResponse, err error) {
	defer obs.Time(ctx, "schedule.manifest")(&err)

	target := timeutil.StartOfDay(s.Now())
	if date != "" {
		if target, err = parseDay(date); err != nil {
			return nil, err
		}
	}

	customers, err := s.Directory.FetchActiveCustomers(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch customers: %w", err)
	}
	routes, err := s.Directory.FetchRoutes(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch routes: %w", err)
	}

	due, skipped := s.Engine.Plan(customers, target)
	metrics.ReconciliationsTotal.WithLabelValues("manifest").Inc()
	metrics.RecordAnomalies(metrics.AnomalySkipped, skipped)

	entries := scheduling.ManifestEntries(due, routes)
	return &models.ManifestResponse{
		Date:        timeutil.FormatIST(target, timeutil.DateLayout),
		Day:         target.Weekday().String(),
		Entries:     entries,
		Total:       len(entries),
		GeneratedAt: s.Now(),
	}, nil
}

// Dashboard summarises today with per-route progress, most pending first.
func (s *ScheduleService) Dashboard(ctx context.Context, includeEmpty bool) (*models.DashboardResponse, error) {
	today := s.Now()
	snap, err := s.reconcile(ctx, "dashboard", today)
	if err != nil {
		return nil, err
	}

	routeStatus, orphans := scheduling.AggregateByRoute(snap.result.Tasks, snap.routes, scheduling.AgentIndex(snap.agents), includeEmpty)
	metrics.RecordAnomalies(metrics.AnomalyOrphanRoute, orphans)
	sort.SliceStable(routeStatus, func(i, j int) bool { return routeStatus[i].Pending > routeStatus[j].Pending })

	active := 0
	for _, a := range snap.agents {
		if a.IsActive {
			active++
		}
	}

	return &models.DashboardResponse{
		Date:               timeutil.FormatIST(today, timeutil.DateLayout),
		Summary:            scheduling.Summarize(snap.result),
		ActiveDeliveryBoys: active,
		RouteStatus:        routeStatus,
	}, nil
}

// Today returns today's scalar counts.
func (s *ScheduleService) Today(ctx context.Context) (models.OperationsSummary, error) {
	snap, err := s.reconcile(ctx, "today", s.Now())
	if err != nil {
		return models.OperationsSummary{}, err
	}
	return scheduling.Summarize(snap.result), nil
}

// AgentsProgress reports today's progress for every active delivery boy.
func (s *ScheduleService) AgentsProgress(ctx context.Context) ([]models.AgentProgress, error) {
	snap, err := s.reconcile(ctx, "agents", s.Now())
	if err != nil {
		return nil, err
	}
	refs := make([]models.AgentRef, 0, len(snap.agents))
	for _, a := range snap.agents {
		if a.IsActive {
			refs = append(refs, models.AgentRef{ID: a.ID, Name: a.Name, Mobile: a.Mobile})
		}
	}
	return scheduling.AggregateByAgent(snap.result.Tasks, snap.routes, refs), nil
}

// AgentToday returns one delivery boy's reconciled tasks for today, pending first.
func (s *ScheduleService) AgentToday(ctx context.Context, agentID int) (*models.AgentTodayResponse, error) {
	snap, err := s.reconcile(ctx, "agent_today", s.Now())
	if err != nil {
		return nil, err
	}

	var agent *models.User
	for _, a := range snap.agents {
		if a.ID == agentID {
			agent = a
			break
		}
	}
	if agent == nil {
		return nil, fmt.Errorf("delivery boy %d: %w", agentID, ErrNotFound)
	}

	var route *models.Route
	for _, r := range snap.routes {
		if r.AssignedDeliveryBoy != nil && *r.AssignedDeliveryBoy == agentID {
			route = r
			break
		}
	}

	tasks := scheduling.TasksForAgent(snap.result.Tasks, snap.routes, agentID)
	return &models.AgentTodayResponse{
		DeliveryBoy: models.AgentRef{ID: agent.ID, Name: agent.Name, Mobile: agent.Mobile},
		Route:       route,
		Tasks:       tasks,
		Stats:       scheduling.TodayStats(tasks),
	}, nil
}
