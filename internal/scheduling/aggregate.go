package scheduling

import (
	"math"
	"sort"

	"aquagem-backend/internal/models"
)

// Percentage is completed/scheduled as a rounded integer percent, 0 when
// nothing was scheduled.
func Percentage(completed, scheduled int) int {
	if scheduled <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(scheduled) * 100))
}

// AgentIndex maps delivery boy ids to their reference projection.
func AgentIndex(users []*models.User) map[int]models.AgentRef {
	idx := make(map[int]models.AgentRef, len(users))
	for _, u := range users {
		if u == nil {
			continue
		}
		idx[u.ID] = models.AgentRef{ID: u.ID, Name: u.Name, Mobile: u.Mobile}
	}
	return idx
}

type routeBucket struct {
	route    *models.Route
	progress models.RouteProgress
	tasks    []models.ScheduledTask
}

// bucketize assigns every task to its route or to the unassigned bucket.
// Tasks pointing at an unknown route land in the unassigned bucket and are
// counted as orphans, so every task is counted exactly once.
func bucketize(tasks []models.ScheduledTask, routes []*models.Route, agents map[int]models.AgentRef) ([]*routeBucket, *routeBucket, int) {
	buckets := make([]*routeBucket, 0, len(routes))
	byID := make(map[int]*routeBucket, len(routes))
	for _, r := range routes {
		if r == nil {
			continue
		}
		id := r.ID
		b := &routeBucket{route: r, progress: models.RouteProgress{RouteID: &id, RouteName: r.Name}}
		if r.AssignedDeliveryBoy != nil {
			if ref, ok := agents[*r.AssignedDeliveryBoy]; ok {
				b.progress.DeliveryBoy = &ref
			} else {
				b.progress.DeliveryBoy = &models.AgentRef{ID: *r.AssignedDeliveryBoy}
			}
		}
		buckets = append(buckets, b)
		byID[id] = b
	}
	unassigned := &routeBucket{progress: models.RouteProgress{RouteName: models.UnassignedRoute}}

	orphans := 0
	for _, t := range tasks {
		b := unassigned
		if t.RouteID != nil {
			if rb, ok := byID[*t.RouteID]; ok {
				b = rb
			} else {
				orphans++
			}
		}
		b.progress.Scheduled++
		if t.IsPending() {
			b.progress.Pending++
		} else {
			b.progress.Completed++
		}
		if t.Status == models.TaskNotDelivered {
			b.progress.Failed++
		}
		b.tasks = append(b.tasks, t)
	}
	return buckets, unassigned, orphans
}

// AggregateByRoute counts tasks per route in route order followed by the
// unassigned bucket. Routes with nothing scheduled are only reported when
// includeEmpty is set. The second result counts orphaned route references.
func AggregateByRoute(tasks []models.ScheduledTask, routes []*models.Route, agents map[int]models.AgentRef, includeEmpty bool) ([]models.RouteProgress, int) {
	buckets, unassigned, orphans := bucketize(tasks, routes, agents)

	out := make([]models.RouteProgress, 0, len(buckets)+1)
	for _, b := range append(buckets, unassigned) {
		if b.progress.Scheduled == 0 && !includeEmpty {
			continue
		}
		b.progress.Percentage = Percentage(b.progress.Completed, b.progress.Scheduled)
		out = append(out, b.progress)
	}
	return out, orphans
}

// GroupByRoute groups tasks under their route, largest group first.
func GroupByRoute(tasks []models.ScheduledTask, routes []*models.Route, agents map[int]models.AgentRef, includeEmpty bool) ([]models.RouteTaskGroup, int) {
	buckets, unassigned, orphans := bucketize(tasks, routes, agents)

	groups := make([]models.RouteTaskGroup, 0, len(buckets)+1)
	for _, b := range append(buckets, unassigned) {
		if len(b.tasks) == 0 && !includeEmpty {
			continue
		}
		g := models.RouteTaskGroup{
			RouteID:     b.progress.RouteID,
			RouteName:   b.progress.RouteName,
			DeliveryBoy: b.progress.DeliveryBoy,
			Tasks:       b.tasks,
			Count:       len(b.tasks),
		}
		if g.Tasks == nil {
			g.Tasks = []models.ScheduledTask{}
		}
		groups = append(groups, g)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Count > groups[j].Count })
	return groups, orphans
}

// AggregateByAgent counts tasks on the routes assigned to each agent. Every
// listed agent is reported, with zero counts when they have no route or no
// due customers.
func AggregateByAgent(tasks []models.ScheduledTask, routes []*models.Route, agents []models.AgentRef) []models.AgentProgress {
	agentOfRoute := make(map[int]int, len(routes))
	for _, r := range routes {
		if r != nil && r.AssignedDeliveryBoy != nil {
			agentOfRoute[r.ID] = *r.AssignedDeliveryBoy
		}
	}

	byAgent := make(map[int]*models.AgentProgress, len(agents))
	out := make([]models.AgentProgress, len(agents))
	for i, a := range agents {
		out[i].DeliveryBoy = a
		byAgent[a.ID] = &out[i]
	}

	for _, t := range tasks {
		if t.RouteID == nil {
			continue
		}
		agentID, ok := agentOfRoute[*t.RouteID]
		if !ok {
			continue
		}
		p, ok := byAgent[agentID]
		if !ok {
			continue
		}
		p.Scheduled++
		if t.IsPending() {
			p.Pending++
		} else {
			p.Completed++
		}
		if t.Status == models.TaskNotDelivered {
			p.Failed++
		}
	}
	for i := range out {
		out[i].Percentage = Percentage(out[i].Completed, out[i].Scheduled)
	}
	return out
}

// TasksForAgent keeps the tasks on routes assigned to agentID, preserving order.
func TasksForAgent(tasks []models.ScheduledTask, routes []*models.Route, agentID int) []models.ScheduledTask {
	own := make(map[int]bool)
	for _, r := range routes {
		if r != nil && r.AssignedDeliveryBoy != nil && *r.AssignedDeliveryBoy == agentID {
			own[r.ID] = true
		}
	}
	out := []models.ScheduledTask{}
	for _, t := range tasks {
		if t.RouteID != nil && own[*t.RouteID] {
			out = append(out, t)
		}
	}
	return out
}

// Summarize reduces a reconciliation to scalar counts.
func Summarize(res *Result) models.OperationsSummary {
	s := models.OperationsSummary{
		TotalScheduled:      len(res.Tasks),
		UnscheduledAttempts: res.UnscheduledAttempts,
		Skipped:             res.Skipped,
	}
	for _, t := range res.Tasks {
		switch t.Status {
		case models.TaskPending:
			s.Pending++
		case models.TaskDelivered:
			s.Delivered++
		case models.TaskNotDelivered:
			s.Failed++
		case models.TaskPartial:
			s.Partial++
		}
	}
	s.Completed = s.TotalScheduled - s.Pending
	s.TotalAttempted = s.Completed + s.UnscheduledAttempts
	return s
}

// TodayStats summarises an agent's task list with a one-decimal completion rate.
func TodayStats(tasks []models.ScheduledTask) models.AgentTodayStats {
	st := models.AgentTodayStats{Total: len(tasks)}
	for _, t := range tasks {
		if t.IsPending() {
			st.Pending++
		} else {
			st.Completed++
		}
	}
	if st.Total > 0 {
		st.CompletionRate = round1(float64(st.Completed) / float64(st.Total) * 100)
	}
	return st
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ManifestEntries projects planned customers onto manifest lines, naming
// each customer's route. Unknown or missing routes are listed as unassigned.
func ManifestEntries(customers []*models.Customer, routes []*models.Route) []models.ManifestEntry {
	names := make(map[int]string, len(routes))
	for _, r := range routes {
		if r != nil {
			names[r.ID] = r.Name
		}
	}

	entries := make([]models.ManifestEntry, 0, len(customers))
	for _, c := range customers {
		e := models.ManifestEntry{Customer: taskCustomer(c), RouteID: c.RouteID, RouteName: models.UnassignedRoute}
		if c.RouteID != nil {
			if name, ok := names[*c.RouteID]; ok {
				e.RouteName = name
			}
		}
		entries = append(entries, e)
	}
	return entries
}
