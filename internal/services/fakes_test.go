package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"aquagem-backend/internal/models"
	"aquagem-backend/internal/timeutil"
)

// memDB is an in-memory stand-in for the Postgres tables.
type memDB struct {
	mu            sync.Mutex
	nextID        int
	users         map[int]*models.User
	customers     map[int]*models.Customer
	routes        map[int]*models.Route
	deliveries    []*models.Delivery
	otps          []*models.OTPRequest
	notifications []*models.Notification
	fetchErr      error
}

func newMemDB() *memDB {
	return &memDB{
		nextID:    1000,
		users:     map[int]*models.User{},
		customers: map[int]*models.Customer{},
		routes:    map[int]*models.Route{},
	}
}

func (db *memDB) id() int {
	db.nextID++
	return db.nextID
}

func (db *memDB) addUser(id int, role, name, mobile string) *models.User {
	u := &models.User{ID: id, Role: role, Name: name, Mobile: mobile, IsActive: true}
	db.users[id] = u
	return u
}

func (db *memDB) addRoute(id int, name string, agentID *int) *models.Route {
	r := &models.Route{ID: id, Name: name, AssignedDeliveryBoy: agentID}
	db.routes[id] = r
	return r
}

func (db *memDB) addCustomer(id int, routeID *int, policy *models.SchedulePolicy) *models.Customer {
	c := &models.Customer{ID: id, Name: "Customer", Mobile: "9000000000", RouteID: routeID, Schedule: policy, IsActive: true}
	db.customers[id] = c
	return c
}

func (db *memDB) addDelivery(customerID, agentID int, status models.DeliveryStatus, at time.Time) *models.Delivery {
	d := &models.Delivery{ID: db.id(), CustomerID: customerID, DeliveryBoyID: agentID, Date: at,
		DeliveredQty: 2, Status: status, CreatedAt: at}
	db.deliveries = append(db.deliveries, d)
	return d
}

func intPtr(v int) *int { return &v }

type memDirectory struct{ db *memDB }

func (m memDirectory) FetchActiveCustomers(_ context.Context, filter models.RouteFilter) ([]*models.Customer, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if m.db.fetchErr != nil {
		return nil, m.db.fetchErr
	}
	var out []*models.Customer
	for _, c := range m.db.customers {
		if c.IsActive && filter.Matches(c.RouteID) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memDirectory) FetchRoutes(_ context.Context) ([]*models.Route, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*models.Route
	for _, r := range m.db.routes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memDirectory) FetchDeliveryBoys(_ context.Context) ([]*models.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*models.User
	for _, u := range m.db.users {
		if u.Role == models.RoleDeliveryBoy {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memDeliveries struct{ db *memDB }

func (m memDeliveries) FetchDeliveries(_ context.Context, rng models.DateRange, f models.DeliveryFilter) ([]*models.Delivery, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if m.db.fetchErr != nil {
		return nil, m.db.fetchErr
	}
	var out []*models.Delivery
	for _, d := range m.db.deliveries {
		if !rng.Contains(d.Date) {
			continue
		}
		if f.DeliveryBoyID != 0 && d.DeliveryBoyID != f.DeliveryBoyID {
			continue
		}
		if len(f.CustomerIDs) > 0 && !containsInt(f.CustomerIDs, d.CustomerID) {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, d.Status) {
			continue
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m memDeliveries) Create(_ context.Context, d *models.Delivery) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.customers[d.CustomerID]
	if !ok {
		return pgx.ErrNoRows
	}
	d.ID = m.db.id()
	d.CreatedAt = d.Date
	c.JarBalance += d.NetJars()
	m.db.deliveries = append(m.db.deliveries, d)
	return nil
}

func (m memDeliveries) Get(_ context.Context, id int) (*models.Delivery, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, d := range m.db.deliveries {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m memDeliveries) AttachProof(ctx context.Context, id int, proof models.AttachProofRequest) (*models.Delivery, error) {
	d, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if proof.PhotoURL != "" {
		d.PhotoURL = proof.PhotoURL
	}
	if proof.SignatureURL != "" {
		d.SignatureURL = proof.SignatureURL
	}
	if proof.GPS != nil {
		d.GPS = proof.GPS
	}
	return d, nil
}

type memCustomers struct{ db *memDB }

func (m memCustomers) Get(_ context.Context, id int) (*models.Customer, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.customers[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return c, nil
}

func (m memCustomers) RouteAssignments(_ context.Context) (map[int]*int, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := map[int]*int{}
	for id, c := range m.db.customers {
		out[id] = c.RouteID
	}
	return out, nil
}

func (m memCustomers) UpdateSchedule(ctx context.Context, id int, policy *models.SchedulePolicy) error {
	c, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	c.Schedule = policy
	return nil
}

func (m memCustomers) UpdateStatus(ctx context.Context, id int, isActive bool) error {
	c, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	c.IsActive = isActive
	return nil
}

func (m memCustomers) UpdateRoute(ctx context.Context, id int, routeID *int) error {
	c, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	c.RouteID = routeID
	return nil
}

func (m memCustomers) SetJarBalance(ctx context.Context, id, balance int) error {
	c, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	c.JarBalance = balance
	return nil
}

type memRoutes struct{ db *memDB }

func (m memRoutes) Get(_ context.Context, id int) (*models.Route, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	r, ok := m.db.routes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r, nil
}

func (m memRoutes) ListWithCounts(ctx context.Context) ([]*models.RouteListItem, error) {
	routes, _ := memDirectory{m.db}.FetchRoutes(ctx)
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*models.RouteListItem
	for _, r := range routes {
		item := &models.RouteListItem{Route: *r}
		if r.AssignedDeliveryBoy != nil {
			if u, ok := m.db.users[*r.AssignedDeliveryBoy]; ok {
				item.DeliveryBoyName = u.Name
			}
		}
		for _, c := range m.db.customers {
			if c.IsActive && c.RouteID != nil && *c.RouteID == r.ID {
				item.CustomerCount++
			}
		}
		out = append(out, item)
	}
	return out, nil
}

func (m memRoutes) GetByDeliveryBoy(_ context.Context, agentID int) (*models.Route, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, r := range m.db.routes {
		if r.AssignedDeliveryBoy != nil && *r.AssignedDeliveryBoy == agentID {
			return r, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m memRoutes) AssignDeliveryBoy(_ context.Context, routeID, agentID int) (*models.Route, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	target, ok := m.db.routes[routeID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	for _, r := range m.db.routes {
		if r.AssignedDeliveryBoy != nil && *r.AssignedDeliveryBoy == agentID {
			r.AssignedDeliveryBoy = nil
		}
	}
	target.AssignedDeliveryBoy = intPtr(agentID)
	return target, nil
}

type memUsers struct{ db *memDB }

func (m memUsers) Get(_ context.Context, id int) (*models.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	u, ok := m.db.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (m memUsers) GetByMobile(_ context.Context, mobile string) (*models.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, u := range m.db.users {
		if u.Mobile == mobile {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m memUsers) Create(_ context.Context, u *models.User) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	u.ID = m.db.id()
	m.db.users[u.ID] = u
	return nil
}

func (m memUsers) ListByRole(_ context.Context, role string, activeOnly bool) ([]*models.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*models.User
	for _, u := range m.db.users {
		if u.Role == role && (u.IsActive || !activeOnly) {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memUsers) SetTOTPSecret(ctx context.Context, id int, secret string) error {
	u, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	u.TOTPSecret, u.TOTPEnabled = secret, false
	return nil
}

func (m memUsers) EnableTOTP(ctx context.Context, id int) error {
	u, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	u.TOTPEnabled = true
	return nil
}

type memOTPs struct{ db *memDB }

func (m memOTPs) Create(_ context.Context, otp *models.OTPRequest) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	otp.ID = m.db.id()
	otp.CreatedAt = timeutil.Now()
	m.db.otps = append(m.db.otps, otp)
	return nil
}

func (m memOTPs) GetLatestUnused(_ context.Context, mobile string) (*models.OTPRequest, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for i := len(m.db.otps) - 1; i >= 0; i-- {
		if o := m.db.otps[i]; o.Mobile == mobile && !o.IsUsed {
			return o, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m memOTPs) IncrementAttempts(_ context.Context, id int) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, o := range m.db.otps {
		if o.ID == id {
			o.Attempts++
		}
	}
	return nil
}

func (m memOTPs) MarkUsed(_ context.Context, id int) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, o := range m.db.otps {
		if o.ID == id {
			o.IsUsed = true
		}
	}
	return nil
}

func (m memOTPs) InvalidatePrevious(_ context.Context, mobile string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, o := range m.db.otps {
		if o.Mobile == mobile {
			o.IsUsed = true
		}
	}
	return nil
}

type memNotifications struct{ db *memDB }

func (m memNotifications) Create(_ context.Context, n *models.Notification) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	n.ID = m.db.id()
	n.SentAt = timeutil.Now()
	m.db.notifications = append(m.db.notifications, n)
	return nil
}

func (m memNotifications) UpdateStatus(_ context.Context, id int, status, messageID string, retries int) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, n := range m.db.notifications {
		if n.ID == id {
			n.Status, n.MessageID, n.Retries = status, messageID, retries
		}
	}
	return nil
}

func (m memNotifications) ListForUser(_ context.Context, userID, limit int) ([]*models.Notification, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []*models.Notification
	for i := len(m.db.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		if n := m.db.notifications[i]; n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func containsInt(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func containsStatus(xs []models.DeliveryStatus, v models.DeliveryStatus) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}
