package service

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/misd-it/misdesk/internal/domain"
	"github.com/misd-it/misdesk/internal/events"
	"github.com/misd-it/misdesk/internal/mailer"
)

type fakeTicketRepo struct {
	mu      sync.Mutex
	nextID  int64
	tickets map[int64]*domain.Ticket

	departmentNames map[int64]string
	filerNames      map[int64]string
	assigneeNames   map[string]string
	assigneeEmails  map[string]string

	statusWrites   int
	priorityWrites int
	assigneeWrites int
	unassigned     []string

	// viewErr makes GetViewByID fail, simulating a lost read after a
	// committed write.
	viewErr error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		nextID:          1,
		tickets:         map[int64]*domain.Ticket{},
		departmentNames: map[int64]string{},
		filerNames:      map[int64]string{},
		assigneeNames:   map[string]string{},
		assigneeEmails:  map[string]string{},
	}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket.ID = r.nextID
	ticket.CreatedAt = time.Now()
	r.nextID++
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *t
	return &clone, nil
}

func (r *fakeTicketRepo) buildView(t *domain.Ticket) domain.TicketView {
	v := domain.TicketView{
		Ticket:         *t,
		DepartmentName: r.departmentNames[t.DepartmentID],
		FilerName:      r.filerNames[t.FilerID],
	}
	if t.AssigneeID != nil {
		v.AssigneeName = r.assigneeNames[*t.AssigneeID]
		v.AssigneeEmail = r.assigneeEmails[*t.AssigneeID]
	}
	return v
}

func (r *fakeTicketRepo) GetViewByID(_ context.Context, id int64) (*domain.TicketView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.viewErr != nil {
		return nil, r.viewErr
	}
	t, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	view := r.buildView(t)
	return &view, nil
}

func (r *fakeTicketRepo) ListViews(_ context.Context) ([]domain.TicketView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	views := make([]domain.TicketView, 0, len(r.tickets))
	for _, t := range r.tickets {
		views = append(views, r.buildView(t))
	}
	return views, nil
}

func (r *fakeTicketRepo) ListViewsByEmail(_ context.Context, email string) ([]domain.TicketView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	views := make([]domain.TicketView, 0)
	for _, t := range r.tickets {
		if t.Email == email {
			views = append(views, r.buildView(t))
		}
	}
	return views, nil
}

func (r *fakeTicketRepo) UpdateStatus(_ context.Context, id int64, status domain.TicketStatus, proof *string, resolvedAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	r.statusWrites++
	t.Status = status
	t.Proof = proof
	t.ResolvedAt = resolvedAt
	return nil
}

func (r *fakeTicketRepo) UpdatePriority(_ context.Context, id int64, priority domain.TicketPriority) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	r.priorityWrites++
	t.Priority = priority
	return nil
}

func (r *fakeTicketRepo) UpdateAssignee(_ context.Context, id int64, assigneeID *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	r.assigneeWrites++
	t.AssigneeID = assigneeID
	return nil
}

func (r *fakeTicketRepo) UnassignByAssignee(_ context.Context, profileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unassigned = append(r.unassigned, profileID)
	for _, t := range r.tickets {
		if t.AssigneeID != nil && *t.AssigneeID == profileID {
			t.AssigneeID = nil
		}
	}
	return nil
}

func (r *fakeTicketRepo) CountByDepartment(_ context.Context, departmentID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.tickets {
		if t.DepartmentID == departmentID {
			n++
		}
	}
	return n, nil
}

func (r *fakeTicketRepo) CountByFiler(_ context.Context, filerID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, t := range r.tickets {
		if t.FilerID == filerID {
			n++
		}
	}
	return n, nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*domain.Profile
	deleted  []string

	// createErr makes Create fail, simulating a constraint violation.
	createErr error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[string]*domain.Profile{}}
}

func (r *fakeProfileRepo) put(p *domain.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *p
	r.profiles[p.ID] = &clone
}

func (r *fakeProfileRepo) Create(_ context.Context, profile *domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if profile.ID == "" {
		profile.ID = "profile-" + profile.Email
	}
	profile.CreatedAt = time.Now()
	clone := *profile
	r.profiles[profile.ID] = &clone
	return nil
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *p
	return &clone, nil
}

func (r *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.Email == email {
			clone := *p
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeProfileRepo) List(_ context.Context) ([]domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeProfileRepo) UpdateRoles(_ context.Context, id string, roles []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[id]
	if !ok {
		return pgx.ErrNoRows
	}
	p.Roles = append([]string{}, roles...)
	return nil
}

func (r *fakeProfileRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.profiles, id)
	r.deleted = append(r.deleted, id)
	return nil
}

type fakeDepartmentRepo struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]*domain.Department
	deleted []int64
}

func newFakeDepartmentRepo() *fakeDepartmentRepo {
	return &fakeDepartmentRepo{nextID: 1, rows: map[int64]*domain.Department{}}
}

func (r *fakeDepartmentRepo) Create(_ context.Context, dept *domain.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	dept.ID = r.nextID
	r.nextID++
	clone := *dept
	r.rows[dept.ID] = &clone
	return nil
}

func (r *fakeDepartmentRepo) Update(_ context.Context, dept *domain.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[dept.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *dept
	r.rows[dept.ID] = &clone
	return nil
}

func (r *fakeDepartmentRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.rows, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeDepartmentRepo) GetByID(_ context.Context, id int64) (*domain.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *d
	return &clone, nil
}

func (r *fakeDepartmentRepo) List(_ context.Context) ([]domain.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Department, 0, len(r.rows))
	for _, d := range r.rows {
		out = append(out, *d)
	}
	return out, nil
}

type fakeFilerRepo struct {
	mu      sync.Mutex
	nextID  int64
	rows    map[int64]*domain.Filer
	deleted []int64
}

func newFakeFilerRepo() *fakeFilerRepo {
	return &fakeFilerRepo{nextID: 1, rows: map[int64]*domain.Filer{}}
}

func (r *fakeFilerRepo) Create(_ context.Context, filer *domain.Filer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	filer.ID = r.nextID
	r.nextID++
	clone := *filer
	r.rows[filer.ID] = &clone
	return nil
}

func (r *fakeFilerRepo) Update(_ context.Context, filer *domain.Filer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[filer.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *filer
	r.rows[filer.ID] = &clone
	return nil
}

func (r *fakeFilerRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.rows, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *fakeFilerRepo) GetByID(_ context.Context, id int64) (*domain.Filer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *f
	return &clone, nil
}

func (r *fakeFilerRepo) List(_ context.Context) ([]domain.Filer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Filer, 0, len(r.rows))
	for _, f := range r.rows {
		out = append(out, *f)
	}
	return out, nil
}

type recordingDispatcher struct {
	mu        sync.Mutex
	published []events.Event
	handlers  map[events.EventType][]events.EventHandler
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{handlers: map[events.EventType][]events.EventHandler{}}
}

func (d *recordingDispatcher) Publish(ctx context.Context, event events.Event) error {
	d.mu.Lock()
	d.published = append(d.published, event)
	handlers := append([]events.EventHandler{}, d.handlers[event.Type]...)
	d.mu.Unlock()
	for _, h := range handlers {
		_ = h(ctx, event)
	}
	return nil
}

func (d *recordingDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, e := range d.published {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (s *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type fakeClassifier struct {
	result string
	err    error
	calls  int
}

func (c *fakeClassifier) Classify(context.Context, string) (string, error) {
	c.calls++
	return c.result, c.err
}

type fakeRoleCache struct {
	mu          sync.Mutex
	entries     map[string]*domain.Profile
	invalidated []string
}

func newFakeRoleCache() *fakeRoleCache {
	return &fakeRoleCache{entries: map[string]*domain.Profile{}}
}

func (c *fakeRoleCache) Get(_ context.Context, profileID string) (*domain.Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	profile, ok := c.entries[profileID]
	return profile, ok
}

func (c *fakeRoleCache) Set(_ context.Context, profileID string, profile *domain.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[profileID] = profile
}

func (c *fakeRoleCache) Invalidate(_ context.Context, profileID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, profileID)
	c.invalidated = append(c.invalidated, profileID)
}
