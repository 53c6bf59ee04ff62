package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cuongbtq/recruitment-be/internal/domain"
	"github.com/cuongbtq/recruitment-be/internal/notify"
	"github.com/cuongbtq/recruitment-be/internal/storage"
	"github.com/cuongbtq/recruitment-be/shared/apperr"
	"github.com/cuongbtq/recruitment-be/shared/paystack"
	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(t time.Time) *fakeClock { return &fakeClock{now: t} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memoryStore mirrors the storage semantics in memory
type memoryStore struct {
	mu        sync.Mutex
	apps      map[string]*domain.Application
	clock     *fakeClock
	grantErr  error
	grants    int
	createErr error
}

func newMemoryStore(clock *fakeClock) *memoryStore {
	return &memoryStore{apps: map[string]*domain.Application{}, clock: clock}
}

func (m *memoryStore) CreateApplication(_ context.Context, app *domain.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	now := m.clock.Now()
	app.Status = domain.StatusPending
	app.Boosted = false
	app.BoostExpiry = nil
	app.CreatedAt = now
	app.UpdatedAt = now
	app.HasCV = len(app.CVData) > 0

	stored := *app
	m.apps[app.ID] = &stored
	return nil
}

func (m *memoryStore) get(id string) (*domain.Application, error) {
	app, ok := m.apps[id]
	if !ok {
		return nil, apperr.NotFound("Application not found")
	}
	return app, nil
}

func (m *memoryStore) GetApplication(_ context.Context, id string) (*domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, err := m.get(id)
	if err != nil {
		return nil, err
	}
	out := *app
	out.CVData = nil
	return &out, nil
}

func (m *memoryStore) GetApplicationCV(_ context.Context, id string) (*domain.CV, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, err := m.get(id)
	if err != nil {
		return nil, err
	}
	if len(app.CVData) == 0 {
		return nil, apperr.NotFound("CV not found")
	}
	return &domain.CV{Data: app.CVData, MimeType: app.CVMimeType, FirstName: app.FirstName, LastName: app.LastName}, nil
}

func (m *memoryStore) UpdateApplicationStatus(_ context.Context, id string, status domain.ApplicationStatus) (*domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !status.Valid() {
		return nil, apperr.Validation("Invalid status value")
	}
	app, err := m.get(id)
	if err != nil {
		return nil, err
	}
	app.Status = status
	app.UpdatedAt = m.clock.Now()
	out := *app
	return &out, nil
}

func (m *memoryStore) GrantBoost(_ context.Context, id string, days int) (*domain.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.grants++
	if m.grantErr != nil {
		return nil, m.grantErr
	}
	if !domain.ValidBoostDays(days) {
		return nil, apperr.Validation("boost days out of range")
	}
	app, err := m.get(id)
	if err != nil {
		return nil, err
	}
	now := m.clock.Now()
	expiry := domain.BoostExpiryFrom(now, days)
	app.Boosted = true
	app.BoostExpiry = &expiry
	app.UpdatedAt = now
	out := *app
	return &out, nil
}

func (m *memoryStore) ListApplications(_ context.Context, filter storage.ListFilter) ([]domain.Application, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []domain.Application
	for _, app := range m.apps {
		if filter.JobID != "" && app.JobID != filter.JobID {
			continue
		}
		if filter.Status != "" && app.Status != filter.Status {
			continue
		}
		out := *app
		out.CVData = nil
		matched = append(matched, out)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })
	domain.RankApplications(matched, domain.RankOptions{ActiveBoostFirst: filter.ActiveBoostFirst, Now: m.clock.Now()})

	total := len(matched)
	start := (filter.Page - 1) * filter.Limit
	if start > total {
		start = total
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (m *memoryStore) DeleteApplication(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.get(id); err != nil {
		return err
	}
	delete(m.apps, id)
	return nil
}

func (m *memoryStore) snapshot(id string) domain.Application {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.apps[id]
}

type fakePublisher struct {
	mu    sync.Mutex
	err   error
	tasks []domain.Task
}

func (p *fakePublisher) PublishJSON(_ context.Context, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	task, ok := v.(domain.Task)
	if !ok {
		return errors.New("unexpected message type")
	}
	p.tasks = append(p.tasks, task)
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	result notify.Result
	subs   []*notify.Submission
}

func (n *fakeNotifier) NotifySubmission(_ context.Context, sub *notify.Submission) notify.Result {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, sub)
	return n.result
}

type fakeLedger struct {
	mu       sync.Mutex
	claimed  map[string]bool
	err      error
	released []string
}

func newFakeLedger() *fakeLedger { return &fakeLedger{claimed: map[string]bool{}} }

func (l *fakeLedger) Claim(_ context.Context, ref string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return false, l.err
	}
	if l.claimed[ref] {
		return false, nil
	}
	l.claimed[ref] = true
	return true, nil
}

func (l *fakeLedger) Release(_ context.Context, ref string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.claimed, ref)
	l.released = append(l.released, ref)
	return nil
}

type fakeProvider struct {
	mu       sync.Mutex
	err      error
	requests []*paystack.InitializeRequest
}

func (p *fakeProvider) InitializeTransaction(_ context.Context, req *paystack.InitializeRequest) (*paystack.InitializeResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	return &paystack.InitializeResult{
		AuthorizationURL: "https://checkout.paystack.com/" + req.Reference,
		AccessCode:       "code",
		Reference:        req.Reference,
	}, nil
}
