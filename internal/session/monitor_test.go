package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Andriiklymiuk/ung-sub008/internal/clock"
	"github.com/Andriiklymiuk/ung-sub008/internal/ung/domain"
)

// fakeService stubs the mediation service; only the session-facing
// calls matter here.
type fakeService struct {
	mu     sync.Mutex
	active *domain.ActiveSession
	actErr error
	hours  decimal.Decimal
	hrsErr error
}

func (f *fakeService) setActive(a *domain.ActiveSession, err error) {
	f.mu.Lock()
	f.active, f.actErr = a, err
	f.mu.Unlock()
}

func (f *fakeService) ActiveSession(ctx context.Context) (*domain.ActiveSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active, f.actErr
}

func (f *fakeService) TodayHours(ctx context.Context) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hours, f.hrsErr
}

func (f *fakeService) ListInvoices(context.Context, domain.ListOptions) ([]domain.Invoice, error) {
	return nil, nil
}
func (f *fakeService) ListClients(context.Context, domain.ListOptions) ([]domain.Client, error) {
	return nil, nil
}
func (f *fakeService) ListContracts(context.Context, domain.ListOptions) ([]domain.Contract, error) {
	return nil, nil
}
func (f *fakeService) ListExpenses(context.Context, domain.ListOptions) ([]domain.Expense, error) {
	return nil, nil
}
func (f *fakeService) ListSessions(context.Context, domain.ListOptions) ([]domain.TrackingSession, error) {
	return nil, nil
}
func (f *fakeService) Dashboard(context.Context) (domain.DashboardMetrics, error) {
	return domain.DashboardMetrics{}, nil
}
func (f *fakeService) Mutate(context.Context, domain.MutationRequest) (domain.MutationResult, error) {
	return domain.MutationResult{}, nil
}
func (f *fakeService) Refresh(domain.EntityType) {}

func newTestMonitor(svc domain.Service, cl clock.Clock, log *zap.Logger) *Monitor {
	return NewMonitor(Params{Service: svc, Clock: cl, Log: log, Config: Config{}})
}

func TestPollSessionTransitions(t *testing.T) {
	fake := &fakeService{}
	cl := clock.NewFake(time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC))
	m := newTestMonitor(fake, cl, zap.NewNop())

	m.PollSession(context.Background())
	if got := m.Snapshot(); got.State != StateIdle {
		t.Fatalf("expected idle, got %s", got.State)
	}

	started := cl.Now().Add(-30 * time.Minute)
	fake.setActive(&domain.ActiveSession{Project: "website", ClientName: "Acme", StartedAt: started}, nil)

	m.PollSession(context.Background())
	snap := m.Snapshot()
	if snap.State != StateTracking || snap.Project != "website" {
		t.Fatalf("expected tracking snapshot, got %+v", snap)
	}
	if snap.Elapsed != 30*time.Minute {
		t.Fatalf("elapsed = %s, want 30m", snap.Elapsed)
	}

	fake.setActive(nil, nil)
	m.PollSession(context.Background())
	if got := m.Snapshot(); got.State != StateIdle {
		t.Fatalf("expected idle after session ended, got %s", got.State)
	}
}

func TestPollSessionElapsedFromWallClock(t *testing.T) {
	fake := &fakeService{}
	cl := clock.NewFake(time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC))
	m := newTestMonitor(fake, cl, zap.NewNop())

	fake.setActive(&domain.ActiveSession{Project: "website", StartedAt: cl.Now()}, nil)
	m.PollSession(context.Background())
	first := m.Snapshot().Elapsed

	// Even if polls are missed, elapsed reflects the full wall-clock
	// gap on the next poll.
	cl.Advance(17 * time.Minute)
	m.PollSession(context.Background())
	second := m.Snapshot().Elapsed

	if first != 0 || second != 17*time.Minute {
		t.Fatalf("elapsed = %s then %s, want 0 then 17m", first, second)
	}
	if second < first {
		t.Fatal("elapsed went backwards")
	}
}

func TestPollSessionFutureStartStaysIdle(t *testing.T) {
	fake := &fakeService{}
	cl := clock.NewFake(time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC))
	core, logs := observer.New(zap.WarnLevel)
	m := newTestMonitor(fake, cl, zap.New(core))

	fake.setActive(&domain.ActiveSession{Project: "website", StartedAt: cl.Now().Add(time.Hour)}, nil)
	m.PollSession(context.Background())

	if got := m.Snapshot(); got.State != StateIdle {
		t.Fatalf("future start must clamp to idle, got %s", got.State)
	}
	if logs.FilterMessage("active session start time is in the future").Len() != 1 {
		t.Fatal("expected a warning about the inconsistent start time")
	}
}

func TestPollSessionErrorKeepsState(t *testing.T) {
	fake := &fakeService{}
	cl := clock.NewFake(time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC))
	m := newTestMonitor(fake, cl, zap.NewNop())

	fake.setActive(&domain.ActiveSession{Project: "website", StartedAt: cl.Now().Add(-time.Minute)}, nil)
	m.PollSession(context.Background())
	if got := m.Snapshot(); got.State != StateTracking {
		t.Fatalf("setup failed: %s", got.State)
	}

	fake.setActive(nil, errors.New("tool timed out"))
	m.PollSession(context.Background())
	if got := m.Snapshot(); got.State != StateTracking {
		t.Fatalf("poll failure must not change state, got %s", got.State)
	}
}

func TestPollHoursLeavesStateMachineAlone(t *testing.T) {
	fake := &fakeService{}
	cl := clock.NewFake(time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC))
	m := newTestMonitor(fake, cl, zap.NewNop())

	fake.setActive(&domain.ActiveSession{Project: "website", StartedAt: cl.Now().Add(-time.Minute)}, nil)
	m.PollSession(context.Background())

	fake.mu.Lock()
	fake.hours = decimal.RequireFromString("2.5")
	fake.mu.Unlock()

	m.PollHours(context.Background())
	snap := m.Snapshot()
	if snap.State != StateTracking || snap.Project != "website" {
		t.Fatalf("hours poll changed tracking state: %+v", snap)
	}
	if !snap.TodayHours.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("today hours = %s", snap.TodayHours)
	}
}

func TestNotifyStopped(t *testing.T) {
	fake := &fakeService{}
	cl := clock.NewFake(time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC))
	m := newTestMonitor(fake, cl, zap.NewNop())

	fake.setActive(&domain.ActiveSession{Project: "website", StartedAt: cl.Now().Add(-time.Hour)}, nil)
	m.PollSession(context.Background())
	fake.mu.Lock()
	fake.hours = decimal.NewFromInt(4)
	fake.mu.Unlock()
	m.PollHours(context.Background())

	m.NotifyStopped()
	snap := m.Snapshot()
	if snap.State != StateIdle || snap.Project != "" {
		t.Fatalf("expected immediate idle, got %+v", snap)
	}
	if !snap.TodayHours.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("today hours must survive the stop, got %s", snap.TodayHours)
	}
}

func TestSubscribe(t *testing.T) {
	fake := &fakeService{}
	cl := clock.NewFake(time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC))
	m := newTestMonitor(fake, cl, zap.NewNop())

	var got []State
	cancel := m.Subscribe(func(s Snapshot) { got = append(got, s.State) })

	fake.setActive(&domain.ActiveSession{Project: "website", StartedAt: cl.Now()}, nil)
	m.PollSession(context.Background())
	m.NotifyStopped()
	cancel()
	m.PollSession(context.Background())

	want := []State{StateTracking, StateIdle}
	if len(got) != len(want) {
		t.Fatalf("ticks = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ticks = %v, want %v", got, want)
		}
	}
}
