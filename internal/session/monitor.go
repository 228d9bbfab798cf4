// Package session polls the tool's transient tracking state and
// drives the live countdown shown by UI surfaces. The monitor is a
// two-state machine (Idle, Tracking); elapsed time is always derived
// from wall-clock arithmetic against the captured start time, never by
// counting ticks, so missed ticks cannot cause drift.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Andriiklymiuk/ung-sub008/internal/clock"
	"github.com/Andriiklymiuk/ung-sub008/internal/ung/domain"
)

// State is the monitor's position in its two-state machine.
type State string

const (
	StateIdle     State = "idle"
	StateTracking State = "tracking"
)

// Snapshot is what UI surfaces observe on each tick.
type Snapshot struct {
	State      State           `json:"state"`
	Project    string          `json:"project,omitempty"`
	ClientName string          `json:"client_name,omitempty"`
	StartedAt  time.Time       `json:"started_at,omitzero"`
	Elapsed    time.Duration   `json:"elapsed"`
	TodayHours decimal.Decimal `json:"today_hours"`
}

// Monitor polls the active session through the mediation service (and
// therefore the command bus, so its polls are serialized with
// user-triggered commands).
type Monitor struct {
	svc   domain.Service
	clock clock.Clock
	log   *zap.Logger
	cfg   Config

	mu      sync.Mutex
	snap    Snapshot
	subs    map[int]func(Snapshot)
	nextSub int

	cancel context.CancelFunc
	idle   chan struct{}
}

type Params struct {
	fx.In

	Service domain.Service
	Clock   clock.Clock
	Log     *zap.Logger
	Config  Config `optional:"true"`
}

func NewMonitor(p Params) *Monitor {
	return &Monitor{
		svc:   p.Service,
		clock: p.Clock,
		log:   p.Log.Named("session.monitor"),
		cfg:   p.Config.withDefaults(),
		snap:  Snapshot{State: StateIdle, TodayHours: decimal.Zero},
		subs:  make(map[int]func(Snapshot)),
		idle:  make(chan struct{}),
	}
}

// Snapshot returns the current observed state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// Subscribe registers a tick callback and returns its cancel func.
// Callbacks run on the monitor's poll goroutine and must not block.
func (m *Monitor) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *Monitor) publish(snap Snapshot) {
	m.mu.Lock()
	m.snap = snap
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

// RunForever polls until ctx is cancelled.
func (m *Monitor) RunForever(ctx context.Context) {
	defer close(m.idle)

	sessionTicker := time.NewTicker(m.cfg.PollInterval)
	defer sessionTicker.Stop()
	hoursTicker := time.NewTicker(m.cfg.HoursInterval)
	defer hoursTicker.Stop()

	m.PollSession(ctx)
	m.PollHours(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sessionTicker.C:
			m.PollSession(ctx)
		case <-hoursTicker.C:
			m.PollHours(ctx)
		}
	}
}

// PollSession asks the tool for the active session and advances the
// state machine. A poll failure keeps the current state: only the tool
// explicitly reporting "no session" (or a successful stop) moves
// Tracking back to Idle.
func (m *Monitor) PollSession(ctx context.Context) {
	active, err := m.svc.ActiveSession(ctx)
	if err != nil {
		m.log.Warn("session poll failed", zap.Error(err))
		return
	}

	prev := m.Snapshot()
	if active == nil {
		if prev.State != StateIdle {
			m.log.Info("tracking session ended", zap.String("project", prev.Project))
		}
		m.publish(Snapshot{State: StateIdle, TodayHours: prev.TodayHours})
		return
	}

	elapsed := m.clock.Now().Sub(active.StartedAt)
	if elapsed < 0 {
		// Inconsistent data from the tool; clamp by staying Idle
		// rather than showing a negative countdown.
		m.log.Warn("active session start time is in the future",
			zap.Time("started_at", active.StartedAt),
		)
		m.publish(Snapshot{State: StateIdle, TodayHours: prev.TodayHours})
		return
	}

	m.publish(Snapshot{
		State:      StateTracking,
		Project:    active.Project,
		ClientName: active.ClientName,
		StartedAt:  active.StartedAt,
		Elapsed:    elapsed,
		TodayHours: prev.TodayHours,
	})
}

// PollHours refreshes the tracked-today aggregate. It never touches
// the Idle/Tracking state machine.
func (m *Monitor) PollHours(ctx context.Context) {
	hours, err := m.svc.TodayHours(ctx)
	if err != nil {
		m.log.Warn("today-hours poll failed", zap.Error(err))
		return
	}

	snap := m.Snapshot()
	snap.TodayHours = hours
	m.publish(snap)
}

// NotifyStopped resets to Idle immediately after a successful stop
// command, without waiting for the next poll.
func (m *Monitor) NotifyStopped() {
	prev := m.Snapshot()
	m.publish(Snapshot{State: StateIdle, TodayHours: prev.TodayHours})
}

// Start launches the poll loop; Stop waits for it to exit.
func (m *Monitor) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	go m.RunForever(ctx)
}

func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
		<-m.idle
	}
}
