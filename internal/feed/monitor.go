package feed

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sethgrid/pelioscope/internal/clock"
	"github.com/sethgrid/pelioscope/internal/emotion"
)

type Status string

const (
	Disconnected Status = "disconnected"
	Connecting   Status = "connecting"
	Connected    Status = "connected"
	Failed       Status = "error"
)

// ErrNoSource is returned when no feed is configured.
var ErrNoSource = errors.New("feed: no live source configured")

const (
	LinkFailed          = "Database Link Failed"
	DefaultRetryBackoff = 5 * time.Second
)

// View is what the live screen shows.
type View struct {
	Status  Status
	Error   string
	Running bool
	Demo    bool
	Live    emotion.Reading
}

// Label is the one-line connection summary.
func (v View) Label() string {
	switch {
	case !v.Running:
		return "System Idle"
	case v.Status == Connecting:
		return "Syncing..."
	case v.Status == Failed:
		return "Link Error"
	}
	return "Live Feed Active"
}

type MonitorConfig struct {
	Clock  clock.Clock
	Logger *zap.Logger
	// Retry is how long to wait before reconnecting after a failure.
	Retry    time.Duration
	OnChange func(View)
}

// Monitor keeps a subscription to the detector record open and maps what it
// sees onto the live side of the emotion state.
type Monitor struct {
	src   Source
	state *emotion.State
	cfg   MonitorConfig

	wake chan struct{}

	mu      sync.Mutex
	status  Status
	errText string
	running bool
	demo    bool
	cancel  context.CancelFunc
}

func NewMonitor(src Source, state *emotion.State, cfg MonitorConfig) *Monitor {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Retry <= 0 {
		cfg.Retry = DefaultRetryBackoff
	}
	return &Monitor{
		src:    src,
		state:  state,
		cfg:    cfg,
		wake:   make(chan struct{}, 1),
		status: Disconnected,
	}
}

func (m *Monitor) View() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewLocked()
}

func (m *Monitor) viewLocked() View {
	return View{
		Status:  m.status,
		Error:   m.errText,
		Running: m.running,
		Demo:    m.demo,
		Live:    m.state.Live(),
	}
}

// Run subscribes until ctx is done, reconnecting after failures. While in
// demo mode it stays disconnected.
func (m *Monitor) Run(ctx context.Context) error {
	if m.src == nil {
		return ErrNoSource
	}
	defer m.update(func() { m.status = Disconnected })

	for ctx.Err() == nil {
		if m.Demo() {
			m.update(func() { m.status = Disconnected })
			select {
			case <-ctx.Done():
			case <-m.wake:
			}
			continue
		}

		sub, cancel := context.WithCancel(ctx)
		m.update(func() {
			m.status = Connecting
			m.cancel = cancel
		})
		err := m.src.Subscribe(sub, m.Apply)
		cancel()
		m.update(func() { m.cancel = nil })

		if ctx.Err() != nil {
			break
		}
		if m.Demo() {
			continue
		}

		m.cfg.Logger.Warn("live feed failed", zap.Error(err), zap.Duration("retry", m.cfg.Retry))
		m.update(func() {
			m.status = Failed
			m.errText = LinkFailed
		})
		m.sleep(ctx, m.cfg.Retry)
	}
	return nil
}

func (m *Monitor) sleep(ctx context.Context, d time.Duration) {
	fired := make(chan struct{})
	t := m.cfg.Clock.AfterFunc(d, func() { close(fired) })
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-fired:
	case <-m.wake:
	}
}

// Apply folds one record into the monitor. Unknown labels leave the live
// emotion unchanged.
func (m *Monitor) Apply(rec *Record) {
	if rec != nil {
		if e, ok := emotion.Parse(rec.RawLabel()); ok {
			m.state.ObserveLive(emotion.Reading{
				Emotion:    e,
				Confidence: rec.Confidence,
				UpdatedAt:  rec.UpdatedAt(),
			}, m.cfg.Clock.Now())
		}
	}
	m.update(func() {
		m.status = Connected
		m.errText = ""
		m.running = rec != nil && rec.Running()
	})
}

func (m *Monitor) Demo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.demo
}

// SetDemo switches demo mode. Entering it drops the live subscription;
// leaving it reconnects right away.
func (m *Monitor) SetDemo(on bool) {
	m.mu.Lock()
	m.demo = on
	if on && m.cancel != nil {
		m.cancel()
	}
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
	m.notify()
}

// Retry leaves demo mode and reconnects.
func (m *Monitor) Retry() { m.SetDemo(false) }

// SetRunning asks the detector to start or stop. In demo mode only the local
// flag changes.
func (m *Monitor) SetRunning(ctx context.Context, active bool) error {
	if m.Demo() {
		m.update(func() { m.running = active })
		return nil
	}
	if m.src == nil {
		return ErrNoSource
	}
	return m.src.SetSystemStatus(ctx, active)
}

// Push writes a detection to the record. It does nothing in demo mode.
func (m *Monitor) Push(ctx context.Context, label string, confidence float64) error {
	if m.Demo() {
		return nil
	}
	if m.src == nil {
		return ErrNoSource
	}
	return m.src.PushDetection(ctx, label, confidence)
}

func (m *Monitor) update(fn func()) {
	m.mu.Lock()
	fn()
	m.mu.Unlock()
	m.notify()
}

func (m *Monitor) notify() {
	if m.cfg.OnChange == nil {
		return
	}
	m.cfg.OnChange(m.View())
}
