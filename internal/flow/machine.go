// ABOUTME: Flow session state machine for a single 90-minute ultradian focus block.
// ABOUTME: A mutex guards the machine so a ticker goroutine and a UI can drive it together.
package flow

import (
	"context"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/lifeos/internal/models"
	"github.com/harperreed/lifeos/internal/prefs"
	"github.com/oklog/ulid/v2"
)

// Phase is a step in the session lifecycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseAnchor     Phase = "anchor"
	PhaseFocus      Phase = "focus"
	PhaseEffort     Phase = "effort"
	PhaseRefraction Phase = "refraction"
	PhaseBreak      Phase = "break"
	PhaseComplete   Phase = "complete"
)

const (
	// UltradianDuration is the length of one focus block.
	UltradianDuration = 90 * time.Minute
	// DefaultBreak is used when StartBreak is given a non-positive duration.
	DefaultBreak = 20 * time.Minute

	tickStep = time.Second
)

// State is a point-in-time copy of the machine.
type State struct {
	Phase          Phase         `json:"phase"`
	Remaining      time.Duration `json:"remaining"`
	Running        bool          `json:"running"`
	Mission        string        `json:"mission,omitempty"`
	Thoughts       []string      `json:"captured_thoughts"`
	FocusStartedAt time.Time     `json:"focus_started_at,omitempty"`
}

// Machine tracks one flow session at a time.
type Machine struct {
	mu     sync.Mutex
	store  prefs.Store
	logger *log.Logger
	now    func() time.Time

	phase      Phase
	remaining  time.Duration
	running    bool
	mission    string
	thoughts   []string
	focusStart time.Time
	focusSpent time.Duration
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) {
		if now != nil {
			m.now = now
		}
	}
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *log.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMachine returns an idle machine persisting sessions to store.
func NewMachine(store prefs.Store, opts ...Option) *Machine {
	m := &Machine{
		store:     store,
		logger:    log.New(io.Discard),
		now:       time.Now,
		phase:     PhaseIdle,
		remaining: UltradianDuration,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns a copy of the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	return State{
		Phase:          m.phase,
		Remaining:      m.remaining,
		Running:        m.running,
		Mission:        m.mission,
		Thoughts:       append([]string{}, m.thoughts...),
		FocusStartedAt: m.focusStart,
	}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// StartSession moves idle to anchor. The countdown is untouched.
func (m *Machine) StartSession(mission string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseIdle {
		return
	}
	m.phase = PhaseAnchor
	m.mission = strings.TrimSpace(mission)
}

// ResolveAnchor finishes the anchor step. Completing it starts the focus
// countdown; cancelling returns to idle.
func (m *Machine) ResolveAnchor(completed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseAnchor {
		return
	}
	if !completed {
		m.phase = PhaseIdle
		return
	}
	m.phase = PhaseFocus
	m.remaining = UltradianDuration
	m.running = true
	m.focusStart = m.now()
	m.focusSpent = 0
}

// Tick advances a running countdown by one second.
func (m *Machine) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running || (m.phase != PhaseFocus && m.phase != PhaseBreak) {
		return
	}

	m.remaining -= tickStep
	if m.phase == PhaseFocus {
		m.focusSpent += tickStep
	}
	if m.remaining > 0 {
		return
	}

	m.remaining = 0
	m.running = false
	switch m.phase {
	case PhaseFocus:
		m.phase = PhaseEffort
	case PhaseBreak:
		m.phase = PhaseComplete
	}
}

// ToggleTimer flips running and paused. Outside a countdown it does nothing.
func (m *Machine) ToggleTimer() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase != PhaseFocus && m.phase != PhaseBreak {
		return
	}
	m.running = !m.running
}

// ResetTimer returns to idle and clears the mission and captured thoughts.
// A focus block abandoned after at least a minute is recorded as incomplete.
// A finished block still awaiting its effort rating is recorded unrated.
func (m *Machine) ResetTimer() {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.phase == PhaseEffort:
		m.record(true, nil, "")
	case m.phase == PhaseFocus && m.focusSpent >= time.Minute:
		m.record(false, nil, "")
	}

	m.phase = PhaseIdle
	m.remaining = UltradianDuration
	m.running = false
	m.mission = ""
	m.thoughts = nil
	m.focusStart = time.Time{}
	m.focusSpent = 0
}

// HandleCapture appends a stray thought. Blank text is ignored.
func (m *Machine) HandleCapture(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.thoughts = append(m.thoughts, text)
}

// SubmitEffort records the finished focus block with a perceived-effort
// rating (clamped to 1-10, 0 for unrated) and moves effort to refraction.
func (m *Machine) SubmitEffort(rating int, notes string) (models.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseEffort {
		return models.Session{}, false
	}

	var effort *int
	if rating != 0 {
		r := min(max(rating, 1), 10)
		effort = &r
	}
	s := m.record(true, effort, strings.TrimSpace(notes))
	m.phase = PhaseRefraction
	return s, true
}

// StartBreak moves refraction into a timed break.
func (m *Machine) StartBreak(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseRefraction {
		return
	}
	if d <= 0 {
		d = DefaultBreak
	}
	m.phase = PhaseBreak
	m.remaining = d
	m.running = true
}

// Finish ends refraction without a break.
func (m *Machine) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseRefraction {
		return
	}
	m.phase = PhaseComplete
	m.running = false
}

// Zone returns the focus zone for now, or nil outside focus.
func (m *Machine) Zone(now time.Time) *Zone {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.phase != PhaseFocus {
		return nil
	}
	z := ZoneFor(now.Sub(m.focusStart))
	return &z
}

// record appends a session to the persisted list. Callers hold mu.
func (m *Machine) record(completed bool, effort *int, notes string) models.Session {
	end := m.now()
	s := models.Session{
		ID:           ulid.MustNew(ulid.Timestamp(end), ulid.DefaultEntropy()).String(),
		StartedAt:    m.focusStart,
		EndedAt:      &end,
		FocusMinutes: int(math.Round(m.focusSpent.Minutes())),
		Completed:    completed,
		Effort:       effort,
		Notes:        notes,
		Mission:      m.mission,
		Thoughts:     append([]string{}, m.thoughts...),
		Type:         models.SessionUltradian,
	}
	if err := AppendSession(m.store, s); err != nil {
		m.logger.Error("failed to persist flow session", "id", s.ID, "err", err)
	}
	return s
}

// Run ticks m once per value received on ticks until ctx is done or ticks
// is closed. Ticks while paused are dropped by Tick itself.
func Run(ctx context.Context, m *Machine, ticks <-chan time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-ticks:
			if !ok {
				return nil
			}
			m.Tick()
		}
	}
}
