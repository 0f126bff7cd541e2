// ABOUTME: Tests for the flow timer model and trend chart helpers.
// ABOUTME: Drives the model with synthetic key and tick messages.
package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harperreed/lifeos/internal/flow"
	"github.com/harperreed/lifeos/internal/metrics"
	"github.com/harperreed/lifeos/internal/prefs"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) (FlowModel, *flow.Machine) {
	t.Helper()
	start := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return start }
	m := flow.NewMachine(prefs.NewMemory(), flow.WithClock(clock))
	return NewFlowModel(m, clock), m
}

func press(t *testing.T, model FlowModel, k string) FlowModel {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, _ := model.Update(msg)
	return next.(FlowModel)
}

func TestStartOpensMissionPrompt(t *testing.T) {
	model, machine := newTestModel(t)

	model = press(t, model, "s")
	require.True(t, model.FormActive())
	require.Equal(t, flow.PhaseIdle, machine.Phase())

	model = press(t, model, "esc")
	require.False(t, model.FormActive())
	require.Equal(t, flow.PhaseIdle, machine.Phase())
}

func TestMissionFormStartsAnchor(t *testing.T) {
	model, machine := newTestModel(t)

	model = press(t, model, "s")
	*model.text = "write the report"
	model.applyForm()
	model.closeForm()

	require.Equal(t, flow.PhaseAnchor, machine.Phase())
	require.Equal(t, "write the report", machine.State().Mission)

	model = press(t, model, "enter")
	require.Equal(t, flow.PhaseFocus, machine.Phase())
	require.True(t, machine.State().Running)
}

func TestAnchorEscReturnsToIdle(t *testing.T) {
	model, machine := newTestModel(t)
	machine.StartSession("x")

	press(t, model, "esc")
	require.Equal(t, flow.PhaseIdle, machine.Phase())
}

func TestTickAdvancesMachine(t *testing.T) {
	model, machine := newTestModel(t)
	machine.StartSession("")
	machine.ResolveAnchor(true)

	next, cmd := model.Update(tickMsg(time.Now()))
	require.NotNil(t, cmd)
	_ = next
	require.Equal(t, flow.UltradianDuration-time.Second, machine.State().Remaining)
}

func TestSpaceTogglesTimer(t *testing.T) {
	model, machine := newTestModel(t)
	machine.StartSession("")
	machine.ResolveAnchor(true)

	press(t, model, " ")
	require.False(t, machine.State().Running)
}

func TestEffortAndRefractionKeys(t *testing.T) {
	model, machine := newTestModel(t)
	machine.StartSession("")
	machine.ResolveAnchor(true)
	for i := 0; i < int(flow.UltradianDuration/time.Second); i++ {
		machine.Tick()
	}
	require.Equal(t, flow.PhaseEffort, machine.Phase())

	model = press(t, model, "enter")
	require.True(t, model.FormActive())
	*model.rating = "7"
	*model.notes = "solid"
	model.applyForm()
	model.closeForm()
	require.Equal(t, flow.PhaseRefraction, machine.Phase())

	model = press(t, model, "b")
	require.Equal(t, flow.PhaseBreak, machine.Phase())
	require.Equal(t, flow.DefaultBreak, machine.State().Remaining)

	press(t, model, "r")
	require.Equal(t, flow.PhaseIdle, machine.Phase())
}

func TestCaptureWhileIdle(t *testing.T) {
	model, machine := newTestModel(t)
	model = press(t, model, "c")
	require.True(t, model.FormActive())

	*model.text = "call the dentist"
	model.applyForm()
	model.closeForm()
	require.Equal(t, flow.PhaseIdle, machine.Phase())
	require.Equal(t, []string{"call the dentist"}, machine.State().Thoughts)
}

func TestCaptureRecordsThought(t *testing.T) {
	model, machine := newTestModel(t)
	machine.StartSession("")
	machine.ResolveAnchor(true)

	model = press(t, model, "c")
	require.True(t, model.FormActive())
	*model.text = "  buy milk "
	model.applyForm()

	require.Equal(t, []string{"buy milk"}, machine.State().Thoughts)
}

func TestViewShowsCountdown(t *testing.T) {
	model, machine := newTestModel(t)
	machine.StartSession("deep work")
	machine.ResolveAnchor(true)

	view := model.View()
	require.Contains(t, view, "1:30:00")
	require.Contains(t, view, "deep work")
	require.Contains(t, view, "Friction")
}

func TestFormatCountdown(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{-time.Second, "00:00"},
		{59 * time.Second, "00:59"},
		{20 * time.Minute, "20:00"},
		{90 * time.Minute, "1:30:00"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, FormatCountdown(tt.in))
	}
}

func TestBucketByDay(t *testing.T) {
	day := time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC)
	points := []metrics.Point{
		{Value: 10, RecordedAt: day.Add(26 * time.Hour)},
		{Value: 4, RecordedAt: day.Add(2 * time.Hour)},
		{Value: 6, RecordedAt: day.Add(20 * time.Hour)},
	}

	buckets := BucketByDay(points, time.UTC)
	require.Len(t, buckets, 2)
	require.Equal(t, day, buckets[0].Day)
	require.InDelta(t, 5.0, buckets[0].Mean, 1e-9)
	require.Equal(t, 2, buckets[0].Count)
	require.InDelta(t, 10.0, buckets[1].Mean, 1e-9)
}

func TestTrendChartEmpty(t *testing.T) {
	require.Contains(t, TrendChart(nil, 40, 10), "no data")
}
