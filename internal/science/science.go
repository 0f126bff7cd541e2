// ABOUTME: Scientific metrics aggregator folding habits into load, neuro-axis and phase statistics.
// ABOUTME: Aggregate is pure and deterministic; missing fields fall back to explicit defaults.
package science

import (
	"math"
	"strings"

	"github.com/harperreed/lifeos/internal/models"
)

// Neuro-axes.
const (
	AxisDrive     = "Drive"
	AxisFocus     = "Focus"
	AxisRest      = "Rest"
	AxisSerenity  = "Serenity"
	AxisMetabolic = "Metabolic"
)

// Axes lists the neuro-axes in display order.
var Axes = []string{AxisDrive, AxisFocus, AxisRest, AxisSerenity, AxisMetabolic}

// Alignment values. Good is only ever the placeholder for empty phases.
const (
	AlignmentOptimal = "Optimal"
	AlignmentGood    = "Good"
	AlignmentPoor    = "Poor"
)

// DominantBalanced is the placeholder dominant axis for empty phases.
const DominantBalanced = "Balanced"

// Phases lists the time-of-day buckets in display order.
var Phases = []string{models.TimeMorning, models.TimeAfternoon, models.TimeEvening, models.TimeAnytime}

const (
	primaryWeight   = 1.0
	secondaryWeight = 0.5
)

// chemicalAxis maps lowercase neurochemical names to their axis.
var chemicalAxis = map[string]string{
	"dopamine":       AxisDrive,
	"noradrenaline":  AxisDrive,
	"norepinephrine": AxisDrive,
	"adrenaline":     AxisDrive,
	"epinephrine":    AxisDrive,
	"testosterone":   AxisDrive,
	"cortisol":       AxisDrive,

	"acetylcholine": AxisFocus,
	"glutamate":     AxisFocus,
	"bdnf":          AxisFocus,

	"melatonin":      AxisRest,
	"adenosine":      AxisRest,
	"gaba":           AxisRest,
	"growth hormone": AxisRest,

	"serotonin":  AxisSerenity,
	"oxytocin":   AxisSerenity,
	"endorphins": AxisSerenity,
	"endorphin":  AxisSerenity,
	"anandamide": AxisSerenity,

	"insulin":  AxisMetabolic,
	"glucagon": AxisMetabolic,
	"ghrelin":  AxisMetabolic,
	"leptin":   AxisMetabolic,
	"ketones":  AxisMetabolic,
	"glucose":  AxisMetabolic,
}

// AxisFor returns the neuro-axis of a chemical name.
func AxisFor(chemical string) (string, bool) {
	axis, ok := chemicalAxis[normalizeChemical(chemical)]
	return axis, ok
}

func normalizeChemical(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Autonomic summarises sympathetic versus parasympathetic tone.
type Autonomic struct {
	Sympathetic     float64 `json:"sympathetic"`
	Parasympathetic float64 `json:"parasympathetic"`
	Balance         float64 `json:"balance"`
}

// PhaseStats describes one time-of-day bucket.
type PhaseStats struct {
	Habits         []models.Habit `json:"habits"`
	Load           float64        `json:"load"`
	DominantAxis   string         `json:"dominant_axis"`
	AlignmentScore string         `json:"alignment_score"`
}

// Efficiency relates cumulative strain to cumulative duration.
type Efficiency struct {
	Strain   float64 `json:"strain"`
	Duration float64 `json:"duration"`
	Ratio    float64 `json:"ratio"`
}

// ScientificStats is the output of Aggregate.
type ScientificStats struct {
	SystemLoad           float64               `json:"system_load"`
	NeuroProfile         map[string]float64    `json:"neuro_profile"`
	ChemicalDistribution map[string]float64    `json:"chemical_distribution"`
	Autonomic            Autonomic             `json:"autonomic"`
	Phases               map[string]PhaseStats `json:"phases"`
	ProtocolEfficiency   Efficiency            `json:"protocol_efficiency"`
}

// Aggregate folds habits into ScientificStats.
func Aggregate(habits []models.Habit) ScientificStats {
	stats := ScientificStats{
		NeuroProfile:         make(map[string]float64, len(Axes)),
		ChemicalDistribution: make(map[string]float64),
		Phases:               make(map[string]PhaseStats, len(Phases)),
	}
	for _, axis := range Axes {
		stats.NeuroProfile[axis] = 0
	}

	buckets := make(map[string][]models.Habit, len(Phases))

	for _, h := range habits {
		intensity := math.Max(1, math.Abs(h.State))

		stats.SystemLoad += h.Friction * intensity
		stats.ProtocolEfficiency.Strain += h.Friction
		stats.ProtocolEfficiency.Duration += h.Duration

		addDriver(&stats, h.PrimaryDriver, intensity, primaryWeight)
		addDriver(&stats, h.SecondaryDriver, intensity, secondaryWeight)

		if h.State < 0 {
			stats.Autonomic.Sympathetic += math.Abs(h.State)
			stats.Autonomic.Balance -= math.Abs(h.State)
		} else {
			stats.Autonomic.Parasympathetic += h.State
			stats.Autonomic.Balance += h.State
		}

		phase := PhaseOf(h)
		buckets[phase] = append(buckets[phase], h)
	}

	for _, phase := range Phases {
		hs := buckets[phase]
		if len(hs) == 0 {
			stats.Phases[phase] = PhaseStats{
				Habits:         []models.Habit{},
				DominantAxis:   DominantBalanced,
				AlignmentScore: AlignmentGood,
			}
			continue
		}

		var load float64
		for _, h := range hs {
			load += CognitiveLoad(h)
		}
		dominant := dominantAxis(hs)
		stats.Phases[phase] = PhaseStats{
			Habits:         hs,
			Load:           load,
			DominantAxis:   dominant,
			AlignmentScore: alignment(phase, dominant),
		}
	}

	if stats.ProtocolEfficiency.Duration > 0 {
		stats.ProtocolEfficiency.Ratio = stats.ProtocolEfficiency.Strain / stats.ProtocolEfficiency.Duration
	}

	return stats
}

func addDriver(stats *ScientificStats, driver string, intensity, weight float64) {
	chem := normalizeChemical(driver)
	if chem == "" {
		return
	}
	if axis, ok := chemicalAxis[chem]; ok {
		stats.NeuroProfile[axis] += intensity * weight
	}
	stats.ChemicalDistribution[chem] += weight
}

// PhaseOf returns the time-of-day bucket for a habit. Unrecognised values
// land in anytime.
func PhaseOf(h models.Habit) string {
	switch h.TimeOfDay {
	case models.TimeMorning, models.TimeAfternoon, models.TimeEvening:
		return h.TimeOfDay
	default:
		return models.TimeAnytime
	}
}

// CognitiveLoad is round(friction*duration + |state|*10), with duration
// defaulting to 1 when unset. Halves round up.
func CognitiveLoad(h models.Habit) float64 {
	duration := h.Duration
	if duration == 0 {
		duration = 1
	}
	return math.Floor(h.Friction*duration + math.Abs(h.State)*10 + 0.5)
}

// dominantAxis counts primary-driver axes; ties go to the axis seen first.
func dominantAxis(hs []models.Habit) string {
	counts := make(map[string]int)
	var order []string
	for _, h := range hs {
		axis, ok := AxisFor(h.PrimaryDriver)
		if !ok {
			axis = AxisMetabolic
		}
		if _, seen := counts[axis]; !seen {
			order = append(order, axis)
		}
		counts[axis]++
	}

	best := order[0]
	for _, axis := range order[1:] {
		if counts[axis] > counts[best] {
			best = axis
		}
	}
	return best
}

func alignment(phase, dominant string) string {
	switch {
	case phase == models.TimeMorning && (dominant == AxisRest || dominant == AxisSerenity):
		return AlignmentPoor
	case phase == models.TimeEvening && (dominant == AxisDrive || dominant == AxisFocus):
		return AlignmentPoor
	default:
		return AlignmentOptimal
	}
}
