// ABOUTME: CLI commands for habits: add, list, today, stats, done and delete.
// ABOUTME: add without a name opens an interactive huh form.
package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/fatih/color"
	"github.com/harperreed/lifeos/internal/models"
	"github.com/harperreed/lifeos/internal/schedule"
	"github.com/harperreed/lifeos/internal/science"
	"github.com/spf13/cobra"
)

var (
	habitCategory  string
	habitNegative  bool
	habitTime      string
	habitFriction  float64
	habitState     float64
	habitDuration  float64
	habitDriver    string
	habitSecondary string
	habitSchedule  string
	habitAll       bool
)

var habitCmd = &cobra.Command{
	Use:     "habit",
	Aliases: []string{"h"},
	Short:   "Track habits and their physiological load",
	Long: `Habits carry a physiological profile used by 'lifeos habit stats':

  --friction   energy cost of doing it (0-10)
  --state      signed activation, negative is sympathetic (-10..10)
  --duration   typical minutes
  --driver     primary neurochemical (dopamine, serotonin, gaba, ...)
  --secondary  secondary neurochemical
  --time       morning, afternoon, evening or anytime

SCHEDULES:

  daily                  every day (default)
  weekly:mon,wed,fri     listed weekdays
  monthly:1,15           listed days of the month
  monthly_relative:2:tue second Tuesday; use "last" for the final one
  interval:3             every third day from the start date`,
}

var habitAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a habit",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var h *models.Habit
		if len(args) == 0 {
			var err error
			h, err = habitForm()
			if err != nil {
				return err
			}
		} else {
			h = models.NewHabit(svc.Owner(), args[0])
			h.Category = habitCategory
			if habitNegative {
				h.Polarity = models.PolarityNegative
			}
			h.WithTimeOfDay(habitTime).
				WithLoad(habitFriction, habitState, habitDuration).
				WithDrivers(habitDriver, habitSecondary)
			if err := applySchedule(h, habitSchedule); err != nil {
				return err
			}
		}

		if err := db.CreateHabit(cmd.Context(), h); err != nil {
			return fmt.Errorf("failed to create habit: %w", err)
		}
		color.Green("✓ Added habit %s", h.Name)
		fmt.Printf("  %s %s\n", color.New(color.Faint).Sprint(h.ID.String()[:8]), describeHabit(h))
		return nil
	},
}

func applySchedule(h *models.Habit, spec string) error {
	s, err := schedule.FromSpec(spec)
	if err != nil {
		return err
	}
	if _, daily := s.(schedule.Daily); daily {
		return nil
	}
	raw, err := schedule.Marshal(s)
	if err != nil {
		return err
	}
	h.WithSchedule(raw)
	return nil
}

// habitForm collects a habit interactively.
func habitForm() (*models.Habit, error) {
	var (
		name, driver, secondary, sched string
		tod                            = models.TimeAnytime
		friction, state, duration      = "0", "0", "0"
	)
	numeric := func(s string) error {
		if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
			return fmt.Errorf("enter a number")
		}
		return nil
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Habit name").Value(&name).Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("name is required")
				}
				return nil
			}),
			huh.NewSelect[string]().Title("Time of day").Options(
				huh.NewOption("Morning", models.TimeMorning),
				huh.NewOption("Afternoon", models.TimeAfternoon),
				huh.NewOption("Evening", models.TimeEvening),
				huh.NewOption("Anytime", models.TimeAnytime),
			).Value(&tod),
			huh.NewInput().Title("Schedule").Placeholder("daily").Value(&sched).Validate(func(s string) error {
				_, err := schedule.FromSpec(s)
				return err
			}),
		),
		huh.NewGroup(
			huh.NewInput().Title("Primary driver").Placeholder("dopamine").Value(&driver),
			huh.NewInput().Title("Secondary driver").Value(&secondary),
			huh.NewInput().Title("Friction (0-10)").Value(&friction).Validate(numeric),
			huh.NewInput().Title("State (-10..10)").Value(&state).Validate(numeric),
			huh.NewInput().Title("Duration (minutes)").Value(&duration).Validate(numeric),
		),
	)
	if err := form.Run(); err != nil {
		return nil, err
	}

	f, _ := strconv.ParseFloat(strings.TrimSpace(friction), 64)
	s, _ := strconv.ParseFloat(strings.TrimSpace(state), 64)
	d, _ := strconv.ParseFloat(strings.TrimSpace(duration), 64)
	h := models.NewHabit(svc.Owner(), strings.TrimSpace(name)).
		WithTimeOfDay(tod).
		WithLoad(f, s, d).
		WithDrivers(strings.TrimSpace(driver), strings.TrimSpace(secondary))
	if err := applySchedule(h, sched); err != nil {
		return nil, err
	}
	return h, nil
}

func describeHabit(h *models.Habit) string {
	parts := []string{padRight(h.Name, 24), padRight(science.PhaseOf(*h), 10)}
	if h.PrimaryDriver != "" {
		parts = append(parts, h.PrimaryDriver)
	}
	sched := "daily"
	if s, err := schedule.Parse(h.Schedule); err == nil {
		sched = s.Type()
	}
	parts = append(parts, color.New(color.Faint).Sprintf("%s streak %d", sched, h.Streak))
	return strings.Join(parts, " ")
}

var habitListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List habits",
	RunE: func(cmd *cobra.Command, args []string) error {
		hs, err := db.ListHabits(cmd.Context(), svc.Owner(), !habitAll)
		if err != nil {
			return fmt.Errorf("failed to list habits: %w", err)
		}
		if len(hs) == 0 {
			fmt.Println("No habits found.")
			return nil
		}
		faint := color.New(color.Faint)
		for _, h := range hs {
			fmt.Printf("%s %s\n", faint.Sprint(h.ID.String()[:8]), describeHabit(h))
		}
		return nil
	},
}

var habitTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List habits scheduled for today",
	RunE: func(cmd *cobra.Command, args []string) error {
		hs, err := svc.HabitsToday(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list habits: %w", err)
		}
		if len(hs) == 0 {
			fmt.Println("Nothing scheduled today.")
			return nil
		}
		faint := color.New(color.Faint)
		for _, h := range hs {
			fmt.Printf("%s %s\n", faint.Sprint(h.ID.String()[:8]), describeHabit(h))
		}
		return nil
	},
}

var habitStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Aggregate load, neuro profile and phase alignment",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := svc.HabitStats(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to aggregate habits: %w", err)
		}
		printStats(st)
		return nil
	},
}

func printStats(st science.ScientificStats) {
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)

	bold.Println("System load")
	fmt.Printf("  %.0f\n", st.SystemLoad)

	bold.Println("Neuro profile")
	for _, axis := range science.Axes {
		fmt.Printf("  %s %.2f\n", padRight(axis, 10), st.NeuroProfile[axis])
	}

	if len(st.ChemicalDistribution) > 0 {
		bold.Println("Chemicals")
		names := make([]string, 0, len(st.ChemicalDistribution))
		for name := range st.ChemicalDistribution {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s %.2f\n", padRight(name, 16), st.ChemicalDistribution[name])
		}
	}

	bold.Println("Autonomic")
	fmt.Printf("  sympathetic %.0f  parasympathetic %.0f  balance %.2f\n",
		st.Autonomic.Sympathetic, st.Autonomic.Parasympathetic, st.Autonomic.Balance)

	bold.Println("Phases")
	for _, phase := range science.Phases {
		p := st.Phases[phase]
		align := p.AlignmentScore
		switch align {
		case science.AlignmentOptimal:
			align = color.GreenString(align)
		case science.AlignmentPoor:
			align = color.RedString(align)
		}
		fmt.Printf("  %s %s %s %s\n",
			padRight(phase, 10),
			faint.Sprintf("%d habits, load %.0f,", len(p.Habits), p.Load),
			padRight(p.DominantAxis, 10),
			align)
	}

	bold.Println("Protocol efficiency")
	fmt.Printf("  strain %.0f over %.0f min, ratio %.2f\n",
		st.ProtocolEfficiency.Strain, st.ProtocolEfficiency.Duration, st.ProtocolEfficiency.Ratio)
}

var habitDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a habit done and extend its streak",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := db.GetHabit(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("habit not found: %s", args[0])
		}
		if err := db.SetHabitStreak(cmd.Context(), h.ID.String(), h.Streak+1); err != nil {
			return fmt.Errorf("failed to update streak: %w", err)
		}
		color.Green("✓ %s streak %d", h.Name, h.Streak+1)
		return nil
	},
}

var habitDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a habit",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := db.GetHabit(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("habit not found: %s", args[0])
		}
		if err := db.DeleteHabit(cmd.Context(), h.ID.String()); err != nil {
			return fmt.Errorf("failed to delete habit: %w", err)
		}
		color.Yellow("✗ Deleted habit %s", h.Name)
		return nil
	},
}

func init() {
	f := habitAddCmd.Flags()
	f.StringVar(&habitCategory, "category", "", "free-form category")
	f.BoolVar(&habitNegative, "negative", false, "a habit to break rather than build")
	f.StringVar(&habitTime, "time", models.TimeAnytime, "morning, afternoon, evening or anytime")
	f.Float64Var(&habitFriction, "friction", 0, "energy cost")
	f.Float64Var(&habitState, "state", 0, "signed activation")
	f.Float64Var(&habitDuration, "duration", 0, "typical duration in minutes")
	f.StringVar(&habitDriver, "driver", "", "primary neurochemical driver")
	f.StringVar(&habitSecondary, "secondary", "", "secondary neurochemical driver")
	f.StringVar(&habitSchedule, "schedule", "daily", "recurrence (see 'lifeos habit --help')")

	habitListCmd.Flags().BoolVarP(&habitAll, "all", "a", false, "include inactive habits")

	habitCmd.AddCommand(habitAddCmd, habitListCmd, habitTodayCmd, habitStatsCmd, habitDoneCmd, habitDeleteCmd)
	rootCmd.AddCommand(habitCmd)
}
