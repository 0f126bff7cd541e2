// ABOUTME: CLI commands for ultradian flow sessions.
// ABOUTME: The default command runs the TUI timer; --headless runs a plain ticker loop.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/lifeos/internal/flow"
	"github.com/harperreed/lifeos/internal/tui"
	"github.com/spf13/cobra"
)

var (
	flowHeadless bool
	flowMission  string
	flowEffort   int
	flowLimit    int
)

var flowCmd = &cobra.Command{
	Use:   "flow",
	Short: "Run a 90 minute ultradian focus session",
	Long: `Run a 90 minute ultradian focus session in a full-screen timer.

PHASES:

  anchor      settle in before the clock starts
  focus       90 minutes: friction (0-15), flow (15-75), decline (75+)
  effort      rate perceived effort 1-10
  refraction  let the work settle, then break or finish

KEYS:

  s start   enter confirm   space pause   c capture thought
  b break   f finish        r reset       q quit

Completed sessions count toward the daily focus goal ('lifeos flow goal').
With --headless the timer runs without a UI; Ctrl-C abandons the block.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := svc.NewFlowMachine()
		if flowHeadless {
			return runHeadless(cmd.Context(), m)
		}
		return tui.RunFlow(m)
	},
}

func runHeadless(ctx context.Context, m *flow.Machine) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	m.StartSession(flowMission)
	m.ResolveAnchor(true)
	color.Cyan("Focus started: %s", tui.FormatCountdown(m.State().Remaining))

	ticks := make(chan time.Time)
	done := make(chan error, 1)
	go func() { done <- flow.Run(ctx, m, ticks) }()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for m.Phase() != flow.PhaseEffort {
		select {
		case <-ctx.Done():
			<-done
			m.ResetTimer()
			return errors.New("interrupted, focus block abandoned")
		case t := <-ticker.C:
			select {
			case ticks <- t:
			case <-ctx.Done():
			}
		}
	}
	close(ticks)
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	s, _ := m.SubmitEffort(flowEffort, "")
	m.Finish()
	color.Green("✓ Logged %d focus minutes", s.FocusMinutes)
	return nil
}

var flowSessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List recorded flow sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		sessions, err := svc.FlowSessions(flowLimit)
		if err != nil {
			return fmt.Errorf("failed to load sessions: %w", err)
		}
		progress, err := svc.FocusProgress()
		if err != nil {
			return fmt.Errorf("failed to load goal: %w", err)
		}

		faint := color.New(color.Faint)
		fmt.Printf("Today %d/%d min (%.0f%%) over %d session(s)\n",
			progress.Minutes, progress.TargetMinutes, progress.Percent, progress.Sessions)
		if len(sessions) == 0 {
			fmt.Println("No sessions recorded.")
			return nil
		}
		for _, s := range sessions {
			status := color.GreenString("done")
			if !s.Completed {
				status = color.YellowString("abandoned")
			}
			effort := "-"
			if s.Effort != nil {
				effort = strconv.Itoa(*s.Effort)
			}
			fmt.Printf("%s %s %3d min effort %s %s %s\n",
				faint.Sprint(shortID(s.ID)),
				faint.Sprint(s.StartedAt.Local().Format("2006-01-02 15:04")),
				s.FocusMinutes,
				padRight(effort, 2),
				padRight(status, 9),
				truncate(s.Mission, 40))
		}
		return nil
	},
}

// shortID keeps the random tail of a ULID, which is what differs between
// sessions started in the same millisecond range.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[len(id)-8:]
}

var flowGoalCmd = &cobra.Command{
	Use:   "goal [minutes]",
	Short: "Show or set the daily focus goal",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			g, err := flow.LoadGoals(store)
			if err != nil {
				return err
			}
			fmt.Printf("Daily focus goal: %d min\n", g.DailyMinutes)
			return nil
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid minutes: %s", args[0])
		}
		if err := flow.SaveGoals(store, flow.Goals{DailyMinutes: n}); err != nil {
			return err
		}
		color.Green("✓ Daily focus goal %d min", n)
		return nil
	},
}

func init() {
	flowCmd.Flags().BoolVar(&flowHeadless, "headless", false, "run without the TUI")
	flowCmd.Flags().StringVar(&flowMission, "mission", "", "mission for --headless")
	flowCmd.Flags().IntVar(&flowEffort, "effort", 0, "effort rating recorded by --headless (0 for none)")
	flowSessionsCmd.Flags().IntVarP(&flowLimit, "limit", "n", 10, "max number of sessions")

	flowCmd.AddCommand(flowSessionsCmd, flowGoalCmd)
	rootCmd.AddCommand(flowCmd)
}
