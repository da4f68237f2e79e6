package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dalemusser/runtracker/internal/app/system/streaksync"
	"github.com/spf13/cobra"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Print a user's month calendar with active and missed days",
	Args:  cobra.NoArgs,
	RunE:  runCalendar,
}

func init() {
	calendarCmd.Flags().StringVar(&flagMonth, "month", "", "month to show as YYYY-MM (default current month)")
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	headStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	missedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	todayStyle  = lipgloss.NewStyle().Underline(true)
	restStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// Cell markers keep the grid readable without colour.
const (
	markActive = "*"
	markMissed = "."
)

func runCalendar(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close(cmd)

	m, err := s.month()
	if err != nil {
		return err
	}
	st, err := s.sync.LoadDashboardState(cmd.Context(), s.user(), m)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderCalendar(st))
	return nil
}

func renderCalendar(st streaksync.DashboardState) string {
	active := map[int]bool{}
	for _, d := range st.ActiveDays {
		active[d] = true
	}
	missed := map[int]bool{}
	for _, d := range st.MissedDays {
		missed[d] = true
	}

	var b strings.Builder
	title := fmt.Sprintf("%s %d", st.Month.Month, st.Month.Year)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	heads := make([]string, 0, 7)
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		heads = append(heads, fmt.Sprintf("%-3s", wd.String()[:2]))
	}
	b.WriteString(headStyle.Render(strings.Join(heads, " ")))
	b.WriteString("\n")

	for i, d := range st.Grid {
		if i > 0 && i%7 == 0 {
			b.WriteString("\n")
		} else if i > 0 {
			b.WriteString(" ")
		}
		if d == 0 {
			b.WriteString("   ")
			continue
		}
		var cell string
		switch {
		case active[d]:
			cell = activeStyle.Render(fmt.Sprintf("%2d%s", d, markActive))
		case missed[d]:
			cell = missedStyle.Render(fmt.Sprintf("%2d%s", d, markMissed))
		default:
			cell = restStyle.Render(fmt.Sprintf("%2d ", d))
		}
		if st.IsCurrentMonth && d == st.Today {
			cell = todayStyle.Render(cell)
		}
		b.WriteString(cell)
	}
	b.WriteString("\n\n")
	b.WriteString(headStyle.Render(markActive + " active   " + markMissed + " missed"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Streak %d (best %d), %d%% complete",
		st.Stats.CurrentStreak, st.Stats.LongestStreak, st.Stats.CompletionRate)
	if st.Degraded {
		fmt.Fprintf(&b, "\nwarning: %s unavailable", strings.Join(st.Errors, ", "))
	}
	return b.String()
}
