package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Recompute a user's streak for a month and save it if it changed",
	Long: `recalc runs the same load the dashboard does: it reads the profile and
reports, derives the active and missed days, and writes the streak record
back when current streak, longest streak or completion rate changed.`,
	Args: cobra.NoArgs,
	RunE: runRecalc,
}

func init() {
	recalcCmd.Flags().StringVar(&flagMonth, "month", "", "month to evaluate as YYYY-MM (default current month)")
	recalcCmd.Flags().BoolVar(&flagJSON, "json", false, "print the result as JSON")
}

func runRecalc(cmd *cobra.Command, args []string) error {
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

	out := cmd.OutOrStdout()
	if flagJSON {
		if err := printJSON(out, map[string]any{
			"user_id":     flagUser,
			"month":       st.Month.String(),
			"stats":       st.Stats,
			"active_days": st.ActiveDays,
			"missed_days": st.MissedDays,
			"saved":       st.StreakSaved,
			"created":     st.ProfileCreated,
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "User:            %s\n", flagUser)
		fmt.Fprintf(out, "Month:           %s\n", st.Month)
		fmt.Fprintf(out, "Current streak:  %d\n", st.Stats.CurrentStreak)
		fmt.Fprintf(out, "Longest streak:  %d\n", st.Stats.LongestStreak)
		fmt.Fprintf(out, "Completion:      %d%%\n", st.Stats.CompletionRate)
		fmt.Fprintf(out, "Active days:     %d\n", len(st.ActiveDays))
		fmt.Fprintf(out, "Missed days:     %d\n", len(st.MissedDays))
		if st.StreakSaved {
			fmt.Fprintln(out, "Streak record updated.")
		} else {
			fmt.Fprintln(out, "Streak record unchanged.")
		}
	}

	if st.Degraded {
		return fmt.Errorf("recalc incomplete: %s failed", strings.Join(st.Errors, ", "))
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
