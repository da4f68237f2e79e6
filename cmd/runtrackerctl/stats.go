package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/runtracker/internal/app/store/docstore"
	"github.com/dalemusser/runtracker/internal/domain/models"
	"github.com/dalemusser/runtracker/internal/domain/reading"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show a user's reading totals and stored streak",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&flagJSON, "json", false, "print the result as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close(cmd)

	ctx := cmd.Context()
	profile, err := s.users.Get(ctx, flagUser)
	if errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("user %q has no profile", flagUser)
	}
	if err != nil {
		return err
	}
	reports, err := s.reports.ListByUser(ctx, flagUser)
	if err != nil {
		return err
	}
	sum := reading.Summarize(reports)

	out := cmd.OutOrStdout()
	if flagJSON {
		return printJSON(out, map[string]any{
			"user_id": flagUser,
			"reading": sum,
			"streak":  profile.StreakData,
		})
	}

	rec := profile.StreakData
	fmt.Fprintf(out, "User:            %s\n", displayName(profile))
	fmt.Fprintf(out, "Reports:         %s\n", humanize.Comma(int64(sum.TotalReports)))
	fmt.Fprintf(out, "Pages read:      %s\n", humanize.Comma(int64(sum.TotalPages)))
	fmt.Fprintf(out, "Books:           %d\n", sum.DistinctBookCount)
	fmt.Fprintf(out, "Latest day:      %d\n", sum.MostRecentDay)
	fmt.Fprintf(out, "Action items:    %d/%d done\n", sum.ActionItemsDone, sum.ActionItemsTotal)
	fmt.Fprintf(out, "Plan held:       %d%%\n", sum.PDCA.DidPlannedHappen)
	fmt.Fprintf(out, "Urgency:         %d%%\n", sum.PDCA.HadUrgency)
	fmt.Fprintf(out, "Managed time:    %d%%\n", sum.PDCA.ManagedTime)
	fmt.Fprintf(out, "Current streak:  %d (best %d)\n", rec.CurrentStreak, rec.LongestStreak)
	fmt.Fprintf(out, "Completion:      %d%%\n", rec.CompletionRate)
	fmt.Fprintf(out, "Last active:     %s\n", lastActive(rec.LastActiveDate, s.now, s.loc))
	return nil
}

func displayName(p models.Profile) string {
	if p.Name == "" {
		return p.ID
	}
	return fmt.Sprintf("%s (%s)", p.Name, p.ID)
}

// lastActive renders the stored YYYY-MM-DD relative to now.
func lastActive(date *string, now time.Time, loc *time.Location) string {
	if date == nil || *date == "" {
		return "never"
	}
	t, err := time.ParseInLocation("2006-01-02", *date, loc)
	if err != nil {
		return *date
	}
	return fmt.Sprintf("%s (%s)", *date, humanize.RelTime(t, now, "ago", "from now"))
}
