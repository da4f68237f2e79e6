// Package reading summarises a user's book reports.
package reading

import (
	"math"
	"strconv"
	"strings"

	"github.com/dalemusser/runtracker/internal/domain/models"
)

// PDCAPercent is the share of reports, 0..100, that answered yes to
// each plan-do-check-act question.
type PDCAPercent struct {
	DidPlannedHappen int `json:"did_planned_happen" yaml:"did_planned_happen"`
	HadUrgency       int `json:"had_urgency" yaml:"had_urgency"`
	ManagedTime      int `json:"managed_time" yaml:"managed_time"`
}

// Summary is the reading stats view.
type Summary struct {
	TotalReports      int         `json:"total_reports" yaml:"total_reports"`
	TotalPages        int         `json:"total_pages" yaml:"total_pages"`
	PDCA              PDCAPercent `json:"pdca" yaml:"pdca"`
	ActionItemsDone   int         `json:"action_items_done" yaml:"action_items_done"`
	ActionItemsTotal  int         `json:"action_items_total" yaml:"action_items_total"`
	MostRecentDay     int         `json:"most_recent_day" yaml:"most_recent_day"`
	DistinctBookCount int         `json:"distinct_books" yaml:"distinct_books"`
}

// PageCount returns the number of pages in an inclusive "from-to"
// range such as "10-20". Anything else counts as zero pages.
func PageCount(pages string) int {
	from, to, ok := strings.Cut(pages, "-")
	if !ok {
		return 0
	}
	a, err1 := strconv.Atoi(strings.TrimSpace(from))
	b, err2 := strconv.Atoi(strings.TrimSpace(to))
	if err1 != nil || err2 != nil || b < a {
		return 0
	}
	return b - a + 1
}

// DayNumber parses a report's day number; non-numeric values are 0.
func DayNumber(r models.Report) int {
	n, err := strconv.Atoi(strings.TrimSpace(r.DayNumber))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Summarize computes the stats for reports.
func Summarize(reports []models.Report) Summary {
	s := Summary{TotalReports: len(reports)}
	if len(reports) == 0 {
		return s
	}

	var planned, urgency, managed int
	books := map[string]struct{}{}
	for _, r := range reports {
		s.TotalPages += PageCount(r.Pages)
		if r.PDCA.DidPlannedHappen {
			planned++
		}
		if r.PDCA.HadUrgency {
			urgency++
		}
		if r.PDCA.ManagedTime {
			managed++
		}
		for _, it := range r.ActionItems {
			s.ActionItemsTotal++
			if it.Completed {
				s.ActionItemsDone++
			}
		}
		s.MostRecentDay = max(s.MostRecentDay, DayNumber(r))
		if t := strings.ToLower(strings.TrimSpace(r.BookTitle)); t != "" {
			books[t] = struct{}{}
		}
	}
	s.DistinctBookCount = len(books)
	s.PDCA = PDCAPercent{
		DidPlannedHappen: percent(planned, len(reports)),
		HadUrgency:       percent(urgency, len(reports)),
		ManagedTime:      percent(managed, len(reports)),
	}
	return s
}

func percent(n, of int) int {
	if of == 0 {
		return 0
	}
	return int(math.Round(100 * float64(n) / float64(of)))
}
