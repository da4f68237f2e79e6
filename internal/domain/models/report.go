// internal/domain/models/report.go
package models

import "time"

// PDCA holds the plan-do-check-act reflection answers of a report.
type PDCA struct {
	DidPlannedHappen bool   `bson:"did_planned_happen" json:"did_planned_happen" yaml:"did_planned_happen"`
	HadUrgency       bool   `bson:"had_urgency" json:"had_urgency" yaml:"had_urgency"`
	ManagedTime      bool   `bson:"managed_time" json:"managed_time" yaml:"managed_time"`
	Adjustments      string `bson:"adjustments" json:"adjustments" yaml:"adjustments"`
}

// ActionItem is one follow-up task attached to a report.
type ActionItem struct {
	Text      string `bson:"text" json:"text" yaml:"text"`
	Completed bool   `bson:"completed" json:"completed" yaml:"completed"`
}

// Report is one daily "book report" journal entry.
//
// DayNumber is the label the user assigns ("Day 12"); it is not the
// calendar day. The calendar day comes from CreatedAt.
type Report struct {
	ID          string       `bson:"_id,omitempty" json:"id" yaml:"id"`
	UserID      string       `bson:"user_id" json:"user_id" yaml:"user_id"`
	DayNumber   string       `bson:"day_number" json:"day_number" yaml:"day_number"`
	BookTitle   string       `bson:"book_title" json:"book_title" yaml:"book_title"`
	Date        string       `bson:"date" json:"date" yaml:"date"`
	Pages       string       `bson:"pages" json:"pages" yaml:"pages"` // "from-to"
	What        string       `bson:"what" json:"what" yaml:"what"`
	SoWhat      string       `bson:"so_what" json:"so_what" yaml:"so_what"`
	PDCA        PDCA         `bson:"pdca" json:"pdca" yaml:"pdca"`
	ActionItems []ActionItem `bson:"action_items" json:"action_items" yaml:"action_items"`

	CreatedAt time.Time `bson:"created_at" json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at" yaml:"updated_at"`
}
