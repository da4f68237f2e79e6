// internal/domain/models/profile.go
package models

import "time"

// StreakRecord is the streak sub-document stored on a Profile.
// Only the streak synchronizer writes it.
type StreakRecord struct {
	CurrentStreak  int     `bson:"current_streak" json:"current_streak" yaml:"current_streak"`
	LongestStreak  int     `bson:"longest_streak" json:"longest_streak" yaml:"longest_streak"`
	CompletionRate int     `bson:"completion_rate" json:"completion_rate" yaml:"completion_rate"` // 0..100
	TotalReports   int     `bson:"total_reports" json:"total_reports" yaml:"total_reports"`
	LastActiveDate *string `bson:"last_active_date" json:"last_active_date" yaml:"last_active_date"` // YYYY-MM-DD or nil

	// ActiveDates holds every toggled day as YYYY-MM-DD across months.
	ActiveDates []string `bson:"active_dates,omitempty" json:"active_dates,omitempty" yaml:"active_dates,omitempty"`
	// ActiveCalendarDays are the toggled days of ActiveMonth (YYYY-MM),
	// the month of the last streak write. Days carry no meaning without it.
	ActiveCalendarDays []int  `bson:"active_calendar_days" json:"active_calendar_days" yaml:"active_calendar_days"`
	ActiveMonth        string `bson:"active_month,omitempty" json:"active_month,omitempty" yaml:"active_month,omitempty"`
}

// Profile is a user's document in the users collection. ID is the user id.
type Profile struct {
	ID         string       `bson:"_id,omitempty" json:"id" yaml:"id"`
	Name       string       `bson:"name" json:"name" yaml:"name"`
	Email      string       `bson:"email" json:"email" yaml:"email"`
	PhotoURL   string       `bson:"photo_url" json:"photo_url" yaml:"photo_url"`
	Goal       string       `bson:"goal" json:"goal" yaml:"goal"`
	StreakData StreakRecord `bson:"streak_data" json:"streak_data" yaml:"streak_data"`

	CreatedAt time.Time `bson:"created_at" json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at" yaml:"updated_at"`
}
