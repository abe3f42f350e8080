package domain

import (
	"slices"
	"time"
)

// UserID identifies the caller. Zero means "no authenticated caller".
type UserID int64

func (id UserID) Anonymous() bool {
	return id == 0
}

const (
	NotificationTypePrayerReminder = "prayer_reminder"
	NotificationTypeChurchReminder = "church_reminder"
	NotificationTypeResourceUpdate = "resource_update"
)

//nolint:gochecknoglobals // Fixed category set, never mutated.
var PrayerCategories = []string{"healing", "gratitude", "guidance", "family", "world", "other"}

func ValidPrayerCategory(category string) bool {
	return slices.Contains(PrayerCategories, category)
}

type PrayerIntention struct {
	ID         int64     `json:"id"         db:"id"`
	UserID     UserID    `json:"userId"     db:"user_id"`
	Intention  string    `json:"intention"  db:"intention"`
	Category   string    `json:"category"   db:"category"`
	IsAnswered bool      `json:"isAnswered" db:"is_answered"`
	CreatedAt  time.Time `json:"createdAt"  db:"created_at"`
}

type PrayerStats struct {
	Total    int64 `json:"total"    db:"total"`
	Answered int64 `json:"answered" db:"answered"`
}

type ChurchVisit struct {
	ID         int64     `json:"id"              db:"id"`
	UserID     UserID    `json:"userId"          db:"user_id"`
	ChurchName string    `json:"churchName"      db:"church_name"`
	VisitDate  time.Time `json:"visitDate"       db:"visit_date"`
	Notes      *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt  time.Time `json:"createdAt"       db:"created_at"`
}

type VisitStats struct {
	Total     int64 `json:"total"     db:"total"`
	ThisMonth int64 `json:"thisMonth" db:"this_month"`
}

type Notification struct {
	ID        int64     `json:"id"        db:"id"`
	UserID    UserID    `json:"userId"    db:"user_id"`
	Message   string    `json:"message"   db:"message"`
	Type      string    `json:"type"      db:"type"`
	IsRead    bool      `json:"isRead"    db:"is_read"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
