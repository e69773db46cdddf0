package announcements

import (
	"time"

	"helphands-go/internal/domain/events"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"

	AudienceAll        = "all"
	AudienceVolunteers = "volunteers"
	AudienceAdmins     = "admins"
)

// Announcement is either a broadcast (EventID nil) or scoped to one
// event's roster.
type Announcement struct {
	ID             string    `gorm:"type:uuid;primaryKey"`
	EventID        *string   `gorm:"type:uuid;index"`
	Title          string    `gorm:"not null"`
	Content        string    `gorm:"not null"`
	Priority       string    `gorm:"type:varchar(16);not null"`
	TargetAudience string    `gorm:"type:varchar(16);not null"`
	IsActive       bool      `gorm:"not null"`
	CreatedBy      string    `gorm:"type:uuid;not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (a Announcement) Broadcast() bool {
	return a.EventID == nil
}

type Read struct {
	AnnouncementID string    `gorm:"type:uuid;primaryKey"`
	UserID         string    `gorm:"type:uuid;primaryKey"`
	ReadAt         time.Time `gorm:"not null"`
}

func (Read) TableName() string {
	return "announcement_reads"
}

// Item is an announcement as presented to one caller.
type Item struct {
	Announcement
	AuthorName string
	EventTitle string
	ReadCount  int
	IsRead     bool
}

// Delivery is the outcome of announcing to an event roster.
type Delivery struct {
	Item       Item
	Recipients []events.RosterEntry
}

func (d Delivery) SentTo() int {
	return len(d.Recipients)
}

type ReadStat struct {
	Count      int
	ReadByUser bool
}

type Scope int

const (
	ScopeBroadcast Scope = iota
	ScopeEvents
)

// Query is the repository-level selection. Results are ordered by
// priority rank then newest first.
type Query struct {
	Scope     Scope
	EventIDs  []string
	Audiences []string
	Priority  string
	Active    *bool
}

// PriorityRank orders priorities from low (1) to urgent (4).
func PriorityRank(priority string) int {
	switch priority {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

type ListFilter struct {
	Audience string `validate:"omitempty,oneof=all volunteers admins"`
	Priority string `validate:"omitempty,oneof=low medium high urgent"`
	Active   *bool
}

type CreateInput struct {
	Title          string `validate:"required,max=100"`
	Content        string `validate:"required,max=2000"`
	Priority       string `validate:"oneof=low medium high urgent"`
	TargetAudience string `validate:"oneof=all volunteers admins"`
	IsActive       *bool
}

type UpdateInput struct {
	ID             string
	Title          *string `validate:"omitnil,min=1,max=100"`
	Content        *string `validate:"omitnil,min=1,max=2000"`
	Priority       *string `validate:"omitnil,oneof=low medium high urgent"`
	TargetAudience *string `validate:"omitnil,oneof=all volunteers admins"`
	IsActive       *bool
}

type AnnounceInput struct {
	Title    string `validate:"required,max=100"`
	Content  string `validate:"required,max=2000"`
	Priority string `validate:"oneof=low medium high urgent"`
}
