package announcements

import (
	"context"

	"helphands-go/internal/domain/events"
)

type Repository interface {
	// Transaction runs fn against a repository bound to one transaction.
	Transaction(ctx context.Context, fn func(Repository) error) error
	CreateAnnouncement(ctx context.Context, announcement *Announcement) error
	GetAnnouncement(ctx context.Context, id string) (*Announcement, error)
	// LockAnnouncement reads the row and holds it until the transaction ends.
	LockAnnouncement(ctx context.Context, id string) (*Announcement, error)
	// UpdateAnnouncement reports ErrAnnouncementNotFound when no row matched.
	UpdateAnnouncement(ctx context.Context, announcement *Announcement) error
	DeleteAnnouncement(ctx context.Context, id string) (bool, error)
	ListAnnouncements(ctx context.Context, query Query) ([]Announcement, error)
	// MarkRead inserts the read entry unless one already exists.
	MarkRead(ctx context.Context, read *Read) error
	ReadStats(ctx context.Context, announcementIDs []string, userID string) (map[string]ReadStat, error)
	AuthorNames(ctx context.Context, userIDs []string) (map[string]string, error)
	EventTitles(ctx context.Context, eventIDs []string) (map[string]string, error)
}

// EventDirectory is the slice of the roster manager announcements need.
type EventDirectory interface {
	EventTitle(ctx context.Context, eventID string) (string, error)
	IsVolunteer(ctx context.Context, eventID, userID string) (bool, error)
	VolunteerEventIDs(ctx context.Context, userID string) ([]string, error)
	Volunteers(ctx context.Context, eventID string) ([]events.RosterEntry, error)
}
