package events

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	ListEvents(ctx context.Context, filter ListFilter) ([]Event, error)
	ListEventsByVolunteer(ctx context.Context, userID string) ([]Event, error)
	GetEvent(ctx context.Context, id string) (*Event, error)
	// LockEvent loads the event and holds a row lock until the surrounding
	// transaction ends.
	LockEvent(ctx context.Context, id string) (*Event, error)
	CreateEvent(ctx context.Context, event *Event) error
	UpdateEvent(ctx context.Context, event *Event) error
	DeleteEvent(ctx context.Context, id string) (bool, error)
	CountVolunteers(ctx context.Context, eventID string) (int, error)
	IsVolunteer(ctx context.Context, eventID, userID string) (bool, error)
	AddVolunteer(ctx context.Context, volunteer *Volunteer) error
	RemoveVolunteer(ctx context.Context, eventID, userID string) (bool, error)
	ListRosters(ctx context.Context, eventIDs []string) (map[string][]RosterEntry, error)
	ListPeople(ctx context.Context, userIDs []string) (map[string]Person, error)
	ListEventIDsByVolunteer(ctx context.Context, userID string) ([]string, error)
}
