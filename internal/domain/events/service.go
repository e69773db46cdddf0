package events

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"helphands-go/internal/domain/access"
	"helphands-go/internal/domain/validation"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) List(ctx context.Context, caller *access.Caller, filter ListFilter) ([]Roster, error) {
	if err := access.Authorize(caller, access.ActionEventRead, access.Target{}); err != nil {
		return nil, err
	}

	filter.Category = strings.TrimSpace(filter.Category)
	items, err := s.repo.ListEvents(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, items)
}

func (s *Service) Get(ctx context.Context, caller *access.Caller, id string) (*Roster, error) {
	if err := access.Authorize(caller, access.ActionEventRead, access.Target{}); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// ListForVolunteer returns the events the caller has joined, soonest first.
func (s *Service) ListForVolunteer(ctx context.Context, caller *access.Caller) ([]Roster, error) {
	if err := access.Authorize(caller, access.ActionMyEvents, access.Target{}); err != nil {
		return nil, err
	}

	items, err := s.repo.ListEventsByVolunteer(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, items)
}

func (s *Service) Create(ctx context.Context, caller *access.Caller, input CreateEventInput) (*Roster, error) {
	if err := access.Authorize(caller, access.ActionEventCreate, access.Target{}); err != nil {
		return nil, err
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Time = strings.TrimSpace(input.Time)
	input.Location = strings.TrimSpace(input.Location)
	input.Category = strings.TrimSpace(input.Category)
	if input.Category == "" {
		input.Category = CategoryGeneral
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if !validCapacity(input.MaxVolunteers) {
		return nil, ErrInvalidCapacity
	}
	if !input.Date.After(s.now()) {
		return nil, ErrInvalidDate
	}

	event := Event{
		ID:            uuid.NewString(),
		Title:         input.Title,
		Description:   input.Description,
		Date:          input.Date.UTC(),
		Time:          input.Time,
		Location:      input.Location,
		Category:      input.Category,
		MaxVolunteers: input.MaxVolunteers,
		CreatedBy:     caller.UserID,
	}
	if err := s.repo.CreateEvent(ctx, &event); err != nil {
		return nil, err
	}
	return s.load(ctx, event.ID)
}

// Update applies the supplied fields. A capacity change is checked against
// the live roster under the event lock.
func (s *Service) Update(ctx context.Context, caller *access.Caller, input UpdateEventInput) (*Roster, error) {
	if err := access.Authorize(caller, access.ActionEventUpdate, access.Target{}); err != nil {
		return nil, err
	}

	input.Title = validation.TrimPtr(input.Title)
	input.Description = validation.TrimPtr(input.Description)
	input.Time = validation.TrimPtr(input.Time)
	input.Location = validation.TrimPtr(input.Location)
	input.Category = validation.TrimPtr(input.Category)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	if input.MaxVolunteers != nil && !validCapacity(*input.MaxVolunteers) {
		return nil, ErrInvalidCapacity
	}
	if input.Date != nil && !input.Date.After(s.now()) {
		return nil, ErrInvalidDate
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		event, err := tx.LockEvent(ctx, input.ID)
		if err != nil {
			return err
		}

		if input.Title != nil {
			event.Title = *input.Title
		}
		if input.Description != nil {
			event.Description = *input.Description
		}
		if input.Date != nil {
			event.Date = input.Date.UTC()
		}
		if input.Time != nil {
			event.Time = *input.Time
		}
		if input.Location != nil {
			event.Location = *input.Location
		}
		if input.Category != nil {
			event.Category = *input.Category
		}
		if input.MaxVolunteers != nil {
			current, err := tx.CountVolunteers(ctx, event.ID)
			if err != nil {
				return err
			}
			if *input.MaxVolunteers < current {
				return ErrCapacityBelowCurrent
			}
			event.MaxVolunteers = *input.MaxVolunteers
		}

		return tx.UpdateEvent(ctx, event)
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, input.ID)
}

func (s *Service) UpdateCapacity(ctx context.Context, caller *access.Caller, eventID string, maxVolunteers int) (*Roster, error) {
	return s.Update(ctx, caller, UpdateEventInput{ID: eventID, MaxVolunteers: &maxVolunteers})
}

// Delete removes the event. Its roster and event-scoped announcements go
// with it.
func (s *Service) Delete(ctx context.Context, caller *access.Caller, id string) error {
	if err := access.Authorize(caller, access.ActionEventDelete, access.Target{}); err != nil {
		return err
	}

	deleted, err := s.repo.DeleteEvent(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrEventNotFound
	}
	return nil
}

// Join adds the caller to the roster. The capacity check and insert happen
// under the event row lock so concurrent joins cannot overbook.
func (s *Service) Join(ctx context.Context, caller *access.Caller, eventID string) (*Roster, error) {
	if err := access.Authorize(caller, access.ActionEventJoin, access.Target{}); err != nil {
		return nil, err
	}

	err := s.repo.Transaction(ctx, func(tx Repository) error {
		event, err := tx.LockEvent(ctx, eventID)
		if err != nil {
			return err
		}

		current, err := tx.CountVolunteers(ctx, eventID)
		if err != nil {
			return err
		}
		if current >= event.MaxVolunteers {
			return ErrEventFull
		}

		joined, err := tx.IsVolunteer(ctx, eventID, caller.UserID)
		if err != nil {
			return err
		}
		if joined {
			return ErrAlreadyVolunteer
		}

		return tx.AddVolunteer(ctx, &Volunteer{
			EventID:  eventID,
			UserID:   caller.UserID,
			JoinedAt: s.now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, eventID)
}

func (s *Service) Leave(ctx context.Context, caller *access.Caller, eventID string) (*Roster, error) {
	if err := access.Authorize(caller, access.ActionEventLeave, access.Target{}); err != nil {
		return nil, err
	}
	return s.remove(ctx, eventID, caller.UserID)
}

// RemoveVolunteer drops another user from the roster on an admin's behalf.
func (s *Service) RemoveVolunteer(ctx context.Context, caller *access.Caller, eventID, volunteerID string) (*Roster, error) {
	if err := access.Authorize(caller, access.ActionRosterRemove, access.Target{}); err != nil {
		return nil, err
	}
	return s.remove(ctx, eventID, volunteerID)
}

func (s *Service) remove(ctx context.Context, eventID, userID string) (*Roster, error) {
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		if _, err := tx.LockEvent(ctx, eventID); err != nil {
			return err
		}

		removed, err := tx.RemoveVolunteer(ctx, eventID, userID)
		if err != nil {
			return err
		}
		if !removed {
			return ErrNotVolunteer
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, eventID)
}

// EventTitle, IsVolunteer and VolunteerEventIDs back the announcement
// service's event lookups.
func (s *Service) EventTitle(ctx context.Context, eventID string) (string, error) {
	event, err := s.repo.GetEvent(ctx, eventID)
	if err != nil {
		return "", err
	}
	return event.Title, nil
}

func (s *Service) IsVolunteer(ctx context.Context, eventID, userID string) (bool, error) {
	return s.repo.IsVolunteer(ctx, eventID, userID)
}

func (s *Service) VolunteerEventIDs(ctx context.Context, userID string) ([]string, error) {
	return s.repo.ListEventIDsByVolunteer(ctx, userID)
}

// Volunteers lists the current roster of one event.
func (s *Service) Volunteers(ctx context.Context, eventID string) ([]RosterEntry, error) {
	if _, err := s.repo.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	rosters, err := s.repo.ListRosters(ctx, []string{eventID})
	if err != nil {
		return nil, err
	}
	return rosters[eventID], nil
}

func (s *Service) load(ctx context.Context, id string) (*Roster, error) {
	event, err := s.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := s.assemble(ctx, []Event{*event})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *Service) assemble(ctx context.Context, items []Event) ([]Roster, error) {
	if len(items) == 0 {
		return []Roster{}, nil
	}

	eventIDs := make([]string, 0, len(items))
	creatorIDs := make([]string, 0, len(items))
	for _, event := range items {
		eventIDs = append(eventIDs, event.ID)
		creatorIDs = append(creatorIDs, event.CreatedBy)
	}

	rosters, err := s.repo.ListRosters(ctx, eventIDs)
	if err != nil {
		return nil, err
	}
	people, err := s.repo.ListPeople(ctx, creatorIDs)
	if err != nil {
		return nil, err
	}

	result := make([]Roster, 0, len(items))
	for _, event := range items {
		volunteers := rosters[event.ID]
		if volunteers == nil {
			volunteers = []RosterEntry{}
		}
		creator, ok := people[event.CreatedBy]
		if !ok {
			creator = Person{ID: event.CreatedBy}
		}
		result = append(result, Roster{
			Event:      event,
			Creator:    creator,
			Volunteers: volunteers,
		})
	}
	return result, nil
}

func validCapacity(value int) bool {
	return value >= MinCapacity && value <= MaxCapacity
}
