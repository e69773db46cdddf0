package events

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helphands-go/internal/domain/access"
	"helphands-go/internal/domain/validation"
)

var (
	fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	admin      = &access.Caller{UserID: "admin-1", Role: access.RoleAdmin}
	volunteerA = &access.Caller{UserID: "user-a", Role: access.RoleVolunteer}
	volunteerB = &access.Caller{UserID: "user-b", Role: access.RoleVolunteer}
)

type fakeEventsRepo struct {
	txMu sync.Mutex

	mu         sync.Mutex
	events     map[string]Event
	volunteers map[string][]Volunteer
	people     map[string]Person
}

func newFakeEventsRepo() *fakeEventsRepo {
	return &fakeEventsRepo{
		events:     make(map[string]Event),
		volunteers: make(map[string][]Volunteer),
		people: map[string]Person{
			"admin-1": {ID: "admin-1", Name: "Admin", Email: "admin@example.com"},
			"user-a":  {ID: "user-a", Name: "Ann", Email: "ann@example.com"},
			"user-b":  {ID: "user-b", Name: "Bob", Email: "bob@example.com"},
		},
	}
}

// Transaction serializes callers the way the event row lock does.
func (r *fakeEventsRepo) Transaction(ctx context.Context, fn func(Repository) error) error {
	r.txMu.Lock()
	defer r.txMu.Unlock()
	return fn(r)
}

func (r *fakeEventsRepo) ListEvents(ctx context.Context, filter ListFilter) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]Event, 0, len(r.events))
	for _, event := range r.events {
		if filter.Category != "" && event.Category != filter.Category {
			continue
		}
		items = append(items, event)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Date.Before(items[j].Date)
	})
	return items, nil
}

func (r *fakeEventsRepo) ListEventsByVolunteer(ctx context.Context, userID string) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items := make([]Event, 0)
	for eventID, rows := range r.volunteers {
		for _, row := range rows {
			if row.UserID == userID {
				items = append(items, r.events[eventID])
			}
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Date.Before(items[j].Date)
	})
	return items, nil
}

func (r *fakeEventsRepo) GetEvent(ctx context.Context, id string) (*Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	event, ok := r.events[id]
	if !ok {
		return nil, ErrEventNotFound
	}
	return &event, nil
}

func (r *fakeEventsRepo) LockEvent(ctx context.Context, id string) (*Event, error) {
	return r.GetEvent(ctx, id)
}

func (r *fakeEventsRepo) CreateEvent(ctx context.Context, event *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[event.ID] = *event
	return nil
}

func (r *fakeEventsRepo) UpdateEvent(ctx context.Context, event *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[event.ID]; !ok {
		return ErrEventNotFound
	}
	r.events[event.ID] = *event
	return nil
}

func (r *fakeEventsRepo) DeleteEvent(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return false, nil
	}
	delete(r.events, id)
	delete(r.volunteers, id)
	return true, nil
}

func (r *fakeEventsRepo) CountVolunteers(ctx context.Context, eventID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.volunteers[eventID]), nil
}

func (r *fakeEventsRepo) IsVolunteer(ctx context.Context, eventID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.volunteers[eventID] {
		if row.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEventsRepo) AddVolunteer(ctx context.Context, volunteer *Volunteer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.volunteers[volunteer.EventID] {
		if row.UserID == volunteer.UserID {
			return errors.New("duplicate roster key")
		}
	}
	r.volunteers[volunteer.EventID] = append(r.volunteers[volunteer.EventID], *volunteer)
	return nil
}

func (r *fakeEventsRepo) RemoveVolunteer(ctx context.Context, eventID, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.volunteers[eventID]
	for i, row := range rows {
		if row.UserID == userID {
			r.volunteers[eventID] = append(rows[:i:i], rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeEventsRepo) ListRosters(ctx context.Context, eventIDs []string) (map[string][]RosterEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make(map[string][]RosterEntry, len(eventIDs))
	for _, id := range eventIDs {
		for _, row := range r.volunteers[id] {
			result[id] = append(result[id], RosterEntry{Person: r.people[row.UserID], JoinedAt: row.JoinedAt})
		}
	}
	return result, nil
}

func (r *fakeEventsRepo) ListPeople(ctx context.Context, userIDs []string) (map[string]Person, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := make(map[string]Person, len(userIDs))
	for _, id := range userIDs {
		if person, ok := r.people[id]; ok {
			result[id] = person
		}
	}
	return result, nil
}

func (r *fakeEventsRepo) ListEventIDsByVolunteer(ctx context.Context, userID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0)
	for eventID, rows := range r.volunteers {
		for _, row := range rows {
			if row.UserID == userID {
				ids = append(ids, eventID)
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func newTestService() (*Service, *fakeEventsRepo) {
	repo := newFakeEventsRepo()
	svc := NewService(repo)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo
}

func validInput(capacity int) CreateEventInput {
	return CreateEventInput{
		Title:         "  Beach cleanup ",
		Description:   "Collect litter along the shore",
		Date:          fixedNow.Add(72 * time.Hour),
		Time:          "09:00",
		Location:      "North beach",
		MaxVolunteers: capacity,
	}
}

func createEvent(t *testing.T, svc *Service, capacity int) *Roster {
	t.Helper()
	roster, err := svc.Create(context.Background(), admin, validInput(capacity))
	require.NoError(t, err)
	return roster
}

func TestCreateEvent(t *testing.T) {
	svc, _ := newTestService()

	roster := createEvent(t, svc, 5)

	assert.NotEmpty(t, roster.Event.ID)
	assert.Equal(t, "Beach cleanup", roster.Event.Title)
	assert.Equal(t, CategoryGeneral, roster.Event.Category)
	assert.Equal(t, "admin-1", roster.Event.CreatedBy)
	assert.Equal(t, "Admin", roster.Creator.Name)
	assert.Empty(t, roster.Volunteers)
	assert.Equal(t, 0, roster.CurrentVolunteers())
	assert.Equal(t, 5, roster.SpotsRemaining())
	assert.False(t, roster.IsFull())
}

func TestCreateEventRequiresAdmin(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), volunteerA, validInput(5))
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = svc.Create(context.Background(), nil, validInput(5))
	assert.ErrorIs(t, err, access.ErrUnauthenticated)
}

func TestCreateEventValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	past := validInput(5)
	past.Date = fixedNow.Add(-time.Hour)
	_, err := svc.Create(ctx, admin, past)
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.ErrorIs(t, err, validation.ErrInvalid)

	now := validInput(5)
	now.Date = fixedNow
	_, err = svc.Create(ctx, admin, now)
	assert.ErrorIs(t, err, ErrInvalidDate)

	for _, capacity := range []int{0, -3, 1001} {
		_, err = svc.Create(ctx, admin, validInput(capacity))
		assert.ErrorIs(t, err, ErrInvalidCapacity, "capacity %d", capacity)
	}

	missingTitle := validInput(5)
	missingTitle.Title = "   "
	_, err = svc.Create(ctx, admin, missingTitle)
	var verr *validation.Error
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "title", verr.Field)

	badCategory := validInput(5)
	badCategory.Category = "Sports"
	_, err = svc.Create(ctx, admin, badCategory)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "category", verr.Field)
}

func TestJoinAndLeave(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	event := createEvent(t, svc, 3)

	roster, err := svc.Join(ctx, volunteerA, event.Event.ID)
	require.NoError(t, err)
	require.Len(t, roster.Volunteers, 1)
	assert.Equal(t, "Ann", roster.Volunteers[0].Name)
	assert.Equal(t, fixedNow, roster.Volunteers[0].JoinedAt)
	assert.True(t, roster.Has("user-a"))
	assert.Equal(t, 2, roster.SpotsRemaining())

	_, err = svc.Join(ctx, volunteerA, event.Event.ID)
	assert.ErrorIs(t, err, ErrAlreadyVolunteer)

	_, err = svc.Join(ctx, volunteerB, event.Event.ID)
	require.NoError(t, err)

	roster, err = svc.Leave(ctx, volunteerA, event.Event.ID)
	require.NoError(t, err)
	require.Len(t, roster.Volunteers, 1)
	assert.Equal(t, "user-b", roster.Volunteers[0].ID)

	_, err = svc.Leave(ctx, volunteerA, event.Event.ID)
	assert.ErrorIs(t, err, ErrNotVolunteer)
}

func TestJoinUnknownEvent(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Join(context.Background(), volunteerA, "missing")
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, err = svc.Leave(context.Background(), volunteerA, "missing")
	assert.ErrorIs(t, err, ErrEventNotFound)

	_, err = svc.Join(context.Background(), nil, "missing")
	assert.ErrorIs(t, err, access.ErrUnauthenticated)
}

func TestSingleSpotScenario(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	event := createEvent(t, svc, 1)
	id := event.Event.ID

	roster, err := svc.Join(ctx, volunteerA, id)
	require.NoError(t, err)
	assert.True(t, roster.IsFull())

	_, err = svc.Join(ctx, volunteerB, id)
	assert.ErrorIs(t, err, ErrEventFull)

	_, err = svc.Leave(ctx, volunteerA, id)
	require.NoError(t, err)

	roster, err = svc.Join(ctx, volunteerB, id)
	require.NoError(t, err)
	require.Len(t, roster.Volunteers, 1)
	assert.Equal(t, "user-b", roster.Volunteers[0].ID)
}

func TestConcurrentJoinsNeverOverbook(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	event := createEvent(t, svc, 5)

	const attempts = 40
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		joined int
		full   int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			caller := &access.Caller{UserID: fmt.Sprintf("user-%02d", i), Role: access.RoleVolunteer}
			_, err := svc.Join(ctx, caller, event.Event.ID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				joined++
			case errors.Is(err, ErrEventFull):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 5, joined)
	assert.Equal(t, attempts-5, full)
	count, err := repo.CountVolunteers(ctx, event.Event.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestUpdateCapacity(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	event := createEvent(t, svc, 3)
	id := event.Event.ID

	_, err := svc.Join(ctx, volunteerA, id)
	require.NoError(t, err)
	_, err = svc.Join(ctx, volunteerB, id)
	require.NoError(t, err)

	_, err = svc.UpdateCapacity(ctx, admin, id, 1)
	assert.ErrorIs(t, err, ErrCapacityBelowCurrent)

	_, err = svc.UpdateCapacity(ctx, admin, id, 0)
	assert.ErrorIs(t, err, ErrInvalidCapacity)

	roster, err := svc.UpdateCapacity(ctx, admin, id, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, roster.Event.MaxVolunteers)
	assert.True(t, roster.IsFull())
	assert.Equal(t, 0, roster.SpotsRemaining())

	_, err = svc.UpdateCapacity(ctx, volunteerA, id, 10)
	assert.ErrorIs(t, err, access.ErrForbidden)

	_, err = svc.UpdateCapacity(ctx, admin, "missing", 10)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestUpdateEvent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	event := createEvent(t, svc, 3)

	title := " Park cleanup "
	category := CategoryEnvironment
	newDate := fixedNow.Add(240 * time.Hour)
	roster, err := svc.Update(ctx, admin, UpdateEventInput{
		ID:       event.Event.ID,
		Title:    &title,
		Category: &category,
		Date:     &newDate,
	})
	require.NoError(t, err)
	assert.Equal(t, "Park cleanup", roster.Event.Title)
	assert.Equal(t, CategoryEnvironment, roster.Event.Category)
	assert.Equal(t, newDate, roster.Event.Date)
	assert.Equal(t, "North beach", roster.Event.Location)

	past := fixedNow.Add(-time.Minute)
	_, err = svc.Update(ctx, admin, UpdateEventInput{ID: event.Event.ID, Date: &past})
	assert.ErrorIs(t, err, ErrInvalidDate)

	empty := ""
	_, err = svc.Update(ctx, admin, UpdateEventInput{ID: event.Event.ID, Location: &empty})
	assert.ErrorIs(t, err, validation.ErrInvalid)
}

func TestRemoveVolunteer(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	event := createEvent(t, svc, 3)
	id := event.Event.ID

	_, err := svc.Join(ctx, volunteerA, id)
	require.NoError(t, err)

	_, err = svc.RemoveVolunteer(ctx, volunteerB, id, "user-a")
	assert.ErrorIs(t, err, access.ErrForbidden)

	roster, err := svc.RemoveVolunteer(ctx, admin, id, "user-a")
	require.NoError(t, err)
	assert.Empty(t, roster.Volunteers)

	_, err = svc.RemoveVolunteer(ctx, admin, id, "user-a")
	assert.ErrorIs(t, err, ErrNotVolunteer)
}

func TestDeleteEvent(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	event := createEvent(t, svc, 3)

	assert.ErrorIs(t, svc.Delete(ctx, volunteerA, event.Event.ID), access.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, admin, event.Event.ID))

	_, err := svc.Get(ctx, nil, event.Event.ID)
	assert.ErrorIs(t, err, ErrEventNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, admin, event.Event.ID), ErrEventNotFound)
}

func TestListAndMyEvents(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	later := validInput(2)
	later.Date = fixedNow.Add(500 * time.Hour)
	later.Category = CategoryHealth
	laterEvent, err := svc.Create(ctx, admin, later)
	require.NoError(t, err)
	sooner := createEvent(t, svc, 2)

	items, err := svc.List(ctx, nil, ListFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, sooner.Event.ID, items[0].Event.ID)
	assert.Equal(t, laterEvent.Event.ID, items[1].Event.ID)

	items, err = svc.List(ctx, nil, ListFilter{Category: " Health "})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, laterEvent.Event.ID, items[0].Event.ID)

	_, err = svc.Join(ctx, volunteerA, laterEvent.Event.ID)
	require.NoError(t, err)

	mine, err := svc.ListForVolunteer(ctx, volunteerA)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, laterEvent.Event.ID, mine[0].Event.ID)

	_, err = svc.ListForVolunteer(ctx, nil)
	assert.ErrorIs(t, err, access.ErrUnauthenticated)

	ids, err := svc.VolunteerEventIDs(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, []string{laterEvent.Event.ID}, ids)

	title, err := svc.EventTitle(ctx, laterEvent.Event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Beach cleanup", title)

	ok, err := svc.IsVolunteer(ctx, laterEvent.Event.ID, "user-b")
	require.NoError(t, err)
	assert.False(t, ok)
}
