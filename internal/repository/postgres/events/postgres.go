package events

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "helphands-go/internal/domain/events"
)

type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Transaction(ctx context.Context, fn func(domain.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&PostgresRepository{db: tx})
	})
}

func (r *PostgresRepository) ListEvents(ctx context.Context, filter domain.ListFilter) ([]domain.Event, error) {
	query := r.db.WithContext(ctx).Model(&domain.Event{})
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var items []domain.Event
	if err := query.Order("date asc").Order("created_at asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return items, nil
}

func (r *PostgresRepository) ListEventsByVolunteer(ctx context.Context, userID string) ([]domain.Event, error) {
	var items []domain.Event
	if err := r.db.WithContext(ctx).
		Table("events").
		Select("events.*").
		Joins("join event_volunteers on event_volunteers.event_id = events.id").
		Where("event_volunteers.user_id = ?", userID).
		Order("events.date asc").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list volunteer events: %w", err)
	}
	return items, nil
}

func (r *PostgresRepository) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	return r.getEvent(r.db.WithContext(ctx), id)
}

func (r *PostgresRepository) LockEvent(ctx context.Context, id string) (*domain.Event, error) {
	return r.getEvent(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *PostgresRepository) getEvent(db *gorm.DB, id string) (*domain.Event, error) {
	if !validID(id) {
		return nil, domain.ErrEventNotFound
	}

	var event domain.Event
	if err := db.Where("id = ?", id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &event, nil
}

func (r *PostgresRepository) CreateEvent(ctx context.Context, event *domain.Event) error {
	if err := r.db.WithContext(ctx).Create(event).Error; err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpdateEvent(ctx context.Context, event *domain.Event) error {
	event.UpdatedAt = time.Now().UTC()
	err := r.db.WithContext(ctx).Model(event).
		Select("title", "description", "date", "time", "location", "category", "max_volunteers", "updated_at").
		Updates(event).Error
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteEvent(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	result := r.db.WithContext(ctx).Delete(&domain.Event{}, "id = ?", id)
	if result.Error != nil {
		return false, fmt.Errorf("delete event: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *PostgresRepository) CountVolunteers(ctx context.Context, eventID string) (int, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Volunteer{}).Where("event_id = ?", eventID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count volunteers: %w", err)
	}
	return int(count), nil
}

func (r *PostgresRepository) IsVolunteer(ctx context.Context, eventID, userID string) (bool, error) {
	if !validID(eventID) || !validID(userID) {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Volunteer{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("check volunteer: %w", err)
	}
	return count > 0, nil
}

func (r *PostgresRepository) AddVolunteer(ctx context.Context, volunteer *domain.Volunteer) error {
	if err := r.db.WithContext(ctx).Create(volunteer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadyVolunteer
		}
		return fmt.Errorf("add volunteer: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RemoveVolunteer(ctx context.Context, eventID, userID string) (bool, error) {
	if !validID(eventID) || !validID(userID) {
		return false, nil
	}
	result := r.db.WithContext(ctx).Delete(&domain.Volunteer{}, "event_id = ? AND user_id = ?", eventID, userID)
	if result.Error != nil {
		return false, fmt.Errorf("remove volunteer: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *PostgresRepository) ListRosters(ctx context.Context, eventIDs []string) (map[string][]domain.RosterEntry, error) {
	type rosterRow struct {
		EventID  string    `gorm:"column:event_id"`
		UserID   string    `gorm:"column:user_id"`
		Name     string    `gorm:"column:name"`
		Email    string    `gorm:"column:email"`
		JoinedAt time.Time `gorm:"column:joined_at"`
	}

	rosters := make(map[string][]domain.RosterEntry, len(eventIDs))
	if len(eventIDs) == 0 {
		return rosters, nil
	}

	var rows []rosterRow
	if err := r.db.WithContext(ctx).
		Table("event_volunteers").
		Select("event_volunteers.event_id, event_volunteers.user_id, users.name, users.email, event_volunteers.joined_at").
		Joins("join users on users.id = event_volunteers.user_id").
		Where("event_volunteers.event_id IN ?", eventIDs).
		Order("event_volunteers.joined_at asc").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list rosters: %w", err)
	}

	for _, row := range rows {
		rosters[row.EventID] = append(rosters[row.EventID], domain.RosterEntry{
			Person:   domain.Person{ID: row.UserID, Name: row.Name, Email: row.Email},
			JoinedAt: row.JoinedAt,
		})
	}
	return rosters, nil
}

func (r *PostgresRepository) ListPeople(ctx context.Context, userIDs []string) (map[string]domain.Person, error) {
	people := make(map[string]domain.Person, len(userIDs))
	if len(userIDs) == 0 {
		return people, nil
	}

	var rows []domain.Person
	if err := r.db.WithContext(ctx).
		Table("users").
		Select("id, name, email").
		Where("id IN ?", userIDs).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	for _, row := range rows {
		people[row.ID] = row
	}
	return people, nil
}

func (r *PostgresRepository) ListEventIDsByVolunteer(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&domain.Volunteer{}).
		Where("user_id = ?", userID).
		Pluck("event_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list volunteer event ids: %w", err)
	}
	return ids, nil
}

// validID reports whether id can match a uuid column. Malformed ids are
// treated as missing rows instead of surfacing a driver error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
