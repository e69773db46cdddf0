package announcements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "helphands-go/internal/domain/announcements"
	eventsdomain "helphands-go/internal/domain/events"
)

const priorityOrder = "CASE priority WHEN 'urgent' THEN 4 WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END DESC"

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

func (r *PostgresRepository) CreateAnnouncement(ctx context.Context, announcement *domain.Announcement) error {
	if err := r.db.WithContext(ctx).Create(announcement).Error; err != nil {
		if announcement.EventID != nil && errors.Is(err, gorm.ErrForeignKeyViolated) {
			return eventsdomain.ErrEventNotFound
		}
		return fmt.Errorf("create announcement: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetAnnouncement(ctx context.Context, id string) (*domain.Announcement, error) {
	return r.getAnnouncement(r.db.WithContext(ctx), id)
}

func (r *PostgresRepository) LockAnnouncement(ctx context.Context, id string) (*domain.Announcement, error) {
	return r.getAnnouncement(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *PostgresRepository) getAnnouncement(db *gorm.DB, id string) (*domain.Announcement, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrAnnouncementNotFound
	}

	var announcement domain.Announcement
	if err := db.Where("id = ?", id).First(&announcement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAnnouncementNotFound
		}
		return nil, fmt.Errorf("get announcement: %w", err)
	}
	return &announcement, nil
}

func (r *PostgresRepository) UpdateAnnouncement(ctx context.Context, announcement *domain.Announcement) error {
	announcement.UpdatedAt = time.Now().UTC()
	result := r.db.WithContext(ctx).Model(announcement).
		Select("title", "content", "priority", "target_audience", "is_active", "updated_at").
		Updates(announcement)
	if result.Error != nil {
		return fmt.Errorf("update announcement: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrAnnouncementNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteAnnouncement(ctx context.Context, id string) (bool, error) {
	if _, err := uuid.Parse(id); err != nil {
		return false, nil
	}
	result := r.db.WithContext(ctx).Delete(&domain.Announcement{}, "id = ?", id)
	if result.Error != nil {
		return false, fmt.Errorf("delete announcement: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *PostgresRepository) ListAnnouncements(ctx context.Context, query domain.Query) ([]domain.Announcement, error) {
	db := r.db.WithContext(ctx).Model(&domain.Announcement{})
	switch query.Scope {
	case domain.ScopeEvents:
		if len(query.EventIDs) == 0 {
			return []domain.Announcement{}, nil
		}
		db = db.Where("event_id IN ?", query.EventIDs)
	default:
		db = db.Where("event_id IS NULL")
	}
	if len(query.Audiences) > 0 {
		db = db.Where("target_audience IN ?", query.Audiences)
	}
	if query.Priority != "" {
		db = db.Where("priority = ?", query.Priority)
	}
	if query.Active != nil {
		db = db.Where("is_active = ?", *query.Active)
	}

	var items []domain.Announcement
	if err := db.Order(priorityOrder).Order("created_at desc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	return items, nil
}

func (r *PostgresRepository) MarkRead(ctx context.Context, read *domain.Read) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(read).Error
	if err != nil {
		return fmt.Errorf("mark announcement read: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ReadStats(ctx context.Context, announcementIDs []string, userID string) (map[string]domain.ReadStat, error) {
	type statRow struct {
		AnnouncementID string `gorm:"column:announcement_id"`
		Count          int    `gorm:"column:read_count"`
		ReadByUser     bool   `gorm:"column:read_by_user"`
	}

	stats := make(map[string]domain.ReadStat, len(announcementIDs))
	if len(announcementIDs) == 0 {
		return stats, nil
	}

	var rows []statRow
	if err := r.db.WithContext(ctx).
		Table("announcement_reads").
		Select("announcement_id, COUNT(*) AS read_count, BOOL_OR(user_id::text = ?) AS read_by_user", userID).
		Where("announcement_id IN ?", announcementIDs).
		Group("announcement_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("announcement read stats: %w", err)
	}

	for _, row := range rows {
		stats[row.AnnouncementID] = domain.ReadStat{Count: row.Count, ReadByUser: row.ReadByUser}
	}
	return stats, nil
}

func (r *PostgresRepository) AuthorNames(ctx context.Context, userIDs []string) (map[string]string, error) {
	return r.names(ctx, "users", "name", userIDs)
}

func (r *PostgresRepository) EventTitles(ctx context.Context, eventIDs []string) (map[string]string, error) {
	return r.names(ctx, "events", "title", eventIDs)
}

func (r *PostgresRepository) names(ctx context.Context, table, column string, ids []string) (map[string]string, error) {
	type nameRow struct {
		ID   string `gorm:"column:id"`
		Name string `gorm:"column:name"`
	}

	result := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	var rows []nameRow
	if err := r.db.WithContext(ctx).
		Table(table).
		Select("id, "+column+" AS name").
		Where("id IN ?", ids).
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("lookup %s: %w", table, err)
	}
	for _, row := range rows {
		result[row.ID] = row.Name
	}
	return result, nil
}
