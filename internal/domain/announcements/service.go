package announcements

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"helphands-go/internal/domain/access"
	"helphands-go/internal/domain/validation"
)

type Service struct {
	repo   Repository
	events EventDirectory
	now    func() time.Time
}

func NewService(repo Repository, events EventDirectory) *Service {
	return &Service{repo: repo, events: events, now: time.Now}
}

// ListVisible returns the broadcast announcements the caller may see.
// Non-admins only ever see active announcements for their audiences.
func (s *Service) ListVisible(ctx context.Context, caller *access.Caller, filter ListFilter) ([]Item, error) {
	if err := access.Authorize(caller, access.ActionAnnouncementRead, access.Target{}); err != nil {
		return nil, err
	}

	filter.Audience = normalize(filter.Audience)
	filter.Priority = normalize(filter.Priority)
	if err := validation.Struct(filter); err != nil {
		return nil, err
	}

	query := Query{Scope: ScopeBroadcast, Priority: filter.Priority}
	if caller.IsAdmin() {
		query.Active = filter.Active
		if filter.Audience != "" {
			query.Audiences = []string{filter.Audience}
		}
	} else {
		active := true
		query.Active = &active
		query.Audiences = audiencesFor(caller)
		if filter.Audience != "" {
			if !contains(query.Audiences, filter.Audience) {
				return []Item{}, nil
			}
			query.Audiences = []string{filter.Audience}
		}
	}

	items, err := s.repo.ListAnnouncements(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, caller, items)
}

// Get returns one announcement. Announcements the caller may not see are
// reported as missing.
func (s *Service) Get(ctx context.Context, caller *access.Caller, id string) (*Item, error) {
	if err := access.Authorize(caller, access.ActionAnnouncementRead, access.Target{}); err != nil {
		return nil, err
	}

	announcement, err := s.repo.GetAnnouncement(ctx, id)
	if err != nil {
		return nil, err
	}

	visible, err := s.visible(ctx, caller, announcement)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrAnnouncementNotFound
	}
	return s.decorateOne(ctx, caller, announcement)
}

// ListMine returns active announcements for the events the caller is
// currently rostered on.
func (s *Service) ListMine(ctx context.Context, caller *access.Caller) ([]Item, error) {
	if err := access.Authorize(caller, access.ActionAnnouncementListMine, access.Target{}); err != nil {
		return nil, err
	}

	eventIDs, err := s.events.VolunteerEventIDs(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	if len(eventIDs) == 0 {
		return []Item{}, nil
	}

	active := true
	items, err := s.repo.ListAnnouncements(ctx, Query{
		Scope:    ScopeEvents,
		EventIDs: eventIDs,
		Active:   &active,
	})
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, caller, items)
}

func (s *Service) Create(ctx context.Context, caller *access.Caller, input CreateInput) (*Item, error) {
	if err := access.Authorize(caller, access.ActionAnnouncementCreate, access.Target{}); err != nil {
		return nil, err
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Content = strings.TrimSpace(input.Content)
	input.Priority = withDefault(normalize(input.Priority), PriorityMedium)
	input.TargetAudience = withDefault(normalize(input.TargetAudience), AudienceAll)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	announcement := Announcement{
		ID:             uuid.NewString(),
		Title:          input.Title,
		Content:        input.Content,
		Priority:       input.Priority,
		TargetAudience: input.TargetAudience,
		IsActive:       input.IsActive == nil || *input.IsActive,
		CreatedBy:      caller.UserID,
	}
	if err := s.repo.CreateAnnouncement(ctx, &announcement); err != nil {
		return nil, err
	}
	return s.decorateOne(ctx, caller, &announcement)
}

// Update applies the supplied fields. A nil IsActive leaves the flag as is.
func (s *Service) Update(ctx context.Context, caller *access.Caller, input UpdateInput) (*Item, error) {
	if err := access.Authorize(caller, access.ActionAnnouncementUpdate, access.Target{}); err != nil {
		return nil, err
	}

	input.Title = validation.TrimPtr(input.Title)
	input.Content = validation.TrimPtr(input.Content)
	if input.Priority != nil {
		priority := normalize(*input.Priority)
		input.Priority = &priority
	}
	if input.TargetAudience != nil {
		audience := normalize(*input.TargetAudience)
		input.TargetAudience = &audience
	}
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	var updated *Announcement
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		announcement, err := tx.LockAnnouncement(ctx, input.ID)
		if err != nil {
			return err
		}
		if input.Title != nil {
			announcement.Title = *input.Title
		}
		if input.Content != nil {
			announcement.Content = *input.Content
		}
		if input.Priority != nil {
			announcement.Priority = *input.Priority
		}
		if input.TargetAudience != nil {
			announcement.TargetAudience = *input.TargetAudience
		}
		if input.IsActive != nil {
			announcement.IsActive = *input.IsActive
		}

		if err := tx.UpdateAnnouncement(ctx, announcement); err != nil {
			return err
		}
		updated = announcement
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.decorateOne(ctx, caller, updated)
}

// ToggleActive flips the flag under the row lock so concurrent toggles
// apply one after another.
func (s *Service) ToggleActive(ctx context.Context, caller *access.Caller, id string) (*Item, error) {
	if err := access.Authorize(caller, access.ActionAnnouncementToggle, access.Target{}); err != nil {
		return nil, err
	}

	var toggled *Announcement
	err := s.repo.Transaction(ctx, func(tx Repository) error {
		announcement, err := tx.LockAnnouncement(ctx, id)
		if err != nil {
			return err
		}
		announcement.IsActive = !announcement.IsActive
		if err := tx.UpdateAnnouncement(ctx, announcement); err != nil {
			return err
		}
		toggled = announcement
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.decorateOne(ctx, caller, toggled)
}

func (s *Service) Delete(ctx context.Context, caller *access.Caller, id string) error {
	if err := access.Authorize(caller, access.ActionAnnouncementDelete, access.Target{}); err != nil {
		return err
	}

	deleted, err := s.repo.DeleteAnnouncement(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrAnnouncementNotFound
	}
	return nil
}

// AnnounceToEvent stores an event-scoped announcement and reports the
// roster it is addressed to. Nothing is pushed to the recipients.
func (s *Service) AnnounceToEvent(ctx context.Context, caller *access.Caller, eventID string, input AnnounceInput) (*Delivery, error) {
	if err := access.Authorize(caller, access.ActionEventAnnounce, access.Target{}); err != nil {
		return nil, err
	}

	title, err := s.events.EventTitle(ctx, eventID)
	if err != nil {
		return nil, err
	}
	recipients, err := s.events.Volunteers(ctx, eventID)
	if err != nil {
		return nil, err
	}

	input.Title = withDefault(strings.TrimSpace(input.Title), "Announcement for "+title)
	input.Content = strings.TrimSpace(input.Content)
	input.Priority = withDefault(normalize(input.Priority), PriorityMedium)
	if err := validation.Struct(input); err != nil {
		return nil, err
	}

	scoped := eventID
	announcement := Announcement{
		ID:             uuid.NewString(),
		EventID:        &scoped,
		Title:          input.Title,
		Content:        input.Content,
		Priority:       input.Priority,
		TargetAudience: AudienceVolunteers,
		IsActive:       true,
		CreatedBy:      caller.UserID,
	}
	if err := s.repo.CreateAnnouncement(ctx, &announcement); err != nil {
		return nil, err
	}

	item, err := s.decorateOne(ctx, caller, &announcement)
	if err != nil {
		return nil, err
	}
	return &Delivery{Item: *item, Recipients: recipients}, nil
}

// MarkRead records that the caller has read the announcement. Repeated
// calls leave a single entry.
func (s *Service) MarkRead(ctx context.Context, caller *access.Caller, id string) error {
	if err := access.Authorize(caller, access.ActionAnnouncementMarkRead, access.Target{}); err != nil {
		return err
	}

	announcement, err := s.repo.GetAnnouncement(ctx, id)
	if err != nil {
		return err
	}

	if announcement.Broadcast() {
		if !broadcastVisible(caller, announcement) {
			return ErrAnnouncementNotFound
		}
	} else {
		enrolled, err := s.events.IsVolunteer(ctx, *announcement.EventID, caller.UserID)
		if err != nil {
			return err
		}
		if !enrolled {
			return ErrNotEnrolled
		}
	}

	return s.repo.MarkRead(ctx, &Read{
		AnnouncementID: announcement.ID,
		UserID:         caller.UserID,
		ReadAt:         s.now().UTC(),
	})
}

func (s *Service) visible(ctx context.Context, caller *access.Caller, announcement *Announcement) (bool, error) {
	if caller.IsAdmin() {
		return true, nil
	}
	if announcement.Broadcast() {
		return broadcastVisible(caller, announcement), nil
	}
	if !caller.Authenticated() || !announcement.IsActive {
		return false, nil
	}
	return s.events.IsVolunteer(ctx, *announcement.EventID, caller.UserID)
}

func broadcastVisible(caller *access.Caller, announcement *Announcement) bool {
	if caller.IsAdmin() {
		return true
	}
	return announcement.IsActive && contains(audiencesFor(caller), announcement.TargetAudience)
}

func audiencesFor(caller *access.Caller) []string {
	switch {
	case caller.IsAdmin():
		return []string{AudienceAll, AudienceVolunteers, AudienceAdmins}
	case caller.Authenticated():
		return []string{AudienceAll, AudienceVolunteers}
	default:
		return []string{AudienceAll}
	}
}

func (s *Service) decorateOne(ctx context.Context, caller *access.Caller, announcement *Announcement) (*Item, error) {
	items, err := s.decorate(ctx, caller, []Announcement{*announcement})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *Service) decorate(ctx context.Context, caller *access.Caller, items []Announcement) ([]Item, error) {
	if len(items) == 0 {
		return []Item{}, nil
	}

	ids := make([]string, 0, len(items))
	authorIDs := make([]string, 0, len(items))
	eventIDs := make([]string, 0)
	for _, announcement := range items {
		ids = append(ids, announcement.ID)
		authorIDs = append(authorIDs, announcement.CreatedBy)
		if announcement.EventID != nil {
			eventIDs = append(eventIDs, *announcement.EventID)
		}
	}

	userID := ""
	if caller.Authenticated() {
		userID = caller.UserID
	}
	stats, err := s.repo.ReadStats(ctx, ids, userID)
	if err != nil {
		return nil, err
	}
	authors, err := s.repo.AuthorNames(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	titles := map[string]string{}
	if len(eventIDs) > 0 {
		titles, err = s.repo.EventTitles(ctx, eventIDs)
		if err != nil {
			return nil, err
		}
	}

	result := make([]Item, 0, len(items))
	for _, announcement := range items {
		item := Item{
			Announcement: announcement,
			AuthorName:   authors[announcement.CreatedBy],
			ReadCount:    stats[announcement.ID].Count,
			IsRead:       stats[announcement.ID].ReadByUser,
		}
		if announcement.EventID != nil {
			item.EventTitle = titles[*announcement.EventID]
		}
		result = append(result, item)
	}
	return result, nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func withDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
