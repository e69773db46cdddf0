package handler

import (
	"time"

	"helphands-go/internal/domain/access"
	announcementsdomain "helphands-go/internal/domain/announcements"
	eventsdomain "helphands-go/internal/domain/events"
	userdomain "helphands-go/internal/domain/user"
)

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type personResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

type volunteerResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joined_at"`
}

type eventResponse struct {
	ID                string              `json:"id"`
	Title             string              `json:"title"`
	Description       string              `json:"description"`
	Date              time.Time           `json:"date"`
	Time              string              `json:"time"`
	Location          string              `json:"location"`
	Category          string              `json:"category"`
	MaxVolunteers     int                 `json:"max_volunteers"`
	CurrentVolunteers int                 `json:"current_volunteers"`
	SpotsRemaining    int                 `json:"spots_remaining"`
	IsFull            bool                `json:"is_full"`
	IsJoined          *bool               `json:"is_joined,omitempty"`
	CreatedBy         personResponse      `json:"created_by"`
	Volunteers        []volunteerResponse `json:"volunteers"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

type announcementResponse struct {
	ID             string         `json:"id"`
	EventID        *string        `json:"event_id,omitempty"`
	EventTitle     string         `json:"event_title,omitempty"`
	Title          string         `json:"title"`
	Content        string         `json:"content"`
	Priority       string         `json:"priority"`
	TargetAudience string         `json:"target_audience"`
	IsActive       bool           `json:"is_active"`
	CreatedBy      personResponse `json:"created_by"`
	ReadCount      int            `json:"read_count"`
	IsRead         *bool          `json:"is_read,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type recipientResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type deliveryResponse struct {
	ID         string              `json:"id"`
	EventTitle string              `json:"event_title"`
	Title      string              `json:"title"`
	Content    string              `json:"content"`
	SentTo     int                 `json:"sent_to"`
	Volunteers []recipientResponse `json:"volunteers"`
}

func toUserResponse(user *userdomain.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Address:   user.Address,
		Role:      string(user.Role),
		Status:    user.Status,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func toUserResponses(users []userdomain.User) []userResponse {
	result := make([]userResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i]))
	}
	return result
}

func toEventResponse(roster *eventsdomain.Roster, caller *access.Caller) eventResponse {
	volunteers := make([]volunteerResponse, 0, len(roster.Volunteers))
	for _, entry := range roster.Volunteers {
		volunteers = append(volunteers, volunteerResponse{
			ID:       entry.ID,
			Name:     entry.Name,
			Email:    entry.Email,
			JoinedAt: entry.JoinedAt,
		})
	}

	response := eventResponse{
		ID:                roster.Event.ID,
		Title:             roster.Event.Title,
		Description:       roster.Event.Description,
		Date:              roster.Event.Date,
		Time:              roster.Event.Time,
		Location:          roster.Event.Location,
		Category:          roster.Event.Category,
		MaxVolunteers:     roster.Event.MaxVolunteers,
		CurrentVolunteers: roster.CurrentVolunteers(),
		SpotsRemaining:    roster.SpotsRemaining(),
		IsFull:            roster.IsFull(),
		CreatedBy: personResponse{
			ID:   roster.Creator.ID,
			Name: roster.Creator.Name,
		},
		Volunteers: volunteers,
		CreatedAt:  roster.Event.CreatedAt,
		UpdatedAt:  roster.Event.UpdatedAt,
	}
	if caller.Authenticated() {
		joined := roster.Has(caller.UserID)
		response.IsJoined = &joined
	}
	return response
}

func toEventResponses(rosters []eventsdomain.Roster, caller *access.Caller) []eventResponse {
	result := make([]eventResponse, 0, len(rosters))
	for i := range rosters {
		result = append(result, toEventResponse(&rosters[i], caller))
	}
	return result
}

func toAnnouncementResponse(item *announcementsdomain.Item, caller *access.Caller) announcementResponse {
	response := announcementResponse{
		ID:             item.ID,
		EventID:        item.EventID,
		EventTitle:     item.EventTitle,
		Title:          item.Title,
		Content:        item.Content,
		Priority:       item.Priority,
		TargetAudience: item.TargetAudience,
		IsActive:       item.IsActive,
		CreatedBy: personResponse{
			ID:   item.CreatedBy,
			Name: item.AuthorName,
		},
		ReadCount: item.ReadCount,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
	if caller.Authenticated() {
		isRead := item.IsRead
		response.IsRead = &isRead
	}
	return response
}

func toAnnouncementResponses(items []announcementsdomain.Item, caller *access.Caller) []announcementResponse {
	result := make([]announcementResponse, 0, len(items))
	for i := range items {
		result = append(result, toAnnouncementResponse(&items[i], caller))
	}
	return result
}

func toDeliveryResponse(delivery *announcementsdomain.Delivery) deliveryResponse {
	recipients := make([]recipientResponse, 0, len(delivery.Recipients))
	for _, entry := range delivery.Recipients {
		recipients = append(recipients, recipientResponse{Name: entry.Name, Email: entry.Email})
	}
	return deliveryResponse{
		ID:         delivery.Item.ID,
		EventTitle: delivery.Item.EventTitle,
		Title:      delivery.Item.Title,
		Content:    delivery.Item.Content,
		SentTo:     delivery.SentTo(),
		Volunteers: recipients,
	}
}
