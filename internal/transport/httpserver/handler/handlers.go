package handler

import (
	"context"
	"time"

	"helphands-go/internal/domain/access"
	announcementsdomain "helphands-go/internal/domain/announcements"
	eventsdomain "helphands-go/internal/domain/events"
	userdomain "helphands-go/internal/domain/user"
	"helphands-go/pkg/logger"
)

type TokenIssuer interface {
	Issue(userID string, role access.Role) (string, time.Time, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handlers struct {
	Users         *userdomain.Service
	Events        *eventsdomain.Service
	Announcements *announcementsdomain.Service
	tokens        TokenIssuer
	db            Pinger
	log           logger.Logger
}

func New(users *userdomain.Service, events *eventsdomain.Service, announcements *announcementsdomain.Service, tokens TokenIssuer, db Pinger, log logger.Logger) *Handlers {
	return &Handlers{
		Users:         users,
		Events:        events,
		Announcements: announcements,
		tokens:        tokens,
		db:            db,
		log:           log,
	}
}
