// Package access holds the single authorization policy every service
// consults before touching state.
package access

import (
	"errors"
	"fmt"
)

type Role string

const (
	RoleVolunteer Role = "volunteer"
	RoleAdmin     Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleVolunteer || r == RoleAdmin
}

type Action string

const (
	ActionEventRead            Action = "event.read"
	ActionEventCreate          Action = "event.create"
	ActionEventUpdate          Action = "event.update"
	ActionEventDelete          Action = "event.delete"
	ActionEventJoin            Action = "event.join"
	ActionEventLeave           Action = "event.leave"
	ActionEventAnnounce        Action = "event.announce"
	ActionRosterRemove         Action = "roster.remove"
	ActionMyEvents             Action = "event.list_mine"
	ActionAnnouncementRead     Action = "announcement.read"
	ActionAnnouncementCreate   Action = "announcement.create"
	ActionAnnouncementUpdate   Action = "announcement.update"
	ActionAnnouncementDelete   Action = "announcement.delete"
	ActionAnnouncementToggle   Action = "announcement.toggle"
	ActionAnnouncementMarkRead Action = "announcement.mark_read"
	ActionAnnouncementListMine Action = "announcement.list_mine"
	ActionUserList             Action = "user.list"
	ActionUserRead             Action = "user.read"
	ActionUserUpdate           Action = "user.update"
	ActionUserDelete           Action = "user.delete"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("forbidden")
)

// Denial is returned for authenticated callers that may not perform an
// action. It matches ErrForbidden under errors.Is.
type Denial struct {
	Action Action
	Reason string
}

func (d *Denial) Error() string {
	return fmt.Sprintf("%s: %s", ErrForbidden.Error(), d.Reason)
}

func (d *Denial) Unwrap() error {
	return ErrForbidden
}

// Caller is the resolved identity of a request. A nil *Caller is anonymous.
type Caller struct {
	UserID string
	Role   Role
}

func (c *Caller) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

func (c *Caller) Authenticated() bool {
	return c != nil && c.UserID != ""
}

// Target identifies the record an action addresses. OwnerID is only
// meaningful for user records.
type Target struct {
	OwnerID string
}

type rule int

const (
	rulePublic rule = iota
	ruleAuthenticated
	ruleAdmin
	ruleSelfOrAdmin
)

var rules = map[Action]rule{
	ActionEventRead:            rulePublic,
	ActionAnnouncementRead:     rulePublic,
	ActionEventJoin:            ruleAuthenticated,
	ActionEventLeave:           ruleAuthenticated,
	ActionMyEvents:             ruleAuthenticated,
	ActionAnnouncementMarkRead: ruleAuthenticated,
	ActionAnnouncementListMine: ruleAuthenticated,
	ActionEventCreate:          ruleAdmin,
	ActionEventUpdate:          ruleAdmin,
	ActionEventDelete:          ruleAdmin,
	ActionEventAnnounce:        ruleAdmin,
	ActionRosterRemove:         ruleAdmin,
	ActionAnnouncementCreate:   ruleAdmin,
	ActionAnnouncementUpdate:   ruleAdmin,
	ActionAnnouncementDelete:   ruleAdmin,
	ActionAnnouncementToggle:   ruleAdmin,
	ActionUserList:             ruleAdmin,
	ActionUserRead:             ruleSelfOrAdmin,
	ActionUserUpdate:           ruleSelfOrAdmin,
	ActionUserDelete:           ruleSelfOrAdmin,
}

var reasons = map[Action]string{
	ActionEventCreate:        "only admin can create events",
	ActionEventUpdate:        "only admin can update events",
	ActionEventDelete:        "only admin can delete events",
	ActionEventAnnounce:      "only admin can send announcements",
	ActionRosterRemove:       "only admin can remove volunteers",
	ActionAnnouncementCreate: "only admin can create announcements",
	ActionAnnouncementUpdate: "only admin can update announcements",
	ActionAnnouncementDelete: "only admin can delete announcements",
	ActionAnnouncementToggle: "only admin can toggle announcements",
	ActionUserList:           "only admin can list users",
	ActionUserRead:           "cannot access another user's record",
	ActionUserUpdate:         "cannot update another user's record",
	ActionUserDelete:         "cannot delete another user's record",
}

// Authorize returns nil when caller may perform action on target,
// ErrUnauthenticated for anonymous callers on protected actions and a
// *Denial otherwise. Unknown actions are denied.
func Authorize(caller *Caller, action Action, target Target) error {
	r, ok := rules[action]
	if !ok {
		if !caller.Authenticated() {
			return ErrUnauthenticated
		}
		return &Denial{Action: action, Reason: "unknown action"}
	}

	if r == rulePublic {
		return nil
	}
	if !caller.Authenticated() {
		return ErrUnauthenticated
	}

	switch r {
	case ruleAuthenticated:
		return nil
	case ruleAdmin:
		if caller.IsAdmin() {
			return nil
		}
	case ruleSelfOrAdmin:
		if caller.IsAdmin() || (target.OwnerID != "" && caller.UserID == target.OwnerID) {
			return nil
		}
	}

	return &Denial{Action: action, Reason: reasons[action]}
}

// CanManagePrivileged reports whether caller may change role and status
// fields on user records.
func CanManagePrivileged(caller *Caller) bool {
	return caller.IsAdmin()
}
