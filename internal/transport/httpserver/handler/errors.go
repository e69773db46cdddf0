package handler

import (
	"errors"
	"net/http"

	"helphands-go/internal/domain/access"
	announcementsdomain "helphands-go/internal/domain/announcements"
	eventsdomain "helphands-go/internal/domain/events"
	userdomain "helphands-go/internal/domain/user"
	"helphands-go/internal/domain/validation"
)

type failure struct {
	status   int
	code     string
	message  string
	business bool
}

var sentinels = []struct {
	err     error
	status  int
	code    string
	message string
}{
	{access.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated", "authentication required"},
	{userdomain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials", "invalid credentials"},
	{userdomain.ErrInactiveUser, http.StatusUnauthorized, "account_inactive", "account is inactive"},
	{announcementsdomain.ErrNotEnrolled, http.StatusForbidden, "not_enrolled", "you are not enrolled in this event"},
	{eventsdomain.ErrEventNotFound, http.StatusNotFound, "event_not_found", "event not found"},
	{announcementsdomain.ErrAnnouncementNotFound, http.StatusNotFound, "announcement_not_found", "announcement not found"},
	{userdomain.ErrUserNotFound, http.StatusNotFound, "user_not_found", "user not found"},
	{eventsdomain.ErrEventFull, http.StatusBadRequest, "event_full", "event is full"},
	{eventsdomain.ErrAlreadyVolunteer, http.StatusBadRequest, "already_joined", "already joined this event"},
	{eventsdomain.ErrNotVolunteer, http.StatusBadRequest, "not_joined", "not enrolled in this event"},
	{eventsdomain.ErrCapacityBelowCurrent, http.StatusBadRequest, "capacity_below_current", "max volunteers cannot be below current volunteers"},
	{userdomain.ErrEmailTaken, http.StatusBadRequest, "email_taken", "user already exists"},
}

func classify(err error) failure {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return failure{status: http.StatusBadRequest, code: "validation_error", message: verr.Message, business: true}
	}

	var denial *access.Denial
	if errors.As(err, &denial) {
		return failure{status: http.StatusForbidden, code: "forbidden", message: denial.Reason, business: true}
	}
	if errors.Is(err, access.ErrForbidden) {
		return failure{status: http.StatusForbidden, code: "forbidden", message: "forbidden", business: true}
	}

	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return failure{status: s.status, code: s.code, message: s.message, business: true}
		}
	}

	return failure{status: http.StatusInternalServerError, code: "internal_error", message: "internal error"}
}

// fail logs err under op and writes the mapped error response.
func (h *Handlers) fail(w http.ResponseWriter, op string, err error, args ...any) {
	f := classify(err)
	if f.business {
		h.log.BusinessError(op, err, args...)
	} else {
		h.log.InternalError(op, err, args...)
	}
	writeError(w, f.status, f.code, f.message)
}

func invalidJSON(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "invalid_json", "invalid json body")
}
