package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	userdomain "helphands-go/internal/domain/user"
	"helphands-go/internal/transport/httpserver/middleware"
)

type updateUserRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Role    *string `json:"role"`
	Status  *string `json:"status"`
}

type usersEnvelope struct {
	Count int            `json:"count"`
	Users []userResponse `json:"users"`
}

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	query := r.URL.Query()

	users, err := h.Users.List(r.Context(), caller, userdomain.ListFilter{
		Role:   query.Get("role"),
		Status: query.Get("status"),
	})
	if err != nil {
		h.fail(w, "users.list: list users failed", err)
		return
	}

	items := toUserResponses(users)
	writeJSON(w, http.StatusOK, usersEnvelope{Count: len(items), Users: items})
}

func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	h.getUser(w, r, "users.profile", selfID(r))
}

func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	h.updateUser(w, r, "users.update_profile", selfID(r), "Profile updated successfully")
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	h.getUser(w, r, "users.get", chi.URLParam(r, "id"))
}

func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	h.updateUser(w, r, "users.update", chi.URLParam(r, "id"), "User updated successfully")
}

func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	userID := chi.URLParam(r, "id")

	if err := h.Users.Delete(r.Context(), caller, userID); err != nil {
		h.fail(w, "users.delete: delete user failed", err, "user_id", userID)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "User deleted successfully"})
}

func (h *Handlers) getUser(w http.ResponseWriter, r *http.Request, op, userID string) {
	caller := middleware.CallerFromContext(r.Context())

	user, err := h.Users.Get(r.Context(), caller, userID)
	if err != nil {
		h.fail(w, op+": get user failed", err, "user_id", userID)
		return
	}

	writeJSON(w, http.StatusOK, userEnvelope{User: toUserResponse(user)})
}

func (h *Handlers) updateUser(w http.ResponseWriter, r *http.Request, op, userID, message string) {
	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	user, err := h.Users.Update(r.Context(), caller, userdomain.UpdateUserInput{
		ID:      userID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Role:    req.Role,
		Status:  req.Status,
	})
	if err != nil {
		h.fail(w, op+": update user failed", err, "user_id", userID)
		return
	}

	writeJSON(w, http.StatusOK, userEnvelope{Message: message, User: toUserResponse(user)})
}

func selfID(r *http.Request) string {
	caller := middleware.CallerFromContext(r.Context())
	if caller == nil {
		return ""
	}
	return caller.UserID
}
