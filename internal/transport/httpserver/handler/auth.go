package handler

import (
	"net/http"
	"time"

	userdomain "helphands-go/internal/domain/user"
	"helphands-go/internal/transport/httpserver/middleware"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

type userEnvelope struct {
	Message string       `json:"message,omitempty"`
	User    userResponse `json:"user"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	user, err := h.Users.Register(r.Context(), userdomain.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		h.fail(w, "auth.register: register failed", err)
		return
	}

	h.writeSession(w, http.StatusCreated, "User registered successfully", user)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	user, err := h.Users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(w, "auth.login: authenticate failed", err)
		return
	}

	h.writeSession(w, http.StatusOK, "Login successful", user)
}

func (h *Handlers) AuthMe(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	if caller == nil {
		writeError(w, http.StatusUnauthorized, "invalid_token", "token is not valid")
		return
	}

	user, err := h.Users.Get(r.Context(), caller, caller.UserID)
	if err != nil {
		h.fail(w, "auth.me: get user failed", err, "user_id", caller.UserID)
		return
	}

	writeJSON(w, http.StatusOK, userEnvelope{User: toUserResponse(user)})
}

func (h *Handlers) writeSession(w http.ResponseWriter, status int, message string, user *userdomain.User) {
	token, expiresAt, err := h.tokens.Issue(user.ID, user.Role)
	if err != nil {
		h.log.InternalError("auth.token: issue failed", err, "user_id", user.ID)
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
		return
	}

	writeJSON(w, status, authResponse{
		Message:   message,
		Token:     token,
		ExpiresAt: expiresAt,
		User:      toUserResponse(user),
	})
}
