package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	announcementsdomain "helphands-go/internal/domain/announcements"
	"helphands-go/internal/transport/httpserver/middleware"
)

type createAnnouncementRequest struct {
	Title          string `json:"title"`
	Content        string `json:"content"`
	Priority       string `json:"priority"`
	TargetAudience string `json:"target_audience"`
	IsActive       *bool  `json:"is_active"`
}

type updateAnnouncementRequest struct {
	Title          *string `json:"title"`
	Content        *string `json:"content"`
	Priority       *string `json:"priority"`
	TargetAudience *string `json:"target_audience"`
	IsActive       *bool   `json:"is_active"`
}

type announcementEnvelope struct {
	Message      string               `json:"message,omitempty"`
	Announcement announcementResponse `json:"announcement"`
}

type announcementsEnvelope struct {
	Count         int                    `json:"count"`
	Announcements []announcementResponse `json:"announcements"`
}

func (h *Handlers) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	active, err := parseBoolParam(query.Get("active"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "active must be true or false")
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	items, err := h.Announcements.ListVisible(r.Context(), caller, announcementsdomain.ListFilter{
		Audience: firstNonEmpty(query.Get("target_audience"), query.Get("audience")),
		Priority: query.Get("priority"),
		Active:   active,
	})
	if err != nil {
		h.fail(w, "announcements.list: list announcements failed", err)
		return
	}

	announcements := toAnnouncementResponses(items, caller)
	writeJSON(w, http.StatusOK, announcementsEnvelope{Count: len(announcements), Announcements: announcements})
}

func (h *Handlers) GetAnnouncement(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	announcementID := chi.URLParam(r, "id")

	item, err := h.Announcements.Get(r.Context(), caller, announcementID)
	if err != nil {
		h.fail(w, "announcements.get: get announcement failed", err, "announcement_id", announcementID)
		return
	}

	writeJSON(w, http.StatusOK, announcementEnvelope{Announcement: toAnnouncementResponse(item, caller)})
}

func (h *Handlers) MyAnnouncements(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())

	items, err := h.Announcements.ListMine(r.Context(), caller)
	if err != nil {
		h.fail(w, "announcements.mine: list announcements failed", err)
		return
	}

	announcements := toAnnouncementResponses(items, caller)
	writeJSON(w, http.StatusOK, announcementsEnvelope{Count: len(announcements), Announcements: announcements})
}

func (h *Handlers) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req createAnnouncementRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	item, err := h.Announcements.Create(r.Context(), caller, announcementsdomain.CreateInput{
		Title:          req.Title,
		Content:        req.Content,
		Priority:       req.Priority,
		TargetAudience: req.TargetAudience,
		IsActive:       req.IsActive,
	})
	if err != nil {
		h.fail(w, "announcements.create: create announcement failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, announcementEnvelope{Message: "Announcement created successfully", Announcement: toAnnouncementResponse(item, caller)})
}

func (h *Handlers) UpdateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req updateAnnouncementRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	announcementID := chi.URLParam(r, "id")
	item, err := h.Announcements.Update(r.Context(), caller, announcementsdomain.UpdateInput{
		ID:             announcementID,
		Title:          req.Title,
		Content:        req.Content,
		Priority:       req.Priority,
		TargetAudience: req.TargetAudience,
		IsActive:       req.IsActive,
	})
	if err != nil {
		h.fail(w, "announcements.update: update announcement failed", err, "announcement_id", announcementID)
		return
	}

	writeJSON(w, http.StatusOK, announcementEnvelope{Message: "Announcement updated successfully", Announcement: toAnnouncementResponse(item, caller)})
}

func (h *Handlers) ToggleAnnouncement(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	announcementID := chi.URLParam(r, "id")

	item, err := h.Announcements.ToggleActive(r.Context(), caller, announcementID)
	if err != nil {
		h.fail(w, "announcements.toggle: toggle announcement failed", err, "announcement_id", announcementID)
		return
	}

	message := "Announcement deactivated successfully"
	if item.IsActive {
		message = "Announcement activated successfully"
	}
	writeJSON(w, http.StatusOK, announcementEnvelope{Message: message, Announcement: toAnnouncementResponse(item, caller)})
}

func (h *Handlers) DeleteAnnouncement(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	announcementID := chi.URLParam(r, "id")

	if err := h.Announcements.Delete(r.Context(), caller, announcementID); err != nil {
		h.fail(w, "announcements.delete: delete announcement failed", err, "announcement_id", announcementID)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Announcement deleted successfully"})
}

func (h *Handlers) MarkAnnouncementRead(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	announcementID := chi.URLParam(r, "id")

	if err := h.Announcements.MarkRead(r.Context(), caller, announcementID); err != nil {
		h.fail(w, "announcements.mark_read: mark read failed", err, "announcement_id", announcementID)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Announcement marked as read"})
}

func toAnnounceInput(req announceRequest) announcementsdomain.AnnounceInput {
	return announcementsdomain.AnnounceInput{
		Title:    req.Title,
		Content:  firstNonEmpty(req.Content, req.Message),
		Priority: req.Priority,
	}
}
