package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	eventsdomain "helphands-go/internal/domain/events"
	"helphands-go/internal/transport/httpserver/middleware"
)

type createEventRequest struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Location      string `json:"location"`
	Category      string `json:"category"`
	MaxVolunteers int    `json:"max_volunteers"`
}

type updateEventRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Date          *string `json:"date"`
	Time          *string `json:"time"`
	Location      *string `json:"location"`
	Category      *string `json:"category"`
	MaxVolunteers *int    `json:"max_volunteers"`
}

type announceRequest struct {
	Title    string `json:"title"`
	Message  string `json:"message"`
	Content  string `json:"content"`
	Priority string `json:"priority"`
}

type eventEnvelope struct {
	Message string        `json:"message,omitempty"`
	Event   eventResponse `json:"event"`
}

type eventsEnvelope struct {
	Count  int             `json:"count"`
	Events []eventResponse `json:"events"`
}

type deliveryEnvelope struct {
	Message      string           `json:"message"`
	Announcement deliveryResponse `json:"announcement"`
}

func (h *Handlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	filter := eventsdomain.ListFilter{Category: r.URL.Query().Get("category")}

	items, err := h.Events.List(r.Context(), caller, filter)
	if err != nil {
		h.fail(w, "events.list: list events failed", err)
		return
	}

	events := toEventResponses(items, caller)
	writeJSON(w, http.StatusOK, eventsEnvelope{Count: len(events), Events: events})
}

func (h *Handlers) GetEvent(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	eventID := chi.URLParam(r, "id")

	roster, err := h.Events.Get(r.Context(), caller, eventID)
	if err != nil {
		h.fail(w, "events.get: get event failed", err, "event_id", eventID)
		return
	}

	writeJSON(w, http.StatusOK, eventEnvelope{Event: toEventResponse(roster, caller)})
}

func (h *Handlers) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "date must be YYYY-MM-DD or RFC3339")
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	roster, err := h.Events.Create(r.Context(), caller, eventsdomain.CreateEventInput{
		Title:         req.Title,
		Description:   req.Description,
		Date:          date,
		Time:          req.Time,
		Location:      req.Location,
		Category:      req.Category,
		MaxVolunteers: req.MaxVolunteers,
	})
	if err != nil {
		h.fail(w, "events.create: create event failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, eventEnvelope{Message: "Event created successfully", Event: toEventResponse(roster, caller)})
}

func (h *Handlers) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req updateEventRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}
	date, err := parseDateParam(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "date must be YYYY-MM-DD or RFC3339")
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	eventID := chi.URLParam(r, "id")
	roster, err := h.Events.Update(r.Context(), caller, eventsdomain.UpdateEventInput{
		ID:            eventID,
		Title:         req.Title,
		Description:   req.Description,
		Date:          date,
		Time:          req.Time,
		Location:      req.Location,
		Category:      req.Category,
		MaxVolunteers: req.MaxVolunteers,
	})
	if err != nil {
		h.fail(w, "events.update: update event failed", err, "event_id", eventID)
		return
	}

	writeJSON(w, http.StatusOK, eventEnvelope{Message: "Event updated successfully", Event: toEventResponse(roster, caller)})
}

func (h *Handlers) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	eventID := chi.URLParam(r, "id")

	if err := h.Events.Delete(r.Context(), caller, eventID); err != nil {
		h.fail(w, "events.delete: delete event failed", err, "event_id", eventID)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Event deleted successfully"})
}

func (h *Handlers) JoinEvent(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	eventID := chi.URLParam(r, "id")

	roster, err := h.Events.Join(r.Context(), caller, eventID)
	if err != nil {
		h.fail(w, "events.join: join event failed", err, "event_id", eventID)
		return
	}

	writeJSON(w, http.StatusOK, eventEnvelope{Message: "Successfully joined the event", Event: toEventResponse(roster, caller)})
}

func (h *Handlers) LeaveEvent(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	eventID := chi.URLParam(r, "id")

	roster, err := h.Events.Leave(r.Context(), caller, eventID)
	if err != nil {
		h.fail(w, "events.leave: leave event failed", err, "event_id", eventID)
		return
	}

	writeJSON(w, http.StatusOK, eventEnvelope{Message: "Successfully left the event", Event: toEventResponse(roster, caller)})
}

func (h *Handlers) RemoveVolunteer(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	eventID := chi.URLParam(r, "id")
	volunteerID := chi.URLParam(r, "volunteerId")

	roster, err := h.Events.RemoveVolunteer(r.Context(), caller, eventID, volunteerID)
	if err != nil {
		h.fail(w, "events.remove_volunteer: remove failed", err, "event_id", eventID, "volunteer_id", volunteerID)
		return
	}

	writeJSON(w, http.StatusOK, eventEnvelope{Message: "Volunteer removed successfully", Event: toEventResponse(roster, caller)})
}

func (h *Handlers) AnnounceToEvent(w http.ResponseWriter, r *http.Request) {
	var req announceRequest
	if err := decodeJSON(r, &req); err != nil {
		invalidJSON(w)
		return
	}

	caller := middleware.CallerFromContext(r.Context())
	eventID := chi.URLParam(r, "id")
	delivery, err := h.Announcements.AnnounceToEvent(r.Context(), caller, eventID, toAnnounceInput(req))
	if err != nil {
		h.fail(w, "events.announce: send announcement failed", err, "event_id", eventID)
		return
	}

	writeJSON(w, http.StatusCreated, deliveryEnvelope{Message: "Announcement sent successfully", Announcement: toDeliveryResponse(delivery)})
}

func (h *Handlers) MyEvents(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())

	items, err := h.Events.ListForVolunteer(r.Context(), caller)
	if err != nil {
		h.fail(w, "users.my_events: list events failed", err)
		return
	}

	events := toEventResponses(items, caller)
	writeJSON(w, http.StatusOK, eventsEnvelope{Count: len(events), Events: events})
}
