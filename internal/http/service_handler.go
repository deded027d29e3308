package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/samber/mo"

	"github.com/example/booking-sessions/internal/application"
	"github.com/example/booking-sessions/internal/persistence"
)

type catalogService interface {
	GetService(ctx context.Context, id string) (persistence.Service, error)
	SaveService(ctx context.Context, service persistence.Service) (persistence.Service, error)
	SaveResource(ctx context.Context, resource persistence.Resource) (persistence.Resource, error)
	ListSessions(ctx context.Context, serviceID string, window application.SessionWindow) ([]persistence.Session, error)
}

type generationService interface {
	Regenerate(ctx context.Context, serviceID string) error
	RegenerateAll(ctx context.Context) error
}

// ServiceHandler serves service configuration, regeneration and session listings.
type ServiceHandler struct {
	catalog   catalogService
	generator generationService
	responder responder
	logger    zerolog.Logger
}

func NewServiceHandler(catalog catalogService, generator generationService, logger zerolog.Logger) *ServiceHandler {
	return &ServiceHandler{catalog: catalog, generator: generator, responder: newResponder(logger), logger: logger}
}

func (h *ServiceHandler) log(ctx context.Context, operation string) zerolog.Logger {
	return handlerLogger(ctx, h.logger, "ServiceHandler", operation)
}

// Put stores the service configuration and regenerates its sessions.
func (h *ServiceHandler) Put(w http.ResponseWriter, r *http.Request) {
	serviceID, ok := pathID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errInvalidID)
		return
	}
	logger := h.log(r.Context(), "Put").With().Str("service_id", serviceID).Logger()

	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn().Err(err).Str("error_kind", "bad_request").Msg("failed to decode service request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errBadRequestBody)
		return
	}

	service, err := h.catalog.SaveService(r.Context(), req.toService(serviceID))
	if err != nil {
		logger.Warn().Err(err).Str("error_kind", application.ErrorKind(err)).Msg("service update failed")
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	if err := h.generator.Regenerate(r.Context(), serviceID); err != nil {
		logger.Warn().Err(err).Str("error_kind", application.ErrorKind(err)).Msg("regeneration after update failed")
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.Info().Msg("service updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, serviceResponse{Service: toServiceDTO(service)})
}

// Regenerate regenerates the sessions of one service.
func (h *ServiceHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	serviceID, ok := pathID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errInvalidID)
		return
	}

	if err := h.generator.Regenerate(r.Context(), serviceID); err != nil {
		logger := h.log(r.Context(), "Regenerate")
		logger.Warn().Err(err).Str("error_kind", application.ErrorKind(err)).Msg("regeneration failed")
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusAccepted, regenerationResponse{Status: "regenerated", ServiceID: serviceID})
}

// RegenerateAll regenerates every service.
func (h *ServiceHandler) RegenerateAll(w http.ResponseWriter, r *http.Request) {
	if err := h.generator.RegenerateAll(r.Context()); err != nil {
		logger := h.log(r.Context(), "RegenerateAll")
		logger.Warn().Err(err).Msg("regeneration pass reported failures")
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusAccepted, regenerationResponse{Status: "regenerated"})
}

// ListSessions returns the sessions of a service, optionally limited by the
// from and to query parameters.
func (h *ServiceHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	serviceID, ok := pathID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errInvalidID)
		return
	}

	window, err := parseWindow(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", err)
		return
	}

	sessions, err := h.catalog.ListSessions(r.Context(), serviceID, window)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := sessionsResponse{Sessions: make([]sessionDTO, 0, len(sessions))}
	for _, s := range sessions {
		payload.Sessions = append(payload.Sessions, toSessionDTO(s))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

// Calendar renders the sessions of a service as an iCalendar feed.
func (h *ServiceHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	serviceID, ok := pathID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errInvalidID)
		return
	}

	window, err := parseWindow(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", err)
		return
	}

	service, err := h.catalog.GetService(r.Context(), serviceID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	sessions, err := h.catalog.ListSessions(r.Context(), serviceID, window)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	body, err := encodeCalendar(service, sessions)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, "internal", err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logger := h.log(r.Context(), "Calendar")
		logger.Error().Err(err).Msg("failed to write calendar")
	}
}

func pathID(r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	return id, id != ""
}

func parseWindow(r *http.Request) (application.SessionWindow, error) {
	var window application.SessionWindow
	query := r.URL.Query()
	if value := strings.TrimSpace(query.Get("from")); value != "" {
		from, err := parseInstant(value)
		if err != nil {
			return window, fmt.Errorf("from の形式が不正です: %q", value)
		}
		window.From = mo.Some(from)
	}
	if value := strings.TrimSpace(query.Get("to")); value != "" {
		to, err := parseInstant(value)
		if err != nil {
			return window, fmt.Errorf("to の形式が不正です: %q", value)
		}
		window.To = mo.Some(to)
	}
	return window, nil
}

// parseInstant accepts RFC 3339 timestamps and epoch seconds.
func parseInstant(value string) (int64, error) {
	if seconds, err := strconv.ParseInt(value, 10, 64); err == nil {
		return seconds, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}

type serviceRequest struct {
	Name         string                          `json:"name"`
	ScheduleID   string                          `json:"schedule_id"`
	SessionTypes []persistence.SessionTypeConfig `json:"session_types"`
}

func (r serviceRequest) toService(id string) persistence.Service {
	return persistence.Service{
		ID:           id,
		Name:         r.Name,
		ScheduleID:   r.ScheduleID,
		SessionTypes: r.SessionTypes,
	}
}

type serviceDTO struct {
	ID           string                          `json:"id"`
	Name         string                          `json:"name"`
	ScheduleID   string                          `json:"schedule_id"`
	SessionTypes []persistence.SessionTypeConfig `json:"session_types"`
	UpdatedAt    time.Time                       `json:"updated_at"`
}

type serviceResponse struct {
	Service serviceDTO `json:"service"`
}

func toServiceDTO(s persistence.Service) serviceDTO {
	types := s.SessionTypes
	if types == nil {
		types = []persistence.SessionTypeConfig{}
	}
	return serviceDTO{
		ID:           s.ID,
		Name:         s.Name,
		ScheduleID:   s.ScheduleID,
		SessionTypes: types,
		UpdatedAt:    s.UpdatedAt,
	}
}

type sessionDTO struct {
	ID          string    `json:"id"`
	ServiceID   string    `json:"service_id"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	ResourceIDs []string  `json:"resource_ids"`
}

type sessionsResponse struct {
	Sessions []sessionDTO `json:"sessions"`
}

func toSessionDTO(s persistence.Session) sessionDTO {
	ids := s.ResourceIDs
	if ids == nil {
		ids = []string{}
	}
	return sessionDTO{
		ID:          s.ID,
		ServiceID:   s.ServiceID,
		Start:       time.Unix(s.Start, 0).UTC(),
		End:         time.Unix(s.End, 0).UTC(),
		ResourceIDs: ids,
	}
}

type regenerationResponse struct {
	Status    string `json:"status"`
	ServiceID string `json:"service_id,omitempty"`
}
