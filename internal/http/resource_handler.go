package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/booking-sessions/internal/application"
	"github.com/example/booking-sessions/internal/persistence"
)

// ResourceHandler serves resource availability updates.
type ResourceHandler struct {
	catalog   catalogService
	responder responder
	logger    zerolog.Logger
}

func NewResourceHandler(catalog catalogService, logger zerolog.Logger) *ResourceHandler {
	return &ResourceHandler{catalog: catalog, responder: newResponder(logger), logger: logger}
}

func (h *ResourceHandler) log(ctx context.Context, operation string) zerolog.Logger {
	return handlerLogger(ctx, h.logger, "ResourceHandler", operation)
}

// Put stores the availability of a resource. Services using the resource
// keep their sessions until they are regenerated.
func (h *ResourceHandler) Put(w http.ResponseWriter, r *http.Request) {
	resourceID, ok := pathID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errInvalidID)
		return
	}
	logger := h.log(r.Context(), "Put").With().Str("resource_id", resourceID).Logger()

	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn().Err(err).Str("error_kind", "bad_request").Msg("failed to decode resource request")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, "bad_request", errBadRequestBody)
		return
	}

	resource, err := h.catalog.SaveResource(r.Context(), persistence.Resource{
		ID:           resourceID,
		Name:         req.Name,
		Availability: req.Availability,
	})
	if err != nil {
		logger.Warn().Err(err).Str("error_kind", application.ErrorKind(err)).Msg("resource update failed")
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.Info().Msg("resource updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resourceResponse{Resource: resourceDTO{
		ID:           resource.ID,
		Name:         resource.Name,
		Availability: resource.Availability,
		UpdatedAt:    resource.UpdatedAt,
	}})
}

type resourceRequest struct {
	Name         string                           `json:"name"`
	Availability persistence.ResourceAvailability `json:"availability"`
}

type resourceDTO struct {
	ID           string                           `json:"id"`
	Name         string                           `json:"name"`
	Availability persistence.ResourceAvailability `json:"availability"`
	UpdatedAt    time.Time                        `json:"updated_at"`
}

type resourceResponse struct {
	Resource resourceDTO `json:"resource"`
}
