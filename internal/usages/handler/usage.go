package handler

import (
	"encoding/json"
	"net/http"

	"assetbook/internal/usages/service"
	apperrors "assetbook/pkg/errors"
	httputil "assetbook/pkg/http"
	"assetbook/pkg/logger"
	"assetbook/pkg/middleware"
	"assetbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type UsageHandler struct {
	service service.UsageService
	log     *logger.Logger
}

func NewUsageHandler(service service.UsageService, log *logger.Logger) *UsageHandler {
	return &UsageHandler{
		service: service,
		log:     log,
	}
}

func (h *UsageHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, "Create", apperrors.Unauthorized("Authentication required"))
		return
	}

	var usage model.Usage
	if err := json.NewDecoder(r.Body).Decode(&usage); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	detail, err := h.service.Create(r.Context(), &usage, actor)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, detail); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *UsageHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	detail, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, detail); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *UsageHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	filter, err := parseFilter(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	details, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, details, total, filter.Limit, filter.Offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *UsageHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, "Update", apperrors.Unauthorized("Authentication required"))
		return
	}

	var usage model.Usage
	if err := json.NewDecoder(r.Body).Decode(&usage); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Update(r.Context(), ps.ByName("id"), &usage, actor); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *UsageHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, "Delete", apperrors.Unauthorized("Authentication required"))
		return
	}

	if err := h.service.Delete(r.Context(), ps.ByName("id"), actor); err != nil {
		h.writeError(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *UsageHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/usages", h.List)
	router.POST("/api/v1/usages", h.Create)
	router.GET("/api/v1/usages/id/:id", h.GetByID)
	router.PUT("/api/v1/usages/id/:id", h.Update)
	router.DELETE("/api/v1/usages/id/:id", h.Delete)
}

func (h *UsageHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}

func parseFilter(r *http.Request) (*model.UsageFilter, error) {
	query := r.URL.Query()

	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		return nil, err
	}

	start, end, err := httputil.ExtractTimeRange(r)
	if err != nil {
		return nil, err
	}

	return &model.UsageFilter{
		AssetID:   query.Get("asset_id"),
		UserID:    query.Get("user_id"),
		StartTime: start,
		EndTime:   end,
		Limit:     limit,
		Offset:    offset,
	}, nil
}
