package handler

import (
	"encoding/json"
	"net/http"

	"assetbook/internal/assets/service"
	apperrors "assetbook/pkg/errors"
	httputil "assetbook/pkg/http"
	"assetbook/pkg/logger"
	"assetbook/pkg/middleware"
	"assetbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AssetHandler struct {
	service service.AssetService
	log     *logger.Logger
}

func NewAssetHandler(service service.AssetService, log *logger.Logger) *AssetHandler {
	return &AssetHandler{
		service: service,
		log:     log,
	}
}

func (h *AssetHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, "Create", apperrors.Unauthorized("Authentication required"))
		return
	}

	var asset model.Asset
	if err := json.NewDecoder(r.Body).Decode(&asset); err != nil {
		h.writeError(w, "Create", apperrors.InvalidInput("Invalid request body"))
		return
	}

	created, err := h.service.Create(r.Context(), &asset, actor)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, created); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "error", err)
	}
}

func (h *AssetHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	asset, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, asset); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "error", err)
	}
}

func (h *AssetHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	assets, total, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, assets, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "error", err)
	}
}

func (h *AssetHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, "Update", apperrors.Unauthorized("Authentication required"))
		return
	}

	var asset model.Asset
	if err := json.NewDecoder(r.Body).Decode(&asset); err != nil {
		h.writeError(w, "Update", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Update(r.Context(), ps.ByName("id"), &asset, actor); err != nil {
		h.writeError(w, "Update", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AssetHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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

func (h *AssetHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/assets", h.List)
	router.POST("/api/v1/assets", h.Create)
	router.GET("/api/v1/assets/id/:id", h.GetByID)
	router.PUT("/api/v1/assets/id/:id", h.Update)
	router.DELETE("/api/v1/assets/id/:id", h.Delete)
}

func (h *AssetHandler) writeError(w http.ResponseWriter, op string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", op, "error", writeErr)
	}
}
