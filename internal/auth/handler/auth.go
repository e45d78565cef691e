package handler

import (
	"encoding/json"
	"net/http"

	"assetbook/internal/auth/service"
	apperrors "assetbook/pkg/errors"
	httputil "assetbook/pkg/http"
	"assetbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type AuthHandler struct {
	service service.AuthService
	log     *logger.Logger
}

type loginRequest struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

func NewAuthHandler(service service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	accessToken, err := h.service.Login(r.Context(), req.UserName, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, accessToken); err != nil {
		h.log.Error("failed to write success response", "handler", "Login", "error", err)
	}
}

func (h *AuthHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/auth/login", h.Login)
}

func (h *AuthHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "Login", "error", writeErr)
	}
}
