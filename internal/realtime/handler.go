package realtime

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"assetbook/pkg/config"
	"assetbook/pkg/logger"
	"assetbook/pkg/middleware"
)

// WSHandler upgrades authenticated HTTP requests to websocket sessions and
// hands them to the hub. Authentication already ran in middleware; an
// unauthenticated request never reaches the upgrade.
type WSHandler struct {
	hub      *Hub
	cfg      *config.Config
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *Hub, cfg *config.Config, log *logger.Logger) *WSHandler {
	return &WSHandler{
		hub: hub,
		cfg: cfg,
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Token auth guards the endpoint; browser origin is not
				// part of the trust model here.
				return true
			},
		},
	}
}

func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		h.log.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	h.log.Info("websocket session opened", "subject_id", actor.SubjectID, "remote", r.RemoteAddr)
	NewClient(h.hub, conn, actor, h.cfg).Run()
}

func (h *WSHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/ws/usages", h.Serve)
}
