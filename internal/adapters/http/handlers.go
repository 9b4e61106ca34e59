package http

import (
	"net/http"

	"github.com/dkeye/wsprobe/internal/app/orch"
	"github.com/dkeye/wsprobe/internal/core"
	"github.com/dkeye/wsprobe/internal/domain"
	"github.com/gin-gonic/gin"
)

type apiHandlers struct {
	orch *orch.Orchestrator
}

type SessionsResponse struct {
	Count    int           `json:"count"`
	Sessions []domain.Peer `json:"sessions"`
}

// GET /api/health
func (h *apiHandlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /api/sessions — live signal sessions
func (h *apiHandlers) sessions(c *gin.Context) {
	peers := h.orch.Registry.Peers()
	c.JSON(http.StatusOK, SessionsResponse{Count: len(peers), Sessions: peers})
}

// DELETE /api/sessions/:id — close one signal session
func (h *apiHandlers) kick(c *gin.Context) {
	sid := core.SessionID(c.Param("id"))
	if _, ok := h.orch.Registry.GetSession(sid); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	h.orch.KickBySID(sid)
	c.Status(http.StatusNoContent)
}
