package handlers

import (
	"github.com/gin-gonic/gin"

	"stocktake/internal/domain/counting"
	"stocktake/internal/infrastructure/http/v1/dto"
)

// SessionHandler handles counting session endpoints.
type SessionHandler struct {
	*BaseHandler
	service *counting.Service
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(base *BaseHandler, service *counting.Service) *SessionHandler {
	return &SessionHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Overview handles GET /sessions
func (h *SessionHandler) Overview(c *gin.Context) {
	overview, err := h.service.SessionsOverview(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOverview(overview))
}

// Current handles GET /sessions/current
func (h *SessionHandler) Current(c *gin.Context) {
	session, err := h.service.CurrentSession(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSession(session))
}

// Switch handles PUT /sessions/current
func (h *SessionHandler) Switch(c *gin.Context) {
	var req dto.SwitchSessionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	session, err := h.service.SwitchSession(c.Request.Context(), req.Session)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromSession(session))
}
