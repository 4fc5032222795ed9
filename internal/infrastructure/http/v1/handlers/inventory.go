package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stocktake/internal/domain/auth"
	"stocktake/internal/domain/counting"
	"stocktake/internal/infrastructure/http/v1/dto"
)

// InventoryHandler handles collection-level operations: the generated
// update script for the downstream maintenance system and the
// password-confirmed full reset.
type InventoryHandler struct {
	*BaseHandler
	service     *counting.Service
	authService *auth.Service
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, service *counting.Service, authService *auth.Service) *InventoryHandler {
	return &InventoryHandler{
		BaseHandler: base,
		service:     service,
		authService: authService,
	}
}

// Script handles GET /inventory/script?session=N
// Returns the SQL update script as plain text. Without an explicit
// session the script is built from the final count (session 3), which
// is what the maintenance system expects to receive.
func (h *InventoryHandler) Script(c *gin.Context) {
	ctx := c.Request.Context()

	session := h.ParseIntQuery(c, "session", 3)
	script, err := h.service.Script(ctx, session)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="inventory_update.sql"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(script))
}

// Reset handles POST /inventory/reset
// Wipes the collection after re-verifying the admin password.
func (h *InventoryHandler) Reset(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ConfirmPasswordRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.authService.ConfirmPassword(ctx, h.Username(c), req.Password); err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.Reset(ctx); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "inventory reset")
}
