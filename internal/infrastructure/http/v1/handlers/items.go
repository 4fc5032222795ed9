package handlers

import (
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stocktake/internal/core/apperror"
	"stocktake/internal/core/id"
	"stocktake/internal/core/types"
	"stocktake/internal/domain/counting"
	"stocktake/internal/infrastructure/http/v1/dto"
	"stocktake/internal/infrastructure/spreadsheet"
)

// maxImportSize bounds uploaded spreadsheets (32 MiB covers the largest
// warehouse extracts seen so far by a wide margin).
const maxImportSize = 32 << 20

// ItemHandler handles inventory item endpoints.
type ItemHandler struct {
	*BaseHandler
	service *counting.Service
}

// NewItemHandler creates a new item handler.
func NewItemHandler(base *BaseHandler, service *counting.Service) *ItemHandler {
	return &ItemHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /items?session=N&search=q
// Without a session parameter the full collection is returned; with one,
// only the items still to count in that session.
func (h *ItemHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var q dto.ListItemsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	var (
		items []*counting.Item
		err   error
	)
	if q.Session == 0 {
		items, err = h.service.Items(ctx)
		if err == nil {
			items = counting.SearchItems(items, q.Search)
		}
	} else {
		items, err = h.service.EligibleForSession(ctx, q.Session, q.Search)
	}
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ItemListResponse{
		Items: dto.FromItems(items),
		Total: len(items),
	})
}

// openUpload extracts the uploaded spreadsheet from a multipart form.
func (h *ItemHandler) openUpload(c *gin.Context) (multipart.File, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.Error(c, apperror.NewValidation("file is required").WithDetail("field", "file"))
		return nil, false
	}
	if fileHeader.Size > maxImportSize {
		h.Error(c, apperror.NewValidation("file too large").WithDetail("max_bytes", maxImportSize))
		return nil, false
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.Error(c, apperror.NewInternal(err))
		return nil, false
	}
	return file, true
}

// Import handles POST /items/import
// Replaces the whole collection with the uploaded file's contents.
func (h *ItemHandler) Import(c *gin.Context) {
	ctx := c.Request.Context()

	file, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	items, err := spreadsheet.ParseItems(file, time.Now())
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.Import(ctx, items); err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ImportResponse{Imported: len(items)})
}

// RecordCount handles POST /items/:id/count
func (h *ItemHandler) RecordCount(c *gin.Context) {
	ctx := c.Request.Context()

	itemID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid item id").WithDetail("id", c.Param("id")))
		return
	}

	var req dto.RecordCountRequest
	if !h.BindJSON(c, &req) {
		return
	}

	quantity, err := types.ParseQuantity(req.Quantity)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid quantity").WithDetail("quantity", req.Quantity))
		return
	}

	item, err := h.service.RecordCount(ctx, itemID, req.Session, quantity)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromItem(item))
}

// Reconcile handles POST /items/reconcile?session=N&mode=counts|baseline
func (h *ItemHandler) Reconcile(c *gin.Context) {
	ctx := c.Request.Context()

	var q dto.ReconcileQuery
	if !h.BindQuery(c, &q) {
		return
	}
	mode := counting.ReconcileMode(q.Mode)
	if q.Mode == "" {
		mode = counting.ModeCounts
	}

	file, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	rows, err := spreadsheet.ParseQuantityRows(file)
	if err != nil {
		h.Error(c, err)
		return
	}

	matched, err := h.service.Reconcile(ctx, rows, q.Session, mode)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ReconcileResponse{
		Matched: matched,
		Mode:    string(mode),
		Session: q.Session,
	})
}

// Export handles GET /items/export
// Streams the full inventory state as an xlsx download.
func (h *ItemHandler) Export(c *gin.Context) {
	ctx := c.Request.Context()

	items, err := h.service.Items(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	fileName := spreadsheet.ExportFileName(time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)

	if err := spreadsheet.WriteItems(c.Writer, items); err != nil {
		h.Error(c, apperror.NewInternal(err))
	}
}
