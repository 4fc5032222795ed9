package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"stocktake/internal/core/apperror"
	"stocktake/internal/core/id"
	"stocktake/internal/core/types"
	"stocktake/internal/domain/counting"
)

type stubItemRepo struct {
	items []*counting.Item
}

func (r *stubItemRepo) List(ctx context.Context) ([]*counting.Item, error) { return r.items, nil }

func (r *stubItemRepo) GetByID(ctx context.Context, itemID id.ID) (*counting.Item, error) {
	return nil, apperror.NewNotFound("item", itemID)
}

func (r *stubItemRepo) ReplaceAll(ctx context.Context, items []*counting.Item) error { return nil }
func (r *stubItemRepo) Save(ctx context.Context, item *counting.Item) error          { return nil }
func (r *stubItemRepo) SaveMany(ctx context.Context, items []*counting.Item) error   { return nil }
func (r *stubItemRepo) DeleteAll(ctx context.Context) error                          { return nil }

type stubSessionRepo struct{}

func (r *stubSessionRepo) Get(ctx context.Context) (*counting.Session, error) {
	return counting.NewSession(3), nil
}

func (r *stubSessionRepo) Save(ctx context.Context, session *counting.Session) error { return nil }

type passthroughTxManager struct{}

func (m *passthroughTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func scriptTestRouter(t *testing.T, items []*counting.Item) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	service := counting.NewService(&stubItemRepo{items: items}, &stubSessionRepo{}, &passthroughTxManager{}, nil).
		WithClock(func() time.Time {
			return time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
		})
	handler := NewInventoryHandler(NewBaseHandler(), service, nil)

	router := gin.New()
	router.GET("/inventory/script", handler.Script)
	return router
}

func countedItem(t *testing.T) *counting.Item {
	t.Helper()
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)

	item := counting.NewItem("FLT-100", "A1", "Oil filter", types.NewQuantityFromInt(100), now)
	q1 := types.NewQuantityFromInt(10)
	q3 := types.NewQuantityFromInt(95)
	item.Sessions[0].Counting = &q1
	item.Sessions[2].Counting = &q3
	return item
}

func TestScriptDefaultsToFinalCount(t *testing.T) {
	router := scriptTestRouter(t, []*counting.Item{countedItem(t)})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/inventory/script", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "scit_quantity='95'") {
		t.Errorf("script should use the session 3 count, got:\n%s", body)
	}
	if strings.Contains(body, "scit_quantity='10'") {
		t.Errorf("script must not use the session 1 count, got:\n%s", body)
	}
	if !strings.Contains(body, "SCIT_COUNT='INV2026MC'") {
		t.Errorf("script should carry the session id, got:\n%s", body)
	}
}

func TestScriptExplicitSession(t *testing.T) {
	router := scriptTestRouter(t, []*counting.Item{countedItem(t)})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/inventory/script?session=1", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "scit_quantity='10'") {
		t.Errorf("script should use the requested session, got:\n%s", w.Body.String())
	}
}
