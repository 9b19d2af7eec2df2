package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	v1 "github.com/thosangs/revroll/internal/api/v1"
	httperr "github.com/thosangs/revroll/internal/core/errors"
	"github.com/thosangs/revroll/internal/core/storage"
)

// stubOrderStore implements storage.OrderStore for handler tests.
type stubOrderStore struct {
	mu      sync.Mutex
	saved   []*v1.Order
	saveErr error
}

func (s *stubOrderStore) SaveOrder(_ context.Context, order *v1.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, order)
	return nil
}

func (s *stubOrderStore) ScanOrdersFrom(context.Context, time.Time) ([]*v1.Order, error) {
	return nil, nil
}

func newTestRouter(store storage.OrderStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewService(store, 1).RegisterRoutes(r)
	return r
}

func postOrder(t *testing.T, r *gin.Engine, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestIngestHandler_Success(t *testing.T) {
	store := &stubOrderStore{}
	r := newTestRouter(store)

	body, _ := json.Marshal(v1.Order{
		ID:         "line-001",
		OrderID:    "ord-1",
		BuyerID:    "buyer-1",
		OccurredAt: time.Now().UTC(),
		Revenue:    decimal.RequireFromString("12.50"),
	})

	resp := postOrder(t, r, body)
	require.Equal(t, http.StatusAccepted, resp.Code)

	var result map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	require.Equal(t, "accepted", result["status"])
	require.Equal(t, "line-001", result["id"])

	require.Len(t, store.saved, 1)
	require.False(t, store.saved[0].IngestedAt.IsZero(), "server stamps ingested_at")
}

func TestIngestHandler_AssignsIDWhenMissing(t *testing.T) {
	store := &stubOrderStore{}
	r := newTestRouter(store)

	body, _ := json.Marshal(v1.Order{
		OrderID:    "ord-1",
		BuyerID:    "buyer-1",
		OccurredAt: time.Now().UTC(),
		Revenue:    decimal.NewFromInt(5),
	})

	resp := postOrder(t, r, body)
	require.Equal(t, http.StatusAccepted, resp.Code)
	require.Len(t, store.saved, 1)
	require.NotEmpty(t, store.saved[0].ID)
}

func TestIngestHandler_InvalidJSON(t *testing.T) {
	r := newTestRouter(&stubOrderStore{})

	resp := postOrder(t, r, []byte(`{"order_id": `))
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpInvalidJsonError, errResp.ErrorType)
}

func TestIngestHandler_ValidationFailure(t *testing.T) {
	store := &stubOrderStore{}
	r := newTestRouter(store)

	body, _ := json.Marshal(v1.Order{
		OrderID:    "ord-1",
		BuyerID:    "buyer-1",
		OccurredAt: time.Now().UTC(),
		Revenue:    decimal.NewFromInt(-3),
	})

	resp := postOrder(t, r, body)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.Empty(t, store.saved)
}

func TestIngestHandler_Duplicate(t *testing.T) {
	store := &stubOrderStore{saveErr: storage.ErrDuplicate}
	r := newTestRouter(store)

	body, _ := json.Marshal(v1.Order{
		ID:         "line-001",
		OrderID:    "ord-1",
		BuyerID:    "buyer-1",
		OccurredAt: time.Now().UTC(),
		Revenue:    decimal.NewFromInt(10),
	})

	resp := postOrder(t, r, body)
	require.Equal(t, http.StatusConflict, resp.Code)

	var errResp httperr.ErrorResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errResp))
	require.Equal(t, httperr.HttpDuplicateOrderError, errResp.ErrorType)
}

func TestIngestHandler_StoreFailure(t *testing.T) {
	store := &stubOrderStore{saveErr: errors.New("connection refused")}
	r := newTestRouter(store)

	body, _ := json.Marshal(v1.Order{
		ID:         "line-001",
		OrderID:    "ord-1",
		BuyerID:    "buyer-1",
		OccurredAt: time.Now().UTC(),
		Revenue:    decimal.NewFromInt(10),
	})

	resp := postOrder(t, r, body)
	require.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestIngestHandler_OversizedBody(t *testing.T) {
	r := newTestRouter(&stubOrderStore{})

	big := bytes.Repeat([]byte("x"), 2*1024*1024) // service limit is 1MB
	resp := postOrder(t, r, big)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.Code)
}
