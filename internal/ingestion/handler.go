package ingestion

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	v1 "github.com/thosangs/revroll/internal/api/v1"
	httperr "github.com/thosangs/revroll/internal/core/errors"
	"github.com/thosangs/revroll/internal/core/storage"
)

const (
	msgReadBodyFailed = "Failed to read request body"
	msgInvalidJSON    = "Invalid JSON body"
	msgPersistFailed  = "Failed to persist order"
	msgDuplicateOrder = "Order already exists"
)

// ingestionError carries the structured HTTP error shape from a helper back to the orchestrator.
// Helpers return this instead of writing to gin.Context directly, keeping them decoupled from HTTP.
type ingestionError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestionError) Error() string {
	return e.message
}

func writeError(c *gin.Context, err *ingestionError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}

// IngestHandler handles HTTP POST requests for order ingestion.
func (s *Service) IngestHandler(c *gin.Context) {
	order, payloadSize, err := s.parseOrder(c)
	if err != nil {
		writeError(c, err)
		return
	}

	if verr := order.Validate(); verr != nil {
		slog.Warn("Order validation failed", "error", verr, "order_id", order.OrderID)
		writeError(c, &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    verr.Error(),
		})
		return
	}

	// Server-assigned id when the client omits one. Note this forfeits
	// retry idempotency for that client; supplying ids is recommended.
	if order.ID == "" {
		order.ID = uuid.NewString()
	}

	slog.Info("Received Order",
		"id", order.ID,
		"order_id", order.OrderID,
		"buyer_id", order.BuyerID,
		"occurred_at", order.OccurredAt,
		"payload_size", payloadSize)

	if err := s.persistOrder(c.Request.Context(), order); err != nil {
		writeError(c, err)
		return
	}

	// Order persisted to DB. The rollup scheduler picks it up on its next pass.
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted", "id": order.ID})
}

// parseOrder reads the raw request body and binds it into an Order struct.
// Returns the parsed order and the raw payload size (used for structured logging upstream).
func (s *Service) parseOrder(c *gin.Context) (*v1.Order, int, *ingestionError) {
	// Enforce maximum body size to prevent OOM attacks
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return nil, 0, &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return nil, len(bodyBytes), &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpInvalidJsonError,
			message:    "Request body exceeds maximum allowed size",
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var order v1.Order
	if err := c.ShouldBindJSON(&order); err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return nil, len(bodyBytes), &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}

	// set IngestedAt to be the time we receive the request
	order.IngestedAt = time.Now().UTC()
	return &order, len(bodyBytes), nil
}

// persistOrder writes the order through the store, mapping duplicates to 409.
func (s *Service) persistOrder(ctx context.Context, order *v1.Order) *ingestionError {
	err := s.store.SaveOrder(ctx, order)
	if err == nil {
		return nil
	}

	if errors.Is(err, storage.ErrDuplicate) {
		slog.Info("Duplicate order ignored", "id", order.ID)
		return &ingestionError{
			statusCode: http.StatusConflict,
			errorType:  httperr.HttpDuplicateOrderError,
			message:    msgDuplicateOrder,
			details:    map[string]interface{}{"id": order.ID},
		}
	}

	slog.Error("Failed to persist order", "error", err, "id", order.ID)
	return &ingestionError{
		statusCode: http.StatusInternalServerError,
		errorType:  httperr.HttpInternalError,
		message:    msgPersistFailed,
	}
}
