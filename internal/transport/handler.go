package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"whatsapp-relay/internal/ingestion"
	"whatsapp-relay/internal/logger"
	apperrors "whatsapp-relay/pkg/errors"
	"whatsapp-relay/pkg/logging"
)

type Enqueuer interface {
	Offer(batch ingestion.NotificationBatch) error
}

type Handler struct {
	queue  Enqueuer
	logger logger.Logger
}

func NewHandler(queue Enqueuer, log logger.Logger) *Handler {
	return &Handler{queue: queue, logger: log}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	v1 := router.Group("/api/v1")
	{
		v1.POST("/notifications", h.PostNotifications)
	}
}

// AcceptedResponse is returned once a batch is queued.
type AcceptedResponse struct {
	BatchID string `json:"batch_id"`
	Events  int    `json:"events"`
}

// PostNotifications godoc
// @Summary      Queue a notification batch
// @Description  Accepts one messages.upsert batch from the session process. Only batches of type "notify" are relayed.
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Param        batch  body      ingestion.NotificationBatch  true  "Notification batch"
// @Success      202    {object}  AcceptedResponse
// @Failure      400    {object}  map[string]interface{}
// @Failure      429    {object}  map[string]interface{}
// @Failure      503    {object}  map[string]interface{}
// @Router       /notifications [post]
func (h *Handler) PostNotifications(c *gin.Context) {
	var batch ingestion.NotificationBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		c.JSON(http.StatusBadRequest, apperrors.ToErrorResponse(apperrors.ErrValidation.WithCause(err)))
		return
	}

	batch.BatchID = uuid.NewString()
	ctx := logging.WithBatchID(c.Request.Context(), batch.BatchID)

	if err := h.queue.Offer(batch); err != nil {
		reason := "queue_full"
		if errors.Is(err, ErrQueueClosed) {
			reason = "shutting_down"
		}
		h.logger.WarnwCtx(ctx, "Rejecting notification batch",
			"reason", reason,
			"type", batch.Type,
			"events", len(batch.Messages),
		)
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, apperrors.ToErrorResponse(
			apperrors.ErrServiceUnavailable.WithCause(err).WithDetail("reason", reason),
		))
		return
	}

	h.logger.DebugwCtx(ctx, "Notification batch queued",
		"type", batch.Type,
		"events", len(batch.Messages),
	)
	c.JSON(http.StatusAccepted, AcceptedResponse{BatchID: batch.BatchID, Events: len(batch.Messages)})
}
