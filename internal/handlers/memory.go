package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/logger"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/repos"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/services"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/types"
)

type MemoryHandler struct {
	log        *logger.Logger
	memoryRepo repos.MemoryRepo
	queue      services.EnrichmentQueueService
}

func NewMemoryHandler(memoryRepo repos.MemoryRepo, queue services.EnrichmentQueueService, baseLog *logger.Logger) *MemoryHandler {
	return &MemoryHandler{
		log:        baseLog.With("handler", "MemoryHandler"),
		memoryRepo: memoryRepo,
		queue:      queue,
	}
}

type createMemoryRequest struct {
	UserID      uuid.UUID `json:"user_id" binding:"required"`
	Title       string    `json:"title"`
	TextContent string    `json:"text_content" binding:"required"`
}

// CreateMemory stores a memory and enqueues its enrichment.
func (h *MemoryHandler) CreateMemory(c *gin.Context) {
	var req createMemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	memory, err := h.memoryRepo.Create(c.Request.Context(), nil, &types.Memory{
		UserID:      req.UserID,
		Title:       req.Title,
		TextContent: req.TextContent,
	})
	if err != nil {
		h.log.Error("Failed to create memory", "error", err, "user_id", req.UserID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create memory"})
		return
	}

	enqueue, err := h.queue.EnqueueEnrichment(c.Request.Context(), memory.ID, req.UserID)
	if err != nil {
		h.log.Error("Failed to enqueue enrichment", "error", err, "memory_id", memory.ID)
		c.JSON(http.StatusCreated, gin.H{"memory": memory, "enrichment": gin.H{"queued": false, "error": "enqueue failed"}})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"memory": memory, "enrichment": enqueue})
}
