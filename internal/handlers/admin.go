package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/logger"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/services"
)

type AdminHandler struct {
	log            *logger.Logger
	circuitBreaker services.CircuitBreakerService
	worker         *services.EnrichmentWorker
}

func NewAdminHandler(circuitBreaker services.CircuitBreakerService, worker *services.EnrichmentWorker, baseLog *logger.Logger) *AdminHandler {
	return &AdminHandler{
		log:            baseLog.With("handler", "AdminHandler"),
		circuitBreaker: circuitBreaker,
		worker:         worker,
	}
}

// GetAICosts reports today's spend, percent of budget used and circuit state.
func (h *AdminHandler) GetAICosts(c *gin.Context) {
	summary, err := h.circuitBreaker.GetDailySpendSummary(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to load daily spend summary", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load spend summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetWorkerStatus reports the enrichment worker's state.
func (h *AdminHandler) GetWorkerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.worker.Status())
}

// TriggerEnrichment drains the queue out of band.
func (h *AdminHandler) TriggerEnrichment(c *gin.Context) {
	if err := h.worker.TriggerProcessing(c.Request.Context()); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"triggered": true})
}
