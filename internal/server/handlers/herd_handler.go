package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdsman/internal/domain/models"
	"github.com/mamadbah2/herdsman/internal/service/breeding"
	"github.com/mamadbah2/herdsman/internal/service/herd"
	"github.com/mamadbah2/herdsman/internal/service/importer"
)

const monthLayout = "2006-01"

// HerdHandler exposes the breeding engine's derived views over HTTP.
type HerdHandler struct {
	svc      *herd.Service
	importer *importer.Service
	logger   *zap.Logger
}

// NewHerdHandler constructs the HTTP handler adapter. importerSvc may be nil
// when sheet import is not configured.
func NewHerdHandler(svc *herd.Service, importerSvc *importer.Service, logger *zap.Logger) *HerdHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HerdHandler{svc: svc, importer: importerSvc, logger: logger}
}

// AnimalStatus returns the animal's current breeding status.
func (h *HerdHandler) AnimalStatus(c *gin.Context) {
	status, err := h.svc.AnimalStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderAnimalError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// AnimalSummary returns the animal's lifetime breeding statistics.
func (h *HerdHandler) AnimalSummary(c *gin.Context) {
	summary, err := h.svc.AnimalSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.renderAnimalError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// HerdStatuses returns current statuses for the whole herd plus the animals
// excluded because their history failed validation.
func (h *HerdHandler) HerdStatuses(c *gin.Context) {
	statuses, failures, err := h.svc.HerdStatuses(c.Request.Context())
	if err != nil {
		h.logger.Error("failed resolving herd statuses", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve herd"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"statuses": statuses, "failures": failures})
}

// HerdKpi computes (and stores) the KPI snapshot for the requested month,
// defaulting to the current one.
func (h *HerdHandler) HerdKpi(c *gin.Context) {
	at := time.Now()
	if month := c.Query("month"); month != "" {
		parsed, err := time.Parse(monthLayout, month)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "month must look like 2026-01"})
			return
		}
		at = parsed
	}

	snap, err := h.svc.MonthlySnapshot(c.Request.Context(), models.MonthPeriod(at))
	if err != nil {
		h.logger.Error("failed computing kpi snapshot", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute kpi snapshot"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

// KpiTrends returns month-over-month KPI deltas for the last N months.
func (h *HerdHandler) KpiTrends(c *gin.Context) {
	months := 6
	if raw := c.Query("months"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "months must be a positive integer"})
			return
		}
		months = parsed
	}

	deltas, err := h.svc.TrendSeries(c.Request.Context(), months)
	if err != nil {
		h.logger.Error("failed loading kpi trends", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load kpi trends"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"trends": deltas})
}

// ListAlerts returns the freshly derived attention list, reconciled with
// stored lifecycle decisions.
func (h *HerdHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.svc.Alerts(c.Request.Context())
	if err != nil {
		h.logger.Error("failed deriving alerts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to derive alerts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

type alertStatusRequest struct {
	Status models.AlertStatus `json:"status" binding:"required"`
}

// UpdateAlertStatus records an acknowledge/resolve/dismiss decision.
func (h *HerdHandler) UpdateAlertStatus(c *gin.Context) {
	var req alertStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.UpdateAlertStatus(c.Request.Context(), c.Param("id"), req.Status); err != nil {
		if errors.Is(err, herd.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown alert status"})
			return
		}
		h.logger.Error("failed updating alert status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update alert status"})
		return
	}
	c.Status(http.StatusNoContent)
}

// CreateEvent appends one reproduction event.
func (h *HerdHandler) CreateEvent(c *gin.Context) {
	var event models.ReproEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		h.logger.Warn("invalid event payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event payload"})
		return
	}

	if err := h.svc.RecordEvent(c.Request.Context(), event); err != nil {
		if errors.Is(err, herd.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "event is missing required fields"})
			return
		}
		h.logger.Error("failed saving event", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save event"})
		return
	}
	c.Status(http.StatusCreated)
}

// RegisterAnimal upserts a herd registry entry.
func (h *HerdHandler) RegisterAnimal(c *gin.Context) {
	var animal models.Animal
	if err := c.ShouldBindJSON(&animal); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid animal payload"})
		return
	}

	if err := h.svc.RegisterAnimal(c.Request.Context(), animal); err != nil {
		if errors.Is(err, herd.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "animal id is required"})
			return
		}
		h.logger.Error("failed saving animal", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save animal"})
		return
	}
	c.Status(http.StatusCreated)
}

// ImportSheet triggers an import run from the configured spreadsheet.
func (h *HerdHandler) ImportSheet(c *gin.Context) {
	if h.importer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sheet import is not configured"})
		return
	}

	result, err := h.importer.Import(c.Request.Context())
	if err != nil {
		h.logger.Error("sheet import failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "sheet import failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *HerdHandler) renderAnimalError(c *gin.Context, err error) {
	var animalErr *breeding.AnimalError
	switch {
	case errors.Is(err, herd.ErrAnimalNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "animal not found"})
	case errors.As(err, &animalErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": animalErr.Error(), "animal_id": animalErr.AnimalID})
	default:
		h.logger.Error("failed resolving animal", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve animal"})
	}
}
