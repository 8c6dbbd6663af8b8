// internal/api/handlers/data_handler.go
package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/platable/insights-backend/internal/cache"
	"github.com/platable/insights-backend/internal/domain"
	"github.com/platable/insights-backend/internal/ingest"
	"github.com/platable/insights-backend/internal/session"
)

// DataHandler owns the dataset lifecycle: upload, parameter edits and
// explicit refresh.
type DataHandler struct {
	store          *session.Store
	cache          cache.KPICache
	uploadDir      string
	maxUploadBytes int64
}

func NewDataHandler(store *session.Store, kpiCache cache.KPICache, uploadDir string, maxUploadBytes int64) *DataHandler {
	return &DataHandler{
		store:          store,
		cache:          kpiCache,
		uploadDir:      uploadDir,
		maxUploadBytes: maxUploadBytes,
	}
}

// Upload ingests a single CSV/XLSX sheet and replaces the session dataset.
// A failed upload leaves the previous dataset untouched.
func (h *DataHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file form field is required"})
		return
	}
	if h.maxUploadBytes > 0 && file.Size > h.maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file exceeds upload size limit"})
		return
	}
	if _, err := ingest.FormatForFilename(file.Filename); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Stage the upload on disk so a parse failure never clobbers the
	// in-memory dataset.
	path := filepath.Join(h.uploadDir, filepath.Base(file.Filename))
	if err := c.SaveUploadedFile(file, path); err != nil {
		log.Error().Err(err).Str("filename", file.Filename).Msg("failed to save uploaded file")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save uploaded file"})
		return
	}
	defer os.Remove(path)

	table, err := ingest.ReadTable(path)
	if err != nil {
		log.Error().Err(err).Str("filename", file.Filename).Msg("failed to read uploaded sheet")
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file", "details": err.Error()})
		return
	}

	result := h.store.Replace(file.Filename, table)
	if err := h.cache.InvalidateAll(c.Request.Context()); err != nil {
		log.Warn().Err(err).Msg("kpi cache invalidation failed")
	}

	log.Info().
		Str("filename", file.Filename).
		Int("rows", len(result.Orders)).
		Strs("unmapped", result.Unmapped).
		Msg("dataset replaced")

	c.JSON(http.StatusOK, gin.H{
		"filename":        file.Filename,
		"rows":            len(result.Orders),
		"unmapped_fields": result.Unmapped,
		"mapped_fields":   len(result.Mapping),
	})
}

// GetParams returns the active impact parameters.
func (h *DataHandler) GetParams(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Params())
}

// UpdateParams stores new impact parameters. They apply on the next upload
// or refresh, not retroactively to already-derived rows.
func (h *DataHandler) UpdateParams(c *gin.Context) {
	var params domain.ImpactParams
	if err := c.ShouldBindJSON(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parameters payload"})
		return
	}
	if params.KgPerMeal <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kg_per_meal must be positive"})
		return
	}
	if params.AvgOrderWeightKg < 0 || params.CO2ePerKgFoodRescued < 0 ||
		params.LastMileCO2eDeliveryKg < 0 || params.LastMileCO2ePickupKg < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "impact parameters must not be negative"})
		return
	}

	h.store.SetParams(params)
	c.JSON(http.StatusOK, params)
}

// Refresh re-derives the dataset from the retained raw table with the
// current parameters.
func (h *DataHandler) Refresh(c *gin.Context) {
	result, err := h.store.Refresh()
	if err != nil {
		if errors.Is(err, session.ErrNoDataset) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no dataset loaded, upload a sheet first"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to refresh dataset"})
		return
	}
	if err := h.cache.InvalidateAll(c.Request.Context()); err != nil {
		log.Warn().Err(err).Msg("kpi cache invalidation failed")
	}

	c.JSON(http.StatusOK, gin.H{
		"rows":            len(result.Orders),
		"unmapped_fields": result.Unmapped,
	})
}

// Status reports the current dataset metadata.
func (h *DataHandler) Status(c *gin.Context) {
	snap, err := h.store.Snapshot()
	if err != nil {
		if errors.Is(err, session.ErrNoDataset) {
			c.JSON(http.StatusOK, gin.H{"loaded": false})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read dataset"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"loaded":          true,
		"filename":        snap.Filename,
		"rows":            len(snap.Orders),
		"raw_rows":        snap.RawRows,
		"unmapped_fields": snap.Unmapped,
		"uploaded_at":     snap.UploadedAt,
		"revision":        snap.Revision,
	})
}
