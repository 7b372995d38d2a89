package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"skillsync/internal/models"
)

// HandleUpload accepts a PDF upload, stages it to a temp file and runs
// ingestion. An unreadable document is reported as a status "error" result,
// not an HTTP failure; only a malformed request gets a 4xx.
func (h *Handler) HandleUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.UploadResponse{
			Status: "error",
			Info:   "missing file upload",
		})
		return
	}

	tempPath := filepath.Join(os.TempDir(), uuid.New().String()+"_"+filepath.Base(fileHeader.Filename))
	if err := c.SaveUploadedFile(fileHeader, tempPath); err != nil {
		log.Error().Err(err).Str("file", fileHeader.Filename).Msg("failed to stage upload")
		c.JSON(http.StatusInternalServerError, models.UploadResponse{
			Status: "error",
			Info:   "failed to store uploaded file",
		})
		return
	}
	defer func() {
		if err := os.Remove(tempPath); err != nil {
			log.Warn().Err(err).Str("path", tempPath).Msg("failed to remove temp upload")
		}
	}()

	log.Info().Str("file", fileHeader.Filename).Int64("size", fileHeader.Size).Msg("ingesting upload")

	res, err := h.Ingestor.Ingest(c.Request.Context(), tempPath)
	if err != nil {
		log.Error().Err(err).Str("file", fileHeader.Filename).Msg("ingestion failed")
		c.JSON(http.StatusOK, models.UploadResponse{
			Status: "error",
			Info:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.UploadResponse{
		Status: "success",
		Info:   res.Info,
	})
}
