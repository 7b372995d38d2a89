// Package handlers implements the HTTP surface: document upload, quiz
// generation and answer evaluation. Handlers never surface internal
// failures; every degraded path returns a defined substitute payload.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"skillsync/internal/ingest"
	"skillsync/internal/models"
)

// Ingestor runs the upload-to-index pipeline.
type Ingestor interface {
	Ingest(ctx context.Context, path string) (ingest.Result, error)
}

// ContextSelector picks the grounding chunk for the next quiz.
type ContextSelector interface {
	SelectContext() models.Chunk
}

// EvidenceResolver picks the image accompanying a question.
type EvidenceResolver interface {
	Resolve(ctx context.Context, page int, visualQuery string) models.ImageRef
}

// Reasoner is the external text-generation collaborator, invoked per role.
type Reasoner interface {
	Run(ctx context.Context, role, prompt string) (string, error)
}

// Handler holds the service dependencies for all routes.
type Handler struct {
	Ingestor Ingestor
	Selector ContextSelector
	Evidence EvidenceResolver
	Reasoner Reasoner
}

// NewHandler creates a Handler with its collaborators.
func NewHandler(ing Ingestor, sel ContextSelector, ev EvidenceResolver, r Reasoner) *Handler {
	return &Handler{
		Ingestor: ing,
		Selector: sel,
		Evidence: ev,
		Reasoner: r,
	}
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
