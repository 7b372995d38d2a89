package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"skillsync/internal/models"
	"skillsync/internal/reasoning"
)

// auditorRole is the system description for the answer-grading role.
const auditorRole = "You are a strict compliance auditor. You verify answers against the supplied text and output strictly valid JSON."

// fallbackVerdict is returned when the auditor's response yields no
// parseable result.
func fallbackVerdict() models.Verdict {
	return models.Verdict{
		IsCorrect: false,
		Feedback:  "Auditor error. Please try again.",
		Citation:  "N/A",
	}
}

func auditorPrompt(req models.EvaluateRequest) string {
	return fmt.Sprintf(`CONTEXT: %s
QUESTION: %s
USER ANSWER: %s

TASK:
1. Evaluate correctness based strictly on the context above.
2. Respond in %[4]s.

Output strictly valid JSON (no markdown):
{
    "is_correct": true/false,
    "feedback": "Explanation (in %[4]s).",
    "citation": "Relevant quote from the context (keep original language)."
}`, req.Context, req.Question, req.SelectedOption, req.TargetLanguage)
}

// HandleEvaluateAnswer grades a submitted answer against the caller-echoed
// context. The caller supplies everything; no quiz state lives server-side.
func (h *Handler) HandleEvaluateAnswer(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if req.TargetLanguage == "" {
		req.TargetLanguage = "English"
	}

	log.Info().Str("language", req.TargetLanguage).Msg("auditing answer")

	verdict := fallbackVerdict()
	raw, err := h.Reasoner.Run(ctx, auditorRole, auditorPrompt(req))
	if err != nil {
		log.Warn().Err(err).Msg("auditor call failed, using fallback verdict")
	} else {
		var got models.Verdict
		if err := reasoning.DecodeObject(raw, &got); err != nil {
			log.Warn().Err(err).Msg("auditor response had no parseable verdict, using fallback verdict")
		} else {
			verdict = got
		}
	}

	c.JSON(http.StatusOK, verdict)
}
