package handlers

import (
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"skillsync/internal/models"
	"skillsync/internal/reasoning"
)

// instructorRole is the system description for the scenario-designing role.
const instructorRole = "You are an expert technical instructor. You output strictly valid JSON."

// maxContextChars caps how much of the selected chunk is forwarded in the
// instructor prompt.
const maxContextChars = 1500

// fallbackPayload is the fixed substitute when the instructor's response
// yields no parseable quiz object. Its literal "Please retry." question makes
// the degraded path distinguishable to callers.
func fallbackPayload() models.QuizPayload {
	return models.QuizPayload{
		Scenario:    "Error generating scenario.",
		Question:    "Please retry.",
		Options:     []string{"Retry"},
		VisualQuery: "schematic diagram",
	}
}

func instructorPrompt(targetLanguage, contextText string) string {
	if len(contextText) > maxContextChars {
		// Cut on a rune boundary; a split multi-byte character would make
		// the prompt invalid UTF-8 and the model call reject it outright.
		cut := maxContextChars
		for cut > 0 && !utf8.RuneStart(contextText[cut]) {
			cut--
		}
		contextText = contextText[:cut]
	}
	return fmt.Sprintf(`TASK: Create a multiple-choice training scenario based on the source material below.
The entire output must be written in %[1]s, even if the source text is in another language.

Output strictly valid JSON (no markdown):
{
    "scenario": "Description of the situation (in %[1]s).",
    "question": "The specific question (in %[1]s).",
    "options": ["Option A (in %[1]s)", "Option B", "Option C", "Option D"],
    "visual_query": "A precise ENGLISH description of the object or equipment for a technical diagram."
}

SOURCE MATERIAL:
%[2]s`, targetLanguage, contextText)
}

// HandleGenerateQuiz selects a grounding chunk, asks the instructor role for
// a scenario and resolves the accompanying image. The request succeeds even
// when the reasoning call fails; the fallback payload takes its place.
func (h *Handler) HandleGenerateQuiz(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload"})
		return
	}
	if req.TargetLanguage == "" {
		req.TargetLanguage = "English"
	}

	// Selection is uniform random over the chunk list; the topic hint is
	// accepted but does not bias it.
	chunk := h.Selector.SelectContext()
	log.Info().Int("page", chunk.Page).Str("topic", req.Topic).Str("language", req.TargetLanguage).Msg("designing scenario")

	payload := fallbackPayload()
	raw, err := h.Reasoner.Run(ctx, instructorRole, instructorPrompt(req.TargetLanguage, chunk.Text))
	if err != nil {
		log.Warn().Err(err).Msg("instructor call failed, using fallback payload")
	} else {
		var got models.QuizPayload
		if err := reasoning.DecodeObject(raw, &got); err != nil {
			log.Warn().Err(err).Msg("instructor response had no parseable quiz, using fallback payload")
		} else if got.Question == "" || len(got.Options) == 0 {
			log.Warn().Msg("instructor response missing question or options, using fallback payload")
		} else {
			payload = got
		}
	}

	ref := h.Evidence.Resolve(ctx, chunk.Page, payload.VisualQuery)

	c.JSON(http.StatusOK, models.QuizResponse{
		Data:        payload,
		Context:     chunk.Text,
		ImageURL:    ref.URL,
		ImageSource: ref.Source,
	})
}
