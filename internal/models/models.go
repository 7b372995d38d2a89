package models

// Chunk is one page's sanitized extracted text, the unit of retrieval
// grounding. Page is zero-based.
type Chunk struct {
	Text string `json:"text"`
	Page int    `json:"page"`
}

// QuizRequest is the payload for the quiz-generation endpoint. Topic is
// accepted for forward compatibility but does not bias context selection.
type QuizRequest struct {
	Topic          string `json:"topic"`
	TargetLanguage string `json:"target_language"`
}

// QuizPayload is the structured object expected back from the instructor
// role. VisualQuery is always English regardless of the target language so
// image-generation prompts stay in the artist model's best-supported
// language.
type QuizPayload struct {
	Scenario    string   `json:"scenario"`
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	VisualQuery string   `json:"visual_query"`
}

// QuizResponse is what the quiz-generation endpoint returns to the caller.
// ImageURL is either a path under /static/ or a self-contained data URI.
type QuizResponse struct {
	Data        QuizPayload `json:"data"`
	Context     string      `json:"context"`
	ImageURL    string      `json:"image_url"`
	ImageSource string      `json:"image_source"`
}

// EvaluateRequest carries everything the auditor needs. The caller is the
// source of truth for what was asked; the server keeps no quiz state.
type EvaluateRequest struct {
	Question       string `json:"question"`
	SelectedOption string `json:"selected_option"`
	Context        string `json:"context"`
	TargetLanguage string `json:"target_language"`
}

// Verdict is the auditor's judgment of a submitted answer.
type Verdict struct {
	IsCorrect bool   `json:"is_correct"`
	Feedback  string `json:"feedback"`
	Citation  string `json:"citation"`
}

// ImageRef pairs an image reference with its provenance label.
type ImageRef struct {
	URL    string
	Source string
}

// UploadResponse is returned by the ingestion endpoint.
type UploadResponse struct {
	Status string `json:"status"`
	Info   string `json:"info"`
}
