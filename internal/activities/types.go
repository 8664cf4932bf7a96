package activities

import "whispr/internal/models"

type TranscribeInput struct {
	JobID      string `json:"job_id"`
	AudioPath  string `json:"audio_path"`
	FormatHint string `json:"format_hint,omitempty"`
}

type TranscribeOutput struct {
	Segments       []models.TranscriptSegment `json:"segments"`
	TranscriptPath string                     `json:"transcript_path"`
	Language       string                     `json:"language,omitempty"`
}

type SummarizeInput struct {
	JobID    string                     `json:"job_id"`
	Title    string                     `json:"title,omitempty"`
	Level    int                        `json:"understanding_level"`
	Segments []models.TranscriptSegment `json:"segments"`
}

type SummarizeOutput struct {
	Document models.StructuredDocument `json:"document"`
}

type AnalyzeImageInput struct {
	JobID       string `json:"job_id"`
	SourceID    string `json:"source_id"`
	ImagePath   string `json:"image_path"`
	Filename    string `json:"filename"`
	TalkContext string `json:"talk_context,omitempty"`
}

type AnalyzeImageOutput struct {
	Record models.ImageRecord `json:"record"`
}

type ExtractSlideTextInput struct {
	DeckPath string `json:"deck_path"`
}

type ExtractSlideTextOutput struct {
	Pages []string `json:"pages"`
}

type PlaceImagesInput struct {
	JobID    string                    `json:"job_id"`
	Document models.StructuredDocument `json:"document"`
	Images   []models.ImageRecord      `json:"images"`
}

type PlaceImagesOutput struct {
	Decisions []models.PlacementDecision `json:"decisions"`
}

type RenderMarkdownInput struct {
	JobID     string                     `json:"job_id"`
	Document  models.StructuredDocument  `json:"document"`
	Images    []models.ImageRecord       `json:"images"`
	Decisions []models.PlacementDecision `json:"decisions"`
}

type RenderMarkdownOutput struct {
	Markdown string `json:"markdown"`
}

type WriteNoteArtifactsInput struct {
	JobID     string                     `json:"job_id"`
	Markdown  string                     `json:"markdown"`
	Document  models.StructuredDocument  `json:"document"`
	Images    []models.ImageRecord       `json:"images"`
	Decisions []models.PlacementDecision `json:"decisions"`
}

type WriteNoteArtifactsOutput struct {
	NotePath     string `json:"note_path"`
	DocumentPath string `json:"document_path"`
}

type UpsertJobInput struct {
	Job models.Job `json:"job"`
}

type UpdateJobStatusInput struct {
	JobID      string `json:"job_id"`
	Status     string `json:"status"`
	FailReason string `json:"fail_reason,omitempty"`
	NotePath   string `json:"note_path,omitempty"`
}
