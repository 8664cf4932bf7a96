package models

import (
	"fmt"
	"time"
)

// TranscriptSegment is one timed span of speech produced by the
// transcription adapter. Segments are ordered by StartTime and do not
// overlap once normalized.
type TranscriptSegment struct {
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	Text      string  `json:"text"`
	Language  string  `json:"language,omitempty"`
}

// UnderstandingLevel selects how much explanatory depth the generated
// document carries. 0 is complete novice, 5 is expert.
type UnderstandingLevel int

const (
	MinUnderstandingLevel UnderstandingLevel = 0
	MaxUnderstandingLevel UnderstandingLevel = 5
)

func (l UnderstandingLevel) Validate() error {
	if l < MinUnderstandingLevel || l > MaxUnderstandingLevel {
		return fmt.Errorf("understanding_level must be between %d and %d, got %d", MinUnderstandingLevel, MaxUnderstandingLevel, int(l))
	}
	return nil
}

// DocumentSection is one section of the summarized document. OrderIndex
// fixes document sequence at creation and is never reordered downstream.
type DocumentSection struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	BodyText   string   `json:"body_text"`
	KeyPoints  []string `json:"key_points"`
	OrderIndex int      `json:"order_index"`
}

// StructuredDocument is the canonical intermediate produced by
// summarization: overview, ordered sections, glossary, follow-ups.
type StructuredDocument struct {
	Title             string            `json:"title,omitempty"`
	Overview          string            `json:"overview"`
	Sections          []DocumentSection `json:"sections"`
	Glossary          map[string]string `json:"glossary"`
	FollowUpQuestions []string          `json:"follow_up_questions"`
}

// SectionByID returns the section carrying the given id.
func (d *StructuredDocument) SectionByID(id string) (DocumentSection, bool) {
	for _, s := range d.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return DocumentSection{}, false
}

// ImageRecord is the analysis result for one uploaded image. A degraded
// record (category "unknown", confidence 0) is still a valid record.
type ImageRecord struct {
	SourceID    string   `json:"source_id"`
	Filename    string   `json:"filename,omitempty"`
	OCRText     string   `json:"ocr_text"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Category    string   `json:"category"`
	Confidence  float64  `json:"confidence"`
}

const CategoryUnknown = "unknown"

// DegradedImageRecord builds the fallback record for an image whose
// vision analysis failed. The OCR text survives; everything else is reset.
func DegradedImageRecord(sourceID, filename, ocrText string) ImageRecord {
	return ImageRecord{
		SourceID:   sourceID,
		Filename:   filename,
		OCRText:    ocrText,
		Keywords:   []string{},
		Category:   CategoryUnknown,
		Confidence: 0,
	}
}

// PlacementDecision assigns an image to at most one section. A nil
// TargetSectionID means the image stays unplaced.
type PlacementDecision struct {
	ImageSourceID   string  `json:"image_source_id"`
	TargetSectionID *string `json:"target_section_id"`
	Rationale       string  `json:"rationale,omitempty"`
	Score           float64 `json:"score"`
}

func (p PlacementDecision) Placed() bool {
	return p.TargetSectionID != nil
}

// EnrichedDocument is the final artifact handed to the renderer: the
// structured document plus resolved image attachments per section.
// Recomputed each run, never persisted mutably.
type EnrichedDocument struct {
	Document       StructuredDocument       `json:"document"`
	SectionImages  map[string][]ImageRecord `json:"section_images"`
	UnplacedImages []ImageRecord            `json:"unplaced_images"`
	Decisions      []PlacementDecision      `json:"decisions"`
}

// Job statuses, in the order a healthy run moves through them.
const (
	JobQueued     = "queued"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

// Job tracks one processing request end to end.
type Job struct {
	JobID      string    `json:"job_id"`
	WorkflowID string    `json:"workflow_id,omitempty"`
	Title      string    `json:"title,omitempty"`
	Level      int       `json:"understanding_level"`
	Status     string    `json:"status"`
	FailReason string    `json:"fail_reason,omitempty"`
	NotePath   string    `json:"note_path,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
