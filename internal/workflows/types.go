package workflows

type ImageInput struct {
	SourceID string `json:"source_id"`
	Path     string `json:"path"`
	Filename string `json:"filename"`
}

type EnrichInput struct {
	JobID               string       `json:"job_id"`
	Title               string       `json:"title,omitempty"`
	UnderstandingLevel  int          `json:"understanding_level"`
	AudioPath           string       `json:"audio_path"`
	FormatHint          string       `json:"format_hint,omitempty"`
	Images              []ImageInput `json:"images,omitempty"`
	SlideDeckPath       string       `json:"slide_deck_path,omitempty"`
	MaxConcurrentImages int          `json:"max_concurrent_images,omitempty"`
}

type JobProgress struct {
	JobID          string            `json:"job_id"`
	CurrentStep    string            `json:"current_step"`
	Status         string            `json:"status"`
	FailReason     string            `json:"fail_reason,omitempty"`
	Steps          map[string]string `json:"steps"`
	ImagesTotal    int               `json:"images_total"`
	ImagesAnalyzed int               `json:"images_analyzed"`
	ImagesPlaced   int               `json:"images_placed"`
	ImagesUnplaced int               `json:"images_unplaced"`
	NotePath       string            `json:"note_path,omitempty"`
}
