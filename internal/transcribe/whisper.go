package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"whispr/internal/models"
)

// WhisperClient talks to a faster-whisper server exposing the
// OpenAI-compatible transcription endpoint.
type WhisperClient struct {
	baseURL string
	client  *http.Client
}

func NewWhisperClient(baseURL string, timeout time.Duration) *WhisperClient {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &WhisperClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type whisperSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type whisperResponse struct {
	Language string           `json:"language"`
	Segments []whisperSegment `json:"segments"`
}

func (w *WhisperClient) Transcribe(ctx context.Context, audio []byte, formatHint string) ([]models.TranscriptSegment, error) {
	if len(audio) == 0 {
		return nil, fmt.Errorf("transcribe: empty audio input")
	}
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	name := "audio"
	if formatHint != "" {
		name = "audio." + strings.TrimPrefix(formatHint, ".")
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("build transcription request: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("build transcription request: %w", err)
	}
	if err := mw.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("build transcription request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("build transcription request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/v1/audio/transcriptions", body)
	if err != nil {
		return nil, fmt.Errorf("build transcription request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()
	payload, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("transcription error %d: %s", resp.StatusCode, truncate(string(payload), 500))
	}

	var parsed whisperResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("decode transcription response: %w", err)
	}
	segments := make([]models.TranscriptSegment, 0, len(parsed.Segments))
	for _, s := range parsed.Segments {
		segments = append(segments, models.TranscriptSegment{
			StartTime: s.Start,
			EndTime:   s.End,
			Text:      s.Text,
			Language:  parsed.Language,
		})
	}
	return Normalize(segments), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
