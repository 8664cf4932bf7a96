package activities

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"whispr/internal/config"
	"whispr/internal/depth"
	"whispr/internal/markdown"
	"whispr/internal/models"
	"whispr/internal/ocr"
	"whispr/internal/placement"
	"whispr/internal/providers"
	"whispr/internal/storage"
	"whispr/internal/summary"
	"whispr/internal/transcribe"
	"whispr/internal/util"
	"whispr/internal/vision"
)

type Activities struct {
	cfg          config.Config
	jobRepo      *storage.JobRepo
	llmAuditRepo *storage.LLMAuditRepo
	transcriber  transcribe.Transcriber
	engine       ocr.Engine
	providers    *providers.Manager
}

func New(cfg config.Config, db *storage.DB) (*Activities, error) {
	pm, err := providers.NewManager(cfg)
	if err != nil {
		return nil, err
	}

	var engine ocr.Engine = ocr.NullEngine{}
	if cfg.TesseractBin != "" {
		engine = ocr.NewTesseractEngine(cfg.TesseractBin)
	}

	return &Activities{
		cfg:          cfg,
		jobRepo:      storage.NewJobRepo(db),
		llmAuditRepo: storage.NewLLMAuditRepo(db),
		transcriber:  transcribe.NewWhisperClient(cfg.WhisperBaseURL, time.Duration(cfg.CallTimeoutSecs)*time.Second),
		engine:       engine,
		providers:    pm,
	}, nil
}

// completerFor scopes provider failover and audit logging to one job:
// every model call made through it lands in llm_calls under that job id.
func (a *Activities) completerFor(jobID string) providers.Completer {
	return auditedCompleter{inner: a.providers, audit: a.llmAuditRepo, jobID: jobID}
}

func (a *Activities) TranscribeActivity(ctx context.Context, in TranscribeInput) (TranscribeOutput, error) {
	audio, err := os.ReadFile(in.AudioPath)
	if err != nil {
		return TranscribeOutput{}, fmt.Errorf("read audio file: %w", err)
	}
	segments, err := a.transcriber.Transcribe(ctx, audio, in.FormatHint)
	if err != nil {
		return TranscribeOutput{}, fmt.Errorf("transcribe audio: %w", err)
	}
	segments = transcribe.Normalize(segments)

	out := TranscribeOutput{Segments: segments}
	if len(segments) > 0 {
		out.Language = segments[0].Language
	}
	path := filepath.Join(a.cfg.ArtifactsRoot, in.JobID, "transcript.json")
	if err := util.WriteJSONAtomic(path, segments); err != nil {
		return TranscribeOutput{}, fmt.Errorf("write transcript artifact: %w", err)
	}
	out.TranscriptPath = path
	return out, nil
}

func (a *Activities) SummarizeActivity(ctx context.Context, in SummarizeInput) (SummarizeOutput, error) {
	profile, err := depth.Resolve(models.UnderstandingLevel(in.Level))
	if err != nil {
		return SummarizeOutput{}, err
	}
	orchestrator := summary.New(a.completerFor(in.JobID), summary.Options{
		WindowSize:    a.cfg.WindowSize,
		WindowOverlap: a.cfg.WindowOverlap,
		MaxTokens:     a.cfg.MaxTokens,
	})
	doc, err := orchestrator.Summarize(ctx, in.Segments, profile)
	if err != nil {
		return SummarizeOutput{}, err
	}
	// A caller-supplied title wins over whatever the model picked.
	if in.Title != "" {
		doc.Title = in.Title
	}
	return SummarizeOutput{Document: doc}, nil
}

// AnalyzeImageActivity never fails the pipeline: unreadable files and
// model errors both come back as a degraded record.
func (a *Activities) AnalyzeImageActivity(ctx context.Context, in AnalyzeImageInput) (AnalyzeImageOutput, error) {
	image, err := os.ReadFile(in.ImagePath)
	if err != nil {
		return AnalyzeImageOutput{Record: models.DegradedImageRecord(in.SourceID, in.Filename, "")}, nil
	}
	analyzer := vision.New(a.completerFor(in.JobID), a.engine, a.cfg.MaxTokens)
	rec := analyzer.Analyze(ctx, in.SourceID, in.Filename, image, in.TalkContext)
	return AnalyzeImageOutput{Record: rec}, nil
}

func (a *Activities) ExtractSlideTextActivity(ctx context.Context, in ExtractSlideTextInput) (ExtractSlideTextOutput, error) {
	_ = ctx
	deck, err := os.ReadFile(in.DeckPath)
	if err != nil {
		return ExtractSlideTextOutput{}, fmt.Errorf("read slide deck: %w", err)
	}
	pages, err := ocr.SlideDeckText(deck)
	if err != nil {
		return ExtractSlideTextOutput{}, fmt.Errorf("extract slide text: %w", err)
	}
	return ExtractSlideTextOutput{Pages: pages}, nil
}

func (a *Activities) PlaceImagesActivity(ctx context.Context, in PlaceImagesInput) (PlaceImagesOutput, error) {
	placer := placement.New(a.completerFor(in.JobID), a.cfg.MinRelevance)
	decisions := placer.Place(ctx, in.Document, in.Images)
	return PlaceImagesOutput{Decisions: decisions}, nil
}

func (a *Activities) RenderMarkdownActivity(ctx context.Context, in RenderMarkdownInput) (RenderMarkdownOutput, error) {
	_ = ctx
	enriched := placement.BuildEnriched(in.Document, in.Images, in.Decisions)
	return RenderMarkdownOutput{Markdown: markdown.Render(enriched)}, nil
}

func (a *Activities) WriteNoteArtifactsActivity(ctx context.Context, in WriteNoteArtifactsInput) (WriteNoteArtifactsOutput, error) {
	jobDir := filepath.Join(a.cfg.ArtifactsRoot, in.JobID)
	notePath := filepath.Join(jobDir, "note.md")
	if err := util.WriteTextAtomic(notePath, in.Markdown); err != nil {
		return WriteNoteArtifactsOutput{}, fmt.Errorf("write note: %w", err)
	}
	docPath := filepath.Join(jobDir, "document.json")
	enriched := placement.BuildEnriched(in.Document, in.Images, in.Decisions)
	if err := util.WriteJSONAtomic(docPath, enriched); err != nil {
		return WriteNoteArtifactsOutput{}, fmt.Errorf("write document artifact: %w", err)
	}
	if err := a.jobRepo.SetNotePath(ctx, in.JobID, notePath); err != nil {
		return WriteNoteArtifactsOutput{}, err
	}
	return WriteNoteArtifactsOutput{NotePath: notePath, DocumentPath: docPath}, nil
}

func (a *Activities) UpsertJobActivity(ctx context.Context, in UpsertJobInput) error {
	return a.jobRepo.UpsertJob(ctx, in.Job)
}

func (a *Activities) UpdateJobStatusActivity(ctx context.Context, in UpdateJobStatusInput) error {
	if err := a.jobRepo.UpdateJobStatus(ctx, in.JobID, in.Status, in.FailReason); err != nil {
		return err
	}
	if in.NotePath != "" {
		return a.jobRepo.SetNotePath(ctx, in.JobID, in.NotePath)
	}
	return nil
}

