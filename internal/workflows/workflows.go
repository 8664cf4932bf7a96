package workflows

import (
	"strings"
	"time"

	"whispr/internal/activities"
	"whispr/internal/models"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const QueryGetJobProgress = "GetJobProgress"

// contextBudget caps how much transcript and slide text rides along
// into each image analysis prompt.
const contextBudget = 2000

// EnrichWorkflow drives one audio upload end to end: transcription,
// depth-aware summarization, per-image analysis with bounded fan-out,
// placement, rendering and artifact persistence. It returns the final
// job status string.
func EnrichWorkflow(ctx workflow.Context, input EnrichInput) (string, error) {
	progress := JobProgress{
		JobID:       input.JobID,
		CurrentStep: "init",
		Status:      models.JobProcessing,
		Steps:       map[string]string{},
		ImagesTotal: len(input.Images),
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetJobProgress, func() (JobProgress, error) {
		return progress, nil
	}); err != nil {
		return "", err
	}

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	// The API validates before starting, but a directly-started workflow
	// must still persist its rejection.
	if err := models.UnderstandingLevel(input.UnderstandingLevel).Validate(); err != nil {
		return failJob(ctx, &progress, input.JobID, err.Error()), nil
	}

	_ = workflow.ExecuteActivity(ctx, "UpsertJobActivity", activities.UpsertJobInput{Job: models.Job{
		JobID:      input.JobID,
		WorkflowID: workflow.GetInfo(ctx).WorkflowExecution.ID,
		Title:      input.Title,
		Level:      input.UnderstandingLevel,
		Status:     models.JobProcessing,
	}}).Get(ctx, nil)

	progress.CurrentStep = "transcribe"
	progress.Steps[progress.CurrentStep] = "processing"
	var transcribed activities.TranscribeOutput
	if err := workflow.ExecuteActivity(ctx, "TranscribeActivity", activities.TranscribeInput{
		JobID:      input.JobID,
		AudioPath:  input.AudioPath,
		FormatHint: input.FormatHint,
	}).Get(ctx, &transcribed); err != nil {
		return failJob(ctx, &progress, input.JobID, "transcription failed: "+rootMessage(err)), nil
	}
	progress.Steps[progress.CurrentStep] = "done"

	progress.CurrentStep = "summarize"
	progress.Steps[progress.CurrentStep] = "processing"
	var summarized activities.SummarizeOutput
	if err := workflow.ExecuteActivity(ctx, "SummarizeActivity", activities.SummarizeInput{
		JobID:    input.JobID,
		Title:    input.Title,
		Level:    input.UnderstandingLevel,
		Segments: transcribed.Segments,
	}).Get(ctx, &summarized); err != nil {
		return failJob(ctx, &progress, input.JobID, "summarization failed: "+rootMessage(err)), nil
	}
	progress.Steps[progress.CurrentStep] = "done"
	doc := summarized.Document

	talkContext := buildTalkContext(ctx, &progress, input, doc)

	progress.CurrentStep = "analyze_images"
	progress.Steps[progress.CurrentStep] = "processing"
	images := analyzeImages(ctx, &progress, input, talkContext)
	progress.Steps[progress.CurrentStep] = "done"

	var decisions []models.PlacementDecision
	if len(images) > 0 {
		progress.CurrentStep = "place_images"
		progress.Steps[progress.CurrentStep] = "processing"
		var placed activities.PlaceImagesOutput
		if err := workflow.ExecuteActivity(ctx, "PlaceImagesActivity", activities.PlaceImagesInput{
			JobID:    input.JobID,
			Document: doc,
			Images:   images,
		}).Get(ctx, &placed); err != nil {
			return failJob(ctx, &progress, input.JobID, "placement failed: "+rootMessage(err)), nil
		}
		decisions = placed.Decisions
		for _, d := range decisions {
			if d.Placed() {
				progress.ImagesPlaced++
			} else {
				progress.ImagesUnplaced++
			}
		}
		progress.Steps[progress.CurrentStep] = "done"
	}

	progress.CurrentStep = "render"
	progress.Steps[progress.CurrentStep] = "processing"
	var rendered activities.RenderMarkdownOutput
	if err := workflow.ExecuteActivity(ctx, "RenderMarkdownActivity", activities.RenderMarkdownInput{
		JobID:     input.JobID,
		Document:  doc,
		Images:    images,
		Decisions: decisions,
	}).Get(ctx, &rendered); err != nil {
		return failJob(ctx, &progress, input.JobID, "render failed: "+rootMessage(err)), nil
	}
	progress.Steps[progress.CurrentStep] = "done"

	progress.CurrentStep = "write_artifacts"
	progress.Steps[progress.CurrentStep] = "processing"
	var written activities.WriteNoteArtifactsOutput
	if err := workflow.ExecuteActivity(ctx, "WriteNoteArtifactsActivity", activities.WriteNoteArtifactsInput{
		JobID:     input.JobID,
		Markdown:  rendered.Markdown,
		Document:  doc,
		Images:    images,
		Decisions: decisions,
	}).Get(ctx, &written); err != nil {
		return failJob(ctx, &progress, input.JobID, "artifact write failed: "+rootMessage(err)), nil
	}
	progress.NotePath = written.NotePath
	progress.Steps[progress.CurrentStep] = "done"

	if err := workflow.ExecuteActivity(ctx, "UpdateJobStatusActivity", activities.UpdateJobStatusInput{
		JobID:    input.JobID,
		Status:   models.JobCompleted,
		NotePath: written.NotePath,
	}).Get(ctx, nil); err != nil {
		return "", err
	}
	progress.CurrentStep = "done"
	progress.Status = models.JobCompleted
	return progress.Status, nil
}

// analyzeImages fans analysis activities out in bounded batches. A
// failed analysis degrades to a minimal record, so every input image
// yields exactly one record.
func analyzeImages(ctx workflow.Context, progress *JobProgress, input EnrichInput, talkContext string) []models.ImageRecord {
	if len(input.Images) == 0 {
		return nil
	}
	maxConcurrent := input.MaxConcurrentImages
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}

	records := make([]models.ImageRecord, 0, len(input.Images))
	for i := 0; i < len(input.Images); i += maxConcurrent {
		end := i + maxConcurrent
		if end > len(input.Images) {
			end = len(input.Images)
		}
		futures := make([]workflow.Future, 0, end-i)
		for _, img := range input.Images[i:end] {
			futures = append(futures, workflow.ExecuteActivity(ctx, "AnalyzeImageActivity", activities.AnalyzeImageInput{
				JobID:       input.JobID,
				SourceID:    img.SourceID,
				ImagePath:   img.Path,
				Filename:    img.Filename,
				TalkContext: talkContext,
			}))
		}
		for idx, f := range futures {
			img := input.Images[i+idx]
			var out activities.AnalyzeImageOutput
			if err := f.Get(ctx, &out); err != nil {
				out.Record = models.DegradedImageRecord(img.SourceID, img.Filename, "")
			}
			records = append(records, out.Record)
			progress.ImagesAnalyzed++
		}
	}
	return records
}

// buildTalkContext combines the document overview with extracted slide
// text so image analysis sees what the talk was about. Slide extraction
// is best-effort.
func buildTalkContext(ctx workflow.Context, progress *JobProgress, input EnrichInput, doc models.StructuredDocument) string {
	parts := []string{doc.Overview}
	if input.SlideDeckPath != "" && len(input.Images) > 0 {
		progress.CurrentStep = "extract_slides"
		progress.Steps[progress.CurrentStep] = "processing"
		var slides activities.ExtractSlideTextOutput
		if err := workflow.ExecuteActivity(ctx, "ExtractSlideTextActivity", activities.ExtractSlideTextInput{
			DeckPath: input.SlideDeckPath,
		}).Get(ctx, &slides); err != nil {
			progress.Steps[progress.CurrentStep] = "failed"
		} else {
			parts = append(parts, strings.Join(slides.Pages, "\n"))
			progress.Steps[progress.CurrentStep] = "done"
		}
	}
	joined := strings.TrimSpace(strings.Join(parts, "\n\n"))
	if r := []rune(joined); len(r) > contextBudget {
		joined = string(r[:contextBudget])
	}
	return joined
}

func failJob(ctx workflow.Context, progress *JobProgress, jobID, reason string) string {
	progress.Status = models.JobFailed
	progress.FailReason = reason
	progress.Steps[progress.CurrentStep] = "failed"
	_ = workflow.ExecuteActivity(ctx, "UpdateJobStatusActivity", activities.UpdateJobStatusInput{
		JobID:      jobID,
		Status:     models.JobFailed,
		FailReason: reason,
	}).Get(ctx, nil)
	return progress.Status
}

// rootMessage unwraps temporal error layers down to the message a user
// can act on.
func rootMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 && i+2 < len(msg) {
		return msg[i+2:]
	}
	return msg
}
