package workflows

import (
	"context"
	"errors"
	"testing"

	"whispr/internal/activities"
	"whispr/internal/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func newEnrichEnv() *testsuite.TestWorkflowEnvironment {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(EnrichWorkflow)
	registerActivityName(env, "UpsertJobActivity", func(context.Context, activities.UpsertJobInput) error { return nil })
	registerActivityName(env, "UpdateJobStatusActivity", func(context.Context, activities.UpdateJobStatusInput) error { return nil })
	registerActivityName(env, "TranscribeActivity", func(context.Context, activities.TranscribeInput) (activities.TranscribeOutput, error) {
		return activities.TranscribeOutput{}, nil
	})
	registerActivityName(env, "SummarizeActivity", func(context.Context, activities.SummarizeInput) (activities.SummarizeOutput, error) {
		return activities.SummarizeOutput{}, nil
	})
	registerActivityName(env, "AnalyzeImageActivity", func(context.Context, activities.AnalyzeImageInput) (activities.AnalyzeImageOutput, error) {
		return activities.AnalyzeImageOutput{}, nil
	})
	registerActivityName(env, "PlaceImagesActivity", func(context.Context, activities.PlaceImagesInput) (activities.PlaceImagesOutput, error) {
		return activities.PlaceImagesOutput{}, nil
	})
	registerActivityName(env, "RenderMarkdownActivity", func(context.Context, activities.RenderMarkdownInput) (activities.RenderMarkdownOutput, error) {
		return activities.RenderMarkdownOutput{}, nil
	})
	registerActivityName(env, "WriteNoteArtifactsActivity", func(context.Context, activities.WriteNoteArtifactsInput) (activities.WriteNoteArtifactsOutput, error) {
		return activities.WriteNoteArtifactsOutput{}, nil
	})
	return env
}

func sampleSegments() []models.TranscriptSegment {
	return []models.TranscriptSegment{
		{StartTime: 0, EndTime: 4.5, Text: "welcome to the talk"},
		{StartTime: 4.5, EndTime: 9, Text: "today we cover redfish"},
	}
}

func sampleDocument() models.StructuredDocument {
	return models.StructuredDocument{
		Title:    "Redfish Talk",
		Overview: "An intro to redfish.",
		Sections: []models.DocumentSection{
			{ID: "sec-1", Title: "Intro", BodyText: "redfish basics", OrderIndex: 0},
		},
		Glossary: map[string]string{},
	}
}

func TestEnrichWorkflowSuccessWithImages(t *testing.T) {
	env := newEnrichEnv()

	sec1 := "sec-1"
	env.OnActivity("UpsertJobActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("UpdateJobStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("TranscribeActivity", mock.Anything, mock.Anything).
		Return(activities.TranscribeOutput{Segments: sampleSegments(), TranscriptPath: "/tmp/transcript.json"}, nil)
	env.OnActivity("SummarizeActivity", mock.Anything, mock.Anything).
		Return(activities.SummarizeOutput{Document: sampleDocument()}, nil)
	env.OnActivity("AnalyzeImageActivity", mock.Anything, mock.Anything).
		Return(activities.AnalyzeImageOutput{Record: models.ImageRecord{SourceID: "img-1", Filename: "a.png", Category: "diagram"}}, nil)
	env.OnActivity("PlaceImagesActivity", mock.Anything, mock.Anything).
		Return(activities.PlaceImagesOutput{Decisions: []models.PlacementDecision{
			{ImageSourceID: "img-1", TargetSectionID: &sec1, Score: 0.7},
		}}, nil)
	env.OnActivity("RenderMarkdownActivity", mock.Anything, mock.Anything).
		Return(activities.RenderMarkdownOutput{Markdown: "# Redfish Talk\n"}, nil)
	env.OnActivity("WriteNoteArtifactsActivity", mock.Anything, mock.Anything).
		Return(activities.WriteNoteArtifactsOutput{NotePath: "/tmp/note.md"}, nil)

	env.ExecuteWorkflow(EnrichWorkflow, EnrichInput{
		JobID:              "job1",
		UnderstandingLevel: 2,
		AudioPath:          "/tmp/talk.wav",
		Images:             []ImageInput{{SourceID: "img-1", Path: "/tmp/a.png", Filename: "a.png"}},
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, models.JobCompleted, out)

	val, err := env.QueryWorkflow(QueryGetJobProgress)
	require.NoError(t, err)
	var progress JobProgress
	require.NoError(t, val.Get(&progress))
	require.Equal(t, 1, progress.ImagesAnalyzed)
	require.Equal(t, 1, progress.ImagesPlaced)
	require.Equal(t, "/tmp/note.md", progress.NotePath)
}

func TestEnrichWorkflowNoImagesSkipsPlacement(t *testing.T) {
	env := newEnrichEnv()

	env.OnActivity("UpsertJobActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("UpdateJobStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("TranscribeActivity", mock.Anything, mock.Anything).
		Return(activities.TranscribeOutput{Segments: sampleSegments()}, nil)
	env.OnActivity("SummarizeActivity", mock.Anything, mock.Anything).
		Return(activities.SummarizeOutput{Document: sampleDocument()}, nil)
	env.OnActivity("RenderMarkdownActivity", mock.Anything, mock.Anything).
		Return(activities.RenderMarkdownOutput{Markdown: "# Redfish Talk\n"}, nil)
	env.OnActivity("WriteNoteArtifactsActivity", mock.Anything, mock.Anything).
		Return(activities.WriteNoteArtifactsOutput{NotePath: "/tmp/note.md"}, nil)

	env.ExecuteWorkflow(EnrichWorkflow, EnrichInput{
		JobID:              "job2",
		UnderstandingLevel: 0,
		AudioPath:          "/tmp/talk.wav",
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, models.JobCompleted, out)
	env.AssertNotCalled(t, "PlaceImagesActivity", mock.Anything, mock.Anything)
	env.AssertNotCalled(t, "AnalyzeImageActivity", mock.Anything, mock.Anything)
}

func TestEnrichWorkflowSummarizationFailureFailsGracefully(t *testing.T) {
	env := newEnrichEnv()

	env.OnActivity("UpsertJobActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("UpdateJobStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("TranscribeActivity", mock.Anything, mock.Anything).
		Return(activities.TranscribeOutput{Segments: sampleSegments()}, nil)
	env.OnActivity("SummarizeActivity", mock.Anything, mock.Anything).
		Return(activities.SummarizeOutput{}, errors.New("model output could not be parsed into a document"))

	env.ExecuteWorkflow(EnrichWorkflow, EnrichInput{
		JobID:              "job3",
		UnderstandingLevel: 3,
		AudioPath:          "/tmp/talk.wav",
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, models.JobFailed, out)

	val, err := env.QueryWorkflow(QueryGetJobProgress)
	require.NoError(t, err)
	var progress JobProgress
	require.NoError(t, val.Get(&progress))
	require.Contains(t, progress.FailReason, "summarization failed")
}

// An out-of-range level must persist the failed status, not just
// report it, so the job row never sticks at "queued".
func TestEnrichWorkflowRejectsInvalidLevel(t *testing.T) {
	env := newEnrichEnv()

	env.OnActivity("UpdateJobStatusActivity", mock.Anything, mock.MatchedBy(func(in activities.UpdateJobStatusInput) bool {
		return in.JobID == "job4" && in.Status == models.JobFailed && in.FailReason != ""
	})).Return(nil)

	env.ExecuteWorkflow(EnrichWorkflow, EnrichInput{
		JobID:              "job4",
		UnderstandingLevel: 7,
		AudioPath:          "/tmp/talk.wav",
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, models.JobFailed, out)
	env.AssertNotCalled(t, "TranscribeActivity", mock.Anything, mock.Anything)
	env.AssertNotCalled(t, "UpsertJobActivity", mock.Anything, mock.Anything)
	env.AssertExpectations(t)
}

// A degraded image analysis must not fail the run: the workflow hands a
// fallback record to placement instead.
func TestEnrichWorkflowDegradedImageStillCompletes(t *testing.T) {
	env := newEnrichEnv()

	env.OnActivity("UpsertJobActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("UpdateJobStatusActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("TranscribeActivity", mock.Anything, mock.Anything).
		Return(activities.TranscribeOutput{Segments: sampleSegments()}, nil)
	env.OnActivity("SummarizeActivity", mock.Anything, mock.Anything).
		Return(activities.SummarizeOutput{Document: sampleDocument()}, nil)
	env.OnActivity("AnalyzeImageActivity", mock.Anything, mock.Anything).
		Return(activities.AnalyzeImageOutput{}, errors.New("context deadline exceeded"))
	env.OnActivity("PlaceImagesActivity", mock.Anything, mock.Anything).
		Return(func(_ context.Context, in activities.PlaceImagesInput) (activities.PlaceImagesOutput, error) {
			decisions := make([]models.PlacementDecision, 0, len(in.Images))
			for _, img := range in.Images {
				decisions = append(decisions, models.PlacementDecision{ImageSourceID: img.SourceID})
			}
			return activities.PlaceImagesOutput{Decisions: decisions}, nil
		})
	env.OnActivity("RenderMarkdownActivity", mock.Anything, mock.Anything).
		Return(activities.RenderMarkdownOutput{Markdown: "# Redfish Talk\n"}, nil)
	env.OnActivity("WriteNoteArtifactsActivity", mock.Anything, mock.Anything).
		Return(activities.WriteNoteArtifactsOutput{NotePath: "/tmp/note.md"}, nil)

	env.ExecuteWorkflow(EnrichWorkflow, EnrichInput{
		JobID:              "job5",
		UnderstandingLevel: 2,
		AudioPath:          "/tmp/talk.wav",
		Images:             []ImageInput{{SourceID: "img-1", Path: "/tmp/missing.png", Filename: "missing.png"}},
	})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out string
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, models.JobCompleted, out)

	val, err := env.QueryWorkflow(QueryGetJobProgress)
	require.NoError(t, err)
	var progress JobProgress
	require.NoError(t, val.Get(&progress))
	require.Equal(t, 1, progress.ImagesAnalyzed)
	require.Equal(t, 1, progress.ImagesUnplaced)
}
