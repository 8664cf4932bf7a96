package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.TranscribeActivity)
	w.RegisterActivity(a.SummarizeActivity)
	w.RegisterActivity(a.AnalyzeImageActivity)
	w.RegisterActivity(a.ExtractSlideTextActivity)
	w.RegisterActivity(a.PlaceImagesActivity)
	w.RegisterActivity(a.RenderMarkdownActivity)
	w.RegisterActivity(a.WriteNoteArtifactsActivity)
	w.RegisterActivity(a.UpsertJobActivity)
	w.RegisterActivity(a.UpdateJobStatusActivity)
}
