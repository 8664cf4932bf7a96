package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"whispr/internal/config"
	"whispr/internal/models"
	"whispr/internal/storage"
	"whispr/internal/util"
	"whispr/internal/workflows"

	"github.com/google/uuid"
	enumspb "go.temporal.io/api/enums/v1"
	tclient "go.temporal.io/sdk/client"
)

var audioExtensions = map[string]struct{}{
	".wav": {}, ".mp3": {}, ".m4a": {}, ".flac": {}, ".ogg": {}, ".webm": {},
}

var imageExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".webp": {}, ".bmp": {},
}

type Server struct {
	cfg      config.Config
	db       *storage.DB
	jobRepo  *storage.JobRepo
	temporal tclient.Client
}

func NewServer(cfg config.Config) *Server {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		panic(err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		panic(err)
	}
	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		panic(err)
	}
	return &Server{
		cfg:      cfg,
		db:       db,
		jobRepo:  storage.NewJobRepo(db),
		temporal: tc,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/process", s.handleProcess)
	mux.HandleFunc("/jobs", s.handleJobs)
	mux.HandleFunc("/jobs/", s.handleJobScoped)
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// handleProcess accepts one audio file plus optional images and a slide
// deck, records the job and starts the enrichment workflow.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if err := r.ParseMultipartForm(512 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}

	level := 3
	if raw := strings.TrimSpace(r.FormValue("understanding_level")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("understanding_level must be an integer"))
			return
		}
		level = n
	}
	if err := models.UnderstandingLevel(level).Validate(); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))

	audioFiles := r.MultipartForm.File["audio"]
	if len(audioFiles) == 0 {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("audio file is required"))
		return
	}
	audioFh := audioFiles[0]
	audioExt := strings.ToLower(filepath.Ext(audioFh.Filename))
	if _, ok := audioExtensions[audioExt]; !ok {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("unsupported audio format %q", audioExt))
		return
	}

	jobID := uuid.NewString()
	uploadDir := filepath.Join(s.cfg.ArtifactsRoot, jobID, "uploads")
	if err := util.EnsureDir(uploadDir); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	audioPath, err := saveUploadedFile(uploadDir, audioFh)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	images := make([]workflows.ImageInput, 0)
	for _, fh := range r.MultipartForm.File["images"] {
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if _, ok := imageExtensions[ext]; !ok {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("unsupported image format %q", ext))
			return
		}
		path, err := saveUploadedFile(uploadDir, fh)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		images = append(images, workflows.ImageInput{
			SourceID: "img-" + uuid.NewString(),
			Path:     path,
			Filename: filepath.Base(path),
		})
	}

	slideDeckPath := ""
	if decks := r.MultipartForm.File["slide_deck"]; len(decks) > 0 {
		if strings.ToLower(filepath.Ext(decks[0].Filename)) != ".pdf" {
			writeErr(w, http.StatusBadRequest, fmt.Errorf("slide deck must be a PDF"))
			return
		}
		slideDeckPath, err = saveUploadedFile(uploadDir, decks[0])
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
	}

	workflowID := "enrich-" + jobID
	if err := s.jobRepo.UpsertJob(r.Context(), models.Job{
		JobID:      jobID,
		WorkflowID: workflowID,
		Title:      title,
		Level:      level,
		Status:     models.JobQueued,
	}); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	we, err := s.temporal.ExecuteWorkflow(r.Context(), tclient.StartWorkflowOptions{
		ID:                                       workflowID,
		TaskQueue:                                s.cfg.TemporalTaskQueue,
		WorkflowIDReusePolicy:                    enumspb.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE,
		WorkflowExecutionErrorWhenAlreadyStarted: true,
	}, workflows.EnrichWorkflow, workflows.EnrichInput{
		JobID:               jobID,
		Title:               title,
		UnderstandingLevel:  level,
		AudioPath:           audioPath,
		FormatHint:          strings.TrimPrefix(audioExt, "."),
		Images:              images,
		SlideDeckPath:       slideDeckPath,
		MaxConcurrentImages: s.cfg.ImageConcurrency,
	})
	if err != nil {
		writeErr(w, http.StatusConflict, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":      jobID,
		"workflow_id": we.GetID(),
		"run_id":      we.GetRunID(),
		"image_count": len(images),
	})
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	jobs, err := s.jobRepo.ListRecentJobs(r.Context(), 50)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (s *Server) handleJobScoped(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(strings.Trim(strings.TrimPrefix(r.URL.Path, "/jobs/"), "/"), "/")
	if len(parts) < 1 || parts[0] == "" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	jobID := parts[0]

	job, err := s.jobRepo.GetJobByID(r.Context(), jobID)
	if err != nil {
		writeErr(w, http.StatusNotFound, fmt.Errorf("job not found"))
		return
	}

	if len(parts) == 1 {
		out := map[string]any{"job": job}
		// Live progress is best-effort: the workflow may already be gone.
		if job.WorkflowID != "" {
			if resp, qErr := s.temporal.QueryWorkflow(r.Context(), job.WorkflowID, "", workflows.QueryGetJobProgress); qErr == nil {
				var progress workflows.JobProgress
				if resp.Get(&progress) == nil {
					out["progress"] = progress
				}
			}
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	if len(parts) == 2 && parts[1] == "markdown" {
		if job.NotePath == "" {
			writeErr(w, http.StatusNotFound, fmt.Errorf("note not ready"))
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		http.ServeFile(w, r, job.NotePath)
		return
	}

	writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
}

func saveUploadedFile(dstDir string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(dstDir, "upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = tmp.Close()
	}()

	if _, err := io.Copy(tmp, src); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	finalPath := util.SafeJoin(dstDir, fh.Filename)
	if err := os.Rename(tmp.Name(), finalPath); err != nil {
		return "", fmt.Errorf("atomic move upload: %w", err)
	}
	return finalPath, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	msg := "request failed"
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": msg,
		},
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
