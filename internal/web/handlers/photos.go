package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kozaktomas/photo-declutter/internal/originals"
	"github.com/kozaktomas/photo-declutter/internal/pipeline"
	"github.com/kozaktomas/photo-declutter/internal/similarity"
	"github.com/kozaktomas/photo-declutter/internal/store"
)

// maxUploadSize is the maximum multipart upload size in bytes (500MB).
const maxUploadSize = 500 << 20

// PhotosHandler handles photo upload, analysis jobs and photo file serving.
type PhotosHandler struct {
	store      *store.Store
	analyzer   *pipeline.Analyzer
	index      *similarity.Index
	originals  *originals.Store
	jobManager *JobManager
}

// NewPhotosHandler creates a new photos handler.
func NewPhotosHandler(st *store.Store, analyzer *pipeline.Analyzer, index *similarity.Index, orig *originals.Store, jm *JobManager) *PhotosHandler {
	return &PhotosHandler{
		store:      st,
		analyzer:   analyzer,
		index:      index,
		originals:  orig,
		jobManager: jm,
	}
}

// Upload accepts a multipart batch of image files and starts an async
// analysis job. Responds 202 with the job id.
func (h *PhotosHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	if len(fileHeaders) == 0 {
		respondError(w, http.StatusBadRequest, "no files provided")
		return
	}

	files := make([]pipeline.File, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		f, err := fh.Open()
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to open file %s", sanitizeForLog(fh.Filename)))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to read file %s", sanitizeForLog(fh.Filename)))
			return
		}
		files = append(files, pipeline.File{
			Name:    filepath.Base(fh.Filename),
			Data:    data,
			ModTime: parseLastModified(fh.Header.Get("Last-Modified")),
		})
	}

	job := h.jobManager.CreateJob(uuid.New().String(), len(files))

	ctx, cancel := context.WithCancel(context.Background())
	job.cancel = cancel

	go h.runAnalyzeJob(ctx, job, files)

	respondJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

// parseLastModified parses an optional per-part Last-Modified header. Zero
// time when absent, the analyzer then falls back to the upload time.
func parseLastModified(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := http.ParseTime(value)
	if err != nil {
		return time.Time{}
	}
	return t
}

// runAnalyzeJob executes the analysis batch and broadcasts progress events.
func (h *PhotosHandler) runAnalyzeJob(ctx context.Context, job *AnalyzeJob, files []pipeline.File) {
	job.SetStatus(JobStatusRunning)
	job.SendEvent(JobEvent{Type: "started", Data: map[string]int{"total": len(files)}})

	photos := h.analyzer.AnalyzeFiles(ctx, files, func(done, total int) {
		job.SetProgress(done, total)
		job.SendEvent(JobEvent{Type: "progress", Data: map[string]int{
			"processed": done,
			"total":     total,
		}})
	})

	if ctx.Err() != nil {
		// Cancelled, job status already set by Cancel.
		return
	}

	state := h.analyzer.Ingest(photos)

	for i, p := range photos {
		if err := h.originals.Save(p.ID, files[i].Name, files[i].Data); err != nil {
			log.Printf("upload: failed to spool original %q: %v", sanitizeForLog(files[i].Name), err)
		}
	}

	result := &AnalyzeJobResult{
		PhotoCount:  len(state.Photos),
		GroupCount:  len(state.Groups),
		UniqueCount: len(state.UniquePhotos),
	}
	job.Complete(result)
	job.SendEvent(JobEvent{Type: "completed", Data: result})
}

// JobStatus returns the status of an analysis job.
func (h *PhotosHandler) JobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	job := h.jobManager.GetJob(jobID)
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}
	respondJSON(w, http.StatusOK, job)
}

// JobEvents streams job progress via SSE.
func (h *PhotosHandler) JobEvents(w http.ResponseWriter, r *http.Request) {
	streamSSEEvents(w, r,
		func(id string) SSEJob {
			if job := h.jobManager.GetJob(id); job != nil {
				return job
			}
			return nil
		},
		func(job SSEJob) any { return job },
	)
}

// CancelJob cancels a running analysis job.
func (h *PhotosHandler) CancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	job := h.jobManager.GetJob(jobID)
	if job == nil {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}
	job.Cancel()
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// File serves the original bytes of an uploaded photo.
func (h *PhotosHandler) File(w http.ResponseWriter, r *http.Request) {
	photoID := chi.URLParam(r, "id")

	data, err := h.originals.Read(photoID)
	if err != nil {
		respondError(w, http.StatusNotFound, "photo not found")
		return
	}

	w.Header().Set("Content-Type", contentTypeForExt(h.originals.Ext(photoID)))
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}

func contentTypeForExt(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// similarMatch is one entry in the similar photos response.
type similarMatch struct {
	PhotoID    string  `json:"photo_id"`
	Similarity float64 `json:"similarity"`
}

// Similar returns the most similar photos to the given one, nearest first.
func (h *PhotosHandler) Similar(w http.ResponseWriter, r *http.Request) {
	photoID := chi.URLParam(r, "id")

	state := h.store.State()
	var embedding []float32
	for _, p := range state.Photos {
		if p.ID == photoID {
			embedding = p.Embedding
			break
		}
	}
	if embedding == nil {
		respondError(w, http.StatusNotFound, "photo not found or has no embedding")
		return
	}

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			respondError(w, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	// Ask for one extra neighbor, the photo itself is its own best match.
	matches, err := h.index.Search(embedding, limit+1)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "similarity search failed")
		return
	}

	out := make([]similarMatch, 0, limit)
	for _, m := range matches {
		if m.PhotoID == photoID {
			continue
		}
		out = append(out, similarMatch{PhotoID: m.PhotoID, Similarity: m.Similarity})
		if len(out) == limit {
			break
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{"matches": out})
}
