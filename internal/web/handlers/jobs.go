package handlers

import (
	"context"
	"sync"
	"time"
)

// eventChannelBuffer is the buffer size for job event channels.
const eventChannelBuffer = 100

// JobStatus represents the status of an async job.
type JobStatus string

// JobStatus constants define the lifecycle states of an async job.
const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// AnalyzeJob represents an async photo analysis job.
type AnalyzeJob struct {
	EventBroadcaster

	ID              string            `json:"id"`
	Status          JobStatus         `json:"status"`
	TotalPhotos     int               `json:"total_photos"`
	ProcessedPhotos int               `json:"processed_photos"`
	Error           string            `json:"error,omitempty"`
	StartedAt       time.Time         `json:"started_at"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`
	Result          *AnalyzeJobResult `json:"result,omitempty"`
}

// AnalyzeJobResult summarizes a finished analysis batch.
type AnalyzeJobResult struct {
	PhotoCount  int `json:"photo_count"`
	GroupCount  int `json:"group_count"`
	UniqueCount int `json:"unique_count"`
}

// GetStatus returns the current job status (implements SSEJob).
func (j *AnalyzeJob) GetStatus() JobStatus {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.Status
}

// SetStatus transitions the job to a new status.
func (j *AnalyzeJob) SetStatus(status JobStatus) {
	j.mu.Lock()
	j.Status = status
	j.mu.Unlock()
}

// SetProgress records how many photos have been analyzed so far.
func (j *AnalyzeJob) SetProgress(processed, total int) {
	j.mu.Lock()
	j.ProcessedPhotos = processed
	j.TotalPhotos = total
	j.mu.Unlock()
}

// Complete marks the job finished with a result.
func (j *AnalyzeJob) Complete(result *AnalyzeJobResult) {
	now := time.Now()
	j.mu.Lock()
	j.Status = JobStatusCompleted
	j.Result = result
	j.CompletedAt = &now
	j.mu.Unlock()
}

// Cancel cancels the analysis job.
func (j *AnalyzeJob) Cancel() {
	j.EventBroadcaster.Cancel()
	j.mu.Lock()
	j.Status = JobStatusCancelled
	j.mu.Unlock()
}

// Fail marks the job failed with an error message.
func (j *AnalyzeJob) Fail(message string) {
	now := time.Now()
	j.mu.Lock()
	j.Status = JobStatusFailed
	j.Error = message
	j.CompletedAt = &now
	j.mu.Unlock()
}

// JobEvent represents an event from a job.
type JobEvent struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// EventBroadcaster provides listener management and event broadcasting for async jobs.
// Embed this in job structs to get AddListener, RemoveListener, and SendEvent methods.
type EventBroadcaster struct {
	cancel    context.CancelFunc
	listeners []chan JobEvent
	mu        sync.RWMutex
}

// AddListener adds an event listener.
func (b *EventBroadcaster) AddListener() chan JobEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan JobEvent, eventChannelBuffer)
	b.listeners = append(b.listeners, ch)
	return ch
}

// RemoveListener removes an event listener.
func (b *EventBroadcaster) RemoveListener(ch chan JobEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, listener := range b.listeners {
		if listener == ch {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			close(ch)
			return
		}
	}
}

// SendEvent sends an event to all listeners.
func (b *EventBroadcaster) SendEvent(event JobEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, listener := range b.listeners {
		select {
		case listener <- event:
		default:
			// Listener buffer full, skip.
		}
	}
}

// Cancel cancels the job via context and sends a cancelled event.
func (b *EventBroadcaster) Cancel() {
	if b.cancel != nil {
		b.cancel()
	}
	b.SendEvent(JobEvent{Type: "cancelled", Message: "Job cancelled by user"})
}

// SSEJob is the interface required by streamSSEEvents to stream job events via SSE.
type SSEJob interface {
	AddListener() chan JobEvent
	RemoveListener(ch chan JobEvent)
	GetStatus() JobStatus
}

// JobManager manages async jobs.
type JobManager struct {
	jobs map[string]*AnalyzeJob
	mu   sync.RWMutex
}

// NewJobManager creates a new job manager.
func NewJobManager() *JobManager {
	return &JobManager{
		jobs: make(map[string]*AnalyzeJob),
	}
}

// CreateJob creates a new analysis job.
func (m *JobManager) CreateJob(id string, totalPhotos int) *AnalyzeJob {
	job := &AnalyzeJob{
		ID:          id,
		Status:      JobStatusPending,
		TotalPhotos: totalPhotos,
		StartedAt:   time.Now(),
	}

	m.mu.Lock()
	m.jobs[id] = job
	m.mu.Unlock()

	return job
}

// GetJob retrieves a job by ID.
func (m *JobManager) GetJob(id string) *AnalyzeJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.jobs[id]
}

// DeleteJob removes a job.
func (m *JobManager) DeleteJob(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, id)
}

// ListJobs returns all jobs.
func (m *JobManager) ListJobs() []*AnalyzeJob {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jobs := make([]*AnalyzeJob, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job)
	}
	return jobs
}
