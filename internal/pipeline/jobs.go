package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/caretcaret/aurora/internal/crawler"
	"github.com/caretcaret/aurora/internal/diag"
)

// JobKind distinguishes the two asynchronous workloads.
type JobKind string

const (
	KindIngest JobKind = "ingest" // normalize one uploaded document into the catalog
	KindCrawl  JobKind = "crawl"  // walk the upstream listings
)

// JobStatus represents the state of a job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusParsing   JobStatus = "parsing"
	StatusCrawling  JobStatus = "crawling"
	StatusStoring   JobStatus = "storing"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// NewIngestJob creates a queued job for a single uploaded document.
func NewIngestJob(filename string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Kind:      KindIngest,
		Status:    StatusQueued,
		Filename:  filename,
		fileData:  data,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewCrawlJob creates a queued job that walks listings for the given
// leading characters.
func NewCrawlJob(characters string) *Job {
	now := time.Now()
	return &Job{
		ID:         uuid.NewString(),
		Kind:       KindCrawl,
		Status:     StatusQueued,
		Characters: characters,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Job tracks the state of a single ingest or crawl.
type Job struct {
	mu sync.Mutex

	ID   string  `json:"job_id"`
	Kind JobKind `json:"kind"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	// Ingest jobs.
	Filename string `json:"filename,omitempty"`

	// Crawl jobs.
	Characters string `json:"characters,omitempty"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData []byte
}

// Progress tracks per-job processing results.
type Progress struct {
	Clips       int             `json:"clips"`
	Crawl       crawler.Summary `json:"crawl,omitzero"`
	Diagnostics []string        `json:"diagnostics"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddDiagnostics appends parse diagnostics to the job's progress.
func (j *Job) AddDiagnostics(events []diag.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, e := range events {
		j.Progress.Diagnostics = append(j.Progress.Diagnostics, e.String())
	}
	j.UpdatedAt = time.Now()
}

// SetClips records how many clips the job produced.
func (j *Job) SetClips(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Clips = n
	j.UpdatedAt = time.Now()
}

// SetCrawlSummary records crawl counters.
func (j *Job) SetCrawlSummary(s crawler.Summary) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Crawl = s
	j.Progress.Clips = s.Clips
	j.UpdatedAt = time.Now()
}

// SetFileData sets the raw document bytes for an ingest job.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw document bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID         string    `json:"job_id"`
	Kind       JobKind   `json:"kind"`
	Status     JobStatus `json:"status"`
	Phase      string    `json:"phase"`
	Filename   string    `json:"filename,omitempty"`
	Characters string    `json:"characters,omitempty"`
	Progress   Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	diags := j.Progress.Diagnostics
	if diags == nil {
		diags = []string{}
	}
	return JobSnapshot{
		ID:         j.ID,
		Kind:       j.Kind,
		Status:     j.Status,
		Phase:      j.Phase,
		Filename:   j.Filename,
		Characters: j.Characters,
		Progress: Progress{
			Clips:       j.Progress.Clips,
			Crawl:       j.Progress.Crawl,
			Diagnostics: diags,
		},
	}
}
