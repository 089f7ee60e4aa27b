package progress

import (
	"time"

	"github.com/audifyai/callaudit-backend/internal/domain"
)

// Status is the lifecycle of the whole job.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusRunning    Status = "running"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// FileStatus is the lifecycle of one file within a job. It only moves
// forward: Pending -> Processing -> Completed | Failed.
type FileStatus string

const (
	FilePending    FileStatus = "pending"
	FileProcessing FileStatus = "processing"
	FileCompleted  FileStatus = "completed"
	FileFailed     FileStatus = "failed"
)

// Terminal reports whether no further transition is allowed for the file.
func (s FileStatus) Terminal() bool {
	return s == FileCompleted || s == FileFailed
}

// FileProgress is the reducer's view of one input file.
type FileProgress struct {
	Index        int                       `json:"index"`
	Filename     string                    `json:"filename,omitempty"`
	Status       FileStatus                `json:"status"`
	Score        *float64                  `json:"score,omitempty"`
	FileSize     int64                     `json:"file_size,omitempty"`
	Results      []domain.ParameterVerdict `json:"results,omitempty"`
	ErrorMessage string                    `json:"error,omitempty"`
	CompletedAt  *time.Time                `json:"completed_at,omitempty"`
}

// JobState is the aggregate view reconstructed from the event stream. It is
// a value type: Apply and Tick return fresh copies, and callers may hold on
// to any snapshot without it changing underneath them.
type JobState struct {
	JobID           string         `json:"job_id,omitempty"`
	Status          Status         `json:"status"`
	Files           []FileProgress `json:"files"`
	TotalFiles      int            `json:"total_files"`
	TotalParameters int            `json:"total_parameters,omitempty"`
	ProcessedCount  int            `json:"processed_count"`
	StartedAt       time.Time      `json:"started_at,omitempty"`
	ElapsedSeconds  float64        `json:"elapsed_seconds"`
	ProgressPercent float64        `json:"progress_percent"`
	TerminalSummary string         `json:"terminal_summary,omitempty"`
	TerminalError   string         `json:"terminal_error,omitempty"`
}

// NewJobState is the empty pre-submission state.
func NewJobState() JobState {
	return JobState{Status: StatusNotStarted}
}

// Terminal reports whether the job has reached Completed or Failed.
func (s JobState) Terminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed
}

// SuccessRate is the fraction of terminal files that completed, derived on
// read and never stored.
func (s JobState) SuccessRate() float64 {
	var done, ok int
	for i := range s.Files {
		switch s.Files[i].Status {
		case FileCompleted:
			done++
			ok++
		case FileFailed:
			done++
		}
	}
	if done == 0 {
		return 0
	}
	return float64(ok) / float64(done)
}

// clone deep-copies the mutable parts of the state so that a returned
// snapshot shares nothing with its predecessor.
func (s JobState) clone() JobState {
	out := s
	if s.Files != nil {
		out.Files = make([]FileProgress, len(s.Files))
		copy(out.Files, s.Files)
		for i := range out.Files {
			if s.Files[i].Results != nil {
				out.Files[i].Results = make([]domain.ParameterVerdict, len(s.Files[i].Results))
				copy(out.Files[i].Results, s.Files[i].Results)
			}
			if s.Files[i].CompletedAt != nil {
				t := *s.Files[i].CompletedAt
				out.Files[i].CompletedAt = &t
			}
			if s.Files[i].Score != nil {
				v := *s.Files[i].Score
				out.Files[i].Score = &v
			}
		}
	}
	return out
}
