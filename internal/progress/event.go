package progress

import (
	"bytes"
	"encoding/json"

	"github.com/audifyai/callaudit-backend/internal/domain"
)

// EventType selects the Event variant on the wire.
type EventType string

const (
	EventStarted       EventType = "started"
	EventFileStarted   EventType = "file_started"
	EventFileCompleted EventType = "file_completed"
	EventFileFailed    EventType = "file_error"
	EventCompleted     EventType = "completed"
	EventFailed        EventType = "error"
)

// Event is one unit of job progress delivered by the audit stream. The
// populated fields depend on Type; use the constructors below rather than
// building Events by hand.
type Event struct {
	Type EventType `json:"type"`

	JobID           string `json:"job_id,omitempty"`
	TotalFiles      int    `json:"total_files,omitempty"`
	TotalParameters int    `json:"total_parameters,omitempty"`

	FileIndex     int                       `json:"file_index,omitempty"`
	Filename      string                    `json:"filename,omitempty"`
	FileSizeBytes int64                     `json:"file_size,omitempty"`
	OverallScore  float64                   `json:"overall_score,omitempty"`
	Results       []domain.ParameterVerdict `json:"results,omitempty"`

	ProcessedFiles int     `json:"processed_files,omitempty"`
	ElapsedSeconds float64 `json:"elapsed_seconds,omitempty"`
	Summary        string  `json:"summary,omitempty"`
	ErrorMessage   string  `json:"error,omitempty"`
}

func NewStarted(jobID string, totalFiles, totalParameters int) Event {
	return Event{Type: EventStarted, JobID: jobID, TotalFiles: totalFiles, TotalParameters: totalParameters}
}

func NewFileStarted(index int, filename string) Event {
	return Event{Type: EventFileStarted, FileIndex: index, Filename: filename}
}

func NewFileCompleted(index int, filename string, size int64, score float64, results []domain.ParameterVerdict) Event {
	return Event{
		Type:          EventFileCompleted,
		FileIndex:     index,
		Filename:      filename,
		FileSizeBytes: size,
		OverallScore:  score,
		Results:       results,
	}
}

func NewFileFailed(index int, filename, errorMessage string) Event {
	return Event{Type: EventFileFailed, FileIndex: index, Filename: filename, ErrorMessage: errorMessage}
}

func NewCompleted(jobID string, processedFiles, totalFiles int, elapsedSeconds float64, summary string) Event {
	return Event{
		Type:           EventCompleted,
		JobID:          jobID,
		ProcessedFiles: processedFiles,
		TotalFiles:     totalFiles,
		ElapsedSeconds: elapsedSeconds,
		Summary:        summary,
	}
}

func NewFailed(errorMessage string) Event {
	return Event{Type: EventFailed, ErrorMessage: errorMessage}
}

// frameMarker prefixes every event frame on the wire. The payload after the
// marker is a single JSON object terminated by the line break.
const frameMarker = "data: "

var knownTypes = map[EventType]bool{
	EventStarted:       true,
	EventFileStarted:   true,
	EventFileCompleted: true,
	EventFileFailed:    true,
	EventCompleted:     true,
	EventFailed:        true,
}

// EncodeFrame renders an event as one wire frame, including the trailing
// blank line that separates frames.
func EncodeFrame(ev Event) ([]byte, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(frameMarker) + len(payload) + 2)
	buf.WriteString(frameMarker)
	buf.Write(payload)
	buf.WriteString("\n\n")
	return buf.Bytes(), nil
}

// DecodeFrame parses one line of the stream. The second return value is false
// for anything that is not a well-formed, known event: blank lines, comment
// or heartbeat lines, truncated JSON, unknown types. None of those are errors;
// a single corrupt frame must never take down a multi-minute job.
func DecodeFrame(line []byte) (Event, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Event{}, false
	}
	if bytes.HasPrefix(line, []byte(frameMarker)) {
		line = bytes.TrimSpace(line[len(frameMarker):])
	} else if line[0] != '{' {
		// Not a data frame and not bare JSON: heartbeat or noise.
		return Event{}, false
	}
	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		return Event{}, false
	}
	if !knownTypes[ev.Type] {
		return Event{}, false
	}
	return ev, true
}
