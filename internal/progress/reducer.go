package progress

import (
	"time"

	"github.com/audifyai/callaudit-backend/internal/domain"
)

// Progress curve while the job is running: reserve the first 5% for
// submission and the last 10% for finalization so the bar visibly moves on
// the first and last file.
const (
	progressFloor   = 5.0
	progressCeiling = 90.0
	progressSpan    = 85.0
)

// maxTotalFiles bounds the per-job file table. A Started frame arrives off
// the wire, so its count must be treated as hostile: negative would panic
// the slice allocation, absurd would allocate unbounded memory.
const maxTotalFiles = 1 << 16

// Apply folds one event into the state and returns the successor state. It
// never fails: events that are out of range, duplicated, or arriving after a
// terminal transition are discarded, because the stream travels over an
// unreliable transport and one bad frame must not corrupt the view.
func Apply(state JobState, ev Event) JobState {
	return applyAt(state, ev, time.Now())
}

// Tick refreshes only ElapsedSeconds on a running job. File state is never
// touched by ticking; callers drive it from their own timer.
func Tick(state JobState, now time.Time) JobState {
	if state.Status != StatusRunning || state.StartedAt.IsZero() {
		return state
	}
	out := state.clone()
	out.ElapsedSeconds = now.Sub(state.StartedAt).Seconds()
	return out
}

func applyAt(state JobState, ev Event, now time.Time) JobState {
	if state.Terminal() {
		return state
	}

	switch ev.Type {
	case EventStarted:
		// Idempotent guard against duplicate stream headers.
		if state.Status != StatusNotStarted {
			return state
		}
		if ev.TotalFiles < 0 || ev.TotalFiles > maxTotalFiles {
			return state
		}
		out := state.clone()
		out.JobID = ev.JobID
		out.Status = StatusRunning
		out.TotalFiles = ev.TotalFiles
		out.TotalParameters = ev.TotalParameters
		out.ProcessedCount = 0
		out.StartedAt = now
		out.ProgressPercent = progressFloor
		out.Files = make([]FileProgress, ev.TotalFiles)
		for i := range out.Files {
			out.Files[i] = FileProgress{Index: i, Status: FilePending}
		}
		return out

	case EventFileStarted:
		if state.Status != StatusRunning || !state.inRange(ev.FileIndex) {
			return state
		}
		if state.Files[ev.FileIndex].Status != FilePending {
			// Duplicate delivery, or the file already finished.
			return state
		}
		out := state.clone()
		out.Files[ev.FileIndex].Status = FileProcessing
		out.Files[ev.FileIndex].Filename = ev.Filename
		return out

	case EventFileCompleted:
		if state.Status != StatusRunning || !state.inRange(ev.FileIndex) {
			return state
		}
		if state.Files[ev.FileIndex].Status.Terminal() {
			// First write wins on redelivery.
			return state
		}
		out := state.clone()
		f := &out.Files[ev.FileIndex]
		f.Status = FileCompleted
		f.Filename = ev.Filename
		f.FileSize = ev.FileSizeBytes
		score := ev.OverallScore
		f.Score = &score
		if ev.Results != nil {
			// Copy, never alias: the event's slice belongs to the sender.
			f.Results = make([]domain.ParameterVerdict, len(ev.Results))
			copy(f.Results, ev.Results)
		}
		completedAt := now
		f.CompletedAt = &completedAt
		out.ProcessedCount++
		out.ProgressPercent = runningPercent(out.ProcessedCount, out.TotalFiles)
		return out

	case EventFileFailed:
		if state.Status != StatusRunning || !state.inRange(ev.FileIndex) {
			return state
		}
		if state.Files[ev.FileIndex].Status.Terminal() {
			return state
		}
		out := state.clone()
		f := &out.Files[ev.FileIndex]
		f.Status = FileFailed
		f.Filename = ev.Filename
		f.ErrorMessage = ev.ErrorMessage
		completedAt := now
		f.CompletedAt = &completedAt
		out.ProcessedCount++
		out.ProgressPercent = runningPercent(out.ProcessedCount, out.TotalFiles)
		return out

	case EventCompleted:
		if state.Status != StatusRunning {
			return state
		}
		out := state.clone()
		out.Status = StatusCompleted
		out.ProgressPercent = 100
		out.TerminalSummary = ev.Summary
		out.ElapsedSeconds = ev.ElapsedSeconds
		return out

	case EventFailed:
		out := state.clone()
		out.Status = StatusFailed
		out.TerminalError = ev.ErrorMessage
		return out

	default:
		return state
	}
}

func (s JobState) inRange(index int) bool {
	return index >= 0 && index < len(s.Files)
}

func runningPercent(processed, total int) float64 {
	if total <= 0 {
		return progressFloor
	}
	pct := progressFloor + progressSpan*float64(processed)/float64(total)
	if pct < progressFloor {
		pct = progressFloor
	}
	if pct > progressCeiling {
		pct = progressCeiling
	}
	return pct
}
