package progress

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/audifyai/callaudit-backend/internal/domain"
	"github.com/audifyai/callaudit-backend/internal/platform/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func testRequest() JobRequest {
	return JobRequest{
		Parameters: []string{"greeting", "closing"},
		Files: []FileUpload{
			{Filename: "a.wav", Reader: strings.NewReader("RIFFfake-audio-a")},
			{Filename: "b.wav", Reader: strings.NewReader("RIFFfake-audio-b")},
		},
	}
}

func writeFrames(t *testing.T, w http.ResponseWriter, events ...Event) {
	t.Helper()
	flusher, ok := w.(http.Flusher)
	if !ok {
		t.Fatalf("response writer does not support flushing")
	}
	for _, ev := range events {
		frame, err := EncodeFrame(ev)
		if err != nil {
			t.Fatalf("EncodeFrame: %v", err)
		}
		if _, err := w.Write(frame); err != nil {
			t.Fatalf("write frame: %v", err)
		}
		flusher.Flush()
	}
}

func TestSubmitStreamFoldsToTerminalState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/audit/stream" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		var req domain.AuditRequest
		if err := json.Unmarshal([]byte(r.FormValue("request")), &req); err != nil {
			t.Errorf("request field: %v", err)
		}
		if len(req.Parameters) != 2 {
			t.Errorf("parameters = %v", req.Parameters)
		}
		if got := len(r.MultipartForm.File["files"]); got != 2 {
			t.Errorf("file parts = %d, want 2", got)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		writeFrames(t, w,
			NewStarted("job-1", 2, 2),
			NewFileStarted(0, "a.wav"),
			NewFileCompleted(0, "a.wav", 16, 80, verdicts("greeting")),
			NewFileStarted(1, "b.wav"),
			NewFileFailed(1, "b.wav", "decode error"),
			NewCompleted("job-1", 2, 2, 3.2, "done"),
		)
	}))
	defer srv.Close()

	var snapshots []JobState
	client := NewClient(srv.URL, srv.Client(), testLogger(t))
	final, err := client.SubmitStream(context.Background(), testRequest(), func(s JobState) {
		snapshots = append(snapshots, s)
	})
	if err != nil {
		t.Fatalf("SubmitStream: %v", err)
	}
	if final.Status != StatusCompleted || final.ProcessedCount != 2 {
		t.Fatalf("final state: %+v", final)
	}
	if len(snapshots) != 6 {
		t.Fatalf("snapshot count = %d, want 6", len(snapshots))
	}
	if snapshots[0].Status != StatusRunning || snapshots[0].ProgressPercent != 5 {
		t.Fatalf("first snapshot: %+v", snapshots[0])
	}
	// Progress never regresses across snapshots.
	for i := 1; i < len(snapshots); i++ {
		if snapshots[i].ProgressPercent < snapshots[i-1].ProgressPercent {
			t.Fatalf("progress regressed at snapshot %d: %v -> %v",
				i, snapshots[i-1].ProgressPercent, snapshots[i].ProgressPercent)
		}
	}
}

func TestSubmitStreamSynthesizesFailureOnEarlyClose(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(32 << 20)
		w.Header().Set("Content-Type", "text/event-stream")
		writeFrames(t, w,
			NewStarted("job-1", 2, 1),
			NewFileStarted(0, "a.wav"),
		)
		// Connection drops before any terminal event.
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), testLogger(t))
	final, err := client.SubmitStream(context.Background(), testRequest(), nil)
	if err != nil {
		t.Fatalf("SubmitStream: %v", err)
	}
	if final.Status != StatusFailed {
		t.Fatalf("status = %q, want %q", final.Status, StatusFailed)
	}
	if final.TerminalError != "connection closed unexpectedly" {
		t.Fatalf("TerminalError = %q", final.TerminalError)
	}
	// The partial per-file view survives the synthesized failure.
	if len(final.Files) != 2 || final.Files[0].Status != FileProcessing {
		t.Fatalf("files = %+v", final.Files)
	}
}

func TestSubmitStreamSkipsCorruptFrames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseMultipartForm(32 << 20)
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		writeFrames(t, w, NewStarted("job-1", 1, 1))
		_, _ = w.Write([]byte(": ping ####\n\n"))
		_, _ = w.Write([]byte("data: {\"type\":\"file_completed\",\"file_ind\n\n"))
		_, _ = w.Write([]byte("data: {\"type\":\"new_fangled_event\",\"x\":1}\n\n"))
		flusher.Flush()
		writeFrames(t, w,
			NewFileCompleted(0, "a.wav", 16, 50, nil),
			NewCompleted("job-1", 1, 1, 0.5, "done"),
		)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), testLogger(t))
	final, err := client.SubmitStream(context.Background(), testRequest(), nil)
	if err != nil {
		t.Fatalf("SubmitStream: %v", err)
	}
	if final.Status != StatusCompleted || final.ProcessedCount != 1 {
		t.Fatalf("final state: %+v", final)
	}
}

func TestSubmitStreamRejectedRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"no files attached","code":"invalid_request"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client(), testLogger(t))
	final, err := client.SubmitStream(context.Background(), JobRequest{}, nil)
	if err == nil {
		t.Fatalf("expected error for rejected request")
	}
	if !strings.Contains(err.Error(), "no files attached") {
		t.Fatalf("error does not carry server message: %v", err)
	}
	if final.Status != StatusFailed {
		t.Fatalf("status = %q, want %q", final.Status, StatusFailed)
	}
}

// Property: folding the decomposed event sequence and adapting the one-shot
// document land on the same files and summary.
func TestStreamingAndSyncPathsAgree(t *testing.T) {
	results := []domain.FileAuditResult{
		{
			Filename:     "a.wav",
			FileSize:     1000,
			OverallScore: 80,
			Results:      verdicts("greeting"),
		},
		{
			Filename: "b.wav",
			Error:    "decode error",
		},
	}
	resp := domain.AuditResponse{
		AuditID:               "job-1",
		TotalFiles:            2,
		ProcessedFiles:        2,
		Results:               results,
		OverallSummary:        "done",
		GeneratedAt:           time.Now(),
		ProcessingTimeSeconds: 3.2,
	}

	fromSync := StateFromResponse(resp)

	streamed := NewJobState()
	streamed = Apply(streamed, NewStarted("job-1", 2, 0))
	streamed = Apply(streamed, NewFileStarted(0, "a.wav"))
	streamed = Apply(streamed, NewFileCompleted(0, "a.wav", 1000, 80, results[0].Results))
	streamed = Apply(streamed, NewFileStarted(1, "b.wav"))
	streamed = Apply(streamed, NewFileFailed(1, "b.wav", "decode error"))
	streamed = Apply(streamed, NewCompleted("job-1", 2, 2, 3.2, "done"))

	if fromSync.TerminalSummary != streamed.TerminalSummary {
		t.Fatalf("summaries differ: %q vs %q", fromSync.TerminalSummary, streamed.TerminalSummary)
	}
	if fromSync.Status != streamed.Status || fromSync.ProcessedCount != streamed.ProcessedCount {
		t.Fatalf("aggregate state differs: %+v vs %+v", fromSync, streamed)
	}
	if len(fromSync.Files) != len(streamed.Files) {
		t.Fatalf("file counts differ")
	}
	for i := range fromSync.Files {
		a, b := fromSync.Files[i], streamed.Files[i]
		if a.Status != b.Status || a.Filename != b.Filename || a.ErrorMessage != b.ErrorMessage {
			t.Fatalf("files[%d] differ: %+v vs %+v", i, a, b)
		}
		if (a.Score == nil) != (b.Score == nil) || (a.Score != nil && *a.Score != *b.Score) {
			t.Fatalf("files[%d] scores differ", i)
		}
	}
}

func TestWatchElapsedStopsOnTerminal(t *testing.T) {
	initial := Apply(NewJobState(), NewStarted("job-1", 1, 1))
	initial.StartedAt = time.Now().Add(-3 * time.Second)

	var mu sync.Mutex
	state := initial
	setState := func(s JobState) {
		mu.Lock()
		defer mu.Unlock()
		state = s
	}
	getState := func() JobState {
		mu.Lock()
		defer mu.Unlock()
		return state
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	updates := make(chan JobState, 16)
	go WatchElapsed(ctx, 10*time.Millisecond, getState, func(s JobState) { updates <- s })

	select {
	case s := <-updates:
		if s.ElapsedSeconds < 2.9 {
			t.Fatalf("ElapsedSeconds = %v, want about 3", s.ElapsedSeconds)
		}
	case <-ctx.Done():
		t.Fatalf("no tick observed")
	}

	setState(Apply(getState(), NewFailed("stop")))
	// The watcher must notice the terminal state and return; give it a beat.
	time.Sleep(50 * time.Millisecond)
	drained := len(updates)
	time.Sleep(50 * time.Millisecond)
	if len(updates) > drained+1 {
		t.Fatalf("WatchElapsed kept ticking after terminal state")
	}
}
