package progress

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/audifyai/callaudit-backend/internal/domain"
	"github.com/audifyai/callaudit-backend/internal/platform/logger"
)

const (
	requestFieldName = "request"
	fileFieldName    = "files"

	// Frames can carry long model reasoning; give the line scanner room.
	maxFrameBytes = 1 << 20
)

// FileUpload is one audio file attached to a job submission.
type FileUpload struct {
	Filename string
	Reader   io.Reader
}

// JobRequest is a batch audit submission: N files and a fixed parameter set.
type JobRequest struct {
	Parameters    []string
	CustomPrompts map[string]string
	Files         []FileUpload
}

// Client submits audit jobs and reconstructs JobState from the server's
// event stream. It owns no state between calls; every submission starts from
// an empty JobState.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

func NewClient(baseURL string, httpClient *http.Client, log *logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log.With("component", "ProgressClient"),
	}
}

// SubmitStream opens the streaming audit endpoint, folds every incoming
// event into JobState, and invokes onState with a fresh snapshot after each
// event. It always returns a terminal state: if the transport closes before
// the server emits a terminal event, a synthetic failure is folded in so the
// caller never observes a stuck job.
func (c *Client) SubmitStream(ctx context.Context, req JobRequest, onState func(JobState)) (JobState, error) {
	state := NewJobState()

	body, contentType := multipartBody(req)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/audit/stream", body)
	if err != nil {
		return c.failState(state, onState, "build request: "+err.Error()), err
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return c.failState(state, onState, "connection failed: "+err.Error()), err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := readErrorMessage(resp.Body)
		err := fmt.Errorf("audit stream rejected: status %d: %s", resp.StatusCode, msg)
		return c.failState(state, onState, err.Error()), err
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), maxFrameBytes)
	for scanner.Scan() {
		ev, ok := DecodeFrame(scanner.Bytes())
		if !ok {
			continue
		}
		state = Apply(state, ev)
		if onState != nil {
			onState(state)
		}
		if state.Terminal() {
			return state, nil
		}
	}
	if err := scanner.Err(); err != nil && c.log != nil {
		c.log.Warn("Audit stream read error", "error", err)
	}

	// EOF without a terminal event: the job must still end deterministically.
	return c.failState(state, onState, "connection closed unexpectedly"), nil
}

// Audit is the non-streaming fallback: one blocking call returning the final
// document, adapted into the same JobState shape the streaming path builds.
func (c *Client) Audit(ctx context.Context, req JobRequest) (domain.AuditResponse, error) {
	body, contentType := multipartBody(req)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/audit", body)
	if err != nil {
		return domain.AuditResponse{}, err
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.AuditResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.AuditResponse{}, fmt.Errorf("audit rejected: status %d: %s", resp.StatusCode, readErrorMessage(resp.Body))
	}
	var out domain.AuditResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return domain.AuditResponse{}, fmt.Errorf("decode audit response: %w", err)
	}
	return out, nil
}

// StateFromResponse folds the single-shot audit document through the same
// reducer the streaming path uses, by decomposing it into the equivalent
// synthetic event sequence. Feeding the reducer incrementally or all at once
// must land on the same state.
func StateFromResponse(resp domain.AuditResponse) JobState {
	state := Apply(NewJobState(), NewStarted(resp.AuditID, resp.TotalFiles, 0))
	for i, fr := range resp.Results {
		state = Apply(state, NewFileStarted(i, fr.Filename))
		if fr.Error != "" {
			state = Apply(state, NewFileFailed(i, fr.Filename, fr.Error))
			continue
		}
		state = Apply(state, NewFileCompleted(i, fr.Filename, fr.FileSize, fr.OverallScore, fr.Results))
	}
	return Apply(state, NewCompleted(resp.AuditID, resp.ProcessedFiles, resp.TotalFiles, resp.ProcessingTimeSeconds, resp.OverallSummary))
}

func (c *Client) failState(state JobState, onState func(JobState), msg string) JobState {
	state = Apply(state, NewFailed(msg))
	if onState != nil {
		onState(state)
	}
	return state
}

// multipartBody streams the request field and file parts without buffering
// whole recordings in memory.
func multipartBody(req JobRequest) (io.Reader, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		reqJSON, err := json.Marshal(domain.AuditRequest{
			Parameters:    req.Parameters,
			CustomPrompts: req.CustomPrompts,
		})
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := mw.WriteField(requestFieldName, string(reqJSON)); err != nil {
			pw.CloseWithError(err)
			return
		}
		for _, f := range req.Files {
			part, err := mw.CreateFormFile(fileFieldName, f.Filename)
			if err != nil {
				pw.CloseWithError(err)
				return
			}
			if _, err := io.Copy(part, f.Reader); err != nil {
				pw.CloseWithError(err)
				return
			}
		}
		pw.CloseWithError(mw.Close())
	}()
	return pr, mw.FormDataContentType()
}

func readErrorMessage(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 8*1024))
	if err != nil || len(raw) == 0 {
		return "no response body"
	}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return strings.TrimSpace(string(raw))
}

// WatchElapsed re-invokes Tick on an interval until ctx is cancelled or the
// state passed through update becomes terminal. It is the caller-side timer
// the reducer itself refuses to own.
func WatchElapsed(ctx context.Context, interval time.Duration, current func() JobState, update func(JobState)) {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			state := current()
			if state.Terminal() {
				return
			}
			update(Tick(state, now))
		}
	}
}
