package services

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/audifyai/callaudit-backend/internal/domain"
	"github.com/audifyai/callaudit-backend/internal/platform/gemini"
	"github.com/audifyai/callaudit-backend/internal/platform/logger"
	"github.com/audifyai/callaudit-backend/internal/progress"
	"github.com/audifyai/callaudit-backend/internal/prompts"
)

// Confidence weights used for file scoring.
const (
	weightHigh   = 100.0
	weightMedium = 75.0
	weightLow    = 50.0
)

// EventSink receives every progress event in emission order. A nil sink is
// allowed; the run then only produces the final response.
type EventSink func(progress.Event)

type AuditService interface {
	// Run audits every saved file against every requested parameter, emitting
	// progress events as it goes. Per-file failures are isolated: the job
	// itself always completes and reports them inside the response.
	Run(ctx context.Context, auditID string, files []SavedFile, req domain.AuditRequest, emit EventSink) domain.AuditResponse
}

type auditService struct {
	log            *logger.Logger
	ai             gemini.Client
	maxConcurrency int
}

func NewAuditService(ai gemini.Client, maxConcurrency int, baseLog *logger.Logger) AuditService {
	if maxConcurrency <= 0 {
		maxConcurrency = 3
	}
	return &auditService{
		log:            baseLog.With("service", "AuditService"),
		ai:             ai,
		maxConcurrency: maxConcurrency,
	}
}

func (s *auditService) Run(ctx context.Context, auditID string, files []SavedFile, req domain.AuditRequest, emit EventSink) domain.AuditResponse {
	start := time.Now()
	send := func(ev progress.Event) {
		if emit != nil {
			emit(ev)
		}
	}

	send(progress.NewStarted(auditID, len(files), len(req.Parameters)))

	results := make([]domain.FileAuditResult, 0, len(files))
	for i, file := range files {
		send(progress.NewFileStarted(i, file.OriginalName))

		fr, err := s.auditFile(ctx, file, req)
		if err != nil {
			s.log.Error("File audit failed", "audit_id", auditID, "filename", file.OriginalName, "error", err)
			failed := domain.FileAuditResult{
				Filename: file.OriginalName,
				Error:    err.Error(),
				Summary:  fmt.Sprintf("Error processing file: %s", err.Error()),
			}
			results = append(results, failed)
			send(progress.NewFileFailed(i, file.OriginalName, err.Error()))
			continue
		}

		results = append(results, fr)
		send(progress.NewFileCompleted(i, fr.Filename, fr.FileSize, fr.OverallScore, fr.Results))
	}

	elapsed := time.Since(start).Seconds()
	summary := overallSummary(results)
	send(progress.NewCompleted(auditID, len(results), len(files), elapsed, summary))

	return domain.AuditResponse{
		AuditID:               auditID,
		TotalFiles:            len(files),
		ProcessedFiles:        len(results),
		Results:               results,
		OverallSummary:        summary,
		GeneratedAt:           time.Now(),
		ProcessingTimeSeconds: elapsed,
	}
}

func (s *auditService) auditFile(ctx context.Context, file SavedFile, req domain.AuditRequest) (domain.FileAuditResult, error) {
	audio, err := os.ReadFile(file.Path)
	if err != nil {
		return domain.FileAuditResult{}, fmt.Errorf("read audio: %w", err)
	}
	mimeType := audioMimeType(file.Path)

	verdicts := make([]domain.ParameterVerdict, len(req.Parameters))

	var mu sync.Mutex
	errCount := 0
	var firstErr error

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrency)
	for idx, parameterID := range req.Parameters {
		g.Go(func() error {
			prompt := prompts.PromptFor(parameterID, req.CustomPrompts)
			text, err := s.ai.AuditAudio(gctx, audio, mimeType, prompt)
			if err != nil {
				s.log.Warn("Parameter audit errored", "filename", file.OriginalName, "parameter", parameterID, "error", err)
				verdicts[idx] = domain.ParameterVerdict{
					ParameterID: parameterID,
					Verdict:     domain.VerdictNo,
					Confidence:  domain.ConfidenceLow,
					Reasoning:   "analysis error: " + err.Error(),
					EmittedAt:   time.Now(),
				}
				mu.Lock()
				errCount++
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return nil
			}
			verdict, confidence, reasoning := gemini.ParseVerdict(text)
			verdicts[idx] = domain.ParameterVerdict{
				ParameterID: parameterID,
				Verdict:     verdict,
				Confidence:  confidence,
				Reasoning:   reasoning,
				EmittedAt:   time.Now(),
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(req.Parameters) > 0 && errCount == len(req.Parameters) {
		// Every parameter errored; the recording itself is the likely problem.
		return domain.FileAuditResult{}, fmt.Errorf("all %d parameter audits failed: %w", errCount, firstErr)
	}

	return domain.FileAuditResult{
		Filename:     file.OriginalName,
		FileSize:     file.Size,
		Results:      verdicts,
		OverallScore: overallScore(verdicts),
	}, nil
}

// overallScore averages confidence-weighted verdicts: a Yes counts its
// confidence weight, a Partial counts half, a No counts zero.
func overallScore(verdicts []domain.ParameterVerdict) float64 {
	if len(verdicts) == 0 {
		return 0
	}
	var total float64
	for _, v := range verdicts {
		w := confidenceWeight(v.Confidence)
		switch v.Verdict {
		case domain.VerdictYes:
			total += w
		case domain.VerdictPartial:
			total += w / 2
		}
	}
	return total / float64(len(verdicts))
}

func confidenceWeight(c domain.Confidence) float64 {
	switch c {
	case domain.ConfidenceHigh:
		return weightHigh
	case domain.ConfidenceMedium:
		return weightMedium
	default:
		return weightLow
	}
}

func overallSummary(results []domain.FileAuditResult) string {
	if len(results) == 0 {
		return "No files were processed."
	}
	successful := 0
	var totalScore float64
	for _, r := range results {
		if r.Error == "" {
			successful++
		}
		totalScore += r.OverallScore
	}
	avg := totalScore / float64(len(results))
	return fmt.Sprintf("Processed %d files with %d successful audits. Average score: %.1f%%",
		len(results), successful, avg)
}

func audioMimeType(path string) string {
	if mt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); mt != "" && strings.HasPrefix(mt, "audio/") {
		return mt
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		return "audio/mpeg"
	case ".m4a":
		return "audio/mp4"
	case ".aac":
		return "audio/aac"
	case ".flac":
		return "audio/flac"
	default:
		return "audio/wav"
	}
}
