package domain

import "time"

// Verdict is the outcome of one audit parameter on one call recording.
type Verdict string

const (
	VerdictYes     Verdict = "Yes"
	VerdictNo      Verdict = "No"
	VerdictPartial Verdict = "Partial"
)

// Confidence buckets the model's self-reported certainty.
type Confidence string

const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

// ParameterVerdict is one parameter's result for one file.
type ParameterVerdict struct {
	ParameterID string     `json:"parameter_id"`
	Verdict     Verdict    `json:"verdict"`
	Confidence  Confidence `json:"confidence"`
	Reasoning   string     `json:"reasoning,omitempty"`
	EmittedAt   time.Time  `json:"emitted_at"`
}

// FileAuditResult is the complete audit of a single uploaded file.
type FileAuditResult struct {
	Filename     string             `json:"filename"`
	FileSize     int64              `json:"file_size"`
	Results      []ParameterVerdict `json:"results"`
	OverallScore float64            `json:"overall_score"`
	Summary      string             `json:"summary,omitempty"`
	Error        string             `json:"error,omitempty"`
}

// AuditRequest is the JSON document carried in the multipart "request" field.
type AuditRequest struct {
	Parameters    []string          `json:"parameters"`
	CustomPrompts map[string]string `json:"custom_prompts,omitempty"`
}

// AuditResponse is the synchronous (non-streaming) audit contract.
type AuditResponse struct {
	AuditID               string            `json:"audit_id"`
	TotalFiles            int               `json:"total_files"`
	ProcessedFiles        int               `json:"processed_files"`
	Results               []FileAuditResult `json:"results"`
	OverallSummary        string            `json:"overall_summary,omitempty"`
	GeneratedAt           time.Time         `json:"generated_at"`
	ProcessingTimeSeconds float64           `json:"processing_time_seconds"`
}

type UploadResponse struct {
	Message       string   `json:"message"`
	UploadedFiles []string `json:"uploaded_files"`
	TotalSize     int64    `json:"total_size"`
	FileCount     int      `json:"file_count"`
}
