package ctxutil

import "context"

type traceDataKey struct{}

// TraceData is the per-request correlation state. AuditID is filled in once a
// submission has been assigned a job, so late log lines can still be tied
// back to it.
type TraceData struct {
	TraceID   string
	RequestID string
	AuditID   string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	val := ctx.Value(traceDataKey{})
	if td, ok := val.(*TraceData); ok {
		return td
	}
	return nil
}

// WithAuditID returns a context whose trace data carries the audit job id.
// The original TraceData is not mutated; handlers may still hold it.
func WithAuditID(ctx context.Context, auditID string) context.Context {
	td := GetTraceData(ctx)
	next := TraceData{AuditID: auditID}
	if td != nil {
		next.TraceID = td.TraceID
		next.RequestID = td.RequestID
	}
	return WithTraceData(ctx, &next)
}
