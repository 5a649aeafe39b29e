package settlement

import "context"

type platformClient interface {
	Resolve(ctx context.Context, sessionID string) error
	Reject(ctx context.Context, sessionID, reason string) error
}

type metricsRecorder interface {
	RecordSettlement(action, result string)
}
