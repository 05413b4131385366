package sinks

import (
	"context"

	"go.uber.org/zap"

	"github.com/earthsurvivors/earthsurvivors/internal/progress"
)

// LogSink emits structured logs for fetch-run progress. It is the default
// sink in CLI mode where no metrics endpoint exists.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink wires a Zap logger to the sink interface.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogSink{logger: logger}
}

// Consume logs each event in the batch using structured fields.
func (s *LogSink) Consume(_ context.Context, batch []progress.Event) error {
	for _, evt := range batch {
		fields := []zap.Field{
			zap.String("run_id", evt.RunID),
			zap.String("stage", string(evt.Stage)),
		}
		if evt.Stage == progress.StagePage {
			fields = append(fields,
				zap.Int("page", evt.Page),
				zap.String("url", evt.URL),
				zap.Int("seen", evt.Seen),
				zap.Int("kept", evt.Kept),
				zap.Int64("bytes", evt.Bytes),
				zap.String("status_class", string(evt.StatusClass)),
			)
		}
		if evt.Dur > 0 {
			fields = append(fields, zap.Duration("dur", evt.Dur))
		}
		if evt.Note != "" {
			fields = append(fields, zap.String("note", evt.Note))
		}
		s.logger.Info("fetch progress", fields...)
	}
	return nil
}

// Close implements the Sink interface; it performs no action.
func (s *LogSink) Close(context.Context) error {
	return nil
}
