package emit

import "go.uber.org/zap"

// ZapEmitter implements Emitter by logging events through a zap logger.
// Events land at info level with the run ID, sequence number, executor
// ID, and metadata as structured fields. Events whose metadata carries
// an "error" entry are logged at error level.
type ZapEmitter struct {
	logger *zap.Logger
}

// NewZapEmitter creates a ZapEmitter. A nil logger defaults to zap.NewNop.
func NewZapEmitter(logger *zap.Logger) *ZapEmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapEmitter{logger: logger}
}

// Emit logs the event.
func (z *ZapEmitter) Emit(event Event) {
	fields := []zap.Field{
		zap.String("run_id", event.RunID),
		zap.Int("seq", event.Seq),
	}
	if event.ExecutorID != "" {
		fields = append(fields, zap.String("executor_id", event.ExecutorID))
	}
	for key, value := range event.Meta {
		if key == "error" {
			continue
		}
		fields = append(fields, zap.Any(key, value))
	}

	if errVal, ok := event.Meta["error"]; ok {
		fields = append(fields, zap.Any("error", errVal))
		z.logger.Error(event.Msg, fields...)
		return
	}
	z.logger.Info(event.Msg, fields...)
}
