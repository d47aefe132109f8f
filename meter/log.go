package meter

import (
	"log/slog"

	"github.com/beplab/examgen"
)

// LogMeter logs admission and generation events using slog.
type LogMeter struct {
	Logger *slog.Logger
}

var _ examgen.Meter = (*LogMeter)(nil)

// NewLogMeter creates a LogMeter with the given logger.
// If logger is nil, slog.Default() is used.
func NewLogMeter(logger *slog.Logger) *LogMeter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMeter{Logger: logger}
}

func (m *LogMeter) OnAdmit(e examgen.AdmitEvent) {
	m.Logger.Info("admit",
		"key", e.Key.String(),
		"credentialed", e.Credentialed,
		"metered", e.Metered,
		"quota_remaining", e.QuotaRemaining,
	)
}

func (m *LogMeter) OnReject(e examgen.RejectEvent) {
	m.Logger.Warn("reject",
		"key", e.Key.String(),
		"credentialed", e.Credentialed,
		"reason", e.Reason,
		"detail", e.Detail,
	)
}

func (m *LogMeter) OnGenerate(e examgen.GenerateEvent) {
	if e.Success {
		m.Logger.Info("generate",
			"stage", string(e.Stage),
			"duration_ms", e.Duration.Milliseconds(),
			"bytes", e.Bytes,
		)
	} else {
		m.Logger.Warn("generate_error",
			"stage", string(e.Stage),
			"duration_ms", e.Duration.Milliseconds(),
			"error", e.Error,
		)
	}
}
