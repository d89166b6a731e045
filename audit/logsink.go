package audit

import (
	"github.com/fatih/structs"

	"github.com/bridgemesh/core/corectx/logging"
	"github.com/bridgemesh/core/identifier"
)

// LogSink emits events through a logging.Logger as structured fields,
// flattening Event via fatih/structs rather than hand-rolled reflection -
// the teacher's go.mod carries this dependency unused in the retrieved
// source, and trace-event flattening is exactly the shape it is for.
type LogSink struct {
	logger logging.Logger
	format identifier.Format
}

// NewLogSink creates a sink writing to logger, rendering each event's
// identifier in format (identifier.default_format; the zero value is
// identifier.FormatUUIDUpper).
func NewLogSink(logger logging.Logger, format identifier.Format) *LogSink {
	return &LogSink{logger: logger, format: format}
}

func (s *LogSink) Emit(event Event) error {
	payload := struct {
		ID     string
		Point  Point
		Fields map[string]any
	}{
		ID:     event.ID.Render(s.format),
		Point:  event.Point,
		Fields: event.Fields,
	}
	flat := structs.Map(payload)
	s.logger.Infof("audit: %v", flat)
	return nil
}
