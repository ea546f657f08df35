package mylog

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/MarcGrol/canpayshop/lib/mycontext"
)

func init() {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") != "" {
		New = newGcloudLogger
		return
	}
	New = newStandardLogger
}

type zeroLogger struct {
	componentName string
	structured    bool
	base          zerolog.Logger
}

func newStandardLogger(componentName string) Logger {
	return NewWithWriter(componentName, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}, false)
}

// Cloud Logging picks up "severity", "message" and the trace field from json lines on stdout.
func newGcloudLogger(componentName string) Logger {
	return NewWithWriter(componentName, os.Stdout, true)
}

// NewWithWriter creates a logger that writes to w; structured adds the gcloud specific fields.
func NewWithWriter(componentName string, w io.Writer, structured bool) Logger {
	return zeroLogger{
		componentName: componentName,
		structured:    structured,
		base:          zerolog.New(w).With().Timestamp().Str("component", componentName).Logger(),
	}
}

func (l zeroLogger) Log(ctx context.Context, traceLabel string, severity Severity, format string, a ...any) {
	event := l.base.WithLevel(toLevel(severity))
	if traceLabel != "" {
		event = event.Str("aggregate", traceLabel)
	}
	if l.structured {
		event = event.Str("severity", string(severity))
		if trace := mycontext.TraceFromContext(ctx); trace != "" {
			event = event.Str("logging.googleapis.com/trace", trace)
		}
	}
	event.Msg(fmt.Sprintf(format, a...))
}

func toLevel(severity Severity) zerolog.Level {
	switch severity {
	case SeverityDebug:
		return zerolog.DebugLevel
	case SeverityWarn:
		return zerolog.WarnLevel
	case SeverityError:
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
