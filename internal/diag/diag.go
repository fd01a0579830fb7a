// Package diag writes driver validation messages to standard error.
package diag

import (
	"bytes"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
)

// Prefix starts every validation line.
const Prefix = "Validation layer: "

// VerbatimFormatter prints only the message, after Prefix. Fields attached to
// the entry are dropped from the output.
type VerbatimFormatter struct{}

func (VerbatimFormatter) Format(entry *log.Entry) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(Prefix)
	b.WriteString(entry.Message)
	b.WriteByte('\n')
	return b.Bytes(), nil
}

// Sink receives validation messages.
type Sink struct {
	logger *log.Logger
}

// NewSink returns a sink writing to w, or to standard error if w is nil.
func NewSink(w io.Writer) *Sink {
	if w == nil {
		w = os.Stderr
	}

	logger := log.New()
	logger.SetOutput(w)
	logger.SetFormatter(VerbatimFormatter{})
	logger.SetLevel(log.TraceLevel)

	return &Sink{logger: logger}
}

// Severity mirrors the debug messenger severities.
type Severity int

const (
	SeverityVerbose Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) level() log.Level {
	switch s {
	case SeverityError:
		return log.ErrorLevel
	case SeverityWarning:
		return log.WarnLevel
	case SeverityInfo:
		return log.InfoLevel
	default:
		return log.TraceLevel
	}
}

// Write emits one message. Validation output never alters control flow, so
// there is nothing to return.
func (s *Sink) Write(severity Severity, kind string, message string) {
	s.logger.WithFields(log.Fields{
		"severity": severity,
		"type":     kind,
	}).Log(severity.level(), message)
}
