// Package mediaerrors collects per-file failures during scans so that one bad
// archive becomes one report instead of a failed scan.
package mediaerrors

import (
	"sync"

	"github.com/robinjoseph08/golib/logger"
)

// Producer identifies which subsystem raised a report.
const (
	ProducerArchiveService   = "ArchiveService"
	ProducerChapterExtractor = "ChapterExtractor"
	ProducerBookService      = "BookService"
)

// Report is one recorded failure.
type Report struct {
	Path     string
	Producer string
	Message  string
	Cause    error
}

// Reporter receives per-file failures. Implementations must be safe for
// concurrent use; the scanner reports from many worker goroutines.
type Reporter interface {
	Report(path, producer, message string, cause error)
}

// LogReporter logs each report at warn level and keeps them for later
// inspection.
type LogReporter struct {
	log logger.Logger

	mu      sync.Mutex
	reports []Report
}

func NewLogReporter(log logger.Logger) *LogReporter {
	return &LogReporter{log: log}
}

func (r *LogReporter) Report(path, producer, message string, cause error) {
	r.mu.Lock()
	r.reports = append(r.reports, Report{Path: path, Producer: producer, Message: message, Cause: cause})
	r.mu.Unlock()

	data := logger.Data{"path": path, "producer": producer}
	if cause != nil {
		r.log.Err(cause).Warn(message, data)
		return
	}
	r.log.Warn(message, data)
}

// Reports returns a copy of everything reported so far.
func (r *LogReporter) Reports() []Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Report, len(r.reports))
	copy(out, r.reports)
	return out
}
