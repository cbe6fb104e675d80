// Package trace records data operations keyed by record identifier.
//
// Sinks are write-only: callers append entries and never read them back.
// A failing sink must not interrupt processing, so Record has no error
// return and implementations drop entries they cannot write.
package trace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Sink receives one entry per data operation.
type Sink interface {
	Record(operation, recordID string, details map[string]any)
}

// Entry is a single traced operation.
type Entry struct {
	Timestamp time.Time      `json:"timestamp"`
	Operation string         `json:"operation"`
	DataID    string         `json:"data_id"`
	Details   map[string]any `json:"details"`
}

type nopSink struct{}

func (nopSink) Record(string, string, map[string]any) {}

// Nop returns a sink that discards everything.
func Nop() Sink { return nopSink{} }

// FileSink appends JSON lines to a daily trace file.
type FileSink struct {
	logger *zap.Logger
	file   *os.File
	path   string
	once   sync.Once
}

// NewFileSink opens <dir>/trace_YYYYMMDD.log for appending.
func NewFileSink(dir string, now time.Time) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create trace dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("trace_%s.log", now.Format("20060102")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.LevelKey = zapcore.OmitKey
	encCfg.CallerKey = zapcore.OmitKey
	encCfg.MessageKey = zapcore.OmitKey

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), zapcore.InfoLevel)
	return &FileSink{logger: zap.New(core), file: f, path: path}, nil
}

// Path returns the file the sink writes to.
func (s *FileSink) Path() string { return s.path }

func (s *FileSink) Record(operation, recordID string, details map[string]any) {
	if details == nil {
		details = map[string]any{}
	}
	s.logger.Info("trace",
		zap.String("operation", operation),
		zap.String("data_id", recordID),
		zap.Any("details", details),
	)
}

// Close flushes buffered entries and closes the file. Later calls are
// no-ops; entries recorded after Close are dropped.
func (s *FileSink) Close() error {
	var err error
	s.once.Do(func() {
		err = errors.Join(s.file.Sync(), s.file.Close())
	})
	return err
}

// Recorder keeps entries in memory.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
	now     func() time.Time
}

// NewRecorder returns an empty in-memory sink.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

func (r *Recorder) Record(operation, recordID string, details map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{
		Timestamp: r.now(),
		Operation: operation,
		DataID:    recordID,
		Details:   details,
	})
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Operations returns the operation names recorded for recordID, in order.
func (r *Recorder) Operations(recordID string) []string {
	var ops []string
	for _, e := range r.Entries() {
		if e.DataID == recordID {
			ops = append(ops, e.Operation)
		}
	}
	return ops
}

// Lineage returns the operations performed on a record.
// TODO: read entries back from the daily trace files instead of returning a placeholder.
func Lineage(recordID string, now time.Time) []Entry {
	return []Entry{{
		Timestamp: now,
		Operation: "get_lineage",
		DataID:    recordID,
		Details:   map[string]any{"message": "lineage retrieval is not implemented"},
	}}
}
