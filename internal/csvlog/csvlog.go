// Package csvlog implements the log emitter contract: one CSV file per
// measurement stream or event name, written under a configured log
// directory. Files are opened lazily on first use and kept open for the
// life of the sink, the same one-writer-per-stream shape as the reference
// sweep output writer.
package csvlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/banshee-data/orbitwatch/internal/orbitlog"
	"github.com/banshee-data/orbitwatch/orbitsim"
)

// Sink implements orbitsim.EventSink by appending rows to per-stream CSV
// files under dir. Measurement streams get a (run_id, unix_nanos, value)
// row; events get a (run_id, unix_nanos) row.
type Sink struct {
	dir     string
	runID   string
	writers map[string]*csv.Writer
	files   map[string]*os.File
}

// NewSink creates a Sink writing under dir, which must already exist.
func NewSink(dir, runID string) *Sink {
	return &Sink{
		dir:     dir,
		runID:   runID,
		writers: map[string]*csv.Writer{},
		files:   map[string]*os.File{},
	}
}

// EmitEvent implements orbitsim.EventSink.
func (s *Sink) EmitEvent(name string, now time.Time) {
	w, err := s.writerFor(name, []string{"run_id", "at_unix_nanos"})
	if err != nil {
		orbitlog.Logf("csvlog: %v", err)
		return
	}
	if err := w.Write([]string{s.runID, strconv.FormatInt(now.UnixNano(), 10)}); err != nil {
		orbitlog.Logf("csvlog: write event %q: %v", name, err)
		return
	}
	w.Flush()
}

// EmitMeasurement implements orbitsim.EventSink.
func (s *Sink) EmitMeasurement(stream string, value float64, now time.Time) {
	w, err := s.writerFor(stream, []string{"run_id", "at_unix_nanos", "value"})
	if err != nil {
		orbitlog.Logf("csvlog: %v", err)
		return
	}
	row := []string{s.runID, strconv.FormatInt(now.UnixNano(), 10), strconv.FormatFloat(value, 'f', -1, 64)}
	if err := w.Write(row); err != nil {
		orbitlog.Logf("csvlog: write measurement %q: %v", stream, err)
		return
	}
	w.Flush()
}

// Close flushes and closes every stream file opened so far.
func (s *Sink) Close() error {
	var firstErr error
	for name, f := range s.files {
		s.writers[name].Flush()
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Sink) writerFor(name string, header []string) (*csv.Writer, error) {
	if w, ok := s.writers[name]; ok {
		return w, nil
	}

	path := filepath.Join(s.dir, name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("write header for %s: %w", path, err)
	}
	w.Flush()

	s.files[name] = f
	s.writers[name] = w
	return w, nil
}

var _ orbitsim.EventSink = (*Sink)(nil)
