// Package recorder writes rotating JSONL traces of dispatched Appium
// commands so a failed automation run can be replayed step by step.
package recorder

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	MaxRotatedFiles = 3
	TraceDir        = "traces"
)

// Event is a single record in the command trace: one dispatched command
// with its outcome and timing.
type Event struct {
	Timestamp time.Time      `json:"ts"`
	RunID     string         `json:"run_id"`
	SessionID string         `json:"session_id,omitempty"`
	Command   string         `json:"command"`
	Params    map[string]any `json:"params,omitempty"`
	Status    string         `json:"status"`
	Error     string         `json:"error,omitempty"`
	Duration  int64          `json:"duration_ms"`
}

// Recorder manages rotating trace files. Each Start opens a fresh file
// under a new run id; Record is a no-op until then, so callers never need
// to guard their calls.
type Recorder struct {
	mu       sync.Mutex
	file     *os.File
	encoder  *json.Encoder
	basePath string
	runID    string
}

// NewRecorder creates a recorder instance, ensuring the trace directory
// exists.
func NewRecorder(basePath string) (*Recorder, error) {
	if basePath == "" {
		basePath = TraceDir
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, err
	}
	return &Recorder{
		basePath: basePath,
	}, nil
}

// Start begins a new recording run and returns its id. Old trace files are
// rotated so only the last few runs survive.
func (r *Recorder) Start() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file != nil {
		_ = r.file.Close()
		r.file = nil
	}

	if err := r.rotate(); err != nil {
		return "", fmt.Errorf("rotate traces: %w", err)
	}

	runID := uuid.NewString()
	filename := fmt.Sprintf("trace_%s_%d.jsonl", runID, time.Now().UnixMilli())
	path := filepath.Join(r.basePath, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}

	r.file = f
	r.encoder = json.NewEncoder(f)
	r.runID = runID
	return runID, nil
}

// Record appends one command event to the current trace file.
func (r *Recorder) Record(sessionID, command string, params map[string]any, cmdErr error, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.encoder == nil {
		return
	}

	evt := Event{
		Timestamp: time.Now(),
		RunID:     r.runID,
		SessionID: sessionID,
		Command:   command,
		Params:    params,
		Status:    "ok",
		Duration:  duration.Milliseconds(),
	}
	if cmdErr != nil {
		evt.Status = "error"
		evt.Error = cmdErr.Error()
	}

	_ = r.encoder.Encode(evt)
}

// rotate keeps only the newest MaxRotatedFiles.
func (r *Recorder) rotate() error {
	entries, err := os.ReadDir(r.basePath)
	if err != nil {
		return err
	}

	var traces []struct {
		Name string
		Time time.Time
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".jsonl" {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		traces = append(traces, struct {
			Name string
			Time time.Time
		}{e.Name(), info.ModTime()})
	}

	// Sort newest first
	sort.Slice(traces, func(i, j int) bool {
		return traces[i].Time.After(traces[j].Time)
	})

	// Keep N-1 to make room for the new one
	if len(traces) >= MaxRotatedFiles {
		keep := MaxRotatedFiles - 1
		for i := keep; i < len(traces); i++ {
			path := filepath.Join(r.basePath, traces[i].Name)
			_ = os.Remove(path)
		}
	}
	return nil
}

// Close finishes the current recording run.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		r.encoder = nil
		return err
	}
	return nil
}
