package testutil

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// CallLogEntry represents a single call record in YAML format.
// It wraps CallRecord for serialization, handling error and time formatting.
type CallLogEntry struct {
	Method    string   `yaml:"method"`
	Args      []string `yaml:"args,omitempty"`
	Dir       string   `yaml:"dir,omitempty"`
	Timestamp string   `yaml:"timestamp"`
	Response  string   `yaml:"response,omitempty"`
	Error     string   `yaml:"error,omitempty"`
	ExitCode  int      `yaml:"exit_code"`
}

// CallLog wraps []CallLogEntry for YAML serialization.
type CallLog struct {
	Entries []CallLogEntry `yaml:"entries"`
}

// WriteCallLog writes a slice of CallRecords to a YAML file. Useful for
// attaching the command trace of a failing test as an artifact.
func WriteCallLog(path string, records []CallRecord) error {
	log := CallLog{
		Entries: make([]CallLogEntry, 0, len(records)),
	}
	for _, r := range records {
		log.Entries = append(log.Entries, callRecordToEntry(r))
	}

	data, err := yaml.Marshal(log)
	if err != nil {
		return fmt.Errorf("marshaling call log to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing call log to %s: %w", path, err)
	}
	return nil
}

func callRecordToEntry(r CallRecord) CallLogEntry {
	entry := CallLogEntry{
		Method:    r.Method,
		Args:      r.Args,
		Dir:       r.Dir,
		Timestamp: r.Timestamp.Format(time.RFC3339Nano),
		Response:  r.Response,
		ExitCode:  r.ExitCode,
	}
	if r.Error != nil {
		entry.Error = r.Error.Error()
	}
	return entry
}

// ReadCallLog reads a YAML call log file.
// The Error field stays a string since the original error type is lost.
func ReadCallLog(path string) (*CallLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading call log from %s: %w", path, err)
	}

	var log CallLog
	if err := yaml.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("unmarshaling call log YAML: %w", err)
	}
	return &log, nil
}
