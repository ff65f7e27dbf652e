package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// AuditFile is the name of the tool call log inside the audit directory.
const AuditFile = "audit.jsonl"

// AuditEntry represents a single audit log entry for an MCP tool invocation.
type AuditEntry struct {
	Timestamp  time.Time         `json:"timestamp"`
	Tool       string            `json:"tool"`
	RunID      string            `json:"run_id,omitempty"`
	DurationMs int64             `json:"duration_ms"`
	Status     string            `json:"status"` // "success" or "error"
	Error      string            `json:"error,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
}

// AuditLogger appends audit entries to a JSONL file. It is safe for
// concurrent use. A nil AuditLogger is safe to use; all methods are
// no-ops on nil receiver.
type AuditLogger struct {
	mu   sync.Mutex
	file *os.File
}

// NewAuditLogger opens dir/audit.jsonl for appending, creating dir if
// needed. If the file cannot be opened a warning is printed to stderr
// and nil is returned.
func NewAuditLogger(dir string) *AuditLogger {
	if err := os.MkdirAll(dir, 0700); err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot create audit log directory %s: %v\n", dir, err)
		return nil
	}

	path := filepath.Join(dir, AuditFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: cannot open audit log %s: %v\n", path, err)
		return nil
	}
	return &AuditLogger{file: f}
}

// Log appends entry as one JSON line. Safe to call on nil receiver.
func (a *AuditLogger) Log(entry AuditEntry) {
	if a == nil || a.file == nil {
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	a.mu.Lock()
	defer a.mu.Unlock()
	_, _ = a.file.Write(data)
}

// Close closes the audit file. Safe to call on nil receiver.
func (a *AuditLogger) Close() error {
	if a == nil || a.file == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.file.Close()
}

// auditParams formats the parameters a caller actually set. Nil pointers
// and zero values are left out. A "_param_count" key records how many
// were set.
func auditParams(params map[string]interface{}) map[string]string {
	result := make(map[string]string, len(params)+1)
	for key, val := range params {
		if s, ok := formatParam(val); ok {
			result[key] = s
		}
	}
	result["_param_count"] = fmt.Sprintf("%d", len(result))
	return result
}

func formatParam(v interface{}) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case *int:
		if x == nil {
			return "", false
		}
		return fmt.Sprintf("%d", *x), true
	case *float64:
		if x == nil {
			return "", false
		}
		return fmt.Sprintf("%g", *x), true
	case *uint64:
		if x == nil {
			return "", false
		}
		return fmt.Sprintf("%d", *x), true
	case int:
		return fmt.Sprintf("%d", x), x != 0
	case string:
		return x, x != ""
	case bool:
		return fmt.Sprintf("%t", x), x
	default:
		return fmt.Sprintf("%v", x), true
	}
}

// auditTool logs a tool invocation to the audit log.
func (s *Server) auditTool(toolName, runID string, start time.Time, err error, params map[string]string) {
	status := "success"
	errMsg := ""
	if err != nil {
		status = "error"
		errMsg = err.Error()
	}

	s.auditLogger.Log(AuditEntry{
		Timestamp:  start,
		Tool:       toolName,
		RunID:      runID,
		DurationMs: time.Since(start).Milliseconds(),
		Status:     status,
		Error:      errMsg,
		Params:     params,
	})

	if s.logger != nil {
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		attrs := []any{"tool", toolName, "status", status, "duration_ms", time.Since(start).Milliseconds()}
		for _, k := range keys {
			attrs = append(attrs, k, params[k])
		}
		s.logger.Debug("tool call", attrs...)
	}
}
