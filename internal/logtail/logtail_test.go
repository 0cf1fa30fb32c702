package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "read all (0)", maxLines: 0, expected: expectedAll},
		{name: "read all (negative)", maxLines: -1, expected: expectedAll},
		{name: "read partial (5)", maxLines: 5, expected: expectedAll[5:]},
		{name: "read exactly all (10)", maxLines: 10, expected: expectedAll},
		{name: "read more than exists (20)", maxLines: 20, expected: expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 10)
	if err != nil {
		t.Fatalf("Read() error = %v, want nil", err)
	}
	if got != nil {
		t.Fatalf("Read() = %v, want nil", got)
	}
}

func TestParse(t *testing.T) {
	line := `{"level":"error","timestamp":"2026-10-18T09:00:00.000Z","logger":"sync","caller":"syncer/observer.go:92","msg":"error deleting student","op":"delete","error":"delete student: api /students/x returned status 500","status":500}`

	e, ok := Parse(line)
	if !ok {
		t.Fatalf("Parse() ok = false, want true")
	}
	if e.Level != "ERROR" || e.Logger != "sync" || e.Message != "error deleting student" {
		t.Fatalf("Parse() = %#v", e)
	}
	if e.Time != "2026-10-18T09:00:00.000Z" {
		t.Fatalf("Time = %q", e.Time)
	}
	want := "error=delete student: api /students/x returned status 500 op=delete status=500"
	if got := e.FieldString(); got != want {
		t.Fatalf("FieldString() = %q, want %q", got, want)
	}
}

func TestParse_NonJSONPassesThrough(t *testing.T) {
	e, ok := Parse("plain text line")
	if ok {
		t.Fatalf("Parse() ok = true, want false")
	}
	if e.Message != "plain text line" || e.Raw != "plain text line" {
		t.Fatalf("Parse() = %#v", e)
	}
	if e.FieldString() != "" {
		t.Fatalf("FieldString() = %q, want empty", e.FieldString())
	}
}
