package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

type testEntry struct {
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address" yaml:"address"`
}

type testTable []testEntry

func (t testTable) Headers() []string { return []string{"NAME", "ADDRESS"} }

func (t testTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, e := range t {
		rows = append(rows, []string{e.Name, e.Address})
	}
	return rows
}

var testData = []testEntry{
	{Name: "auth.local.dev", Address: "127.0.0.1"},
	{Name: "web.local.dev", Address: "10.0.0.2"},
}

func TestWriter_SerializeJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(FormatJSON, &buf).Serialize(context.Background(), testData); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	var got []testEntry
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Failed to unmarshal JSON: %v", err)
	}
	if len(got) != 2 || got[0] != testData[0] {
		t.Errorf("Unexpected data: %+v", got)
	}
	if !strings.Contains(buf.String(), "\n  {") {
		t.Errorf("Expected two-space indentation, got: %s", buf.String())
	}
}

func TestWriter_SerializeYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(FormatYAML, &buf).Serialize(context.Background(), testData); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	var got []testEntry
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Failed to unmarshal YAML: %v", err)
	}
	if len(got) != 2 || got[1] != testData[1] {
		t.Errorf("Unexpected data: %+v", got)
	}
}

func TestWriter_SerializeTabular(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(FormatTable, &buf).Serialize(context.Background(), testTable(testData)); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"NAME", "ADDRESS", "auth.local.dev", "127.0.0.1", "web.local.dev"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in table output:\n%s", want, out)
		}
	}
	if strings.Index(out, "auth.local.dev") > strings.Index(out, "web.local.dev") {
		t.Error("Expected rows in input order")
	}
}

func TestWriter_SerializeTableFlattens(t *testing.T) {
	type inner struct {
		Field1 string
		Field2 int
	}
	type outer struct {
		Name  string
		Inner inner
		List  []testEntry
		skip  string
	}

	var buf bytes.Buffer
	data := outer{Name: "test", Inner: inner{Field1: "value", Field2: 42}, List: testData[:1], skip: "hidden"}
	if err := NewWriter(FormatTable, &buf).Serialize(context.Background(), data); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"FIELD", "VALUE", "Inner.Field1", "Inner.Field2", "42", "List[0].Name", "auth.local.dev"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in table output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Error("Unexported fields must not be rendered")
	}
}

func TestWriter_SerializeTable_EmptyData(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(FormatTable, &buf).Serialize(context.Background(), testTable{}); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	if !strings.Contains(buf.String(), "<empty>") {
		t.Errorf("Expected '<empty>' for empty data, got: %s", buf.String())
	}
}

func TestWriter_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	if err := NewWriter(FormatJSON, &buf).Serialize(ctx, testData); err == nil {
		t.Fatal("Expected error for cancelled context")
	}
	if buf.Len() != 0 {
		t.Error("Nothing should be written after cancellation")
	}
}

func TestNewWriter_UnknownFormatFallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(Format("xml"), &buf).Serialize(context.Background(), testData[0]); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	var got testEntry
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Failed to unmarshal as JSON: %v", err)
	}
}

func TestNewFileWriterOrStdout(t *testing.T) {
	for _, path := range []string{"", "  ", "-"} {
		w, err := NewFileWriterOrStdout(FormatJSON, path)
		if err != nil || w == nil {
			t.Fatalf("Expected stdout writer for %q, got %v, %v", path, w, err)
		}
		if c, ok := w.(Closer); ok {
			if err := c.Close(); err != nil {
				t.Errorf("Close failed: %v", err)
			}
		}
	}

	path := filepath.Join(t.TempDir(), "status.json")
	w, err := NewFileWriterOrStdout(FormatJSON, path)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := w.Serialize(context.Background(), testData); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	c := w.(Closer)
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Second Close should not error: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read output file: %v", err)
	}
	var got []testEntry
	if err := json.Unmarshal(content, &got); err != nil {
		t.Fatalf("Failed to unmarshal file content: %v", err)
	}

	_, err = NewFileWriterOrStdout(FormatJSON, "/nonexistent/path/file.json")
	if err == nil || !strings.Contains(err.Error(), "failed to create output file") {
		t.Errorf("Expected helpful error, got: %v", err)
	}
}

func TestFormat_IsUnknown(t *testing.T) {
	tests := []struct {
		format Format
		want   bool
	}{
		{FormatJSON, false},
		{FormatYAML, false},
		{FormatTable, false},
		{Format("xml"), true},
		{Format(""), true},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			if got := tt.format.IsUnknown(); got != tt.want {
				t.Errorf("Format(%q).IsUnknown() = %v, want %v", tt.format, got, tt.want)
			}
		})
	}
}
