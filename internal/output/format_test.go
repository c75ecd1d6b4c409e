package output_test

import (
	"bytes"
	"testing"

	"supatodo/internal/output"
	"supatodo/internal/service"
	"supatodo/internal/testutil"
)

var sample = []service.Task{
	{ID: 12, Content: "Buy milk", Done: false},
	{ID: 3, Content: "Call\nmom", Done: true},
	{ID: 1, Content: "   ", Done: false},
}

func TestFormatTasks_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := output.FormatTasks(&buf, output.FormatText, sample); err != nil {
		t.Fatalf("FormatTasks: %v", err)
	}
	testutil.Golden(t, "tasks_text", buf.Bytes())
}

func TestFormatTasks_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := output.FormatTasks(&buf, output.FormatJSON, sample[:2]); err != nil {
		t.Fatalf("FormatTasks: %v", err)
	}
	testutil.Golden(t, "tasks_json", buf.Bytes())
}

func TestFormatTasks_YAML(t *testing.T) {
	var buf bytes.Buffer
	tasks := []service.Task{
		{ID: 12, Content: "Buy milk", Done: false},
		{ID: 3, Content: "Call mom", Done: true},
	}
	if err := output.FormatTasks(&buf, output.FormatYAML, tasks); err != nil {
		t.Fatalf("FormatTasks: %v", err)
	}
	testutil.Golden(t, "tasks_yaml", buf.Bytes())
}

func TestFormatTasks_EmptyJSONIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := output.FormatTasks(&buf, output.FormatJSON, nil); err != nil {
		t.Fatalf("FormatTasks: %v", err)
	}
	if buf.String() != "[]\n" {
		t.Errorf("expected %q, got %q", "[]\n", buf.String())
	}
}

func TestFormatTasks_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := output.FormatTasks(&buf, "xml", sample); err == nil {
		t.Error("expected error for unknown format")
	}
	if output.ValidFormat("xml") {
		t.Error("expected xml to be invalid")
	}
}
