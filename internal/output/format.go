// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"supatodo/internal/service"
)

// Output formats accepted by the list command.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// EmptyMessage is printed by text output when there are no tasks.
const EmptyMessage = "No tasks yet."

// ValidFormat reports whether name is a known output format.
func ValidFormat(name string) bool {
	switch name {
	case FormatText, FormatJSON, FormatYAML:
		return true
	}
	return false
}

// FormatTask formats a task line.
// Format: "{ID:>4}  [x] {CONTENT}\n" (4-wide right-aligned id, two spaces, checkbox, content)
func FormatTask(w io.Writer, task service.Task) {
	box := "[ ]"
	if task.Done {
		box = "[x]"
	}
	fmt.Fprintf(w, "%4d  %s %s\n", task.ID, box, normalizeContent(task.Content))
}

// FormatTasks writes tasks in the given format. Text output lists one task
// per line in the order given; json and yaml emit the records as-is.
func FormatTasks(w io.Writer, format string, tasks []service.Task) error {
	if tasks == nil {
		tasks = []service.Task{}
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(tasks)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(tasks); err != nil {
			return err
		}
		return enc.Close()
	case FormatText, "":
		for _, t := range tasks {
			FormatTask(w, t)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// normalizeContent normalizes task content for display.
// - Empty or whitespace-only content becomes "(empty)"
// - Newlines are replaced with spaces
func normalizeContent(content string) string {
	content = strings.ReplaceAll(content, "\r", " ")
	content = strings.ReplaceAll(content, "\n", " ")

	if strings.TrimSpace(content) == "" {
		return "(empty)"
	}
	return content
}
