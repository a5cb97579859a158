// Package commands implements the miio-log CLI commands.
package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/escoand/python-miio/pkg/log"
)

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	Category   *log.Category
	StatusType string
	Setter     string
}

func (f ViewFilter) matches(event log.Event) bool {
	if f.Category != nil && event.Category != *f.Category {
		return false
	}
	if f.StatusType != "" && event.StatusType != f.StatusType {
		return false
	}
	if f.Setter != "" && setterName(event) != f.Setter {
		return false
	}
	return true
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [ctrl:id] CATEGORY label
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	ctrlID := shortenID(event.ControllerID)

	fmt.Fprintf(w, "%s [ctrl:%s] %-6s %s\n", ts, ctrlID, event.Category.String(), eventLabel(event))

	switch {
	case event.Fetch != nil:
		formatFetchDetails(w, event.Fetch)
	case event.Setter != nil:
		formatSetterDetails(w, event.Setter)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

func eventLabel(event log.Event) string {
	switch {
	case event.Fetch != nil:
		if event.StatusType != "" {
			return event.StatusType
		}
		return "Status"
	case event.Setter != nil:
		return event.Setter.SetterName
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

func setterName(event log.Event) string {
	switch {
	case event.Setter != nil:
		return event.Setter.SetterName
	case event.Error != nil:
		return event.Error.SetterName
	}
	return ""
}

// shortenID returns the first 8 characters of a controller ID.
func shortenID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatFetchDetails(w io.Writer, fetch *log.FetchEvent) {
	fmt.Fprintf(w, "  Duration: %s\n", formatDuration(fetch.Duration))
	fmt.Fprintf(w, "  Properties: %d\n", fetch.Properties)
	if fetch.Payload != nil {
		payloadJSON, err := json.Marshal(fetch.Payload)
		if err == nil {
			fmt.Fprintf(w, "  Payload: %s\n", string(payloadJSON))
		}
	}
}

func formatSetterDetails(w io.Writer, s *log.SetterEvent) {
	fmt.Fprintf(w, "  Value: %v\n", s.Value)
	fmt.Fprintf(w, "  Duration: %s\n", formatDuration(s.Duration))
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Operation: %s\n", err.Operation)
	if err.SetterName != "" {
		fmt.Fprintf(w, "  Setter: %s\n", err.SetterName)
	}
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "fetch":
		return log.CategoryFetch, nil
	case "setter":
		return log.CategorySetter, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be fetch, setter, or error)", s)
	}
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if !filter.matches(event) {
			continue
		}
		formatEvent(output, event)
	}

	return nil
}
