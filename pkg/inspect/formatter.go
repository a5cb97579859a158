// Package inspect renders a device's capabilities for humans and turns
// textual input into setter values.
package inspect

import (
	"fmt"
	"strings"
	"time"

	"github.com/escoand/python-miio/pkg/descriptor"
	"github.com/escoand/python-miio/pkg/status"
)

// Formatter formats inspection output.
type Formatter struct {
	// ShowMetadata includes kind, setter and range information
	ShowMetadata bool

	// ShowNames includes the human-readable descriptor name
	ShowNames bool

	// IndentWidth is the number of spaces per indent level
	IndentWidth int
}

// NewFormatter creates a new Formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{
		ShowMetadata: true,
		ShowNames:    true,
		IndentWidth:  2,
	}
}

// Indent returns the content with indentation.
func (f *Formatter) Indent(depth int, content string) string {
	width := f.IndentWidth
	if width == 0 {
		width = 2
	}
	indent := strings.Repeat(" ", depth*width)
	return indent + content
}

// FormatValue formats a value for display, including unit conversions.
func (f *Formatter) FormatValue(value any, unit string) string {
	switch v := value.(type) {
	case nil:
		return "None"

	case error:
		return "<" + status.ErrorName(v) + ">"

	case bool:
		if v {
			return "on"
		}
		return "off"

	case string:
		return withUnit(v, unit)

	case int:
		return f.formatIntWithUnit(int64(v), unit)

	case int64:
		return f.formatIntWithUnit(v, unit)

	case int32:
		return f.formatIntWithUnit(int64(v), unit)

	case uint8:
		return f.formatIntWithUnit(int64(v), unit)

	case uint16:
		return f.formatIntWithUnit(int64(v), unit)

	case uint32:
		return f.formatIntWithUnit(int64(v), unit)

	case float64:
		if v == float64(int64(v)) {
			return f.formatIntWithUnit(int64(v), unit)
		}
		return withUnit(fmt.Sprintf("%.2f", v), unit)

	case float32:
		return f.FormatValue(float64(v), unit)

	case []byte:
		return fmt.Sprintf("0x%x", v)

	default:
		return withUnit(status.FormatValue(v), unit)
	}
}

// formatIntWithUnit formats an integer with optional unit and human-readable conversion.
func (f *Formatter) formatIntWithUnit(v int64, unit string) string {
	if unit == "" {
		return fmt.Sprintf("%d", v)
	}

	base := fmt.Sprintf("%d %s", v, unit)

	// Add human-readable conversion for common units
	switch unit {
	case "s", "seconds":
		if v >= 60 || v <= -60 {
			return fmt.Sprintf("%s (%s)", base, time.Duration(v)*time.Second)
		}
	case "min", "minutes":
		if v >= 60 || v <= -60 {
			return fmt.Sprintf("%s (%s)", base, time.Duration(v)*time.Minute)
		}
	case "W":
		if v >= 1000 || v <= -1000 {
			return fmt.Sprintf("%s (%.1f kW)", base, float64(v)/1000.0)
		}
	case "Wh":
		if v >= 1000 || v <= -1000 {
			return fmt.Sprintf("%s (%.1f kWh)", base, float64(v)/1000.0)
		}
	}
	return base
}

func withUnit(s, unit string) string {
	if unit == "" {
		return s
	}
	return s + " " + unit
}

// FormatKind formats a descriptor kind for display.
func FormatKind(k descriptor.Kind) string {
	switch k {
	case descriptor.KindSensor:
		return "sensor"
	case descriptor.KindSwitch:
		return "switch"
	case descriptor.KindNumberSetting:
		return "number"
	case descriptor.KindEnumSetting:
		return "enum"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// FormatConstraint describes the accepted input of a writable descriptor.
func FormatConstraint(d descriptor.Descriptor) string {
	switch v := d.(type) {
	case *descriptor.Switch:
		return "on|off"
	case *descriptor.NumberSetting:
		return fmt.Sprintf("%v..%v step %v", v.Min(), v.Max(), v.Step())
	case *descriptor.EnumSetting:
		return strings.Join(v.Choices().Names(), "|")
	default:
		return ""
	}
}

// DescriptorRow represents a formatted descriptor for display.
type DescriptorRow struct {
	Property   string
	Name       string
	Value      string
	Kind       string
	Setter     string
	Constraint string
}

// FormatDescriptorTable formats a list of descriptors as a table.
func (f *Formatter) FormatDescriptorTable(rows []DescriptorRow) string {
	if len(rows) == 0 {
		return f.Indent(1, "(none)") + "\n"
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row.Property))
	}

	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(f.Indent(1, fmt.Sprintf("%-*s = %s", width, row.Property, row.Value)))
		if f.ShowNames && row.Name != "" {
			sb.WriteString(fmt.Sprintf("  %q", row.Name))
		}
		if f.ShowMetadata && row.Setter != "" {
			sb.WriteString(fmt.Sprintf(" (%s via %s", row.Kind, row.Setter))
			if row.Constraint != "" {
				sb.WriteString(": " + row.Constraint)
			}
			sb.WriteString(")")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
