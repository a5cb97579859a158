package inspect

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/escoand/python-miio/pkg/descriptor"
	"github.com/escoand/python-miio/pkg/device"
	"github.com/escoand/python-miio/pkg/status"
)

// Inspector errors.
var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrNotWritable      = errors.New("property is not writable")
	ErrInvalidValue     = errors.New("invalid value")
	ErrStepMismatch     = errors.New("value not aligned to step")
)

// Inspector provides inspection and mutation of a device through its
// controller.
type Inspector struct {
	controller *device.Controller
}

// NewInspector creates a new Inspector for the given controller.
func NewInspector(controller *device.Controller) *Inspector {
	return &Inspector{controller: controller}
}

// Controller returns the underlying controller.
func (i *Inspector) Controller() *device.Controller {
	return i.controller
}

// Report is everything known about a device after one status fetch.
type Report struct {
	StatusType string
	Summary    string
	Sensors    []DescriptorInfo
	Switches   []DescriptorInfo
	Settings   []DescriptorInfo
}

// DescriptorInfo pairs a descriptor with its current value.
type DescriptorInfo struct {
	Descriptor descriptor.Descriptor
	Value      any
	Err        error
}

// Inspect fetches the status once and collects every descriptor with its
// value. Properties that fail to evaluate carry the error instead.
func (i *Inspector) Inspect(ctx context.Context) (*Report, error) {
	caps, err := i.controller.Capabilities(ctx)
	if err != nil {
		return nil, err
	}

	snap := caps.Status
	return &Report{
		StatusType: snap.Type().Name(),
		Summary:    snap.String(),
		Sensors:    collect(snap, caps.Sensors),
		Switches:   collect(snap, caps.Switches),
		Settings:   collect(snap, caps.Settings),
	}, nil
}

func collect[D descriptor.Descriptor](snap *status.Snapshot, descs map[string]D) []DescriptorInfo {
	names := make([]string, 0, len(descs))
	for name := range descs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]DescriptorInfo, 0, len(names))
	for _, name := range names {
		v, err := snap.Get(name)
		out = append(out, DescriptorInfo{Descriptor: descs[name], Value: v, Err: err})
	}
	return out
}

// Describe returns the exportable form of every descriptor of the
// current status, sorted by property.
func (i *Inspector) Describe(ctx context.Context) ([]descriptor.Info, error) {
	caps, err := i.controller.Capabilities(ctx)
	if err != nil {
		return nil, err
	}
	return descriptor.Infos(caps.Status.Descriptors()), nil
}

// Write parses raw for the writable property and invokes its setter.
// It returns the value passed to the setter.
func (i *Inspector) Write(ctx context.Context, property, raw string) (any, error) {
	caps, err := i.controller.Capabilities(ctx)
	if err != nil {
		return nil, err
	}

	w, ok := caps.Writable(property)
	if !ok {
		if _, isSensor := caps.Sensors[property]; isSensor {
			return nil, fmt.Errorf("%w: %s", ErrNotWritable, property)
		}
		return nil, fmt.Errorf("%w: %s", ErrPropertyNotFound, property)
	}

	value, err := ParseValue(w, raw)
	if err != nil {
		return nil, err
	}
	if err := w.Set(ctx, value); err != nil {
		return nil, err
	}
	return value, nil
}

// ParseValue converts textual input into the value a writable descriptor
// expects: a bool for switches, a number within bounds and aligned to the
// step for number settings, and the choice value for enum settings.
func ParseValue(w descriptor.Writable, raw string) (any, error) {
	raw = strings.TrimSpace(raw)

	switch d := w.(type) {
	case *descriptor.Switch:
		return parseBool(raw)

	case *descriptor.NumberSetting:
		return parseNumber(d, raw)

	case *descriptor.EnumSetting:
		choices := d.Choices()
		if c, ok := choices.Lookup(raw); ok {
			return c.Value, nil
		}
		if n, err := strconv.Atoi(raw); err == nil {
			if c, ok := choices.Match(n); ok {
				return c.Value, nil
			}
		}
		return nil, fmt.Errorf("%w: %q (choices: %s)", descriptor.ErrUnknownChoice, raw, strings.Join(choices.Names(), ", "))

	default:
		return nil, fmt.Errorf("%w: %s", ErrNotWritable, w.Property())
	}
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %q is not on/off", ErrInvalidValue, raw)
	}
	return b, nil
}

func parseNumber(d *descriptor.NumberSetting, raw string) (any, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, raw)
	}
	if err := d.Validate(f); err != nil {
		return nil, err
	}

	steps := (f - d.Min()) / d.Step()
	if math.Abs(steps-math.Round(steps)) > 1e-9 {
		return nil, fmt.Errorf("%w: %v (step %v from %v)", ErrStepMismatch, f, d.Step(), d.Min())
	}

	if isWhole(d.Min()) && isWhole(d.Step()) && isWhole(f) {
		return int(f), nil
	}
	return f, nil
}

func isWhole(f float64) bool {
	return f == math.Trunc(f)
}

// FormatReport renders a report with one section per descriptor kind.
func (i *Inspector) FormatReport(r *Report, f *Formatter) string {
	var sb strings.Builder
	sb.WriteString(r.Summary)
	sb.WriteString("\n")

	for _, section := range []struct {
		title string
		infos []DescriptorInfo
	}{
		{"Sensors", r.Sensors},
		{"Switches", r.Switches},
		{"Settings", r.Settings},
	} {
		sb.WriteString(section.title + ":\n")
		sb.WriteString(f.FormatDescriptorTable(Rows(section.infos, f)))
	}
	return sb.String()
}

// Rows converts descriptor infos to table rows.
func Rows(infos []DescriptorInfo, f *Formatter) []DescriptorRow {
	rows := make([]DescriptorRow, 0, len(infos))
	for _, info := range infos {
		d := info.Descriptor
		row := DescriptorRow{
			Property:   d.Property(),
			Name:       d.Name(),
			Kind:       FormatKind(d.Kind()),
			Constraint: FormatConstraint(d),
		}
		if info.Err != nil {
			row.Value = f.FormatValue(info.Err, "")
		} else {
			row.Value = f.FormatValue(info.Value, d.Unit())
		}
		if w, ok := d.(descriptor.Writable); ok {
			row.Setter = w.SetterName()
		}
		rows = append(rows, row)
	}
	return rows
}
