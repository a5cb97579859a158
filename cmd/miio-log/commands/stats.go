package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/escoand/python-miio/pkg/log"
)

// Stats holds aggregate statistics about a trace file.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[log.Category]int
	Controllers      map[string]*ControllerStats
	Setters          map[string]*SetterStats
	Errors           int
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// ControllerStats holds statistics for a single controller.
type ControllerStats struct {
	FirstSeen   time.Time
	LastSeen    time.Time
	Events      int
	Fetches     int
	StatusTypes map[string]int
	FetchTime   time.Duration
}

// SetterStats holds statistics for a single setter name.
type SetterStats struct {
	Calls    int
	Failures int
	Total    time.Duration
}

// CollectStats reads every event of the trace file.
func CollectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByCategory: make(map[log.Category]int),
		Controllers:      make(map[string]*ControllerStats),
		Setters:          make(map[string]*SetterStats),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}
	return stats, nil
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByCategory[event.Category]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	ctrl, ok := s.Controllers[event.ControllerID]
	if !ok {
		ctrl = &ControllerStats{
			FirstSeen:   event.Timestamp,
			LastSeen:    event.Timestamp,
			StatusTypes: make(map[string]int),
		}
		s.Controllers[event.ControllerID] = ctrl
	}
	ctrl.Events++
	if event.Timestamp.After(ctrl.LastSeen) {
		ctrl.LastSeen = event.Timestamp
	}

	switch {
	case event.Fetch != nil:
		ctrl.Fetches++
		ctrl.FetchTime += event.Fetch.Duration
		if event.StatusType != "" {
			ctrl.StatusTypes[event.StatusType]++
		}
	case event.Setter != nil:
		st := s.setter(event.Setter.SetterName)
		st.Calls++
		st.Total += event.Setter.Duration
	case event.Error != nil:
		s.Errors++
		if event.Error.SetterName != "" {
			st := s.setter(event.Error.SetterName)
			st.Calls++
			st.Failures++
		}
	}
}

func (s *Stats) setter(name string) *SetterStats {
	st, ok := s.Setters[name]
	if !ok {
		st = &SetterStats{}
		s.Setters[name] = st
	}
	return st
}

// RunStats analyzes the trace file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Device Trace Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryFetch, log.CategorySetter, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Controllers: %d\n", len(stats.Controllers))
	if len(stats.Controllers) > 0 {
		type ctrlInfo struct {
			id    string
			stats *ControllerStats
		}
		ctrls := make([]ctrlInfo, 0, len(stats.Controllers))
		for id, cs := range stats.Controllers {
			ctrls = append(ctrls, ctrlInfo{id, cs})
		}
		sort.Slice(ctrls, func(i, j int) bool {
			return ctrls[i].stats.FirstSeen.Before(ctrls[j].stats.FirstSeen)
		})

		fmt.Fprintln(w)
		for _, c := range ctrls {
			duration := c.stats.LastSeen.Sub(c.stats.FirstSeen).Round(time.Millisecond)
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n", shortenID(c.id), c.stats.Events, duration)
			if c.stats.Fetches > 0 {
				avg := c.stats.FetchTime / time.Duration(c.stats.Fetches)
				fmt.Fprintf(w, "           Fetches: %d (avg %s)\n", c.stats.Fetches, formatDuration(avg))
			}
			types := make([]string, 0, len(c.stats.StatusTypes))
			for name := range c.stats.StatusTypes {
				types = append(types, name)
			}
			sort.Strings(types)
			for _, name := range types {
				fmt.Fprintf(w, "           Status: %s (%d)\n", name, c.stats.StatusTypes[name])
			}
		}
	}

	if len(stats.Setters) > 0 {
		names := make([]string, 0, len(stats.Setters))
		for name := range stats.Setters {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintln(w)
		fmt.Fprintln(w, "Setters:")
		for _, name := range names {
			st := stats.Setters[name]
			fmt.Fprintf(w, "  %-16s %d calls, %d failed", name+":", st.Calls, st.Failures)
			if ok := st.Calls - st.Failures; ok > 0 {
				fmt.Fprintf(w, " (avg %s)", formatDuration(st.Total/time.Duration(ok)))
			}
			fmt.Fprintln(w)
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
