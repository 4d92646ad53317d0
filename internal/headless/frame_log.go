package headless

import (
	"fmt"
	"strings"
)

// FrameLogEntry is one recorded event of a headless session.
type FrameLogEntry struct {
	Frame    int
	Pool     string  // "map", "creature_information", "text", or "--"
	Category string  // pool, draw, paint, light, rebuild, geometry, walk, camera
	Key      string  // event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[F=042] map                  paint    opacity          0.50
func (e FrameLogEntry) String() string {
	return fmt.Sprintf("[F=%03d] %-20s %-8s %-16s %s",
		e.Frame, e.Pool, e.Category, e.Key, e.Value)
}

// FrameLog collects structured events from the recorder backend and the
// session driving it. Verbose mode also keeps every draw command.
type FrameLog struct {
	entries []FrameLogEntry
	verbose bool
}

func NewFrameLog(verbose bool) *FrameLog {
	return &FrameLog{verbose: verbose}
}

// Add records a new entry.
func (fl *FrameLog) Add(frame int, pool, category, key, value string, numVal float64) {
	fl.entries = append(fl.entries, FrameLogEntry{
		Frame:    frame,
		Pool:     pool,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (fl *FrameLog) AddVerbose(frame int, pool, category, key, value string, numVal float64) {
	if !fl.verbose {
		return
	}
	fl.Add(frame, pool, category, key, value, numVal)
}

func (fl *FrameLog) Verbose() bool { return fl.verbose }

func (fl *FrameLog) Entries() []FrameLogEntry {
	return fl.entries
}

// Filter returns entries matching category and key. An empty string matches
// anything.
func (fl *FrameLog) Filter(category, key string) []FrameLogEntry {
	var out []FrameLogEntry
	for _, e := range fl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterPool returns the entries recorded against one pool.
func (fl *FrameLog) FilterPool(pool string) []FrameLogEntry {
	var out []FrameLogEntry
	for _, e := range fl.entries {
		if e.Pool == pool {
			out = append(out, e)
		}
	}
	return out
}

// FilterFrameRange returns entries within [from, to] inclusive.
func (fl *FrameLog) FilterFrameRange(from, to int) []FrameLogEntry {
	var out []FrameLogEntry
	for _, e := range fl.entries {
		if e.Frame >= from && e.Frame <= to {
			out = append(out, e)
		}
	}
	return out
}

func (fl *FrameLog) CountCategory(category, key string) int {
	return len(fl.Filter(category, key))
}

// LastOf returns the most recent entry matching category and key.
func (fl *FrameLog) LastOf(category, key string) (FrameLogEntry, bool) {
	entries := fl.Filter(category, key)
	if len(entries) == 0 {
		return FrameLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry reports whether an entry matches category, key and a value
// substring.
func (fl *FrameLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range fl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the whole log, one entry per line.
func (fl *FrameLog) Format() string {
	return format(fl.entries)
}

func (fl *FrameLog) FormatRange(from, to int) string {
	return format(fl.FilterFrameRange(from, to))
}

func format(entries []FrameLogEntry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
