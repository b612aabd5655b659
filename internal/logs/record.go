package logs

import (
	"encoding/json"
	"fmt"
	"strings"

	"motioncomic/internal/logging"
)

// Record is one decoded JSON log line.
type Record struct {
	Time      string
	Level     string
	Message   string
	Component string
	Stage     string
	EventType string
	Page      *int
	Panel     string
	Error     string
}

var levelRank = map[string]int{"debug": 0, "info": 1, "warn": 2, "error": 3}

// Parse decodes a JSON log line. Lines that are not JSON objects report
// false.
func Parse(line string) (Record, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Record{}, false
	}
	text := func(key string) string {
		s, _ := raw[key].(string)
		return s
	}
	rec := Record{
		Time:      text("ts"),
		Level:     strings.ToLower(text("level")),
		Message:   text("msg"),
		Component: text(logging.FieldComponent),
		Stage:     text(logging.FieldStage),
		EventType: text(logging.FieldEventType),
		Panel:     text(logging.FieldPanel),
		Error:     text("error"),
	}
	if page, ok := raw[logging.FieldPage].(float64); ok {
		p := int(page)
		rec.Page = &p
	}
	return rec, true
}

// AtLeast reports whether the record's level is minimum or more severe. An
// unknown minimum admits everything.
func (r Record) AtLeast(minimum string) bool {
	want, ok := levelRank[strings.ToLower(strings.TrimSpace(minimum))]
	if !ok {
		return true
	}
	return levelRank[r.Level] >= want
}

// String renders the record on one line.
func (r Record) String() string {
	var b strings.Builder
	if r.Time != "" {
		b.WriteString(r.Time)
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s ", strings.ToUpper(r.Level))
	if r.Stage != "" {
		fmt.Fprintf(&b, "[%s] ", r.Stage)
	}
	b.WriteString(r.Message)
	if r.Page != nil {
		fmt.Fprintf(&b, " page=%d", *r.Page)
	}
	if r.Panel != "" {
		fmt.Fprintf(&b, " panel=%s", r.Panel)
	}
	if r.EventType != "" {
		fmt.Fprintf(&b, " event=%s", r.EventType)
	}
	if r.Error != "" {
		fmt.Fprintf(&b, " error=%q", r.Error)
	}
	return b.String()
}
