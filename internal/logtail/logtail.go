package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line. A missing file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var all []string
		for scanner.Scan() {
			all = append(all, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return all, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one structured log line.
type Entry struct {
	Time      time.Time
	Level     string
	Component string
	Message   string
	Fields    []Field
	Raw       string
}

// Field is an extra key/value pair from a structured line.
type Field struct {
	Key   string
	Value string
}

var reserved = map[string]bool{"ts": true, "level": true, "msg": true, "component": true, "caller": true}

// Parse decodes a JSON log line. Lines that are not JSON objects come back
// with only Raw and Message set.
func Parse(line string) Entry {
	entry := Entry{Raw: line, Message: line}
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return entry
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return entry
	}

	entry.Message = stringField(obj, "msg")
	entry.Level = strings.ToUpper(stringField(obj, "level"))
	entry.Component = stringField(obj, "component")
	if ts := stringField(obj, "ts"); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			entry.Time = parsed
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		if !reserved[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		entry.Fields = append(entry.Fields, Field{Key: k, Value: fmt.Sprint(obj[k])})
	}
	return entry
}

// Format renders an entry as a single readable line.
func Format(e Entry) string {
	if e.Level == "" && e.Time.IsZero() {
		return e.Raw
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	if e.Level != "" {
		b.WriteString(e.Level)
		b.WriteByte(' ')
	}
	if e.Component != "" {
		b.WriteString("[" + e.Component + "] ")
	}
	b.WriteString(e.Message)
	for _, f := range e.Fields {
		b.WriteString(" " + f.Key + "=" + f.Value)
	}
	return b.String()
}

func stringField(obj map[string]any, key string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}
