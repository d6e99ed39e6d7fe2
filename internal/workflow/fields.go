package workflow

import (
	"fmt"
	"sort"
	"strings"
)

// Schema maps user-visible labels to field names and declares which fields a
// complete submission must carry. Labels keep their trailing colon, exactly
// as shown in the prompt text.
type Schema struct {
	Labels   map[string]string
	Required []string
}

// ParseError describes rejected free-text input. It is recovered locally by
// re-prompting the user in the same workflow state.
type ParseError struct {
	Reason  string
	Segment string
	Missing []string
}

func (e *ParseError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("workflow parse: missing required fields: %s", strings.Join(e.Missing, ", "))
	}
	if e.Segment != "" {
		return fmt.Sprintf("workflow parse: %s: %q", e.Reason, e.Segment)
	}
	return "workflow parse: " + e.Reason
}

// Code implements the error-code hook used by handler summary logging.
func (e *ParseError) Code() string { return "parse_error" }

// ParseFields parses "Label: value" pairs separated by semicolons or
// newlines. allowEmpty relaxes the parse for partial updates: required fields
// may be absent and values may be empty. The result is either a complete
// field map or a *ParseError; ambiguous input is never guessed at.
func ParseFields(input string, schema Schema, allowEmpty bool) (map[string]string, error) {
	out := make(map[string]string)

	for _, segment := range splitSegments(input) {
		label, field, ok := matchLabel(segment, schema.Labels)
		if !ok {
			return nil, &ParseError{Reason: "unrecognized segment", Segment: segment}
		}
		value := strings.TrimSpace(segment[len(label):])
		if _, dup := out[field]; dup {
			return nil, &ParseError{Reason: "duplicate field", Segment: segment}
		}
		if value == "" && !allowEmpty {
			return nil, &ParseError{Reason: "empty value", Segment: segment}
		}
		out[field] = value
	}

	if len(out) == 0 {
		return nil, &ParseError{Reason: "no fields found"}
	}

	if !allowEmpty {
		var missing []string
		for _, field := range schema.Required {
			if _, ok := out[field]; !ok {
				missing = append(missing, field)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			return nil, &ParseError{Reason: "missing required fields", Missing: missing}
		}
	}

	return out, nil
}

// Prompt renders the expected input format for a schema, one label per line.
func (s Schema) Prompt() string {
	labels := make([]string, 0, len(s.Labels))
	for label := range s.Labels {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return strings.Join(labels, "\n")
}

func splitSegments(input string) []string {
	raw := strings.FieldsFunc(input, func(r rune) bool {
		return r == ';' || r == '\n'
	})
	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// matchLabel finds the schema label prefixing the segment. The longest label
// wins so "Title:" never swallows input meant for "Title ua:".
func matchLabel(segment string, labels map[string]string) (label, field string, ok bool) {
	for candidate, name := range labels {
		if len(segment) < len(candidate) {
			continue
		}
		if !strings.EqualFold(segment[:len(candidate)], candidate) {
			continue
		}
		if len(candidate) > len(label) {
			label, field, ok = candidate, name, true
		}
	}
	return label, field, ok
}
