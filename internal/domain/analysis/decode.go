package analysis

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Any syntactically valid JSON decodes into a Result without error. A value
// of the wrong type is converted when it can be (a list joined into text, a
// single string into a one-item list, a numeric string into a count) and
// dropped otherwise.

type fields map[string]json.RawMessage

// object returns the members of b when b is a JSON object.
func object(b []byte) (fields, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || b[0] != '{' {
		return nil, false
	}
	var f fields
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, false
	}
	return f, true
}

// raw returns the first key present with a non-null value.
func (f fields) raw(keys ...string) json.RawMessage {
	for _, k := range keys {
		if v, ok := f[k]; ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return v
		}
	}
	return nil
}

// list reads the first key that yields a non-empty list. An empty list stays
// empty rather than nil so it encodes back as [].
func (f fields) list(keys ...string) []string {
	var first []string
	for _, k := range keys {
		l := textList(f[k])
		if len(l) > 0 {
			return l
		}
		if first == nil {
			first = l
		}
	}
	return first
}

func (f fields) text(keys ...string) string {
	for _, k := range keys {
		if s := text(f[k]); s != "" {
			return s
		}
	}
	return ""
}

func (f fields) count(key string) Count {
	var c Count
	_ = c.UnmarshalJSON(f[key])
	return c
}

func decodeAny(b []byte) any {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

func textList(b []byte) []string {
	switch v := decodeAny(b).(type) {
	case nil:
		return nil
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s := stringify(e); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		if s := stringify(v); s != "" {
			return []string{s}
		}
		return nil
	}
}

func text(b []byte) string { return stringify(decodeAny(b)) }

func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, e := range v {
			if s := stringify(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := stringify(v[k]); s != "" {
				parts = append(parts, k+": "+s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

// UnmarshalJSON never fails on valid JSON. Anything other than an object
// decodes as the empty Result. "Theme Detection", the key older saved lists
// used, is read when "Themes" is empty.
func (r *Result) UnmarshalJSON(b []byte) error {
	*r = Result{}
	f, ok := object(b)
	if !ok {
		return nil
	}
	if raw := f.raw("Categorization"); raw != nil {
		if cf, ok := object(raw); ok {
			r.Categorization = cf.categorization()
		}
	}
	r.Themes = f.list("Themes", "Theme Detection")
	if raw := f.raw("Patterns", "Pattern Recognition"); raw != nil {
		if pf, ok := object(raw); ok {
			r.Patterns = pf.patterns()
		}
	}
	if raw := f.raw("FrequencyAnalysis", "Frequency Analysis"); raw != nil {
		if ff, ok := object(raw); ok {
			r.FrequencyAnalysis = ff.frequency()
		}
	}
	r.Insights = f.list("Insights")
	return nil
}

// UnmarshalJSON accepts the display spellings ("PersonalNotes", "Timestamp metadata")
// next to the prompt schema names.
func (c *Categorization) UnmarshalJSON(b []byte) error {
	*c = Categorization{}
	if f, ok := object(b); ok {
		*c = *f.categorization()
	}
	return nil
}

func (p *Patterns) UnmarshalJSON(b []byte) error {
	*p = Patterns{}
	if f, ok := object(b); ok {
		*p = *f.patterns()
	}
	return nil
}

func (a *FrequencyAnalysis) UnmarshalJSON(b []byte) error {
	*a = FrequencyAnalysis{}
	if f, ok := object(b); ok {
		*a = *f.frequency()
	}
	return nil
}

func (f fields) categorization() *Categorization {
	return &Categorization{
		Links:             f.list("Links"),
		Quotes:            f.list("Quotes"),
		PersonalNotes:     f.list("Personal-notes", "PersonalNotes"),
		Recommendations:   f.list("Recommendations"),
		TimestampMetadata: f.list("Timestamp-metadata", "Timestamp metadata"),
	}
}

func (f fields) patterns() *Patterns {
	return &Patterns{
		FrequentContributors: f.list("FrequentContributors", "Frequent Contributors"),
		TypicalFlow:          f.text("TypicalFlow", "Typical Flow"),
	}
}

func (f fields) frequency() *FrequencyAnalysis {
	return &FrequencyAnalysis{
		TotalLinks:            f.count("TotalLinks"),
		TotalQuotes:           f.count("TotalQuotes"),
		TotalRecommendations:  f.count("TotalRecommendations"),
		MostActiveParticipant: f.text("MostActiveParticipant", "MostActiveParticipants"),
	}
}

// UnmarshalJSON reads numbers and numeric strings ("3"). Anything else, such
// as "N/A" or a list, reads as 0.
func (c *Count) UnmarshalJSON(b []byte) error {
	*c = 0
	var s string
	switch v := decodeAny(b).(type) {
	case json.Number:
		s = v.String()
	case string:
		s = strings.TrimSpace(v)
	default:
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		*c = Count(f)
	}
	return nil
}
