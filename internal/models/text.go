package models

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// ID accepts both string and numeric identifiers; menu ids are numbers in older exports.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Text is a loosely typed text field: a plain string, a language-keyed object
// ({"it": "...", "en": "..."}), a list of strings, or a scalar. The raw JSON is kept
// so views re-encode exactly what was stored.
type Text struct {
	raw   json.RawMessage
	parts []string
}

func (t *Text) UnmarshalJSON(b []byte) error {
	t.raw = append(json.RawMessage(nil), b...)
	t.parts = nil

	trimmed := bytes.TrimSpace(b)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		if s != "" {
			t.parts = []string{s}
		}
		return nil
	}

	var byLang map[string]any
	if err := json.Unmarshal(trimmed, &byLang); err == nil {
		keys := make([]string, 0, len(byLang))
		for k := range byLang {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if v, ok := byLang[k].(string); ok && v != "" {
				t.parts = append(t.parts, v)
			}
		}
		return nil
	}

	var list []any
	if err := json.Unmarshal(trimmed, &list); err == nil {
		for _, v := range list {
			switch v := v.(type) {
			case string:
				t.parts = append(t.parts, v)
			case float64, bool:
				t.parts = append(t.parts, strings.Trim(mustMarshal(v), `"`))
			}
		}
		return nil
	}

	t.parts = []string{string(trimmed)}
	return nil
}

func (t Text) MarshalJSON() ([]byte, error) {
	if len(t.raw) == 0 {
		return []byte("null"), nil
	}
	return t.raw, nil
}

// Parts returns every textual value held, in a stable order.
func (t Text) Parts() []string { return t.parts }

func (t Text) String() string { return strings.Join(t.parts, " ") }

// IsZero reports whether the field holds no text at all.
func (t Text) IsZero() bool { return len(t.parts) == 0 }

func mustMarshal(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}
