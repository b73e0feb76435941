// Package normalize maps source-specific labeled attributes into
// record.ServiceData fields. It performs no I/O.
package normalize

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"netmigration/widcollector/internal/record"
)

// Mapping binds a source label to a canonical field.
// record.FieldNone keeps the label in the raw data only.
type Mapping struct {
	Label string
	Field record.Field
}

// Ignore builds a Mapping for a label that has no canonical home
func Ignore(label string) Mapping {
	return Mapping{Label: label, Field: record.FieldNone}
}

// TimeLayouts are the timestamp formats accepted for time fields
var TimeLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

// Normalizer converts raw label/value pairs into a ServiceData
type Normalizer struct {
	dictionary map[string]record.Field
}

// New validates a literal mapping table and builds a Normalizer
func New(mappings []Mapping) (*Normalizer, error) {
	dictionary := make(map[string]record.Field, len(mappings))
	for i, m := range mappings {
		label := NormalizeLabel(m.Label)
		if label == "" {
			return nil, fmt.Errorf("mapping %d: empty label", i)
		}
		if !m.Field.Valid() {
			return nil, fmt.Errorf("mapping %q: invalid field %d", m.Label, int(m.Field))
		}
		if _, exists := dictionary[label]; exists {
			return nil, fmt.Errorf("mapping %q: duplicate label", m.Label)
		}
		dictionary[label] = m.Field
	}
	return &Normalizer{dictionary: dictionary}, nil
}

// MustNew is New for package-level literal tables
func MustNew(mappings []Mapping) *Normalizer {
	n, err := New(mappings)
	if err != nil {
		panic(err)
	}
	return n
}

// NormalizeLabel trims surrounding whitespace and upper-cases a label
func NormalizeLabel(label string) string {
	return strings.ToUpper(strings.TrimSpace(label))
}

// Lookup returns the field a label maps to. ok is false for unknown labels.
func (n *Normalizer) Lookup(label string) (record.Field, bool) {
	f, ok := n.dictionary[NormalizeLabel(label)]
	return f, ok
}

// Normalize builds a record from raw source pairs in a single pass.
// Values that cannot be coerced leave their field absent.
func (n *Normalizer) Normalize(serviceID, source string, raw map[string]string, collectedAt time.Time) (record.ServiceData, error) {
	data, err := record.New(serviceID, source, collectedAt)
	if err != nil {
		return record.ServiceData{}, err
	}

	// Sorted so labels that collide after normalization resolve the same way every time.
	for _, label := range slices.Sorted(maps.Keys(raw)) {
		value := raw[label]
		data.RawData[label] = value

		field, ok := n.Lookup(label)
		if !ok || field == record.FieldNone || data.Has(field) {
			continue
		}
		assign(&data, field, value)
	}

	return data, nil
}

func assign(data *record.ServiceData, field record.Field, value string) {
	switch field.Kind() {
	case record.KindNumber:
		if v, ok := ParseDigits(value); ok {
			_ = data.SetNumber(field, v)
		}
	case record.KindTime:
		if v, ok := ParseTime(value); ok {
			_ = data.SetTime(field, v)
		}
	default:
		if v := strings.TrimSpace(value); v != "" {
			_ = data.SetText(field, v)
		}
	}
}

// Unmapped returns the sorted raw labels the dictionary does not know about
func (n *Normalizer) Unmapped(raw map[string]string) []string {
	var out []string
	for label := range raw {
		if _, ok := n.Lookup(label); !ok {
			out = append(out, label)
		}
	}
	slices.Sort(out)
	return out
}

// Mappings returns the dictionary sorted by label
func (n *Normalizer) Mappings() []Mapping {
	out := make([]Mapping, 0, len(n.dictionary))
	for label, field := range n.dictionary {
		out = append(out, Mapping{Label: label, Field: field})
	}
	slices.SortFunc(out, func(a, b Mapping) int {
		return strings.Compare(a.Label, b.Label)
	})
	return out
}

// ParseDigits keeps only the ASCII digits of s and parses them.
// "1000 kbps" → 1000, "VLAN-25" → 25; no digits or overflow → false.
func ParseDigits(s string) (int, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.Atoi(b.String())
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseTime tries each of TimeLayouts in order
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range TimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
