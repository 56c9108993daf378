package metadata

import (
	"strconv"
	"strings"
)

// Simulation is the structured metadata container for a simulation record.
// A category is non-nil only when at least one of its fields was present in
// the source payload.
type Simulation struct {
	Datetime *string `json:"datetime,omitempty"`

	Composition      *Composition      `json:"composition,omitempty"`
	IDSProperties    *IDSProperties    `json:"ids_properties,omitempty"`
	GlobalQuantities *GlobalQuantities `json:"global_quantities,omitempty"`

	HeatingCurrentDrive *HeatingCurrentDrive `json:"heating_current_drive,omitempty"`
	Boundary            *Boundary            `json:"boundary,omitempty"`
	Code                *Code                `json:"code,omitempty"`

	// The configuration annotation is the one category the upstream schema
	// flattens to top-level scalars instead of a nested record.
	ConfigurationSource *string `json:"configuration_source,omitempty"`
	ConfigurationValue  *string `json:"configuration_value,omitempty"`
}

// categorySetter is implemented by every category record.
type categorySetter interface {
	set(field string, v any) bool
}

// rule routes flat keys into one category: keys matching prefix and suffix
// have both stripped and the remainder passed through transform to obtain
// the category field name. An empty transformed name drops the key.
type rule struct {
	prefix    string
	suffix    string
	transform func(trimmed string) string
	target    func(s *Simulation) categorySetter
}

// identity transforms keep the trimmed key; underscored replaces the
// remaining dots so nested paths become flat field names.
func underscored(trimmed string) string { return strings.ReplaceAll(trimmed, ".", "_") }

func firstSegment(trimmed string) string { return strings.SplitN(trimmed, ".", 2)[0] }

// rules is the declarative routing table: adding a metadata category is a
// data change here plus its record in categories.go.
var rules = []rule{
	{
		prefix:    "composition.",
		suffix:    ".value",
		transform: firstSegment,
		target: func(s *Simulation) categorySetter {
			if s.Composition == nil {
				s.Composition = &Composition{}
			}
			return s.Composition
		},
	},
	{
		prefix:    "ids_properties.",
		transform: underscored,
		target: func(s *Simulation) categorySetter {
			if s.IDSProperties == nil {
				s.IDSProperties = &IDSProperties{}
			}
			return s.IDSProperties
		},
	},
	{
		prefix:    "global_quantities.",
		suffix:    ".source",
		transform: func(trimmed string) string { return firstSegment(trimmed) + "_source" },
		target: func(s *Simulation) categorySetter {
			if s.GlobalQuantities == nil {
				s.GlobalQuantities = &GlobalQuantities{}
			}
			return s.GlobalQuantities
		},
	},
	{
		prefix:    "heating_current_drive.",
		transform: heatingField,
		target: func(s *Simulation) categorySetter {
			if s.HeatingCurrentDrive == nil {
				s.HeatingCurrentDrive = &HeatingCurrentDrive{}
			}
			return s.HeatingCurrentDrive
		},
	},
	{
		prefix:    "boundary.",
		suffix:    ".source",
		transform: func(trimmed string) string { return underscored(trimmed) + "_source" },
		target: func(s *Simulation) categorySetter {
			if s.Boundary == nil {
				s.Boundary = &Boundary{}
			}
			return s.Boundary
		},
	},
	{
		prefix:    "code.",
		transform: codeField,
		target: func(s *Simulation) categorySetter {
			if s.Code == nil {
				s.Code = &Code{}
			}
			return s.Code
		},
	},
}

// heatingField maps device-slot keys to flat field names:
// "nbi[0].angle.value" -> "nbi_0_angle", "nbi[0].source" -> "nbi_0_power_source".
// Keys without a bracketed slot index are dropped.
func heatingField(trimmed string) string {
	open := strings.Index(trimmed, "[")
	closeIdx := strings.Index(trimmed, "]")
	if open < 0 || closeIdx < open {
		return ""
	}
	device := trimmed[:open]
	index := trimmed[open+1 : closeIdx]
	rest := strings.TrimPrefix(trimmed[closeIdx+1:], ".")

	if strings.HasSuffix(rest, "source") && (rest == "source" || strings.HasSuffix(rest, ".source")) {
		return device + "_" + index + "_power_source"
	}
	field := strings.TrimSuffix(rest, ".value")
	field = firstSegment(field)
	if field == "" {
		return ""
	}
	return device + "_" + index + "_" + field
}

// codeField captures extended code keys; the two well-known ones belong to
// the top-level record, not here.
func codeField(trimmed string) string {
	if trimmed == "name" || trimmed == "version" {
		return ""
	}
	r := strings.NewReplacer("[", "_", "]", "", ".", "_")
	return r.Replace(trimmed)
}

// FromFlat builds a structured Simulation metadata record from a flat
// mapping of dotted/bracketed keys to scalar values. Extraction is
// best-effort: unknown keys and unparseable shapes are silently dropped, a
// category is left nil when none of its fields were found.
func FromFlat(flat map[string]any) *Simulation {
	out := &Simulation{}

	if v, ok := flat["datetime"]; ok {
		out.Datetime = toString(v)
	}

	for key, value := range flat {
		if value == nil {
			continue
		}
		for i := range rules {
			r := &rules[i]
			if !strings.HasPrefix(key, r.prefix) {
				continue
			}
			if r.suffix != "" && !strings.HasSuffix(key, r.suffix) {
				continue
			}
			trimmed := strings.TrimSuffix(strings.TrimPrefix(key, r.prefix), r.suffix)
			field := r.transform(trimmed)
			if field == "" {
				continue
			}
			r.target(out).set(field, value)
		}
	}

	// Empty categories collapse back to nil so absence stays observable.
	out.compact()

	if v, ok := flat["configuration.source"]; ok {
		out.ConfigurationSource = toString(v)
	}
	if v, ok := flat["configuration.value"]; ok {
		out.ConfigurationValue = toString(v)
	}

	return out
}

// compact resets categories that were allocated but never assigned, which
// happens when every matching key carried an unknown field name.
func (s *Simulation) compact() {
	if s.Composition != nil && *s.Composition == (Composition{}) {
		s.Composition = nil
	}
	if s.IDSProperties != nil && *s.IDSProperties == (IDSProperties{}) {
		s.IDSProperties = nil
	}
	if s.GlobalQuantities != nil && *s.GlobalQuantities == (GlobalQuantities{}) {
		s.GlobalQuantities = nil
	}
	if s.HeatingCurrentDrive != nil && *s.HeatingCurrentDrive == (HeatingCurrentDrive{}) {
		s.HeatingCurrentDrive = nil
	}
	if s.Boundary != nil && *s.Boundary == (Boundary{}) {
		s.Boundary = nil
	}
	if s.Code != nil && *s.Code == (Code{}) {
		s.Code = nil
	}
}

// ----- scalar coercion helpers -----
// SimDB metadata values arrive as JSON scalars; coercion is permissive and
// returns nil for anything that cannot be interpreted.

func toString(v any) *string {
	switch x := v.(type) {
	case string:
		return &x
	case float64:
		s := strconv.FormatFloat(x, 'g', -1, 64)
		return &s
	case int:
		s := strconv.Itoa(x)
		return &s
	case bool:
		s := strconv.FormatBool(x)
		return &s
	default:
		return nil
	}
}

func toFloat(v any) *float64 {
	switch x := v.(type) {
	case float64:
		return &x
	case int:
		f := float64(x)
		return &f
	case string:
		if f, err := strconv.ParseFloat(x, 64); err == nil {
			return &f
		}
		return nil
	default:
		return nil
	}
}

func toInt(v any) *int {
	switch x := v.(type) {
	case int:
		return &x
	case float64:
		n := int(x)
		if float64(n) == x {
			return &n
		}
		return nil
	case string:
		if n, err := strconv.Atoi(x); err == nil {
			return &n
		}
		return nil
	default:
		return nil
	}
}
