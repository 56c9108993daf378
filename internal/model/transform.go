package model

import (
	"encoding/json"
	"strings"

	"github.com/Simon-McIntosh/nucleai/internal/errs"
	"github.com/Simon-McIntosh/nucleai/internal/metadata"
)

// The SimDB REST API returns a simulation as
//
//	{"uuid": {...}, "alias": "...", "metadata": [{"element": k, "value": v}, ...]}
//
// with optional top-level datetime, inputs and outputs. SummaryFromAPI and
// SimulationFromAPI transform that shape into typed records. A payload
// without a metadata array is taken to be already normalized (constructed
// directly, or a previous transformation output) and is validated as-is, so
// re-running the transformation is a no-op.

// SummaryFromAPI builds a SimulationSummary from a raw API response object.
// Only uuid and alias are mandatory; every other field degrades to a default
// or stays empty.
func SummaryFromAPI(data map[string]any) (*SimulationSummary, error) {
	flat, transformed := flattenMetadata(data)
	if !transformed {
		return summaryFromNormalized(data)
	}

	s := &SimulationSummary{}
	if err := setIdentity(s, data); err != nil {
		return nil, err
	}
	setWellKnown(s, flat)
	s.Metadata = metadata.FromFlat(flat)
	return s, nil
}

// SimulationFromAPI builds a full Simulation, preserving the inputs and
// outputs arrays and running the explicit finalization step that derives the
// primary IMAS URI.
func SimulationFromAPI(data map[string]any) (*Simulation, error) {
	summary, err := SummaryFromAPI(data)
	if err != nil {
		return nil, err
	}

	sim := &Simulation{SimulationSummary: *summary}
	sim.Inputs = dataObjectsFromAPI(data["inputs"])
	sim.Outputs = dataObjectsFromAPI(data["outputs"])
	sim.Finalize()
	return sim, nil
}

// flattenMetadata folds the metadata array into one key->value mapping,
// skipping entries with an empty element name or a nil value, and folds the
// top-level datetime in under its own key. The second return is false when
// the payload carries no metadata array and needs no transformation.
func flattenMetadata(data map[string]any) (map[string]any, bool) {
	raw, ok := data["metadata"]
	if !ok {
		return nil, false
	}
	items, ok := raw.([]any)
	if !ok {
		// A metadata object (not array) is already-normalized output.
		return nil, false
	}

	flat := make(map[string]any, len(items)+1)
	for _, it := range items {
		entry, ok := it.(map[string]any)
		if !ok {
			continue
		}
		element, _ := entry["element"].(string)
		value := entry["value"]
		if element == "" || value == nil {
			continue
		}
		flat[element] = value
	}
	if dt, ok := data["datetime"]; ok {
		flat["datetime"] = dt
	}
	return flat, true
}

// setIdentity fills the two mandatory fields, rejecting payloads where
// either is structurally absent.
func setIdentity(s *SimulationSummary, data map[string]any) error {
	s.UUID = DecodeUUID(data["uuid"])
	s.Alias, _ = data["alias"].(string)
	if s.UUID == "" || s.Alias == "" {
		return errs.Validationf(
			"check the payload has uuid and alias fields",
			"simulation payload missing identity (uuid=%q, alias=%q)", s.UUID, s.Alias)
	}
	return nil
}

// setWellKnown maps the well-known flat keys onto top-level record fields
// and applies defaults for whatever is missing.
func setWellKnown(s *SimulationSummary, flat map[string]any) {
	if v, ok := flat["machine"].(string); ok {
		s.Machine = v
	}
	if name, ok := flat["code.name"].(string); ok {
		s.Code = CodeInfo{Name: name}
		if ver, ok := flat["code.version"].(string); ok {
			s.Code.Version = &ver
		}
	}
	if v, ok := flat["description"].(string); ok {
		s.Description = v
	}
	status, _ := flat["status"].(string)
	s.Status = NormalizeStatus(status)
	if v, ok := flat["uploaded_by"].(string); ok {
		s.AuthorEmail = &v
	}
	if v, ok := flat["ids"]; ok {
		s.IDSTypes = ParseIDSTypes(v)
	}
}

// summaryFromNormalized validates an already-normalized payload: field names
// match the record's own JSON shape, with the original API aliases
// (uploaded_by, ids) still accepted.
func summaryFromNormalized(data map[string]any) (*SimulationSummary, error) {
	s := &SimulationSummary{}
	if err := setIdentity(s, data); err != nil {
		return nil, err
	}

	if v, ok := data["machine"].(string); ok {
		s.Machine = v
	}
	if code, ok := data["code"].(map[string]any); ok {
		name, _ := code["name"].(string)
		s.Code = CodeInfo{Name: name}
		if ver, ok := code["version"].(string); ok {
			s.Code.Version = &ver
		}
	}
	if v, ok := data["description"].(string); ok {
		s.Description = v
	}
	status, _ := data["status"].(string)
	s.Status = NormalizeStatus(status)
	for _, key := range []string{"author_email", "uploaded_by"} {
		if v, ok := data[key].(string); ok {
			s.AuthorEmail = &v
			break
		}
	}
	for _, key := range []string{"ids_types", "ids"} {
		if v, ok := data[key]; ok {
			s.IDSTypes = ParseIDSTypes(v)
			break
		}
	}
	if md, ok := data["metadata"].(map[string]any); ok {
		s.Metadata = metadataFromObject(md)
	}
	return s, nil
}

// metadataFromObject decodes an already-structured metadata object through
// its JSON form. Decoding failures degrade to nil.
func metadataFromObject(obj map[string]any) *metadata.Simulation {
	buf, err := json.Marshal(obj)
	if err != nil {
		return nil
	}
	var md metadata.Simulation
	if err := json.Unmarshal(buf, &md); err != nil {
		return nil
	}
	return &md
}

// dataObjectsFromAPI validates each element of an inputs/outputs array. A
// malformed element is skipped, not rejected.
func dataObjectsFromAPI(raw any) []DataObject {
	items, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]DataObject, 0, len(items))
	for _, it := range items {
		entry, ok := it.(map[string]any)
		if !ok {
			continue
		}
		obj := DataObject{UUID: DecodeUUID(entry["uuid"])}
		obj.URI, _ = entry["uri"].(string)
		obj.Type, _ = entry["type"].(string)
		if obj.UUID == "" || obj.URI == "" {
			continue
		}
		if v, ok := entry["checksum"].(string); ok {
			obj.Checksum = &v
		}
		if v, ok := entry["datetime"].(string); ok {
			obj.Datetime = &v
		}
		out = append(out, obj)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// DecodeUUID normalizes the API's uuid encoding: either a plain string or a
// {"_type": "uuid.UUID", "hex": "..."} wrapper.
func DecodeUUID(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case map[string]any:
		hex, _ := x["hex"].(string)
		return hex
	default:
		return ""
	}
}

// ParseIDSTypes normalizes the ids field: the API reports it as a string
// like "[core_profiles, equilibrium]". An empty list parses to nil, not an
// empty slice.
func ParseIDSTypes(v any) []string {
	switch x := v.(type) {
	case []string:
		if len(x) == 0 {
			return nil
		}
		return x
	case []any:
		out := make([]string, 0, len(x))
		for _, it := range x {
			if s, ok := it.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case string:
		trimmed := strings.TrimSuffix(strings.TrimPrefix(x, "["), "]")
		if strings.TrimSpace(trimmed) == "" {
			return nil
		}
		parts := strings.Split(trimmed, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return nil
	}
}
