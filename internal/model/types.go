// Package model defines the typed records for SimDB simulations and the
// transformation from raw API responses into them.
package model

import (
	"strings"

	"github.com/Simon-McIntosh/nucleai/internal/imasuri"
	"github.com/Simon-McIntosh/nucleai/internal/metadata"
)

// Status is the validation status of a simulation.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusPending Status = "pending"
)

// NormalizeStatus maps any raw status string onto the closed enum. Anything
// unrecognized, including the empty string, becomes pending so that partial
// upstream data never fails validation.
func NormalizeStatus(raw string) Status {
	switch Status(raw) {
	case StatusPassed, StatusFailed, StatusPending:
		return Status(raw)
	default:
		return StatusPending
	}
}

// CodeInfo identifies the simulation code that produced a record.
type CodeInfo struct {
	Name    string  `json:"name"`
	Version *string `json:"version,omitempty"`
}

// DataObject types as reported by SimDB.
const (
	DataTypeFile = "FILE"
	DataTypeIMAS = "IMAS"
)

// DataObject is a single input or output resource attached to a simulation.
// Data objects are owned by the simulation that lists them.
type DataObject struct {
	UUID     string  `json:"uuid"`
	URI      string  `json:"uri"`
	Type     string  `json:"type"`
	Checksum *string `json:"checksum,omitempty"`
	Datetime *string `json:"datetime,omitempty"`
}

// SimulationSummary is the record returned by list and query operations.
type SimulationSummary struct {
	UUID        string               `json:"uuid"`
	Alias       string               `json:"alias"`
	Machine     string               `json:"machine"`
	Code        CodeInfo             `json:"code"`
	Description string               `json:"description"`
	Status      Status               `json:"status"`
	AuthorEmail *string              `json:"author_email,omitempty"`
	IDSTypes    []string             `json:"ids_types,omitempty"`
	Metadata    *metadata.Simulation `json:"metadata,omitempty"`
}

// Simulation is the full record returned by a single-simulation fetch. The
// IMASURI field is derived from the outputs list by Finalize.
type Simulation struct {
	SimulationSummary

	Inputs  []DataObject `json:"inputs,omitempty"`
	Outputs []DataObject `json:"outputs,omitempty"`

	// IMASURI is the primary data-access URI: the URI of the first IMAS
	// output, or "" when the simulation has no IMAS outputs.
	IMASURI string `json:"imas_uri,omitempty"`
}

// Finalize computes the derived fields of a fully validated record. It is a
// separate, explicit step after construction so the derivation stays visible
// and independently testable.
func (s *Simulation) Finalize() {
	s.IMASURI = ""
	for _, out := range s.Outputs {
		if out.Type == DataTypeIMAS {
			s.IMASURI = out.URI
			return
		}
	}
}

// IMASDataCollection groups the parsed IMAS URIs of a simulation.
type IMASDataCollection struct {
	Inputs  []*imasuri.URI
	Outputs []*imasuri.URI
}

// URI returns the preferred access URI: the first output, falling back to
// the first input, or nil when the collection is empty.
func (c IMASDataCollection) URI() *imasuri.URI {
	if len(c.Outputs) > 0 {
		return c.Outputs[0]
	}
	if len(c.Inputs) > 0 {
		return c.Inputs[0]
	}
	return nil
}

// HasData reports whether any IMAS data is attached.
func (c IMASDataCollection) HasData() bool {
	return len(c.Inputs) > 0 || len(c.Outputs) > 0
}

// IMAS collects the IMAS-typed data objects of the simulation as parsed
// URIs. FILE-typed objects are excluded.
func (s *Simulation) IMAS() IMASDataCollection {
	var c IMASDataCollection
	for _, in := range s.Inputs {
		if in.Type == DataTypeIMAS {
			c.Inputs = append(c.Inputs, imasuri.Parse(in.URI))
		}
	}
	for _, out := range s.Outputs {
		if out.Type == DataTypeIMAS {
			c.Outputs = append(c.Outputs, imasuri.Parse(out.URI))
		}
	}
	return c
}

// SearchResult is a semantic search hit with a similarity score in [0, 1].
type SearchResult struct {
	ID         string         `json:"id"`
	Content    string         `json:"content"`
	Similarity float64        `json:"similarity"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// Operator is a SimDB query comparison operator.
type Operator string

const (
	OpEq  Operator = "eq" // exact match (default)
	OpIn  Operator = "in" // case-insensitive substring
	OpGt  Operator = "gt"
	OpGe  Operator = "ge"
	OpLt  Operator = "lt"
	OpLe  Operator = "le"
	OpAgt Operator = "agt" // array element comparisons
	OpAge Operator = "age"
	OpAlt Operator = "alt"
	OpAle Operator = "ale"
)

var knownOperators = map[Operator]bool{
	OpEq: true, OpIn: true, OpGt: true, OpGe: true, OpLt: true, OpLe: true,
	OpAgt: true, OpAge: true, OpAlt: true, OpAle: true,
}

// QueryConstraint filters a SimDB query on one metadata field.
type QueryConstraint struct {
	Field    string
	Operator Operator
	Value    string
}

// String renders the constraint in SimDB's field=op:value wire form.
func (q QueryConstraint) String() string {
	op := q.Operator
	if op == "" {
		op = OpEq
	}
	return q.Field + "=" + string(op) + ":" + q.Value
}

// ConstraintsFromMap converts the convenience map form into typed
// constraints. Values may carry an operator prefix ("in:METIS"); anything
// without a recognized prefix is an exact match.
func ConstraintsFromMap(m map[string]string) []QueryConstraint {
	out := make([]QueryConstraint, 0, len(m))
	for field, value := range m {
		c := QueryConstraint{Field: field, Operator: OpEq, Value: value}
		if i := strings.Index(value, ":"); i > 0 {
			if op := Operator(value[:i]); knownOperators[op] {
				c.Operator = op
				c.Value = value[i+1:]
			}
		}
		out = append(out, c)
	}
	return out
}
