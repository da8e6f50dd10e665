package lineage

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/pqdeps/internal/dag"
)

// StepRecord is the analysis of one step. The serialized field names are a
// compatibility contract.
type StepRecord struct {
	Name            string   `json:"-" yaml:"-"`
	References      []string `json:"references" yaml:"references"`
	ExternalQueries []string `json:"external_queries" yaml:"external_queries"`
	Code            string   `json:"code" yaml:"code"`
	UsedForOutput   bool     `json:"used_for_output" yaml:"used_for_output"`
}

// QueryResult is the analysis of one document. It serializes as an object
// from step name to StepRecord in declaration order.
type QueryResult struct {
	Name   string        // document name
	Output string        // identifier after `in`
	Steps  []*StepRecord // declaration order
}

// Step returns the record for name, or nil.
func (q *QueryResult) Step(name string) *StepRecord {
	for _, s := range q.Steps {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// StepNames returns the step names in declaration order.
func (q *QueryResult) StepNames() []string {
	names := make([]string, len(q.Steps))
	for i, s := range q.Steps {
		names[i] = s.Name
	}
	return names
}

// Graph returns the step dependency graph. Node data is the *StepRecord and
// edges point from a referenced step to the step referencing it.
func (q *QueryResult) Graph() *dag.Graph {
	edges := make(map[string][]string, len(q.Steps))
	for _, s := range q.Steps {
		edges[s.Name] = s.References
	}
	g := stepGraph(q.StepNames(), edges)
	for _, s := range q.Steps {
		g.AddNode(s.Name, s)
	}
	return g
}

// MarshalJSON implements json.Marshaler.
func (q *QueryResult) MarshalJSON() ([]byte, error) {
	entries := make([]entry, len(q.Steps))
	for i, s := range q.Steps {
		entries[i] = entry{key: s.Name, value: s}
	}
	return marshalObject(entries)
}

// MarshalYAML implements yaml.Marshaler.
func (q *QueryResult) MarshalYAML() (any, error) {
	entries := make([]entry, len(q.Steps))
	for i, s := range q.Steps {
		entries[i] = entry{key: s.Name, value: s}
	}
	return mappingNode(entries)
}

// BatchResult is the analysis of a combined source. Queries keep split order
// and serialize as an object from document name to QueryResult. Failures are
// reported separately and are not part of the serialized form.
type BatchResult struct {
	Queries  []*QueryResult
	Failures []*DocumentFailure
}

// Query returns the result for the named document, or nil.
func (b *BatchResult) Query(name string) *QueryResult {
	for _, q := range b.Queries {
		if q.Name == name {
			return q
		}
	}
	return nil
}

// Failure returns the failure for the named document, or nil.
func (b *BatchResult) Failure(name string) *DocumentFailure {
	for _, f := range b.Failures {
		if f.Document == name {
			return f
		}
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (b *BatchResult) MarshalJSON() ([]byte, error) {
	entries := make([]entry, len(b.Queries))
	for i, q := range b.Queries {
		entries[i] = entry{key: q.Name, value: q}
	}
	return marshalObject(entries)
}

// MarshalYAML implements yaml.Marshaler.
func (b *BatchResult) MarshalYAML() (any, error) {
	entries := make([]entry, len(b.Queries))
	for i, q := range b.Queries {
		entries[i] = entry{key: q.Name, value: q}
	}
	return mappingNode(entries)
}

type entry struct {
	key   string
	value any
}

// marshalObject writes entries as a JSON object preserving their order.
func marshalObject(entries []entry) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// mappingNode builds a YAML mapping preserving entry order.
func mappingNode(entries []entry) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range entries {
		value := &yaml.Node{}
		if err := value.Encode(e.value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.key},
			value,
		)
	}
	return node, nil
}
