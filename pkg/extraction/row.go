package extraction

import (
	"strconv"

	"gopkg.in/yaml.v3"
)

// Param is one named scalar result
type Param struct {
	Name  string
	Value float64
}

// Row is the ordered parameter set of one surface. Every registered
// parameter appears exactly once, in canonical order.
type Row []Param

// Value looks up a parameter by name
func (r Row) Value(name string) (float64, bool) {
	for _, p := range r {
		if p.Name == name {
			return p.Value, true
		}
	}
	return 0, false
}

// Names returns the parameter names in row order
func (r Row) Names() []string {
	names := make([]string, len(r))
	for i, p := range r {
		names[i] = p.Name
	}
	return names
}

// Map returns the row as an unordered name→value map
func (r Row) Map() map[string]float64 {
	m := make(map[string]float64, len(r))
	for _, p := range r {
		m[p.Name] = p.Value
	}
	return m
}

// Strings formats the values in row order, for table writers
func (r Row) Strings() []string {
	out := make([]string, len(r))
	for i, p := range r {
		out[i] = strconv.FormatFloat(p.Value, 'g', -1, 64)
	}
	return out
}

// MarshalYAML writes the row as a mapping that keeps the canonical order
func (r Row) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range r {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: p.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(p.Value, 'g', -1, 64)},
		)
	}
	return node, nil
}
