package models

import (
	"bytes"
	"encoding/json"
	"errors"

	"gopkg.in/yaml.v3"
)

// Field is a single cell of a parsed row.
type Field struct {
	Key   string
	Value string
}

// Row is one parsed record. Fields keep the on-disk column order.
type Row struct {
	fields []Field
}

func NewRow(fields ...Field) Row {
	return Row{fields: fields}
}

// Set replaces the value for key, or appends it when the key is new.
func (r *Row) Set(key, value string) {
	for i := range r.fields {
		if r.fields[i].Key == key {
			r.fields[i].Value = value
			return
		}
	}
	r.fields = append(r.fields, Field{Key: key, Value: value})
}

// Get returns the value for key. Missing keys read as empty.
func (r Row) Get(key string) (string, bool) {
	for _, f := range r.fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

func (r Row) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.Key
	}
	return keys
}

func (r Row) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

func (r Row) Len() int { return len(r.fields) }

// MarshalJSON writes the row as an object whose keys follow column order.
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts an object of scalar values. Key order of the input is kept.
func (r *Row) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("row: expected JSON object")
	}
	r.fields = r.fields[:0]
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := kt.(string)
		var raw any
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		r.fields = append(r.fields, Field{Key: key, Value: scalarString(raw)})
	}
	_, err = dec.Token()
	return err
}

// MarshalYAML emits a mapping node so column order survives YAML output.
func (r Row) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, f := range r.fields {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Value},
		)
	}
	return node, nil
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}

// Dataset is the fully parsed upload. Columns is the union of row keys in first-seen order.
type Dataset struct {
	Columns []string
	Rows    []Row
}

func (d *Dataset) TotalRows() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}
