package action

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"
)

// argSchema pairs the schema declared to the model with its compiled
// validator. Both come from the same reflected document.
type argSchema struct {
	declared json.RawMessage
	compiled *validator.Schema
	// numeric names the top-level integer and number properties.
	numeric map[string]bool
}

func reflectArgs[A any](name Name) (*argSchema, error) {
	r := &jsonschema.Reflector{
		DoNotReference:            true,
		ExpandedStruct:            true,
		AllowAdditionalProperties: true,
	}
	var zero A
	doc, err := json.Marshal(r.Reflect(&zero))
	if err != nil {
		return nil, fmt.Errorf("action: %s: encode schema: %w", name, err)
	}

	url := fmt.Sprintf("https://bakerybot.local/actions/%s.schema.json", name)
	c := validator.NewCompiler()
	c.Draft = validator.Draft2020
	if err := c.AddResource(url, bytes.NewReader(doc)); err != nil {
		return nil, fmt.Errorf("action: %s: schema load failed: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("action: %s: schema compile failed: %w", name, err)
	}

	declared, err := modelFacing(doc)
	if err != nil {
		return nil, fmt.Errorf("action: %s: %w", name, err)
	}
	numeric, err := numericProperties(doc)
	if err != nil {
		return nil, fmt.Errorf("action: %s: %w", name, err)
	}
	return &argSchema{declared: declared, compiled: compiled, numeric: numeric}, nil
}

func numericProperties(doc []byte) (map[string]bool, error) {
	var d struct {
		Properties map[string]struct {
			Type string `json:"type"`
		} `json:"properties"`
	}
	if err := json.Unmarshal(doc, &d); err != nil {
		return nil, err
	}
	out := map[string]bool{}
	for name, p := range d.Properties {
		if p.Type == "integer" || p.Type == "number" {
			out[name] = true
		}
	}
	return out, nil
}

// modelFacing strips document-level keywords that function-calling APIs
// reject and guarantees an object with a properties map.
func modelFacing(doc []byte) (json.RawMessage, error) {
	var m map[string]any
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, err
	}
	delete(m, "$schema")
	delete(m, "$id")
	m["type"] = "object"
	if _, ok := m["properties"]; !ok {
		m["properties"] = map[string]any{}
	}
	return json.Marshal(m)
}

// decode validates raw against the schema and unmarshals it into A. Missing
// or null arguments are treated as an empty object. Numeric properties
// accept numeric strings ("2") and integral floats (2.0) for integers, as
// small local models often emit them.
func decode[A any](s *argSchema, raw json.RawMessage) (A, error) {
	var args A
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return args, fmt.Errorf("arguments are not valid JSON: %w", err)
	}
	if obj, ok := generic.(map[string]any); ok && len(s.numeric) > 0 {
		for name := range s.numeric {
			if v, ok := obj[name]; ok {
				obj[name] = coerceNumber(v)
			}
		}
		normalized, err := json.Marshal(obj)
		if err != nil {
			return args, err
		}
		raw = normalized
	}
	if err := s.compiled.Validate(generic); err != nil {
		return args, err
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return args, err
	}
	return args, nil
}

// coerceNumber returns v as a canonical json.Number when it is a number or a
// numeric string, so 2.0 becomes 2. Anything else is returned unchanged for
// the validator to reject.
func coerceNumber(v any) any {
	var text string
	switch n := v.(type) {
	case json.Number:
		text = n.String()
	case string:
		text = strings.TrimSpace(n)
	default:
		return v
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return v
	}
	return json.Number(d.String())
}
