package batchtable

import (
	"bytes"

	"github.com/cockroachdb/errors"
	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
)

// JSON object keeping the insertion order of its keys
type Properties struct {
	names  []string
	values map[string]json.RawMessage
}

func NewProperties() *Properties {
	return &Properties{
		names:  make([]string, 0),
		values: make(map[string]json.RawMessage),
	}
}

// Encodes value as JSON and stores it under name. An existing name keeps its position.
func (p *Properties) Set(name string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "cannot encode property %s", name)
	}
	p.SetRaw(name, raw)
	return nil
}

func (p *Properties) SetRaw(name string, raw json.RawMessage) {
	if p.values == nil {
		p.values = make(map[string]json.RawMessage)
	}
	if _, ok := p.values[name]; !ok {
		p.names = append(p.names, name)
	}
	p.values[name] = raw
}

func (p *Properties) Get(name string) (json.RawMessage, bool) {
	raw, ok := p.values[name]
	return raw, ok
}

// Decodes the property stored under name into v
func (p *Properties) Decode(name string, v interface{}) error {
	raw, ok := p.values[name]
	if !ok {
		return errors.Newf("property %s not found", name)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrapf(err, "cannot decode property %s", name)
	}
	return nil
}

// Property names in insertion order
func (p *Properties) Names() []string {
	return append([]string(nil), p.names...)
}

func (p *Properties) Len() int {
	return len(p.names)
}

// Number of elements of an array property. False when the property is missing or not an array.
func (p *Properties) ArrayLength(name string) (int, bool) {
	raw, ok := p.values[name]
	if !ok {
		return 0, false
	}
	result := gjson.ParseBytes(raw)
	if !result.IsArray() {
		return 0, false
	}
	return len(result.Array()), true
}

// Compact JSON object with the keys in insertion order
func (p *Properties) MarshalJSON() ([]byte, error) {
	buf := &bytes.Buffer{}
	buf.WriteByte('{')
	for i, name := range p.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot encode property name %s", name)
		}
		buf.Write(key)
		buf.WriteByte(':')
		raw := p.values[name]
		if !gjson.ValidBytes(raw) {
			return nil, errors.Newf("property %s holds invalid JSON", name)
		}
		buf.Write(pretty.Ugly(raw))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Decodes a JSON object keeping the document order of its keys
func (p *Properties) UnmarshalJSON(b []byte) error {
	if !gjson.ValidBytes(b) {
		return errors.New("invalid JSON")
	}
	result := gjson.ParseBytes(b)
	if !result.IsObject() {
		return errors.Newf("expected a JSON object, got %s", result.Type)
	}

	p.names = make([]string, 0)
	p.values = make(map[string]json.RawMessage)
	result.ForEach(func(key, value gjson.Result) bool {
		p.SetRaw(key.String(), json.RawMessage(value.Raw))
		return true
	})
	return nil
}
