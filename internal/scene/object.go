package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// object is a JSON object that remembers the order of its keys. Records keep
// every field they were loaded with, including the ones this package never
// interprets, so a save writes them back untouched and in the same order.
//
// Keys owned by a typed record field are kept as slots with a nil value; the
// record supplies the value at marshal time.
type object struct {
	keys   []string
	values map[string]json.RawMessage
}

func newObject() object {
	return object{values: make(map[string]json.RawMessage)}
}

func (o *object) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected object, got %s", describeJSON(data))
	}

	*o = newObject()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		o.put(key, compact.Bytes())
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// marshal writes the object, taking values for the given keys from typed
// instead of the stored raw values.
func (o object) marshal(typed map[string]any) ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		k, err := encodeJSON(key)
		if err != nil {
			return nil, err
		}
		b.Write(k)
		b.WriteByte(':')

		if v, ok := typed[key]; ok {
			raw, err := encodeJSON(v)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", key, err)
			}
			b.Write(raw)
			continue
		}
		raw := o.values[key]
		if raw == nil {
			raw = json.RawMessage("null")
		}
		b.Write(raw)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func (o object) get(key string) (json.RawMessage, bool) {
	raw, ok := o.values[key]
	return raw, ok
}

func (o object) has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// put stores raw under key, appending the key when it is new
func (o *object) put(key string, raw json.RawMessage) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = raw
}

// set encodes v and stores it under key
func (o *object) set(key string, v any) {
	raw, err := encodeJSON(v)
	if err != nil {
		// only called with literal values built in this package
		panic(fmt.Sprintf("scene: encode %q: %v", key, err))
	}
	o.put(key, raw)
}

// slot reserves key for a typed field and drops its raw value
func (o *object) slot(key string) {
	o.put(key, nil)
}

// encodeJSON is json.Marshal without HTML escaping, so "<", ">" and "&" in
// strings are written as they were read
func encodeJSON(v any) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(b.Bytes(), []byte("\n")), nil
}

func describeJSON(data []byte) string {
	data = bytes.TrimSpace(data)
	if len(data) > 16 {
		return string(data[:16]) + "..."
	}
	return string(data)
}
