package input

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Object is a JSON object that keeps its members in document order.
type Object struct {
	keys   []string
	values map[string]interface{}
}

func NewObject() *Object {
	return &Object{values: map[string]interface{}{}}
}

// Set adds or replaces a member. A replaced member keeps its position.
func (o *Object) Set(key string, value interface{}) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

func (o *Object) Get(key string) (interface{}, bool) {
	v, ok := o.values[key]
	return v, ok
}

func (o *Object) Keys() []string {
	return o.keys
}

func (o *Object) Len() int {
	return len(o.keys)
}

func (o *Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(o.values[key])
		if err != nil {
			return nil, errors.Wrapf(err, "marshaling JSON member '%s'", key)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// parseJSON decodes s keeping object member order. Numbers are kept as
// json.Number so they are re-encoded exactly as written.
func parseJSON(s string) (interface{}, error) {
	var raw json.RawMessage
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil, err
	}
	return fromResult(gjson.ParseBytes(raw)), nil
}

func fromResult(r gjson.Result) interface{} {
	switch r.Type {
	case gjson.False:
		return false
	case gjson.True:
		return true
	case gjson.Number:
		return json.Number(r.Raw)
	case gjson.String:
		return r.Str
	case gjson.JSON:
		if r.IsArray() {
			arr := []interface{}{}
			r.ForEach(func(_, v gjson.Result) bool {
				arr = append(arr, fromResult(v))
				return true
			})
			return arr
		}
		obj := NewObject()
		r.ForEach(func(k, v gjson.Result) bool {
			obj.Set(k.Str, fromResult(v))
			return true
		})
		return obj
	default:
		return nil
	}
}
