package typedjson

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Object is a JSON object that remembers the order of its members. The
// [Encoder] produces Object values for structs and maps so that record fields
// serialize in declaration order. The [Decoder] accepts an Object wherever a
// plain map[string]any is accepted.
type Object []Member

// Member is a single key value pair of an [Object].
type Member struct {
	Key   string
	Value any
}

var _ json.Marshaler = Object(nil)

// Get returns the value of the member with the given key.
func (o Object) Get(key string) (any, bool) {
	for _, member := range o {
		if member.Key == key {
			return member.Value, true
		}
	}

	return nil, false
}

// MarshalJSON writes the object with its members in order.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for idx, member := range o {
		if idx > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(member.Key)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')

		value, err := json.Marshal(member.Value)
		if err != nil {
			return nil, err
		}

		buf.Write(value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
