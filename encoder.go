package typedjson

import (
	"encoding"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Marshal converts a value into JSON text. The conversion is purely
// structural: it is driven by the runtime shape of the value, not by a
// declared type. Values that have no JSON representation are reported as a
// [NotSupportedError].
func Marshal(v any) ([]byte, error) {
	return enc.Marshal(v)
}

// MarshalIndent is like [Marshal] but indents the output.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return enc.MarshalIndent(v, prefix, indent)
}

// Write converts a value into a JSON document tree using the same value model
// the decoder consumes: nil, bool, json.Number, string, []any and [Object].
// Record fields and map keys keep their order in the resulting [Object].
//
// As with [json.Marshal], a MarshalText method declared on a pointer receiver
// is only used when the value is reachable through a pointer; such a value
// passed directly encodes as a record instead.
func Write(v any) (any, error) {
	return enc.Write(v)
}

// The default Encoder instance.
var enc Encoder

// Encoder converts typed Go values into JSON documents. The zero value is
// ready to use and equivalent to NewEncoder().
type Encoder struct {
	// the struct tag that is used
	structTag string
}

func NewEncoder() *Encoder {
	return &Encoder{
		structTag: "json",
	}
}

func (e *Encoder) WithTag(structTag string) *Encoder {
	if e.structTag == structTag {
		return e
	}

	return &Encoder{
		structTag: structTag,
	}
}

func (e *Encoder) tag() string {
	if e.structTag == "" {
		return "json"
	}

	return e.structTag
}

func (e *Encoder) Marshal(v any) ([]byte, error) {
	doc, err := e.Write(v)
	if err != nil {
		return nil, err
	}

	return json.Marshal(doc)
}

func (e *Encoder) MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	doc, err := e.Write(v)
	if err != nil {
		return nil, err
	}

	return json.MarshalIndent(doc, prefix, indent)
}

func (e *Encoder) Write(v any) (any, error) {
	return e.writeValue(reflect.ValueOf(v), ".")
}

var tyTextMarshaler = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
var tyNumber = reflect.TypeOf(json.Number(""))

func (e *Encoder) writeValue(value reflect.Value, loc string) (any, error) {
	if !value.IsValid() {
		return nil, nil
	}

	if value.Type() == tyNumber {
		// already part of the value model, keep the number form
		return value.Interface().(json.Number), nil
	}

	if value.Kind() != reflect.Interface && value.Type().Implements(tyTextMarshaler) {
		if value.Kind() == reflect.Pointer && value.IsNil() {
			return nil, nil
		}

		text, err := value.Interface().(encoding.TextMarshaler).MarshalText()
		if err != nil {
			return nil, fmt.Errorf("marshal %q at location %s: %w", value.Type(), loc, err)
		}

		return string(text), nil
	}

	switch value.Kind() {
	case reflect.Bool:
		return value.Bool(), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return json.Number(strconv.FormatInt(value.Int(), 10)), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return json.Number(strconv.FormatUint(value.Uint(), 10)), nil

	case reflect.Float32:
		return json.Number(strconv.FormatFloat(value.Float(), 'g', -1, 32)), nil

	case reflect.Float64:
		return json.Number(strconv.FormatFloat(value.Float(), 'g', -1, 64)), nil

	case reflect.String:
		return value.String(), nil

	case reflect.Pointer, reflect.Interface:
		if value.IsNil() {
			return nil, nil
		}

		return e.writeValue(value.Elem(), loc)

	case reflect.Slice, reflect.Array:
		items := make([]any, value.Len())

		for idx := range items {
			item, err := e.writeValue(value.Index(idx), childIndex(loc, idx))
			if err != nil {
				return nil, err
			}

			items[idx] = item
		}

		return items, nil

	case reflect.Map:
		return e.writeMap(value, loc)

	case reflect.Struct:
		return e.writeRecord(value, loc)

	default:
		return nil, fmt.Errorf("at location %s: %w", loc, NotSupportedError{Type: value.Type()})
	}
}

func (e *Encoder) writeMap(value reflect.Value, loc string) (any, error) {
	if value.Type().Key().Kind() != reflect.String {
		// json object keys are always strings
		return nil, fmt.Errorf("at location %s: %w", loc, NotSupportedError{Type: value.Type()})
	}

	keys := value.MapKeys()
	slices.SortFunc(keys, func(a, b reflect.Value) int {
		return strings.Compare(a.String(), b.String())
	})

	members := make(Object, 0, len(keys))

	for _, key := range keys {
		member, err := e.writeValue(value.MapIndex(key), childKey(loc, key.String()))
		if err != nil {
			return nil, err
		}

		members = append(members, Member{Key: key.String(), Value: member})
	}

	return members, nil
}

func (e *Encoder) writeRecord(value reflect.Value, loc string) (any, error) {
	fields := structFields(value.Type(), e.tag())
	members := make(Object, 0, len(fields))

	for _, fi := range fields {
		member, err := e.writeValue(value.FieldByIndex(fi.Index), childKey(loc, fi.Name))
		if err != nil {
			return nil, err
		}

		members = append(members, Member{Key: fi.Name, Value: member})
	}

	return members, nil
}
