package typedjson

import (
	"bytes"
	"encoding"
	"errors"
	"fmt"
	"io"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/goccy/go-json"
	"golang.org/x/exp/maps"
)

// Unmarshal parses the given JSON text and decodes it into the value pointed
// to by target, checking the document against the targets type. Malformed
// text is reported as a [SyntaxError], a structural mismatch as a
// [DecodeError] and an unsupported target type as a [NotSupportedError].
func Unmarshal(data []byte, target any) error {
	return dec.Unmarshal(data, target)
}

func UnmarshalNew[T any](data []byte) (T, error) {
	return UnmarshalNewWith[T](&dec, data)
}

func UnmarshalNewWith[T any](dec *Decoder, data []byte) (T, error) {
	var target T
	err := dec.Unmarshal(data, &target)
	return target, err
}

// Read decodes an already parsed JSON document into the value pointed to by
// target. The document must use the value model produced by [Unmarshal]s
// parser (and by [Write]): nil, bool, json.Number, string, []any and
// map[string]any or [Object].
func Read(doc any, target any) error {
	return dec.Read(doc, target)
}

func ReadNew[T any](doc any) (T, error) {
	var target T
	err := dec.Read(doc, &target)
	return target, err
}

// The default Decoder instance.
var dec Decoder

// Decoder decodes JSON documents onto typed Go values. The zero value is
// ready to use and equivalent to NewDecoder().
type Decoder struct {
	// the struct tag that is used
	structTag string

	// Cache for descriptors, indexed by reflect.Type
	descriptors sync.Map
}

func NewDecoder() *Decoder {
	return &Decoder{
		structTag: "json",
	}
}

func (d *Decoder) WithTag(structTag string) *Decoder {
	if d.structTag == structTag {
		return d
	}

	return &Decoder{
		structTag: structTag,
	}
}

func (d *Decoder) tag() string {
	if d.structTag == "" {
		return "json"
	}

	return d.structTag
}

func (d *Decoder) Unmarshal(data []byte, target any) error {
	doc, err := parseDocument(data)
	if err != nil {
		return err
	}

	return d.Read(doc, target)
}

func (d *Decoder) Read(doc any, target any) error {
	targetValue := reflect.ValueOf(target).Elem()

	desc, err := d.descriptorOf(map[reflect.Type]*descriptor{}, targetValue.Type())
	if err != nil {
		return err
	}

	return decodeValue(doc, desc, targetValue, ".")
}

// parseDocument converts JSON text into the value tree the decoder walks.
// Numbers are kept as json.Number so that int and float targets can be told
// apart without precision loss.
func parseDocument(data []byte) (any, error) {
	parser := json.NewDecoder(bytes.NewReader(data))
	parser.UseNumber()

	var doc any
	if err := parser.Decode(&doc); err != nil {
		return nil, &SyntaxError{Err: err}
	}

	// a second document makes the input malformed as a whole
	if err := parser.Decode(new(any)); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected trailing data")
		}

		return nil, &SyntaxError{Err: err}
	}

	return doc, nil
}

func decodeValue(doc any, desc *descriptor, target reflect.Value, loc string) error {
	switch desc.kind {
	case kindAny:
		if doc == nil {
			target.Set(reflect.Zero(desc.ty))
			return nil
		}

		target.Set(reflect.ValueOf(doc))
		return nil

	case kindOptional:
		if doc == nil {
			target.Set(reflect.Zero(desc.ty))
			return nil
		}

		boxed := reflect.New(desc.elem.ty)
		if err := decodeValue(doc, desc.elem, boxed.Elem(), loc); err != nil {
			var decodeErr *DecodeError
			if errors.As(err, &decodeErr) && decodeErr.mismatch && decodeErr.Loc == loc {
				// a mismatch on the optional itself reports the full type
				return typeError(doc, desc, loc)
			}

			return err
		}

		target.Set(boxed)
		return nil
	}

	if doc == nil {
		return typeError(doc, desc, loc)
	}

	switch desc.kind {
	case kindBool:
		boolValue, ok := doc.(bool)
		if !ok {
			return typeError(doc, desc, loc)
		}

		target.SetBool(boolValue)
		return nil

	case kindString:
		stringValue, ok := doc.(string)
		if !ok {
			return typeError(doc, desc, loc)
		}

		target.SetString(stringValue)
		return nil

	case kindInt:
		num, ok := doc.(json.Number)
		if !ok {
			return typeError(doc, desc, loc)
		}

		intValue, err := num.Int64()
		if err != nil {
			if isFloatLiteral(num) {
				// a float is never narrowed to an int
				return typeError(doc, desc, loc)
			}

			return &DecodeError{
				Msg: fmt.Sprintf("Value %s overflows %s", num, desc.ty),
				Loc: loc,
			}
		}

		if target.OverflowInt(intValue) {
			return &DecodeError{
				Msg: fmt.Sprintf("Value %s overflows %s", num, desc.ty),
				Loc: loc,
			}
		}

		target.SetInt(intValue)
		return nil

	case kindUint:
		num, ok := doc.(json.Number)
		if !ok {
			return typeError(doc, desc, loc)
		}

		uintValue, err := strconv.ParseUint(num.String(), 10, 64)
		if err != nil {
			if isFloatLiteral(num) {
				return typeError(doc, desc, loc)
			}

			return &DecodeError{
				Msg: fmt.Sprintf("Value %s is not a valid %s", num, desc.ty),
				Loc: loc,
			}
		}

		if target.OverflowUint(uintValue) {
			return &DecodeError{
				Msg: fmt.Sprintf("Value %s overflows %s", num, desc.ty),
				Loc: loc,
			}
		}

		target.SetUint(uintValue)
		return nil

	case kindFloat:
		num, ok := doc.(json.Number)
		if !ok {
			return typeError(doc, desc, loc)
		}

		// an int is widened to a float here
		floatValue, err := num.Float64()
		if err != nil {
			return &DecodeError{
				Msg: fmt.Sprintf("Value %s is not a valid %s", num, desc.ty),
				Loc: loc,
			}
		}

		if target.OverflowFloat(floatValue) {
			return &DecodeError{
				Msg: fmt.Sprintf("Value %s overflows %s", num, desc.ty),
				Loc: loc,
			}
		}

		target.SetFloat(floatValue)
		return nil

	case kindText:
		text, ok := doc.(string)
		if !ok {
			return typeError(doc, desc, loc)
		}

		m := target.Addr().Interface().(encoding.TextUnmarshaler)
		if err := m.UnmarshalText([]byte(text)); err != nil {
			return &DecodeError{
				Msg:   fmt.Sprintf("Invalid %s value %q", desc, text),
				Loc:   loc,
				Cause: err,
			}
		}

		return nil

	case kindList:
		return decodeList(doc, desc, target, loc)

	case kindDict:
		return decodeDict(doc, desc, target, loc)

	case kindRecord:
		return decodeRecord(doc, desc, target, loc)

	default:
		// descriptors never carry any other kind
		panic("unreachable")
	}
}

func decodeList(doc any, desc *descriptor, target reflect.Value, loc string) error {
	items, ok := doc.([]any)
	if !ok {
		return typeError(doc, desc, loc)
	}

	if desc.ty.Kind() == reflect.Array {
		// extra elements beyond the array length are ignored,
		// missing ones leave the zero value
		count := min(desc.ty.Len(), len(items))
		for idx := 0; idx < count; idx++ {
			if err := decodeValue(items[idx], desc.elem, target.Index(idx), childIndex(loc, idx)); err != nil {
				return err
			}
		}

		return nil
	}

	out := reflect.MakeSlice(desc.ty, len(items), len(items))

	for idx, item := range items {
		if err := decodeValue(item, desc.elem, out.Index(idx), childIndex(loc, idx)); err != nil {
			return err
		}
	}

	target.Set(out)
	return nil
}

func decodeDict(doc any, desc *descriptor, target reflect.Value, loc string) error {
	members, ok := objectEntries(doc)
	if !ok {
		return typeError(doc, desc, loc)
	}

	keyType := desc.ty.Key()
	out := reflect.MakeMapWithSize(desc.ty, len(members))

	for _, member := range members {
		value := reflect.New(desc.ty.Elem()).Elem()
		if err := decodeValue(member.Value, desc.elem, value, childKey(loc, member.Key)); err != nil {
			return err
		}

		out.SetMapIndex(reflect.ValueOf(member.Key).Convert(keyType), value)
	}

	target.Set(out)
	return nil
}

func decodeRecord(doc any, desc *descriptor, target reflect.Value, loc string) error {
	var lookup func(key string) (any, bool)

	switch obj := doc.(type) {
	case map[string]any:
		lookup = func(key string) (any, bool) {
			value, ok := obj[key]
			return value, ok
		}

	case Object:
		lookup = obj.Get

	default:
		return typeError(doc, desc, loc)
	}

	for _, fi := range desc.fields {
		value, present := lookup(fi.Name)
		if !present {
			if fi.desc.kind == kindOptional {
				// absent optional field, leave the nil pointer
				continue
			}

			return &DecodeError{
				Msg: "Missing field " + fi.Name,
				Loc: loc,
			}
		}

		fieldValue := target.FieldByIndex(fi.Index)
		if err := decodeValue(value, fi.desc, fieldValue, childKey(loc, fi.Name)); err != nil {
			return err
		}
	}

	return nil
}

// objectEntries returns the members of an object shaped document in a
// deterministic order: an [Object] keeps its member order, a plain map is
// iterated sorted by key.
func objectEntries(doc any) (Object, bool) {
	switch obj := doc.(type) {
	case Object:
		return obj, true

	case map[string]any:
		keys := maps.Keys(obj)
		slices.Sort(keys)

		members := make(Object, 0, len(keys))
		for _, key := range keys {
			members = append(members, Member{Key: key, Value: obj[key]})
		}

		return members, true

	default:
		return nil, false
	}
}

func typeError(doc any, desc *descriptor, loc string) error {
	return &DecodeError{
		Msg:      fmt.Sprintf("Found %s, but was expecting %s", jsonKind(doc), desc),
		Loc:      loc,
		mismatch: true,
	}
}

// jsonKind names the runtime kind of a document node for error messages.
func jsonKind(doc any) string {
	switch value := doc.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case string:
		return "str"
	case json.Number:
		if isFloatLiteral(value) {
			return "float"
		}
		return "int"
	case []any:
		return "list"
	case map[string]any, Object:
		return "object"
	default:
		// not part of the value model, e.g. a raw int in a hand built tree
		return fmt.Sprintf("unsupported node %T", doc)
	}
}

// isFloatLiteral reports whether a number literal carries a fraction or an
// exponent. "5.2" and "1e3" are floats, "5" is an int no matter its size.
func isFloatLiteral(num json.Number) bool {
	return strings.ContainsAny(num.String(), ".eE")
}

// childKey extends a location by an object key, e.g. "." and "name" become
// ".name", ".[2]" and "name" become ".[2].name".
func childKey(loc, key string) string {
	if strings.HasSuffix(loc, ".") {
		return loc + key
	}

	return loc + "." + key
}

// childIndex extends a location by an array index, e.g. "." and 2 become ".[2]".
func childIndex(loc string, idx int) string {
	return loc + "[" + strconv.Itoa(idx) + "]"
}
