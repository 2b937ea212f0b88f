package typedjson

import (
	"encoding"
	"fmt"
	"reflect"
)

type kind int

const (
	kindBool kind = iota
	kindInt
	kindUint
	kindFloat
	kindString
	kindAny
	kindText
	kindOptional
	kindList
	kindDict
	kindRecord
)

var tyTextUnmarshaler = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// descriptor is the normalized form of a declared type used for matching
// during decode. It is derived once per type and cached on the Decoder.
type descriptor struct {
	kind kind
	ty   reflect.Type

	// inner type for optionals, element type for lists, value type for dicts
	elem *descriptor

	// record fields in declaration order
	fields []recordField
}

type recordField struct {
	field
	desc *descriptor
}

// String renders the descriptor for error messages, e.g. "Optional[str]" or
// "List[int]". Records render as their type name.
func (d *descriptor) String() string {
	switch d.kind {
	case kindBool:
		return "bool"
	case kindInt:
		return "int"
	case kindUint:
		return "uint"
	case kindFloat:
		return "float"
	case kindString:
		return "str"
	case kindAny:
		return "any"
	case kindOptional:
		return "Optional[" + d.elem.String() + "]"
	case kindList:
		return "List[" + d.elem.String() + "]"
	case kindDict:
		return "Dict[str, " + d.elem.String() + "]"
	default:
		if name := d.ty.Name(); name != "" {
			return name
		}
		return d.ty.String()
	}
}

func (d *Decoder) descriptorOf(building map[reflect.Type]*descriptor, ty reflect.Type) (*descriptor, error) {
	if cached, ok := d.descriptors.Load(ty); ok {
		return cached.(*descriptor), nil
	}

	if desc, ok := building[ty]; ok {
		// the type references itself. hand out the node under construction,
		// it is fully populated before any decode runs.
		return desc, nil
	}

	desc := &descriptor{ty: ty}
	building[ty] = desc

	if err := d.populate(building, desc); err != nil {
		delete(building, ty)
		return nil, err
	}

	d.descriptors.Store(ty, desc)

	return desc, nil
}

func (d *Decoder) populate(building map[reflect.Type]*descriptor, desc *descriptor) error {
	ty := desc.ty

	if reflect.PointerTo(ty).Implements(tyTextUnmarshaler) {
		desc.kind = kindText
		return nil
	}

	switch ty.Kind() {
	case reflect.Bool:
		desc.kind = kindBool

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		desc.kind = kindInt

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		desc.kind = kindUint

	case reflect.Float32, reflect.Float64:
		desc.kind = kindFloat

	case reflect.String:
		desc.kind = kindString

	case reflect.Interface:
		if ty.NumMethod() != 0 {
			return NotSupportedError{Type: ty}
		}

		desc.kind = kindAny

	case reflect.Pointer:
		elem, err := d.descriptorOf(building, ty.Elem())
		if err != nil {
			return err
		}

		if elem.kind == kindOptional {
			// an optional of an optional has no json representation
			return NotSupportedError{Type: ty}
		}

		desc.kind = kindOptional
		desc.elem = elem

	case reflect.Slice, reflect.Array:
		elem, err := d.descriptorOf(building, ty.Elem())
		if err != nil {
			return err
		}

		desc.kind = kindList
		desc.elem = elem

	case reflect.Map:
		if ty.Key().Kind() != reflect.String {
			// json object keys are always strings
			return NotSupportedError{Type: ty}
		}

		elem, err := d.descriptorOf(building, ty.Elem())
		if err != nil {
			return err
		}

		desc.kind = kindDict
		desc.elem = elem

	case reflect.Struct:
		fields := structFields(ty, d.tag())

		for _, fi := range fields {
			fieldDesc, err := d.descriptorOf(building, fi.Type)
			if err != nil {
				return fmt.Errorf("descriptor for field %q: %w", fi.Name, err)
			}

			desc.fields = append(desc.fields, recordField{field: fi, desc: fieldDesc})
		}

		desc.kind = kindRecord

	default:
		return NotSupportedError{Type: ty}
	}

	return nil
}
