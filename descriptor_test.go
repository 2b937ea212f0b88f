package typedjson

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescriptorRendering(t *testing.T) {
	type Commit struct {
		Sha1   string  `json:"sha1"`
		Parent *Commit `json:"parent"`
	}

	values := []struct {
		ty       reflect.Type
		rendered string
	}{
		{typeFor[bool](), "bool"},
		{typeFor[int32](), "int"},
		{typeFor[uint8](), "uint"},
		{typeFor[float64](), "float"},
		{typeFor[string](), "str"},
		{typeFor[any](), "any"},
		{typeFor[*string](), "Optional[str]"},
		{typeFor[[]*string](), "List[Optional[str]]"},
		{typeFor[map[string][]int](), "Dict[str, List[int]]"},
		{typeFor[Commit](), "Commit"},
	}

	d := NewDecoder()

	for _, value := range values {
		desc, err := d.descriptorOf(map[reflect.Type]*descriptor{}, value.ty)
		require.NoError(t, err)
		require.Equal(t, desc.String(), value.rendered)
	}
}

func TestDescriptorCache(t *testing.T) {
	d := NewDecoder()

	first, err := d.descriptorOf(map[reflect.Type]*descriptor{}, typeFor[[]string]())
	require.NoError(t, err)

	second, err := d.descriptorOf(map[reflect.Type]*descriptor{}, typeFor[[]string]())
	require.NoError(t, err)

	require.Same(t, first, second)
}

func TestDescriptorOfRecursiveType(t *testing.T) {
	type Commit struct {
		Sha1   string  `json:"sha1"`
		Parent *Commit `json:"parent"`
	}

	d := NewDecoder()

	desc, err := d.descriptorOf(map[reflect.Type]*descriptor{}, typeFor[Commit]())
	require.NoError(t, err)

	// the parent field points back at the commit descriptor itself
	require.Equal(t, desc.fields[1].desc.kind, kindOptional)
	require.Same(t, desc.fields[1].desc.elem, desc)
}

func TestDescriptorFieldError(t *testing.T) {
	type Struct struct {
		A chan int `json:"a"`
	}

	d := NewDecoder()

	_, err := d.descriptorOf(map[reflect.Type]*descriptor{}, typeFor[Struct]())

	var notSupportedError NotSupportedError
	require.ErrorAs(t, err, &notSupportedError)
	require.Equal(t, notSupportedError.Type, typeFor[chan int]())
	require.ErrorContains(t, err, `descriptor for field "a"`)
}

func TestDescriptorOfNonEmptyInterface(t *testing.T) {
	type Struct struct {
		A interface{ Foo() } `json:"a"`
	}

	d := NewDecoder()

	_, err := d.descriptorOf(map[reflect.Type]*descriptor{}, typeFor[Struct]())

	var notSupportedError NotSupportedError
	require.ErrorAs(t, err, &notSupportedError)
}
