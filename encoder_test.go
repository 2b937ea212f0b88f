package typedjson

import (
	"net"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

func TestWriteLeaves(t *testing.T) {
	values := []struct {
		in  any
		out any
	}{
		{nil, nil},
		{true, true},
		{false, false},
		{"text", "text"},
		{12, json.Number("12")},
		{int8(-3), json.Number("-3")},
		{uint64(18446744073709551615), json.Number("18446744073709551615")},
		{12.5, json.Number("12.5")},
		{float32(1.75), json.Number("1.75")},
	}

	for _, value := range values {
		doc, err := Write(value.in)
		require.NoError(t, err)
		require.Equal(t, doc, value.out)
	}
}

func TestWriteList(t *testing.T) {
	doc, err := Write([]any{"a", 12})
	require.NoError(t, err)
	require.Equal(t, doc, []any{"a", json.Number("12")})
}

func TestWriteListElementError(t *testing.T) {
	_, err := Write([]any{"a", make(chan int)})

	var notSupportedError NotSupportedError
	require.ErrorAs(t, err, &notSupportedError)
	require.Equal(t, notSupportedError.Type, typeFor[chan int]())
	require.ErrorContains(t, err, "at location .[1]")
}

func TestWriteMapSortsKeys(t *testing.T) {
	doc, err := Write(map[string]int{"b": 2, "a": 1, "c": 3})
	require.NoError(t, err)
	require.Equal(t, doc, Object{
		{Key: "a", Value: json.Number("1")},
		{Key: "b", Value: json.Number("2")},
		{Key: "c", Value: json.Number("3")},
	})
}

func TestWriteMapWithNonStringKeys(t *testing.T) {
	_, err := Write(map[string]any{"inner": map[int]int{1: 2}})

	var notSupportedError NotSupportedError
	require.ErrorAs(t, err, &notSupportedError)
	require.Equal(t, notSupportedError.Type, typeFor[map[int]int]())
	require.ErrorContains(t, err, "at location .inner")
}

func TestWriteStructKeepsDeclarationOrder(t *testing.T) {
	type Record struct {
		Name string  `json:"name"`
		Pos  int     `json:"pos"`
		Age  float64 `json:"age"`
	}

	data, err := Marshal(Record{Name: "you", Pos: 42, Age: 5.2})
	require.NoError(t, err)
	require.Equal(t, string(data), `{"name":"you","pos":42,"age":5.2}`)
}

func TestWriteNilPointer(t *testing.T) {
	type Record struct {
		Z *float64 `json:"z"`
	}

	data, err := Marshal(Record{})
	require.NoError(t, err)
	require.Equal(t, string(data), `{"z":null}`)
}

func TestWriteKeepsNumberNodes(t *testing.T) {
	doc, err := Write(json.Number("12"))
	require.NoError(t, err)
	require.Equal(t, doc, json.Number("12"))
}

func TestMarshalAnySubtree(t *testing.T) {
	// a decoded any subtree must serialize back as numbers, not strings
	value, err := UnmarshalNew[any]([]byte(`{"n":12,"f":5.2}`))
	require.NoError(t, err)

	data, err := Marshal(value)
	require.NoError(t, err)
	require.Equal(t, string(data), `{"f":5.2,"n":12}`)
}

func TestWritePointerDereferences(t *testing.T) {
	value := 42

	doc, err := Write(&value)
	require.NoError(t, err)
	require.Equal(t, doc, json.Number("42"))
}

func TestWriteTextMarshaler(t *testing.T) {
	doc, err := Write(net.IPv4(127, 0, 0, 1))
	require.NoError(t, err)
	require.Equal(t, doc, "127.0.0.1")
}

func TestWriteSkippedAndRenamedFields(t *testing.T) {
	type Record struct {
		Name     string `json:"name"`
		SkipThis string `json:"-"`
		Plain    string
	}

	data, err := Marshal(Record{Name: "you", SkipThis: "secret", Plain: "p"})
	require.NoError(t, err)
	require.Equal(t, string(data), `{"name":"you","Plain":"p"}`)
}

func TestEncoderWithTag(t *testing.T) {
	type Record struct {
		Foo string `url:"foo" json:"bar"`
	}

	data, err := NewEncoder().WithTag("url").Marshal(Record{Foo: "x"})
	require.NoError(t, err)
	require.Equal(t, string(data), `{"foo":"x"}`)
}

func TestMarshalIndent(t *testing.T) {
	type C struct {
		S string `json:"s"`
	}

	type T struct {
		X string   `json:"x"`
		Y int      `json:"y"`
		Z *float64 `json:"z"`
	}

	type B struct {
		Cs []C `json:"cs"`
		T  T   `json:"t"`
	}

	type A struct {
		B B `json:"b"`
	}

	data, err := MarshalIndent(A{B: B{Cs: []C{{S: "a"}, {S: "b"}}, T: T{X: "x"}}}, "", "    ")
	require.NoError(t, err)
	require.Equal(t, string(data), `{
    "b": {
        "cs": [
            {
                "s": "a"
            },
            {
                "s": "b"
            }
        ],
        "t": {
            "x": "x",
            "y": 0,
            "z": null
        }
    }
}`)
}

func TestRoundTrip(t *testing.T) {
	type Record struct {
		Name   string         `json:"name"`
		Pos    int            `json:"pos"`
		Age    float64        `json:"age"`
		Tags   []string       `json:"tags"`
		Scores map[string]int `json:"scores"`
		Note   *string        `json:"note"`
	}

	note := "hello"
	value := Record{
		Name:   "you",
		Pos:    42,
		Age:    5.2,
		Tags:   []string{"a", "b"},
		Scores: map[string]int{"x": 1, "y": 2},
		Note:   &note,
	}

	data, err := Marshal(value)
	require.NoError(t, err)

	parsed, err := UnmarshalNew[Record](data)
	require.NoError(t, err)
	require.Equal(t, parsed, value)

	// the document tree round trips as well
	doc, err := Write(value)
	require.NoError(t, err)

	parsed, err = ReadNew[Record](doc)
	require.NoError(t, err)
	require.Equal(t, parsed, value)
}
