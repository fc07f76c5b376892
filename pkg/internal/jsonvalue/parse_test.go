package jsonvalue_test

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/deepankarm/structstream/pkg/internal/jsonvalue"
	"github.com/deepankarm/structstream/pkg/internal/partialjson"
)

func TestParse_Scalars(t *testing.T) {
	tests := []struct {
		input string
		want  jsonvalue.Value
	}{
		{`null`, jsonvalue.Null{}},
		{`true`, jsonvalue.Bool(true)},
		{`false`, jsonvalue.Bool(false)},
		{`0`, jsonvalue.Number("0")},
		{`-12.5e+3`, jsonvalue.Number("-12.5e+3")},
		{`"hi"`, jsonvalue.String("hi")},
		{`"a\"b\\c\/d\n"`, jsonvalue.String("a\"b\\c/d\n")},
		{`"café"`, jsonvalue.String("café")},
		{`"😀"`, jsonvalue.String("😀")},
		{`"\ud83d"`, jsonvalue.String("�")},
		{` [] `, jsonvalue.Array{}},
		{`[1, "x", null]`, jsonvalue.Array{jsonvalue.Number("1"), jsonvalue.String("x"), jsonvalue.Null{}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := jsonvalue.Parse([]byte(tt.input))
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_ObjectPreservesOrder(t *testing.T) {
	v, err := jsonvalue.Parse([]byte(`{"z": 1, "a": {"y": [], "b": {}}, "m": "x", "z": 2}`))
	if err != nil {
		t.Fatal(err)
	}
	obj, ok := v.(*jsonvalue.Object)
	if !ok {
		t.Fatalf("expected *Object, got %T", v)
	}

	if got, want := obj.Keys(), []string{"z", "a", "m"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys() = %v, want %v", got, want)
	}
	if z, _ := obj.Get("z"); z != jsonvalue.Number("2") {
		t.Errorf("repeated key: got %v, want last value 2", z)
	}

	inner, _ := obj.Get("a")
	if got, want := inner.(*jsonvalue.Object).Keys(), []string{"y", "b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("nested Keys() = %v, want %v", got, want)
	}

	var seen []string
	obj.Range(func(key string, _ jsonvalue.Value) bool {
		seen = append(seen, key)
		return key != "a"
	})
	if want := []string{"z", "a"}; !reflect.DeepEqual(seen, want) {
		t.Errorf("Range stopped at %v, want %v", seen, want)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		pos   int
	}{
		{"empty", ``, 0},
		{"trailing comma", `[1,]`, 3},
		{"missing colon", `{"a" 1}`, 5},
		{"unquoted key", `{a: 1}`, 1},
		{"bad literal", `tru`, 0},
		{"leading zero", `01`, 1},
		{"bare minus", `-`, 1},
		{"bad escape", `"\x"`, 2},
		{"unterminated string", `"abc`, 0},
		{"trailing garbage", `{} x`, 3},
		{"unclosed array", `[1`, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := jsonvalue.Parse([]byte(tt.input))
			var perr *jsonvalue.ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("Parse(%q) error = %v, want *ParseError", tt.input, err)
			}
			if perr.Pos != tt.pos {
				t.Errorf("Pos = %d, want %d (%s)", perr.Pos, tt.pos, perr.Reason)
			}
		})
	}
}

func TestParse_ControlCharacters(t *testing.T) {
	input := []byte("{\"bio\": \"line one\nline two\"}")

	v, err := jsonvalue.Parse(input)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	bio, _ := v.(*jsonvalue.Object).Get("bio")
	if bio != jsonvalue.String("line one\nline two") {
		t.Errorf("bio = %q", bio)
	}

	if _, err := jsonvalue.ParseStrict(input); err == nil {
		t.Error("ParseStrict accepted a raw newline inside a string")
	}
}

func TestParseStrict_InvalidUTF8(t *testing.T) {
	if _, err := jsonvalue.ParseStrict([]byte("\"caf\xc3\"")); err == nil {
		t.Error("ParseStrict accepted invalid UTF-8")
	}
	if _, err := jsonvalue.Parse([]byte("\"caf\xc3\"")); err != nil {
		t.Errorf("Parse rejected invalid UTF-8: %v", err)
	}
}

func TestParse_DepthLimit(t *testing.T) {
	deep := make([]byte, 0, 40000)
	for i := 0; i < 20000; i++ {
		deep = append(deep, '[')
	}
	for i := 0; i < 20000; i++ {
		deep = append(deep, ']')
	}
	if _, err := jsonvalue.Parse(deep); err == nil {
		t.Error("expected nesting error")
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		lit       jsonvalue.Number
		isInteger bool
		float     float64
		intOK     bool
		wantInt   int64
	}{
		{"42", true, 42, true, 42},
		{"-7", true, -7, true, -7},
		{"2.5", false, 2.5, false, 0},
		{"1e3", false, 1000, false, 0},
		{"9223372036854775807", true, 9223372036854775807, true, math.MaxInt64},
		{"9223372036854775808", true, 9223372036854775808, false, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.lit), func(t *testing.T) {
			if got := tt.lit.IsInteger(); got != tt.isInteger {
				t.Errorf("IsInteger() = %v, want %v", got, tt.isInteger)
			}
			f, err := tt.lit.Float64()
			if err != nil || f != tt.float {
				t.Errorf("Float64() = %v, %v; want %v", f, err, tt.float)
			}
			i, err := tt.lit.Int64()
			if (err == nil) != tt.intOK {
				t.Errorf("Int64() error = %v, want ok=%v", err, tt.intOK)
			}
			if tt.intOK && i != tt.wantInt {
				t.Errorf("Int64() = %d, want %d", i, tt.wantInt)
			}
		})
	}
}

func TestKindString(t *testing.T) {
	if jsonvalue.KindBool.String() != "boolean" || jsonvalue.KindObject.String() != "object" {
		t.Errorf("unexpected kind names")
	}
	if jsonvalue.Kind(99).String() != "unknown" {
		t.Errorf("unexpected name for invalid kind")
	}
}

// Every prefix of a document completes to text the parser accepts.
func TestParse_CompletedPrefixes(t *testing.T) {
	docs := []string{
		`{"people": [{"name": "David", "bio": "Creator of Rails\nand more", "age": 44}, {"name": "Cramer", "tags": [true, false, null]}]}`,
		`[{"a": {"b": {"c": [1.5e-3, -0, "é😀"]}}}]`,
	}
	for _, doc := range docs {
		for i := 0; i <= len(doc); i++ {
			completed := partialjson.Complete([]byte(doc[:i])).Repaired
			if _, err := jsonvalue.Parse(completed); err != nil {
				t.Fatalf("Parse(Complete(%q)) = %q: %v", doc[:i], completed, err)
			}
		}
	}
}
