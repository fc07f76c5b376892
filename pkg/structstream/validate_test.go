package structstream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepankarm/structstream/pkg/structstream"
	"github.com/deepankarm/structstream/pkg/structstream/shape"
)

func TestValidate(t *testing.T) {
	s := shape.Object(
		shape.Field("name", shape.String()),
		shape.Field("age", shape.Number(), shape.Optional()),
	)

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr []structstream.ValidationError
	}{
		{
			name:  "valid",
			input: `{"name": "Ann", "age": 41}`,
			want:  `{"name":"Ann","age":41}`,
		},
		{
			name:  "optional absent",
			input: `{"name": "Ann"}`,
			want:  `{"name":"Ann"}`,
		},
		{
			name:  "optional null",
			input: `{"name": "Ann", "age": null}`,
			want:  `{"name":"Ann"}`,
		},
		{
			name:  "extra keys ignored",
			input: `{"name": "Ann", "nickname": "A"}`,
			want:  `{"name":"Ann"}`,
		},
		{
			name:  "fenced",
			input: "```json\n{\"name\": \"Ann\"}\n```",
			want:  `{"name":"Ann"}`,
		},
		{
			name:  "kind mismatch",
			input: `{"name": 1}`,
			wantErr: []structstream.ValidationError{
				{Loc: []string{"name"}, Message: "expected string, got number", Type: structstream.ErrorTypeMismatch},
			},
		},
		{
			name:  "all errors collected",
			input: `{"age": "old"}`,
			wantErr: []structstream.ValidationError{
				{Loc: []string{"name"}, Message: "missing required field", Type: structstream.ErrorTypeRequired},
				{Loc: []string{"age"}, Message: "expected number, got string", Type: structstream.ErrorTypeMismatch},
			},
		},
		{
			name:  "required null",
			input: `{"name": null}`,
			wantErr: []structstream.ValidationError{
				{Loc: []string{"name"}, Message: "expected string, got null", Type: structstream.ErrorTypeMismatch},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, errs := structstream.Validate(s, []byte(tt.input))
			if tt.wantErr != nil {
				assert.Nil(t, value)
				assert.Equal(t, structstream.ValidationErrors(tt.wantErr), errs)
				return
			}
			require.Empty(t, errs)
			assert.Equal(t, tt.want, value.String())
		})
	}
}

func TestValidate_Malformed(t *testing.T) {
	for _, input := range []string{
		`{"name": "Ann"`,
		`{"name": "Ann",}`,
		"{\"name\": \"line\nbreak\"}",
		`Sure! {"name": "Ann"}`,
		``,
	} {
		_, errs := structstream.Validate(person, []byte(input))
		require.Len(t, errs, 1, "input %q", input)
		assert.Equal(t, structstream.ErrorTypeJSONDecode, errs[0].Type)
		assert.Empty(t, errs[0].Loc)
		assert.Contains(t, errs[0].Message, "invalid JSON at offset")
	}
}

func TestValidate_RejectExtraFields(t *testing.T) {
	_, errs := structstream.Validate(person, []byte(`{"name": "Ann", "bio": "x", "age": 3}`), structstream.WithRejectExtraFields())
	require.Len(t, errs, 1)
	assert.Equal(t, []string{"age"}, errs[0].Loc)
	assert.Equal(t, structstream.ErrorTypeExtraForbidden, errs[0].Type)
}

func TestValidate_Nested(t *testing.T) {
	s := shape.Object(
		shape.Field("people", shape.List(shape.Object(
			shape.Field("name", shape.String()),
			shape.Field("rank", shape.Enum("Colonel", "Major"), shape.Optional()),
		))),
	)

	_, errs := structstream.Validate(s, []byte(`{"people": [{"name": "Jack", "rank": "Colonel"}, {"rank": "General"}]}`))
	require.Len(t, errs, 2)
	assert.Equal(t, []string{"people", "[1]", "name"}, errs[0].Loc)
	assert.Equal(t, structstream.ErrorTypeRequired, errs[0].Type)
	assert.Equal(t, []string{"people", "[1]", "rank"}, errs[1].Loc)
	assert.Equal(t, structstream.ErrorTypeEnum, errs[1].Type)

	assert.Equal(t, "- people[1].name: missing required field\n- people[1].rank: expected one of [Colonel, Major], got \"General\"", errs.Report())
}
