package transcoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoalstore/shoal-go/internal/errs"
)

func TestJSON_RoundTrip(t *testing.T) {
	tc := NewJSON(nil)

	tests := []struct {
		name  string
		value any
		want  any // what decode yields after JSON normalization
	}{
		{name: "string", value: "hello", want: "hello"},
		{name: "integer", value: 42, want: float64(42)},
		{name: "float", value: 3.25, want: 3.25},
		{name: "bool", value: true, want: true},
		{name: "nil", value: nil, want: nil},
		{
			name:  "list",
			value: []any{"a", float64(1), false},
			want:  []any{"a", float64(1), false},
		},
		{
			name:  "map",
			value: map[string]any{"a": float64(1), "b": []any{float64(1), float64(2), float64(3)}},
			want:  map[string]any{"a": float64(1), "b": []any{float64(1), float64(2), float64(3)}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, flags, err := tc.Encode(tt.value)
			require.NoError(t, err)
			assert.Equal(t, FormatJSON, flags)

			got, err := tc.Decode(b, flags)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJSON_RejectsBinary(t *testing.T) {
	tc := NewJSON(nil)

	_, _, err := tc.Encode([]byte{0x01, 0x02})
	assert.True(t, errs.IsUnsupportedType(err))

	_, err = tc.Decode([]byte{0x01}, FormatBinary)
	assert.True(t, errs.IsUnsupportedFormat(err))

	_, err = tc.Decode([]byte("text"), FormatString)
	assert.True(t, errs.IsUnsupportedFormat(err))
}

func TestJSON_RejectsUnserializable(t *testing.T) {
	tc := NewJSON(nil)

	_, _, err := tc.Encode(make(chan int))
	assert.True(t, errs.IsUnsupportedType(err))
}

func TestJSON_CustomSerializer(t *testing.T) {
	tc := NewJSON(stubSerializer{out: []byte(`"fixed"`)})

	b, flags, err := tc.Encode(map[string]any{"ignored": true})
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, flags)
	assert.Equal(t, []byte(`"fixed"`), b)
}

type stubSerializer struct {
	out []byte
}

func (s stubSerializer) Serialize(any) ([]byte, error)   { return s.out, nil }
func (s stubSerializer) Deserialize([]byte) (any, error) { return string(s.out), nil }

func TestRawJSON(t *testing.T) {
	tc := NewRawJSON()

	t.Run("string passes through", func(t *testing.T) {
		b, flags, err := tc.Encode(`{"a":1}`)
		require.NoError(t, err)
		assert.Equal(t, FormatJSON, flags)
		assert.Equal(t, []byte(`{"a":1}`), b)
	})

	t.Run("bytes pass through", func(t *testing.T) {
		raw := []byte(`[1,2,3]`)
		b, flags, err := tc.Encode(raw)
		require.NoError(t, err)
		assert.Equal(t, FormatJSON, flags)
		assert.Equal(t, raw, b)
	})

	t.Run("rejects other types", func(t *testing.T) {
		_, _, err := tc.Encode(42)
		assert.True(t, errs.IsUnsupportedType(err))
	})

	t.Run("decode returns bytes unparsed", func(t *testing.T) {
		got, err := tc.Decode([]byte(`{"a":1}`), FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"a":1}`), got)
	})

	t.Run("decode rejects other tags", func(t *testing.T) {
		_, err := tc.Decode([]byte("x"), FormatBinary)
		assert.True(t, errs.IsUnsupportedFormat(err))

		_, err = tc.Decode([]byte("x"), FormatString)
		assert.True(t, errs.IsUnsupportedFormat(err))
	})
}

func TestRawString(t *testing.T) {
	tc := NewRawString()

	b, flags, err := tc.Encode("héllo")
	require.NoError(t, err)
	assert.Equal(t, FormatString, flags)

	got, err := tc.Decode(b, flags)
	require.NoError(t, err)
	assert.Equal(t, "héllo", got)

	_, _, err = tc.Encode([]byte("not text"))
	assert.True(t, errs.IsUnsupportedType(err))

	_, err = tc.Decode([]byte(`{}`), FormatJSON)
	assert.True(t, errs.IsUnsupportedFormat(err))
}

func TestRawBinary(t *testing.T) {
	tc := NewRawBinary()

	payload := []byte{0x00, 0x01, 0xFF}

	b, flags, err := tc.Encode(payload)
	require.NoError(t, err)
	assert.Equal(t, FormatBinary, flags)
	assert.Equal(t, payload, b)

	got, err := tc.Decode(b, flags)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	_, _, err = tc.Encode("text")
	assert.True(t, errs.IsUnsupportedType(err))

	_, err = tc.Decode([]byte(`{}`), FormatJSON)
	assert.True(t, errs.IsUnsupportedFormat(err))
}

func TestForName(t *testing.T) {
	for _, name := range []string{"json", "rawjson", "rawstring", "rawbinary", "legacy"} {
		tc, err := ForName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, tc, name)
	}

	_, err := ForName("msgpack")
	assert.True(t, errs.IsInvalidInput(err))
}

func BenchmarkJSON_Encode(b *testing.B) {
	tc := NewJSON(nil)
	value := map[string]any{"a": 1, "b": []any{1, 2, 3}, "c": "payload"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := tc.Encode(value); err != nil {
			b.Fatal(err)
		}
	}
}
