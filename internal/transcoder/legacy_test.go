package transcoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoalstore/shoal-go/internal/errs"
)

func TestLegacy_EncodeByType(t *testing.T) {
	tc := NewLegacy(nil)

	tests := []struct {
		name      string
		value     any
		wantFlags uint32
	}{
		{name: "string becomes utf8", value: "hello", wantFlags: FormatString},
		{name: "bytes stay binary", value: []byte{0xDE, 0xAD}, wantFlags: FormatBinary},
		{name: "int becomes json", value: 7, wantFlags: FormatJSON},
		{name: "float becomes json", value: 1.5, wantFlags: FormatJSON},
		{name: "bool becomes json", value: true, wantFlags: FormatJSON},
		{name: "nil becomes json", value: nil, wantFlags: FormatJSON},
		{name: "slice becomes json", value: []any{1, 2}, wantFlags: FormatJSON},
		{name: "map becomes json", value: map[string]any{"k": "v"}, wantFlags: FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, flags, err := tc.Encode(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFlags, flags)
		})
	}
}

type customDoc struct {
	Name  string
	Count int
}

func TestLegacy_OpaqueRoundTrip(t *testing.T) {
	tc := NewLegacy(nil)

	in := customDoc{Name: "widget", Count: 3}

	b, flags, err := tc.Encode(in)
	require.NoError(t, err)
	assert.Equal(t, FormatOpaque, flags)

	got, err := tc.Decode(b, flags)
	require.NoError(t, err)
	assert.Equal(t, in, got)
}

func TestLegacy_DecodeAcceptsEveryTag(t *testing.T) {
	tc := NewLegacy(nil)

	t.Run("binary", func(t *testing.T) {
		got, err := tc.Decode([]byte{0x01}, FormatBinary)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x01}, got)
	})

	t.Run("string", func(t *testing.T) {
		got, err := tc.Decode([]byte("plain"), FormatString)
		require.NoError(t, err)
		assert.Equal(t, "plain", got)
	})

	t.Run("json", func(t *testing.T) {
		got, err := tc.Decode([]byte(`{"a":1}`), FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": float64(1)}, got)
	})

	t.Run("unknown tag falls back to bytes", func(t *testing.T) {
		got, err := tc.Decode([]byte{0xAB}, 0xDEADBEEF)
		require.NoError(t, err)
		assert.Equal(t, []byte{0xAB}, got)
	})
}

func TestLegacy_BadJSONReturnsRawBytes(t *testing.T) {
	tc := NewLegacy(nil)

	// A JSON tag over a body that is not JSON: legacy writers outside this
	// client's control produce these. Decode must hand back the bytes.
	payload := []byte("not { json at all")

	got, err := tc.Decode(payload, FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestLegacy_OpaqueDecodeFailure(t *testing.T) {
	tc := NewLegacy(nil)

	_, err := tc.Decode([]byte("not a gob stream"), FormatOpaque)
	assert.True(t, errs.IsInternal(err))
}
