package transcoder

import (
	"bytes"
	"encoding/gob"
	"reflect"

	"github.com/shoalstore/shoal-go/internal/errs"
)

// LegacyTranscoder reproduces the pre-unification codec behavior: the
// format is chosen from the runtime type of the value, and decode accepts
// every tag. Strings become UTF-8 text, byte slices stay raw, anything
// JSON-representable becomes JSON, and everything else is serialized with
// encoding/gob under the opaque tag. Opaque payloads are only decodable by
// a LegacyTranscoder in a process that has encoded (or registered) the
// same concrete type.
type LegacyTranscoder struct {
	serializer Serializer
}

// NewLegacy returns a legacy codec. A nil serializer selects JSONSerializer.
func NewLegacy(s Serializer) *LegacyTranscoder {
	if s == nil {
		s = JSONSerializer{}
	}
	return &LegacyTranscoder{serializer: s}
}

// opaqueEnvelope carries the value through gob so the concrete type is
// recorded in the payload and recovered on decode.
type opaqueEnvelope struct {
	Value any
}

func (t *LegacyTranscoder) Encode(value any) ([]byte, uint32, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), FormatString, nil
	case []byte:
		return v, FormatBinary, nil
	}

	if jsonRepresentable(value) {
		b, err := t.serializer.Serialize(value)
		if err != nil {
			return nil, 0, err
		}
		return b, FormatJSON, nil
	}

	b, err := encodeOpaque(value)
	if err != nil {
		return nil, 0, err
	}
	return b, FormatOpaque, nil
}

func (t *LegacyTranscoder) Decode(data []byte, flags uint32) (any, error) {
	switch ResolveFormat(flags) {
	case FormatBinary:
		return data, nil
	case FormatString:
		return string(data), nil
	case FormatJSON:
		v, err := t.serializer.Deserialize(data)
		if err != nil {
			// Legacy documents written by other clients sometimes carry a
			// JSON tag over a non-JSON body. Hand the bytes back untouched.
			return data, nil
		}
		return v, nil
	case FormatOpaque:
		return decodeOpaque(data)
	default:
		return data, nil
	}
}

// jsonRepresentable reports whether the legacy codec should store the
// value as JSON: scalars, sequences, and maps, mirroring the set of types
// the default codec's writers historically produced.
func jsonRepresentable(value any) bool {
	if value == nil {
		return true
	}
	switch reflect.TypeOf(value).Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64,
		reflect.Slice, reflect.Array, reflect.Map:
		return true
	default:
		return false
	}
}

func encodeOpaque(value any) ([]byte, error) {
	if value == nil {
		return nil, errs.New(errs.ErrKindUnsupportedType,
			"cannot encode nil under the opaque format")
	}
	gob.Register(value)

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(opaqueEnvelope{Value: value}); err != nil {
		return nil, errs.Wrap(errs.ErrKindUnsupportedType,
			"value is not gob-serializable", err)
	}
	return buf.Bytes(), nil
}

func decodeOpaque(data []byte) (any, error) {
	var env opaqueEnvelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return nil, errs.Wrap(errs.ErrKindInternal,
			"opaque payload could not be decoded", err)
	}
	return env.Value, nil
}
