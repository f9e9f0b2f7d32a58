// Package transcoder implements the value codecs that map application
// values to (bytes, format tag) pairs and back.
//
// Five interchangeable codecs exist, selected at construction time:
//
//	NewJSON(nil)    — structured JSON, the default
//	NewRawJSON()    — pre-encoded JSON passed through untouched
//	NewRawString()  — UTF-8 text only
//	NewRawBinary()  — raw bytes only
//	NewLegacy(nil)  — auto-detect by value type, accepts every tag on decode
//
// Each codec rejects value types and format tags it does not own with a
// typed error rather than guessing. The one exception is LegacyTranscoder's
// decode of a JSON-tagged payload that fails to parse, which returns the
// raw bytes unchanged: legacy documents written outside this client's
// control may carry a wrong tag.
//
// RawJSONTranscoder.Decode always returns []byte, never string — the
// writer-side distinction between text and binary is not recoverable from
// the tag, so callers that want text convert explicitly.
//
// All codecs are stateless per call and safe for concurrent use.
package transcoder

import (
	"github.com/shoalstore/shoal-go/internal/errs"
)

// Transcoder encodes application values for storage and decodes stored
// payloads back into application values.
type Transcoder interface {
	// Encode returns the serialized body and the format tag to store with it.
	Encode(value any) ([]byte, uint32, error)

	// Decode interprets a stored body according to its format tag.
	Decode(data []byte, flags uint32) (any, error)
}

// ForName returns the codec registered under a config name
// (json, rawjson, rawstring, rawbinary, legacy).
func ForName(name string) (Transcoder, error) {
	switch name {
	case "json":
		return NewJSON(nil), nil
	case "rawjson":
		return NewRawJSON(), nil
	case "rawstring":
		return NewRawString(), nil
	case "rawbinary":
		return NewRawBinary(), nil
	case "legacy":
		return NewLegacy(nil), nil
	default:
		return nil, errs.Newf(errs.ErrKindInvalidInput, "unknown transcoder %q", name)
	}
}

// --- JSON (default) ---

// JSONTranscoder serializes every value as structured JSON. It refuses raw
// binary payloads: storing opaque bytes under a JSON tag would poison
// later reads, so binary callers must opt into RawBinaryTranscoder.
type JSONTranscoder struct {
	serializer Serializer
}

// NewJSON returns the default codec. A nil serializer selects JSONSerializer.
func NewJSON(s Serializer) *JSONTranscoder {
	if s == nil {
		s = JSONSerializer{}
	}
	return &JSONTranscoder{serializer: s}
}

func (t *JSONTranscoder) Encode(value any) ([]byte, uint32, error) {
	if _, ok := value.([]byte); ok {
		return nil, 0, errs.New(errs.ErrKindUnsupportedType,
			"json transcoder does not support binary data")
	}
	b, err := t.serializer.Serialize(value)
	if err != nil {
		return nil, 0, err
	}
	return b, FormatJSON, nil
}

func (t *JSONTranscoder) Decode(data []byte, flags uint32) (any, error) {
	switch format := ResolveFormat(flags); format {
	case FormatJSON:
		return t.serializer.Deserialize(data)
	case FormatBinary:
		return nil, errs.New(errs.ErrKindUnsupportedFormat,
			"json transcoder does not support binary format")
	case FormatString:
		return nil, errs.New(errs.ErrKindUnsupportedFormat,
			"json transcoder does not support string format")
	default:
		return nil, errs.Newf(errs.ErrKindUnsupportedFormat,
			"json transcoder does not support %s format", FormatName(format))
	}
}

// --- RawJSON ---

// RawJSONTranscoder passes already-encoded JSON through untouched. The
// caller owns the validity of the payload; nothing is parsed on either path.
type RawJSONTranscoder struct{}

func NewRawJSON() *RawJSONTranscoder {
	return &RawJSONTranscoder{}
}

func (*RawJSONTranscoder) Encode(value any) ([]byte, uint32, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), FormatJSON, nil
	case []byte:
		return v, FormatJSON, nil
	default:
		return nil, 0, errs.New(errs.ErrKindUnsupportedType,
			"rawjson transcoder supports only string and binary data")
	}
}

func (*RawJSONTranscoder) Decode(data []byte, flags uint32) (any, error) {
	switch format := ResolveFormat(flags); format {
	case FormatJSON:
		return data, nil
	case FormatBinary:
		return nil, errs.New(errs.ErrKindUnsupportedFormat,
			"rawjson transcoder does not support binary format")
	case FormatString:
		return nil, errs.New(errs.ErrKindUnsupportedFormat,
			"rawjson transcoder does not support string format")
	default:
		return nil, errs.Newf(errs.ErrKindUnsupportedFormat,
			"rawjson transcoder does not support %s format", FormatName(format))
	}
}

// --- RawString ---

// RawStringTranscoder stores UTF-8 text under the string tag.
type RawStringTranscoder struct{}

func NewRawString() *RawStringTranscoder {
	return &RawStringTranscoder{}
}

func (*RawStringTranscoder) Encode(value any) ([]byte, uint32, error) {
	s, ok := value.(string)
	if !ok {
		return nil, 0, errs.New(errs.ErrKindUnsupportedType,
			"rawstring transcoder supports only string data")
	}
	return []byte(s), FormatString, nil
}

func (*RawStringTranscoder) Decode(data []byte, flags uint32) (any, error) {
	switch format := ResolveFormat(flags); format {
	case FormatString:
		return string(data), nil
	case FormatJSON:
		return nil, errs.New(errs.ErrKindUnsupportedFormat,
			"rawstring transcoder does not support json format")
	case FormatBinary:
		return nil, errs.New(errs.ErrKindUnsupportedFormat,
			"rawstring transcoder does not support binary format")
	default:
		return nil, errs.Newf(errs.ErrKindUnsupportedFormat,
			"rawstring transcoder does not support %s format", FormatName(format))
	}
}

// --- RawBinary ---

// RawBinaryTranscoder stores raw bytes under the binary tag.
type RawBinaryTranscoder struct{}

func NewRawBinary() *RawBinaryTranscoder {
	return &RawBinaryTranscoder{}
}

func (*RawBinaryTranscoder) Encode(value any) ([]byte, uint32, error) {
	b, ok := value.([]byte)
	if !ok {
		return nil, 0, errs.New(errs.ErrKindUnsupportedType,
			"rawbinary transcoder supports only binary data")
	}
	return b, FormatBinary, nil
}

func (*RawBinaryTranscoder) Decode(data []byte, flags uint32) (any, error) {
	switch format := ResolveFormat(flags); format {
	case FormatBinary:
		return data, nil
	case FormatJSON:
		return nil, errs.New(errs.ErrKindUnsupportedFormat,
			"rawbinary transcoder does not support json format")
	case FormatString:
		return nil, errs.New(errs.ErrKindUnsupportedFormat,
			"rawbinary transcoder does not support string format")
	default:
		return nil, errs.Newf(errs.ErrKindUnsupportedFormat,
			"rawbinary transcoder does not support %s format", FormatName(format))
	}
}
