package transcoder

import (
	"encoding/json"

	"github.com/shoalstore/shoal-go/internal/errs"
)

// Serializer turns application values into JSON bytes and back. The JSON
// transcoder delegates to one of these, so callers can swap in their own
// (e.g. one that preserves number precision or uses custom struct tags).
type Serializer interface {
	Serialize(value any) ([]byte, error)
	Deserialize(data []byte) (any, error)
}

// JSONSerializer is the default Serializer backed by encoding/json.
type JSONSerializer struct{}

func (JSONSerializer) Serialize(value any) ([]byte, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnsupportedType, "value is not JSON-serializable", err)
	}
	return b, nil
}

func (JSONSerializer) Deserialize(data []byte) (any, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "payload is not valid JSON", err)
	}
	return v, nil
}
