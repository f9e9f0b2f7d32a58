package stream

import "context"

// RowKind discriminates the items a RowSource can produce.
type RowKind int

const (
	// RowValue carries a row payload.
	RowValue RowKind = iota

	// RowError carries a server-reported failure for this stream.
	RowError

	// RowEnd is the end-of-stream sentinel. Exactly one further Pull
	// yields the RowMetadata item.
	RowEnd

	// RowMetadata carries the trailing summary, produced once after RowEnd.
	RowMetadata
)

// RawRow is a single item pulled from a RowSource. Exactly the fields for
// its Kind are populated; everything else is zero.
type RawRow struct {
	Kind RowKind

	// Value is the row payload when Kind == RowValue.
	Value map[string]any

	// Code and Message describe the failure when Kind == RowError. Code is
	// a machine-readable server error number; see mapMarker for the mapping
	// to error kinds.
	Code    uint32
	Message string

	// Meta is the trailing summary when Kind == RowMetadata.
	Meta *Metadata
}

// ValueRow builds a RawRow carrying a payload.
func ValueRow(payload map[string]any) RawRow {
	return RawRow{Kind: RowValue, Value: payload}
}

// ErrorRow builds a RawRow carrying a server error marker.
func ErrorRow(code uint32, message string) RawRow {
	return RawRow{Kind: RowError, Code: code, Message: message}
}

// EndRow builds the end-of-stream sentinel.
func EndRow() RawRow {
	return RawRow{Kind: RowEnd}
}

// MetadataRow builds the trailing-metadata item.
func MetadataRow(meta *Metadata) RawRow {
	return RawRow{Kind: RowMetadata, Meta: meta}
}

// Error marker codes carried inside RowError items. Sources translate
// their native failures into these; Next maps them to typed errors.
const (
	CodeTimeout       uint32 = 2
	CodeAuthFailure   uint32 = 6
	CodeParsingFailed uint32 = 8
	CodeIndexNotFound uint32 = 17
	CodeRateLimited   uint32 = 21
	CodeQuotaExceeded uint32 = 22
)

// RowSource is the one-shot producer of raw stream items. Implementations
// wrap a server response, a driver result set, or a test fixture.
//
// The protocol: Submit is called exactly once to issue the query, then Pull
// is called repeatedly. Pull yields value rows and error markers in server
// order, then the RowEnd sentinel, then exactly one RowMetadata item.
// Sources are driven by a single goroutine and need not be safe for
// concurrent use.
type RowSource interface {
	Submit(ctx context.Context) error
	Pull(ctx context.Context) (RawRow, error)
}

// Metadata is the summary a source reports after the final row.
type Metadata struct {
	// ClientContextID echoes the id the query was submitted with.
	ClientContextID string

	Metrics Metrics
}

// Metrics holds execution statistics for a completed stream.
type Metrics struct {
	TookNanos    uint64
	TotalRows    uint64
	MaxScore     float64
	SuccessCount uint64
	ErrorCount   uint64
}
