package transcoder

// Format tags are 32-bit flag values stored alongside every document body.
// Each unified tag carries the format twice: once in the common sub-mask
// (upper byte, shared across SDKs) and once in the legacy sub-mask (lower
// byte, used by pre-unification writers). Readers that only understand one
// sub-mask still resolve the right format.
const (
	// FormatJSON marks a structured JSON body.
	FormatJSON uint32 = 0x02<<24 | 0x06

	// FormatOpaque marks a body serialized with the legacy transcoder's
	// native object encoding. Only LegacyTranscoder can decode it.
	FormatOpaque uint32 = 0x01<<24 | 0x01

	// FormatBinary marks a raw byte body.
	FormatBinary uint32 = 0x03<<24 | 0x02

	// FormatString marks a UTF-8 text body.
	FormatString uint32 = 0x04<<24 | 0x04

	// CommonMask selects the common-format bits of a tag.
	CommonMask uint32 = 0xFF000000

	// LegacyMask selects the legacy-format bits of a tag.
	LegacyMask uint32 = 0x000000FF
)

var unifiedFormats = []uint32{FormatJSON, FormatOpaque, FormatBinary, FormatString}

var (
	commonToUnified = make(map[uint32]uint32, len(unifiedFormats))
	legacyToUnified = make(map[uint32]uint32, len(unifiedFormats))
)

func init() {
	for _, f := range unifiedFormats {
		commonToUnified[f&CommonMask] = f
		legacyToUnified[f&LegacyMask] = f
	}
}

// ResolveFormat maps an arbitrary 32-bit tag to a unified format constant.
// If the common bits are set they win; otherwise the legacy bits are used.
// Unrecognized values in either sub-mask resolve to FormatBinary rather
// than failing: tags may originate from differently-versioned writers, and
// handing the caller raw bytes is the lossless option.
func ResolveFormat(flags uint32) uint32 {
	if c := flags & CommonMask; c != 0 {
		if f, ok := commonToUnified[c]; ok {
			return f
		}
		return FormatBinary
	}
	if f, ok := legacyToUnified[flags&LegacyMask]; ok {
		return f
	}
	return FormatBinary
}

// FormatName returns a human-readable name for a unified format constant,
// for logging and error messages.
func FormatName(format uint32) string {
	switch format {
	case FormatJSON:
		return "json"
	case FormatOpaque:
		return "opaque"
	case FormatBinary:
		return "binary"
	case FormatString:
		return "string"
	default:
		return "unrecognized"
	}
}
