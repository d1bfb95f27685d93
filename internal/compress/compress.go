// Package compress provides the codecs used to store section JSON at rest.
// The page row records which codec encoded it, so codecs can be mixed across
// rows and changed without migration.
package compress

// Compress encodes and decodes a byte payload.
type Compress interface {
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

const (
	KindNop    = ""
	KindGZip   = "gzip"
	KindBrotli = "brotli"
	KindLZ4    = "lz4"
)

// ForKind returns the codec registered under a page row's compression tag.
// Unknown tags fall back to nop so a row written by a newer build still reads.
func ForKind(kind string) Compress {
	switch kind {
	case KindGZip:
		return NewGZip()
	case KindBrotli:
		return NewBrotli()
	case KindLZ4:
		return NewLZ4()
	default:
		return NewNop()
	}
}
