package compress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodecs(t *testing.T) {
	payload := []byte(`[{"id":"s1","type":"hero","settings":{"heading":"Welcome"}}]`)

	codecs := []struct {
		kind  string
		codec Compress
	}{
		{KindNop, NewNop()},
		{KindGZip, NewGZip()},
		{KindBrotli, NewBrotli()},
		{KindLZ4, NewLZ4()},
	}

	for _, tt := range codecs {
		t.Run("kind "+tt.kind, func(t *testing.T) {
			encoded, err := tt.codec.Encode(payload)
			assert.NoError(t, err)

			decoded, err := tt.codec.Decode(encoded)
			assert.NoError(t, err)
			assert.Equal(t, payload, decoded)
		})
	}
}

func TestForKindFallsBackToNop(t *testing.T) {
	codec := ForKind("zstd")
	encoded, err := codec.Encode([]byte("data"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("data"), encoded)
}
