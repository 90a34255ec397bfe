package index

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	paths := []string{"a.png", "memes/b.jpg", ""}
	vectors := []float32{1, 0, 0.5, -0.25, 3, 4}

	dim, gotPaths, gotVecs, err := decode(encode(2, paths, vectors))
	require.NoError(t, err)
	assert.Equal(t, 2, dim)
	assert.Equal(t, paths, gotPaths)
	assert.Equal(t, vectors, gotVecs)
}

func TestCodecEmpty(t *testing.T) {
	dim, paths, vecs, err := decode(encode(0, nil, nil))
	require.NoError(t, err)
	assert.Equal(t, 0, dim)
	assert.Empty(t, paths)
	assert.Empty(t, vecs)
}

func TestCodecCorruption(t *testing.T) {
	raw := encodeRaw(2, []string{"a.png"}, []float32{1, 0})

	flipped := append([]byte(nil), raw...)
	flipped[len(flipped)-6] ^= 0xff

	badMagic := append([]byte(nil), raw...)
	copy(badMagic, "XXXX")

	tests := []struct {
		name string
		data []byte
	}{
		{"not zstd", []byte("hello")},
		{"truncated", zstdEncoder.EncodeAll(raw[:8], nil)},
		{"checksum", zstdEncoder.EncodeAll(flipped, nil)},
		{"magic", zstdEncoder.EncodeAll(badMagic, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := decode(tt.data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCorrupt))
			var ce *CorruptError
			assert.True(t, errors.As(err, &ce))
		})
	}
}
