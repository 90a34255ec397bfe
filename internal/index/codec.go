package index

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"math"

	"github.com/klauspost/compress/zstd"
)

// Blob layout, little endian, wrapped in a single zstd frame:
//
//	magic   [4]byte  "MZIX"
//	version uint16
//	dim     uint32
//	count   uint32
//	paths   count × (len uint32, bytes)
//	vectors count × dim × float32
//	crc     uint32   IEEE CRC-32 of everything above
const (
	codecMagic   = "MZIX"
	codecVersion = uint16(1)
	headerSize   = 4 + 2 + 4 + 4
)

var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// encode serializes the arena and compresses it.
func encode(dim int, paths []string, vectors []float32) []byte {
	return zstdEncoder.EncodeAll(encodeRaw(dim, paths, vectors), nil)
}

func encodeRaw(dim int, paths []string, vectors []float32) []byte {
	size := headerSize + 4*len(vectors) + 4
	for _, p := range paths {
		size += 4 + len(p)
	}
	buf := bytes.NewBuffer(make([]byte, 0, size))

	var scratch [4]byte
	put32 := func(v uint32) {
		binary.LittleEndian.PutUint32(scratch[:], v)
		buf.Write(scratch[:])
	}

	buf.WriteString(codecMagic)
	binary.LittleEndian.PutUint16(scratch[:2], codecVersion)
	buf.Write(scratch[:2])
	put32(uint32(dim))
	put32(uint32(len(paths)))
	for _, p := range paths {
		put32(uint32(len(p)))
		buf.WriteString(p)
	}
	for _, v := range vectors {
		put32(math.Float32bits(v))
	}
	put32(crc32.ChecksumIEEE(buf.Bytes()))
	return buf.Bytes()
}

// decode reverses encode. Every failure is a *CorruptError.
func decode(data []byte) (dim int, paths []string, vectors []float32, err error) {
	raw, zerr := zstdDecoder.DecodeAll(data, nil)
	if zerr != nil {
		return 0, nil, nil, corrupt("decompress", zerr)
	}
	return decodeRaw(raw)
}

func decodeRaw(raw []byte) (int, []string, []float32, error) {
	if len(raw) < headerSize+4 {
		return 0, nil, nil, corrupt("truncated header", nil)
	}
	body, tail := raw[:len(raw)-4], raw[len(raw)-4:]
	if crc32.ChecksumIEEE(body) != binary.LittleEndian.Uint32(tail) {
		return 0, nil, nil, corrupt("checksum mismatch", nil)
	}
	if string(body[:4]) != codecMagic {
		return 0, nil, nil, corrupt("bad magic", nil)
	}
	if v := binary.LittleEndian.Uint16(body[4:6]); v != codecVersion {
		return 0, nil, nil, corrupt("unsupported version", nil)
	}
	dim := int(binary.LittleEndian.Uint32(body[6:10]))
	count := int(binary.LittleEndian.Uint32(body[10:14]))
	r := body[headerSize:]

	if count > len(r)/4 {
		return 0, nil, nil, corrupt("count exceeds data", nil)
	}
	paths := make([]string, count)
	for i := range paths {
		if len(r) < 4 {
			return 0, nil, nil, corrupt("truncated path table", nil)
		}
		n := int(binary.LittleEndian.Uint32(r))
		r = r[4:]
		if n > len(r) {
			return 0, nil, nil, corrupt("truncated path", nil)
		}
		paths[i] = string(r[:n])
		r = r[n:]
	}

	if dim <= 0 && count > 0 {
		return 0, nil, nil, corrupt("zero dimension", nil)
	}
	want := uint64(count) * uint64(dim) * 4
	if uint64(len(r)) != want {
		return 0, nil, nil, corrupt("vector data size mismatch", nil)
	}
	vectors := make([]float32, count*dim)
	for i := range vectors {
		vectors[i] = math.Float32frombits(binary.LittleEndian.Uint32(r[i*4:]))
	}
	return dim, paths, vectors, nil
}
