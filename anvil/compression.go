package anvil

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionID is the one-byte tag stored in front of each chunk's payload,
// per https://minecraft.wiki/w/Region_file_format#Chunk_data.
type CompressionID uint8

const (
	CompressionGZip         CompressionID = 1
	CompressionZlib         CompressionID = 2
	CompressionUncompressed CompressionID = 3
	CompressionLZ4          CompressionID = 4
	// CompressionZstd is not part of the vanilla Anvil wire contract (ids
	// 1-4 only); it is offered as an extra for callers who control both
	// ends of the pipe and want a better ratio/speed tradeoff than zlib,
	// the same role zstd plays for whole-world payloads in pile.Provider.
	CompressionZstd CompressionID = 5
)

func (c CompressionID) String() string {
	switch c {
	case CompressionGZip:
		return "gzip"
	case CompressionZlib:
		return "zlib"
	case CompressionUncompressed:
		return "uncompressed"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// decompress inflates a chunk payload according to its compression tag.
// LZ4 (id 4) is refused unless allowLZ4 is set (see Region.SetAllowLZ4).
func decompress(id CompressionID, data []byte, allowLZ4 bool) ([]byte, error) {
	switch id {
	case CompressionGZip:
		r, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %v", ErrCompression, err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: gzip: %v", ErrCompression, err)
		}
		return out, nil
	case CompressionZlib:
		r, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: zlib: %v", ErrCompression, err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: zlib: %v", ErrCompression, err)
		}
		return out, nil
	case CompressionUncompressed:
		return data, nil
	case CompressionLZ4:
		if !allowLZ4 {
			return nil, fmt.Errorf("%w: lz4 support disabled", ErrCompression)
		}
		r := lz4.NewReader(bytes.NewReader(data))
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrCompression, err)
		}
		return out, nil
	case CompressionZstd:
		dec, err := zstd.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCompression, err)
		}
		defer dec.Close()
		out, err := io.ReadAll(dec)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCompression, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown compression tag %d", ErrCompression, uint8(id))
	}
}

// compress deflates raw chunk NBT bytes under the given compression tag.
// See decompress for the LZ4 feature-flag gate.
func compress(id CompressionID, data []byte, allowLZ4 bool) ([]byte, error) {
	var buf bytes.Buffer
	switch id {
	case CompressionGZip:
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("%w: gzip: %v", ErrCompression, err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("%w: gzip: %v", ErrCompression, err)
		}
	case CompressionZlib:
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("%w: zlib: %v", ErrCompression, err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("%w: zlib: %v", ErrCompression, err)
		}
	case CompressionUncompressed:
		buf.Write(data)
	case CompressionLZ4:
		if !allowLZ4 {
			return nil, fmt.Errorf("%w: lz4 support disabled", ErrCompression)
		}
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrCompression, err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("%w: lz4: %v", ErrCompression, err)
		}
	case CompressionZstd:
		enc, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCompression, err)
		}
		if _, err := enc.Write(data); err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCompression, err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("%w: zstd: %v", ErrCompression, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown compression tag %d", ErrCompression, uint8(id))
	}
	return buf.Bytes(), nil
}
