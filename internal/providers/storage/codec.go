package storage

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

const encodingZstd = "zstd"

// codec compresses backup content.
// zstd encoders and decoders are safe for concurrent EncodeAll/DecodeAll.
type codec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newCodec() (*codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &codec{enc: enc, dec: dec}, nil
}

func (c *codec) encode(content []byte, threshold int) ([]byte, string) {
	if threshold <= 0 || len(content) < threshold {
		return content, ""
	}
	return c.enc.EncodeAll(content, make([]byte, 0, len(content)/2)), encodingZstd
}

func (c *codec) decode(content []byte, encoding string) ([]byte, error) {
	switch encoding {
	case "":
		return content, nil
	case encodingZstd:
		out, err := c.dec.DecodeAll(content, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress entry: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown content encoding %q", encoding)
	}
}

func (c *codec) close() {
	c.enc.Close()
	c.dec.Close()
}
