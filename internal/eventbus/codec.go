package eventbus

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// HeaderEncoding - заголовок NATS с кодировкой тела сообщения
const HeaderEncoding = "Content-Encoding"

// codec сериализует конверты для JetStream: JSON, сжатый zstd.
// Encoder и Decoder безопасны для конкурентного EncodeAll/DecodeAll.
type codec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newCodec() (*codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &codec{enc: enc, dec: dec}, nil
}

func (c *codec) Encode(ev *Envelope) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return c.enc.EncodeAll(data, nil), nil
}

// Decode понимает и сжатые, и несжатые сообщения (compressed=false для старых публикаций)
func (c *codec) Decode(data []byte, compressed bool) (*Envelope, error) {
	if compressed {
		raw, err := c.dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
		data = raw
	}
	var ev Envelope
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

func (c *codec) Close() {
	c.enc.Close()
	c.dec.Close()
}
