package encoding

import (
	"bytes"
	"encoding/json"
	"sync"
	"sync/atomic"
)

// Codec is a JSON codec with pooled buffers for hot paths like the ranking
// cache, where the same payload shapes are encoded on every refresh.
type Codec struct {
	buffers sync.Pool

	encodes int64
	decodes int64
}

// NewCodec creates a pooled JSON codec.
func NewCodec() *Codec {
	return &Codec{
		buffers: sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
	}
}

// Marshal encodes v using a pooled buffer. The returned slice is a copy and
// safe to retain.
func (c *Codec) Marshal(v interface{}) ([]byte, error) {
	buf := c.buffers.Get().(*bytes.Buffer)
	buf.Reset()
	defer c.buffers.Put(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		return nil, err
	}
	atomic.AddInt64(&c.encodes, 1)

	// Drop the trailing newline Encode appends.
	data := buf.Bytes()
	if n := len(data); n > 0 && data[n-1] == '\n' {
		data = data[:n-1]
	}

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Unmarshal decodes data into v.
func (c *Codec) Unmarshal(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	atomic.AddInt64(&c.decodes, 1)
	return nil
}

// GetStats returns codec usage counters.
func (c *Codec) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"encodes": atomic.LoadInt64(&c.encodes),
		"decodes": atomic.LoadInt64(&c.decodes),
	}
}
