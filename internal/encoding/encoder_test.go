package encoding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string   `json:"name"`
	Score float64  `json:"score"`
	Tags  []string `json:"tags,omitempty"`
}

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec()

	in := payload{Name: "Peter Obi", Score: 0.42, Tags: []string{"LP", "Anambra"}}
	data, err := codec.Marshal(in)
	require.NoError(t, err)

	var out payload
	require.NoError(t, codec.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestCodecOutputHasNoTrailingNewline(t *testing.T) {
	codec := NewCodec()

	data, err := codec.Marshal(map[string]int{"a": 1})
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.NotEqual(t, byte('\n'), data[len(data)-1])
	assert.JSONEq(t, `{"a":1}`, string(data))
}

func TestCodecReturnsSafeCopy(t *testing.T) {
	codec := NewCodec()

	first, err := codec.Marshal(payload{Name: "first"})
	require.NoError(t, err)
	snapshot := string(first)

	// A second encode reuses the pooled buffer; the first slice must not
	// be clobbered.
	_, err = codec.Marshal(payload{Name: "second-and-longer"})
	require.NoError(t, err)

	assert.Equal(t, snapshot, string(first))
}

func TestCodecStats(t *testing.T) {
	codec := NewCodec()

	data, err := codec.Marshal(payload{Name: "x"})
	require.NoError(t, err)

	var out payload
	require.NoError(t, codec.Unmarshal(data, &out))
	assert.Error(t, codec.Unmarshal([]byte("{"), &out))

	stats := codec.GetStats()
	assert.Equal(t, int64(1), stats["encodes"])
	assert.Equal(t, int64(1), stats["decodes"])
}
