package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{
		"Content-Type": []string{"application/json"},
		"X-Custom":     []string{"a", "b"},
	}
	body := []byte(`{"tables":[{"id":1}]}`)

	encoded, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(encoded)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, hdr, gotHdr)
	assert.Equal(t, body, gotBody)
}

func TestPayloadEmptyBody(t *testing.T) {
	encoded, err := encodePayload(http.StatusNoContent, http.Header{}, nil)
	require.NoError(t, err)

	status, hdr, body, ok := decodePayload(encoded)
	require.True(t, ok)
	assert.Equal(t, http.StatusNoContent, status)
	assert.NotNil(t, hdr)
	assert.Empty(t, body)
}

func TestDecodePayloadRejectsTruncated(t *testing.T) {
	for _, bs := range [][]byte{nil, {}, {0, 0, 0}, {0, 0, 0, 200, 0, 0, 0, 99}} {
		_, _, _, ok := decodePayload(bs)
		assert.False(t, ok)
	}
}

func TestAsInt64(t *testing.T) {
	assert.Equal(t, int64(7), asInt64(int64(7)))
	assert.Equal(t, int64(7), asInt64(7))
	assert.Equal(t, int64(7), asInt64(7.9))
	assert.Equal(t, int64(7), asInt64("7"))
	assert.Equal(t, int64(0), asInt64("seven"))
	assert.Equal(t, int64(0), asInt64(nil))
}
