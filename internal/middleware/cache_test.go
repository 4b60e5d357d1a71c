package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureWriterWithinLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 64}

	_, err := cw.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", cw.buf.String())
	assert.Equal(t, int64(5), cw.size)
	assert.False(t, cw.overflowed())
	// The client still receives the full body.
	assert.Equal(t, "hello", rec.Body.String())
}

func TestCaptureWriterCountsPastLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 10}

	body := strings.Repeat("x", 25)
	_, err := cw.Write([]byte(body[:8]))
	require.NoError(t, err)
	_, err = cw.Write([]byte(body[8:]))
	require.NoError(t, err)

	// The buffer caps at the limit, size reflects the true response
	// length, and overflowed flags the response as uncacheable.
	assert.Equal(t, int64(10), int64(cw.buf.Len()))
	assert.Equal(t, int64(25), cw.size)
	assert.True(t, cw.overflowed())
	assert.Equal(t, body, rec.Body.String())
}

func TestCaptureWriterNoLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	cw := &captureWriter{ResponseWriter: rec, status: http.StatusOK, limit: 0}

	body := strings.Repeat("x", 4096)
	_, err := cw.Write([]byte(body))
	require.NoError(t, err)
	assert.Equal(t, len(body), cw.buf.Len())
	assert.False(t, cw.overflowed())
}

func TestPayloadRoundTrip(t *testing.T) {
	hdr := http.Header{"Content-Type": []string{"application/json"}}
	body := []byte(`{"items":[]}`)

	payload, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, body, gotBody)
}

func TestDecodePayloadRejectsGarbage(t *testing.T) {
	for _, bs := range [][]byte{nil, []byte("short"), []byte("\x00\x00\x00\xc8\xff\xff\xff\xff")} {
		_, _, _, ok := decodePayload(bs)
		assert.False(t, ok)
	}
}
