package cache

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
)

// maybeCompress gzips a payload when enabled, the payload is at least
// minSize bytes, and compression shrinks it to below maxRatio of the
// original. Returns the bytes to store, whether they are compressed, and
// the achieved ratio (1.0 when stored uncompressed).
func maybeCompress(payload []byte, enabled bool, minSize int, maxRatio float64) (stored []byte, compressed bool, ratio float64) {
	if !enabled || len(payload) < minSize {
		return payload, false, 1.0
	}

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(payload); err != nil {
		return payload, false, 1.0
	}
	if err := w.Close(); err != nil {
		return payload, false, 1.0
	}

	ratio = float64(buf.Len()) / float64(len(payload))
	if ratio >= maxRatio {
		return payload, false, 1.0
	}
	return buf.Bytes(), true, ratio
}

// decompress reverses maybeCompress for a compressed payload.
func decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}
