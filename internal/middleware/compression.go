package middleware

import (
	"compress/gzip"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// CompressionConfig holds configuration for response compression
type CompressionConfig struct {
	MinSize          int
	CompressionLevel int
	ContentTypes     []string
}

// DefaultCompressionConfig returns the default compression configuration
func DefaultCompressionConfig() CompressionConfig {
	return CompressionConfig{
		MinSize:          1024,
		CompressionLevel: gzip.DefaultCompression,
		ContentTypes: []string{
			"application/json",
			"text/plain",
			"text/html",
		},
	}
}

// CompressionMiddleware gzips responses for clients that accept it. Writers
// are pooled; small responses pass through uncompressed.
type CompressionMiddleware struct {
	config CompressionConfig
	pool   sync.Pool

	totalRequests      int64
	compressedRequests int64
	bytesIn            int64
	bytesOut           int64
}

// NewCompressionMiddleware creates a new compression middleware
func NewCompressionMiddleware(config CompressionConfig) *CompressionMiddleware {
	cm := &CompressionMiddleware{config: config}
	cm.pool = sync.Pool{
		New: func() interface{} {
			w, _ := gzip.NewWriterLevel(nil, config.CompressionLevel)
			return w
		},
	}
	return cm
}

// Handler returns the gin middleware.
func (cm *CompressionMiddleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		atomic.AddInt64(&cm.totalRequests, 1)

		if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
			c.Next()
			return
		}

		gw := &gzipWriter{ResponseWriter: c.Writer, cm: cm}
		c.Writer = gw
		defer gw.finish()

		c.Next()
	}
}

// GetStats returns compression counters.
func (cm *CompressionMiddleware) GetStats() map[string]interface{} {
	in := atomic.LoadInt64(&cm.bytesIn)
	out := atomic.LoadInt64(&cm.bytesOut)

	ratio := 0.0
	if in > 0 {
		ratio = float64(out) / float64(in)
	}

	return map[string]interface{}{
		"total_requests":      atomic.LoadInt64(&cm.totalRequests),
		"compressed_requests": atomic.LoadInt64(&cm.compressedRequests),
		"bytes_in":            in,
		"bytes_out":           out,
		"compression_ratio":   ratio,
	}
}

func (cm *CompressionMiddleware) shouldCompress(contentType string) bool {
	for _, ct := range cm.config.ContentTypes {
		if strings.Contains(contentType, ct) {
			return true
		}
	}
	return false
}

// gzipWriter buffers the first write to decide whether compression is worth
// it, then streams the rest through a pooled gzip writer.
type gzipWriter struct {
	gin.ResponseWriter
	cm       *CompressionMiddleware
	gz       *gzip.Writer
	counter  *countingWriter
	decided  bool
	passthru bool
}

func (w *gzipWriter) Write(data []byte) (int, error) {
	if !w.decided {
		w.decided = true

		if len(data) < w.cm.config.MinSize || !w.cm.shouldCompress(w.Header().Get("Content-Type")) {
			w.passthru = true
		} else {
			w.Header().Set("Content-Encoding", "gzip")
			w.Header().Set("Vary", "Accept-Encoding")
			w.Header().Del("Content-Length")

			w.counter = &countingWriter{inner: w.ResponseWriter}
			w.gz = w.cm.pool.Get().(*gzip.Writer)
			w.gz.Reset(w.counter)

			atomic.AddInt64(&w.cm.compressedRequests, 1)
		}
	}

	if w.passthru {
		return w.ResponseWriter.Write(data)
	}

	atomic.AddInt64(&w.cm.bytesIn, int64(len(data)))
	return w.gz.Write(data)
}

func (w *gzipWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *gzipWriter) finish() {
	if w.gz == nil {
		return
	}

	if err := w.gz.Close(); err == nil {
		atomic.AddInt64(&w.cm.bytesOut, w.counter.written)
	}
	w.cm.pool.Put(w.gz)
	w.gz = nil
}

type countingWriter struct {
	inner   gin.ResponseWriter
	written int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.inner.Write(p)
	cw.written += int64(n)
	return n, err
}
