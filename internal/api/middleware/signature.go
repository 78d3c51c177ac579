package middleware

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"licensedesk/internal/service"
)

const (
	SignatureHeader = "X-Licensedesk-Signature"
	TimestampHeader = "X-Licensedesk-Timestamp"
)

// signingWriter buffers the body so the signature headers can be set before
// anything reaches the client.
type signingWriter struct {
	gin.ResponseWriter
	body   *bytes.Buffer
	status int
}

func (w *signingWriter) WriteHeader(code int) {
	w.status = code
}

func (w *signingWriter) WriteHeaderNow() {}

func (w *signingWriter) Write(b []byte) (int, error) {
	return w.body.Write(b)
}

func (w *signingWriter) WriteString(s string) (int, error) {
	return w.body.WriteString(s)
}

func (w *signingWriter) Status() int {
	return w.status
}

func (w *signingWriter) Size() int {
	return w.body.Len()
}

func (w *signingWriter) Written() bool {
	return w.body.Len() > 0
}

// ResponseSigningMiddleware signs "<timestamp>.<body>" with the Ed25519 key and
// returns the signature and timestamp as headers. An unusable key disables
// signing.
func ResponseSigningMiddleware(privateKeyBase64 string) gin.HandlerFunc {
	if privateKeyBase64 == "" {
		return func(c *gin.Context) { c.Next() }
	}

	privateKey, err := service.DecodePrivateKey(privateKeyBase64)
	if err != nil {
		slog.Error("Invalid response signing key, responses will not be signed", "error", err)
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		original := c.Writer
		w := &signingWriter{ResponseWriter: original, body: &bytes.Buffer{}, status: 200}
		c.Writer = w

		// A panicking handler leaves nothing to sign; the recovery middleware
		// must reach the real writer to send its 500.
		completed := false
		defer func() {
			if !completed {
				c.Writer = original
			}
		}()

		c.Next()
		completed = true

		c.Writer = original
		body := w.body.Bytes()
		timestamp := time.Now().UTC().Format(time.RFC3339)

		// Prevents replay of body with old timestamp
		payload := fmt.Sprintf("%s.%s", timestamp, string(body))
		signature := ed25519.Sign(privateKey, []byte(payload))

		original.Header().Set(SignatureHeader, base64.StdEncoding.EncodeToString(signature))
		original.Header().Set(TimestampHeader, timestamp)
		original.WriteHeader(w.status)
		if len(body) > 0 {
			if _, err := original.Write(body); err != nil {
				slog.Error("Failed to write signed response", "error", err)
			}
		}
	}
}
