package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader     = "Idempotency-Key"
	idempotencyProcessing = "PROCESSING"
	idempotencyLockTTL    = 30 * time.Second
	idempotencyResultTTL  = 24 * time.Hour
)

type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type captureWriter struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the first response for a repeated Idempotency-Key on
// state-changing requests. Keys are scoped per user, method and path. With a
// nil client the middleware passes everything through.
func Idempotency(client *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil {
			c.Next()
			return
		}
		m := c.Request.Method
		if m != http.MethodPost && m != http.MethodPut && m != http.MethodPatch {
			c.Next()
			return
		}
		key := strings.TrimSpace(c.GetHeader(idempotencyHeader))
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		idemKey := idempotencyKey(c, key)

		val, err := client.Get(ctx, idemKey).Result()
		switch {
		case err == nil && val == idempotencyProcessing:
			abortAuth(c, http.StatusConflict, "request with this Idempotency-Key is still in progress")
			return
		case err == nil:
			var prev storedResponse
			if jerr := json.Unmarshal([]byte(val), &prev); jerr == nil && prev.Status > 0 {
				c.Header("X-Idempotency-Hit", "true")
				c.Data(prev.Status, "application/json; charset=utf-8", prev.Body)
				c.Abort()
				return
			}
		case err != redis.Nil:
			log.Printf("[IDEMPOTENCY] request_id=%s redis error: %v", GetRequestID(c), err)
			c.Next()
			return
		}

		acquired, err := client.SetNX(ctx, idemKey, idempotencyProcessing, idempotencyLockTTL).Result()
		if err != nil || !acquired {
			abortAuth(c, http.StatusConflict, "concurrent request with this Idempotency-Key")
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		status := w.Status()
		if status >= http.StatusInternalServerError || !json.Valid(w.buf.Bytes()) {
			// let the client retry after server failures
			client.Del(ctx, idemKey)
			return
		}
		payload, _ := json.Marshal(storedResponse{Status: status, Body: w.buf.Bytes()})
		if err := client.Set(ctx, idemKey, payload, idempotencyResultTTL).Err(); err != nil {
			log.Printf("[IDEMPOTENCY] request_id=%s store failed: %v", GetRequestID(c), err)
		}
	}
}

// idempotencyKey namespaces the client key so a reused value on another
// resource runs its own request instead of replaying a foreign response.
func idempotencyKey(c *gin.Context, key string) string {
	return fmt.Sprintf("idempotency:%d:%s:%s:%s", CurrentUser(c).UserID, c.Request.Method, c.Request.URL.Path, key)
}
