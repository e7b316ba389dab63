// Package proxy serves the credential-hiding forwarder for the Messages API.
// Clients post a message list; the server adds the API key and model.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/alecrj/nutrition/internal/provider/anthropic"
)

// Route is the path clients post to.
const Route = "/api/claude"

const requestIDHeader = "X-Request-ID"

type Options struct {
	APIKey string
	Model  string
	// UpstreamURL overrides the Messages API base URL.
	UpstreamURL string
	HTTPClient  *http.Client
	Logger      *slog.Logger
}

type forwardBody struct {
	Messages  []anthropic.Message `json:"messages"`
	System    string              `json:"system"`
	MaxTokens int                 `json:"max_tokens"`
}

type handler struct {
	opts   Options
	logger *slog.Logger
}

// NewRouter builds the proxy engine.
func NewRouter(opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{opts: opts, logger: logger}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(logger))
	r.GET("/health", h.health)
	r.Any(Route, h.forward)
	return r
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "keyConfigured": h.opts.APIKey != ""})
}

func (h *handler) forward(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
		return
	}
	if h.opts.APIKey == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API key not configured"})
		return
	}

	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "message": err.Error()})
		return
	}
	if msgs := gjson.GetBytes(raw, "messages"); !msgs.Exists() || msgs.Type == gjson.Null {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Messages required"})
		return
	}
	var body forwardBody
	if err := json.Unmarshal(raw, &body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "message": err.Error()})
		return
	}
	if len(body.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Messages required"})
		return
	}
	if body.MaxTokens <= 0 {
		body.MaxTokens = anthropic.DefaultMaxTokens
	}

	client := &anthropic.Client{
		APIKey:     h.opts.APIKey,
		BaseURL:    h.opts.UpstreamURL,
		Model:      h.opts.Model,
		HTTPClient: h.opts.HTTPClient,
	}
	_, upstream, err := client.Messages(c.Request.Context(), anthropic.MessagesRequest{
		MaxTokens: body.MaxTokens,
		System:    body.System,
		Messages:  body.Messages,
	})
	if err != nil {
		var apiErr *anthropic.APIError
		if errors.As(err, &apiErr) {
			h.logger.Warn("upstream error", "status", apiErr.Status, "error", apiErr.Message, "request_id", c.GetString("request_id"))
			c.JSON(apiErr.Status, gin.H{"error": apiErr.Message})
			return
		}
		h.logger.Error("forward failed", "error", err, "request_id", c.GetString("request_id"))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "message": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", upstream)
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(started),
			"request_id", c.GetString("request_id"),
		)
	}
}

// Serve runs the router on addr until ctx is cancelled, then shuts down.
func Serve(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("proxy listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("proxy shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
