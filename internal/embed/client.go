package embed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// ErrEmbedding wraps any model load or inference failure. Fatal for the
// analysis attempt that hit it; never retried automatically.
var ErrEmbedding = errors.New("embedding failed")

// Config configures the embedding client.
type Config struct {
	APIKey  string
	BaseURL string // OpenAI-compatible endpoint; point at a local sentence-transformers server for offline use
	Model   string

	RequestsPerSecond float64 // outbound rate limit; <= 0 disables
	Burst             int

	RedisURL   string // empty disables the L2 vector cache
	CacheTTL   time.Duration
	MaxEntries int
}

// Client embeds texts through a shared sentence-embedding model behind
// an OpenAI-compatible API. Create one per process and inject it; it is
// safe for concurrent use and holds no per-call state.
type Client struct {
	api     *openai.Client
	model   string
	limiter *rate.Limiter
	cache   *vectorCache

	calls  atomic.Int64
	errors atomic.Int64
}

// New builds the embedding client. The model itself lives server-side;
// nothing is loaded here, so construction is cheap and never fails.
func New(cfg Config) *Client {
	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 1000
	}

	return &Client{
		api:     openai.NewClientWithConfig(apiCfg),
		model:   cfg.Model,
		limiter: limiter,
		cache:   newVectorCache(cfg.RedisURL, ttl, maxEntries),
	}
}

// Embed returns the embedding vector for text, consulting the cache
// before calling the model.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(c.model, text)
	if vec, ok := c.cache.get(ctx, key); ok {
		return vec, nil
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate wait: %w", ErrEmbedding, err)
		}
	}

	c.calls.Add(1)
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		c.errors.Add(1)
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		c.errors.Add(1)
		return nil, fmt.Errorf("%w: empty response for %d-char text", ErrEmbedding, len(text))
	}

	vec := resp.Data[0].Embedding
	c.cache.set(ctx, key, vec)
	return vec, nil
}

// Similarity embeds both texts and returns their cosine similarity.
func (c *Client) Similarity(ctx context.Context, a, b string) (float64, error) {
	va, err := c.Embed(ctx, a)
	if err != nil {
		return 0, err
	}
	vb, err := c.Embed(ctx, b)
	if err != nil {
		return 0, err
	}

	sim := Cosine(va, vb)
	slog.Debug("embedding similarity computed",
		slog.Float64("cosine", sim),
		slog.Int("dims", len(va)),
	)
	return sim, nil
}

// Stats returns model call/error counters and cache hit/miss counters.
func (c *Client) Stats() (calls, errs, cacheHits, cacheMisses int64) {
	hits, misses := c.cache.Stats()
	return c.calls.Load(), c.errors.Load(), hits, misses
}
