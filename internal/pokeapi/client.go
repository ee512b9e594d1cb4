package pokeapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/pokeart/pokeart-go/internal/errors"
	"github.com/pokeart/pokeart-go/internal/httpclient"
	"github.com/pokeart/pokeart-go/internal/logger"
)

// maxRecordBytes caps how much of a metadata body is decoded.
const maxRecordBytes = 4 << 20

// Metadata request outcomes reported to the Observer.
const (
	ResultSuccess         = "success"
	ResultCached          = "cached"
	ResultNotFound        = "not_found"
	ResultInvalidResponse = "invalid_response"
	ResultError           = "error"
)

// Observer receives the outcome of every metadata lookup.
type Observer interface {
	RecordMetadataRequest(result string, duration time.Duration)
}

// Client provides methods for interacting with the PokeAPI pokemon resource
type Client struct {
	config   Config
	http     *httpclient.Client
	cache    *cache.Cache // nil when caching is disabled
	logger   logger.Logger
	observer Observer
}

// NewClient creates a new PokeAPI client on top of the shared HTTP client.
func NewClient(hc *httpclient.Client, config Config, log logger.Logger) (*Client, error) {
	if hc == nil {
		return nil, errors.Newf("HTTP client is required").
			Component("pokeapi").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	u, err := url.Parse(config.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.Newf("invalid API endpoint %q", config.BaseURL).
			Component("pokeapi").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if log == nil {
		log = logger.Global().Module("pokeapi")
	}

	c := &Client{
		config: config,
		http:   hc,
		logger: log,
	}

	if config.CacheTTL > 0 {
		c.cache = cache.New(config.CacheTTL, config.CacheTTL*2)
	}

	c.logger.Debug("PokeAPI client initialized",
		logger.String("base_url", config.BaseURL),
		logger.Duration("cache_ttl", config.CacheTTL))

	return c, nil
}

// SetObserver registers an observer for metadata lookups.
func (c *Client) SetObserver(o Observer) {
	c.observer = o
}

// RecordURL returns the metadata URL for an identifier.
func (c *Client) RecordURL(id int) string {
	return c.config.BaseURL + "/" + strconv.Itoa(id)
}

// FetchRecord retrieves and decodes the metadata record for an identifier.
// Errors are categorized as network, not-found or invalid-response.
func (c *Client) FetchRecord(ctx context.Context, id int) (*Record, error) {
	start := time.Now()
	cacheKey := strconv.Itoa(id)

	if c.cache != nil {
		if cached, found := c.cache.Get(cacheKey); found {
			if rec, ok := cached.(Record); ok {
				c.observe(ResultCached, start)
				c.logger.Debug("PokeAPI record cache hit", logger.Int("identifier", id))
				return &rec, nil
			}
		}
	}

	requestURL := c.RecordURL(id)
	log := c.logger.WithContext(ctx).With(
		logger.String("request_id", uuid.NewString()),
		logger.Int("identifier", id))

	log.Debug("PokeAPI request", logger.String("url", requestURL))

	resp, err := c.http.GetWithHeaders(ctx, requestURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		c.observe(ResultError, start)
		log.Warn("PokeAPI request failed", logger.Error(err))
		return nil, errors.Newf("API failure: %w", err).
			Component("pokeapi").
			Category(errors.CategoryNetwork).
			Context("operation", "fetch_record").
			Context("identifier", id).
			NetworkContext(requestURL).
			Build()
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Debug("failed to close response body", logger.Error(err))
		}
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.observe(ResultNotFound, start)
		log.Info("PokeAPI has no record for identifier")
		return nil, errors.Newf("API did not have data for the requested ID %d", id).
			Component("pokeapi").
			Category(errors.CategoryNotFound).
			Context("operation", "fetch_record").
			Context("identifier", id).
			Context("status_code", resp.StatusCode).
			Build()
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		c.observe(ResultError, start)
		log.Warn("PokeAPI returned unexpected status", logger.Int("status_code", resp.StatusCode))
		return nil, errors.Newf("API failure: unexpected status %d", resp.StatusCode).
			Component("pokeapi").
			Category(errors.CategoryNetwork).
			Context("operation", "fetch_record").
			Context("identifier", id).
			Context("status_code", resp.StatusCode).
			NetworkContext(requestURL).
			Build()
	}

	var rec Record
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxRecordBytes)).Decode(&rec); err != nil {
		c.observe(ResultInvalidResponse, start)
		log.Warn("PokeAPI returned invalid JSON", logger.Error(err))
		return nil, errors.Newf("API did not return valid JSON: %w", err).
			Component("pokeapi").
			Category(errors.CategoryInvalidResponse).
			Context("operation", "fetch_record").
			Context("identifier", id).
			Build()
	}

	// Some mirrors omit the id; the caller's identifier is authoritative
	if rec.ID == 0 {
		rec.ID = id
	}

	if c.cache != nil {
		c.cache.Set(cacheKey, rec, cache.DefaultExpiration)
	}

	c.observe(ResultSuccess, start)
	log.Debug("PokeAPI record fetched",
		logger.String("name", rec.Name),
		logger.Duration("elapsed", time.Since(start)))

	return &rec, nil
}

// ResolveImageURL returns the official artwork URL for an identifier.
func (c *Client) ResolveImageURL(ctx context.Context, id int) (string, error) {
	rec, err := c.FetchRecord(ctx, id)
	if err != nil {
		return "", err
	}
	return rec.ImageURL()
}

// ResolveDisplayName returns the display name for an identifier.
func (c *Client) ResolveDisplayName(ctx context.Context, id int) (string, error) {
	rec, err := c.FetchRecord(ctx, id)
	if err != nil {
		return "", err
	}
	return rec.DisplayName()
}

func (c *Client) observe(result string, start time.Time) {
	if c.observer != nil {
		c.observer.RecordMetadataRequest(result, time.Since(start))
	}
}
