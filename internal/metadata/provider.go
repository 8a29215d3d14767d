// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/seqforge/internal/logging"
	"github.com/tomtom215/seqforge/internal/metrics"
)

var (
	// ErrNotFound is returned when the provider has no record for an item.
	ErrNotFound = errors.New("item not found by metadata provider")

	// ErrUnauthorized is returned when the provider rejects the API key.
	ErrUnauthorized = errors.New("metadata provider rejected credentials")
)

// Details is the enriched metadata of one item.
type Details struct {
	IMDbID string  `json:"imdb,omitempty"`
	Title  string  `json:"title"`
	Year   string  `json:"year"`
	Img    string  `json:"img"`
	Rating float64 `json:"rating"`
}

// Provider fetches enriched metadata for an item.
type Provider interface {
	Fetch(ctx context.Context, info Info) (Details, error)
}

// StatusError is an unexpected HTTP status from the provider.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("metadata provider returned HTTP %d", e.Code)
}

// IsTransient reports whether err is worth retrying: network failures,
// HTTP 429 and 5xx responses, and half-open breaker rejections.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	if errors.Is(err, gobreaker.ErrTooManyRequests) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// HTTPProviderConfig configures an HTTPProvider.
type HTTPProviderConfig struct {
	// BaseURL is the OMDb-style endpoint, e.g. https://www.omdbapi.com/.
	BaseURL string

	// APIKey is sent as the apikey query parameter when set.
	APIKey string

	// Rate is the maximum number of requests per second. Zero means unlimited.
	Rate float64

	// Timeout bounds each HTTP request. Default: 10s.
	Timeout time.Duration

	// Client overrides the HTTP client (tests).
	Client *http.Client
}

// HTTPProvider queries an OMDb-style JSON API by title and year.
type HTTPProvider struct {
	baseURL *url.URL
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[Details]
}

// omdbResponse is the subset of the OMDb payload that is used.
type omdbResponse struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Poster     string `json:"Poster"`
	IMDbRating string `json:"imdbRating"`
	IMDbID     string `json:"imdbID"`
}

// NewHTTPProvider creates a provider with a circuit breaker named "metadata-api".
func NewHTTPProvider(cfg HTTPProviderConfig) (*HTTPProvider, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse provider url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("provider url must be http or https: %q", cfg.BaseURL)
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if cfg.Rate > 0 {
		limit = rate.Limit(cfg.Rate)
	}

	cbName := "metadata-api"
	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)

	cb := gobreaker.NewCircuitBreaker[Details](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A missing title is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] State transition")
			metrics.RecordCircuitBreakerTransition(name, from.String(), to.String(), stateToInt(to))
		},
	})

	return &HTTPProvider{
		baseURL: base,
		apiKey:  cfg.APIKey,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		cb:      cb,
	}, nil
}

// Fetch implements Provider.
func (p *HTTPProvider) Fetch(ctx context.Context, info Info) (Details, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return Details{}, err
	}
	return p.cb.Execute(func() (Details, error) {
		return p.fetch(ctx, info)
	})
}

func (p *HTTPProvider) fetch(ctx context.Context, info Info) (Details, error) {
	u := *p.baseURL
	q := u.Query()
	q.Set("t", info.Title)
	if info.Year != "" && info.Year != "NULL" {
		q.Set("y", info.Year)
	}
	q.Set("type", "movie")
	if p.apiKey != "" {
		q.Set("apikey", p.apiKey)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return Details{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Details{}, fmt.Errorf("request metadata: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse
		_ = resp.Body.Close()                 //nolint:errcheck // body close
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return Details{}, ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return Details{}, &StatusError{Code: resp.StatusCode}
	}

	var body omdbResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Details{}, fmt.Errorf("decode metadata response: %w", err)
	}
	if !strings.EqualFold(body.Response, "True") {
		if strings.Contains(strings.ToLower(body.Error), "api key") {
			return Details{}, fmt.Errorf("%w: %s", ErrUnauthorized, body.Error)
		}
		return Details{}, fmt.Errorf("%w: %s", ErrNotFound, body.Error)
	}

	rating, err := strconv.ParseFloat(body.IMDbRating, 64)
	if err != nil {
		rating = 0
	}

	return Details{
		IMDbID: body.IMDbID,
		Title:  body.Title,
		Year:   body.Year,
		Img:    body.Poster,
		Rating: rating,
	}, nil
}

// State returns the breaker state name.
func (p *HTTPProvider) State() string {
	return p.cb.State().String()
}

func stateToInt(state gobreaker.State) int {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
