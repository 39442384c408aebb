package datagov

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/godilite/mgnrega-dashboard/internal/metrics"
	"go.uber.org/zap"
)

const (
	DefaultEndpoint = "https://api.data.gov.in/resource/ee03643a-ee4c-48c2-ac30-9f2ff26ab722"
	DefaultState    = "MAHARASHTRA"

	recordLimit    = "100"
	defaultTimeout = 10 * time.Second
)

var (
	ErrMissingAPIKey = errors.New("data.gov.in api key is required")
	ErrRemoteFetch   = errors.New("remote fetch error")
	ErrNetwork       = errors.New("network error")
	ErrDecode        = errors.New("decode error")
)

// RemoteFetchError is returned when data.gov.in answers with a non-2xx status.
type RemoteFetchError struct {
	StatusCode int
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("%s: status %d", ErrRemoteFetch, e.StatusCode)
}

func (e *RemoteFetchError) Is(target error) bool {
	return target == ErrRemoteFetch
}

type response struct {
	Records []Record `json:"records"`
}

type Options struct {
	endpoint   string
	state      string
	httpClient *http.Client
	logger     *zap.Logger
}

type Option func(*Options)

func WithEndpoint(endpoint string) Option {
	return func(o *Options) { o.endpoint = endpoint }
}

func WithState(state string) Option {
	return func(o *Options) { o.state = state }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) { o.httpClient = c }
}

func WithTimeout(d time.Duration) Option {
	return func(o *Options) { o.httpClient = &http.Client{Timeout: d} }
}

func WithLogger(logger *zap.Logger) Option {
	return func(o *Options) { o.logger = logger }
}

// Client fetches MGNREGA district records from data.gov.in.
type Client struct {
	endpoint string
	apiKey   string
	state    string
	http     *http.Client
	logger   *zap.Logger
}

// New builds a Client. The API key is mandatory and must come from configuration.
func New(apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, ErrMissingAPIKey
	}

	options := &Options{
		endpoint:   DefaultEndpoint,
		state:      DefaultState,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(options)
	}

	if _, err := url.ParseRequestURI(options.endpoint); err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", options.endpoint, err)
	}
	if options.logger == nil {
		options.logger = zap.NewNop()
	}

	return &Client{
		endpoint: options.endpoint,
		apiKey:   apiKey,
		state:    options.state,
		http:     options.httpClient,
		logger:   options.logger.Named("datagov"),
	}, nil
}

func (c *Client) requestURL(district string) string {
	q := url.Values{}
	q.Set("api-key", c.apiKey)
	q.Set("format", "json")
	q.Set("filters[state_name]", c.state)
	q.Set("filters[district_name]", strings.ToUpper(district))
	q.Set("limit", recordLimit)
	return c.endpoint + "?" + q.Encode()
}

// FetchRecords issues one GET for the district and returns its raw records.
// A body without a records field yields an empty slice.
func (c *Client) FetchRecords(ctx context.Context, district string) ([]Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(district), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("network_error").Inc()
		c.logger.Error("upstream request failed", zap.String("district", district), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	metrics.UpstreamDurationMs.Observe(float64(time.Since(start).Milliseconds()))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.UpstreamRequestsTotal.WithLabelValues("remote_error").Inc()
		c.logger.Error("upstream returned error status",
			zap.String("district", district),
			zap.Int("status", resp.StatusCode))
		return nil, &RemoteFetchError{StatusCode: resp.StatusCode}
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues("decode_error").Inc()
		c.logger.Error("upstream body decode failed", zap.String("district", district), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if body.Records == nil {
		body.Records = []Record{}
	}

	metrics.UpstreamRequestsTotal.WithLabelValues("ok").Inc()
	c.logger.Info("fetched records",
		zap.String("district", district),
		zap.Int("count", len(body.Records)),
		zap.Duration("duration", time.Since(start)))

	return body.Records, nil
}
