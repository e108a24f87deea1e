package kakao

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"blogsearch/internal/config"
	"blogsearch/internal/metrics"
	"blogsearch/internal/search"
)

const (
	BlogSearchPath = "/v2/search/blog"
	AuthScheme     = "KakaoAK"

	maxBodySize = 1 << 20
)

// Client calls the blog search endpoint. One outbound request per Search call,
// no retries and no caching.
type Client struct {
	cfg      config.UpstreamConfig
	client   *http.Client
	logger   *logrus.Logger
	limiter  *rate.Limiter
	endpoint string
}

var _ search.Searcher = (*Client)(nil)

func New(cfg config.UpstreamConfig, logger *logrus.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &search.ConfigurationError{Field: "upstream.api_key", Reason: "credential is required"}
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, &search.ConfigurationError{Field: "upstream.base_url", Reason: "invalid url " + strconv.Quote(cfg.BaseURL)}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	c := &Client{
		cfg:      cfg,
		logger:   logger,
		client:   newHTTPClient(cfg),
		endpoint: base.JoinPath(BlogSearchPath).String(),
	}
	if cfg.RateLimit > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c, nil
}

func newHTTPClient(cfg config.UpstreamConfig) *http.Client {
	t := &http.Transport{
		Proxy:             http.ProxyFromEnvironment,
		MaxIdleConns:      100,
		IdleConnTimeout:   90 * time.Second,
		ForceAttemptHTTP2: true,
	}
	return &http.Client{Transport: t, Timeout: cfg.Timeout}
}

// Endpoint returns the full URL requests are sent to, without query.
func (c *Client) Endpoint() string { return c.endpoint }

// Search implements search.Searcher.
func (c *Client) Search(ctx context.Context, params search.Params) (*search.Collection, error) {
	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid search params")
	}

	start := time.Now()
	out, outcome, err := c.do(ctx, params)
	metrics.UpstreamRequestDuration.Observe(time.Since(start).Seconds())
	metrics.UpstreamRequestsTotal.WithLabelValues(outcome).Inc()
	return out, err
}

func (c *Client) do(ctx context.Context, params search.Params) (*search.Collection, string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, "rate_limit", errors.WithStack(&search.TransportError{Op: "rate_limit", Err: err})
		}
	}

	q := url.Values{}
	q.Set("query", params.Query)
	q.Set("sort", string(params.Sort))
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("size", strconv.Itoa(params.Size))
	target := c.endpoint + "?" + q.Encode()

	if c.logger.IsLevelEnabled(logrus.DebugLevel) {
		c.logger.WithFields(logrus.Fields{
			"query": params.Query,
			"sort":  params.Sort,
			"page":  params.Page,
			"size":  params.Size,
		}).Debug("upstream.request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "transport", errors.WithStack(&search.TransportError{Op: "build request", Err: err})
	}
	req.Header.Set("Authorization", AuthScheme+" "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, "transport", errors.WithStack(&search.TransportError{Op: "do", Err: err})
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return nil, "transport", errors.WithStack(&search.TransportError{Op: "read body", Status: res.StatusCode, Err: err})
	}

	if c.logger.IsLevelEnabled(logrus.DebugLevel) {
		c.logger.WithFields(logrus.Fields{
			"status":        res.StatusCode,
			"response_body": string(data),
		}).Debug("upstream.response")
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, "status", errors.WithStack(&search.TransportError{
			Op:     "status",
			Status: res.StatusCode,
			Err:    errors.New(upstreamMessage(data, res.Status)),
		})
	}

	out, err := decode(data)
	if err != nil {
		return nil, "decode", errors.WithStack(&search.TransportError{Op: "decode", Status: res.StatusCode, Err: err})
	}
	return out, "ok", nil
}

type document struct {
	Title     string `json:"title"`
	Contents  string `json:"contents"`
	URL       string `json:"url"`
	BlogName  string `json:"blogname"`
	Thumbnail string `json:"thumbnail"`
	Datetime  string `json:"datetime"`
}

type response struct {
	Meta      search.Meta `json:"meta"`
	Documents []document  `json:"documents"`
}

func decode(data []byte) (*search.Collection, error) {
	if err := validateResponse(data); err != nil {
		return nil, err
	}
	var r response
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(err, "decode documents")
	}
	out := &search.Collection{
		Meta:  r.Meta,
		Items: make([]search.Item, 0, len(r.Documents)), // [] а не null
	}
	for _, d := range r.Documents {
		out.Items = append(out.Items, search.Item{
			Thumbnail: d.Thumbnail,
			Title:     d.Title,
			BlogName:  d.BlogName,
			Contents:  d.Contents,
			URL:       d.URL,
			Datetime:  d.Datetime,
		})
	}
	return out, nil
}

// upstreamMessage pulls the provider's error text out of an error body.
func upstreamMessage(data []byte, fallback string) string {
	var e struct {
		ErrorType string `json:"errorType"`
		Message   string `json:"message"`
	}
	if json.Unmarshal(data, &e) == nil && e.Message != "" {
		if e.ErrorType != "" {
			return e.ErrorType + ": " + e.Message
		}
		return e.Message
	}
	return fallback
}
