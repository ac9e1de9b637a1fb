// Package client fetches the employee lead list over HTTP.
package client

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/Makepad-fr/leads/internal/metrics"
	"github.com/Makepad-fr/leads/internal/model"
	"github.com/Makepad-fr/leads/internal/store/leadstore"
)

// DefaultEndpoint is the path of the leads list on the server.
const DefaultEndpoint = "/api/employees/leads"

// RequestIDHeader carries a per-request uuid so server logs can be matched.
const RequestIDHeader = "X-Request-ID"

// Options configure a Client. Only BaseURL is required.
type Options struct {
	BaseURL  string
	Endpoint string        // defaults to DefaultEndpoint
	Token    string        // sent as a bearer token when set
	Timeout  time.Duration // zero means no timeout
	Logger   *log.Entry
	Metrics  *metrics.Fetch
}

// Client implements leadstore.Fetcher.
type Client struct {
	rc       *resty.Client
	endpoint string
	logger   *log.Entry
	metrics  *metrics.Fetch
}

var _ leadstore.Fetcher = (*Client)(nil)

func New(opt Options) *Client {
	logger := opt.Logger
	if logger == nil {
		logger = log.WithField("component", "client")
	}
	endpoint := opt.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	rc := resty.New().
		SetBaseURL(strings.TrimRight(opt.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetLogger(logger)
	if opt.Timeout > 0 {
		rc.SetTimeout(opt.Timeout)
	}
	if opt.Token != "" {
		rc.SetAuthToken(opt.Token)
	}

	return &Client{rc: rc, endpoint: endpoint, logger: logger, metrics: opt.Metrics}
}

// FetchLeads GETs the lead list.
//
// A request that never completes, or whose body is not a JSON array of
// leads, fails with a transport *leadstore.FetchError; a non-2xx answer
// fails with an HTTP one.
func (c *Client) FetchLeads(ctx context.Context) ([]model.Lead, error) {
	reqID := uuid.NewString()
	entry := c.logger.WithField("request_id", reqID)

	start := time.Now()
	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, reqID).
		Get(c.endpoint)
	took := time.Since(start)
	if err != nil {
		c.metrics.ObserveFetch(metrics.OutcomeTransport, took, 0)
		entry.WithError(err).Debug("fetch leads: request failed")
		return nil, leadstore.TransportFailure(err)
	}

	entry = entry.WithFields(log.Fields{"status": resp.StatusCode(), "took": took})
	if !resp.IsSuccess() {
		c.metrics.ObserveFetch(metrics.OutcomeHTTP, took, 0)
		entry.Debug("fetch leads: non-success status")
		return nil, leadstore.HTTPFailure(resp.StatusCode())
	}

	var leads []model.Lead
	if err := json.Unmarshal(resp.Body(), &leads); err != nil {
		c.metrics.ObserveFetch(metrics.OutcomeTransport, took, 0)
		entry.WithError(err).Debug("fetch leads: bad body")
		return nil, leadstore.TransportFailure(err)
	}
	if leads == nil {
		leads = []model.Lead{}
	}

	c.metrics.ObserveFetch(metrics.OutcomeOK, took, len(leads))
	entry.WithField("count", len(leads)).Debug("fetch leads: ok")
	return leads, nil
}
