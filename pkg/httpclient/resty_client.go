package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestyClient adapts resty.Client to the httpclient.Client interface.
// Retries are bounded and internal to a single request; callers treat an
// exhausted retry budget as a plain transport failure.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a RestyClient with the given timeout and retry budget.
func NewRestyClient(timeout time.Duration, retries int) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(timeout, retries)}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout, 0)
}

func newRestyBaseClient(timeout time.Duration, retries int) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	if retries > 0 {
		c.SetRetryCount(retries)
		c.SetRetryWaitTime(500 * time.Millisecond)
		c.SetRetryMaxWaitTime(5 * time.Second)
	}
	return c
}

// Get performs an HTTP GET request with the specified context, URL, and headers.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, err
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
