package myhttpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/MarcGrol/canpayshop/lib/mylog"
)

const (
	breakerOpenTimeout      = 30 * time.Second
	breakerFailureThreshold = 5
)

var errServerSide = errors.New("server side failure")

type response struct {
	status int
	body   []byte
}

type formHTTPClient struct {
	logger     mylog.Logger
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[response]
}

func newFormHTTPClient(name string, timeout time.Duration) *formHTTPClient {
	logger := mylog.New("myhttpclient")
	return &formHTTPClient{
		logger: logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: gobreaker.NewCircuitBreaker[response](gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     breakerOpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerFailureThreshold
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.Log(context.Background(), name, mylog.SeverityWarn, "Circuit breaker %s: %s -> %s", name, from, to)
			},
		}),
	}
}

// PostForm returns the status and body of any http response; only transport problems, including an open
// circuit, end up as error.
func (c *formHTTPClient) PostForm(ctx context.Context, url string, form url.Values) (int, []byte, error) {
	var resp response
	_, err := c.breaker.Execute(func() (response, error) {
		var err error
		resp, err = c.send(ctx, url, form)
		if err != nil {
			return resp, err
		}
		if resp.status >= http.StatusInternalServerError {
			return resp, errServerSide
		}
		return resp, nil
	})
	if err != nil && !errors.Is(err, errServerSide) {
		return 0, []byte{}, err
	}

	return resp.status, resp.body, nil
}

func (c *formHTTPClient) send(ctx context.Context, url string, form url.Values) (response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(form.Encode()))
	if err != nil {
		return response{}, fmt.Errorf("error creating http request for POST %s: %s", url, err)
	}

	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "application/json")

	c.logger.Log(ctx, "", mylog.SeverityDebug, "HTTP request: POST %s", url)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return response{}, fmt.Errorf("error sending POST %s: %w", url, err)
	}
	defer httpResp.Body.Close()

	respPayload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return response{}, fmt.Errorf("error reading response POST %s: %w", url, err)
	}

	c.logger.Log(ctx, "", mylog.SeverityDebug, "HTTP resp: %d", httpResp.StatusCode)

	return response{status: httpResp.StatusCode, body: respPayload}, nil
}
