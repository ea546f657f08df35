package myhttpclient

import (
	"context"
	"net/url"
	"time"
)

const (
	defaultTimeout = 5 * time.Second
)

//go:generate mockgen -source=api.go -package myhttpclient -destination httpclient_mock.go HTTPSender
type HTTPSender interface {
	PostForm(c context.Context, url string, form url.Values) (int, []byte, error)
}

// New returns a form-posting client guarded by a circuit breaker named after the remote party.
func New(name string, timeout time.Duration) HTTPSender {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return newFormHTTPClient(name, timeout)
}
