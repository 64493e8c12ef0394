package proxy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trendhire/internal/logger"
)

const fetchTimeout = 30 * time.Second

// Credentials for the upstream anti-blocking proxy. Treated as a secret:
// they are never logged and never embedded in error messages.
type Credentials struct {
	Username string
	Password string
	Host     string
	Port     int
	APIKey   string
}

// ConfigError reports missing or invalid proxy credentials. It is fatal at
// construction time; a transport with bad credentials is never built.
type ConfigError struct{ Reason string }

func (e *ConfigError) Error() string { return "proxy config: " + e.Reason }

func (c Credentials) Validate() error {
	switch {
	case c.Username == "":
		return &ConfigError{Reason: "username is required"}
	case c.Password == "":
		return &ConfigError{Reason: "password is required"}
	case c.Host == "":
		return &ConfigError{Reason: "host is required"}
	case c.Port <= 0:
		return &ConfigError{Reason: "port is required"}
	}
	return nil
}

// TransportError is the uniform failure for fetches: connection errors,
// timeouts and non-2xx statuses all surface as one kind. StatusCode is zero
// when the request never produced a response.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Response is the raw fetch result handed to the extractor.
type Response struct {
	URL        string
	StatusCode int
	Body       string
}

// Transport performs HTTP GETs routed through the authenticated proxy. It
// owns one shared connection pool and holds no per-call mutable state, so a
// single instance is safe for any number of concurrent fetches.
type Transport struct {
	client *http.Client
	log    *logger.Logger
}

// New builds a Transport from validated credentials. Every request issued by
// the returned transport goes through the proxy; there is no unproxied path.
func New(creds Credentials) (*Transport, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	proxyURL := &url.URL{
		Scheme: "http",
		User:   url.UserPassword(creds.Username, creds.Password),
		Host:   fmt.Sprintf("%s:%d", creds.Host, creds.Port),
	}

	client := &http.Client{
		Timeout: fetchTimeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyURL(proxyURL),
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 20,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	return &Transport{client: client, log: logger.New("ProxyTransport")}, nil
}

// NewDirect builds a Transport that does not go through a proxy. It exists
// for local development and tests only.
func NewDirect() *Transport {
	return &Transport{
		client: &http.Client{Timeout: fetchTimeout},
		log:    logger.New("ProxyTransport"),
	}
}

// Fetch GETs url through the proxy with the given headers. Connection
// failures, timeouts and non-2xx statuses all return a *TransportError.
// Safe to call from many goroutines at once.
func (t *Transport) Fetch(ctx context.Context, rawURL string, headers map[string]string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: redact(err)}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: redact(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: redact(err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	t.log.Debug().Str("url", rawURL).Int("status", resp.StatusCode).Msg("fetch ok")
	return &Response{URL: rawURL, StatusCode: resp.StatusCode, Body: string(body)}, nil
}

// Close releases idle connections held by the pool.
func (t *Transport) Close() {
	t.client.CloseIdleConnections()
}

// redact strips userinfo from url.Error messages so proxy credentials never
// leak through wrapped transport failures.
func redact(err error) error {
	if uerr, ok := err.(*url.Error); ok {
		if u, perr := url.Parse(uerr.URL); perr == nil && u.User != nil {
			u.User = nil
			return fmt.Errorf("%s %s: %v", uerr.Op, u.String(), uerr.Err)
		}
	}
	msg := err.Error()
	if i := strings.Index(msg, "@"); i >= 0 && strings.Contains(msg[:i], "://") {
		// crude fallback: drop everything between scheme and host
		if j := strings.Index(msg, "://"); j >= 0 && j < i {
			msg = msg[:j+3] + msg[i+1:]
			return fmt.Errorf("%s", msg)
		}
	}
	return err
}
