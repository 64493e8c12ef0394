package proxy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreds() Credentials {
	return Credentials{Username: "user", Password: "secret", Host: "127.0.0.1", Port: 1}
}

func TestCredentialsValidate_MissingFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Credentials)
	}{
		{"username", func(c *Credentials) { c.Username = "" }},
		{"password", func(c *Credentials) { c.Password = "" }},
		{"host", func(c *Credentials) { c.Host = "" }},
		{"port", func(c *Credentials) { c.Port = 0 }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			creds := validCreds()
			c.mutate(&creds)
			err := creds.Validate()
			require.Error(t, err)
			var cerr *ConfigError
			assert.ErrorAs(t, err, &cerr)
		})
	}
}

func TestNew_FailsAtConstructionNotFetchTime(t *testing.T) {
	creds := validCreds()
	creds.Password = ""
	_, err := New(creds)
	require.Error(t, err)
	var cerr *ConfigError
	assert.ErrorAs(t, err, &cerr)
}

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	tr := NewDirect()
	resp, err := tr.Fetch(context.Background(), srv.URL, map[string]string{"User-Agent": "test-agent"})
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "<html>ok</html>", resp.Body)
	assert.Equal(t, srv.URL, resp.URL)
}

func TestFetch_NonTwoXX(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	tr := NewDirect()
	_, err := tr.Fetch(context.Background(), srv.URL, nil)
	require.Error(t, err)
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusForbidden, terr.StatusCode)
}

func TestFetch_ConnectionError(t *testing.T) {
	tr := NewDirect()
	_, err := tr.Fetch(context.Background(), "http://127.0.0.1:1", nil)
	require.Error(t, err)
	var terr *TransportError
	assert.ErrorAs(t, err, &terr)
}

func TestFetch_ErrorDoesNotLeakCredentials(t *testing.T) {
	tr, err := New(validCreds())
	require.NoError(t, err)
	defer tr.Close()

	// Port 1 is unassigned, so the proxy connect fails immediately.
	_, err = tr.Fetch(context.Background(), "http://example.test/", nil)
	require.Error(t, err)
	assert.False(t, strings.Contains(err.Error(), "secret"), "error must not contain the proxy password: %v", err)
	assert.False(t, strings.Contains(err.Error(), "user:"), "error must not contain proxy userinfo: %v", err)
}

func TestFetch_ThroughProxy(t *testing.T) {
	// Stand in for the upstream proxy: absolute-form request URI and basic
	// credentials prove the request was routed through it.
	var gotAuth, gotURI string
	proxySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Proxy-Authorization")
		gotURI = r.RequestURI
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("proxied"))
	}))
	defer proxySrv.Close()

	proxyURL, err := url.Parse(proxySrv.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(proxyURL.Port())
	require.NoError(t, err)

	tr, err := New(Credentials{Username: "user", Password: "secret", Host: proxyURL.Hostname(), Port: port})
	require.NoError(t, err)
	defer tr.Close()

	resp, err := tr.Fetch(context.Background(), "http://target.test/listings", nil)
	require.NoError(t, err)
	assert.Equal(t, "proxied", resp.Body)
	assert.Equal(t, "http://target.test/listings", gotURI)
	assert.NotEmpty(t, gotAuth)
}
