package discover

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapURL_FindsSameDomainLinks(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
<a href="%s/jobs/1">one</a>
<a href="%s/jobs/2">two</a>
<a href="https://elsewhere.test/x">offsite</a>
<a href="mailto:x@example.test">mail</a>
</body></html>`, srv.URL, srv.URL)
	}))
	defer srv.Close()

	res, err := New().MapURL(Request{URL: srv.URL, Depth: 1, LinkLimit: 10})
	require.NoError(t, err)

	assert.Contains(t, res.Links, srv.URL+"/jobs/1")
	assert.Contains(t, res.Links, srv.URL+"/jobs/2")
	assert.NotContains(t, res.Links, "https://elsewhere.test/x")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "", normalize("javascript:void(0)"))
	assert.Equal(t, "", normalize("mailto:x@y.test"))
	assert.Equal(t, "", normalize("/relative"))
	assert.Equal(t, "https://a.test/p", normalize("https://a.test/p#frag"))
}

func TestDomainsMatch(t *testing.T) {
	assert.True(t, domainsMatch("a.test", "a.test", false))
	assert.False(t, domainsMatch("sub.a.test", "a.test", false))
	assert.True(t, domainsMatch("sub.a.test", "a.test", true))
	assert.False(t, domainsMatch("b.test", "a.test", true))
}
