package source_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trendhire/internal/core/source"
)

func TestBuildSearchURL_SubstitutesAllPlaceholders(t *testing.T) {
	d := source.Descriptor{
		Name:              "x",
		SearchURLTemplate: "https://x.test/search?q={query}&loc={location}&p={page}",
	}
	got, err := d.BuildSearchURL("ai engineer", "remote", 2)
	require.NoError(t, err)
	assert.Equal(t, "https://x.test/search?q=ai engineer&loc=remote&p=2", got)
}

func TestBuildSearchURL_LocationOnlyWhenPlaceholderPresent(t *testing.T) {
	d := source.Descriptor{
		Name:              "x",
		SearchURLTemplate: "https://x.test/search?q={query}",
	}
	got, err := d.BuildSearchURL("golang", "berlin", 1)
	require.NoError(t, err)
	assert.Equal(t, "https://x.test/search?q=golang", got)
}

func TestBuildSearchURL_EmptyLocationLeavesPlaceholder(t *testing.T) {
	d := source.Descriptor{
		Name:              "x",
		SearchURLTemplate: "https://x.test/search?q={query}&loc={location}",
	}
	got, err := d.BuildSearchURL("golang", "", 1)
	require.NoError(t, err)
	assert.Contains(t, got, "loc={location}")
}

func TestBuildSearchURL_MissingQueryPlaceholder(t *testing.T) {
	d := source.Descriptor{
		Name:              "x",
		SearchURLTemplate: "https://x.test/search?p={page}",
	}
	_, err := d.BuildSearchURL("golang", "", 1)
	require.Error(t, err)
	var terr *source.TemplateError
	assert.ErrorAs(t, err, &terr)
	assert.Equal(t, "x", terr.Source)
}

func TestBuildSearchURL_ResolvesRelativeAgainstBase(t *testing.T) {
	d := source.Descriptor{
		Name:              "x",
		BaseURL:           "https://x.test",
		SearchURLTemplate: "/jobs?q={query}&p={page}",
	}
	got, err := d.BuildSearchURL("golang", "", 3)
	require.NoError(t, err)
	assert.Equal(t, "https://x.test/jobs?q=golang&p=3", got)
}

func TestBuildSearchURL_RelativeWithoutBase(t *testing.T) {
	d := source.Descriptor{
		Name:              "x",
		SearchURLTemplate: "/jobs?q={query}",
	}
	_, err := d.BuildSearchURL("golang", "", 1)
	var terr *source.TemplateError
	assert.ErrorAs(t, err, &terr)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		desc    source.Descriptor
		wantErr bool
	}{
		{"valid", source.Descriptor{Name: "a", SearchURLTemplate: "https://a.test?q={query}"}, false},
		{"no name", source.Descriptor{SearchURLTemplate: "https://a.test?q={query}"}, true},
		{"no template", source.Descriptor{Name: "a"}, true},
		{"no query slot", source.Descriptor{Name: "a", SearchURLTemplate: "https://a.test?p={page}"}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.desc.Validate()
			if c.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHeaders_DefaultUserAgent(t *testing.T) {
	d := source.Descriptor{Name: "x", SearchURLTemplate: "https://x.test?q={query}"}
	h := d.Headers()
	assert.Contains(t, h["User-Agent"], "Mozilla/5.0")

	d.RequestHeaders = map[string]string{"X-Custom": "1"}
	assert.Equal(t, map[string]string{"X-Custom": "1"}, d.Headers())
}

func TestResolveLink(t *testing.T) {
	d := source.Descriptor{Name: "x", BaseURL: "https://x.test", SearchURLTemplate: "https://x.test?q={query}"}

	got, err := d.ResolveLink("/jobs/123")
	require.NoError(t, err)
	assert.Equal(t, "https://x.test/jobs/123", got)

	got, err = d.ResolveLink("https://other.test/jobs/9")
	require.NoError(t, err)
	assert.Equal(t, "https://other.test/jobs/9", got)
}

func TestDefaults_AreValid(t *testing.T) {
	for _, d := range source.Defaults() {
		assert.NoError(t, d.Validate(), d.Name)
	}
}

func TestRegistry(t *testing.T) {
	reg, err := source.NewRegistry(source.Defaults())
	require.NoError(t, err)

	_, ok := reg.Get("linkedin")
	assert.True(t, ok)
	_, ok = reg.Get("nope")
	assert.False(t, ok)
	assert.Len(t, reg.All(), 2)

	_, err = source.NewRegistry([]source.Descriptor{
		{Name: "a", SearchURLTemplate: "https://a.test?q={query}"},
		{Name: "a", SearchURLTemplate: "https://a.test?q={query}"},
	})
	assert.Error(t, err)
}
