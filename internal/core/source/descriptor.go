package source

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Descriptor declares one crawlable source: its identity, the shape of its
// search URLs, and how to locate listings and fields in a result page.
// Descriptors are built once at configuration time and shared read-only
// across concurrent crawls.
type Descriptor struct {
	Name                string            `yaml:"name" json:"name"`
	BaseURL             string            `yaml:"base_url" json:"base_url"`
	SearchURLTemplate   string            `yaml:"search_url_template" json:"search_url_template"`
	ListingSelector     string            `yaml:"listing_selector" json:"listing_selector"`
	FieldSelectors      map[string]string `yaml:"field_selectors" json:"field_selectors"`
	DescriptionSelector string            `yaml:"description_selector,omitempty" json:"description_selector,omitempty"`
	RequestHeaders      map[string]string `yaml:"request_headers,omitempty" json:"request_headers,omitempty"`
}

// TemplateError reports a malformed search URL template. It is fatal for the
// source it belongs to and is raised before any network call.
type TemplateError struct {
	Source string
	Reason string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("source %s: bad url template: %s", e.Source, e.Reason)
}

// Validate checks the invariants that make a descriptor usable.
func (d *Descriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("descriptor name is required")
	}
	if strings.TrimSpace(d.SearchURLTemplate) == "" {
		return fmt.Errorf("descriptor %s: search_url_template is required", d.Name)
	}
	if !strings.Contains(d.SearchURLTemplate, "{query}") {
		return &TemplateError{Source: d.Name, Reason: "missing {query} placeholder"}
	}
	return nil
}

// Headers returns the request headers for this source, falling back to a
// realistic browser identification when none are configured.
func (d *Descriptor) Headers() map[string]string {
	if len(d.RequestHeaders) > 0 {
		return d.RequestHeaders
	}
	return map[string]string{"User-Agent": defaultUserAgent}
}

// ResolveLink resolves a possibly-relative link (e.g. an extracted
// detail_link) against the source's base URL.
func (d *Descriptor) ResolveLink(link string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return "", err
	}
	if u.IsAbs() {
		return u.String(), nil
	}
	base, err := url.Parse(d.BaseURL)
	if err != nil || !base.IsAbs() {
		return "", fmt.Errorf("source %s: cannot resolve relative link without base_url", d.Name)
	}
	return base.ResolveReference(u).String(), nil
}

// BuildSearchURL substitutes query, location and page into the search URL
// template. {query} is mandatory; {location} and {page} are filled only when
// the template carries the placeholder. Relative results are resolved
// against BaseURL.
func (d *Descriptor) BuildSearchURL(query, location string, page int) (string, error) {
	if !strings.Contains(d.SearchURLTemplate, "{query}") {
		return "", &TemplateError{Source: d.Name, Reason: "missing {query} placeholder"}
	}

	u := strings.ReplaceAll(d.SearchURLTemplate, "{query}", query)
	if location != "" && strings.Contains(u, "{location}") {
		u = strings.ReplaceAll(u, "{location}", location)
	}
	if strings.Contains(u, "{page}") {
		u = strings.ReplaceAll(u, "{page}", strconv.Itoa(page))
	}

	// Substituted values are taken literally; url.Parse only validates the
	// result and resolves it against the base when the template is relative.
	parsed, err := url.Parse(u)
	if err != nil {
		return "", &TemplateError{Source: d.Name, Reason: fmt.Sprintf("substitution produced invalid url: %v", err)}
	}
	if !parsed.IsAbs() {
		base, err := url.Parse(d.BaseURL)
		if err != nil || !base.IsAbs() {
			return "", &TemplateError{Source: d.Name, Reason: "relative template and no usable base_url"}
		}
		parsed = base.ResolveReference(parsed)
	}
	return parsed.String(), nil
}
