package discover

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly"

	"trendhire/internal/logger"
)

// Service discovers links on a page. It backs the descriptor-authoring
// endpoint: before writing selectors for a new source, operators use it to
// see what listing and detail URLs a search page exposes.
type Service struct {
	log *logger.Logger
}

func New() *Service { return &Service{log: logger.New("Discover")} }

type Request struct {
	URL               string
	Depth             int
	LinkLimit         int
	IncludeSubdomains bool
}

type Result struct {
	Links []string `json:"links"`
}

func (s *Service) MapURL(req Request) (*Result, error) {
	s.log.LogDebugf("discover start url=%s depth=%d limit=%d", req.URL, req.Depth, req.LinkLimit)
	links := make(map[string]struct{})
	var mu sync.Mutex

	c := colly.NewCollector(colly.MaxDepth(maxInt(1, req.Depth)), colly.Async(true), colly.IgnoreRobotsTxt())
	dom := extractDomain(req.URL)

	c.OnRequest(func(r *colly.Request) {
		mu.Lock()
		reached := req.LinkLimit > 0 && len(links) >= maxInt(1, req.LinkLimit)
		mu.Unlock()
		if reached {
			r.Abort()
		}
	})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := normalize(e.Request.AbsoluteURL(e.Attr("href")))
		if link == "" {
			return
		}
		if !domainsMatch(extractDomain(link), dom, req.IncludeSubdomains) {
			return
		}
		mu.Lock()
		_, exists := links[link]
		if !exists {
			links[link] = struct{}{}
		}
		reached := req.LinkLimit > 0 && len(links) >= maxInt(1, req.LinkLimit)
		mu.Unlock()
		if reached {
			return
		}
		if !exists && e.Request.Depth < maxInt(1, req.Depth) {
			_ = e.Request.Visit(link)
		}
	})

	c.Limit(&colly.LimitRule{DomainGlob: "*", Parallelism: 10, RandomDelay: 500 * time.Millisecond})

	if err := c.Visit(req.URL); err != nil {
		return nil, fmt.Errorf("visit: %w", err)
	}
	c.Wait()

	out := make([]string, 0, len(links))
	for l := range links {
		out = append(out, l)
	}
	s.log.LogInfof("discover ok url=%s found=%d", req.URL, len(out))
	return &Result{Links: out}, nil
}

func normalize(link string) string {
	link = strings.TrimSpace(link)
	if link == "" || strings.HasPrefix(link, "javascript:") || strings.HasPrefix(link, "mailto:") {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil || !u.IsAbs() {
		return ""
	}
	u.Fragment = ""
	return u.String()
}

func extractDomain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func domainsMatch(link, root string, includeSubdomains bool) bool {
	if link == "" || root == "" {
		return false
	}
	if link == root {
		return true
	}
	return includeSubdomains && strings.HasSuffix(link, "."+root)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
