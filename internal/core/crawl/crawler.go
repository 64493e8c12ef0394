package crawl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"trendhire/internal/core/extract"
	"trendhire/internal/core/proxy"
	"trendhire/internal/core/source"
	"trendhire/internal/logger"
	"trendhire/internal/model"
)

// Fetcher is what a crawler needs from the transport layer.
type Fetcher interface {
	Fetch(ctx context.Context, url string, headers map[string]string) (*proxy.Response, error)
}

// Crawler turns one CrawlRequest into ListingRecords by paging through a
// source's search results via the shared transport.
type Crawler struct {
	fetcher   Fetcher
	extractor extract.Extractor
	log       *logger.Logger
}

func NewCrawler(fetcher Fetcher, extractor extract.Extractor) *Crawler {
	return &Crawler{fetcher: fetcher, extractor: extractor, log: logger.New("Crawler")}
}

// Run crawls pages 1..MaxPages in strictly ascending order. The first page
// that fails to fetch or extract stops pagination; records accumulated from
// earlier pages are returned alongside the failure.
func (c *Crawler) Run(ctx context.Context, req model.CrawlRequest) model.SourceResult {
	var res model.SourceResult

	if err := req.Descriptor.Validate(); err != nil {
		res.Failures = append(res.Failures, classify(err, 0))
		return res
	}
	maxPages := req.MaxPages
	if maxPages < 1 {
		maxPages = 1
	}

	for page := 1; page <= maxPages; page++ {
		records, err := c.fetchPage(ctx, req, page)
		if err != nil {
			c.log.LogWarnf("%s page %d failed: %v", req.Descriptor.Name, page, err)
			res.Failures = append(res.Failures, classify(err, page))
			break
		}
		res.Records = append(res.Records, records...)
	}
	return res
}

// RunConcurrent fetches all pages at once and reassembles them in page
// order, so the output ordering matches Run regardless of completion order.
// A failed page becomes a per-page failure marker; sibling pages already in
// flight are not cancelled and their results are kept.
func (c *Crawler) RunConcurrent(ctx context.Context, req model.CrawlRequest) model.SourceResult {
	var res model.SourceResult

	if err := req.Descriptor.Validate(); err != nil {
		res.Failures = append(res.Failures, classify(err, 0))
		return res
	}
	maxPages := req.MaxPages
	if maxPages < 1 {
		maxPages = 1
	}

	type pageResult struct {
		records []model.ListingRecord
		err     error
	}
	results := make([]pageResult, maxPages)

	var wg sync.WaitGroup
	for page := 1; page <= maxPages; page++ {
		wg.Add(1)
		go func(page int) {
			defer wg.Done()
			records, err := c.fetchPage(ctx, req, page)
			results[page-1] = pageResult{records: records, err: err}
		}(page)
	}
	wg.Wait()

	for i, pr := range results {
		if pr.err != nil {
			c.log.LogWarnf("%s page %d failed: %v", req.Descriptor.Name, i+1, pr.err)
			res.Failures = append(res.Failures, classify(pr.err, i+1))
			continue
		}
		res.Records = append(res.Records, pr.records...)
	}
	return res
}

// fetchPage builds the page URL, fetches it and extracts its listings in
// document order.
func (c *Crawler) fetchPage(ctx context.Context, req model.CrawlRequest, page int) ([]model.ListingRecord, error) {
	desc := &req.Descriptor

	pageURL, err := desc.BuildSearchURL(req.Query, req.Location, page)
	if err != nil {
		return nil, err
	}

	c.log.LogDebugf("fetching %s page %d: %s", desc.Name, page, pageURL)
	resp, err := c.fetcher.Fetch(ctx, pageURL, desc.Headers())
	if err != nil {
		return nil, err
	}

	maps, err := c.extractor.Extract(resp.Body, desc)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	records := make([]model.ListingRecord, 0, len(maps))
	for _, fields := range maps {
		records = append(records, model.ListingRecord{
			SourceName: desc.Name,
			OriginURL:  originURL(desc, fields, pageURL),
			PageNumber: page,
			Fields:     fields,
			FetchedAt:  now,
		})
	}
	return records, nil
}

// originURL prefers the listing's own detail link, resolved against the
// source base, so records stay unique per listing. The page URL is the
// fallback when a source exposes no per-listing link.
func originURL(desc *source.Descriptor, fields map[string]string, pageURL string) string {
	link, ok := fields["detail_link"]
	if !ok || link == "" {
		return pageURL
	}
	if resolved, err := desc.ResolveLink(link); err == nil {
		return resolved
	}
	return pageURL
}

// classify maps the error taxonomy onto a Failure entry.
func classify(err error, page int) model.Failure {
	f := model.Failure{Page: page, Message: err.Error()}
	var (
		tmplErr  *source.TemplateError
		transErr *proxy.TransportError
		extErr   *extract.ExtractionError
	)
	switch {
	case errors.As(err, &tmplErr):
		f.Kind = model.FailureTemplate
	case errors.As(err, &transErr):
		f.Kind = model.FailureTransport
	case errors.As(err, &extErr):
		f.Kind = model.FailureExtraction
	default:
		f.Kind = model.FailureTransport
		f.Message = fmt.Sprintf("unclassified: %v", err)
	}
	return f
}
