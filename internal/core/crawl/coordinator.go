package crawl

import (
	"context"
	"sync"
	"time"

	"trendhire/internal/core/extract"
	"trendhire/internal/logger"
	"trendhire/internal/model"
)

// Coordinator fans a batch of requests across sources and merges the
// outcomes into one Report. Sources are isolated from each other: a failing
// source never aborts or alters a sibling's crawl.
type Coordinator struct {
	fetcher   Fetcher
	extractor extract.Extractor
	log       *logger.Logger
}

func NewCoordinator(fetcher Fetcher, extractor extract.Extractor) *Coordinator {
	return &Coordinator{fetcher: fetcher, extractor: extractor, log: logger.New("Coordinator")}
}

// RunBatch crawls every request concurrently, each source through its own
// Crawler over the shared transport. Every requested source appears exactly
// once in the report, as records, failures, or both.
func (co *Coordinator) RunBatch(ctx context.Context, requests []model.CrawlRequest) *model.Report {
	report := &model.Report{
		PerSource: make(map[string]model.SourceResult, len(requests)),
		StartedAt: time.Now().UTC(),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, req := range requests {
		wg.Add(1)
		go func(req model.CrawlRequest) {
			defer wg.Done()
			crawler := NewCrawler(co.fetcher, co.extractor)
			result := crawler.RunConcurrent(ctx, req)
			mu.Lock()
			report.PerSource[req.Descriptor.Name] = result
			mu.Unlock()
		}(req)
	}
	wg.Wait()

	report.FinishedAt = time.Now().UTC()
	st := report.Stats()
	co.log.LogInfof("batch done: sources=%d failed=%d records=%d in %s",
		st.TotalSources, st.FailedSources, st.TotalRecords, report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	return report
}
