// Package model holds the wire and domain types shared by the crawl engine,
// the job store and the persistence layer.
package model

import (
	"time"

	"trendhire/internal/core/source"
)

// FailureKind classifies why a page or source stopped producing records.
type FailureKind string

const (
	FailureTemplate   FailureKind = "template"
	FailureTransport  FailureKind = "transport"
	FailureExtraction FailureKind = "extraction"
)

// Failure records one failure, pinned to the source and page it came from.
// Page is zero when the failure happened before any fetch.
type Failure struct {
	Kind    FailureKind `json:"kind"`
	Page    int         `json:"page,omitempty"`
	Message string      `json:"message"`
}

// CrawlRequest asks for one source to be crawled for a query.
type CrawlRequest struct {
	Descriptor source.Descriptor `json:"descriptor"`
	Query      string            `json:"query"`
	Location   string            `json:"location,omitempty"`
	MaxPages   int               `json:"max_pages"`
}

// BatchRequest is the submission payload: a query run over configured
// sources (by name), inline descriptors, or both.
type BatchRequest struct {
	TaskName    string              `json:"task_name,omitempty"`
	Query       string              `json:"query"`
	Location    string              `json:"location,omitempty"`
	MaxPages    int                 `json:"max_pages,omitempty"`
	Sources     []string            `json:"sources,omitempty"`
	Descriptors []source.Descriptor `json:"descriptors,omitempty"`
}

// ListingRecord is one extracted listing. Immutable once produced.
type ListingRecord struct {
	SourceName string            `json:"source_name"`
	OriginURL  string            `json:"origin_url"`
	PageNumber int               `json:"page_number"`
	Fields     map[string]string `json:"fields"`
	FetchedAt  time.Time         `json:"fetched_at"`
}

// SourceResult is one source's outcome inside a report: the records that
// were fetched plus any failures. Partial progress is always kept; a
// mid-pagination failure never discards pages fetched before it.
type SourceResult struct {
	Records  []ListingRecord `json:"records"`
	Failures []Failure       `json:"failures,omitempty"`
}

// Failed reports whether the source recorded at least one failure.
func (r SourceResult) Failed() bool { return len(r.Failures) > 0 }

// Report aggregates a whole batch. Every source named in the originating
// batch appears exactly once in PerSource.
type Report struct {
	PerSource  map[string]SourceResult `json:"per_source"`
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt time.Time               `json:"finished_at"`
}

// Statistics summarizes a report for logging and API responses.
type Statistics struct {
	TotalSources  int `json:"total_sources"`
	FailedSources int `json:"failed_sources"`
	TotalRecords  int `json:"total_records"`
}

func (r *Report) Stats() Statistics {
	st := Statistics{TotalSources: len(r.PerSource)}
	for _, res := range r.PerSource {
		st.TotalRecords += len(res.Records)
		if res.Failed() {
			st.FailedSources++
		}
	}
	return st
}
