package extract

import (
	"fmt"
	"strings"

	html2markdown "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"trendhire/internal/core/source"
	"trendhire/internal/logger"
)

// ExtractionError reports a body the extractor could not work with. An empty
// selection is not an error; a page with zero listings is a valid result.
type ExtractionError struct {
	Source string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Source, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extractor turns a raw page body into field-maps using a descriptor's CSS
// selectors. It is a pure function of its inputs and has no opinion on where
// the body came from.
type Extractor interface {
	Extract(body string, desc *source.Descriptor) ([]map[string]string, error)
}

// Service is the goquery-backed Extractor.
type Service struct {
	log *logger.Logger
	md  *html2markdown.Converter
}

func New() *Service {
	return &Service{
		log: logger.New("Extractor"),
		md:  html2markdown.NewConverter("", true, nil),
	}
}

// Extract evaluates the descriptor's listing selector over the body and,
// for each match in document order, resolves every field selector inside it.
// A field selector of the form "sel@attr" captures the attribute value
// instead of the text content. Fields whose selector matches nothing are
// left out of the map.
func (s *Service) Extract(body string, desc *source.Descriptor) ([]map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, &ExtractionError{Source: desc.Name, Err: err}
	}

	var out []map[string]string
	doc.Find(desc.ListingSelector).Each(func(_ int, item *goquery.Selection) {
		fields := make(map[string]string, len(desc.FieldSelectors))
		for name, sel := range desc.FieldSelectors {
			if v, ok := resolveField(item, sel); ok {
				fields[name] = v
			}
		}
		if desc.DescriptionSelector != "" {
			if htmlStr, err := item.Find(desc.DescriptionSelector).Html(); err == nil && htmlStr != "" {
				if md, err := s.md.ConvertString(htmlStr); err == nil {
					fields["description"] = strings.TrimSpace(md)
				}
			}
		}
		if len(fields) > 0 {
			out = append(out, fields)
		}
	})

	s.log.LogDebugf("extracted %d listings from %s page", len(out), desc.Name)
	return out, nil
}

// resolveField evaluates one field selector within a listing node. The
// "sel@attr" suffix selects an attribute, everything else selects text.
func resolveField(item *goquery.Selection, selector string) (string, bool) {
	attr := ""
	if i := strings.LastIndex(selector, "@"); i > 0 {
		attr = selector[i+1:]
		selector = selector[:i]
	}

	match := item.Find(selector).First()
	if match.Length() == 0 {
		return "", false
	}
	if attr != "" {
		return match.Attr(attr)
	}
	text := strings.TrimSpace(match.Text())
	if text == "" {
		return "", false
	}
	return text, true
}
