package tools

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	scrapeTimeout   = 10 * time.Second
	scrapeUserAgent = "Mozilla/5.0"
	maxBriefBlocks  = 50

	minHeadingLen = 5
	minTextLen    = 20
)

// NoContentMessage is returned when a page yields no usable text blocks.
const NoContentMessage = "Error: No meaningful content found at the URL."

// Scraper fetches a page and reduces it to its main text blocks.
type Scraper struct {
	Client *http.Client
}

// NewScraper returns a Scraper with the default 10 second timeout.
func NewScraper() *Scraper {
	return &Scraper{Client: &http.Client{Timeout: scrapeTimeout}}
}

// ScrapeMainContent returns headings (upper-cased), paragraphs and list items
// of the page, one block per line. Failures are returned as the result text.
func (s *Scraper) ScrapeMainContent(ctx context.Context, url string) string {
	doc, err := s.fetch(ctx, url)
	if err != nil {
		return fmt.Sprintf("Error: Could not retrieve URL. %v", err)
	}

	blocks := ExtractContentBlocks(doc)
	if len(blocks) == 0 {
		return NoContentMessage
	}
	return strings.Join(blocks, "\n")
}

func (s *Scraper) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, scrapeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", scrapeUserAgent)

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s for url: %s", resp.Status, url)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// ExtractContentBlocks strips page chrome from doc and returns the unique text
// blocks in collection order, capped at 50.
func ExtractContentBlocks(doc *goquery.Document) []string {
	doc.Find("script, style, nav, footer, header, aside").Remove()

	var blocks []string
	collect := func(selector string, minLen int, format func(string) string) {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			text := strings.TrimSpace(sel.Text())
			if utf8.RuneCountInString(text) > minLen {
				blocks = append(blocks, format(text))
			}
		})
	}

	for _, heading := range []string{"h1", "h2", "h3"} {
		collect(heading, minHeadingLen, strings.ToUpper)
	}
	collect("p", minTextLen, func(s string) string { return s })
	collect("li", minTextLen, func(s string) string { return "- " + s })

	seen := make(map[string]struct{}, len(blocks))
	unique := make([]string, 0, len(blocks))
	for _, block := range blocks {
		clean := strings.Join(strings.Fields(block), " ")
		if _, dup := seen[clean]; dup {
			continue
		}
		seen[clean] = struct{}{}
		unique = append(unique, clean)
	}

	if len(unique) > maxBriefBlocks {
		unique = unique[:maxBriefBlocks]
	}
	return unique
}

// Tool exposes ScrapeMainContent as web_scraper.
func (s *Scraper) Tool() Tool {
	return FunctionTool{
		Name:        "web_scraper",
		Description: "Scrapes and cleans the main textual content from a given URL. Focuses on headings (h1-h3), paragraphs, and list items.",
		Parameters:  StringParams(map[string]string{"url": "The URL to scrape content from."}),
		Fn: func(ctx context.Context, args Args) string {
			url, err := args.RequiredString("url")
			if err != nil {
				return "error: " + err.Error()
			}
			return s.ScrapeMainContent(ctx, url)
		},
	}
}
