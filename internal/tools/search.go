package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/SAP-F-2025/quiz-generator/internal/models"
)

const (
	defaultSearchURL = "https://html.duckduckgo.com/html/"
	maxSearchResults = 3
	searchTimeout    = 15 * time.Second
	noResultsMessage = "No search results found."
)

// WebSearch queries the DuckDuckGo HTML endpoint.
type WebSearch struct {
	BaseURL string
	Client  *http.Client
}

func NewWebSearch() *WebSearch {
	return &WebSearch{BaseURL: defaultSearchURL, Client: &http.Client{Timeout: searchTimeout}}
}

// SearchWeb returns the top results as a JSON list of {snippet, source}.
func (w *WebSearch) SearchWeb(ctx context.Context, query string) string {
	results, err := w.Search(ctx, query)
	if err != nil {
		return fmt.Sprintf("Error during web search: %v", err)
	}
	if len(results) == 0 {
		return noResultsMessage
	}
	out, err := json.Marshal(results)
	if err != nil {
		return fmt.Sprintf("Error during web search: %v", err)
	}
	return string(out)
}

// Search returns at most three results for query.
func (w *WebSearch) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	base := w.BaseURL
	if base == "" {
		base = defaultSearchURL
	}
	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", scrapeUserAgent)

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, err
	}

	var results []models.SearchResult
	doc.Find(".result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Find("a.result__a").Attr("href")
		if !ok {
			return true
		}
		snippet := strings.Join(strings.Fields(sel.Find(".result__snippet").Text()), " ")
		results = append(results, models.SearchResult{Snippet: snippet, Source: resolveResultURL(href)})
		return len(results) < maxSearchResults
	})
	return results, nil
}

// resolveResultURL unwraps DuckDuckGo redirect links (/l/?uddg=<target>).
func resolveResultURL(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" && strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}

// Tool exposes SearchWeb as web_search.
func (w *WebSearch) Tool() Tool {
	return FunctionTool{
		Name:        "web_search",
		Description: "Performs a web search using DuckDuckGo to get relevant snippets for fact-checking. Returns a JSON string containing search snippets and their sources.",
		Parameters:  StringParams(map[string]string{"query": "The search term to use for finding factual information."}),
		Fn: func(ctx context.Context, args Args) string {
			query, err := args.RequiredString("query")
			if err != nil {
				return "error: " + err.Error()
			}
			return w.SearchWeb(ctx, query)
		},
	}
}
