package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// postingKeywords decide whether a fetched page plausibly is a job posting
// at all. English and German, matching the markets the coach targets.
var postingKeywords = []string{
	"job", "beruf", "stelle",
	"company", "firma", "unternehmen",
	"apply now", "apply here", "bewerben", "bewerbung",
	"salary", "gehalt", "lohn",
	"job responsibilities", "requirements", "anforderungen",
}

var tagRe = regexp.MustCompile(`<.*?>`)

// ErrNotAJobPosting is returned when the fetched page lacks any job-posting
// vocabulary.
var ErrNotAJobPosting = errors.New("url is unlikely to be a job posting")

// Scraper extracts a job title and description from a posting URL.
// Extraction priority: JSON-LD structured data, then og: meta tags plus the
// itemprop description block.
type Scraper struct {
	httpClient *http.Client
	userAgent  string
}

func New(userAgent string, timeout time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Scraper{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

func (s *Scraper) Scrape(ctx context.Context, url string) (string, string, error) {
	doc, err := s.fetch(ctx, url)
	if err != nil {
		return "", "", err
	}

	if !hasPostingKeywords(doc) {
		return "", "", ErrNotAJobPosting
	}

	if title, description, ok := extractJSONLD(doc); ok {
		return title, description, nil
	}

	title, description := extractFromMarkup(doc)
	if description == "" {
		return "", "", fmt.Errorf("no job description found at %s", url)
	}
	return title, description, nil
}

func (s *Scraper) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: HTTP %d", url, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", url, err)
	}
	return doc, nil
}

func hasPostingKeywords(doc *goquery.Document) bool {
	text := strings.ToLower(doc.Text())
	for _, keyword := range postingKeywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

type jsonLDPosting struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func extractJSONLD(doc *goquery.Document) (string, string, bool) {
	var title, description string
	var found bool

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		var posting jsonLDPosting
		if err := json.Unmarshal([]byte(sel.Text()), &posting); err != nil {
			return true
		}
		if posting.Description == "" {
			return true
		}
		title = posting.Title
		description = stripTags(posting.Description)
		found = true
		return false
	})

	return title, description, found
}

func extractFromMarkup(doc *goquery.Document) (string, string) {
	title, _ := doc.Find(`meta[property="og:title"]`).Attr("content")

	short, _ := doc.Find(`meta[property="og:description"]`).Attr("content")
	short = stripTags(short)
	long := strings.TrimSpace(doc.Find(`div[itemprop="description"]`).Text())

	var description string
	switch {
	case short != "" && long != "" && !strings.Contains(long, short):
		description = "Short: " + short + "\nLong: " + long
	case long != "":
		description = long
	case short != "":
		description = short
	}

	return title, description
}

func stripTags(s string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(s, ""))
}
