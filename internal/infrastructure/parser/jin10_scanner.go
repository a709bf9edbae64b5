package parser

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsAnalyzer/internal/domain"
	"NewsAnalyzer/internal/scanner"
)

const scraperUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Jin10Scanner scrapes the jin10 flash feed page and extracts recent items.
type Jin10Scanner struct {
	client *http.Client
}

// NewJin10Scanner wires an HTTP client.
func NewJin10Scanner(client *http.Client) *Jin10Scanner {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Jin10Scanner{client: client}
}

// Name identifies the strategy inside the registry.
func (j *Jin10Scanner) Name() string {
	return "jin10"
}

// Scan fetches the flash page and returns items published inside the window.
func (j *Jin10Scanner) Scan(ctx context.Context, req scanner.Request) ([]domain.NewsItem, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("no url provided for site %s", req.SiteName)
	}

	doc, err := j.fetchDocument(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("site %s: %w", req.SiteName, err)
	}

	now := req.Now.UTC()
	var windowStart time.Time
	if req.Window > 0 {
		windowStart = now.Add(-req.Window)
	}

	items := make([]domain.NewsItem, 0)
	for _, entry := range collectEntries(doc) {
		if entry.text == "" || entry.timeText == "" {
			continue
		}
		// VIP flashes are teasers without full content.
		if strings.Contains(entry.text, "VIP") {
			continue
		}

		publishedAt, ok := combineFlashTime(entry.timeText, now)
		if req.Window > 0 {
			if !ok {
				continue
			}
			if publishedAt.Before(windowStart) || publishedAt.After(now) {
				continue
			}
		}
		if !ok {
			publishedAt = now
		}

		items = append(items, domain.NewsItem{
			Content:     entry.text,
			PublishedAt: publishedAt,
		})
	}

	return items, nil
}

func (j *Jin10Scanner) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", scraperUserAgent)

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jin10 returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	return doc, nil
}

type flashEntry struct {
	timeText string
	text     string
}

// collectEntries walks the flash items, falling back to paired time/text
// nodes when the primary markup is absent.
func collectEntries(doc *goquery.Document) []flashEntry {
	var entries []flashEntry

	doc.Find("div.jin10-flash-item").Each(func(i int, item *goquery.Selection) {
		timeEl := item.Find(".jin10-flash-date-time").First()
		if timeEl.Length() == 0 {
			timeEl = item.Find("div.item-time").First()
		}
		textEl := item.Find(".right-flash").First()
		if textEl.Length() == 0 {
			textEl = item.Find("div.flash-text").First()
		}

		entries = append(entries, flashEntry{
			timeText: strings.TrimSpace(timeEl.Text()),
			text:     strings.TrimSpace(textEl.Text()),
		})
	})

	if len(entries) > 0 {
		return entries
	}

	times := doc.Find("div.item-time")
	texts := doc.Find("div.flash-text")
	n := times.Length()
	if texts.Length() < n {
		n = texts.Length()
	}
	for i := 0; i < n; i++ {
		entries = append(entries, flashEntry{
			timeText: strings.TrimSpace(times.Eq(i).Text()),
			text:     strings.TrimSpace(texts.Eq(i).Text()),
		})
	}

	return entries
}

// combineFlashTime parses an HH:MM or HH:MM:SS flash timestamp and anchors it
// to the reference date in UTC.
func combineFlashTime(timeText string, now time.Time) (time.Time, bool) {
	var layout string
	switch strings.Count(timeText, ":") {
	case 1:
		layout = "15:04"
	case 2:
		layout = "15:04:05"
	default:
		return time.Time{}, false
	}

	parsed, err := time.Parse(layout, timeText)
	if err != nil {
		return time.Time{}, false
	}

	day := now.UTC()
	combined := time.Date(day.Year(), day.Month(), day.Day(),
		parsed.Hour(), parsed.Minute(), parsed.Second(), 0, time.UTC)
	return combined, true
}
