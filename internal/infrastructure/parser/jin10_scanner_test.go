package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"NewsAnalyzer/internal/scanner"
)

func TestCombineFlashTime(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 5, 14, 30, 0, 0, time.UTC)

	got, ok := combineFlashTime("13:45:10", now)
	if !ok {
		t.Fatal("HH:MM:SS time not parsed")
	}
	want := time.Date(2026, time.March, 5, 13, 45, 10, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	got, ok = combineFlashTime("09:05", now)
	if !ok {
		t.Fatal("HH:MM time not parsed")
	}
	if got.Hour() != 9 || got.Minute() != 5 || got.Second() != 0 {
		t.Fatalf("unexpected combined time: %v", got)
	}

	if _, ok := combineFlashTime("yesterday", now); ok {
		t.Fatal("non-clock text must not parse")
	}
	if _, ok := combineFlashTime("", now); ok {
		t.Fatal("empty text must not parse")
	}
}

func TestJin10ScannerScan(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
		<div class="jin10-flash-item">
		  <div class="jin10-flash-date-time">11:45:00</div>
		  <div class="right-flash">Central bank raises rates by 25bps</div>
		</div>
		<div class="jin10-flash-item">
		  <div class="jin10-flash-date-time">11:50:00</div>
		  <div class="right-flash">VIP exclusive: subscribe for details</div>
		</div>
		<div class="jin10-flash-item">
		  <div class="jin10-flash-date-time">08:00:00</div>
		  <div class="right-flash">Stale overnight flash outside the window</div>
		</div>`))
	}))
	defer server.Close()

	sc := NewJin10Scanner(server.Client())

	items, err := sc.Scan(context.Background(), scanner.Request{
		Now:      now,
		SiteName: "jin10",
		URL:      server.URL,
		Window:   30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Content != "Central bank raises rates by 25bps" {
		t.Fatalf("unexpected content: %s", items[0].Content)
	}
	want := time.Date(2026, time.March, 5, 11, 45, 0, 0, time.UTC)
	if !items[0].PublishedAt.Equal(want) {
		t.Fatalf("unexpected published time: %v", items[0].PublishedAt)
	}
}

func TestJin10ScannerFallbackSelectors(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, time.March, 5, 12, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
		<div class="item-time">11:58</div>
		<div class="item-time">11:59</div>
		<div class="flash-text">Oil inventories fall more than expected</div>
		<div class="flash-text">Treasury yields tick higher</div>`))
	}))
	defer server.Close()

	sc := NewJin10Scanner(server.Client())

	items, err := sc.Scan(context.Background(), scanner.Request{
		Now:      now,
		SiteName: "jin10",
		URL:      server.URL,
		Window:   30 * time.Minute,
	})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items from fallback markup, got %d", len(items))
	}
	if items[0].Content != "Oil inventories fall more than expected" {
		t.Fatalf("unexpected first item: %s", items[0].Content)
	}
}

func TestJin10ScannerErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	sc := NewJin10Scanner(server.Client())

	_, err := sc.Scan(context.Background(), scanner.Request{
		Now:      time.Now(),
		SiteName: "jin10",
		URL:      server.URL,
	})
	if err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
