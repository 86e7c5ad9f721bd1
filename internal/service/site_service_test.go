package service

import (
	"errors"
	"testing"

	"github.com/quitbet/internal/db"
)

func setupSiteTest(t *testing.T) (*SiteService, func()) {
	t.Helper()
	cleanup := setupTestDB(t, &db.BlockedSite{})
	return NewSiteService(db.DB), cleanup
}

func TestSiteCreateDefaultsCategory(t *testing.T) {
	svc, cleanup := setupSiteTest(t)
	defer cleanup()

	site, err := svc.Create(SiteInput{URL: " https://bet.example.com "})
	if err != nil {
		t.Fatalf("create site failed: %v", err)
	}
	if site.URL != "https://bet.example.com" {
		t.Fatalf("expected trimmed url, got %q", site.URL)
	}
	if site.Category != "betting" {
		t.Fatalf("expected default category betting, got %q", site.Category)
	}

	if _, err := svc.Create(SiteInput{URL: "https://bet.example.com"}); !errors.Is(err, ErrSiteExists) {
		t.Fatalf("expected ErrSiteExists, got %v", err)
	}
}

func TestSiteUpdateAndDelete(t *testing.T) {
	svc, cleanup := setupSiteTest(t)
	defer cleanup()

	site, err := svc.Create(SiteInput{URL: "https://casino.example.com", Category: "casino"})
	if err != nil {
		t.Fatalf("create site failed: %v", err)
	}

	updated, err := svc.Update(site.ID, SiteInput{URL: "https://casino.example.net", Category: "casino"})
	if err != nil {
		t.Fatalf("update site failed: %v", err)
	}
	if updated.URL != "https://casino.example.net" {
		t.Fatalf("unexpected url after update: %q", updated.URL)
	}

	if _, err := svc.Update(9999, SiteInput{URL: "https://x.example.com"}); !errors.Is(err, ErrSiteNotFound) {
		t.Fatalf("expected ErrSiteNotFound, got %v", err)
	}

	if err := svc.Delete(site.ID); err != nil {
		t.Fatalf("delete site failed: %v", err)
	}
	if err := svc.Delete(site.ID); !errors.Is(err, ErrSiteNotFound) {
		t.Fatalf("expected ErrSiteNotFound after delete, got %v", err)
	}

	sites, err := svc.List()
	if err != nil {
		t.Fatalf("list sites failed: %v", err)
	}
	if len(sites) != 0 {
		t.Fatalf("expected empty list, got %d", len(sites))
	}
}
