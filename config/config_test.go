package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSite(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoad_ShippedSites(t *testing.T) {
	t.Setenv("SITES_DIR", "sites")
	t.Setenv("LISTING_BACKEND", "")
	t.Setenv("SITE_ID", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	for _, id := range []string{"eagan-luxury", "cheryl-towey", "legendary"} {
		site, ok := cfg.Sites[id]
		if !ok {
			t.Fatalf("missing site %s", id)
		}
		if site.PageSize != 6 || site.ImageWidth != 800 || site.ImageHeight != 600 {
			t.Fatalf("%s: unexpected sizing %+v", id, site)
		}
	}
	if cfg.Listing.Backend != BackendSQLite || cfg.Listing.DBPath == "" {
		t.Fatalf("unexpected listing defaults %+v", cfg.Listing)
	}

	site, err := cfg.Site("")
	if err != nil {
		t.Fatalf("default site: %v", err)
	}
	if site.ID != "cheryl-towey" {
		t.Fatalf("expected first site by id, got %s", site.ID)
	}
	if _, err := cfg.Site("nope"); err == nil {
		t.Fatalf("expected error for unknown site")
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	writeSite(t, dir, "minimal.yaml", `
id: minimal
name: Minimal
agent_name: Agent
cms_source_label: Exclusive
placeholder_image: /p.jpg
`)
	t.Setenv("SITES_DIR", dir)
	t.Setenv("SITE_ID", "minimal")
	t.Setenv("SANITY_USE_CDN", "false")
	t.Setenv("CORS_ORIGINS", "https://eaganluxury.com, ,https://www.eaganluxury.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	site, err := cfg.Site("")
	if err != nil {
		t.Fatalf("site: %v", err)
	}
	if site.PageSize != 6 || site.Window() != 1 {
		t.Fatalf("defaults not applied: %+v", site)
	}
	if cfg.Sanity.UseCDN {
		t.Fatalf("expected SANITY_USE_CDN=false")
	}
	if len(cfg.HTTP.CORSOrigins) != 2 {
		t.Fatalf("unexpected origins %v", cfg.HTTP.CORSOrigins)
	}
}

func TestLoad_PaginationWindow(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    int
		wantErr bool
	}{
		{"unset defaults to one", "", 1, false},
		{"explicit zero is kept", "pagination_window: 0", 0, false},
		{"explicit two", "pagination_window: 2", 2, false},
		{"too wide", "pagination_window: 9", 0, true},
		{"negative", "pagination_window: -1", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeSite(t, dir, "w.yaml", `
id: w
name: Window
agent_name: Agent
cms_source_label: Exclusive
placeholder_image: /p.jpg
`+tt.line+"\n")
			t.Setenv("SITES_DIR", dir)
			cfg, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected validation error")
				}
				return
			}
			if err != nil {
				t.Fatalf("load failed: %v", err)
			}
			if got := cfg.Sites["w"].Window(); got != tt.want {
				t.Fatalf("Window() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLoad_InvalidSite(t *testing.T) {
	dir := t.TempDir()
	writeSite(t, dir, "broken.yaml", `
id: broken
name: Broken
page_size: 6
`)
	t.Setenv("SITES_DIR", dir)
	if _, err := Load(); err == nil {
		t.Fatalf("expected validation error for missing fields")
	}
}

func TestLoad_PostgresNeedsURL(t *testing.T) {
	t.Setenv("SITES_DIR", t.TempDir())
	t.Setenv("LISTING_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}

	t.Setenv("LISTING_BACKEND", "mongo")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
