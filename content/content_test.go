package content

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/dmrmediateam/eagan-luxury-sub001/models"
)

const placeholder = "/images/placeholder.jpg"

type stubImages struct{ err error }

func (s stubImages) URL(ref *models.ImageRef, w, h int) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "https://cdn.sanity.test/" + ref.Asset.Ref, nil
}

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", name, err)
	}
	return data
}

func loadPosts(t *testing.T) []models.BlogPost {
	t.Helper()
	var posts []models.BlogPost
	if err := json.Unmarshal(loadFixture(t, "blog_posts.json"), &posts); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return posts
}

func textBlock(text string) models.Block {
	return models.Block{Type: "block", Children: []models.Span{{Type: "span", Text: text}}}
}

func TestPlainText_SkipsNonTextBlocks(t *testing.T) {
	blocks := []models.Block{
		{Type: "block", Children: []models.Span{{Text: "Hello "}, {Text: "world."}}},
		{Type: "image"},
		textBlock("   "),
		textBlock("Second block"),
	}
	if got := PlainText(blocks); got != "Hello world. Second block" {
		t.Fatalf("unexpected text %q", got)
	}
	if PlainText(nil) != "" {
		t.Fatalf("expected empty text for nil body")
	}
}

func TestExcerpt_SourceVerbatim(t *testing.T) {
	src := "  Keep my spacing.  "
	if got := Excerpt(src, []models.Block{textBlock("ignored body")}); got != src {
		t.Fatalf("expected verbatim excerpt, got %q", got)
	}
}

func TestExcerpt_DerivedFromBody(t *testing.T) {
	long := strings.Repeat("lakeshore ", 40)
	body := []models.Block{textBlock(long)}

	got := Excerpt(" \t ", body)
	if utf8.RuneCountInString(got) > ExcerptLength+3 {
		t.Fatalf("excerpt too long: %d runes", utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis, got %q", got)
	}
	if again := Excerpt("", body); again != got {
		t.Fatalf("excerpt not deterministic: %q vs %q", got, again)
	}

	short := Excerpt("", []models.Block{textBlock("Short body.")})
	if short != "Short body." {
		t.Fatalf("short body should not be truncated, got %q", short)
	}
}

func TestExcerpt_RuneSafe(t *testing.T) {
	body := []models.Block{textBlock(strings.Repeat("é", 200))}
	got := Excerpt("", body)
	if !utf8.ValidString(got) {
		t.Fatalf("excerpt split a rune")
	}
	if utf8.RuneCountInString(got) != ExcerptLength+3 {
		t.Fatalf("expected %d runes, got %d", ExcerptLength+3, utf8.RuneCountInString(got))
	}
}

func TestReadTime(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		excerpt  string
		body     []models.Block
		expected string
	}{
		{"ten words", "Four words in title", "three more here", []models.Block{textBlock("and three more")}, "1 min read"},
		{"empty", "", "", nil, "1 min read"},
		{"exactly 200", strings.Repeat("w ", 200), "", nil, "1 min read"},
		{"201 rounds up", strings.Repeat("w ", 201), "", nil, "2 min read"},
		{"body words", "", "", []models.Block{textBlock(strings.Repeat("word ", 650))}, "4 min read"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReadTime(tt.title, tt.excerpt, tt.body); got != tt.expected {
				t.Errorf("ReadTime = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestResolveSlug(t *testing.T) {
	if got := ResolveSlug(models.Slug{Current: " spring "}, "id-1"); got != "spring" {
		t.Fatalf("expected slug, got %q", got)
	}
	if got := ResolveSlug(models.Slug{}, "id-1"); got != "id-1" {
		t.Fatalf("expected id fallback, got %q", got)
	}

	var posts []struct {
		Slug models.Slug `json:"slug"`
	}
	raw := `[{"slug":"plain"},{"slug":{"current":"object"}},{"slug":null},{},{"slug":42}]`
	if err := json.Unmarshal([]byte(raw), &posts); err != nil {
		t.Fatalf("decode slugs: %v", err)
	}
	want := []string{"plain", "object", "fallback", "fallback", "fallback"}
	for i, p := range posts {
		if got := ResolveSlug(p.Slug, "fallback"); got != want[i] {
			t.Errorf("slug %d = %q, want %q", i, got, want[i])
		}
	}
}

func TestNormalizer_BlogFixture(t *testing.T) {
	n := NewNormalizer(stubImages{}, placeholder)
	items := n.BlogAll(loadPosts(t))
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}

	first := items[0]
	if first.ID != "post-spring-market" || first.Slug != "spring-market-update" {
		t.Fatalf("unexpected id/slug %q/%q", first.ID, first.Slug)
	}
	if first.Type != models.ContentBlog {
		t.Fatalf("expected blog type, got %s", first.Type)
	}
	if first.Date != "April 1, 2025" {
		t.Fatalf("unexpected date %q", first.Date)
	}
	if !strings.HasPrefix(first.Excerpt, "Inventory is up. Median prices") || !strings.HasSuffix(first.Excerpt, "...") {
		t.Fatalf("unexpected derived excerpt %q", first.Excerpt)
	}
	if first.Image != "https://cdn.sanity.test/image-abc123-1600x900-jpg" {
		t.Fatalf("unexpected image %q", first.Image)
	}
	if first.Category != "Market Trends" || len(first.Categories) != 2 {
		t.Fatalf("unexpected categories %q %v", first.Category, first.Categories)
	}
	if first.ReadTime != "1 min read" {
		t.Fatalf("unexpected read time %q", first.ReadTime)
	}

	second := items[1]
	if second.Slug != "staging-tips" {
		t.Fatalf("expected plain-string slug, got %q", second.Slug)
	}
	if len(second.ID) != 32 {
		t.Fatalf("expected fingerprint id, got %q", second.ID)
	}
	if second.Excerpt != "   Five quick wins before the photographer arrives.   " {
		t.Fatalf("source excerpt must be verbatim, got %q", second.Excerpt)
	}
	if second.ReadTime != "4 min read" {
		t.Fatalf("authored read time must be kept, got %q", second.ReadTime)
	}
	if second.Image != "https://cdn.example.com/staging.jpg" {
		t.Fatalf("expected flat image URL, got %q", second.Image)
	}
	if second.Date != "February 10, 2025" || len(second.Categories) != 1 || second.Categories[0] != "Selling" {
		t.Fatalf("unexpected date/categories %q %v", second.Date, second.Categories)
	}

	third := items[2]
	if third.Slug != "post-no-slug" {
		t.Fatalf("expected id as slug, got %q", third.Slug)
	}
	if third.Date != "" || !third.PublishedAt.IsZero() {
		t.Fatalf("unparseable date should be empty, got %q", third.Date)
	}
	if third.Image != placeholder {
		t.Fatalf("expected placeholder image, got %q", third.Image)
	}
}

func TestNormalizer_Deterministic(t *testing.T) {
	n := NewNormalizer(stubImages{}, placeholder)
	posts := loadPosts(t)
	a, b := n.BlogAll(posts), n.BlogAll(posts)
	for i := range a {
		if a[i].ID != b[i].ID || a[i].Excerpt != b[i].Excerpt || a[i].ReadTime != b[i].ReadTime {
			t.Fatalf("item %d differs between runs", i)
		}
	}
}

func TestNormalizer_ImageBuilderFailure(t *testing.T) {
	n := NewNormalizer(stubImages{err: errors.New("malformed")}, placeholder)
	item := n.Blog(models.BlogPost{
		Title:     "x",
		MainImage: &models.ImageRef{Asset: &models.ImageAsset{Ref: "bogus"}},
	})
	if item.Image != placeholder {
		t.Fatalf("expected placeholder on builder error, got %q", item.Image)
	}

	n = NewNormalizer(nil, placeholder)
	item = n.Blog(models.BlogPost{
		MainImage: &models.ImageRef{Asset: &models.ImageAsset{Ref: "image-a-1x1-png", URL: "https://deref.test/a.png"}},
	})
	if item.Image != "https://deref.test/a.png" {
		t.Fatalf("expected dereferenced asset URL, got %q", item.Image)
	}
}

func TestNormalizer_Press(t *testing.T) {
	n := NewNormalizer(stubImages{}, placeholder)
	item := n.Press(models.PressRelease{
		ID:          "press-1",
		Title:       "Agent Named Top Producer",
		Slug:        models.Slug{Current: "top-producer"},
		ReleaseDate: "2024-11-05",
		PublishedAt: "2024-12-01T00:00:00Z",
		Category:    "Awards",
		Source:      "Star Tribune",
		SourceURL:   "https://startribune.test/article",
		Location:    "Eagan, MN",
		Featured:    true,
		Body:        []models.Block{textBlock(strings.Repeat("word ", 900))},
	})
	if item.Type != models.ContentPress {
		t.Fatalf("expected press type, got %s", item.Type)
	}
	if item.ReadTime != "" {
		t.Fatalf("press must not get a read time, got %q", item.ReadTime)
	}
	if item.Date != "November 5, 2024" {
		t.Fatalf("expected release date to win, got %q", item.Date)
	}
	if item.Source != "Star Tribune" || !item.Featured || item.Location != "Eagan, MN" {
		t.Fatalf("press fields not copied: %+v", item)
	}
	if item.Image != placeholder {
		t.Fatalf("expected placeholder, got %q", item.Image)
	}
	if len(item.Categories) != 1 || item.Categories[0] != "Awards" {
		t.Fatalf("unexpected categories %v", item.Categories)
	}
}
