package storage

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmrmediateam/eagan-luxury-sub001/config"
)

func newTestSigner(t *testing.T, cfg config.S3Config) *S3MediaSigner {
	t.Helper()
	cfg.Bucket = "media"
	cfg.Region = "us-east-1"
	cfg.AccessKeyID = "AKIDTEST"
	cfg.SecretAccessKey = "secret"
	s, err := NewS3MediaSigner(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	return s
}

func TestS3MediaSigner_PublicURL(t *testing.T) {
	tests := []struct {
		name string
		base string
		key  string
		want string
	}{
		{"private bucket", "", "listings/1.jpg", ""},
		{"plain join", "https://media.eaganluxury.com", "listings/1.jpg", "https://media.eaganluxury.com/listings/1.jpg"},
		{"trailing slash", "https://media.eaganluxury.com/", "listings/1.jpg", "https://media.eaganluxury.com/listings/1.jpg"},
		{"leading slash", "https://media.eaganluxury.com", "/listings/1.jpg", "https://media.eaganluxury.com/listings/1.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSigner(t, config.S3Config{PublicBaseURL: tt.base})
			if got := s.PublicURL(tt.key); got != tt.want {
				t.Fatalf("PublicURL(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestS3MediaSigner_Presign(t *testing.T) {
	s := newTestSigner(t, config.S3Config{Endpoint: "https://minio.test:9000", PresignTTL: 15 * time.Minute})

	raw, err := s.SignedURL(context.Background(), "listings/NST-1/1.jpg")
	if err != nil {
		t.Fatalf("signed url: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %s: %v", raw, err)
	}
	if u.Host != "minio.test:9000" || u.Path != "/media/listings/NST-1/1.jpg" {
		t.Fatalf("expected path-style url on the custom endpoint, got %s", raw)
	}
	q := u.Query()
	if q.Get("X-Amz-Expires") != "900" {
		t.Fatalf("expected 900s expiry, got %q", q.Get("X-Amz-Expires"))
	}
	if !strings.HasPrefix(q.Get("X-Amz-Credential"), "AKIDTEST/") || q.Get("X-Amz-Signature") == "" {
		t.Fatalf("expected signed query, got %s", raw)
	}

	public := newTestSigner(t, config.S3Config{PublicBaseURL: "https://media.eaganluxury.com"})
	if got, _ := public.SignedURL(context.Background(), "a.jpg"); got != "https://media.eaganluxury.com/a.jpg" {
		t.Fatalf("public bucket should not presign, got %s", got)
	}
}

func TestS3MediaSigner_DefaultTTL(t *testing.T) {
	if s := newTestSigner(t, config.S3Config{}); s.cfg.PresignTTL != time.Hour {
		t.Fatalf("expected 1h default, got %s", s.cfg.PresignTTL)
	}
}
