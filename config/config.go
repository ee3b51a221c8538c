package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Listing backends
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	Listing  ListingConfig
	Sanity   SanityConfig
	S3       S3Config
	HTTP     HTTPConfig
	LogPath  string
	LogLevel string
	SiteID   string
	SitesDir string
	Sites    map[string]*SiteConfig
}

type ListingConfig struct {
	Backend     string
	DatabaseURL string
	DBPath      string
}

type SanityConfig struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	UseCDN     bool
}

// Enabled reports whether a CMS project is configured.
func (s SanityConfig) Enabled() bool {
	return s.ProjectID != ""
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	PresignTTL      time.Duration
}

// Enabled reports whether listing media is mirrored to a bucket.
func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

type HTTPConfig struct {
	Addr           string
	CORSOrigins    []string
	ClientTimeout  time.Duration
	ShutdownPeriod time.Duration
}

// SiteConfig is one branding of the site, loaded from config/sites/*.yaml.
type SiteConfig struct {
	ID               string   `yaml:"id" validate:"required"`
	Name             string   `yaml:"name" validate:"required"`
	AgentName        string   `yaml:"agent_name" validate:"required"`
	Brokerage        string   `yaml:"brokerage"`
	CMSSourceLabel   string   `yaml:"cms_source_label" validate:"required"`
	PlaceholderImage string   `yaml:"placeholder_image" validate:"required"`
	PageSize         int      `yaml:"page_size" validate:"min=1,max=48"`
	PaginationWindow *int     `yaml:"pagination_window" validate:"omitnil,min=0,max=5"`
	ImageWidth       int      `yaml:"image_width" validate:"min=1"`
	ImageHeight      int      `yaml:"image_height" validate:"min=1"`
	BlogCategories   []string `yaml:"blog_categories" validate:"dive,required"`
}

const defaultPaginationWindow = 1

// Window is the number of page links shown each side of the current page.
// An explicit 0 is kept; an unset window is 1.
func (s *SiteConfig) Window() int {
	if s.PaginationWindow == nil {
		return defaultPaginationWindow
	}
	return *s.PaginationWindow
}

func (s *SiteConfig) applyDefaults() {
	if s.PageSize == 0 {
		s.PageSize = 6
	}
	if s.PaginationWindow == nil {
		w := defaultPaginationWindow
		s.PaginationWindow = &w
	}
	if s.ImageWidth == 0 {
		s.ImageWidth = 800
	}
	if s.ImageHeight == 0 {
		s.ImageHeight = 600
	}
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Listing: ListingConfig{
			Backend:     strings.ToLower(getEnv("LISTING_BACKEND", BackendSQLite)),
			DatabaseURL: os.Getenv("DATABASE_URL"),
			DBPath:      getEnv("DB_PATH", "listings.db"),
		},
		Sanity: SanityConfig{
			ProjectID:  os.Getenv("SANITY_PROJECT_ID"),
			Dataset:    getEnv("SANITY_DATASET", "production"),
			APIVersion: getEnv("SANITY_API_VERSION", "2024-01-01"),
			Token:      os.Getenv("SANITY_TOKEN"),
			UseCDN:     getEnvBool("SANITY_USE_CDN", true),
		},
		S3: S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          getEnv("S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
			PublicBaseURL:   os.Getenv("S3_PUBLIC_BASE_URL"),
			PresignTTL:      getEnvDuration("S3_PRESIGN_TTL", time.Hour),
		},
		HTTP: HTTPConfig{
			Addr:           getEnv("HTTP_ADDR", ":8080"),
			CORSOrigins:    splitList(os.Getenv("CORS_ORIGINS")),
			ClientTimeout:  getEnvDuration("HTTP_CLIENT_TIMEOUT", 30*time.Second),
			ShutdownPeriod: getEnvDuration("HTTP_SHUTDOWN_PERIOD", 10*time.Second),
		},
		LogPath:  os.Getenv("LOG_PATH"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		SiteID:   os.Getenv("SITE_ID"),
		SitesDir: getEnv("SITES_DIR", filepath.Join("config", "sites")),
		Sites:    make(map[string]*SiteConfig),
	}

	if cfg.Listing.Backend != BackendSQLite && cfg.Listing.Backend != BackendPostgres {
		return nil, fmt.Errorf("unknown LISTING_BACKEND %q", cfg.Listing.Backend)
	}
	if cfg.Listing.Backend == BackendPostgres && cfg.Listing.DatabaseURL == "" {
		return nil, fmt.Errorf("LISTING_BACKEND=postgres requires DATABASE_URL")
	}

	if err := cfg.loadSiteConfigs(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadSiteConfigs() error {
	entries, err := os.ReadDir(c.SitesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	validate := validator.New()
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}

		path := filepath.Join(c.SitesDir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var site SiteConfig
		if err := yaml.Unmarshal(data, &site); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
		site.applyDefaults()
		if err := validate.Struct(&site); err != nil {
			return fmt.Errorf("validate %s: %w", path, err)
		}

		c.Sites[site.ID] = &site
	}

	return nil
}

// Site returns the active branding: id when given, else SITE_ID, else the
// first site by id.
func (c *Config) Site(id string) (*SiteConfig, error) {
	if id == "" {
		id = c.SiteID
	}
	if id != "" {
		site, ok := c.Sites[id]
		if !ok {
			return nil, fmt.Errorf("unknown site %q", id)
		}
		return site, nil
	}
	if len(c.Sites) == 0 {
		return nil, fmt.Errorf("no site configs in %s", c.SitesDir)
	}
	ids := make([]string, 0, len(c.Sites))
	for k := range c.Sites {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return c.Sites[ids[0]], nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
