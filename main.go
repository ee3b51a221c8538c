package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmrmediateam/eagan-luxury-sub001/cms"
	"github.com/dmrmediateam/eagan-luxury-sub001/config"
	"github.com/dmrmediateam/eagan-luxury-sub001/content"
	"github.com/dmrmediateam/eagan-luxury-sub001/httputil"
	"github.com/dmrmediateam/eagan-luxury-sub001/listing"
	"github.com/dmrmediateam/eagan-luxury-sub001/logging"
	"github.com/dmrmediateam/eagan-luxury-sub001/render"
	"github.com/dmrmediateam/eagan-luxury-sub001/services"
	"github.com/dmrmediateam/eagan-luxury-sub001/storage"
	"github.com/dmrmediateam/eagan-luxury-sub001/web"
)

var (
	migrateOnly = flag.Bool("migrate", false, "Run migrations for the configured backend and exit")
	siteID      = flag.String("site", "", "Site config to serve (overrides SITE_ID)")
)

// listingStore is what both relational backends provide.
type listingStore interface {
	services.ListingStore
	web.Pinger
}

func main() {
	flag.Parse()
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logging.SetLevel(cfg.LogLevel)
	if cfg.LogPath != "" {
		logFile, err := logging.Setup(cfg.LogPath, logging.DefaultMaxBytes, logging.DefaultBackups)
		if err != nil {
			log.Printf("Warning: could not set up file logging: %v", err)
		} else {
			defer logFile.Close()
		}
	}

	ctx := context.Background()

	var store listingStore
	switch cfg.Listing.Backend {
	case config.BackendPostgres:
		pgStore, err := storage.NewPostgresStore(ctx, cfg.Listing.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		defer pgStore.Close()
		log.Printf("Connected to Postgres: %s", maskConnectionString(cfg.Listing.DatabaseURL))

		if *migrateOnly {
			if err := pgStore.Migrate(); err != nil {
				log.Fatalf("Migration failed: %v", err)
			}
			log.Println("Migrations complete")
			return
		}
		store = pgStore
	default:
		// Opening the SQLite store applies its migrations.
		sqliteStore, err := storage.NewSQLiteStore(cfg.Listing.DBPath)
		if err != nil {
			log.Fatalf("Failed to open SQLite: %v", err)
		}
		defer sqliteStore.Close()
		log.Printf("SQLite database: %s", cfg.Listing.DBPath)

		if *migrateOnly {
			log.Println("Migrations complete")
			return
		}
		store = sqliteStore
	}

	site, err := cfg.Site(*siteID)
	if err != nil {
		log.Fatalf("Failed to select site: %v", err)
	}
	log.Printf("Serving site %s (%s)", site.Name, site.ID)

	clients := httputil.NewClients(cfg.HTTP.ClientTimeout)

	// Interface values stay nil when a collaborator is not configured.
	var (
		cmsListings services.CMSListings
		cmsContent  services.ContentSource
		images      listing.ImageURLBuilder
		signer      services.MediaSigner
	)
	if cfg.Sanity.Enabled() {
		cmsStore := cms.NewStore(cms.NewClient(&cfg.Sanity, clients.CMS))
		cmsListings, cmsContent = cmsStore, cmsStore
		images = cms.NewImageBuilder(&cfg.Sanity)
		log.Printf("CMS: project %s, dataset %s", cfg.Sanity.ProjectID, cfg.Sanity.Dataset)
	} else {
		log.Println("Warning: SANITY_PROJECT_ID not set, CMS pages disabled")
	}
	if cfg.S3.Enabled() {
		s3Signer, err := storage.NewS3MediaSigner(ctx, cfg.S3, clients.Storage)
		if err != nil {
			log.Printf("Warning: media signing disabled: %v", err)
		} else {
			signer = s3Signer
			log.Printf("Media bucket: %s", cfg.S3.Bucket)
		}
	}

	renderer, err := render.New(render.Site{
		Name:      site.Name,
		AgentName: site.AgentName,
		Brokerage: site.Brokerage,
	}, site.PlaceholderImage)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	normalizer := content.NewNormalizer(images, site.PlaceholderImage)
	normalizer.Width, normalizer.Height = site.ImageWidth, site.ImageHeight

	listingService := services.NewListingService(store, cmsListings, signer, images, site)
	contentService := services.NewContentService(cmsContent, normalizer, site)
	log.Println("Services initialized")

	server := &http.Server{
		Addr:           cfg.HTTP.Addr,
		Handler:        web.NewServer(listingService, contentService, renderer, store).NewHandler(cfg.HTTP.CORSOrigins),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Listening on %s", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.HTTP.ShutdownPeriod)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: shutdown: %v", err)
	}
	log.Println("Goodbye!")
}

// maskConnectionString hides the password in a database URL for logging.
func maskConnectionString(connStr string) string {
	u, err := url.Parse(connStr)
	if err != nil || u.User == nil {
		return connStr
	}
	return u.Redacted()
}
