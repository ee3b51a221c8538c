package httputil

import (
	"net/http"
	"time"
)

type Clients struct {
	CMS     *http.Client // Sanity query API and image CDN
	Storage *http.Client // S3-compatible object storage
}

func NewClients(timeout time.Duration) *Clients {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		ForceAttemptHTTP2:   true,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     90 * time.Second,
	}

	return &Clients{
		CMS:     &http.Client{Timeout: timeout, Transport: transport},
		Storage: &http.Client{Timeout: 2 * timeout},
	}
}
