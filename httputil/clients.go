package httputil

import (
	"net/http"
	"time"
)

// Clients bundles the HTTP clients shared across the daemon. Feed
// fetches get a hard timeout because a hung feed pull would otherwise
// hold the single-flight guard forever.
type Clients struct {
	Feed  *http.Client // feed document fetches
	Media *http.Client // photo downloads, longer timeout
}

func NewClients(feedTimeout time.Duration) *Clients {
	if feedTimeout <= 0 {
		feedTimeout = 30 * time.Second
	}
	return &Clients{
		Feed:  &http.Client{Timeout: feedTimeout},
		Media: &http.Client{Timeout: 60 * time.Second},
	}
}
