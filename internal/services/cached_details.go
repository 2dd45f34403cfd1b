package services

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	log "github.com/sirupsen/logrus"
)

// CachedDetails memoizes detail pages by URL for the lifetime of a run, so
// that listings surfacing in several searches cost one navigation.
type CachedDetails struct {
	provider detailProvider
	cache    *gocache.Cache
}

func NewCachedDetails(provider detailProvider) *CachedDetails {
	return &CachedDetails{provider: provider, cache: gocache.New(30*time.Minute, time.Hour)}
}

func (c *CachedDetails) Enrich(ctx context.Context, url string) (map[string]string, error) {
	if value, found := c.cache.Get(url); found {
		return value.(map[string]string), nil
	}

	details, err := c.provider.Enrich(ctx, url)
	if err == nil && len(details) > 0 {
		if cacheErr := c.cache.Add(url, details, gocache.DefaultExpiration); cacheErr != nil {
			log.Errorf("failed to cache details for %s: %v", url, cacheErr)
		}
	}

	return details, err
}
