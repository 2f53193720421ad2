package storage

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/jonboulle/clockwork"
	"github.com/phytoscan/phytoscan-api/config"
	"github.com/phytoscan/phytoscan-api/internal/observability"
)

type Cloudinary struct {
	CLD *cloudinary.Cloudinary
}

func NewCloudinary(cfg *config.Config) *Cloudinary {
	cld, err := cloudinary.NewFromParams(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		log.Fatalf("Failed to initialize Cloudinary: %v", err)
	}

	return &Cloudinary{CLD: cld}
}

// UploadImage uploads a file (path, io.Reader or base64 data URI) into
// the given folder and returns the delivery URL and public ID.
func (c *Cloudinary) UploadImage(ctx context.Context, file interface{}, folder string) (string, string, error) {
	resp, err := c.CLD.Upload.Upload(ctx, file, uploader.UploadParams{Folder: folder})
	if err != nil {
		return "", "", err
	}
	return resp.SecureURL, resp.PublicID, nil
}

// SignedURL builds a signed delivery URL for a stored asset.
func (c *Cloudinary) SignedURL(publicID string) (string, error) {
	img, err := c.CLD.Image(publicID)
	if err != nil {
		return "", err
	}
	img.Config.URL.SignURL = true
	return img.String()
}

// URLSigner is the piece of Cloudinary the cache needs.
type URLSigner interface {
	SignedURL(publicID string) (string, error)
}

type cachedURL struct {
	url       string
	expiresAt time.Time
}

// SignedURLCache memoizes signed gallery URLs until shortly before they
// expire, so browsing the catalog does not re-sign every thumbnail on
// every page load.
type SignedURLCache struct {
	signer  URLSigner
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics

	mu      sync.Mutex
	entries map[string]cachedURL
}

func NewSignedURLCache(signer URLSigner, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *SignedURLCache {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &SignedURLCache{
		signer:  signer,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
		entries: make(map[string]cachedURL),
	}
}

// Get returns the cached signed URL for the asset, signing a fresh one
// when missing or expired.
func (c *SignedURLCache) Get(publicID string) (string, error) {
	now := c.clock.Now()

	c.mu.Lock()
	entry, ok := c.entries[publicID]
	c.mu.Unlock()

	if ok && now.Before(entry.expiresAt) {
		c.metrics.ObserveSignedURLCache("hit")
		return entry.url, nil
	}

	url, err := c.signer.SignedURL(publicID)
	if err != nil {
		return "", err
	}
	c.metrics.ObserveSignedURLCache("miss")

	c.mu.Lock()
	c.entries[publicID] = cachedURL{url: url, expiresAt: now.Add(c.ttl)}
	c.mu.Unlock()
	return url, nil
}

// Purge drops expired entries. Called opportunistically by the catalog
// handler; correctness does not depend on it.
func (c *SignedURLCache) Purge() {
	now := c.clock.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, id)
		}
	}
}
