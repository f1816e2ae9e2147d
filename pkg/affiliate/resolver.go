package affiliate

import (
	"context"
	"log"
	"time"

	"what-coffee-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

const cacheTTL = time.Hour

// Resolver maps a catalog item to its purchase link: the affiliate URL when
// one exists, the source URL otherwise. Resolved links are cached in Redis;
// when Redis is unavailable a process-local cache takes over so resolution
// keeps working.
type Resolver struct {
	catalog contract.CoffeeRepository
	rdb     *redis.Client
	local   *cache.Cache
	logger  *log.Logger
}

// NewResolver creates a resolver. rdb may be nil.
func NewResolver(catalog contract.CoffeeRepository, rdb *redis.Client, logger *log.Logger) *Resolver {
	return &Resolver{
		catalog: catalog,
		rdb:     rdb,
		local:   cache.New(cacheTTL, 10*time.Minute),
		logger:  logger,
	}
}

// Resolve returns the purchase link for the item, or ("", false) when the
// item is unknown or has no link at all.
func (r *Resolver) Resolve(ctx context.Context, itemID uuid.UUID) (string, bool) {
	key := "affiliate:" + itemID.String()

	if url, ok := r.cached(ctx, key); ok {
		return url, url != ""
	}

	coffee, err := r.catalog.FindByID(ctx, itemID)
	if err != nil {
		r.logger.Printf("[ERROR] Affiliate lookup failed for %s: %v", itemID, err)
		return "", false
	}
	if coffee == nil {
		return "", false
	}

	url := coffee.AffiliateURL
	if url == "" {
		url = coffee.SourceURL
	}

	r.store(ctx, key, url)
	return url, url != ""
}

func (r *Resolver) cached(ctx context.Context, key string) (string, bool) {
	if r.rdb != nil {
		url, err := r.rdb.Get(ctx, key).Result()
		if err == nil {
			return url, true
		}
		if err != redis.Nil {
			r.logger.Printf("[WARN] Redis affiliate cache read failed: %v", err)
		}
	}
	if x, found := r.local.Get(key); found {
		return x.(string), true
	}
	return "", false
}

func (r *Resolver) store(ctx context.Context, key, url string) {
	if r.rdb != nil {
		if err := r.rdb.Set(ctx, key, url, cacheTTL).Err(); err != nil {
			r.logger.Printf("[WARN] Redis affiliate cache write failed: %v", err)
		}
	}
	r.local.Set(key, url, cache.DefaultExpiration)
}
