package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/dropDatabas3/authhero/internal/domain/repository"
)

// CachedClients envuelve un ClientRepository con cache local y coalescing de
// lecturas concurrentes. Sólo cachea hits.
type CachedClients struct {
	next  repository.ClientRepository
	local *gocache.Cache
	group singleflight.Group
}

func NewCachedClients(next repository.ClientRepository, ttl time.Duration) *CachedClients {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CachedClients{next: next, local: gocache.New(ttl, 2*ttl)}
}

func (c *CachedClients) Get(ctx context.Context, clientID string) (*repository.Client, error) {
	if v, ok := c.local.Get(clientID); ok {
		cp := *v.(*repository.Client)
		return &cp, nil
	}
	v, err, _ := c.group.Do(clientID, func() (any, error) {
		cl, err := c.next.Get(ctx, clientID)
		if err != nil {
			return nil, err
		}
		c.local.SetDefault(clientID, cl)
		return cl, nil
	})
	if err != nil {
		return nil, err
	}
	cp := *v.(*repository.Client)
	return &cp, nil
}

// Invalidate descarta la entrada de clientID.
func (c *CachedClients) Invalidate(clientID string) { c.local.Delete(clientID) }
