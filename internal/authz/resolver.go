package authz

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fieldops/deployment-service/internal/domain"
)

// AdminStore exposes the admin registry lookups the resolver needs.
type AdminStore interface {
	IsAdmin(ctx context.Context, accountID int64) (bool, error)
	AdministeredCustomerIDs(ctx context.Context, accountID int64) ([]int64, error)
}

// Resolver computes the role and visibility scope of an account.
// Delegated customer scopes are cached in Redis with a short TTL; admin
// rows are managed out-of-band, so staleness is bounded by the TTL rather
// than invalidated.
type Resolver struct {
	admins AdminStore
	cache  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewResolver constructs a resolver. cache may be nil to disable caching.
func NewResolver(admins AdminStore, cache *redis.Client, ttl time.Duration, logger *zap.Logger) *Resolver {
	return &Resolver{admins: admins, cache: cache, ttl: ttl, logger: logger}
}

// Resolve returns the role of the account:
// root accounts are unrestricted; accounts with an Admin row see their own
// customer plus every delegated customer; everyone else sees only their own
// customer. CustomerAdmin rows without an Admin row confer nothing.
func (r *Resolver) Resolve(ctx context.Context, account *domain.Account) (Role, error) {
	if account.Root {
		return Root(), nil
	}

	admin, err := r.admins.IsAdmin(ctx, account.ID)
	if err != nil {
		return Role{}, err
	}
	if !admin {
		return Owner(account.CustomerID), nil
	}

	delegated, err := r.administeredCustomers(ctx, account.ID)
	if err != nil {
		return Role{}, err
	}
	return ScopedAdmin(append([]int64{account.CustomerID}, delegated...)), nil
}

// IsAdmin reports whether the account holds deployment-admin rights.
func (r *Resolver) IsAdmin(ctx context.Context, account *domain.Account) (bool, error) {
	if account.Root {
		return true, nil
	}
	return r.admins.IsAdmin(ctx, account.ID)
}

func (r *Resolver) administeredCustomers(ctx context.Context, accountID int64) ([]int64, error) {
	if ids, ok := r.cachedScope(ctx, accountID); ok {
		return ids, nil
	}

	ids, err := r.admins.AdministeredCustomerIDs(ctx, accountID)
	if err != nil {
		return nil, err
	}
	r.storeScope(ctx, accountID, ids)
	return ids, nil
}

func (r *Resolver) cachedScope(ctx context.Context, accountID int64) ([]int64, bool) {
	if r.cache == nil || r.ttl <= 0 {
		return nil, false
	}
	raw, err := r.cache.Get(ctx, scopeKey(accountID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("scope cache read failed", zap.Int64("account", accountID), zap.Error(err))
		}
		return nil, false
	}
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		r.logger.Warn("scope cache entry corrupt", zap.Int64("account", accountID), zap.Error(err))
		return nil, false
	}
	return ids, true
}

func (r *Resolver) storeScope(ctx context.Context, accountID int64, ids []int64) {
	if r.cache == nil || r.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, scopeKey(accountID), raw, r.ttl).Err(); err != nil {
		r.logger.Warn("scope cache write failed", zap.Int64("account", accountID), zap.Error(err))
	}
}

func scopeKey(accountID int64) string {
	return fmt.Sprintf("authz:scope:%d", accountID)
}
