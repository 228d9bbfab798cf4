// Package service is the mediation layer proper: cached reads in
// front of a Gateway, cache-bypassing mutations, and the refresh
// discipline tying them together.
package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Andriiklymiuk/ung-sub008/internal/entitycache"
	"github.com/Andriiklymiuk/ung-sub008/internal/snapshot"
	"github.com/Andriiklymiuk/ung-sub008/internal/toolerr"
	"github.com/Andriiklymiuk/ung-sub008/internal/ung/domain"
)

type Service struct {
	gw        domain.Gateway
	cache     *entitycache.Cache
	snapshots *snapshot.Store
	log       *zap.Logger
}

type Params struct {
	fx.In

	Gateway   domain.Gateway
	Cache     *entitycache.Cache
	Snapshots *snapshot.Store `optional:"true"`
	Log       *zap.Logger
}

func NewService(p Params) domain.Service {
	return &Service{
		gw:        p.Gateway,
		cache:     p.Cache,
		snapshots: p.Snapshots,
		log:       p.Log.Named("ung.service"),
	}
}

// saveSnapshot persists the last good unfiltered batch, best effort.
func (s *Service) saveSnapshot(ctx context.Context, entity domain.EntityType, scope string, records any) {
	if s.snapshots == nil || scope != "" {
		return
	}
	if err := s.snapshots.Save(ctx, entity, records); err != nil {
		s.log.Warn("snapshot save failed",
			zap.String("entity", string(entity)),
			zap.Error(err),
		)
	}
}

func listCached[T any](ctx context.Context, s *Service, entity domain.EntityType, opts domain.ListOptions, fetch func(context.Context, domain.ListOptions) ([]T, error)) ([]T, error) {
	scope := opts.ScopeKey()
	key := entitycache.Key{Entity: entity, Scope: scope}
	return entitycache.GetOrFetch(ctx, s.cache, key, 0, func(ctx context.Context) ([]T, error) {
		records, err := fetch(ctx, opts)
		if err != nil {
			return nil, err
		}
		s.saveSnapshot(ctx, entity, scope, records)
		return records, nil
	})
}

func (s *Service) ListInvoices(ctx context.Context, opts domain.ListOptions) ([]domain.Invoice, error) {
	return listCached(ctx, s, domain.EntityInvoice, opts, s.gw.ListInvoices)
}

func (s *Service) ListClients(ctx context.Context, opts domain.ListOptions) ([]domain.Client, error) {
	return listCached(ctx, s, domain.EntityClient, opts, s.gw.ListClients)
}

func (s *Service) ListContracts(ctx context.Context, opts domain.ListOptions) ([]domain.Contract, error) {
	return listCached(ctx, s, domain.EntityContract, opts, s.gw.ListContracts)
}

func (s *Service) ListExpenses(ctx context.Context, opts domain.ListOptions) ([]domain.Expense, error) {
	return listCached(ctx, s, domain.EntityExpense, opts, s.gw.ListExpenses)
}

func (s *Service) ListSessions(ctx context.Context, opts domain.ListOptions) ([]domain.TrackingSession, error) {
	return listCached(ctx, s, domain.EntityTracking, opts, s.gw.ListSessions)
}

func (s *Service) Dashboard(ctx context.Context) (domain.DashboardMetrics, error) {
	key := entitycache.Key{Entity: domain.EntityDashboard}
	return entitycache.GetOrFetch(ctx, s.cache, key, 0, func(ctx context.Context) (domain.DashboardMetrics, error) {
		return s.gw.Dashboard(ctx)
	})
}

// ActiveSession is transient, at most one instance system-wide, and
// never cached: the session monitor needs the tool's current answer.
func (s *Service) ActiveSession(ctx context.Context) (*domain.ActiveSession, error) {
	return s.gw.ActiveSession(ctx)
}

func (s *Service) TodayHours(ctx context.Context) (decimal.Decimal, error) {
	return s.gw.TodayHours(ctx)
}

// Mutate validates locally, bypasses the cache, and on success
// invalidates the affected entity type plus the dashboard aggregates
// so the next read re-fetches.
func (s *Service) Mutate(ctx context.Context, req domain.MutationRequest) (domain.MutationResult, error) {
	if !req.Entity.Valid() {
		return domain.MutationResult{}, toolerr.Wrap(toolerr.KindValidation, "mutate", domain.ErrUnknownEntity)
	}
	if req.Entity == domain.EntityDashboard {
		return domain.MutationResult{}, toolerr.Wrap(toolerr.KindValidation, "mutate", domain.ErrEntityNotMutable)
	}
	if req.Destructive() && !req.Confirm {
		return domain.MutationResult{}, toolerr.Wrap(toolerr.KindValidation, "mutate", domain.ErrConfirmationNeeded)
	}

	result, err := s.gw.Mutate(ctx, req)
	if err != nil {
		return domain.MutationResult{}, err
	}

	s.cache.Invalidate(req.Entity)
	s.cache.Invalidate(domain.EntityDashboard)
	s.log.Info("mutation applied",
		zap.String("entity", string(req.Entity)),
		zap.String("op", string(req.Op)),
	)
	return result, nil
}

func (s *Service) Refresh(entity domain.EntityType) {
	if entity == "" {
		s.cache.InvalidateAll()
		return
	}
	s.cache.Invalidate(entity)
}
