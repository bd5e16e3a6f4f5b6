package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rushteam/homerec/config"
	"github.com/rushteam/homerec/config/builders"
	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/feed"
	"github.com/rushteam/homerec/filter"
	"github.com/rushteam/homerec/logging"
	"github.com/rushteam/homerec/metrics"
	"github.com/rushteam/homerec/model"
	"github.com/rushteam/homerec/pipeline"
	"github.com/rushteam/homerec/pricing"
	"github.com/rushteam/homerec/rank"
	"github.com/rushteam/homerec/rerank"
	"github.com/rushteam/homerec/scoring"
	"github.com/rushteam/homerec/store"
)

// app 是一次进程启动内的共享对象：模型只获取一次，之后只读。
type app struct {
	cfg    *config.Config
	feed   feed.Feed
	ranker *rank.Ranker
	// kv 存放 Redis 目录与下架列表，未配置 Redis 且需要下架列表时为进程内 MemoryStore
	kv core.Store

	closers []func() error
}

func loadApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	logging.Init(cfg.Log.LoggingConfig())
	return newApp(ctx, cfg)
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	handle := acquireModel(cfg.Model)
	metrics.SetModelState(handle.Strategy())
	logging.Info().
		Str("state", handle.State().String()).
		Str("strategy", handle.Strategy()).
		Str("source", handle.Source()).
		Msg("price model ready")

	predictor := pricing.NewPredictor(handle, cfg.Model.ReferenceYear)
	scorer := scoring.NewScorer(cfg.Model.ReferenceYear)

	kv, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a.kv = kv

	f, err := a.buildFeed(kv)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.feed = f

	r, err := buildRanker(cfg.Ranking, predictor, scorer, kv)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.ranker = r
	return a, nil
}

func acquireModel(mc config.ModelConfig) *model.Handle {
	if mc.Endpoint != "" {
		return model.AcquireRemote(mc.Endpoint, mc.Timeout)
	}
	return model.Acquire(mc.Path)
}

// openStore 在 feed 或下架列表需要时创建 Store：配置了 Redis 地址用 Redis，否则用 MemoryStore。
func (a *app) openStore(ctx context.Context) (core.Store, error) {
	fc, rc := a.cfg.Feed, a.cfg.Ranking
	switch {
	case fc.Redis.Addr != "" && (fc.Uses("redis") || rc.BlacklistKey != ""):
		rs, err := store.NewRedisStore(ctx, fc.Redis.Addr, fc.Redis.Password, fc.Redis.DB)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rs.Close)
		return rs, nil
	case rc.BlacklistKey != "":
		ms := store.NewMemoryStore()
		a.closers = append(a.closers, ms.Close)
		return ms, nil
	default:
		return nil, nil
	}
}

// buildFeed 按 feed.source 构建目录；多个来源时用 feed.Multi 并发读取并合并。
func (a *app) buildFeed(kv core.Store) (feed.Feed, error) {
	fc := a.cfg.Feed
	sources := fc.Sources()
	feeds := make([]feed.Feed, 0, len(sources))
	for _, src := range sources {
		f, err := a.openFeed(src, kv)
		if err != nil {
			return nil, err
		}
		feeds = append(feeds, f)
	}
	if len(feeds) == 1 {
		return feeds[0], nil
	}
	return &feed.Multi{Feeds: feeds}, nil
}

func (a *app) openFeed(source string, kv core.Store) (feed.Feed, error) {
	fc := a.cfg.Feed
	switch source {
	case "mock":
		return feed.NewMockFeed(fc.Count, fc.Seed), nil
	case "file":
		return &feed.FileFeed{Path: fc.Path}, nil
	case "redis":
		return feed.NewStoreFeed(kv, fc.Redis.Key), nil
	case "sqlite":
		sf, err := feed.OpenSQLite(fc.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite feed: %w", err)
		}
		a.closers = append(a.closers, sf.Close)
		return sf, nil
	default:
		return nil, fmt.Errorf("unknown feed source %q", source)
	}
}

func buildRanker(rc config.RankingConfig, predictor *pricing.Predictor, scorer *scoring.Scorer, kv core.Store) (*rank.Ranker, error) {
	r := rank.NewRanker(predictor, scorer)
	r.TopN = rc.TopN

	if rc.PipelinePath != "" {
		builders.RegisterRuntime(builders.Runtime{Predictor: predictor, Scorer: scorer, Store: kv})
		pc, err := pipeline.Load(rc.PipelinePath)
		if err != nil {
			return nil, fmt.Errorf("load pipeline: %w", err)
		}
		if err := config.ValidatePipelineConfig(pc); err != nil {
			return nil, err
		}
		p, err := pc.BuildPipeline(config.DefaultFactory())
		if err != nil {
			return nil, fmt.Errorf("build pipeline: %w", err)
		}
		r.Pipeline = p
		return r, nil
	}

	if rc.FilterExpr != "" {
		f, err := filter.NewExprFilter(rc.FilterExpr)
		if err != nil {
			return nil, fmt.Errorf("ranking.filter_expr: %w", err)
		}
		r.ExtraFilters = append(r.ExtraFilters, f)
	}
	if len(rc.Blacklist) > 0 || rc.BlacklistKey != "" {
		var adapter *filter.StoreAdapter
		if kv != nil {
			adapter = filter.NewStoreAdapter(kv)
		}
		r.ExtraFilters = append(r.ExtraFilters, filter.NewBlacklistFilter(rc.Blacklist, adapter, rc.BlacklistKey))
	}
	if rc.DiversityKey != "" {
		r.Diversity = &rerank.Diversity{Key: rc.DiversityKey}
	}
	return r, nil
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
