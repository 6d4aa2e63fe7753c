package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/stagehand"
	"github.com/aretw0/stagehand/internal/config"
	"github.com/aretw0/stagehand/pkg/adapters/memory"
	"github.com/aretw0/stagehand/pkg/adapters/notify"
	"github.com/aretw0/stagehand/pkg/adapters/redis"
	"github.com/aretw0/stagehand/pkg/adapters/virtual"
	"github.com/aretw0/stagehand/pkg/observability"
	"github.com/aretw0/stagehand/pkg/persistence/middleware"
	"github.com/aretw0/stagehand/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Stack is a coordinator wired with virtual engines and the configured observers.
type Stack struct {
	Coordinator *stagehand.Coordinator
	Engines     map[string]*virtual.Engine
	Journal     *virtual.Journal
	Metrics     *observability.Metrics
	Registry    *prometheus.Registry
	Stream      *observability.Stream

	redis *redis.Store
}

// NewStack builds a Stack from cfg. Descriptors live in Redis when cfg.Redis.Addr
// is set, in memory otherwise.
func NewStack(cfg config.Config, logger *slog.Logger) (*Stack, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	st := &Stack{
		Engines:  make(map[string]*virtual.Engine, len(cfg.Engines)),
		Journal:  virtual.NewJournal(),
		Metrics:  observability.NewMetrics(reg),
		Registry: reg,
		Stream:   observability.NewStream(logger),
	}

	hooks := st.Metrics.Hooks().
		Merge(st.Stream.Hooks()).
		Merge(observability.LogHooks(logger))

	opts := []stagehand.Option{
		stagehand.WithLogger(logger),
		stagehand.WithHost(cfg.Host),
		stagehand.WithSink(notify.NewLogSink(logger)),
		stagehand.WithLifecycleHooks(hooks),
	}
	for _, id := range cfg.Engines {
		e := virtual.NewEngine(id, st.Journal)
		st.Engines[id] = e
		opts = append(opts, stagehand.WithEngine(e))
	}

	var store ports.DescriptorStore = memory.NewStore()
	if cfg.Redis.Addr != "" {
		storeOpts := []redis.Option{redis.WithTTL(cfg.Redis.TTL)}
		prefix := "stagehand:"
		if cfg.Redis.Prefix != "" {
			prefix = cfg.Redis.Prefix
		}
		storeOpts = append(storeOpts, redis.WithPrefix(prefix+"descriptor:"))
		st.redis = redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, storeOpts...)
		store = st.redis
		opts = append(opts, stagehand.WithLocker(redis.NewLocker(st.redis.Client(), prefix)))
		logger.Info("Using Redis descriptor store", "addr", cfg.Redis.Addr, "prefix", prefix)
	}

	mws, err := storeMiddleware(cfg.Store)
	if err != nil {
		st.Close()
		return nil, err
	}
	opts = append(opts, stagehand.WithStore(middleware.Chain(store, mws...)))

	co, err := stagehand.New(opts...)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("error initializing coordinator: %w", err)
	}
	st.Coordinator = co
	return st, nil
}

// storeMiddleware builds the redaction and encryption layers, outermost first.
func storeMiddleware(cfg config.StoreConfig) ([]middleware.Middleware, error) {
	var mws []middleware.Middleware
	if len(cfg.RedactParams) > 0 {
		redact, err := middleware.NewPIIMiddleware(cfg.RedactParams)
		if err != nil {
			return nil, err
		}
		mws = append(mws, redact)
	}
	active, fallback, err := cfg.Keys()
	if err != nil {
		return nil, err
	}
	if active != nil {
		encrypt, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    active,
			FallbackKeys: fallback,
		})
		if err != nil {
			return nil, err
		}
		mws = append(mws, encrypt)
	}
	return mws, nil
}

// Close releases the Redis connection, if any.
func (st *Stack) Close() error {
	if st.redis == nil {
		return nil
	}
	return st.redis.Close()
}
