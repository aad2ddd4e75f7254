// cmd/agriwise/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"agriwise-client/internal/api"
	"agriwise-client/internal/catalog"
	"agriwise-client/internal/common/cache"
	"agriwise-client/internal/common/config"
	apperrors "agriwise-client/internal/common/errors"
	"agriwise-client/internal/common/logger"
	"agriwise-client/internal/common/observability"
	"agriwise-client/internal/models"
	"agriwise-client/internal/params"
	"agriwise-client/internal/render"
	"agriwise-client/internal/session"
	"agriwise-client/internal/tracker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errReported marks a failure that was already rendered for the user.
var errReported = errors.New("reported")

type globalFlags struct {
	configFile string
	profile    string
	baseURL    string
	verbose    bool
}

// app holds everything a command needs. It is built once per invocation.
type app struct {
	cfg       *config.Config
	zap       *zap.Logger
	log       logger.Logger
	obs       *observability.Observability
	redis     *cache.RedisClient
	session   *session.Session
	client    *api.Client
	catalog   *catalog.Catalog
	validator *params.Validator
	history   *tracker.HistoryTracker
	stats     *tracker.StatsAggregator
	out       *render.Renderer
	errOut    io.Writer
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	rt := &app{}

	root := &cobra.Command{
		Use:   "agriwise",
		Short: "Farmland and crop recommendations from the agriwise service",
		Long: `agriwise asks the recommendation service for farmland matches or crop
suitability and prints the ranked, classified results.

Run "agriwise shell" for an interactive session that keeps history and stats.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return rt.setup(cmd.Context(), flags, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return rt.close()
		},
	}

	root.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "Config file (default: configs/config.yaml)")
	root.PersistentFlags().StringVarP(&flags.profile, "profile", "p", "", "Session profile")
	root.PersistentFlags().StringVar(&flags.baseURL, "base-url", "", "Recommendation service URL")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newLoginCmd(rt),
		newLogoutCmd(rt),
		newWhoamiCmd(rt),
		newLandsCmd(rt),
		newCropsCmd(rt),
		newShellCmd(rt),
	)
	return root
}

func (a *app) setup(ctx context.Context, flags *globalFlags, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		cfg *config.Config
		err error
	)
	if flags.configFile != "" {
		cfg, err = config.LoadFromFile(flags.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	if flags.baseURL != "" {
		cfg.API.BaseURL = flags.baseURL
	}
	if flags.profile != "" {
		cfg.Session.Profile = flags.profile
	}
	if flags.verbose {
		cfg.Logging.Level = "debug"
	}
	a.cfg = cfg
	a.errOut = errOut

	a.zap = logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	a.log = logger.NewZapAdapter(a.zap).WithFields(map[string]interface{}{
		"app":     cfg.App.Name,
		"version": cfg.App.Version,
	})

	a.obs = observability.NewNoop()
	if cfg.Metrics.Enabled {
		obs, err := observability.New(cfg.App.Name, prometheus.DefaultRegisterer)
		if err != nil {
			return fmt.Errorf("observability init failed: %w", err)
		}
		a.obs = obs
	}

	if cfg.RedisRequired() {
		if err := a.connectRedis(ctx); err != nil {
			return err
		}
	}

	store, err := a.credentialStore()
	if err != nil {
		return err
	}
	a.session = session.New(store, cfg.Session.Profile, a.log)
	if err := a.session.Restore(ctx); err != nil {
		a.log.Warn("could not restore session", map[string]interface{}{"error": err})
	}

	a.client, err = api.NewClient(cfg.API, a.log, api.WithObservability(a.obs))
	if err != nil {
		return err
	}

	var catalogCache *cache.RedisClient
	if cfg.Cache.Enabled {
		catalogCache = a.redis
	}
	a.catalog = catalog.New(a.client, catalogCache, config.GetDuration(cfg.Cache.CatalogTTL), a.log)

	defaults, unknown := params.DefaultLandDefaults().WithOverrides(cfg.Search.Defaults)
	if len(unknown) > 0 {
		a.log.Warn("ignoring unknown search defaults", map[string]interface{}{"keys": unknown})
	}
	a.validator = params.NewValidator(defaults, a.log)
	a.history = tracker.NewHistoryTracker(a.client, a.log)
	a.stats = tracker.NewStatsAggregator(a.client, a.log)
	a.out = render.New(out)

	a.log.Debug("client ready", map[string]interface{}{
		"baseURL": a.client.BaseURL(),
		"profile": a.session.Profile(),
		"redis":   a.redis != nil,
	})
	return nil
}

// connectRedis pings with retries. A catalog-only cache degrades to no
// cache; a redis session store is fatal.
func (a *app) connectRedis(ctx context.Context) error {
	rc := cache.NewRedis(a.cfg.Cache.Redis, a.cfg.Cache.KeyPrefix)
	err := retryWithBackoff(ctx, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return rc.Ping(pingCtx)
	}, 3, 200*time.Millisecond, a.log, "redis connection")
	if err == nil {
		a.redis = rc
		return nil
	}

	_ = rc.Close()
	if a.cfg.Session.Store == config.SessionStoreRedis {
		return fmt.Errorf("session store unavailable (%s): %w", a.cfg.Cache.Redis, err)
	}
	a.log.Warn("redis unavailable, catalog cache disabled", map[string]interface{}{"error": err})
	return nil
}

func (a *app) credentialStore() (models.CredentialStore, error) {
	switch a.cfg.Session.Store {
	case config.SessionStoreRedis:
		if a.redis == nil {
			return nil, fmt.Errorf("redis session store requested but redis is not connected")
		}
		return session.NewRedisStore(a.redis, config.GetDuration(a.cfg.Session.TTL)), nil
	default:
		return session.NewFileStore(a.cfg.Session.Path), nil
	}
}

func (a *app) close() error {
	var firstErr error
	if a.obs != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.obs.Shutdown(ctx); err != nil {
			firstErr = err
		}
		cancel()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if a.zap != nil {
		_ = a.zap.Sync()
	}
	return firstErr
}

// report renders err for the user and returns errReported so the process
// exits non-zero without printing it twice.
func (a *app) report(op string, err error) error {
	if err == nil {
		return nil
	}
	a.reportTo(a.out, op, err)
	return errReported
}

func (a *app) reportTo(view *render.Renderer, op string, err error) {
	stdErr, disp := apperrors.NewErrorHandler(a.log).Handle(op, err)
	view.Error(stdErr, disp)
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err,
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

// lockedWriter serialises writes from observer goroutines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
