// Package container wires the application services into a samber/do injector.
package container

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/launch-site-go/internal/analytics"
	"github.com/serroba/launch-site-go/internal/content"
	"github.com/serroba/launch-site-go/internal/messaging"
	"github.com/serroba/launch-site-go/internal/metrics"
	"github.com/serroba/launch-site-go/internal/mixpanel"
	"github.com/serroba/launch-site-go/internal/profile"
	"github.com/serroba/launch-site-go/internal/ratelimit"
	"github.com/serroba/launch-site-go/internal/store"
	"github.com/serroba/launch-site-go/internal/tracking"
	"go.uber.org/zap"
)

const (
	RateLimitMemory = "memory"
	RateLimitRedis  = "redis"

	// EventSinkStream publishes tracked events to the Redis stream read by cmd/consumer.
	EventSinkStream = "stream"
	// EventSinkDirect sends tracked events straight to the ingestion API.
	EventSinkDirect = "direct"
)

// Options is the server configuration. Every field can also be set through a
// SERVICE_<NAME> environment variable.
type Options struct {
	Port           int    `default:"8080"           help:"Port to listen on"                                short:"p"`
	LogFormat      string `default:"json"           help:"Log format: json or console"`
	RedisAddr      string `default:"localhost:6379" help:"Redis server address"                             short:"r"`
	DatabaseURL    string `default:""               help:"Postgres URL for the tracked event archive"`
	StaticDir      string `default:"dist/public"    help:"Directory holding the built site"`
	AllowedOrigins string `default:""               help:"Comma separated CORS origins"`
	ForceHTTPS     bool   `default:"false"          help:"Redirect plain HTTP requests behind a proxy"`
	RateLimitStore string `default:"memory"         help:"Rate limit counters: memory or redis"`
	EventSink      string `default:"stream"         help:"Where tracked events go: stream or direct"`

	MixpanelToken          string `default:""                         help:"Project token for event ingestion"`
	MixpanelProjectID      string `default:""                         help:"Project id for people queries"`
	MixpanelServiceAccount string `default:""                         help:"Service account user for people queries"`
	MixpanelSecret         string `default:""                         help:"Service account secret"`
	MixpanelAPIBase        string `default:"https://mixpanel.com"     help:"Query API base URL"`
	MixpanelIngestBase     string `default:"https://api.mixpanel.com" help:"Ingestion API base URL"`

	LookupTimeoutSeconds   int `default:"10"  help:"Profile lookup timeout in seconds"`
	ProfileCacheTTLSeconds int `default:"300" help:"Found profile cache lifetime in seconds, 0 disables"`
	SessionTTLMinutes      int `default:"30"  help:"Idle lifetime of a page session in minutes"`
	TrackTimeoutSeconds    int `default:"5"   help:"Bound on publishing one tracked event in seconds"`
}

// LoggerPackage provides *zap.Logger.
func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.LogFormat == "console" {
			return zap.NewDevelopment()
		}

		return zap.NewProduction()
	})
}

// Redis is the shared client. It closes with the injector.
type Redis struct {
	redis.UniversalClient
}

func (r *Redis) Shutdown() error {
	return r.Close()
}

// RedisPackage provides *Redis.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Redis, error) {
		opts := do.MustInvoke[*Options](i)

		return &Redis{UniversalClient: redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{opts.RedisAddr},
		})}, nil
	})
}

// Postgres is the archive pool. It closes with the injector.
type Postgres struct {
	*pgxpool.Pool
}

func (p *Postgres) Shutdown() error {
	p.Close()

	return nil
}

// PostgresPackage provides *Postgres. Invoking it without a DatabaseURL fails.
func PostgresPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Postgres, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.DatabaseURL == "" {
			return nil, fmt.Errorf("postgres: database url is not configured")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()

			return nil, fmt.Errorf("postgres: %w", err)
		}

		return &Postgres{Pool: pool}, nil
	})
}

// MetricsPackage provides the process registry and *metrics.Metrics.
func MetricsPackage(i *do.Injector) {
	do.Provide(i, func(*do.Injector) (*prometheus.Registry, error) {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		return reg, nil
	})

	do.Provide(i, func(i *do.Injector) (*metrics.Metrics, error) {
		return metrics.New(do.MustInvoke[*prometheus.Registry](i)), nil
	})
}

// RateLimitPackage provides *ratelimit.PolicyLimiter.
func RateLimitPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		opts := do.MustInvoke[*Options](i)

		var s ratelimit.Store

		switch opts.RateLimitStore {
		case RateLimitMemory:
			s = store.NewRateLimitMemoryStore()
		case RateLimitRedis:
			s = store.NewRateLimitRedisStore(do.MustInvoke[*Redis](i).UniversalClient)
		default:
			return nil, fmt.Errorf("unknown rate limit store %q", opts.RateLimitStore)
		}

		return ratelimit.NewPolicyLimiter(s, ratelimit.DefaultPolicy()), nil
	})
}

// MixpanelPackage provides *mixpanel.Client.
func MixpanelPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*mixpanel.Client, error) {
		opts := do.MustInvoke[*Options](i)

		return mixpanel.NewClient(mixpanel.Config{
			Token:          opts.MixpanelToken,
			ProjectID:      opts.MixpanelProjectID,
			ServiceAccount: opts.MixpanelServiceAccount,
			Secret:         opts.MixpanelSecret,
			APIBase:        opts.MixpanelAPIBase,
			IngestBase:     opts.MixpanelIngestBase,
		}, &http.Client{Timeout: 30 * time.Second}), nil
	})
}

// ProfilePackage provides profile.Lookup, cached in Redis when a TTL is set.
func ProfilePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (profile.Lookup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		service := profile.NewService(
			do.MustInvoke[*mixpanel.Client](i),
			logger,
			profile.WithTimeout(time.Duration(opts.LookupTimeoutSeconds)*time.Second),
			profile.WithMetrics(do.MustInvoke[*metrics.Metrics](i)),
		)

		var lookup profile.Lookup = service

		if opts.ProfileCacheTTLSeconds > 0 {
			lookup = store.NewRedisProfileCache(
				service,
				do.MustInvoke[*Redis](i).UniversalClient,
				time.Duration(opts.ProfileCacheTTLSeconds)*time.Second,
				logger,
			)
		}

		return lookup, nil
	})
}

// PublisherGroupPackage provides *messaging.PublisherGroup over Redis streams.
func PublisherGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client:     do.MustInvoke[*Redis](i).UniversalClient,
			Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
		}, messaging.NewZapLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("create publisher: %w", err)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})
}

// TrackerPackage provides *tracking.Tracker and *tracking.Sessions.
func TrackerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*tracking.Tracker, error) {
		opts := do.MustInvoke[*Options](i)

		var sink tracking.Sink

		switch opts.EventSink {
		case EventSinkStream:
			group := do.MustInvoke[*messaging.PublisherGroup](i)
			publish := messaging.NewPublishFunc[analytics.TrackedEvent](group.Publisher(), analytics.TopicEventTracked)
			sink = tracking.SinkFunc(publish)
		case EventSinkDirect:
			sink = tracking.SinkFunc(do.MustInvoke[*mixpanel.Client](i).Track)
		default:
			return nil, fmt.Errorf("unknown event sink %q", opts.EventSink)
		}

		return tracking.NewTracker(
			opts.MixpanelToken,
			sink,
			do.MustInvoke[*zap.Logger](i),
			tracking.WithMetrics(do.MustInvoke[*metrics.Metrics](i)),
			tracking.WithSendTimeout(time.Duration(opts.TrackTimeoutSeconds)*time.Second),
		), nil
	})

	do.Provide(i, func(i *do.Injector) (*tracking.Sessions, error) {
		opts := do.MustInvoke[*Options](i)

		return tracking.NewSessions(
			do.MustInvoke[*tracking.Tracker](i),
			tracking.DefaultSessionSize,
			time.Duration(opts.SessionTTLMinutes)*time.Minute,
		), nil
	})
}

// ContentPackage provides the embedded *content.Catalog.
func ContentPackage(i *do.Injector) {
	do.Provide(i, func(*do.Injector) (*content.Catalog, error) {
		return content.Load()
	})
}
