// Command server wires the law clinic API: stores, services, handlers, and
// the HTTP lifecycle. Business logic lives under internal/.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	accounthandler "lawclinic/internal/account/handler"
	accountservice "lawclinic/internal/account/service"
	accountstore "lawclinic/internal/account/store"
	"lawclinic/internal/account/store/revocation"
	eventhandler "lawclinic/internal/event/handler"
	eventservice "lawclinic/internal/event/service"
	eventstore "lawclinic/internal/event/store"
	helphandler "lawclinic/internal/helprequest/handler"
	helpservice "lawclinic/internal/helprequest/service"
	helpstore "lawclinic/internal/helprequest/store"
	jwttoken "lawclinic/internal/jwt_token"
	"lawclinic/internal/notification"
	"lawclinic/internal/platform/config"
	"lawclinic/internal/platform/httpserver"
	"lawclinic/internal/platform/logger"
	"lawclinic/internal/platform/metrics"
	"lawclinic/internal/platform/middleware"
	"lawclinic/internal/platform/postgres"
	"lawclinic/internal/platform/redis"
	pubhandler "lawclinic/internal/publication/handler"
	pubservice "lawclinic/internal/publication/service"
	pubstore "lawclinic/internal/publication/store"
	sitehandler "lawclinic/internal/sitesettings/handler"
	siteservice "lawclinic/internal/sitesettings/service"
	sitestore "lawclinic/internal/sitesettings/store"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	slog.SetDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// stores groups the per-module persistence seams so run can build them from
// either Postgres or memory with one switch.
type stores struct {
	users        accountstore.UserStore
	publications *pubStores
	events       *eventStores
	site         *siteStores
	help         helpstore.Store
	health       func(context.Context) error
	close        func()
}

type pubStores struct {
	publications pubstore.PublicationStore
	categories   pubstore.CategoryStore
	comments     pubstore.CommentStore
}

type eventStores struct {
	events        eventstore.EventStore
	categories    eventstore.CategoryStore
	registrations eventstore.RegistrationStore
}

type siteStores struct {
	appData      sitestore.AppDataStore
	galleries    sitestore.GalleryStore
	sponsors     sitestore.SponsorStore
	testimonials sitestore.TestimonialStore
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	m := metrics.New()

	st, err := buildStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close()

	revocations, redisHealth, err := buildRevocations(ctx, cfg, log)
	if err != nil {
		return err
	}

	tokens := jwttoken.NewJWTService(
		cfg.JWT.SigningKey,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
	)
	validator := jwttoken.NewJWTServiceAdapter(tokens)

	mailer, err := buildMailer(ctx, cfg, log)
	if err != nil {
		return err
	}

	accounts := accountservice.New(accountservice.Config{
		Users:       st.users,
		Revocations: revocations,
		Tokens:      tokens,
		Mailer:      mailer,
		Logger:      log,
		Metrics:     m,
		OTPLength:   cfg.OTP.Length,
		OTPValidity: cfg.OTP.Validity,
	})
	publications := pubservice.New(st.publications.publications, st.publications.categories, st.publications.comments, log)
	events := eventservice.New(st.events.events, st.events.categories, st.events.registrations, log)
	site := siteservice.New(st.site.appData, st.site.galleries, st.site.sponsors, st.site.testimonials, log)
	help := helpservice.New(st.help, log)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.Latency(m))

	router.Route("/api/v1", func(r chi.Router) {
		accounthandler.New(accounts, validator, log).Register(r)
		pubhandler.New(publications, validator, log).Register(r)
		eventhandler.New(events, validator, log).Register(r)
		r.Route("/app-settings", sitehandler.New(site, validator, log).Register)
		helphandler.New(help, validator, log).Register(r)
	})

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", healthz(st.health, redisHealth))

	srv := httpserver.New(cfg.Server.Addr, router)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// buildStores selects Postgres when a DSN is configured, otherwise the
// in-memory stores used for development.
func buildStores(ctx context.Context, cfg config.Config, log *slog.Logger) (*stores, error) {
	if cfg.Database.DSN == "" {
		log.Warn("no database configured, using in-memory stores")
		pubs := pubstore.NewInMemoryStore()
		evts := eventstore.NewInMemoryStore()
		site := sitestore.NewInMemoryStore()
		return &stores{
			users:        accountstore.NewInMemoryUserStore(),
			publications: &pubStores{publications: pubs, categories: pubs, comments: pubs},
			events:       &eventStores{events: evts, categories: evts, registrations: evts},
			site:         &siteStores{appData: site, galleries: site, sponsors: site, testimonials: site},
			help:         helpstore.NewInMemoryStore(),
			health:       func(context.Context) error { return nil },
			close:        func() {},
		}, nil
	}

	pool, err := postgres.Connect(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info("connected to postgres, migrations applied")

	pubs := pubstore.NewPostgresStore(pool)
	evts := eventstore.NewPostgresStore(pool)
	site := sitestore.NewPostgresStore(pool)
	return &stores{
		users:        accountstore.NewPostgresUserStore(pool),
		publications: &pubStores{publications: pubs, categories: pubs, comments: pubs},
		events:       &eventStores{events: evts, categories: evts, registrations: evts},
		site:         &siteStores{appData: site, galleries: site, sponsors: site, testimonials: site},
		help:         helpstore.NewPostgresStore(pool),
		health:       pool.Ping,
		close:        pool.Close,
	}, nil
}

// buildRevocations returns the Redis-backed revocation list when Redis is
// configured and the in-memory one otherwise. The second return value is a
// health probe, nil when there is nothing to probe.
func buildRevocations(ctx context.Context, cfg config.Config, log *slog.Logger) (revocation.Store, func(context.Context) error, error) {
	client, err := redis.New(cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	if client == nil {
		log.Warn("no redis configured, revoked tokens tracked in memory only")
		return revocation.NewMemoryStore(), nil, nil
	}
	log.Info("connected to redis")
	return revocation.NewRedisStore(client.Client), client.Health, nil
}

func buildMailer(ctx context.Context, cfg config.Config, log *slog.Logger) (notification.Mailer, error) {
	if cfg.Mail.AccessKey == "" {
		return notification.NewLogMailer(log), nil
	}
	mailer, err := notification.NewSESMailer(ctx, cfg.Mail)
	if err != nil {
		return nil, fmt.Errorf("configure SES mailer: %w", err)
	}
	return mailer, nil
}

// healthz probes every backing service in parallel and fails the check as
// soon as one of them does.
func healthz(checks ...func(context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		g, ctx := errgroup.WithContext(r.Context())
		for _, check := range checks {
			if check == nil {
				continue
			}
			g.Go(func() error { return check(ctx) })
		}
		if err := g.Wait(); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
