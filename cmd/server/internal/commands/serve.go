package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/wolfeidau/tenancy/internal/auth"
	"github.com/wolfeidau/tenancy/internal/authz"
	"github.com/wolfeidau/tenancy/internal/client"
	"github.com/wolfeidau/tenancy/internal/config"
	"github.com/wolfeidau/tenancy/internal/logger"
	"github.com/wolfeidau/tenancy/internal/membership"
	"github.com/wolfeidau/tenancy/internal/orgs"
	"github.com/wolfeidau/tenancy/internal/quota"
	"github.com/wolfeidau/tenancy/internal/roles"
	"github.com/wolfeidau/tenancy/internal/server"
	"github.com/wolfeidau/tenancy/internal/telemetry"
	"github.com/wolfeidau/tenancy/internal/tenant"
)

type ServeCmd struct {
	config.Config `embed:""`

	// Server configuration
	Listen      string   `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"TENANCY_LISTEN"`
	Cert        string   `help:"path to TLS cert file, serves plain HTTP when empty" default:"" env:"TENANCY_TLS_CERT"`
	Key         string   `help:"path to TLS key file" default:"" env:"TENANCY_TLS_KEY"`
	CORSOrigins []string `help:"allowed CORS origins for API requests" default:"https://localhost" env:"TENANCY_CORS_ORIGINS"`

	// Development and operational modes
	NoAuth  bool `help:"trust X-Debug-Email headers instead of verifying tokens (development only)" default:"false" env:"TENANCY_NO_AUTH"`
	Tracing bool `help:"enable tracing" default:"false" env:"TENANCY_TRACING"`
	Seed    bool `help:"seed the tier and role catalogue on startup" default:"true" negatable:""`
}

func (c *ServeCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	if err := c.Config.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !c.NoAuth && (c.Auth.Issuer == "" || c.Auth.ClientID == "") {
		return errors.New("token issuer and client id are required (--auth-issuer and --auth-client-id) unless --no-auth is set")
	}
	if (c.Cert == "") != (c.Key == "") {
		return errors.New("TLS certificate and key must be provided together (--cert and --key)")
	}

	if c.Tracing {
		log.Info().Msg("Tracing is enabled")
		shutdown, err := telemetry.InitTelemetry(ctx, telemetry.Config{
			ServiceName: "tenancy-server",
			Version:     globals.Version,
			SampleRatio: 1,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize telemetry, continuing without metrics")
			shutdown = func(ctx context.Context) error { return nil }
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("Failed to shutdown telemetry")
			}
		}()
	}

	stores, closeStores, err := openStores(ctx, log, &c.Config)
	if err != nil {
		return err
	}
	defer closeStores()

	// Create services
	az := authz.NewAuthorizer(c.AdminRole())
	resolver := tenant.NewResolver(c.DomainDenyList())
	tiers := quota.NewTierService(stores.Tiers)
	subs := quota.NewSubscriptionService(stores.Subscriptions, tiers)
	roleService := roles.NewService(stores.Roles)

	if c.Seed {
		if err := seedCatalogue(log.WithContext(ctx), c.CatalogueFile, tiers, roleService); err != nil {
			return err
		}
	}

	srv := server.NewServer(server.Services{
		Membership:    membership.NewService(stores, subs, resolver, az),
		Orgs:          orgs.NewService(stores.Organizations, subs, resolver, az),
		Tiers:         tiers,
		Subscriptions: subs,
		Roles:         roleService,
		Authz:         az,
	})

	enricher := server.NewStoreEnricher(stores)

	var authn func(http.Handler) http.Handler
	if c.NoAuth {
		log.Warn().Msg("Authentication is disabled (--no-auth). This should only be used in development!")
		authn = auth.DevMiddleware(enricher)
	} else {
		keys := auth.NewPublicKeyCache(client.NewInMemoryCachingHTTPClient(), c.Auth.JWKSCacheTTL)
		authn = auth.NewJWTVerifier(c.Auth.Issuer, c.Auth.ClientID, keys).Middleware(enricher)
		log.Info().Str("issuer", c.Auth.Issuer).Msg("JWT verification enabled")
	}

	handler := server.Chain(srv.Handler(authn),
		logger.RequestLogger(log),
		server.ClientIPMiddleware(),
	)
	handler = server.WithCORS(c.CORSOrigins, handler)
	if c.Tracing {
		handler = otelhttp.NewHandler(handler, "tenancy")
	}

	httpServer := configureHTTPServer(c.Listen, handler)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", c.Listen).Bool("tls", c.Cert != "").Bool("auth", !c.NoAuth).Msg("Starting HTTP server")

		var err error
		if c.Cert != "" {
			err = httpServer.ListenAndServeTLS(c.Cert, c.Key)
		} else {
			err = httpServer.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})

	g.Go(func() error {
		<-gctx.Done()

		log.Info().Msg("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
