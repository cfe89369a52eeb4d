package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"sdn-controller/pkg/api"
	"sdn-controller/pkg/auth"
	"sdn-controller/pkg/config"
	"sdn-controller/pkg/controller"
	"sdn-controller/pkg/db"
	"sdn-controller/pkg/events"
	"sdn-controller/pkg/metrics"
	"sdn-controller/pkg/store"
	"sdn-controller/pkg/version"
)

const maxEventSubscribers = 64

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var envFile string
	cmd := &cobra.Command{
		Use:           "sdn-controller",
		Short:         "Software-defined network controller with path failover",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFile)
			if err != nil {
				return err
			}
			if err := applyFlags(cmd.Flags(), &cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file read before the environment")
	cmd.Flags().String("addr", "", "listen address")
	cmd.Flags().String("token", "", "bootstrap auth token (optional)")
	cmd.Flags().String("journal", "", "event journal: memory|sqlite|consul (consul requires build tag consul)")
	cmd.Flags().String("sqlite-path", "", "sqlite journal file (when journal=sqlite)")
	cmd.Flags().String("consul-addr", "", "consul address (when journal=consul)")
	cmd.Flags().String("tls-cert", "", "TLS cert path (enables HTTPS if set with --tls-key)")
	cmd.Flags().String("tls-key", "", "TLS key path (enables HTTPS if set with --tls-cert)")
	cmd.Flags().String("client-ca", "", "require and verify client certs using this CA (optional)")
	cmd.Flags().Int("max-paths", 0, "bound on shortest paths enumerated per flow, <=0 unbounded")
	cmd.Flags().Int("default-capacity", 0, "capacity of links added without one")
	cmd.Flags().Bool("log-dev", false, "human readable development logging")
	cmd.Flags().Bool("auth-db", false, "enable operator accounts stored in MySQL")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the build identifier",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	})
	return cmd
}

// applyFlags overrides cfg with every flag given on the command line.
func applyFlags(fs *pflag.FlagSet, cfg *config.Config) error {
	strs := map[string]*string{
		"addr":        &cfg.Addr,
		"token":       &cfg.Token,
		"journal":     &cfg.Journal,
		"sqlite-path": &cfg.SQLitePath,
		"consul-addr": &cfg.ConsulAddr,
		"tls-cert":    &cfg.TLSCert,
		"tls-key":     &cfg.TLSKey,
		"client-ca":   &cfg.ClientCA,
	}
	for name, dst := range strs {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	ints := map[string]*int{
		"max-paths":        &cfg.MaxPaths,
		"default-capacity": &cfg.DefaultCapacity,
	}
	for name, dst := range ints {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetInt(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	bools := map[string]*bool{
		"log-dev": &cfg.LogDev,
		"auth-db": &cfg.AuthDB,
	}
	for name, dst := range bools {
		if !fs.Changed(name) {
			continue
		}
		v, err := fs.GetBool(name)
		if err != nil {
			return err
		}
		*dst = v
	}
	return nil
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(ctx context.Context, cfg config.Config) error {
	log, err := newLogger(cfg.LogDev)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)
	log.Info("starting sdn controller", zap.String("version", version.String()), zap.String("journal", cfg.Journal))

	journal, err := store.Open(cfg.Journal, cfg.SQLitePath, cfg.ConsulAddr, log)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer journal.Close()

	hub, err := api.NewEventHub(maxEventSubscribers, log.Named("events"))
	if err != nil {
		return fmt.Errorf("event hub: %w", err)
	}
	defer hub.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ctrl := controller.New(
		controller.WithLogger(log.Named("controller")),
		controller.WithMaxPaths(cfg.MaxPaths),
		controller.WithSink(events.Multi{
			events.LogSink{Log: log.Named("controller")},
			events.Recorder{Journal: journal, Log: log.Named("journal")},
			metrics.NewSink(reg),
			hub,
		}),
	)
	reg.MustRegister(metrics.NewCollector(ctrl))

	var signer *auth.Signer
	if cfg.AuthDB || cfg.JWTSecret != "" {
		signer = auth.NewSigner(cfg.JWTSecret)
	}
	authFn := api.AuthFunc(cfg.Token, signer)

	mux := http.NewServeMux()
	api.RegisterRoutes(mux, ctrl, api.Options{
		Journal:         journal,
		Hub:             hub,
		Auth:            authFn,
		DefaultCapacity: &cfg.DefaultCapacity,
		Log:             log.Named("api"),
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	if cfg.AuthDB {
		gdb, err := db.Init(cfg.MySQL)
		if err != nil {
			return fmt.Errorf("operator database: %w", err)
		}
		(&api.AuthHandler{DB: gdb, Signer: signer, Auth: authFn}).RegisterRoutes(mux)
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if cfg.TLSCert != "" {
		tlsCfg, err := api.ServerTLSConfig(cfg.TLSCert, cfg.TLSKey, cfg.ClientCA)
		if err != nil {
			return fmt.Errorf("build TLS config: %w", err)
		}
		srv.TLSConfig = tlsCfg
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("controller listening", zap.String("addr", cfg.Addr), zap.Bool("tls", srv.TLSConfig != nil))
		if srv.TLSConfig != nil {
			errCh <- srv.ListenAndServeTLS("", "")
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
