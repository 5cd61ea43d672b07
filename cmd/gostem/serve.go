package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"GoStem/internal/logging"
	"GoStem/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search page and JSON API over HTTP",
		Long: `Serves the index over HTTP. SIGHUP reloads the index from disk, so a
rebuilt index can be picked up without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := a.logger
			if a.cfg.Metrics.Enabled {
				a.promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			}

			host, port, err := a.cfg.Server.HostPort()
			if err != nil {
				return err
			}
			mgr := server.NewIndexManager(a.cfg.Index.Dir, a.searchOptions(), logging.Component(logger, "index"))
			defer mgr.Close()
			// A missing index is not fatal: /ready reports it and POST /api/reload retries.
			_ = mgr.Load()

			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case <-hup:
						logger.Info("reloading index on SIGHUP")
						_ = mgr.Load()
					}
				}
			}()

			srv := server.New(server.Config{
				Host:            host,
				Port:            port,
				EnableCORS:      a.cfg.Server.CORS,
				Debug:           a.cfg.Server.Debug,
				ReadTimeout:     a.cfg.Server.ReadTimeout,
				WriteTimeout:    a.cfg.Server.WriteTimeout,
				ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
				MaxLimit:        a.cfg.Search.MaxResults,
			}, mgr, a.registry, a.promReg, logging.Component(logger, "http"))

			logger.Info("starting gostem", "version", Version, "addr", a.cfg.Server.Addr, "index", a.cfg.Index.Dir)
			return srv.Run(ctx)
		},
	}
	cmd.Flags().Bool("stopwords", false, "drop stop words from queries and /api/analyze")
	cmd.Flags().String("index", "index", "index directory")
	cmd.Flags().String("addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().Bool("cors", false, "allow cross-origin requests")
	cmd.Flags().Bool("debug", false, "gin debug mode")
	cmd.Flags().Bool("verify", false, "verify file checksums when loading the index")
	return cmd
}
