package main

import (
	"context"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	httpadapter "github.com/jobcoach/coach-api/internal/adapters/http"
	"github.com/jobcoach/coach-api/internal/config"
	"github.com/jobcoach/coach-api/internal/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the coach HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := context.Background()

		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}

		observability.Init(cfg.JSON, cfg.Debug)
		log := observability.Logger()

		svc, cleanup, err := newService(ctx, cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		handler := httpadapter.NewServer(svc)

		addr := ":" + cfg.Port
		log.Info("coach-api listening", "addr", addr, "version", version)
		return http.ListenAndServe(addr, handler)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "", "port to listen on")
	viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
}
