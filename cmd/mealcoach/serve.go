package mealcoach

import (
	"fmt"
	"net"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/alecrj/nutrition/internal/config"
	"github.com/alecrj/nutrition/internal/logging"
	"github.com/alecrj/nutrition/internal/proxy"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the proxy that keeps the API key on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Model == "" {
			cfg.Model = config.DefaultModel
		}
		port := cfg.Port
		if servePort != "" {
			port = servePort
		}
		cfg.Log.Component = "proxy"
		logger, closeLog := logging.New(cfg.Log)
		defer closeLog()

		if cfg.APIKey == "" {
			logger.Warn("CLAUDE_API_KEY is not set; requests will fail with 500")
		}
		gin.SetMode(gin.ReleaseMode)
		router := proxy.NewRouter(proxy.Options{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
			Logger: logger,
		})
		addr := net.JoinHostPort("", port)
		fmt.Fprintf(cmd.OutOrStdout(), "Proxy listening on %s%s\n", addr, proxy.Route)
		return proxy.Serve(cmd.Context(), addr, router, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default $PORT or 8080)")
}
