package mealcoach

import (
	"database/sql"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/alecrj/nutrition/internal/config"
	"github.com/alecrj/nutrition/internal/service"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage mealcoach local configuration",
}

var (
	cfgProxyURL string
	cfgModel    string
	cfgTimeout  string
)

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set configuration values",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("timeout") {
			if _, err := config.ParseTimeout(cfgTimeout); err != nil {
				return err
			}
		}
		return withDB(func(sqldb *sql.DB) error {
			updates := 0
			if cmd.Flags().Changed("proxy-url") {
				if err := service.SetConfig(sqldb, service.ConfigProxyURL, cfgProxyURL); err != nil {
					return err
				}
				updates++
			}
			if cmd.Flags().Changed("model") {
				if err := service.SetConfig(sqldb, service.ConfigModel, cfgModel); err != nil {
					return err
				}
				updates++
			}
			if cmd.Flags().Changed("timeout") {
				if err := service.SetConfig(sqldb, service.ConfigTimeout, cfgTimeout); err != nil {
					return err
				}
				updates++
			}
			if updates == 0 {
				return fmt.Errorf("set at least one flag")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %d config value(s)\n", updates)
			return nil
		})
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show stored and effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(s *session) error {
			stored, err := service.ListConfig(s.db)
			if err != nil {
				return err
			}
			keys := make([]string, 0, len(stored))
			for k := range stored {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintln(s.out(), "KEY\tVALUE")
			for _, k := range keys {
				fmt.Fprintf(s.out(), "%s\t%s\n", k, stored[k])
			}

			backend := "none"
			switch {
			case s.cfg.APIKey != "":
				backend = "direct (CLAUDE_API_KEY)"
			case s.cfg.ProxyURL != "":
				backend = "proxy " + s.cfg.ProxyURL
			}
			fmt.Fprintln(s.out())
			fmt.Fprintf(s.out(), "Effective backend: %s\n", backend)
			fmt.Fprintf(s.out(), "Effective model: %s\n", s.cfg.Model)
			fmt.Fprintf(s.out(), "Effective timeout: %s\n", s.cfg.Timeout)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd, configGetCmd)

	configSetCmd.Flags().StringVar(&cfgProxyURL, "proxy-url", "", "Base URL of a mealcoach proxy (empty to clear)")
	configSetCmd.Flags().StringVar(&cfgModel, "model", "", "Model name used for generation")
	configSetCmd.Flags().StringVar(&cfgTimeout, "timeout", "", "Generation timeout, seconds or duration (e.g. 45s)")
}
