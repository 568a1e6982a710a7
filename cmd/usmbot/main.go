package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	appcontainer "usmbot/internal/application/container"
	domainservice "usmbot/internal/domain/service"
	"usmbot/internal/infrastructure/config"
	infracontainer "usmbot/internal/infrastructure/container"
	"usmbot/internal/infrastructure/logger"
)

var (
	version    = "0.1.0"
	configPath string
	credsPath  string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "usmbot",
		Short:         "Buy on a trigger phrase, then place a take-profit sell",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.toml", "path to config.toml")
	rootCmd.PersistentFlags().StringVar(&credsPath, "creds", "", "path to credentials json (env vars override)")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("usmbot version %s\n", version)
		},
	}
}

// loadConfig 配置错误是致命的
func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Setup("info")
		log.Fatal().Err(err).Str("config", configPath).Msg("load config failed")
	}
	logger.Setup(cfg.App.LogLevel)
	return cfg
}

// buildContainers 初始化存储；withExchange 时同时加载凭证
func buildContainers(cfg *config.Config, withExchange bool) *appcontainer.Container {
	infra, err := infracontainer.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init container failed")
	}

	if withExchange {
		creds, err := config.LoadCredentials(credsPath)
		if err != nil {
			_ = infra.Close()
			log.Fatal().Err(err).Str("creds", credsPath).Msg("load credentials failed")
		}
		if err := infra.InitExchange(creds); err != nil {
			_ = infra.Close()
			log.Fatal().Err(err).Msg("init exchange failed")
		}
	}

	return appcontainer.New(infra, domainservice.DefaultEngineConfig())
}
