package cmd

import (
	"errors"

	"github.com/heritage-bijoux/appraiser/internal/config"
	"github.com/heritage-bijoux/appraiser/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	appConfig config.AppConfig
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "appraiser",
		Short: "AI-assisted listing tool for antique jewellery",
		Long: `Appraiser turns photos of a piece of jewellery into a priced, described
listing draft with a vision model, lets you edit it, publishes it to a
Shopify storefront and keeps an archive of everything published.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			if err := initConfig(); err != nil {
				return err
			}
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			appConfig = cfg
			logging.Setup(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
			return nil
		},
	}

	setupFlags(cmd)

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newDraftCmd())
	cmd.AddCommand(newPublishCmd())
	cmd.AddCommand(newArchiveCmd())

	return cmd
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Path to configuration file")
	flags.String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	flags.String("log-format", defaults.GetString("log.format"), "Log format (text, json)")
	flags.String("store-driver", defaults.GetString("store.driver"), "Archive storage (sqlite, redis, memory)")
	flags.String("store-path", defaults.GetString("store.path"), "SQLite database path")
	flags.String("redis-addr", defaults.GetString("redis.addr"), "Redis address")
	flags.String("archive-key", defaults.GetString("archive.key"), "Key the archive is stored under")

	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "log.format", "log-format")
	bindFlag(cmd, "store.driver", "store-driver")
	bindFlag(cmd, "store.path", "store-path")
	bindFlag(cmd, "redis.addr", "redis-addr")
	bindFlag(cmd, "archive.key", "archive-key")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("appraiser")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return err
		}
	}
	return nil
}
