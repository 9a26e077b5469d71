package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Sternrassler/rbx-client/pkg/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "rbx",
		Short: "Roblox web API client",
		Long: `A command-line client for the Roblox web APIs.

Looks up users, groups, places, universes, badges and presences, and can run
a small HTTP gateway exposing the same lookups with health and metrics endpoints.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(logging.Config{
				Level:  logging.LogLevel(viper.GetString("log-level")),
				Pretty: viper.GetBool("log-pretty"),
			})
		},
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is $HOME/.rbx/config.yml)")
	flags.StringP("token", "t", "", ".ROBLOSECURITY session token")
	flags.String("redis", "", "Redis address for the shared response cache and rate limit state")
	flags.String("user-agent", "", "User-Agent header")
	flags.String("base-domain", "roblox.com", "API base domain")
	flags.String("base-url", "", "override URL generation: <base-url>/<subdomain>/<path>")
	flags.Bool("allow-partials", true, "build embedded references from the embedding payload instead of fetching them")
	flags.Bool("caching", true, "enable the session cache")
	flags.Duration("rate-limit-delay", 60*time.Second, "wait before re-issuing a rate-limited request")
	flags.Int("max-rate-limit-retries", 3, "re-issues of a rate-limited request before giving up")
	flags.Bool("debug-requests", false, "log every request")
	flags.StringP("output", "o", "table", "output format (table, json, yaml)")
	flags.String("log-level", "warn", "log level (debug, info, warn, error, disabled)")
	flags.Bool("log-pretty", false, "human-readable logs")

	for _, name := range []string{
		"token", "redis", "user-agent", "base-domain", "base-url", "allow-partials", "caching",
		"rate-limit-delay", "max-rate-limit-retries", "debug-requests", "output", "log-level", "log-pretty",
	} {
		viper.BindPFlag(name, flags.Lookup(name))
	}
	viper.BindPFlag("config", flags.Lookup("config"))

	root.AddCommand(
		newVersionCommand(),
		newUserCommand(),
		newGroupCommand(),
		newPlaceCommand(),
		newUniverseCommand(),
		newBadgeCommand(),
		newPresenceCommand(),
		newFriendsCommand(),
		newBadgesCommand(),
		newServeCommand(),
	)

	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rbx %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".rbx"))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("RBX")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && viper.GetString("log-level") == "debug" {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	cobra.OnInitialize(initConfig)
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
