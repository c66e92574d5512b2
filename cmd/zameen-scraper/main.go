// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the zameen-scraper CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anayatu/zameen-scraper/internal/secrets"
	"github.com/anayatu/zameen-scraper/pkg/types"
)

const (
	defaultTimeout = 20 * time.Second
	defaultDelay   = 1500 * time.Millisecond
	defaultJitter  = 500 * time.Millisecond

	// Zameen serves a challenge page to unknown agents, so the default
	// mimics a desktop browser.
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds portal credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if non-empty, otherwise the secret value
// for key if one was loaded.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the zameen-scraper CLI.
var rootCmd = &cobra.Command{
	Use:   "zameen-scraper",
	Short: "Scrape real-estate listings from the Zameen.com portal",
	Long: `zameen-scraper collects property listings from Zameen.com search results.
It crawls paginated search pages for listing links, fetches each listing's
detail page, parses prices, rooms, and amenities, and writes the results
to CSV, JSON, or YAML.

Each pipeline stage is a subcommand: crawl, fetch, store, and export.
The scrape command runs the whole pipeline end to end.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./zameen-scraper.yaml or ~/.config/zameen-scraper/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "data", "base directory for scraped data (contains crawls/, listings/, index/)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("zameen-scraper")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "zameen-scraper"))
		}
	}

	viper.SetEnvPrefix("ZAMEEN_SCRAPER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// httpConfigFromFlags assembles HTTP settings from flags, the config file,
// and loaded secrets, in that order of precedence.
func httpConfigFromFlags(cmd *cobra.Command) types.HTTPConfig {
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = viper.GetDuration("timeout")
	}
	if timeout == 0 {
		timeout = defaultTimeout
	}

	userAgent, _ := cmd.Flags().GetString("user-agent")
	userAgent = secretDefault("user-agent", userAgent)
	if userAgent == "" {
		userAgent = viper.GetString("user_agent")
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	cookie, _ := cmd.Flags().GetString("cookie")
	cookie = secretDefault("cookie", cookie)

	proxyURL, _ := cmd.Flags().GetString("proxy")
	proxyURL = secretDefault("proxy-url", proxyURL)

	return types.HTTPConfig{
		Timeout:   timeout,
		UserAgent: userAgent,
		Cookie:    cookie,
		ProxyURL:  proxyURL,
	}
}

// pacingFromFlags reads the inter-request pacing flags.
func pacingFromFlags(cmd *cobra.Command) types.PacingConfig {
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay == 0 {
		delay = defaultDelay
	}
	jitter, _ := cmd.Flags().GetDuration("jitter")
	if jitter == 0 {
		jitter = defaultJitter
	}
	return types.PacingConfig{Delay: delay, Jitter: jitter}
}

// addHTTPFlags registers the HTTP and pacing flags shared by network commands.
func addHTTPFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 20s)")
	cmd.Flags().Duration("delay", 0, "base pause between consecutive requests (default 1.5s)")
	cmd.Flags().Duration("jitter", 0, "random spread applied to the delay (default 0.5s)")
	cmd.Flags().String("user-agent", "", "User-Agent header (default: desktop browser)")
	cmd.Flags().String("cookie", "", "Cookie header for portal sessions")
	cmd.Flags().String("proxy", "", "HTTP proxy URL")
}

func dataDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("data-dir")
	if dir == "" {
		dir = "data"
	}
	return dir
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
