// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package app holds the command line commands and the application
// setup they share.
package app

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cristalhq/acmd"
	"github.com/go-redis/redis/v8"
	"github.com/phsym/console-slog"

	"codeberg.org/wikiread/wikiread/configs"
	"codeberg.org/wikiread/wikiread/internal/httpclient"
	"codeberg.org/wikiread/wikiread/internal/metrics"
	"codeberg.org/wikiread/wikiread/internal/saved"
	"codeberg.org/wikiread/wikiread/internal/wiki"
	"codeberg.org/wikiread/wikiread/pkg/assetcache"
	"codeberg.org/wikiread/wikiread/pkg/fetch"
)

const (
	colorReset  = "\033[0m"
	bold        = "\033[1m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

var commands = []acmd.Command{}

// Run executes the application command line.
func Run() int {
	r := acmd.RunnerOf(commands, acmd.Config{
		AppName:        "wikiread",
		AppDescription: "A wiki page reader",
		Version:        configs.Version(),
	})

	if err := r.Run(); err != nil {
		fatal("", err)
		return 1
	}
	return 0
}

// appFlags holds the flags shared by every command.
type appFlags struct {
	configPath string
}

func (f *appFlags) Flags() *flag.FlagSet {
	fs := flag.NewFlagSet("", flag.ContinueOnError)
	fs.StringVar(&f.configPath, "config", "config.toml", "configuration file")
	return fs
}

// appPreRun loads the configuration and sets the default logger up.
func appPreRun(flags *appFlags) error {
	if err := configs.LoadConfiguration(flags.configPath); err != nil {
		return fmt.Errorf("could not load configuration: %w", err)
	}

	initLogger()
	return nil
}

func initLogger() {
	theme := stdLogTheme
	if configs.Config.Main.DevMode {
		theme = devLogTheme
	}

	slog.SetDefault(slog.New(console.NewHandler(os.Stderr, &console.HandlerOptions{
		Level: configs.Config.Main.LogLevel,
		Theme: theme,
	})))
}

// newWikiClient builds the wiki API client from the configuration.
func newWikiClient() (*wiki.Client, *fetch.Downloader, error) {
	client := httpclient.New()
	if ua := configs.Config.Wiki.UserAgent; ua != "" {
		client.Transport.(*httpclient.Transport).SetHeader(func(h http.Header) {
			h.Set("User-Agent", ua)
		})
	}

	wc, err := wiki.NewClient(configs.Config.Wiki.Origin, wiki.WithHTTPClient(client))
	if err != nil {
		return nil, nil, err
	}

	dl := fetch.New(client, newAssetCache(),
		fetch.WithConcurrency(int64(configs.Config.Reader.Concurrency)),
		fetch.WithRecorder(metrics.Recorder{}),
	)
	return wc, dl, nil
}

// newAssetCache builds the asset cache. Redis when configured, an in
// process store otherwise.
func newAssetCache() assetcache.Store {
	if addr := configs.Config.Redis.Addr; addr != "" {
		return assetcache.NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: configs.Config.Redis.Password,
			DB:       configs.Config.Redis.DB,
		}), "wikiread:assets")
	}
	return assetcache.NewMemStore(configs.Config.Reader.CacheSize)
}

// openStore opens the saved page database, creating its directory
// when needed.
func openStore() (*saved.Store, error) {
	source := configs.Config.Database.Source
	if err := os.MkdirAll(filepath.Dir(source), 0o750); err != nil {
		return nil, err
	}
	return saved.Open(source)
}

func fatal(msg string, err error) {
	if msg == "" {
		msg = "error"
	}
	slog.Error(msg, slog.Any("err", err))
}
