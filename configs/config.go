// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package configs holds the global application configuration, loaded
// from a TOML file and overridable with environment variables.
package configs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/komkom/toml"
)

// Config is the global configuration. It is populated by
// [LoadConfiguration].
var Config config

type config struct {
	Main     configMain     `json:"main"`
	Server   configServer   `json:"server"`
	Wiki     configWiki     `json:"wiki"`
	Reader   configReader   `json:"reader"`
	Database configDatabase `json:"database"`
	Redis    configRedis    `json:"redis"`
}

type configMain struct {
	LogLevel      slog.Level `json:"log_level" env:"LOG_LEVEL"`
	DevMode       bool       `json:"dev_mode" env:"DEV_MODE"`
	DataDirectory string     `json:"data_directory" env:"DATA_DIRECTORY"`
}

type configServer struct {
	Host string `json:"host" env:"SERVER_HOST"`
	Port int    `json:"port" env:"SERVER_PORT"`
}

type configWiki struct {
	// Origin is the wiki's root URL, holding its api.php endpoint.
	Origin    string `json:"origin" env:"WIKI_ORIGIN"`
	UserAgent string `json:"user_agent" env:"WIKI_USER_AGENT"`
}

type configReader struct {
	// Concurrency bounds the simultaneous asset downloads.
	Concurrency int `json:"concurrency" env:"READER_CONCURRENCY"`

	// CacheSize is the asset cache budget in bytes.
	CacheSize int64 `json:"cache_size" env:"READER_CACHE_SIZE"`

	Theme string `json:"theme" env:"READER_THEME"`
}

type configDatabase struct {
	Source string `json:"source" env:"DATABASE_SOURCE"`
}

type configRedis struct {
	// Addr switches the asset cache to Redis when set.
	Addr     string `json:"addr" env:"REDIS_ADDR"`
	Password string `json:"password" env:"REDIS_PASSWORD"`
	DB       int    `json:"db" env:"REDIS_DB"`
}

func init() {
	Config = defaultConfig()
}

func defaultConfig() config {
	c := config{}
	c.Main.LogLevel = slog.LevelInfo
	c.Main.DataDirectory = "data"
	c.Server.Host = "127.0.0.1"
	c.Server.Port = 8000
	c.Wiki.Origin = "https://oldschool.runescape.wiki"
	c.Reader.Concurrency = 8
	c.Reader.CacheSize = 64 << 20
	c.Database.Source = "data/wikiread.db"
	return c
}

// LoadConfiguration loads the configuration from a TOML file, then
// applies WIKIREAD_ prefixed environment variables on top of it. A
// missing file is not an error; the defaults then apply.
func LoadConfiguration(configPath string) error {
	Config = defaultConfig()

	if configPath != "" {
		fd, err := os.Open(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Defaults and environment only.
		case err != nil:
			return err
		default:
			defer fd.Close() //nolint:errcheck
			if err := json.NewDecoder(toml.New(fd)).Decode(&Config); err != nil {
				return fmt.Errorf("reading %s: %w", configPath, err)
			}
		}
	}

	if err := env.ParseWithOptions(&Config, env.Options{Prefix: "WIKIREAD_"}); err != nil {
		return err
	}

	if Config.Reader.Concurrency < 1 {
		return errors.New("reader concurrency must be positive")
	}
	return nil
}
