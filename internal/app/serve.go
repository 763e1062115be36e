// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/cristalhq/acmd"

	"codeberg.org/wikiread/wikiread/configs"
	"codeberg.org/wikiread/wikiread/internal/reader"
	"codeberg.org/wikiread/wikiread/internal/server"
)

func init() {
	commands = append(commands, acmd.Command{
		Name:        "serve",
		Description: "Start the HTTP server",
		ExecFunc:    runServe,
	})
}

func runServe(ctx context.Context, args []string) error {
	var flags appFlags
	fs := flags.Flags()
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	if err := appPreRun(&flags); err != nil {
		return err
	}

	wc, dl, err := newWikiClient()
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close() //nolint:errcheck

	s := server.New(wc, dl,
		server.WithStore(store),
		server.WithTheme(reader.ParseTheme(configs.Config.Reader.Theme)),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("starting server",
		slog.String("addr", fmt.Sprintf("http://%s:%d/",
			configs.Config.Server.Host, configs.Config.Server.Port)),
		slog.String("wiki", wc.Origin().String()),
	)

	err = s.ListenAndServe(ctx, configs.Config.Server.Host, configs.Config.Server.Port)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	slog.Info("server stopped")
	return nil
}
