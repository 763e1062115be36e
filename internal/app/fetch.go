// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cristalhq/acmd"

	"codeberg.org/wikiread/wikiread/configs"
	"codeberg.org/wikiread/wikiread/internal/pipeline"
	"codeberg.org/wikiread/wikiread/internal/reader"
	"codeberg.org/wikiread/wikiread/internal/wiki"
)

func init() {
	commands = append(commands, acmd.Command{
		Name:        "fetch",
		Description: "Fetch a page and write its document to a file",
		ExecFunc:    runFetch,
	})
}

// fileSurface writes the rendered document to a file, or to stdout
// when no destination is given.
type fileSurface struct {
	dest string
}

func (s *fileSurface) Render(document string) error {
	if s.dest == "" {
		_, err := os.Stdout.WriteString(document)
		return err
	}
	return os.WriteFile(s.dest, []byte(document), 0o640)
}

func runFetch(ctx context.Context, args []string) error {
	var dest string
	var theme string

	var flags appFlags
	fs := flags.Flags()
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: fetch [arguments...] PAGE")        //nolint:errcheck
		fmt.Fprintln(fs.Output(), "  PAGE")                                  //nolint:errcheck
		fmt.Fprintln(fs.Output(), "    \ta numeric page ID or a page title") //nolint:errcheck
		fs.PrintDefaults()
	}
	fs.StringVar(&dest, "o", "", "destination file (stdout when empty)")
	fs.StringVar(&theme, "theme", "", "document theme (light, dark or sepia)")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	page := strings.TrimSpace(fs.Arg(0))
	if page == "" {
		return errors.New("a page is required")
	}

	if err := appPreRun(&flags); err != nil {
		return err
	}
	if theme == "" {
		theme = configs.Config.Reader.Theme
	}

	wc, dl, err := newWikiClient()
	if err != nil {
		return err
	}

	rd := reader.New(pipeline.NewLoader(wc, dl), reader.WithTheme(reader.ParseTheme(theme)))

	err = rd.Open(ctx, wiki.NewPageRef(page), &fileSurface{dest: dest},
		func(percent int) {
			fmt.Fprintf(os.Stderr, "\r%s%3d%%%s", colorYellow, percent, colorReset) //nolint:errcheck
		})
	fmt.Fprintln(os.Stderr) //nolint:errcheck
	if err != nil {
		return err
	}

	if dest != "" {
		fmt.Fprintf(os.Stderr, "%s%s%s%s created\n", bold, colorGreen, dest, colorReset) //nolint:errcheck
	}
	return nil
}
