// SPDX-FileCopyrightText: © 2025 Wikiread authors
//
// SPDX-License-Identifier: AGPL-3.0-only

package pipeline

import (
	"context"
	"log/slog"
)

// DownloadBackground schedules the non-priority assets of a loaded
// page. Each download runs detached from the caller's context and
// reports nothing back; the shared semaphore inside the downloader
// still bounds how many run at once.
func (l *Loader) DownloadBackground(urls []string) {
	if len(urls) == 0 {
		return
	}
	l.logger.Debug("scheduling background assets", slog.Int("count", len(urls)))

	for _, uri := range urls {
		go func(uri string) {
			l.dl.Fetch(context.Background(), uri)
		}(uri)
	}
}
