// SeqForge - Sequential Recommendation Dataset Builder
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/seqforge

/*
Package metadata resolves item ids to display metadata.

Two layers live here:

  - Source/Table: the local title catalog (movie_titles.csv) consulted while
    building the vocabulary. Lookups are in-memory and never fail transiently.
  - Provider/Fetcher: optional enrichment from a remote OMDb-style API
    (poster, rating). Fetching is slow and flaky, so progress is persisted to a
    Checkpoint after every item and a later run only fetches what is missing.

# Resumable Fetch

	cp, err := metadata.OpenBadgerCheckpoint(dir)
	if err != nil {
		return err
	}
	defer cp.Close()

	f := metadata.NewFetcher(provider, cp, metadata.FetcherConfig{MaxAttempts: 5})
	details, err := f.Run(ctx, items)

A *FetchError means some items were fetched and saved but one item failed
permanently; rerunning the command continues after the saved items.

# Remote Provider

HTTPProvider wraps every request in a sony/gobreaker circuit breaker and waits
on a golang.org/x/time/rate limiter before each call. Circuit state changes
are exported through the metrics package.
*/
package metadata
