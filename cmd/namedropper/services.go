// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"

	"github.com/pdiddy/namedropper/internal/dbpedia"
	"github.com/pdiddy/namedropper/internal/httputil"
	"github.com/pdiddy/namedropper/internal/spotlight"
	"github.com/pdiddy/namedropper/internal/viaf"
	"github.com/pdiddy/namedropper/internal/xref"
	"github.com/pdiddy/namedropper/pkg/types"
)

// services holds the clients shared by every document of one run.
type services struct {
	http      *http.Client
	spotlight *spotlight.Client
	dbpedia   *dbpedia.Client
	store     *xref.SQLiteStore
}

func newServices(cfg types.Config) *services {
	h := httputil.NewClient(cfg.HTTP)
	s := &services{
		http:      h,
		spotlight: spotlight.NewClient(cfg.Spotlight, h),
	}

	var store xref.Store
	if cfg.Cache.Path != "" {
		st, err := xref.OpenSQLite(cfg.Cache.Path)
		if err != nil {
			// the cache only saves lookups; run without it
			logger.Warn("cross-reference cache unavailable", "path", cfg.Cache.Path, "err", err)
		} else {
			s.store, store = st, st
		}
	}

	opts := []dbpedia.Option{
		dbpedia.WithHTTPClient(h),
		dbpedia.WithLogger(logger.WithPrefix("dbpedia")),
		dbpedia.WithXrefCache(xref.NewCache(store)),
	}
	if cfg.Annotation.Language != "" {
		opts = append(opts, dbpedia.WithLanguage(cfg.Annotation.Language))
	}
	if cfg.Annotation.VIAF {
		opts = append(opts, dbpedia.WithPersonMatcher(&viaf.Client{HTTP: h}))
	}
	s.dbpedia = dbpedia.NewClient(opts...)
	return s
}

func (s *services) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
