package commands

import (
	"database/sql"
	"errors"
	"fmt"

	"maeto-catalog/internal/catalog"
	"maeto-catalog/internal/components/chrono"
	"maeto-catalog/internal/db"
	"maeto-catalog/lib/serviceutil"
)

type app struct {
	database *sql.DB
	store    catalog.Store
	crawler  *catalog.Crawler
}

func (a app) Close() {
	a.database.Close()
}

// openStore opens the configured database, exiting with a hint to run init
// when it does not exist yet.
func openStore() (*sql.DB, catalog.Store) {
	database, err := db.OpenExisting(cfg.DB)
	if errors.Is(err, db.ErrNotInitialized) {
		serviceutil.Fatal(
			fmt.Sprintf("no product database at %s, run `maeto init` first", cfg.DB),
			err,
		)
	}
	if err != nil {
		serviceutil.Fatal("failed to open product database", err)
	}
	return database, catalog.NewStore(database, chrono.NewStandardImpl(), tel)
}

// newApp wires the crawler to the configured site and the product database.
func newApp() app {
	database, store := openStore()

	base, err := cfg.Base()
	if err != nil {
		serviceutil.Fatal("invalid base url", err)
	}
	searchPath, err := cfg.SearchPath()
	if err != nil {
		serviceutil.Fatal("invalid base url", err)
	}

	fetcherOpts, err := cfg.FetcherOptions()
	if err != nil {
		serviceutil.Fatal("failed to set up http dumps", err)
	}

	clock := chrono.NewStandardImpl()
	fetcher := catalog.NewHTTPFetcher(fetcherOpts, tel)
	walker := catalog.NewWalker(fetcher, clock, tel, catalog.WalkerOptions{
		SearchPath: searchPath,
		MaxPages:   cfg.MaxPages,
		PageDelay:  cfg.PageDelay(),
	})
	enricher := catalog.NewEnricher(fetcher, store, clock, tel, catalog.EnricherOptions{
		BaseURL:     base,
		DetailDelay: cfg.DetailDelay(),
	})

	return app{
		database: database,
		store:    store,
		crawler:  catalog.NewCrawler(walker, enricher, tel),
	}
}
