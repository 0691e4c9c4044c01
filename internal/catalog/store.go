package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"maeto-catalog/internal/components/assert"
	"maeto-catalog/internal/components/chrono"
	"maeto-catalog/internal/components/telemetry"
	"maeto-catalog/internal/db"

	"go.opentelemetry.io/otel/attribute"
)

const (
	report_store_upsert = "store.upsert"
	report_store_specs  = "store.specs"
	report_store_counts = "store.upserted"
)

var ErrProductNotFound = errors.New("product not found")

type UpsertResult struct {
	Inserted int
	Updated  int
	// Skipped counts products without a sku.
	Skipped int
	// Failed counts products the database rejected.
	Failed int
}

// Store keeps products in the sqlite database, keyed by sku.
type Store struct {
	qry    *db.Queries
	chrono chrono.API
	tel    telemetry.API
}

func NewStore(database *sql.DB, clock chrono.API, tel telemetry.API) Store {
	assert.NotNil(database)
	assert.NotNil(clock)
	assert.NotNil(tel)

	return Store{
		qry:    db.New(database),
		chrono: clock,
		tel:    telemetry.NewScopedAPI("store", tel),
	}
}

// UpsertMany writes every product under `term`, products seen for the first
// time are inserted and known ones are updated in place. Each row is written
// on its own so a failure leaves the earlier rows committed. Only context
// cancellation stops the batch.
func (s Store) UpsertMany(ctx context.Context, products []Product, term string) (UpsertResult, error) {
	ctx, span := tracer.Start(ctx, "store:UpsertMany")
	defer span.End()

	var result UpsertResult
	defer func() {
		span.SetAttributes(
			attribute.Int("upsert.inserted", result.Inserted),
			attribute.Int("upsert.updated", result.Updated),
			attribute.Int("upsert.skipped", result.Skipped),
			attribute.Int("upsert.failed", result.Failed),
		)
	}()

	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if p.SKU == "" {
			s.tel.ReportWarning(report_store_upsert, "product without sku skipped", p.Title)
			result.Skipped++
			continue
		}

		inserted, err := s.upsert(ctx, p, term)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			s.tel.ReportBroken(report_store_upsert, err, p.SKU)
			result.Failed++
			continue
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}

	s.tel.ReportCount(report_store_counts, int64(result.Inserted+result.Updated))
	return result, nil
}

func (s Store) upsert(ctx context.Context, p Product, term string) (inserted bool, err error) {
	now := s.chrono.Now().UnixMilli()

	count, err := s.qry.ProductExists(ctx, p.SKU)
	if err != nil {
		return false, fmt.Errorf("check existence: %w", err)
	}

	if count > 0 {
		var rows int64
		rows, err = s.qry.UpdateProduct(ctx, db.UpdateProductParams{
			Title:             p.Title,
			Price:             p.Price,
			PriceAlt:          p.PriceAlt,
			InstallmentAmount: p.InstallmentAmount,
			InstallmentCount:  p.InstallmentCount,
			SearchTerm:        term,
			TechnicalSpecs:    p.Specs.stored(),
			LastUpdatedAt:     now,
			Sku:               p.SKU,
		})
		if err != nil {
			return false, fmt.Errorf("update: %w", err)
		}
		if rows > 0 {
			return false, nil
		}
		// the row was deleted after the existence check
	}

	err = s.qry.InsertProduct(ctx, db.InsertProductParams{
		Sku:               p.SKU,
		Title:             p.Title,
		Price:             p.Price,
		PriceAlt:          p.PriceAlt,
		InstallmentAmount: p.InstallmentAmount,
		InstallmentCount:  p.InstallmentCount,
		SearchTerm:        term,
		TechnicalSpecs:    p.Specs.stored(),
		FirstSeenAt:       now,
		LastUpdatedAt:     now,
	})
	if err != nil {
		return false, fmt.Errorf("insert: %w", err)
	}
	return true, nil
}

// Specs implements SpecsLookup.
func (s Store) Specs(ctx context.Context, sku string) (Specs, bool, error) {
	stored, err := s.qry.GetStoredSpecs(ctx, sku)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get stored specs: %w", err)
	}
	specs, err := DecodeSpecs(stored.String)
	if err != nil {
		s.tel.ReportWarning(report_store_specs, err, sku)
		return nil, false, nil
	}
	if len(specs) == 0 {
		return nil, false, nil
	}
	return specs, true, nil
}

func (s Store) toRecord(row db.Product) Record {
	rec := Record{
		SKU:               row.Sku,
		Title:             row.Title,
		Price:             row.Price,
		PriceAlt:          row.PriceAlt,
		InstallmentAmount: row.InstallmentAmount,
		InstallmentCount:  row.InstallmentCount,
		SearchTerm:        row.SearchTerm,
		FirstSeenAt:       time.UnixMilli(row.FirstSeenAt),
		LastUpdatedAt:     time.UnixMilli(row.LastUpdatedAt),
	}
	if row.TechnicalSpecs.Valid {
		specs, err := DecodeSpecs(row.TechnicalSpecs.String)
		if err != nil {
			s.tel.ReportWarning(report_store_specs, err, row.Sku)
		} else {
			rec.Specs = specs
		}
	}
	return rec
}

// Get returns a single stored product, ErrProductNotFound if there is none.
func (s Store) Get(ctx context.Context, sku string) (Record, error) {
	row, err := s.qry.GetProduct(ctx, sku)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%w: %s", ErrProductNotFound, sku)
	}
	if err != nil {
		return Record{}, fmt.Errorf("get product: %w", err)
	}
	return s.toRecord(row), nil
}

type ListFilter struct {
	// Term only keeps products last found by this search term.
	Term string
	// Since only keeps products updated at or after this time.
	Since time.Time
	// Limit <= 0 means no limit.
	Limit int
}

// List returns stored products, most recently updated first.
func (s Store) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	var since int64
	if !filter.Since.IsZero() {
		since = filter.Since.UnixMilli()
	}
	limit := int64(filter.Limit)
	if limit <= 0 {
		limit = -1
	}

	var rows []db.Product
	var err error
	if filter.Term != "" {
		rows, err = s.qry.ListProductsByTerm(ctx, db.ListProductsByTermParams{
			SearchTerm: filter.Term,
			Since:      since,
			Limit:      limit,
		})
	} else {
		rows, err = s.qry.ListProducts(ctx, db.ListProductsParams{
			Since: since,
			Limit: limit,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	out := make([]Record, len(rows))
	for i, row := range rows {
		out[i] = s.toRecord(row)
	}
	return out, nil
}

// Count returns the number of stored products.
func (s Store) Count(ctx context.Context) (int64, error) {
	return s.qry.CountProducts(ctx)
}
