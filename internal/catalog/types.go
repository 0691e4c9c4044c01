package catalog

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"maeto-catalog/internal/db"
)

// Product is a single listing found by a search, plus whatever the detail page
// contributed.
type Product struct {
	SKU               string
	Title             string
	Price             string
	PriceAlt          string
	InstallmentAmount string
	InstallmentCount  string

	// DetailURL is the raw href of the listing, it is never persisted.
	DetailURL  string
	SearchTerm string
	Specs      SpecResult
}

// Specs is the key/value table found on a product's detail page.
type Specs map[string]string

// Encode returns the compact json object stored in the technical_specs column,
// a nil or empty mapping encodes to `{}`.
func (s Specs) Encode() string {
	if len(s) == 0 {
		return db.EmptySpecs
	}
	var buff bytes.Buffer
	enc := json.NewEncoder(&buff)
	enc.SetEscapeHTML(false)
	// map keys are sorted by encoding/json
	err := enc.Encode(map[string]string(s))
	if err != nil {
		// a map[string]string cannot fail to encode
		panic(err)
	}
	return string(bytes.TrimRight(buff.Bytes(), "\n"))
}

// DecodeSpecs parses the contents of the technical_specs column.
func DecodeSpecs(encoded string) (Specs, error) {
	out := Specs{}
	if encoded == "" {
		return out, nil
	}
	err := json.Unmarshal([]byte(encoded), &out)
	if err != nil {
		return nil, fmt.Errorf("decode specs: %w", err)
	}
	return out, nil
}

type SpecStatus int

const (
	// SpecsReused means the specs came from the store and no request was made.
	SpecsReused SpecStatus = iota
	// SpecsFetched means the detail page had a spec table.
	SpecsFetched
	// SpecsMissing means the detail page loaded but had no spec table.
	SpecsMissing
	// SpecsFailed means the detail page could not be loaded.
	SpecsFailed
	// SpecsNoURL means the listing had no link to a detail page.
	SpecsNoURL
)

func (s SpecStatus) String() string {
	switch s {
	case SpecsReused:
		return "reused"
	case SpecsFetched:
		return "fetched"
	case SpecsMissing:
		return "missing"
	case SpecsFailed:
		return "failed"
	case SpecsNoURL:
		return "no-url"
	}
	return fmt.Sprintf("SpecStatus(%d)", int(s))
}

type SpecResult struct {
	Status SpecStatus
	Specs  Specs
}

// stored returns the value written to the technical_specs column, failed and
// url-less lookups are written as NULL so the next crawl tries again.
func (r SpecResult) stored() sql.NullString {
	switch r.Status {
	case SpecsFailed, SpecsNoURL:
		return sql.NullString{}
	}
	return sql.NullString{String: r.Specs.Encode(), Valid: true}
}

// Record is a product as it is held by the store.
type Record struct {
	SKU               string
	Title             string
	Price             string
	PriceAlt          string
	InstallmentAmount string
	InstallmentCount  string
	SearchTerm        string

	// Specs is nil when specs were never fetched successfully.
	Specs         Specs
	FirstSeenAt   time.Time
	LastUpdatedAt time.Time
}
