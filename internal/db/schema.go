package db

import _ "embed"

//go:embed schema.sql
var Schema string

// EmptySpecs is the stored form of a specification table that was fetched
// and had no rows.
const EmptySpecs = "{}"
