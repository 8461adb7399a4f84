// Package runid mints the per-run identifier used to tag every CSV and
// sqlite log row.
package runid

import "github.com/google/uuid"

// New returns a fresh run identifier, same pattern as the reference repo's
// analysis-run and scene identifiers: a bare uuid.New().String().
func New() string {
	return uuid.New().String()
}
