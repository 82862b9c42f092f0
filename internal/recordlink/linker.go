// Package recordlink talks to the external land-record system. The records
// system is its own source of truth; this service only resolves record
// metadata for prefill and pushes issued numbers back, best-effort.
package recordlink

import "context"

// RecordMeta is what the records system knows about a record code, enough to
// prefill an allocation request.
type RecordMeta struct {
	Code        string `json:"code"`
	Ward        string `json:"ward"`
	Sheet       string `json:"sheet"`
	Plot        string `json:"plot"`
	DisplayName string `json:"display_name"`
}

// Linker resolves records and stores issued numbers on them.
//
// AttachIssuedNumber runs after the number is durably committed, outside any
// lock: its failure never rolls back an issuance, it only schedules a retry.
type Linker interface {
	FindByCode(ctx context.Context, code string) (*RecordMeta, error)
	AttachIssuedNumber(ctx context.Context, code string, number int64) error
}
