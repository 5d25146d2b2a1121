// Package limits bounds the size of requests the builder accepts and of
// the results the executor holds in memory.
package limits

const (
	// MaxScanRows caps the rows scanned into a single result
	MaxScanRows = 100000

	// MaxQueryConditions caps keyword and where conditions combined
	MaxQueryConditions = 1000

	// MaxInListValues caps one IN / NOT IN list
	MaxInListValues = 10000

	MaxOrderByFields = 20
	MaxGroupByFields = 20
	MaxSelectFields  = 100

	// MaxUpdateFields caps SET items in one UPDATE
	MaxUpdateFields = 200

	// MaxCaseItems caps WHEN branches in one CASE update
	MaxCaseItems = 1000

	MaxBatchRows = 5000

	// MaxRawQuerySize caps hand-written SQL passed to RawQuery / RawExec
	MaxRawQuerySize = 10 * 1024 * 1024
)
