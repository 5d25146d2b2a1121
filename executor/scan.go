package executor

import (
	"github.com/carlosnayan/onela-go/internal/driver"
	"github.com/carlosnayan/onela-go/internal/errors"
)

// ScanMaps reads every row into a map keyed by column name. Text returned
// as []byte (MySQL, SQLite) becomes string. More than maxRows rows fails
// with ErrTooManyRows; maxRows <= 0 means no bound.
func ScanMaps(rows driver.Rows, maxRows int) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := []map[string]any{}
	for rows.Next() {
		if maxRows > 0 && len(result) >= maxRows {
			return nil, errors.Newf(errors.ErrTooManyRows, "more than %d rows", maxRows)
		}

		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
