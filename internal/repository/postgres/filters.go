package postgres

import (
	"fmt"
	"strings"
)

// DateRange bounds archive queries. Empty bounds are open.
type DateRange struct {
	Start string
	End   string
}

// buildDateRangeClause constructs a WHERE clause on column for r, numbering
// placeholders from startIndex.
func buildDateRangeClause(r DateRange, column string, startIndex int) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	idx := startIndex

	if r.Start != "" {
		clauses = append(clauses, fmt.Sprintf("%s >= $%d", column, idx))
		args = append(args, r.Start)
		idx++
	}

	if r.End != "" {
		clauses = append(clauses, fmt.Sprintf("%s <= $%d", column, idx))
		args = append(args, r.End)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
