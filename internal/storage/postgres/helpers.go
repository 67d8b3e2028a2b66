package postgres

import (
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// sqNow is the server-side timestamp used for created_at/updated_at.
var sqNow = sq.Expr("NOW()")

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
