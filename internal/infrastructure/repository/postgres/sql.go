package postgres

import (
	"database/sql"

	_ "github.com/lib/pq"
)

func isNotFound(err error) bool {
	return err == sql.ErrNoRows
}
