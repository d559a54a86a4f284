package testsupport

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteMemoryDB opens a uniquely named in-memory SQLite database. The
// shared cache keeps the database alive across pooled connections while the
// unique name isolates tests from each other.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	return sql.Open("sqlite3", dsn)
}
