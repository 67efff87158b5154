package repository

// scanner covers both *sql.Row and *sql.Rows so the scanX helpers can be
// shared between single-row and list queries.
type scanner interface {
	Scan(dest ...any) error
}
