package repository

import "strings"

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505) as surfaced by the pgx stdlib driver.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "SQLSTATE 23505")
}
