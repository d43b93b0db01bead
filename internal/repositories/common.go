package repositories

import (
	"database/sql"
	"errors"

	intconfig "busgo/internal/config"
	"busgo/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// mysql error numbers we translate.
const (
	errDuplicateEntry  = 1062
	errRowIsReferenced = 1451
	errNoReferencedRow = 1452
)

func orGlobal(db *sqlx.DB) *sqlx.DB {
	if db != nil {
		return db
	}
	return intconfig.DB
}

// notFound turns sql.ErrNoRows into a domain.NotFoundError.
func notFound(resource string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: resource, Err: err}
	}
	return err
}

func isMySQLError(err error, number uint16) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == number
}

// IsDuplicate reports a unique-key violation.
func IsDuplicate(err error) bool { return isMySQLError(err, errDuplicateEntry) }

// IsReferenced reports a foreign-key RESTRICT violation on delete.
func IsReferenced(err error) bool { return isMySQLError(err, errRowIsReferenced) }

// IsMissingParent reports an insert/update pointing at a missing parent row.
func IsMissingParent(err error) bool { return isMySQLError(err, errNoReferencedRow) }

func affected(res sql.Result, resource string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NotFoundError{Resource: resource}
	}
	return nil
}
