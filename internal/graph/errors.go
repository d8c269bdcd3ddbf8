package graph

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/evolv3ai/basic-memory/pkg/interfaces"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/mattn/go-sqlite3"
)

// mapRepositoryError translates go-repository-bun's categorized errors into
// the store's own typed errors, the way bun_repository.go's
// mapRepositoryError does for the content package. Raw bun queries that
// bypass the repository layer (direct tx.NewSelect().Scan calls) surface a
// plain sql.ErrNoRows instead of a categorized error, the same distinction
// the teacher's storageconfig/translationconfig repositories make with
// errors.Is(err, sql.ErrNoRows) alongside the category check used for
// go-repository-bun-mediated calls.
func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) || errors.Is(err, sql.ErrNoRows) {
		return &interfaces.NotFoundError{Resource: resource, Key: key}
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return &interfaces.ConflictError{Resource: resource, Key: key, Reason: "unique constraint violated"}
	}
	return &interfaces.StoreError{Op: resource, Err: fmt.Errorf("%s: %w", key, err)}
}
