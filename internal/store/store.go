// Package store is the data access layer for users, profiles and the
// module/transaction/function permission graph. Multi-row writes run inside a
// single database transaction.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hugh/go-gatekeeper/pkg/apperr"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrInUse         = errors.New("record is still referenced")
	ErrNotGranted    = errors.New("parent grant is missing")
	ErrOutsideModule = errors.New("record belongs to another module")
)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// wrap converts driver errors so that no gorm type escapes the package.
func wrap(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInUse),
		errors.Is(err, ErrNotGranted), errors.Is(err, ErrOutsideModule):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Wrap(apperr.KindConflict, err, "resource already exists")
	}
	return apperr.Internal(err, "operation failed: "+op)
}

func requireAffected(res *gorm.DB) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// lockIDs row-locks every row matching the query and returns their ids.
// Grants take share locks on the rows they depend on; cascading deletes take
// an update lock on the root row before touching anything beneath it, so the
// two never interleave. SQLite ignores the clause and serializes writers.
func lockIDs(tx *gorm.DB, strength string, model interface{}, query interface{}, args ...interface{}) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := tx.Model(model).
		Clauses(clause.Locking{Strength: strength}).
		Where(query, args...).
		Pluck("id", &ids).Error
	return ids, err
}

// lockOne update-locks a single root row, reporting ErrNotFound when it is gone.
func lockOne(tx *gorm.DB, model interface{}, query interface{}, args ...interface{}) error {
	ids, err := lockIDs(tx, clause.LockingStrengthUpdate, model, query, args...)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return ErrNotFound
	}
	return nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
