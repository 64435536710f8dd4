package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/hugh/go-gatekeeper/internal/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) GetProfileModule(ctx context.Context, profileID, moduleID uuid.UUID) (*models.ProfileModule, error) {
	var pm models.ProfileModule
	err := s.conn(ctx).Where("profile_id = ? AND module_id = ?", profileID, moduleID).First(&pm).Error
	if err != nil {
		return nil, wrap("get profile module", err)
	}
	return &pm, nil
}

func (s *Store) GetProfileTransaction(ctx context.Context, profileID, transactionID uuid.UUID) (*models.ProfileTransaction, error) {
	var pt models.ProfileTransaction
	err := s.conn(ctx).Where("profile_id = ? AND transaction_id = ?", profileID, transactionID).First(&pt).Error
	if err != nil {
		return nil, wrap("get profile transaction", err)
	}
	return &pt, nil
}

func (s *Store) GetProfileFunction(ctx context.Context, profileID, transactionID, functionID uuid.UUID) (*models.ProfileFunction, error) {
	var pf models.ProfileFunction
	err := s.conn(ctx).
		Where("profile_id = ? AND transaction_id = ? AND function_id = ?", profileID, transactionID, functionID).
		First(&pf).Error
	if err != nil {
		return nil, wrap("get profile function", err)
	}
	return &pf, nil
}

// GrantModules inserts the grants in one transaction. The profile and every
// module must exist; pairs that already exist are left untouched.
func (s *Store) GrantModules(ctx context.Context, profileID uuid.UUID, moduleIDs []uuid.UUID) error {
	moduleIDs = uniqueIDs(moduleIDs)
	if len(moduleIDs) == 0 {
		return nil
	}

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRows(tx, &models.Profile{}, 1, ErrNotFound, "id = ?", profileID); err != nil {
			return err
		}
		if err := requireRows(tx, &models.Module{}, len(moduleIDs), ErrNotFound, "id IN ?", moduleIDs); err != nil {
			return err
		}

		rows := make([]models.ProfileModule, 0, len(moduleIDs))
		for _, id := range moduleIDs {
			rows = append(rows, models.ProfileModule{ProfileID: profileID, ModuleID: id})
		}
		return insertIgnore(tx, &rows)
	})
	return wrap("grant modules", err)
}

// GrantTransactions inserts the grants only while the profile still holds the
// module of every transaction. ErrNotGranted reports a missing module grant.
func (s *Store) GrantTransactions(ctx context.Context, profileID uuid.UUID, transactionIDs []uuid.UUID) error {
	transactionIDs = uniqueIDs(transactionIDs)
	if len(transactionIDs) == 0 {
		return nil
	}

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRows(tx, &models.Profile{}, 1, ErrNotFound, "id = ?", profileID); err != nil {
			return err
		}

		parents := tx.Model(&models.Transaction{}).Select("module_id").Where("id IN ?", transactionIDs)
		moduleIDs, err := lockIDs(tx, clause.LockingStrengthShare, &models.Module{}, "id IN (?)", parents)
		if err != nil {
			return err
		}
		if err := requireRows(tx, &models.Transaction{}, len(transactionIDs), ErrNotFound, "id IN ?", transactionIDs); err != nil {
			return err
		}
		if err := requireRows(tx, &models.ProfileModule{}, len(moduleIDs), ErrNotGranted,
			"profile_id = ? AND module_id IN ?", profileID, moduleIDs); err != nil {
			return err
		}

		rows := make([]models.ProfileTransaction, 0, len(transactionIDs))
		for _, id := range transactionIDs {
			rows = append(rows, models.ProfileTransaction{ProfileID: profileID, TransactionID: id})
		}
		return insertIgnore(tx, &rows)
	})
	return wrap("grant transactions", err)
}

// GrantFunctions inserts the grants only while the profile holds both the
// transaction and its module. Functions of another module yield
// ErrOutsideModule.
func (s *Store) GrantFunctions(ctx context.Context, profileID, transactionID uuid.UUID, functionIDs []uuid.UUID) error {
	functionIDs = uniqueIDs(functionIDs)
	if len(functionIDs) == 0 {
		return nil
	}

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireRows(tx, &models.Profile{}, 1, ErrNotFound, "id = ?", profileID); err != nil {
			return err
		}

		parent := tx.Model(&models.Transaction{}).Select("module_id").Where("id = ?", transactionID)
		moduleIDs, err := lockIDs(tx, clause.LockingStrengthShare, &models.Module{}, "id IN (?)", parent)
		if err != nil {
			return err
		}
		if len(moduleIDs) != 1 {
			return ErrNotFound
		}
		if err := requireRows(tx, &models.Transaction{}, 1, ErrNotFound, "id = ?", transactionID); err != nil {
			return err
		}
		if err := requireRows(tx, &models.ProfileModule{}, 1, ErrNotGranted,
			"profile_id = ? AND module_id = ?", profileID, moduleIDs[0]); err != nil {
			return err
		}
		if err := requireRows(tx, &models.ProfileTransaction{}, 1, ErrNotGranted,
			"profile_id = ? AND transaction_id = ?", profileID, transactionID); err != nil {
			return err
		}

		var functions []models.Function
		if err := tx.Clauses(clause.Locking{Strength: clause.LockingStrengthShare}).
			Where("id IN ?", functionIDs).Find(&functions).Error; err != nil {
			return err
		}
		if len(functions) != len(functionIDs) {
			return ErrNotFound
		}
		for _, f := range functions {
			if f.ModuleID != moduleIDs[0] {
				return ErrOutsideModule
			}
		}

		rows := make([]models.ProfileFunction, 0, len(functionIDs))
		for _, id := range functionIDs {
			rows = append(rows, models.ProfileFunction{ProfileID: profileID, TransactionID: transactionID, FunctionID: id})
		}
		return insertIgnore(tx, &rows)
	})
	return wrap("grant functions", err)
}

// requireRows share-locks the matching rows and returns missing unless
// exactly want of them exist.
func requireRows(tx *gorm.DB, model interface{}, want int, missing error, query interface{}, args ...interface{}) error {
	ids, err := lockIDs(tx, clause.LockingStrengthShare, model, query, args...)
	if err != nil {
		return err
	}
	if len(ids) != want {
		return missing
	}
	return nil
}

func insertIgnore(tx *gorm.DB, rows interface{}) error {
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(rows).Error
}

// RevokeModule drops the module grant plus every transaction and function
// grant the profile holds beneath it.
func (s *Store) RevokeModule(ctx context.Context, profileID, moduleID uuid.UUID) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOne(tx, &models.ProfileModule{}, "profile_id = ? AND module_id = ?", profileID, moduleID); err != nil {
			return err
		}
		txIDs := tx.Model(&models.Transaction{}).Select("id").Where("module_id = ?", moduleID)
		fnIDs := tx.Model(&models.Function{}).Select("id").Where("module_id = ?", moduleID)

		if err := tx.Where("profile_id = ? AND (function_id IN (?) OR transaction_id IN (?))", profileID, fnIDs, txIDs).
			Delete(&models.ProfileFunction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id = ? AND transaction_id IN (?)", profileID, txIDs).
			Delete(&models.ProfileTransaction{}).Error; err != nil {
			return err
		}
		return requireAffected(tx.Where("profile_id = ? AND module_id = ?", profileID, moduleID).
			Delete(&models.ProfileModule{}))
	})
	return wrap("revoke module", err)
}

func (s *Store) RevokeTransaction(ctx context.Context, profileID, transactionID uuid.UUID) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOne(tx, &models.ProfileTransaction{}, "profile_id = ? AND transaction_id = ?", profileID, transactionID); err != nil {
			return err
		}
		if err := tx.Where("profile_id = ? AND transaction_id = ?", profileID, transactionID).
			Delete(&models.ProfileFunction{}).Error; err != nil {
			return err
		}
		return requireAffected(tx.Where("profile_id = ? AND transaction_id = ?", profileID, transactionID).
			Delete(&models.ProfileTransaction{}))
	})
	return wrap("revoke transaction", err)
}

func (s *Store) RevokeFunction(ctx context.Context, profileID, transactionID, functionID uuid.UUID) error {
	res := s.conn(ctx).
		Where("profile_id = ? AND transaction_id = ? AND function_id = ?", profileID, transactionID, functionID).
		Delete(&models.ProfileFunction{})
	return wrap("revoke function", requireAffected(res))
}

// AvailableModules lists modules not yet granted to the profile.
func (s *Store) AvailableModules(ctx context.Context, profileID uuid.UUID) ([]models.Module, error) {
	db := s.conn(ctx)
	granted := db.Model(&models.ProfileModule{}).Select("module_id").Where("profile_id = ?", profileID)

	var modules []models.Module
	err := db.Where("id NOT IN (?)", granted).Order("name").Find(&modules).Error
	return modules, wrap("available modules", err)
}

// AvailableTransactions lists the module's transactions not yet granted to the profile.
func (s *Store) AvailableTransactions(ctx context.Context, profileID, moduleID uuid.UUID) ([]models.Transaction, error) {
	db := s.conn(ctx)
	granted := db.Model(&models.ProfileTransaction{}).Select("transaction_id").Where("profile_id = ?", profileID)

	var transactions []models.Transaction
	err := db.Where("module_id = ? AND id NOT IN (?)", moduleID, granted).Order("name").Find(&transactions).Error
	return transactions, wrap("available transactions", err)
}

// AvailableFunctions lists functions of the module that the profile does not
// hold for the given transaction.
func (s *Store) AvailableFunctions(ctx context.Context, profileID, transactionID, moduleID uuid.UUID) ([]models.Function, error) {
	db := s.conn(ctx)
	granted := db.Model(&models.ProfileFunction{}).Select("function_id").
		Where("profile_id = ? AND transaction_id = ?", profileID, transactionID)

	var functions []models.Function
	err := db.Where("module_id = ? AND id NOT IN (?)", moduleID, granted).Order("name").Find(&functions).Error
	return functions, wrap("available functions", err)
}

// GrantedModules lists the modules granted to the profile. A nil moduleID
// returns every granted module.
func (s *Store) GrantedModules(ctx context.Context, profileID uuid.UUID, moduleID *uuid.UUID) ([]models.Module, error) {
	db := s.conn(ctx)
	granted := db.Model(&models.ProfileModule{}).Select("module_id").Where("profile_id = ?", profileID)

	q := db.Where("id IN (?)", granted)
	if moduleID != nil {
		q = q.Where("id = ?", *moduleID)
	}

	var modules []models.Module
	err := q.Order("name").Find(&modules).Error
	return modules, wrap("granted modules", err)
}

func (s *Store) GrantedTransactions(ctx context.Context, profileID uuid.UUID, moduleIDs []uuid.UUID) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if len(moduleIDs) == 0 {
		return transactions, nil
	}
	db := s.conn(ctx)
	granted := db.Model(&models.ProfileTransaction{}).Select("transaction_id").Where("profile_id = ?", profileID)

	err := db.Where("module_id IN ? AND id IN (?)", moduleIDs, granted).Order("name").Find(&transactions).Error
	return transactions, wrap("granted transactions", err)
}

func (s *Store) GrantedFunctionRows(ctx context.Context, profileID uuid.UUID, transactionIDs []uuid.UUID) ([]models.ProfileFunction, error) {
	var rows []models.ProfileFunction
	if len(transactionIDs) == 0 {
		return rows, nil
	}
	err := s.conn(ctx).Where("profile_id = ? AND transaction_id IN ?", profileID, transactionIDs).Find(&rows).Error
	return rows, wrap("granted function rows", err)
}
