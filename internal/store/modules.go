package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/hugh/go-gatekeeper/internal/database/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *Store) ListModules(ctx context.Context) ([]models.Module, error) {
	var modules []models.Module
	err := s.conn(ctx).Order("name").Find(&modules).Error
	return modules, wrap("list modules", err)
}

func (s *Store) GetModuleByID(ctx context.Context, id uuid.UUID) (*models.Module, error) {
	var m models.Module
	if err := s.conn(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, wrap("get module", err)
	}
	return &m, nil
}

// GetModuleWithChildren loads the module together with all of its
// transactions and functions.
func (s *Store) GetModuleWithChildren(ctx context.Context, id uuid.UUID) (*models.Module, error) {
	var m models.Module
	err := s.conn(ctx).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		Preload("Functions", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, wrap("get module with children", err)
	}
	return &m, nil
}

func (s *Store) GetModuleByName(ctx context.Context, name string) (*models.Module, error) {
	var m models.Module
	if err := s.conn(ctx).Where("name = ?", name).First(&m).Error; err != nil {
		return nil, wrap("get module by name", err)
	}
	return &m, nil
}

func (s *Store) CreateModule(ctx context.Context, m *models.Module) error {
	return wrap("create module", s.conn(ctx).Omit(clause.Associations).Create(m).Error)
}

func (s *Store) UpdateModule(ctx context.Context, m *models.Module) error {
	return wrap("update module", s.conn(ctx).Omit(clause.Associations).Save(m).Error)
}

// DeleteModule removes the module, its transactions and functions and every
// grant that references any of them.
func (s *Store) DeleteModule(ctx context.Context, id uuid.UUID) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOne(tx, &models.Module{}, "id = ?", id); err != nil {
			return err
		}
		txIDs := tx.Model(&models.Transaction{}).Select("id").Where("module_id = ?", id)
		fnIDs := tx.Model(&models.Function{}).Select("id").Where("module_id = ?", id)

		if err := tx.Where("function_id IN (?) OR transaction_id IN (?)", fnIDs, txIDs).
			Delete(&models.ProfileFunction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("transaction_id IN (?)", txIDs).Delete(&models.ProfileTransaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("module_id = ?", id).Delete(&models.ProfileModule{}).Error; err != nil {
			return err
		}
		if err := tx.Where("module_id = ?", id).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("module_id = ?", id).Delete(&models.Function{}).Error; err != nil {
			return err
		}
		return requireAffected(tx.Delete(&models.Module{}, "id = ?", id))
	})
	return wrap("delete module", err)
}

func (s *Store) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	var transactions []models.Transaction
	err := s.conn(ctx).Preload("Module").Order("name").Find(&transactions).Error
	return transactions, wrap("list transactions", err)
}

func (s *Store) GetTransactionByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	var t models.Transaction
	if err := s.conn(ctx).Preload("Module").First(&t, "id = ?", id).Error; err != nil {
		return nil, wrap("get transaction", err)
	}
	return &t, nil
}

func (s *Store) GetTransactionByName(ctx context.Context, moduleID uuid.UUID, name string) (*models.Transaction, error) {
	var t models.Transaction
	if err := s.conn(ctx).Where("module_id = ? AND name = ?", moduleID, name).First(&t).Error; err != nil {
		return nil, wrap("get transaction by name", err)
	}
	return &t, nil
}

func (s *Store) CreateTransaction(ctx context.Context, t *models.Transaction) error {
	return wrap("create transaction", s.conn(ctx).Omit(clause.Associations).Create(t).Error)
}

func (s *Store) UpdateTransaction(ctx context.Context, t *models.Transaction) error {
	return wrap("update transaction", s.conn(ctx).Omit(clause.Associations).Save(t).Error)
}

// DeleteTransaction removes the transaction and the function and transaction
// grants scoped to it.
func (s *Store) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOne(tx, &models.Transaction{}, "id = ?", id); err != nil {
			return err
		}
		if err := tx.Where("transaction_id = ?", id).Delete(&models.ProfileFunction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("transaction_id = ?", id).Delete(&models.ProfileTransaction{}).Error; err != nil {
			return err
		}
		return requireAffected(tx.Delete(&models.Transaction{}, "id = ?", id))
	})
	return wrap("delete transaction", err)
}

func (s *Store) ListFunctions(ctx context.Context) ([]models.Function, error) {
	var functions []models.Function
	err := s.conn(ctx).Preload("Module").Order("name").Find(&functions).Error
	return functions, wrap("list functions", err)
}

func (s *Store) GetFunctionByID(ctx context.Context, id uuid.UUID) (*models.Function, error) {
	var f models.Function
	if err := s.conn(ctx).Preload("Module").First(&f, "id = ?", id).Error; err != nil {
		return nil, wrap("get function", err)
	}
	return &f, nil
}

func (s *Store) GetFunctionByName(ctx context.Context, moduleID uuid.UUID, name string) (*models.Function, error) {
	var f models.Function
	if err := s.conn(ctx).Where("module_id = ? AND name = ?", moduleID, name).First(&f).Error; err != nil {
		return nil, wrap("get function by name", err)
	}
	return &f, nil
}

func (s *Store) GetFunctionsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Function, error) {
	var functions []models.Function
	if len(ids) == 0 {
		return functions, nil
	}
	err := s.conn(ctx).Where("id IN ?", ids).Order("name").Find(&functions).Error
	return functions, wrap("get functions by ids", err)
}

func (s *Store) CreateFunction(ctx context.Context, f *models.Function) error {
	return wrap("create function", s.conn(ctx).Omit(clause.Associations).Create(f).Error)
}

func (s *Store) UpdateFunction(ctx context.Context, f *models.Function) error {
	return wrap("update function", s.conn(ctx).Omit(clause.Associations).Save(f).Error)
}

func (s *Store) DeleteFunction(ctx context.Context, id uuid.UUID) error {
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOne(tx, &models.Function{}, "id = ?", id); err != nil {
			return err
		}
		if err := tx.Where("function_id = ?", id).Delete(&models.ProfileFunction{}).Error; err != nil {
			return err
		}
		return requireAffected(tx.Delete(&models.Function{}, "id = ?", id))
	})
	return wrap("delete function", err)
}
