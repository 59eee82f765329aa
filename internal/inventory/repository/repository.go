package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tair/smart-inventory/internal/inventory/domain"
)

// itemKeyIndex makes (name, expiry_date) unique with a missing expiry
// counted as a single key.
const itemKeyIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_items_name_expiry
	ON items (name, COALESCE(expiry_date, 'infinity'::date))`

// AutoMigrate creates or updates the inventory tables
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.Item{}, &domain.SaleEvent{}, &domain.ReorderOrder{}); err != nil {
		return err
	}
	return db.Exec(itemKeyIndex).Error
}

const createSavepoint = "item_create"

type GormItemRepository struct {
	db *gorm.DB
	tx *GormTxManager
}

func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db, tx: NewGormTxManager(db)}
}

// Create inserts item. Inside a transaction the insert runs under a savepoint
// so a duplicate key leaves the transaction usable for a follow-up update.
func (r *GormItemRepository) Create(ctx context.Context, item *domain.Item) error {
	db := conn(ctx, r.db)
	if !inTx(ctx) {
		return translate(db.Create(item).Error, "item")
	}

	if err := db.SavePoint(createSavepoint).Error; err != nil {
		return err
	}
	if err := db.Create(item).Error; err != nil {
		if rbErr := db.RollbackTo(createSavepoint).Error; rbErr != nil {
			return rbErr
		}
		item.ID = 0
		return translate(err, "item")
	}
	return nil
}

func (r *GormItemRepository) FindByID(ctx context.Context, id uint) (*domain.Item, error) {
	var item domain.Item
	if err := conn(ctx, r.db).First(&item, id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("item %d", id))
	}
	return &item, nil
}

func (r *GormItemRepository) FindByBarcode(ctx context.Context, barcode string) (*domain.Item, error) {
	var item domain.Item
	if err := conn(ctx, r.db).Where("barcode = ?", barcode).First(&item).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("item with barcode %q", barcode))
	}
	return &item, nil
}

func (r *GormItemRepository) FindByName(ctx context.Context, name string) (*domain.Item, error) {
	var item domain.Item
	err := conn(ctx, r.db).Where("name = ?", name).Order("id").First(&item).Error
	if err != nil {
		return nil, translate(err, fmt.Sprintf("item named %q", name))
	}
	return &item, nil
}

func (r *GormItemRepository) FindByNameAndExpiry(ctx context.Context, name string, expiry *time.Time) (*domain.Item, error) {
	q := conn(ctx, r.db).Where("name = ?", name)
	if expiry == nil {
		q = q.Where("expiry_date IS NULL")
	} else {
		q = q.Where("expiry_date = ?", domain.NormalizeDate(*expiry))
	}
	if inTx(ctx) {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var item domain.Item
	if err := q.Order("id").First(&item).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("item named %q", name))
	}
	return &item, nil
}

func (r *GormItemRepository) FindAll(ctx context.Context) ([]domain.Item, error) {
	var items []domain.Item
	err := conn(ctx, r.db).Order("id").Find(&items).Error
	return items, err
}

func (r *GormItemRepository) AddQuantity(ctx context.Context, id uint, amount int) error {
	result := conn(ctx, r.db).Model(&domain.Item{}).
		Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", amount))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError("item %d", id)
	}
	return nil
}

// DecrementQuantity locks the row, checks the available stock and subtracts.
// Concurrent decrements of the same item serialise on the row lock.
func (r *GormItemRepository) DecrementQuantity(ctx context.Context, id uint, amount int) (*domain.Item, error) {
	var item domain.Item
	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		err := conn(ctx, r.db).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&item, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &domain.InsufficientStockError{ItemID: id, Requested: amount, Available: 0}
		}
		if err != nil {
			return err
		}
		if item.Quantity < amount {
			return &domain.InsufficientStockError{ItemID: id, Requested: amount, Available: item.Quantity}
		}

		result := conn(ctx, r.db).Model(&domain.Item{}).
			Where("id = ? AND quantity >= ?", id, amount).
			Update("quantity", gorm.Expr("quantity - ?", amount))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &domain.InsufficientStockError{ItemID: id, Requested: amount, Available: item.Quantity}
		}
		item.Quantity -= amount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormItemRepository) Update(ctx context.Context, item *domain.Item) error {
	if err := conn(ctx, r.db).Save(item).Error; err != nil {
		return translate(err, "item")
	}
	return nil
}

func (r *GormItemRepository) Delete(ctx context.Context, id uint) error {
	result := conn(ctx, r.db).Delete(&domain.Item{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.NotFoundError("item %d", id)
	}
	return nil
}

type GormSaleRepository struct {
	db *gorm.DB
}

func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func (r *GormSaleRepository) Record(ctx context.Context, sale *domain.SaleEvent) error {
	if sale.SaleDate.IsZero() {
		sale.SaleDate = time.Now().UTC()
	}
	return conn(ctx, r.db).Create(sale).Error
}

func (r *GormSaleRepository) ListByItem(ctx context.Context, itemID uint) ([]domain.SaleEvent, error) {
	var sales []domain.SaleEvent
	err := conn(ctx, r.db).Where("item_id = ?", itemID).Order("sale_date, id").Find(&sales).Error
	return sales, err
}

func (r *GormSaleRepository) TotalSoldByItem(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		Name  string
		Total int
	}
	err := conn(ctx, r.db).
		Table("items").
		Select("items.name AS name, COALESCE(SUM(sale_events.quantity_sold), 0) AS total").
		Joins("LEFT JOIN sale_events ON sale_events.item_id = items.id").
		Group("items.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int, len(rows))
	for _, row := range rows {
		totals[row.Name] = row.Total
	}
	return totals, nil
}

type GormReorderRepository struct {
	db *gorm.DB
}

func NewGormReorderRepository(db *gorm.DB) *GormReorderRepository {
	return &GormReorderRepository{db: db}
}

func (r *GormReorderRepository) Save(ctx context.Context, order *domain.ReorderOrder) error {
	if order.RequestedAt.IsZero() {
		order.RequestedAt = time.Now().UTC()
	}
	return conn(ctx, r.db).Create(order).Error
}

func (r *GormReorderRepository) FindRecent(ctx context.Context, limit int) ([]domain.ReorderOrder, error) {
	var orders []domain.ReorderOrder
	err := conn(ctx, r.db).Order("id DESC").Limit(limit).Find(&orders).Error
	return orders, err
}

func translate(err error, what string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFoundError("%s", what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ConflictError("%s already exists: %v", what, err)
	default:
		return err
	}
}
