package store

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kanladin-backend/pkg/apperrors"
)

// Row models only drive AutoMigrate and table resolution; the gateway moves
// data as Items. Column names are the record attribute names.
type boardRow struct {
	ID    string `gorm:"column:id;primaryKey"`
	Title string `gorm:"column:title;not null"`
}

func (boardRow) TableName() string { return string(Boards) }

type columnRow struct {
	ID      string `gorm:"column:id;primaryKey"`
	Title   string `gorm:"column:title;not null"`
	BoardID string `gorm:"column:boardId;index;not null"`
	Order   int    `gorm:"column:order;not null;default:0"`
}

func (columnRow) TableName() string { return string(Columns) }

type cardRow struct {
	ID          string `gorm:"column:id;primaryKey"`
	Title       string `gorm:"column:title;not null"`
	Description string `gorm:"column:description;not null;default:''"`
	ColumnID    string `gorm:"column:columnId;index;not null"`
	Order       int    `gorm:"column:order;not null;default:0"`
}

func (cardRow) TableName() string { return string(Cards) }

// GormGateway stores each table as a SQL table through gorm
type GormGateway struct {
	db *gorm.DB
}

// NewGormGateway migrates the three tables and returns the gateway
func NewGormGateway(db *gorm.DB) (*GormGateway, error) {
	if err := db.AutoMigrate(&boardRow{}, &columnRow{}, &cardRow{}); err != nil {
		return nil, apperrors.NewStorage("migrate", err)
	}
	return &GormGateway{db: db}, nil
}

func model(table Table) (any, error) {
	switch table {
	case Boards:
		return &boardRow{}, nil
	case Columns:
		return &columnRow{}, nil
	case Cards:
		return &cardRow{}, nil
	}
	return nil, fmt.Errorf("unknown table %q", table)
}

func (g *GormGateway) Get(ctx context.Context, table Table, id string) (Item, error) {
	m, err := model(table)
	if err != nil {
		return nil, g.fault("get_item", table, err)
	}

	var rows []map[string]any
	if err := g.db.WithContext(ctx).Model(m).Where(map[string]any{KeyAttr: id}).Limit(1).Find(&rows).Error; err != nil {
		return nil, g.fault("get_item", table, err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return Item(rows[0]), nil
}

func (g *GormGateway) Put(ctx context.Context, table Table, item Item, cond *Condition) error {
	err := g.put(g.db.WithContext(ctx), table, item, cond)
	if err != nil && !errors.Is(err, ErrConditionFailed) {
		return g.fault("put_item", table, err)
	}
	return err
}

func (g *GormGateway) Delete(ctx context.Context, table Table, id string, cond *Condition) error {
	err := g.delete(g.db.WithContext(ctx), table, id, cond)
	switch {
	case errors.Is(err, ErrConditionFailed) && cond == nil:
		return ErrNotFound
	case err != nil && !errors.Is(err, ErrConditionFailed):
		return g.fault("delete_item", table, err)
	}
	return err
}

func (g *GormGateway) Scan(ctx context.Context, table Table) ([]Item, error) {
	return g.find(ctx, "scan", table, nil)
}

func (g *GormGateway) Query(ctx context.Context, table Table, attr string, value any) ([]Item, error) {
	return g.find(ctx, "query", table, map[string]any{attr: value})
}

func (g *GormGateway) Transact(ctx context.Context, ops []Op) error {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, op := range ops {
			var err error
			switch op.Kind {
			case OpPut:
				err = g.put(tx, op.Table, op.Item, op.Condition)
			case OpDelete:
				err = g.delete(tx, op.Table, op.ID, op.Condition)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrConditionFailed) {
		return g.fault("transact_write_items", "", err)
	}
	return err
}

func (g *GormGateway) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (g *GormGateway) find(ctx context.Context, op string, table Table, filter map[string]any) ([]Item, error) {
	m, err := model(table)
	if err != nil {
		return nil, g.fault(op, table, err)
	}

	query := g.db.WithContext(ctx).Model(m)
	if filter != nil {
		query = query.Where(filter)
	}

	var rows []map[string]any
	if err := query.Order(KeyAttr).Find(&rows).Error; err != nil {
		return nil, g.fault(op, table, err)
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, Item(row))
	}
	return items, nil
}

func (g *GormGateway) put(tx *gorm.DB, table Table, item Item, cond *Condition) error {
	m, err := model(table)
	if err != nil {
		return err
	}
	values := map[string]any(item.Clone())

	switch {
	case cond != nil && cond.MustNotExist:
		res := tx.Model(m).Clauses(clause.OnConflict{DoNothing: true}).Create(values)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConditionFailed
		}
		return nil

	case cond != nil && len(cond.Equals) > 0:
		delete(values, KeyAttr)
		res := tx.Model(m).Where(map[string]any{KeyAttr: item.ID()}).Where(cond.Equals).Updates(values)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConditionFailed
		}
		return nil
	}

	columns := make([]string, 0, len(values))
	for k := range values {
		if k != KeyAttr {
			columns = append(columns, k)
		}
	}
	return tx.Model(m).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: KeyAttr}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(values).Error
}

func (g *GormGateway) delete(tx *gorm.DB, table Table, id string, cond *Condition) error {
	m, err := model(table)
	if err != nil {
		return err
	}

	query := tx.Where(map[string]any{KeyAttr: id})
	if cond != nil && len(cond.Equals) > 0 {
		query = query.Where(cond.Equals)
	}
	res := query.Delete(m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConditionFailed
	}
	return nil
}

func (g *GormGateway) fault(op string, table Table, err error) error {
	log.WithFields(log.Fields{
		"component": "store.gorm",
		"operation": op,
		"table":     table,
	}).Errorf("database operation failed: %v", err)
	return apperrors.NewStorage(op, err)
}
