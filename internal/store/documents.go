package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Filter matches columns by equality, or by a Condition built with Lt/Gt.
type Filter map[string]any

// Condition is a non-equality comparison inside a Filter.
type Condition struct {
	op    string
	value any
}

// Lt matches column < value.
func Lt(value any) Condition { return Condition{op: "<", value: value} }

// Gt matches column > value.
func Gt(value any) Condition { return Condition{op: ">", value: value} }

// Patch holds column values to set.
type Patch map[string]any

// Record is anything the gateway can insert. Documents without an id get a
// random UUID.
type Record interface {
	DocumentID() string
	AssignID(id string)
}

func (g *Gateway) collection(ctx context.Context, name string, filter Filter) *gorm.DB {
	tx := g.db.WithContext(ctx).Table(name)

	keys := make([]string, 0, len(filter))
	for key := range filter {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		column := clause.Column{Name: key}
		switch value := filter[key].(type) {
		case Condition:
			if value.op == "<" {
				tx = tx.Where(clause.Lt{Column: column, Value: value.value})
			} else {
				tx = tx.Where(clause.Gt{Column: column, Value: value.value})
			}
		default:
			tx = tx.Where(clause.Eq{Column: column, Value: value})
		}
	}
	return tx
}

func (g *Gateway) Insert(ctx context.Context, collection string, doc Record) (string, error) {
	if !g.ready() {
		return "", ErrUnavailable
	}
	if doc.DocumentID() == "" {
		doc.AssignID(uuid.NewString())
	}

	if err := g.db.WithContext(ctx).Table(collection).Create(doc).Error; err != nil {
		if isDuplicate(err) {
			return "", fmt.Errorf("insert %s: %w", collection, ErrDuplicate)
		}
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	return doc.DocumentID(), nil
}

// FindOne loads the first matching document into dest.
func (g *Gateway) FindOne(ctx context.Context, collection string, filter Filter, dest any) error {
	if !g.ready() {
		return ErrUnavailable
	}

	err := g.collection(ctx, collection, filter).Order("created_at ASC").Order("id ASC").Take(dest).Error
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	default:
		return fmt.Errorf("find %s: %w", collection, err)
	}
}

// FindMany loads matching documents in insertion order. limit <= 0 means no
// limit.
func (g *Gateway) FindMany(ctx context.Context, collection string, filter Filter, limit int, dest any) error {
	if !g.ready() {
		return ErrUnavailable
	}

	tx := g.collection(ctx, collection, filter).Order("created_at ASC").Order("id ASC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if err := tx.Find(dest).Error; err != nil {
		return fmt.Errorf("find %s: %w", collection, err)
	}
	return nil
}

// UpdateOne sets patch on the document matching filter. applied is false when
// nothing matched, which callers use as a compare-and-swap miss.
func (g *Gateway) UpdateOne(ctx context.Context, collection string, filter Filter, patch Patch) (bool, error) {
	if !g.ready() {
		return false, ErrUnavailable
	}
	if len(filter) == 0 {
		return false, fmt.Errorf("update %s: empty filter", collection)
	}

	result := g.collection(ctx, collection, filter).Updates(map[string]any(patch))
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return false, fmt.Errorf("update %s: %w", collection, ErrDuplicate)
		}
		return false, fmt.Errorf("update %s: %w", collection, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// UpdateMany sets patch on every document matching filter and returns how
// many changed.
func (g *Gateway) UpdateMany(ctx context.Context, collection string, filter Filter, patch Patch) (int64, error) {
	if !g.ready() {
		return 0, ErrUnavailable
	}
	if len(filter) == 0 {
		return 0, fmt.Errorf("update %s: empty filter", collection)
	}

	result := g.collection(ctx, collection, filter).Updates(map[string]any(patch))
	if result.Error != nil {
		return 0, fmt.Errorf("update %s: %w", collection, result.Error)
	}
	return result.RowsAffected, nil
}

func (g *Gateway) Count(ctx context.Context, collection string, filter Filter) (int64, error) {
	if !g.ready() {
		return 0, ErrUnavailable
	}

	var count int64
	if err := g.collection(ctx, collection, filter).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return count, nil
}

// Distinct returns the distinct values of column among matching documents.
func (g *Gateway) Distinct(ctx context.Context, collection, column string, filter Filter) ([]string, error) {
	if !g.ready() {
		return nil, ErrUnavailable
	}

	var values []string
	if err := g.collection(ctx, collection, filter).Distinct().Order(column + " ASC").Pluck(column, &values).Error; err != nil {
		return nil, fmt.Errorf("distinct %s.%s: %w", collection, column, err)
	}
	return values, nil
}
