package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"foodbank-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Поля документов инвентаря
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldQuantity    = "quantity"
	FieldExpiration  = "expiration"
	FieldImageRef    = "imageRef"
	FieldBarcode     = "barcode"
)

var (
	ErrUnknownCollection = errors.New("unknown collection")
	ErrUnsupportedField  = errors.New("field does not support range queries")
)

// Document пара (id, поля), возвращаемая запросом
type Document struct {
	ID     string
	Fields map[string]any
}

// Query выборка документов коллекции, у которых Field > After, по возрастанию Field
type Query struct {
	Collection string
	Field      string
	After      time.Time
}

// DocumentQuerier сервис запросов к хранилищу документов
type DocumentQuerier interface {
	Query(ctx context.Context, q Query) ([]Document, error)
}

// rangeColumns поля, по которым разрешены диапазонные запросы, и их колонки
var rangeColumns = map[string]map[string]string{
	models.InventoryCollection: {
		FieldExpiration: "expiration",
		"createdAt":     "created_at",
		"updatedAt":     "updated_at",
	},
}

// DocumentStore хранилище документов поверх gorm
type DocumentStore struct {
	db *gorm.DB
}

// NewDocumentStore создает хранилище документов
func NewDocumentStore(db *gorm.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Query выполняет запрос к коллекции
func (s *DocumentStore) Query(ctx context.Context, q Query) ([]Document, error) {
	columns, ok := rangeColumns[q.Collection]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, q.Collection)
	}
	column, ok := columns[q.Field]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnsupportedField, q.Collection, q.Field)
	}

	var rows []models.InventoryItem
	err := s.db.WithContext(ctx).
		Where(clause.Gt{Column: clause.Column{Name: column}, Value: q.After.UTC()}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(rows))
	for i := range rows {
		docs = append(docs, inventoryDocument(&rows[i]))
	}
	return docs, nil
}

// inventoryDocument пустые значения в документ не попадают
func inventoryDocument(item *models.InventoryItem) Document {
	fields := map[string]any{
		FieldName:     item.Name,
		FieldQuantity: item.Quantity,
	}
	if item.Description != "" {
		fields[FieldDescription] = item.Description
	}
	if item.Expiration != nil {
		fields[FieldExpiration] = *item.Expiration
	}
	if item.ImageRef != "" {
		fields[FieldImageRef] = item.ImageRef
	}
	if item.Barcode != "" {
		fields[FieldBarcode] = item.Barcode
	}
	return Document{ID: item.ID, Fields: fields}
}
