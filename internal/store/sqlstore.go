package store

import (
	"encoding/json"
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"larder/internal/models"
)

// documentRow holds one record of a collection as a JSON document in a
// text column, preserving collection order through Position.
type documentRow struct {
	ID         uint   `gorm:"primary_key"`
	Collection string `gorm:"index"`
	Position   int
	Document   string `gorm:"type:text"`
}

// TableName sets the table name for documentRow
func (documentRow) TableName() string {
	return "collection_documents"
}

// SQLStore persists collections as ordered JSON documents in SQLite.
// It honors the same contract as FileStore: whole-collection overwrite,
// create-on-miss load, single-writer assumption.
type SQLStore struct {
	db *gorm.DB
}

// NewSQLStore opens (or creates) the SQLite database at dbPath and
// migrates the document table.
func NewSQLStore(dbPath string) (*SQLStore, error) {
	db, err := gorm.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", models.ErrStorageUnavailable, err)
	}
	if err := db.AutoMigrate(&documentRow{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrating schema: %v", models.ErrStorageUnavailable, err)
	}
	return &SQLStore{db: db}, nil
}

// Close releases the underlying database handle
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Load reads a collection into out. A collection with no rows yields an
// empty sequence; nothing needs creating beyond the migrated table.
func (s *SQLStore) Load(collection string, out interface{}) error {
	var rows []documentRow
	err := s.db.Where("collection = ?", collection).Order("position").Find(&rows).Error
	if err != nil {
		return fmt.Errorf("%w: reading %s: %v", models.ErrStorageUnavailable, collection, err)
	}
	docs := make([]json.RawMessage, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, json.RawMessage(row.Document))
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("%w: decoding %s: %v", models.ErrStorageUnavailable, collection, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", models.ErrStorageUnavailable, collection, err)
	}
	return nil
}

// Save replaces the collection's rows inside a single transaction
func (s *SQLStore) Save(collection string, records interface{}) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("%w: encoding %s: %v", models.ErrStorageUnavailable, collection, err)
	}
	var docs []json.RawMessage
	if err := json.Unmarshal(data, &docs); err != nil {
		return fmt.Errorf("%w: encoding %s: %v", models.ErrStorageUnavailable, collection, err)
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("%w: writing %s: %v", models.ErrStorageUnavailable, collection, tx.Error)
	}
	if err := tx.Where("collection = ?", collection).Delete(&documentRow{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("%w: writing %s: %v", models.ErrStorageUnavailable, collection, err)
	}
	for i, doc := range docs {
		row := documentRow{Collection: collection, Position: i, Document: string(doc)}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("%w: writing %s: %v", models.ErrStorageUnavailable, collection, err)
		}
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("%w: writing %s: %v", models.ErrStorageUnavailable, collection, err)
	}
	return nil
}
