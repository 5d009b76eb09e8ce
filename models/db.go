package models

import (
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB инициализирует подключение к базе данных.
// Если databaseURL задан, используется PostgreSQL, иначе SQLite-файл sqlitePath.
func InitDB(databaseURL, sqlitePath string) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	if databaseURL != "" {
		return gorm.Open(postgres.Open(databaseURL), cfg)
	}

	if sqlitePath == "" {
		sqlitePath = "foodbank.db"
	}
	return gorm.Open(sqlite.Open(sqlitePath), cfg)
}

// AutoMigrate создает или обновляет схему для всех моделей сервиса
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &InventoryItem{}, &Image{})
}
