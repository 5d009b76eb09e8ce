package main

import (
	"io"
	"log/slog"
	"time"

	"foodbank-backend/config"
	"foodbank-backend/models"
	"foodbank-backend/utils"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB создает тестовую базу данных в памяти
func setupTestDB() *gorm.DB {
	db, _ := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	// У каждого соединения ":memory:" своя база
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	models.AutoMigrate(db)
	return db
}

// testConfig конфигурация для тестового сервера
func testConfig(storageDir string) config.Config {
	var cfg config.Config
	cfg.App.Env = "test"
	cfg.HTTP.CORSOrigins = "*"
	cfg.Storage.Dir = storageDir
	cfg.Storage.PublicURL = "http://localhost:8080"
	cfg.Storage.URLTTL = time.Hour
	cfg.Inventory.ResolveConcurrency = 4
	cfg.Metrics.Enabled = true
	return cfg
}

// setupTestServer собирает приложение поверх тестовой базы
func setupTestServer(storageDir string) (*server, *gorm.DB) {
	db := setupTestDB()
	return newServer(testConfig(storageDir), db, discardLogger(), prometheus.NewRegistry()), db
}

// discardLogger логгер, который ничего не пишет
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestUser создает пользователя и возвращает его вместе с токеном
func createTestUser(db *gorm.DB, email, password, role string) (models.User, string) {
	hash, _ := utils.HashPassword(password)
	user := models.User{
		Name:         "Test " + role,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	db.Create(&user)

	token, _ := utils.GenerateJWT(user.ID, user.Email, user.Role)
	return user, token
}

// createTestItem добавляет продукт напрямую в базу
func createTestItem(db *gorm.DB, name string, expiresIn time.Duration, imageRef string) models.InventoryItem {
	exp := time.Now().Add(expiresIn)
	item := models.InventoryItem{
		Name:       name,
		Quantity:   10,
		Expiration: &exp,
		ImageRef:   imageRef,
	}
	db.Create(&item)
	return item
}
