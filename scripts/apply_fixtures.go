package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"time"

	"foodbank-backend/config"
	"foodbank-backend/models"
	"foodbank-backend/services"
	"foodbank-backend/utils"
)

// fixture продукт для демонстрационной базы; срок задан в днях от текущей даты
type fixture struct {
	Name     string
	Quantity int
	DaysLeft int
	Barcode  string
	Color    color.RGBA
}

var fixtures = []fixture{
	{Name: "Milk", Quantity: 24, DaysLeft: 6, Barcode: "4607025392148", Color: color.RGBA{240, 240, 240, 255}},
	{Name: "Bread", Quantity: 15, DaysLeft: 3, Color: color.RGBA{210, 160, 90, 255}},
	{Name: "Yogurt", Quantity: 30, DaysLeft: 20, Color: color.RGBA{250, 220, 230, 255}},
	{Name: "Oat Milk", Quantity: 12, DaysLeft: 45, Barcode: "7394376616037", Color: color.RGBA{230, 210, 170, 255}},
	{Name: "Pasta", Quantity: 40, DaysLeft: 60, Color: color.RGBA{245, 215, 110, 255}},
	{Name: "Canned Beans", Quantity: 48, DaysLeft: 200, Barcode: "0039400016144", Color: color.RGBA{150, 60, 50, 255}},
	{Name: "Rice", Quantity: 25, DaysLeft: 365, Color: color.RGBA{255, 255, 250, 255}},
}

func main() {
	log := utils.NewLogger("dev")

	cfg, err := config.Load(os.Getenv("FOODBANK_CONFIG"))
	if err != nil {
		log.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	db, err := models.InitDB(cfg.Database.URL, cfg.Database.SQLitePath)
	if err != nil {
		log.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	if err := models.AutoMigrate(db); err != nil {
		log.Error("migration failed", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()
	blobs := services.NewBlobStore(cfg.Storage.Dir, cfg.Storage.PublicURL, cfg.Auth.JWTSecret, cfg.Storage.URLTTL)
	inventory := services.NewInventoryService(db, nil, log)

	for _, f := range fixtures {
		ref, size, err := blobs.Put(ctx, "fixture.png", bytes.NewReader(placeholderPNG(f.Color)))
		if err != nil {
			log.Error("failed to store image", "name", f.Name, "err", err)
			os.Exit(1)
		}
		if err := db.Create(&models.Image{Ref: ref, MimeType: "image/png", Size: size}).Error; err != nil {
			log.Error("failed to save image record", "name", f.Name, "err", err)
			os.Exit(1)
		}

		quantity := f.Quantity
		expiration := time.Now().AddDate(0, 0, f.DaysLeft)
		item, err := inventory.Create(ctx, 0, services.CreateProductInput{
			Name:       f.Name,
			Quantity:   &quantity,
			Expiration: &expiration,
			ImageRef:   ref,
			Barcode:    f.Barcode,
		})
		if err != nil {
			log.Error("failed to create item", "name", f.Name, "err", err)
			os.Exit(1)
		}
		log.Info("fixture added", "id", item.ID, "name", item.Name, "days_left", f.DaysLeft)
	}

	log.Info("fixtures applied", "count", len(fixtures))
}

// placeholderPNG однотонная картинка 64x64
func placeholderPNG(c color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	_ = png.Encode(&buf, img)
	return buf.Bytes()
}
