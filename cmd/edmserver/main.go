// Command edmserver runs a small demo service exposing the derived entity
// data model of a campus management domain. It serves the $metadata document
// alongside plain JSON listings backed by a throwaway SQLite database.
package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	edm "github.com/anveden/go-edm"
	"github.com/google/uuid"
	servertiming "github.com/mitchellh/go-server-timing"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Address is a complex type shared by the entity types below.
type Address struct {
	edm.Complex `edm:"namespace=demo.campus"`

	Street  string
	City    string
	ZipCode string `edm:"maxlength=10"`
}

type Building struct {
	edm.Entity `edm:"namespace=demo.campus,set,defaultContainer"`

	ID      uuid.UUID `edm:"key" gorm:"primaryKey;type:text"`
	Name    string    `edm:"maxlength=100,nullable=false"`
	Address Address   `gorm:"embedded;embeddedPrefix:address_"`
	Rooms   []Room    `edm:"nav"`
}

type Room struct {
	edm.Entity `edm:"namespace=demo.campus,set"`

	ID         int64           `edm:"key" gorm:"primaryKey"`
	Name       string          `edm:"nullable=false"`
	Area       decimal.Decimal `edm:"precision=10,scale=2"`
	BuildingID uuid.UUID       `edm:"-" gorm:"type:text"`
	Building   *Building       `edm:"nav"`
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	provider, err := edm.NewProviderWithConfig(edm.Config{Logger: logger}, &Building{}, &Room{})
	if err != nil {
		logger.Error("failed to derive entity data model", "error", err)
		os.Exit(1)
	}

	db, err := gorm.Open(sqlite.Open("edmserver.db"), &gorm.Config{})
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(&Building{}, &Room{}); err != nil {
		logger.Error("failed to migrate schema", "error", err)
		os.Exit(1)
	}
	seed(db)

	mux := http.NewServeMux()
	mux.Handle("/$metadata", provider.MetadataHandler())
	mux.HandleFunc("/Buildings", listHandler[Building](db))
	mux.HandleFunc("/Rooms", listHandler[Room](db))

	logger.Info("edmserver listening", "addr", ":8080", "etag", provider.MetadataETag())
	if err := http.ListenAndServe(":8080", servertiming.Middleware(mux, nil)); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func seed(db *gorm.DB) {
	var count int64
	db.Model(&Building{}).Count(&count)
	if count > 0 {
		return
	}

	main := Building{
		ID:   uuid.New(),
		Name: "Main Hall",
		Address: Address{
			Street:  "1 Campus Way",
			City:    "Uppsala",
			ZipCode: "75310",
		},
	}
	db.Create(&main)
	db.Create(&Room{ID: 1, Name: "Auditorium", Area: decimal.NewFromFloat(412.5), BuildingID: main.ID})
	db.Create(&Room{ID: 2, Name: "Seminar A", Area: decimal.NewFromFloat(48.0), BuildingID: main.ID})
}

func listHandler[T any](db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rows []T
		if err := db.Find(&rows).Error; err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rows)
	}
}
