package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/desklino/desklino-backend/pkg/config"
	"github.com/desklino/desklino-backend/pkg/db"
	"github.com/desklino/desklino-backend/pkg/db/models"
	"github.com/desklino/desklino-backend/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func main() {
	ctx := context.Background()
	// bootstrap logger early (then re-init after config load)
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	seed := flag.Bool("seed", false, "load example attendants and catalog after migrating")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx = logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"seed": *seed,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	logg.Info(ctx, "migrate ready")

	if err := migrateSchema(dbClient.DB()); err != nil {
		logg.Error(ctx, "schema migration failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "schema migrated")

	if *seed {
		if err := seedData(dbClient.DB()); err != nil {
			logg.Error(ctx, "seeding failed", err)
			os.Exit(1)
		}
		logg.Info(ctx, "seed data loaded")
	}
}

func migrateSchema(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.Client{},
		&models.IndividualDocument{},
		&models.OrganizationDocument{},
		&models.Phone{},
		&models.Address{},
		&models.Product{},
		&models.Attendant{},
		&models.Attendance{},
		&models.Order{},
		&models.OrderItem{},
	)
}

// seedData loads the demo attendants and catalog. It is a no-op when the
// target tables already have rows.
func seedData(conn *gorm.DB) error {
	var attendants int64
	if err := conn.Model(&models.Attendant{}).Count(&attendants).Error; err != nil {
		return err
	}
	if attendants == 0 {
		rows := []models.Attendant{
			{Login: "admin.user", Name: "Administrador", PasswordHash: "unset", Role: "admin"},
			{Login: "atendente.01", Name: "João Silva", PasswordHash: "unset", Role: "attendant"},
			{Login: "atendente.02", Name: "Maria Souza", PasswordHash: "unset", Role: "attendant"},
		}
		if err := conn.Create(&rows).Error; err != nil {
			return err
		}
	}

	var products int64
	if err := conn.Model(&models.Product{}).Count(&products).Error; err != nil {
		return err
	}
	if products == 0 {
		gas := "Gás de cozinha 13kg"
		agua := "Galão retornável 20L"
		rows := []models.Product{
			{Name: "Botijão P13", Description: &gas, Price: decimal.RequireFromString("95.00"), StockQuantity: 50, Available: true},
			{Name: "Água 20L", Description: &agua, Price: decimal.RequireFromString("12.00"), StockQuantity: 120, Available: true},
			{Name: "Botijão P45", Price: decimal.RequireFromString("320.00"), StockQuantity: 10, Available: true},
			{Name: "Garrafa Água 1L", Price: decimal.RequireFromString("6.00"), StockQuantity: 0, Available: false},
		}
		if err := conn.Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
