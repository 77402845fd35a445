package infra

import (
	"fmt"

	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate
// for the procurement tables and applies the SQL constraints AutoMigrate
// cannot express.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates/updates the schema. Also used by integration tests
// against a throwaway container database.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Proyecto{},
		&model.Equipo{},
		&model.Cotizacion{},
		&model.Lista{},
		&model.ListaItem{},
		&model.Pedido{},
		&model.PedidoItem{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate does not cover.
// The CHECK constraint backs the cantidad_pedida ≤ cantidad_requerida
// invariant at the store level, independent of the guarded UPDATE.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_lista_items_cantidad_pedida') THEN
		    ALTER TABLE lista_items
		      ADD CONSTRAINT chk_lista_items_cantidad_pedida
		      CHECK (cantidad_pedida >= 0 AND cantidad_pedida <= cantidad_requerida);
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_lista_items_cantidad_requerida') THEN
		    ALTER TABLE lista_items
		      ADD CONSTRAINT chk_lista_items_cantidad_requerida
		      CHECK (cantidad_requerida > 0);
		  END IF;
		END $$`,
	}
	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("schema patch: %w", err)
		}
	}
	return nil
}
