package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func createUsersTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "002_create_users",
		Migrate: func(tx *gorm.DB) error {
			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS users (
					id UUID PRIMARY KEY,
					email VARCHAR(320) NOT NULL,
					password_hash TEXT NOT NULL,
					created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,

					CONSTRAINT uq_users_email UNIQUE (email)
				);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS users;").Error
		},
	}
}
