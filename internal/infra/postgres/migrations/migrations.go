// Package migrations provides database migrations using gormigrate.
package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// DefaultChannel is the NOTIFY channel written to by the posts trigger.
const DefaultChannel = "posts_changed"

// Migrations returns all database migrations. channel names the NOTIFY
// channel the posts trigger publishes on.
func Migrations(channel string) []*gormigrate.Migration {
	if channel == "" {
		channel = DefaultChannel
	}

	return []*gormigrate.Migration{
		createPostsTable(),
		createUsersTable(),
		addPostsChangeTrigger(channel),
	}
}

// Run executes all pending migrations.
func Run(db *gorm.DB, channel string) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, Migrations(channel))
	return m.Migrate()
}

// Rollback rolls back the last migration.
func Rollback(db *gorm.DB, channel string) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, Migrations(channel))
	return m.RollbackLast()
}
