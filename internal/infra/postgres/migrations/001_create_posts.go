package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// createPostsTable creates the posts table. Counters, platform, content type
// and timestamp stay nullable; readers normalize missing values.
func createPostsTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "001_create_posts",
		Migrate: func(tx *gorm.DB) error {
			err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS posts (
					id TEXT PRIMARY KEY,
					title TEXT,
					platform VARCHAR(50),
					content_type VARCHAR(50),

					likes BIGINT,
					comments BIGINT,
					shares BIGINT,

					created_at TIMESTAMPTZ,
					updated_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
				);
			`).Error
			if err != nil {
				return err
			}

			indexes := []string{
				"CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at DESC);",
				"CREATE INDEX IF NOT EXISTS idx_posts_platform ON posts(platform);",
			}
			for _, idx := range indexes {
				if err := tx.Exec(idx).Error; err != nil {
					return err
				}
			}

			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec("DROP TABLE IF EXISTS posts;").Error
		},
	}
}
