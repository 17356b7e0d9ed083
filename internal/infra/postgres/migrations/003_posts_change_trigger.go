package migrations

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// addPostsChangeTrigger makes every write to posts NOTIFY the channel with a
// JSON payload of the row id and the operation.
//
// The payload matches domain.ChangeEvent:
//
//	{"id": "42", "source": "UPDATE", "at": "2024-06-01T10:00:00.000000Z"}
//
// Statement-level bulk writes produce one notification per row; listeners
// coalesce them.
func addPostsChangeTrigger(channel string) *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "003_posts_change_trigger",
		Migrate: func(tx *gorm.DB) error {
			fn := fmt.Sprintf(`
				CREATE OR REPLACE FUNCTION posts_notify_change()
				RETURNS trigger AS $$
				DECLARE
					row_id TEXT;
				BEGIN
					IF TG_OP = 'DELETE' THEN
						row_id := OLD.id;
					ELSE
						row_id := NEW.id;
					END IF;
					PERFORM pg_notify(%s, json_build_object(
						'id', row_id,
						'source', TG_OP,
						'at', to_char(now() AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS.US"Z"')
					)::text);
					RETURN NULL;
				END
				$$ LANGUAGE plpgsql
			`, pq.QuoteLiteral(channel))
			if err := tx.Exec(fn).Error; err != nil {
				return err
			}

			if err := tx.Exec(`DROP TRIGGER IF EXISTS trg_posts_notify_change ON posts`).Error; err != nil {
				return err
			}

			return tx.Exec(`
				CREATE TRIGGER trg_posts_notify_change
				AFTER INSERT OR UPDATE OR DELETE
				ON posts
				FOR EACH ROW
				EXECUTE FUNCTION posts_notify_change()
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			_ = tx.Exec(`DROP TRIGGER IF EXISTS trg_posts_notify_change ON posts`).Error
			return tx.Exec(`DROP FUNCTION IF EXISTS posts_notify_change()`).Error
		},
	}
}
