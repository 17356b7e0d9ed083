package postgres

import (
	"time"

	"social-insights-service/internal/domain"
)

// PostModel is the GORM model for the posts table. Every column but the id is
// nullable; nulls are resolved by domain normalization on read.
type PostModel struct {
	ID          string     `gorm:"type:text;primaryKey"`
	Title       *string    `gorm:"type:text"`
	Platform    *string    `gorm:"type:varchar(50);index"`
	ContentType *string    `gorm:"type:varchar(50)"`
	Likes       *int64     `gorm:"type:bigint"`
	Comments    *int64     `gorm:"type:bigint"`
	Shares      *int64     `gorm:"type:bigint"`
	CreatedAt   *time.Time `gorm:"type:timestamptz;index;autoCreateTime:false"`
	UpdatedAt   time.Time  `gorm:"type:timestamptz;autoUpdateTime"`
}

// TableName returns the table name for PostModel.
func (PostModel) TableName() string {
	return "posts"
}

// ToDomain converts a row into a normalized domain.Post.
func (m *PostModel) ToDomain() domain.Post {
	p := domain.Post{
		ID:          m.ID,
		Title:       deref(m.Title),
		Platform:    deref(m.Platform),
		ContentType: deref(m.ContentType),
		Likes:       derefInt(m.Likes),
		Comments:    derefInt(m.Comments),
		Shares:      derefInt(m.Shares),
	}
	if m.CreatedAt != nil {
		p.CreatedAt = m.CreatedAt.UTC()
	}

	return p.Normalize()
}

// PostFromDomain creates a PostModel from domain.Post. Blank text and the
// zero time are stored as NULL.
func PostFromDomain(p domain.Post) *PostModel {
	likes, comments, shares := p.Likes, p.Comments, p.Shares
	m := &PostModel{
		ID:          p.ID,
		Title:       nullable(p.Title),
		Platform:    nullable(p.Platform),
		ContentType: nullable(p.ContentType),
		Likes:       &likes,
		Comments:    &comments,
		Shares:      &shares,
	}
	if p.HasValidDate() {
		t := p.CreatedAt.UTC()
		m.CreatedAt = &t
	}

	return m
}

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID           string    `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"type:varchar(320);not null;uniqueIndex"`
	PasswordHash string    `gorm:"type:text;not null"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for UserModel.
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts UserModel to domain.User.
func (m *UserModel) ToDomain() *domain.User {
	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
}

// UserFromDomain creates a UserModel from domain.User.
func UserFromDomain(u *domain.User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
