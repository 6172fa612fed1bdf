package models

import (
	"time"
)

const (
	RoleUser     = "USER"
	RoleReporter = "REPORTER"
	RoleEditor   = "EDITOR"
	RoleAdmin    = "ADMIN"
)

const (
	StatusDraft     = "DRAFT"
	StatusPublished = "PUBLISHED"
	StatusArchived  = "ARCHIVED"
)

func ValidRole(r string) bool {
	return r == RoleUser || r == RoleReporter || r == RoleEditor || r == RoleAdmin
}

func ValidStatus(s string) bool {
	return s == StatusDraft || s == StatusPublished || s == StatusArchived
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"not null"                 json:"name"`
	Email        string    `gorm:"unique;not null"          json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null;default:USER"    json:"role"`
	IsActive     bool      `gorm:"not null;default:true"    json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RefreshToken is the ledger of issued refresh tokens. Only the jti is
// persisted, never the signed token itself.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"                 json:"id"`
	JTI       string    `gorm:"column:jti;unique;not null" json:"jti"`
	UserID    uint      `gorm:"index;not null"             json:"user_id"`
	ExpiresAt time.Time `gorm:"not null"                   json:"expires_at"`
	Revoked   bool      `gorm:"default:false"              json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string     `gorm:"not null"                 json:"name"`
	Slug        string     `gorm:"unique;not null"          json:"slug"`
	Description string     `json:"description"`
	IsActive    bool       `gorm:"not null;default:true"    json:"is_active"`
	ParentID    *uint      `gorm:"index"                    json:"parent_id"`
	Parent      *Category  `gorm:"foreignKey:ParentID"      json:"parent,omitempty"`
	Children    []Category `gorm:"foreignKey:ParentID"      json:"children,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Article struct {
	ID              uint           `gorm:"primaryKey;autoIncrement"     json:"id"`
	Title           string         `gorm:"not null"                     json:"title"`
	Slug            string         `gorm:"unique;not null"              json:"slug"`
	Content         string         `gorm:"not null"                     json:"content"`
	CoverImage      string         `json:"cover_image"`
	Excerpt         string         `json:"excerpt"`
	MetaTitle       string         `json:"meta_title"`
	MetaDescription string         `json:"meta_description"`
	Tags            []string       `gorm:"serializer:json"              json:"tags"`
	Status          string         `gorm:"not null;default:DRAFT;index" json:"status"`
	AuthorID        uint           `gorm:"index;not null"               json:"author_id"`
	Author          *User          `gorm:"foreignKey:AuthorID"          json:"author,omitempty"`
	CategoryID      *uint          `gorm:"index"                        json:"category_id"`
	Category        *Category      `gorm:"foreignKey:CategoryID"        json:"category,omitempty"`
	Videos          []ArticleVideo `gorm:"foreignKey:ArticleID"         json:"videos,omitempty"`
	DeletedAt       *time.Time     `gorm:"index"                        json:"deleted_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

type ArticleVideo struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ArticleID   uint   `gorm:"index;not null"           json:"article_id"`
	Type        string `gorm:"not null"                 json:"type"`
	URL         string `gorm:"not null"                 json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Comment struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ArticleID uint      `gorm:"index;not null"           json:"article_id"`
	Article   *Article  `gorm:"foreignKey:ArticleID"     json:"article,omitempty"`
	UserID    uint      `gorm:"index;not null"           json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID"        json:"user,omitempty"`
	Content   string    `gorm:"not null"                 json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Bookmark struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"                       json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_bookmark_user_article" json:"user_id"`
	ArticleID uint      `gorm:"not null;uniqueIndex:idx_bookmark_user_article" json:"article_id"`
	Article   *Article  `gorm:"foreignKey:ArticleID"                           json:"article,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewsItem caches articles pulled from external news providers, keyed by the
// provider's own article id so repeated fetches upsert in place.
type NewsItem struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null"   json:"title"`
	PhotoURL    string    `json:"photo_url"`
	Link        string    `json:"link"`
	Description string    `json:"description"`
	Type        string    `gorm:"index"      json:"type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
