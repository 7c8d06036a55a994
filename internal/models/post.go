package models

import (
	"html/template"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type PostStatus string

const (
	PostStatusDraft     PostStatus = "DRAFT"
	PostStatusPublished PostStatus = "PUBLISHED"
	PostStatusArchived  PostStatus = "ARCHIVED"
)

var PostStatuses = []PostStatus{PostStatusDraft, PostStatusPublished, PostStatusArchived}

func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

type Post struct {
	ID         string         `gorm:"type:uuid;primaryKey" json:"id"`
	Title      string         `gorm:"not null" json:"title"`
	Content    string         `gorm:"type:text;not null" json:"content"`
	Tags       pq.StringArray `gorm:"type:text[];not null;default:'{}'" json:"tags"`
	IsFeatured bool           `gorm:"not null;default:false;index" json:"isFeatured"`
	Status     PostStatus     `gorm:"size:20;not null;default:'PUBLISHED';index" json:"status"`
	Views      int            `gorm:"not null;default:0" json:"views"`
	AuthorID   string         `gorm:"type:uuid;not null;index" json:"authorId"`
	Author     *User          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Comments   []Comment      `gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`

	// Filled at query time, not persisted.
	CommentCount int           `gorm:"-" json:"commentCount,omitempty"`
	ContentHTML  template.HTML `gorm:"-" json:"contentHtml,omitempty"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Tags == nil {
		p.Tags = pq.StringArray{}
	}
	return nil
}

// PostSummary is the minimal post shape attached to comment listings.
type PostSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Views *int   `json:"views,omitempty"`
}
