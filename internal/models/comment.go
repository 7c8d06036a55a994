package models

import (
	"html/template"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "PENDING"
	CommentStatusApproved CommentStatus = "APPROVED"
	CommentStatusRejected CommentStatus = "REJECT"
)

var CommentStatuses = []CommentStatus{CommentStatusPending, CommentStatusApproved, CommentStatusRejected}

func (s CommentStatus) Valid() bool {
	switch s {
	case CommentStatusPending, CommentStatusApproved, CommentStatusRejected:
		return true
	}
	return false
}

// Comment is a reply to a post, or to another comment when ParentID is set.
// Nesting depth is not limited on write.
type Comment struct {
	ID        string        `gorm:"type:uuid;primaryKey" json:"id"`
	Content   string        `gorm:"type:text;not null" json:"content"`
	AuthorID  string        `gorm:"type:uuid;not null;index" json:"authorId"`
	Author    *User         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	PostID    string        `gorm:"type:uuid;not null;index" json:"postId"`
	ParentID  *string       `gorm:"type:uuid;index" json:"parentId"` // nil for top-level comments
	Replies   []Comment     `gorm:"foreignKey:ParentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"replies,omitempty"`
	Status    CommentStatus `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`

	ContentHTML template.HTML `gorm:"-" json:"contentHtml,omitempty"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CommentView is a comment enriched with the post it belongs to.
type CommentView struct {
	Comment
	Post *PostSummary `json:"post"`
}
