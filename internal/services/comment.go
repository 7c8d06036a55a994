package services

import (
	"context"
	"errors"
	"strings"

	"inkpost/internal/apperr"
	"inkpost/internal/identity"
	"inkpost/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommentService struct {
	db *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{db: db}
}

type CommentInput struct {
	Content  string  `json:"content" binding:"required"`
	PostID   string  `json:"postId" binding:"required,uuid"`
	ParentID *string `json:"parentId" binding:"omitempty,uuid"`
}

// CommentPatch is what an author may change. Status goes through Moderate.
type CommentPatch struct {
	Content *string `json:"content"`
}

// Create stores a PENDING comment. The post must exist, and a parent, when
// given, must be a comment on the same post.
func (s *CommentService) Create(ctx context.Context, actor identity.Principal, in CommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apperr.New(apperr.ValidationFailed, "content is required")
	}

	comment := models.Comment{
		Content:  content,
		AuthorID: actor.ID,
		PostID:   in.PostID,
		Status:   models.CommentStatusPending,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var postCount int64
		if err := tx.Model(&models.Post{}).Where("id = ?", in.PostID).Count(&postCount).Error; err != nil {
			return err
		}
		if postCount == 0 {
			return apperr.New(apperr.NotFound, "post not found")
		}

		if in.ParentID != nil && *in.ParentID != "" {
			var parent models.Comment
			err := tx.Select("id", "post_id").First(&parent, "id = ?", *in.ParentID).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.NotFound, "parent comment not found")
			}
			if err != nil {
				return err
			}
			if parent.PostID != in.PostID {
				return apperr.New(apperr.NotFound, "parent comment not found on this post")
			}
			comment.ParentID = &parent.ID
		}

		return tx.Create(&comment).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// GetByID returns the comment with a summary of its post.
func (s *CommentService) GetByID(ctx context.Context, id string) (*models.CommentView, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.New(apperr.NotFound, "comment not found")
		}
		return nil, err
	}

	var post models.Post
	if err := s.db.WithContext(ctx).Select("id", "title", "views").First(&post, "id = ?", comment.PostID).Error; err != nil {
		return nil, err
	}
	views := post.Views
	return &models.CommentView{
		Comment: comment,
		Post:    &models.PostSummary{ID: post.ID, Title: post.Title, Views: &views},
	}, nil
}

// ListByAuthor returns the author's comments newest first, each with the id
// and title of its post.
func (s *CommentService) ListByAuthor(ctx context.Context, authorID string) ([]models.CommentView, error) {
	var comments []models.Comment
	if err := s.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&comments).Error; err != nil {
		return nil, err
	}

	views := make([]models.CommentView, 0, len(comments))
	if len(comments) == 0 {
		return views, nil
	}

	postIDs := make([]string, 0, len(comments))
	seen := make(map[string]bool, len(comments))
	for _, c := range comments {
		if !seen[c.PostID] {
			seen[c.PostID] = true
			postIDs = append(postIDs, c.PostID)
		}
	}

	var posts []models.PostSummary
	if err := s.db.WithContext(ctx).Model(&models.Post{}).
		Select("id", "title").
		Where("id IN ?", postIDs).
		Scan(&posts).Error; err != nil {
		return nil, err
	}
	postMap := make(map[string]models.PostSummary, len(posts))
	for _, p := range posts {
		postMap[p.ID] = p
	}

	for _, c := range comments {
		view := models.CommentView{Comment: c}
		if p, ok := postMap[c.PostID]; ok {
			view.Post = &models.PostSummary{ID: p.ID, Title: p.Title}
		}
		views = append(views, view)
	}
	return views, nil
}

// Update changes the content of a comment owned by the caller.
func (s *CommentService) Update(ctx context.Context, actor identity.Principal, id string, patch CommentPatch) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockOwned(tx, actor, id, &comment); err != nil {
			return err
		}
		if patch.Content == nil {
			return nil
		}
		content := strings.TrimSpace(*patch.Content)
		if content == "" {
			return apperr.New(apperr.ValidationFailed, "content cannot be empty")
		}
		return tx.Model(&comment).Update("content", content).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Delete removes a comment owned by the caller along with its replies.
func (s *CommentService) Delete(ctx context.Context, actor identity.Principal, id string) (*models.Comment, error) {
	var comment models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.lockOwned(tx, actor, id, &comment); err != nil {
			return err
		}
		return tx.Delete(&comment).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *CommentService) lockOwned(tx *gorm.DB, actor identity.Principal, id string, comment *models.Comment) error {
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.New(apperr.NotFound, "comment not found")
		}
		return err
	}
	if !actor.CanModify(comment.AuthorID) {
		return apperr.New(apperr.Forbidden, "you are not the author of this comment")
	}
	return nil
}

// Moderate moves a comment to status. Setting the status it already has is
// rejected and nothing is written.
func (s *CommentService) Moderate(ctx context.Context, id string, status models.CommentStatus) (*models.Comment, error) {
	if !status.Valid() {
		return nil, apperr.Newf(apperr.ValidationFailed, "unknown comment status %q", status)
	}

	var comment models.Comment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&comment, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.NotFound, "comment not found")
			}
			return err
		}
		if comment.Status == status {
			return apperr.Newf(apperr.NoOpTransition, "%s is already up to date!", status)
		}
		return tx.Model(&comment).Update("status", status).Error
	})
	if err != nil {
		return nil, err
	}
	return &comment, nil
}
