package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"inkpost/internal/apperr"
	"inkpost/internal/identity"
	"inkpost/internal/models"
	"inkpost/internal/utils"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// readSnapshot is used wherever several reads must agree with each other.
var readSnapshot = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

type PostService struct {
	db *gorm.DB
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{db: db}
}

type PostInput struct {
	Title      string            `json:"title" binding:"required,max=300"`
	Content    string            `json:"content" binding:"required"`
	Tags       []string          `json:"tags"`
	IsFeatured bool              `json:"isFeatured"`
	Status     models.PostStatus `json:"status"`
}

// PostPatch carries only the fields a client sent. authorId and views cannot
// be patched.
type PostPatch struct {
	Title      *string            `json:"title" binding:"omitempty,max=300"`
	Content    *string            `json:"content"`
	Tags       *[]string          `json:"tags"`
	IsFeatured *bool              `json:"isFeatured"`
	Status     *models.PostStatus `json:"status"`
}

// Create stores a post owned by the caller. Any author in the payload is
// ignored, and isFeatured is only honoured for admins.
func (s *PostService) Create(ctx context.Context, actor identity.Principal, in PostInput) (*models.Post, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.New(apperr.ValidationFailed, "title is required")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, apperr.New(apperr.ValidationFailed, "content is required")
	}
	status := in.Status
	if status == "" {
		status = models.PostStatusPublished
	}
	if !status.Valid() {
		return nil, apperr.Newf(apperr.ValidationFailed, "unknown post status %q", status)
	}

	post := models.Post{
		Title:      title,
		Content:    in.Content,
		Tags:       pq.StringArray(normalizeTags(in.Tags)),
		IsFeatured: in.IsFeatured && actor.IsAdmin(),
		Status:     status,
		AuthorID:   actor.ID,
	}
	if err := s.db.WithContext(ctx).Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Update applies patch to the post. Only the author or an admin may update;
// isFeatured is silently dropped for non-admins.
func (s *PostService) Update(ctx context.Context, actor identity.Principal, postID string, patch PostPatch) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, "id = ?", postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.NotFound, "post not found")
			}
			return err
		}
		if !actor.CanModify(post.AuthorID) {
			return apperr.New(apperr.Forbidden, "you are not the owner of this post")
		}
		if !actor.IsAdmin() {
			patch.IsFeatured = nil
		}

		updates, err := patch.columns()
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&post).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&post, "id = ?", postID).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (p PostPatch) columns() (map[string]any, error) {
	updates := map[string]any{}
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return nil, apperr.New(apperr.ValidationFailed, "title cannot be empty")
		}
		updates["title"] = title
	}
	if p.Content != nil {
		if strings.TrimSpace(*p.Content) == "" {
			return nil, apperr.New(apperr.ValidationFailed, "content cannot be empty")
		}
		updates["content"] = *p.Content
	}
	if p.Tags != nil {
		updates["tags"] = pq.StringArray(normalizeTags(*p.Tags))
	}
	if p.IsFeatured != nil {
		updates["is_featured"] = *p.IsFeatured
	}
	if p.Status != nil {
		if !p.Status.Valid() {
			return nil, apperr.Newf(apperr.ValidationFailed, "unknown post status %q", *p.Status)
		}
		updates["status"] = *p.Status
	}
	return updates, nil
}

// Delete removes the post; its comments go with it through the foreign key cascade.
func (s *PostService) Delete(ctx context.Context, actor identity.Principal, postID string) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&post, "id = ?", postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.New(apperr.NotFound, "post not found")
			}
			return err
		}
		if !actor.CanModify(post.AuthorID) {
			return apperr.New(apperr.Forbidden, "you are not the owner of this post")
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetByID counts a view and returns the post with its approved comment tree:
// top-level comments newest first, then two levels of replies oldest first.
// The increment and the read share one transaction.
func (s *PostService) GetByID(ctx context.Context, postID string) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).Where("id = ?", postID).
			UpdateColumn("views", gorm.Expr("views + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.New(apperr.NotFound, "post not found")
		}

		return tx.
			Preload("Comments", func(db *gorm.DB) *gorm.DB {
				return db.Where("parent_id IS NULL AND status = ?", models.CommentStatusApproved).
					Order("created_at DESC")
			}).
			Preload("Comments.Replies", approvedOldestFirst).
			Preload("Comments.Replies.Replies", approvedOldestFirst).
			First(&post, "id = ?", postID).Error
	})
	if err != nil {
		return nil, err
	}

	post.ContentHTML = utils.RenderMarkdown(post.Content)
	renderComments(post.Comments)
	post.CommentCount = countComments(post.Comments)
	return &post, nil
}

func approvedOldestFirst(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", models.CommentStatusApproved).Order("created_at ASC")
}

func renderComments(comments []models.Comment) {
	for i := range comments {
		comments[i].ContentHTML = utils.RenderMarkdown(comments[i].Content)
		renderComments(comments[i].Replies)
	}
}

func countComments(comments []models.Comment) int {
	n := len(comments)
	for _, c := range comments {
		n += countComments(c.Replies)
	}
	return n
}

// List returns one page of posts matching the filter plus the total match count.
// Count and page are read in the same snapshot.
func (s *PostService) List(ctx context.Context, f PostFilter, p PageRequest) (*PostPage, error) {
	plan, err := BuildPostQuery(f, p)
	if err != nil {
		return nil, err
	}

	result := &PostPage{Data: []models.Post{}}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := plan.Paged(tx).Find(&result.Data).Error; err != nil {
			return err
		}
		if err := plan.Filter(tx).Count(&result.Pagination.Total).Error; err != nil {
			return err
		}
		return fillCommentCounts(tx, result.Data)
	}, readSnapshot)
	if err != nil {
		return nil, err
	}

	result.Pagination.Page = plan.Page()
	result.Pagination.Limit = plan.Limit()
	result.Pagination.TotalPages = TotalPages(result.Pagination.Total, plan.Limit())
	return result, nil
}

// ListMine returns the caller's posts, newest first.
func (s *PostService) ListMine(ctx context.Context, actor identity.Principal) ([]models.Post, error) {
	posts := []models.Post{}
	tx := s.db.WithContext(ctx)
	if err := tx.Where("author_id = ?", actor.ID).Order("created_at DESC").Find(&posts).Error; err != nil {
		return nil, err
	}
	if err := fillCommentCounts(tx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// fillCommentCounts sets CommentCount on each post with one grouped query.
func fillCommentCounts(tx *gorm.DB, posts []models.Post) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]string, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countResult struct {
		PostID string
		Count  int
	}
	var results []countResult
	if err := tx.Model(&models.Comment{}).
		Select("post_id, COUNT(*) as count").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&results).Error; err != nil {
		return err
	}

	countMap := make(map[string]int, len(results))
	for _, r := range results {
		countMap[r.PostID] = r.Count
	}
	for i := range posts {
		posts[i].CommentCount = countMap[posts[i].ID]
	}
	return nil
}
