package services

import (
	"context"

	"inkpost/internal/models"

	"gorm.io/gorm"
)

type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{db: db}
}

type Stats struct {
	TotalPosts       int64            `json:"totalPosts"`
	PostsByStatus    map[string]int64 `json:"postsByStatus"`
	TotalComments    int64            `json:"totalComments"`
	CommentsByStatus map[string]int64 `json:"commentsByStatus"`
	TotalUsers       int64            `json:"totalUsers"`
	UsersByRole      map[string]int64 `json:"usersByRole"`
	TotalViews       int64            `json:"totalViews"`
}

type groupCount struct {
	Label string
	Count int64
}

// Snapshot computes every counter inside one read-only repeatable-read
// transaction so the numbers agree with each other.
func (s *StatsService) Snapshot(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		PostsByStatus:    zeroCounts(models.PostStatusDraft, models.PostStatusPublished, models.PostStatusArchived),
		CommentsByStatus: zeroCounts(models.CommentStatusPending, models.CommentStatusApproved, models.CommentStatusRejected),
		UsersByRole:      zeroCounts(models.RoleUser, models.RoleAdmin),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if stats.TotalPosts, err = countBy(tx, &models.Post{}, "status", stats.PostsByStatus); err != nil {
			return err
		}
		if stats.TotalComments, err = countBy(tx, &models.Comment{}, "status", stats.CommentsByStatus); err != nil {
			return err
		}
		if stats.TotalUsers, err = countBy(tx, &models.User{}, "role", stats.UsersByRole); err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Select("COALESCE(SUM(views), 0)").Scan(&stats.TotalViews).Error
	}, readSnapshot)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// countBy fills into with per-value row counts of column and returns the total.
func countBy(tx *gorm.DB, model any, column string, into map[string]int64) (int64, error) {
	var rows []groupCount
	if err := tx.Model(model).
		Select(column + " AS label, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error; err != nil {
		return 0, err
	}
	var total int64
	for _, r := range rows {
		into[r.Label] = r.Count
		total += r.Count
	}
	return total, nil
}

func zeroCounts[T ~string](keys ...T) map[string]int64 {
	m := make(map[string]int64, len(keys))
	for _, k := range keys {
		m[string(k)] = 0
	}
	return m
}
