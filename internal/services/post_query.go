package services

import (
	"math"
	"strings"

	"inkpost/internal/apperr"
	"inkpost/internal/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultSortBy   = "createdAt"
)

// sortColumns is the allow-list of sortable fields.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"views":     "views",
}

// SortFields lists the accepted sortBy values.
func SortFields() []string {
	return []string{"createdAt", "updatedAt", "title", "views"}
}

// PostFilter holds the optional list filters. Zero values mean "no filter".
type PostFilter struct {
	Search     string
	Tags       []string
	IsFeatured *bool
	Status     models.PostStatus
	AuthorID   string
}

type PageRequest struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

type Predicate struct {
	SQL  string
	Args []any
}

// PostQueryPlan is a validated list query. The same predicates feed both the
// page query and the count query.
type PostQueryPlan struct {
	predicates []Predicate
	order      clause.OrderByColumn
	page       int
	limit      int
}

// BuildPostQuery validates the filter and paging input and assembles the plan.
func BuildPostQuery(f PostFilter, p PageRequest) (*PostQueryPlan, error) {
	plan := &PostQueryPlan{page: p.Page, limit: p.Limit}

	if plan.page == 0 {
		plan.page = DefaultPage
	}
	if plan.limit == 0 {
		plan.limit = DefaultPageSize
	}
	if plan.page < 1 {
		return nil, apperr.New(apperr.ValidationFailed, "page must be at least 1")
	}
	if plan.limit < 1 {
		return nil, apperr.New(apperr.ValidationFailed, "limit must be at least 1")
	}
	if plan.limit > MaxPageSize {
		plan.limit = MaxPageSize
	}

	sortBy := strings.TrimSpace(p.SortBy)
	if sortBy == "" {
		sortBy = DefaultSortBy
	}
	column, ok := sortColumns[sortBy]
	if !ok {
		return nil, apperr.Newf(apperr.ValidationFailed, "cannot sort by %q; allowed: %s", sortBy, strings.Join(SortFields(), ", "))
	}
	// Anything other than an explicit "asc" sorts descending.
	desc := !strings.EqualFold(strings.TrimSpace(p.SortOrder), "asc")
	plan.order = clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: desc}

	if search := strings.TrimSpace(f.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		plan.predicates = append(plan.predicates, Predicate{
			SQL:  "(title ILIKE ? OR content ILIKE ? OR ? = ANY(tags))",
			Args: []any{pattern, pattern, search},
		})
	}
	if tags := normalizeTags(f.Tags); len(tags) > 0 {
		plan.predicates = append(plan.predicates, Predicate{
			SQL:  "tags @> ?",
			Args: []any{pq.StringArray(tags)},
		})
	}
	if f.IsFeatured != nil {
		plan.predicates = append(plan.predicates, Predicate{SQL: "is_featured = ?", Args: []any{*f.IsFeatured}})
	}
	if f.Status != "" {
		if !f.Status.Valid() {
			return nil, apperr.Newf(apperr.ValidationFailed, "unknown post status %q", f.Status)
		}
		plan.predicates = append(plan.predicates, Predicate{SQL: "status = ?", Args: []any{f.Status}})
	}
	if authorID := strings.TrimSpace(f.AuthorID); authorID != "" {
		plan.predicates = append(plan.predicates, Predicate{SQL: "author_id = ?", Args: []any{authorID}})
	}

	return plan, nil
}

func (p *PostQueryPlan) Predicates() []Predicate { return p.predicates }
func (p *PostQueryPlan) Page() int               { return p.page }
func (p *PostQueryPlan) Limit() int              { return p.limit }
func (p *PostQueryPlan) Offset() int             { return (p.page - 1) * p.limit }

// Filter applies the AND-ed predicates. With no predicates it matches all posts.
func (p *PostQueryPlan) Filter(tx *gorm.DB) *gorm.DB {
	tx = tx.Model(&models.Post{})
	for _, pr := range p.predicates {
		tx = tx.Where(pr.SQL, pr.Args...)
	}
	return tx
}

// Paged applies the predicates plus ordering and the page window.
func (p *PostQueryPlan) Paged(tx *gorm.DB) *gorm.DB {
	return p.Filter(tx).
		Order(p.order).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: p.order.Desc}).
		Limit(p.limit).
		Offset(p.Offset())
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type PostPage struct {
	Data       []models.Post `json:"data"`
	Pagination Pagination    `json:"pagination"`
}

func TotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// normalizeTags trims, drops empties and removes duplicates, keeping order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
