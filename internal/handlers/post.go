package handlers

import (
	"context"
	"net/http"

	"inkpost/internal/identity"
	"inkpost/internal/models"
	"inkpost/internal/services"

	"github.com/gin-gonic/gin"
)

type PostService interface {
	Create(ctx context.Context, actor identity.Principal, in services.PostInput) (*models.Post, error)
	Update(ctx context.Context, actor identity.Principal, id string, patch services.PostPatch) (*models.Post, error)
	Delete(ctx context.Context, actor identity.Principal, id string) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context, f services.PostFilter, p services.PageRequest) (*services.PostPage, error)
	ListMine(ctx context.Context, actor identity.Principal) ([]models.Post, error)
}

type StatsService interface {
	Snapshot(ctx context.Context) (*services.Stats, error)
}

type PostHandler struct {
	posts PostService
	stats StatsService
}

func NewPostHandler(posts PostService, stats StatsService) *PostHandler {
	return &PostHandler{posts: posts, stats: stats}
}

func (h *PostHandler) Create(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var in services.PostInput
	if !bindJSON(c, &in) {
		return
	}

	post, err := h.posts.Create(c.Request.Context(), actor, in)
	if err != nil {
		Fail(c, err)
		return
	}
	Respond(c, http.StatusCreated, "Post created successfully!", post)
}

// List handles GET /api/posts.
func (h *PostHandler) List(c *gin.Context) {
	filter, page, err := parseListQuery(c)
	if err != nil {
		Fail(c, err)
		return
	}

	result, err := h.posts.List(c.Request.Context(), filter, page)
	if err != nil {
		Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":       result.Data,
		"pagination": result.Pagination,
		"message":    "Posts retrieved successfully!",
	})
}

func (h *PostHandler) MyPosts(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	posts, err := h.posts.ListMine(c.Request.Context(), actor)
	if err != nil {
		Fail(c, err)
		return
	}
	Respond(c, http.StatusOK, "Your posts retrieved successfully!", posts)
}

func (h *PostHandler) Get(c *gin.Context) {
	post, err := h.posts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Respond(c, http.StatusOK, "Post retrieved successfully!", post)
}

func (h *PostHandler) Update(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var patch services.PostPatch
	if !bindJSON(c, &patch) {
		return
	}

	post, err := h.posts.Update(c.Request.Context(), actor, c.Param("id"), patch)
	if err != nil {
		Fail(c, err)
		return
	}
	Respond(c, http.StatusOK, "Post updated successfully!", post)
}

func (h *PostHandler) Delete(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	post, err := h.posts.Delete(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Respond(c, http.StatusOK, "Post deleted successfully!", post)
}

func (h *PostHandler) Stats(c *gin.Context) {
	stats, err := h.stats.Snapshot(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	Respond(c, http.StatusOK, "Stats retrieved successfully!", stats)
}
