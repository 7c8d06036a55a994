package handlers

import (
	"context"
	"net/http"

	"inkpost/internal/identity"
	"inkpost/internal/models"
	"inkpost/internal/services"

	"github.com/gin-gonic/gin"
)

type CommentService interface {
	Create(ctx context.Context, actor identity.Principal, in services.CommentInput) (*models.Comment, error)
	GetByID(ctx context.Context, id string) (*models.CommentView, error)
	ListByAuthor(ctx context.Context, authorID string) ([]models.CommentView, error)
	Update(ctx context.Context, actor identity.Principal, id string, patch services.CommentPatch) (*models.Comment, error)
	Delete(ctx context.Context, actor identity.Principal, id string) (*models.Comment, error)
	Moderate(ctx context.Context, id string, status models.CommentStatus) (*models.Comment, error)
}

type CommentHandler struct {
	comments CommentService
}

func NewCommentHandler(comments CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

func (h *CommentHandler) Create(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var in services.CommentInput
	if !bindJSON(c, &in) {
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), actor, in)
	if err != nil {
		Fail(c, err)
		return
	}
	Respond(c, http.StatusCreated, "Comment created successfully!", comment)
}

func (h *CommentHandler) Get(c *gin.Context) {
	comment, err := h.comments.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Respond(c, http.StatusOK, "Comment retrieved successfully!", comment)
}

func (h *CommentHandler) ByAuthor(c *gin.Context) {
	comments, err := h.comments.ListByAuthor(c.Request.Context(), c.Param("authorId"))
	if err != nil {
		Fail(c, err)
		return
	}
	Respond(c, http.StatusOK, "Comments retrieved successfully!", comments)
}

func (h *CommentHandler) Update(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	var patch services.CommentPatch
	if !bindJSON(c, &patch) {
		return
	}

	comment, err := h.comments.Update(c.Request.Context(), actor, c.Param("id"), patch)
	if err != nil {
		Fail(c, err)
		return
	}
	Respond(c, http.StatusOK, "Comment updated successfully!", comment)
}

func (h *CommentHandler) Delete(c *gin.Context) {
	actor, ok := principal(c)
	if !ok {
		return
	}
	comment, err := h.comments.Delete(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Respond(c, http.StatusOK, "Comment deleted successfully!", comment)
}
