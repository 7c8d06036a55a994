package handlers

import (
	"net/http"

	"inkpost/internal/models"
	"inkpost/internal/services"

	"github.com/gin-gonic/gin"
)

// AdminHandler serves routes already restricted to the admin role by the router.
type AdminHandler struct {
	users    UserService
	comments CommentService
}

func NewAdminHandler(users UserService, comments CommentService) *AdminHandler {
	return &AdminHandler{users: users, comments: comments}
}

// UpdateUser changes role, status or the verified flag of an account.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var patch services.UserPatch
	if !bindJSON(c, &patch) {
		return
	}

	user, err := h.users.AdminUpdate(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		Fail(c, err)
		return
	}
	Respond(c, http.StatusOK, "User updated successfully!", user)
}

type moderateRequest struct {
	Status models.CommentStatus `json:"status" binding:"required"`
}

func (h *AdminHandler) ModerateComment(c *gin.Context) {
	var req moderateRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.comments.Moderate(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		Fail(c, err)
		return
	}
	Respond(c, http.StatusOK, "Comment moderated successfully!", comment)
}
