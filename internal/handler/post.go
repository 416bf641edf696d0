package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/openpress/blogcms/internal/constants"
	"github.com/openpress/blogcms/internal/dto"
	apperrors "github.com/openpress/blogcms/internal/errors"
	"github.com/openpress/blogcms/internal/middleware"
	"github.com/openpress/blogcms/internal/service"
)

type PostHandler struct {
	posts *service.PostService
}

func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// Create is admin only; the author is always the authenticated user.
func (h *PostHandler) Create(c *gin.Context) {
	var req dto.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidInput(c)
		return
	}

	authorID, ok := middleware.CurrentUserID(c)
	if !ok {
		respondError(c, apperrors.ErrUnauthenticated)
		return
	}

	postID, err := h.posts.Create(c.Request.Context(), authorID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"postId":  postID,
	})
}

func (h *PostHandler) Update(c *gin.Context) {
	var req dto.UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidInput(c)
		return
	}

	if err := h.posts.Update(c.Request.Context(), &req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Post updated successfully"))
}

func (h *PostHandler) Delete(c *gin.Context) {
	var req dto.DeletePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidInput(c)
		return
	}

	if err := h.posts.Delete(c.Request.Context(), req.PostID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Post deleted successfully"))
}

// GetDetail serves a single post addressed by its public slug.
func (h *PostHandler) GetDetail(c *gin.Context) {
	slug := c.Param("slug")

	post, err := h.posts.GetBySlug(c.Request.Context(), slug)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post fetched successfully",
		"post":    post,
	})
}

// ListOffset serves the classic paged listing, optionally filtered to a
// category.
func (h *PostHandler) ListOffset(c *gin.Context) {
	params := constants.ParsePaginationParams(c)

	var categoryID uint
	if raw := c.Query("category"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondInvalidInput(c)
			return
		}
		categoryID = uint(id)
	}

	page, err := h.posts.ListPage(c.Request.Context(), params.Page, params.Limit, categoryID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// ListInfinite serves the cursor-based listing used by infinite scroll.
func (h *PostHandler) ListInfinite(c *gin.Context) {
	params := constants.ParseCursorParams(c)

	page, err := h.posts.ListCursor(c.Request.Context(), params.Cursor, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *PostHandler) Random(c *gin.Context) {
	posts, err := h.posts.Random(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Random posts fetched successfully",
		"posts":   posts,
	})
}
