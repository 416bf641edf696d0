package constants

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Standard response field keys
const (
	ResponseFieldMessage = "message"
	ResponseFieldError   = "error"
	ResponseFieldData    = "data"
)

// PaginationParams holds parsed offset pagination input.
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// CursorParams holds parsed cursor ("infinite") pagination input. Cursor is
// the id of the last item the client already has; zero means start from the
// beginning.
type CursorParams struct {
	Cursor uint
	Limit  int
}

// ParsePaginationParams parses page/limit query parameters and clamps them
// to sane bounds.
func ParsePaginationParams(c *gin.Context) PaginationParams {
	pageStr := c.DefaultQuery(QueryParamPage, DefaultPage)
	limitStr := c.DefaultQuery(QueryParamLimit, DefaultLimit)

	page, _ := strconv.Atoi(pageStr)
	limit, _ := strconv.Atoi(limitStr)

	if page < MinPage {
		page = MinPage
	}
	if limit < MinLimit {
		limit = MinLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// ParseCursorParams parses cursor/limit query parameters.
func ParseCursorParams(c *gin.Context) CursorParams {
	cursorStr := c.DefaultQuery(QueryParamCursor, "0")
	limitStr := c.DefaultQuery(QueryParamLimit, DefaultLimit)

	cursor, _ := strconv.ParseUint(cursorStr, 10, 64)
	limit, _ := strconv.Atoi(limitStr)

	if limit < MinLimit {
		limit = MinLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return CursorParams{
		Cursor: uint(cursor),
		Limit:  limit,
	}
}

// BuildErrorResponse emits the {message, error: code} failure shape.
func BuildErrorResponse(message string, code string) map[string]any {
	return map[string]any{
		ResponseFieldMessage: message,
		ResponseFieldError:   code,
	}
}

func BuildSuccessResponse(message string) map[string]any {
	return map[string]any{
		ResponseFieldMessage: message,
	}
}
