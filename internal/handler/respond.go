package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/openpress/blogcms/internal/constants"
	apperrors "github.com/openpress/blogcms/internal/errors"
)

// respondError writes the {message, error: code} failure shape with the
// status carried by the domain error.
func respondError(c *gin.Context, err error) {
	c.JSON(apperrors.ToHTTPStatus(err),
		constants.BuildErrorResponse(
			apperrors.GetErrorMessage(err),
			apperrors.ToErrorCode(err),
		))
}

func respondInvalidInput(c *gin.Context) {
	respondError(c, apperrors.ErrInvalidInput)
}
