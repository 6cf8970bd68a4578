package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/voiceingest/errors"
)

// RespondWithError writes err as the flat error body. Errors that are not
// an *errors.AppError become internal_error.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	c.JSON(appErr.HTTPStatus, appErr.ToResponse())
}

// RespondOK writes a 200 JSON body.
func RespondOK(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}
