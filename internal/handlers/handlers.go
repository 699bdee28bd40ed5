package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/hungbu/projectmanager/internal/errors"
)

// bindJSON binds the request body into req, answering the error response
// itself. Field-rule failures become a 422 with a field map; anything else
// (malformed JSON, wrong types) is a plain 400.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondBindError(c, err)
		return false
	}
	return true
}

func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		apierrors.ValidationFailed(c, apierrors.FieldErrors(err))
		return
	}
	apierrors.BadRequest(c, "Invalid request body")
}

// idParam parses the :id route parameter, answering a 400 on failure.
func idParam(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid ID")
		return 0, false
	}
	return id, true
}
