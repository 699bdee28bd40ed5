package middleware

import (
	"github.com/gin-gonic/gin"
	apierrors "github.com/hungbu/projectmanager/internal/errors"
	"github.com/hungbu/projectmanager/internal/models"
)

// RequireAdmin gates the user-administration route group. The role check
// happens once here, at the boundary, and compares the closed Role enum by
// value. Unlike project and task scoping, a failed check answers 403: the
// admin surface does not hide resource existence.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRole(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if role != models.RoleAdmin {
			apierrors.Forbidden(c, "Admin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}
