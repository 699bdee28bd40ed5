package constants

// ContextKeyUserID is the gin context key holding the authenticated user's ID.
const ContextKeyUserID = "user_id"

// ContextKeyUserRole is the gin context key holding the authenticated user's role.
const ContextKeyUserRole = "user_role"

// Pagination bounds
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8
