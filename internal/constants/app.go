package constants

// User roles
const (
	RoleReader = "READER"
	RoleAuthor = "AUTHOR"
	RoleAdmin  = "ADMIN"
)

// Account status
const (
	StatusActive = "ACTIVE"
	StatusFreeze = "FREEZE"
)

// Session cookie names
const (
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
)

// Gin context keys set by the session middleware
const (
	CtxUserID    = "user_id"
	CtxUserEmail = "user_email"
)

// Pagination query parameters and bounds
const (
	QueryParamPage   = "page"
	QueryParamLimit  = "limit"
	QueryParamCursor = "cursor"

	DefaultPage  = "1"
	DefaultLimit = "5"

	MinPage  = 1
	MinLimit = 1
	MaxLimit = 50
)
