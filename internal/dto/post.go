package dto

type SectionInput struct {
	ID       uint   `json:"id"`
	Content  string `json:"content" binding:"required"`
	ImageURL string `json:"imageUrl"`
	ImageKey string `json:"imageKey"`
}

type CreatePostRequest struct {
	Title       string         `json:"title" binding:"required"`
	Type        string         `json:"type"`
	MainContent string         `json:"mainContent"`
	CoverURL    string         `json:"coverUrl"`
	CoverKey    string         `json:"coverKey"`
	Sections    []SectionInput `json:"sections" binding:"required,min=1,dive"`
	Categories  []uint         `json:"categories"`
	Tags        []string       `json:"tags"`
}

type UpdatePostRequest struct {
	PostID      uint           `json:"postId" binding:"required,min=1"`
	Title       string         `json:"title" binding:"required"`
	Type        string         `json:"type"`
	MainContent string         `json:"mainContent"`
	CoverURL    string         `json:"coverUrl"`
	CoverKey    string         `json:"coverKey"`
	Sections    []SectionInput `json:"sections" binding:"required,min=1,dive"`
	Categories  []uint         `json:"categories"`
	Tags        []string       `json:"tags"`
}

type DeletePostRequest struct {
	PostID uint `json:"postId" binding:"required,min=1"`
}

type SectionResponse struct {
	ID       uint   `json:"id"`
	Content  string `json:"content"`
	ImageURL string `json:"imageUrl"`
	Order    int    `json:"order"`
}

type PostDetailResponse struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	Slug        string            `json:"slug"`
	MainContent string            `json:"mainContent"`
	CoverURL    string            `json:"coverUrl"`
	Name        string            `json:"name"`
	Author      string            `json:"author"`
	Sections    []SectionResponse `json:"sections"`
	Categories  []string          `json:"categories"`
	Tags        []string          `json:"tags"`
	UpdatedAt   string            `json:"updatedAt"`
}

type PostSummaryResponse struct {
	ID         uint              `json:"id"`
	Title      string            `json:"title"`
	Author     string            `json:"author"`
	Sections   []SectionResponse `json:"sections"`
	Categories []string          `json:"categories"`
	Tags       []string          `json:"tags"`
	UpdatedAt  string            `json:"updatedAt"`
}

type RandomPostResponse struct {
	ID          uint   `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	MainContent string `json:"mainContent"`
	CoverURL    string `json:"coverUrl"`
}

type PostPageResponse struct {
	Message     string                `json:"message"`
	Posts       []PostSummaryResponse `json:"posts"`
	HasNextPage bool                  `json:"hasNextPage"`
	TotalCount  int64                 `json:"totalCount"`
	TotalPages  int                   `json:"totalPages"`
}

type PostCursorPageResponse struct {
	Message    string                `json:"message"`
	Posts      []PostSummaryResponse `json:"posts"`
	NextCursor uint                  `json:"nextCursor"`
	HasMore    bool                  `json:"hasMore"`
}
