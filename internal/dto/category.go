package dto

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=50"`
}

type UpdateCategoryRequest struct {
	CategoryID uint   `json:"categoryId" binding:"required,min=1"`
	Name       string `json:"name" binding:"required,min=1,max=50"`
}

type DeleteCategoryRequest struct {
	CategoryID uint `json:"categoryId" binding:"required,min=1"`
}

type CategoryResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	UpdatedAt string `json:"updatedAt"`
}
