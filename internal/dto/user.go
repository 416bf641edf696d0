package dto

type UserListItem struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	UpdatedAt string `json:"updatedAt"`
}

type UpdateUserRoleRequest struct {
	ID   uint   `json:"id" binding:"required,min=1"`
	Role string `json:"role" binding:"required,oneof=READER AUTHOR ADMIN"`
}

type DeleteUserRequest struct {
	ID uint `json:"id" binding:"required,min=1"`
}

type ProfileResponse struct {
	Name       string `json:"name"`
	AuthorName string `json:"authorName"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Phone      string `json:"phone"`
	Image      string `json:"image"`
	CreatedAt  string `json:"createdAt"`
}

type UpdateProfileRequest struct {
	Name       string `json:"name" binding:"omitempty,min=2,max=50"`
	AuthorName string `json:"authorName" binding:"omitempty,max=50"`
	Phone      string `json:"phone" binding:"omitempty,min=6,max=15"`
	ImageURL   string `json:"imageUrl"`
}
