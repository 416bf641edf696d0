package dto

type UpdateHomeRequest struct {
	HomeTitle       string `json:"homeTitle" binding:"required"`
	HomeDescription string `json:"homeDescription" binding:"required"`
}

type UpdateAboutRequest struct {
	AboutTitle       string `json:"aboutTitle" binding:"required"`
	AboutDescription string `json:"aboutDescription" binding:"required"`
}

type UpdateContactRequest struct {
	ContactEmail   string `json:"contactEmail" binding:"required,email"`
	ContactPhone   string `json:"contactPhone" binding:"required"`
	ContactAddress string `json:"contactAddress" binding:"required"`
}

type HomeConfigResponse struct {
	HomeTitle       string `json:"homeTitle"`
	HomeDescription string `json:"homeDescription"`
}

type AboutConfigResponse struct {
	AboutTitle       string `json:"aboutTitle"`
	AboutDescription string `json:"aboutDescription"`
}

type ContactConfigResponse struct {
	ContactEmail   string `json:"contactEmail"`
	ContactPhone   string `json:"contactPhone"`
	ContactAddress string `json:"contactAddress"`
}
