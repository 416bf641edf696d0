package router

import (
	"github.com/gin-gonic/gin"
)

// registerAdminRoutes mounts the admin surface; the group already carries
// the session middleware and the ADMIN role gate.
func registerAdminRoutes(group *gin.RouterGroup, h Handlers) {
	group.POST("/createCategory", h.Category.Create)
	group.PATCH("/updateCategory", h.Category.Update)
	group.DELETE("/deleteCategory", h.Category.Delete)

	group.POST("/createPost", h.Post.Create)
	group.PATCH("/updatePost", h.Post.Update)
	group.DELETE("/deletePost", h.Post.Delete)

	group.GET("/get-all-users", h.User.List)
	group.PATCH("/update-user-role", h.User.UpdateRole)
	group.DELETE("/delete-user", h.User.Delete)

	group.PATCH("/config-home", h.SiteConfig.UpdateHome)
	group.PATCH("/config-about", h.SiteConfig.UpdateAbout)
	group.PATCH("/config-contact", h.SiteConfig.UpdateContact)
}
