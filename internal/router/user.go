package router

import (
	"github.com/gin-gonic/gin"
)

// registerUserRoutes mounts the public read surface plus the authenticated
// profile endpoints.
func registerUserRoutes(group *gin.RouterGroup, session gin.HandlerFunc, h Handlers) {
	group.GET("/get-all-categories", h.Category.List)
	group.GET("/get-detail-post/:slug", h.Post.GetDetail)
	group.GET("/get-random-posts", h.Post.Random)
	group.GET("/posts/offset", h.Post.ListOffset)
	group.GET("/posts/infinite", h.Post.ListInfinite)

	group.GET("/config-home", h.SiteConfig.GetHome)
	group.GET("/config-about", h.SiteConfig.GetAbout)
	group.GET("/config-contact", h.SiteConfig.GetContact)

	group.GET("/profile", session, h.User.GetProfile)
	group.PATCH("/profile/update", session, h.User.UpdateProfile)
}
