package approuters

import (
	"github.com/pro-around/server/internal/configuration"

	"github.com/gin-gonic/gin"
)

// DirectoryRouters sets up the user directory API routes. The raw
// profile lives under /users/:id because a bare /:id cannot share a
// level with the static segments in gin's route tree.
func DirectoryRouters(router *gin.Engine, container *configuration.Container) {
	h := container.DirectoryHandler

	directoryRoute := router.Group("/pa/api/directory")
	{
		directoryRoute.GET("/nearme/:longitude/:latitude", h.SearchNearby)
		directoryRoute.GET("/nearme/:longitude/:latitude/:radius", h.SearchNearby)
		directoryRoute.GET("/nearme/:longitude/:latitude/:radius/:search", h.SearchNearby)

		directoryRoute.GET("/professional/:id", h.GetProfile)
		directoryRoute.GET("/professional/:id/reviews", h.GetProfileReviews)
		directoryRoute.GET("/users/:id", h.GetRawProfile)

		directoryRoute.PUT("/lastconnection/:id", h.UpdateLastConnection)
		directoryRoute.PUT("/image/:id", h.UpdateImage)
		directoryRoute.PUT("/update/:id", h.UpdateProfile)
		directoryRoute.PUT("/password/:id", h.ChangePassword)

		directoryRoute.DELETE("/delete/:id", h.DeleteUser)
	}
}
