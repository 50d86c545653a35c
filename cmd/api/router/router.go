package router

import (
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/hertz-contrib/cors"

	"clipstream.com/cmd/api/handlers/feed"
	"clipstream.com/cmd/api/handlers/interaction"
	"clipstream.com/cmd/api/handlers/notification"
	"clipstream.com/cmd/api/handlers/relation"
	"clipstream.com/cmd/api/handlers/search"
	"clipstream.com/cmd/api/handlers/user"
	"clipstream.com/pkg/bound"
	"clipstream.com/pkg/jwt"
)

// Register mounts every route. Auth and public reads sit outside the JWT
// middleware; everything acting as a user sits inside it.
func Register(r *server.Hertz) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(bound.NewCpuLimiter(90).MiddlewareFunc())

	auth := r.Group("/auth")
	auth.POST("/register", user.Register)
	auth.POST("/login", jwt.LoginHandler())

	r.GET("/ws", notification.ServeWS)
	r.GET("/search", search.Search)

	users := r.Group("/users")
	users.GET("/:user_id", user.Profile)
	users.GET("/:user_id/videos", user.ListVideos)
	users.GET("/:user_id/followers", relation.ListFollowers)
	users.GET("/:user_id/following", relation.ListFollowing)

	videos := r.Group("/videos")
	videos.GET("/:video_id", user.GetVideo)
	videos.GET("/:video_id/comments", interaction.ListComments)

	trending := r.Group("/trending")
	trending.GET("/hashtags", feed.Trending)

	authed := r.Group("/", jwt.MiddlewareFunc())

	authedUsers := authed.Group("/users")
	authedUsers.POST("/:user_id/follow", relation.Follow)
	authedUsers.DELETE("/:user_id/follow", relation.Unfollow)
	authedUsers.GET("/:user_id/follow", relation.FollowState)

	authedVideos := authed.Group("/videos")
	authedVideos.POST("", user.PublishVideo)
	authedVideos.POST("/:video_id/complete", user.CompleteVideo)
	authedVideos.POST("/:video_id/like", interaction.Like)
	authedVideos.DELETE("/:video_id/like", interaction.Unlike)
	authedVideos.POST("/:video_id/comments", interaction.AddComment)
	authedVideos.POST("/:video_id/share", interaction.Share)
	authedVideos.POST("/:video_id/watch", interaction.Watch)

	feeds := authed.Group("/feed")
	feeds.GET("/following", feed.Following)
	feeds.GET("/for-you", feed.ForYou)

	notifications := authed.Group("/notifications")
	notifications.GET("", notification.List)
	notifications.PUT("/:notification_id/read", notification.MarkRead)
	notifications.PUT("/read-all", notification.MarkAllRead)

	me := authed.Group("/me")
	me.PUT("/profile", user.UpdateProfile)
}
