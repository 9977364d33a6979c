// Package app wires the HTTP surface together
package app

import (
	"strings"
	"time"

	"piclips/video-api/app/root"
	"piclips/video-api/app/search"
	"piclips/video-api/app/user"
	"piclips/video-api/app/video"
	"piclips/video-api/config"
	"piclips/video-api/internal"
	"piclips/video-api/pkg/middleware"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const jsonBodyLimit = 1 << 20

func NewRouter(d *internal.Deps) *gin.Engine {
	router := gin.New()

	origins := strings.Split(viper.GetString("host.cors"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Range"},
			ExposeHeaders:    []string{"Content-Length", "Content-Range", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		ginzap.RecoveryWithZap(zap.L(), true),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
		middleware.NewTimeoutMiddleware(config.Duration("host.request_timeout")),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	router.MaxMultipartMemory = 8 << 20

	rateLimit := viper.GetInt("security.rate_limit")

	jwt := middleware.NewJWTMiddleware(d.DB, d.Sessions)
	optionalJWT := middleware.NewOptionalJWTMiddleware(d.Sessions)
	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: rateLimit,
		Burst:             rateLimit * 2,
	})

	jsonLimit := middleware.BodySizeLimiter(jsonBodyLimit)
	// Leave some room for the other form fields
	uploadLimit := middleware.BodySizeLimiter(viper.GetInt64("upload.max_size")<<20 + jsonBodyLimit)
	avatarLimit := middleware.BodySizeLimiter(viper.GetInt64("avatar.max_size")<<20 + jsonBodyLimit)

	cacheFor := newCache()

	router.Static("/uploads", viper.GetString("upload.dir"))

	m := router.Group("/api", rateLimiter)
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		m.HEAD("/heartbeat", root.Heartbeat)

		// GET /api/validate		-> Validates a JWT token
		m.GET("/validate", jwt, root.Validate)

		// GET /api/search		-> Searches users by name or hashtag
		m.GET("/search", jwt, func(c *gin.Context) { search.UserSearch(c, d) })
	}

	u := m.Group("/users")
	{
		// POST /api/users/authenticate	-> Signs in with a platform access token
		u.POST("/authenticate", jsonLimit, func(c *gin.Context) { user.UserAuthenticate(c, d) })

		// GET /api/users		-> Returns the caller's profile and newest videos
		u.GET("", jwt, func(c *gin.Context) { user.UserFetch(c, d) })

		// GET /api/users/by-username/:username -> Returns a public profile
		u.GET("/by-username/:username", func(c *gin.Context) { user.ProfileByUsername(c, d) })

		// GET /api/users/:id		-> Returns the caller's own profile
		u.GET("/:id", jwt, func(c *gin.Context) { user.ProfileFetch(c, d) })

		// PUT /api/users/:id		-> Updates the caller's own profile
		u.PUT("/:id", jwt, jsonLimit, func(c *gin.Context) { user.ProfileUpdate(c, d) })

		// POST /api/users/:id/avatar	-> Replaces the caller's avatar
		u.POST("/:id/avatar", jwt, avatarLimit, func(c *gin.Context) { user.AvatarUpload(c, d) })

		// POST /api/users/:id/follow	-> Follows or unfollows a user
		u.POST("/:id/follow", jwt, func(c *gin.Context) { user.UserFollow(c, d) })
	}

	v := m.Group("/videos")
	{
		// GET /api/videos		-> Returns the public feed
		v.GET("", optionalJWT, cacheFor(15), func(c *gin.Context) { video.VideoList(c, d) })

		// POST /api/videos		-> Uploads a new video
		v.POST("", jwt, uploadLimit, func(c *gin.Context) { video.VideoUpload(c, d) })

		// GET /api/videos/user/:userId	-> Returns the videos of a user
		v.GET("/user/:userId", jwt, func(c *gin.Context) { video.VideoListUser(c, d) })

		// GET /api/videos/liked/:userId -> Returns the videos a user liked
		v.GET("/liked/:userId", jwt, func(c *gin.Context) { video.VideoListLiked(c, d) })

		// GET /api/videos/:id		-> Returns a video
		v.GET("/:id", optionalJWT, func(c *gin.Context) { video.VideoFetch(c, d) })

		// DELETE /api/videos/:id	-> Deletes a video owned by the caller
		v.DELETE("/:id", jwt, func(c *gin.Context) { video.VideoDelete(c, d) })

		// POST /api/videos/:id/like	-> Likes or unlikes a video
		v.POST("/:id/like", jwt, func(c *gin.Context) { video.VideoLike(c, d) })

		// POST /api/videos/:id/interactions -> Records a view or share
		v.POST("/:id/interactions", optionalJWT, jsonLimit, func(c *gin.Context) { video.VideoInteraction(c, d) })

		// POST /api/videos/:id/comment	-> Comments on a video
		v.POST("/:id/comment", jwt, jsonLimit, func(c *gin.Context) { video.CommentCreate(c, d) })

		// GET /api/videos/:id/comments	-> Returns the comments of a video
		v.GET("/:id/comments", optionalJWT, func(c *gin.Context) { video.CommentList(c, d) })

		// DELETE /api/videos/:id/comments/:commentId -> Deletes the caller's comment
		v.DELETE("/:id/comments/:commentId", jwt, func(c *gin.Context) { video.CommentDelete(c, d) })

		// POST /api/videos/:id/tip	-> Tips the owner of a video
		v.POST("/:id/tip", jwt, jsonLimit, func(c *gin.Context) { video.TipSend(c, d) })

		// GET /api/videos/:id/tips	-> Returns the tips a video received
		v.GET("/:id/tips", jwt, func(c *gin.Context) { video.TipList(c, d) })

		// GET /api/videos/:id/tips/summary -> Aggregates the tips of a video
		v.GET("/:id/tips/summary", jwt, func(c *gin.Context) { video.TipSummary(c, d) })
	}

	return router
}

// newCache returns cacheFor, which caches anonymous responses per URI.
// Signed in callers always get a fresh response so their own writes show
// up right away. cache.ttl of 0 turns caching off.
func newCache() func(sec int) gin.HandlerFunc {
	if viper.GetInt("cache.ttl") <= 0 {
		return func(int) gin.HandlerFunc {
			return func(c *gin.Context) { c.Next() }
		}
	}

	var store persist.CacheStore
	switch viper.GetString("cache.type") {
	case "redis":
		store = persist.NewRedisStore(redis.NewClient(&redis.Options{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		}))
	default:
		store = persist.NewMemoryStore(time.Minute)
	}

	ttl := viper.GetInt("cache.ttl")

	return func(sec int) gin.HandlerFunc {
		sec = min(sec, ttl)

		return cache.Cache(store, time.Second*time.Duration(sec),
			cache.WithCacheStrategyByRequest(func(c *gin.Context) (bool, cache.Strategy) {
				if c.GetString("userID") != "" {
					return false, cache.Strategy{}
				}

				return true, cache.Strategy{
					CacheKey: c.Request.RequestURI,
				}
			}),
		)
	}
}
