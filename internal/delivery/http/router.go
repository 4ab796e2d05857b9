package http

import (
	"Learnify/internal/delivery/http/controllers"
	"Learnify/internal/delivery/http/controllers/auth"
	"Learnify/internal/delivery/http/controllers/course"
	"Learnify/internal/delivery/http/controllers/lesson"
	"Learnify/internal/delivery/http/controllers/middleware"
	"Learnify/internal/delivery/http/controllers/post"
	"Learnify/internal/delivery/http/controllers/upload"
	"Learnify/internal/delivery/http/controllers/user"
	"Learnify/internal/delivery/http/controllers/youtube"
	"Learnify/internal/models"
	"Learnify/internal/service"
	"Learnify/pkg/logger"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Options struct {
	AllowOrigins  []string
	SessionCookie string
	Health        map[string]controllers.Pinger
}

func InitRoutes(l logger.Log, u service.Collection, opts Options) *gin.Engine {
	if err := middleware.RegisterValidators(); err != nil {
		l.ErrorErr("failed to register validators", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())

	config := cors.Config{
		AllowOrigins:     opts.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(config))

	authMw := middleware.NewAuthMiddlewareProvider(l, u.Auth, opts.SessionCookie)
	admin := []gin.HandlerFunc{authMw.AuthMiddleware, middleware.RequireRoles(models.AdminRole)}

	statusController := controllers.NewStatusHandler(opts.Health)
	authController := auth.NewAuthHandler(l, u.Auth, u.Users)
	managementController := course.NewManagementHandler(l, u.Courses)
	queryController := course.NewQueryHandler(l, u.Catalog)
	subscriptionController := course.NewSubscriptionHandler(l, u.Catalog)
	ratingController := course.NewRatingHandler(l, u.Catalog)
	curriculumController := lesson.NewManagementHandler(l, u.Courses)
	contentController := lesson.NewContentHandler(l, u.Courses)
	progressController := lesson.NewProgressHandler(l, u.Progress)
	youtubeController := youtube.NewHandler(l, u.YouTube)
	uploadController := upload.NewHandler(l, u.Uploads)
	postController := post.NewPostHandler(l, u.Posts)
	commentController := post.NewCommentHandler(l, u.Comments)
	userController := user.NewHandler(l, u.Users)

	api := r.Group("/api", middleware.LoggingMiddleware(l))
	{
		api.GET("/status", statusController.Status)
		api.GET("/health", statusController.Health)

		api.POST("/webhooks/identity", authController.Webhook)
		api.GET("/me", authMw.AuthMiddleware, authController.Me)
		api.PATCH("/me", authMw.AuthMiddleware, userController.UpdateProfile)

		courses := api.Group("/courses")
		{
			courses.GET("", queryController.ListCourses)
			courses.GET("/:course_id", authMw.OptionalAuth, queryController.CourseByID)

			learner := courses.Group("", authMw.AuthMiddleware)
			{
				learner.GET("/enrolled", subscriptionController.Enrollments)
				learner.POST("/:course_id/enroll", subscriptionController.Enroll)
				learner.POST("/:course_id/rating", ratingController.RateCourse)
				learner.GET("/:course_id/progress", progressController.GetProgress)
				learner.DELETE("/:course_id/progress", progressController.ResetProgress)
				learner.PUT("/:course_id/progress/lessons/:lesson_id", progressController.MarkLesson)
				learner.PUT("/:course_id/progress/current/:lesson_id", progressController.SetCurrentLesson)
			}
		}

		authoring := api.Group("/admin/courses", admin...)
		{
			authoring.GET("", managementController.ListCourses)
			authoring.POST("", managementController.CreateCourse)
			authoring.GET("/:course_id", managementController.CourseByID)
			authoring.PATCH("/:course_id", managementController.UpdateCourse)
			authoring.DELETE("/:course_id", managementController.DeleteCourse)
			authoring.POST("/:course_id/publish", managementController.PublishCourse)
			authoring.POST("/:course_id/unpublish", managementController.UnpublishCourse)

			authoring.POST("/:course_id/modules", curriculumController.CreateModule)
			authoring.PATCH("/:course_id/modules/:module_id", curriculumController.UpdateModule)
			authoring.DELETE("/:course_id/modules/:module_id", curriculumController.DeleteModule)
			authoring.POST("/:course_id/modules/:module_id/move", curriculumController.MoveModule)
			authoring.POST("/:course_id/modules/:module_id/chapters", curriculumController.CreateChapter)
			authoring.PATCH("/:course_id/modules/:module_id/chapters/:chapter_id", curriculumController.UpdateChapter)
			authoring.DELETE("/:course_id/modules/:module_id/chapters/:chapter_id", curriculumController.DeleteChapter)
			authoring.POST("/:course_id/modules/:module_id/chapters/:chapter_id/move", curriculumController.MoveChapter)
			authoring.POST("/:course_id/modules/:module_id/chapters/:chapter_id/lessons", curriculumController.CreateLesson)
			authoring.PATCH("/:course_id/lessons/:lesson_id", curriculumController.UpdateLesson)
			authoring.DELETE("/:course_id/lessons/:lesson_id", curriculumController.DeleteLesson)
			authoring.POST("/:course_id/lessons/:lesson_id/move", curriculumController.MoveLesson)
			authoring.POST("/:course_id/lessons/:lesson_id/resources", contentController.CreateResource)
			authoring.PATCH("/:course_id/lessons/:lesson_id/resources/:resource_id", contentController.UpdateResource)
			authoring.DELETE("/:course_id/lessons/:lesson_id/resources/:resource_id", contentController.DeleteResource)
		}

		yt := api.Group("/youtube-courses")
		{
			yt.GET("", authMw.OptionalAuth, youtubeController.ListCourses)
			yt.GET("/:course_id", authMw.OptionalAuth, youtubeController.CourseByID)

			ytAdmin := yt.Group("", admin...)
			{
				ytAdmin.POST("", youtubeController.CreateCourse)
				ytAdmin.PATCH("/:course_id", youtubeController.UpdateCourse)
				ytAdmin.DELETE("/:course_id", youtubeController.DeleteCourse)
				ytAdmin.POST("/:course_id/publish", youtubeController.Publish)
				ytAdmin.POST("/:course_id/unpublish", youtubeController.Unpublish)
				ytAdmin.POST("/:course_id/modules", youtubeController.CreateModule)
				ytAdmin.PATCH("/:course_id/modules/:module_id", youtubeController.UpdateModule)
				ytAdmin.DELETE("/:course_id/modules/:module_id", youtubeController.DeleteModule)
				ytAdmin.POST("/:course_id/modules/:module_id/chapters", youtubeController.CreateChapter)
				ytAdmin.PATCH("/:course_id/modules/:module_id/chapters/:chapter_id", youtubeController.UpdateChapter)
				ytAdmin.DELETE("/:course_id/modules/:module_id/chapters/:chapter_id", youtubeController.DeleteChapter)
				ytAdmin.POST("/:course_id/modules/:module_id/chapters/:chapter_id/lessons", youtubeController.CreateLesson)
				ytAdmin.PATCH("/:course_id/lessons/:lesson_id", youtubeController.UpdateLesson)
				ytAdmin.DELETE("/:course_id/lessons/:lesson_id", youtubeController.DeleteLesson)
			}
		}

		uploads := api.Group("/uploads", authMw.AuthMiddleware)
		{
			uploads.POST("/presign", uploadController.Presign)
			uploads.POST("/confirm", uploadController.Confirm)
			uploads.GET("/url", uploadController.URL)
			uploads.DELETE("", uploadController.Delete)
		}

		posts := api.Group("/posts")
		{
			posts.GET("", authMw.OptionalAuth, postController.Feed)
			posts.GET("/:post_id", authMw.OptionalAuth, postController.GetPost)
			posts.GET("/:post_id/comments", commentController.Comments)

			member := posts.Group("", authMw.AuthMiddleware)
			{
				member.GET("/saved", postController.SavedPosts)
				member.POST("", postController.CreatePost)
				member.PATCH("/:post_id", postController.UpdatePost)
				member.DELETE("/:post_id", postController.DeletePost)
				member.PUT("/:post_id/like", postController.Like)
				member.DELETE("/:post_id/like", postController.Like)
				member.PUT("/:post_id/save", postController.Save)
				member.DELETE("/:post_id/save", postController.Save)
				member.POST("/:post_id/comments", commentController.AddComment)
			}
		}
		api.DELETE("/comments/:comment_id", authMw.AuthMiddleware, commentController.DeleteComment)

		users := api.Group("/users")
		{
			users.GET("/:user_id", authMw.OptionalAuth, userController.Profile)
			users.GET("/:user_id/followers", userController.Followers)
			users.GET("/:user_id/following", userController.Following)
			users.POST("/:user_id/follow", authMw.AuthMiddleware, userController.Follow)
			users.DELETE("/:user_id/follow", authMw.AuthMiddleware, userController.Unfollow)
		}
	}
	return r
}
