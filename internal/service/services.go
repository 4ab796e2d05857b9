package service

import (
	"Learnify/internal/service/auth"
	"Learnify/internal/service/catalog"
	"Learnify/internal/service/comment"
	"Learnify/internal/service/course"
	"Learnify/internal/service/post"
	"Learnify/internal/service/progress"
	"Learnify/internal/service/upload"
	"Learnify/internal/service/user"
	"Learnify/internal/service/youtube"
)

// Collection is everything the HTTP layer serves. Several services share
// method names, so they are named fields rather than embedded.
type Collection struct {
	Auth     *auth.AuthService
	Courses  *course.CourseService
	YouTube  *youtube.YouTubeCourseService
	Catalog  *catalog.CatalogService
	Progress *progress.ProgressService
	Uploads  *upload.UploadService
	Users    *user.UserService
	Posts    *post.PostService
	Comments *comment.CommentService
}
