package models

// CourseInput is the editable part of a course. On update nil pointers keep
// the stored value; see CourseUpdate.
type CourseInput struct {
	Title            string
	Description      string
	ShortDescription string
	Price            float64
	DiscountPrice    *float64
	Currency         string
	Level            string
	Category         string
	Tags             []string
	Language         string
	ThumbnailKey     string
	PreviewVideoKey  string
	Requirements     []string
	Outcomes         []string
}

type ModuleInput struct {
	Title       string
	Description string
	// Position inserts at an index; nil appends.
	Position *int
}

// ModuleUpdate is a partial module edit; nil fields keep the stored value.
type ModuleUpdate struct {
	Title       *string
	Description *string
	Position    *int
}

type ChapterInput struct {
	Title    string
	Position *int
}

type LessonInput struct {
	Title           string
	Description     string
	Type            string
	Content         string
	VideoKey        string
	VideoURL        string
	DurationMinutes int
	IsFreePreview   bool
	Position        *int
}

// LessonUpdate is a partial lesson edit; nil fields keep the stored value.
type LessonUpdate struct {
	Title           *string
	Description     *string
	Type            *string
	Content         *string
	VideoKey        *string
	VideoURL        *string
	DurationMinutes *int
	IsFreePreview   *bool
	Position        *int
}

// Input returns the editable fields of l. VideoURL carries the YouTube id,
// which video id parsing accepts as is.
func (l *Lesson) Input() LessonInput {
	return LessonInput{
		Title:           l.Title,
		Description:     l.Description,
		Type:            l.Type,
		Content:         l.Content,
		VideoKey:        l.VideoKey,
		VideoURL:        l.YouTubeVideoID,
		DurationMinutes: l.DurationMinutes,
		IsFreePreview:   l.IsFreePreview,
	}
}

// Merge overlays the set fields of u on in.
func (u LessonUpdate) Merge(in LessonInput) LessonInput {
	if u.Title != nil {
		in.Title = *u.Title
	}
	if u.Description != nil {
		in.Description = *u.Description
	}
	if u.Type != nil {
		in.Type = *u.Type
	}
	if u.Content != nil {
		in.Content = *u.Content
	}
	if u.VideoKey != nil {
		in.VideoKey = *u.VideoKey
	}
	if u.VideoURL != nil {
		in.VideoURL = *u.VideoURL
	}
	if u.DurationMinutes != nil {
		in.DurationMinutes = *u.DurationMinutes
	}
	if u.IsFreePreview != nil {
		in.IsFreePreview = *u.IsFreePreview
	}
	in.Position = u.Position
	return in
}

type ResourceInput struct {
	Title     string
	Type      string
	URL       string
	ObjectKey string
}

// LessonMove relocates a lesson. Empty ModuleID/ChapterID keep the current
// parent.
type LessonMove struct {
	ModuleID  string
	ChapterID string
	Index     int
}
