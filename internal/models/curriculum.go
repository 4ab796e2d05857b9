package models

// Walkers and mutators over the embedded module → chapter → lesson tree.
// Every mutator leaves order fields renumbered 0..n-1.

func (c *Course) FindModule(moduleID string) (int, *Module) {
	for i := range c.Modules {
		if c.Modules[i].ID == moduleID {
			return i, &c.Modules[i]
		}
	}
	return -1, nil
}

func (m *Module) FindChapter(chapterID string) (int, *Chapter) {
	for i := range m.Chapters {
		if m.Chapters[i].ID == chapterID {
			return i, &m.Chapters[i]
		}
	}
	return -1, nil
}

func (ch *Chapter) FindLesson(lessonID string) (int, *Lesson) {
	for i := range ch.Lessons {
		if ch.Lessons[i].ID == lessonID {
			return i, &ch.Lessons[i]
		}
	}
	return -1, nil
}

func (l *Lesson) FindResource(resourceID string) (int, *Resource) {
	for i := range l.Resources {
		if l.Resources[i].ID == resourceID {
			return i, &l.Resources[i]
		}
	}
	return -1, nil
}

// LessonPath locates a lesson anywhere in the course.
type LessonPath struct {
	ModuleID  string
	ChapterID string
	Lesson    *Lesson
}

func (c *Course) LocateLesson(lessonID string) (LessonPath, bool) {
	for mi := range c.Modules {
		m := &c.Modules[mi]
		for ci := range m.Chapters {
			ch := &m.Chapters[ci]
			if _, l := ch.FindLesson(lessonID); l != nil {
				return LessonPath{ModuleID: m.ID, ChapterID: ch.ID, Lesson: l}, true
			}
		}
	}
	return LessonPath{}, false
}

// LessonIDs returns lesson ids in curriculum order.
func (c *Course) LessonIDs() []string {
	var ids []string
	for _, m := range c.Modules {
		for _, ch := range m.Chapters {
			for _, l := range ch.Lessons {
				ids = append(ids, l.ID)
			}
		}
	}
	return ids
}

// ObjectKeys lists every stored media object referenced by the course.
func (c *Course) ObjectKeys() []string {
	var keys []string
	if c.ThumbnailKey != "" {
		keys = append(keys, c.ThumbnailKey)
	}
	if c.PreviewVideoKey != "" {
		keys = append(keys, c.PreviewVideoKey)
	}
	for _, m := range c.Modules {
		for _, ch := range m.Chapters {
			for _, l := range ch.Lessons {
				if l.VideoKey != "" {
					keys = append(keys, l.VideoKey)
				}
				for _, r := range l.Resources {
					if r.ObjectKey != "" {
						keys = append(keys, r.ObjectKey)
					}
				}
			}
		}
	}
	return keys
}

// Normalize renumbers the tree, replaces nil slices with empty ones and
// recomputes the lesson and duration aggregates.
func (c *Course) Normalize() {
	lessons, minutes := 0, 0
	if c.Modules == nil {
		c.Modules = []Module{}
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.Requirements == nil {
		c.Requirements = []string{}
	}
	if c.Outcomes == nil {
		c.Outcomes = []string{}
	}
	for mi := range c.Modules {
		m := &c.Modules[mi]
		m.Order = mi
		if m.Chapters == nil {
			m.Chapters = []Chapter{}
		}
		for ci := range m.Chapters {
			ch := &m.Chapters[ci]
			ch.Order = ci
			if ch.Lessons == nil {
				ch.Lessons = []Lesson{}
			}
			for li := range ch.Lessons {
				l := &ch.Lessons[li]
				l.Order = li
				if l.Resources == nil {
					l.Resources = []Resource{}
				}
				for ri := range l.Resources {
					l.Resources[ri].Order = ri
				}
				lessons++
				minutes += l.DurationMinutes
			}
		}
	}
	c.Stats.LessonsCount = lessons
	c.Stats.DurationMinutes = minutes
}

// Move relocates the element at from to index to, shifting the rest.
// Out-of-range targets are clamped.
func Move[T any](items []T, from, to int) []T {
	if from < 0 || from >= len(items) {
		return items
	}
	if to < 0 {
		to = 0
	}
	if to >= len(items) {
		to = len(items) - 1
	}
	if from == to {
		return items
	}
	item := items[from]
	rest := append(items[:from:from], items[from+1:]...)
	out := make([]T, 0, len(items))
	out = append(out, rest[:to]...)
	out = append(out, item)
	out = append(out, rest[to:]...)
	return out
}

// Remove drops the element at index i.
func Remove[T any](items []T, i int) []T {
	if i < 0 || i >= len(items) {
		return items
	}
	return append(items[:i:i], items[i+1:]...)
}

// Insert places item at index at, or appends when at is out of range.
func Insert[T any](items []T, at int, item T) []T {
	if at < 0 || at >= len(items) {
		return append(items, item)
	}
	out := make([]T, 0, len(items)+1)
	out = append(out, items[:at]...)
	out = append(out, item)
	out = append(out, items[at:]...)
	return out
}
