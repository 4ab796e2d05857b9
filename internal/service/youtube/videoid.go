package youtube

import (
	"Learnify/internal/app_errors"
	"net/url"
	"regexp"
	"strings"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// path prefixes that carry the id as the next segment
var idPathPrefixes = []string{"/embed/", "/shorts/", "/live/", "/v/"}

// VideoID extracts the 11 character video id from a YouTube link or returns
// raw itself when it already is an id.
func VideoID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if videoIDPattern.MatchString(raw) {
		return raw, nil
	}

	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", app_errors.ErrInvalidVideoURL
	}

	var id string
	switch host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www."); host {
	case "youtu.be":
		id = firstSegment(u.Path)
	case "youtube.com", "m.youtube.com", "music.youtube.com", "youtube-nocookie.com":
		if u.Path == "/watch" {
			id = u.Query().Get("v")
			break
		}
		for _, p := range idPathPrefixes {
			if strings.HasPrefix(u.Path, p) {
				id = firstSegment(strings.TrimPrefix(u.Path, p))
				break
			}
		}
	}

	if !videoIDPattern.MatchString(id) {
		return "", app_errors.ErrInvalidVideoURL
	}
	return id, nil
}

func firstSegment(path string) string {
	path = strings.TrimPrefix(path, "/")
	seg, _, _ := strings.Cut(path, "/")
	return seg
}

func ThumbnailURL(videoID string) string {
	return "https://img.youtube.com/vi/" + videoID + "/hqdefault.jpg"
}

func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
