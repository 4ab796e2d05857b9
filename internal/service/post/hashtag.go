package post

import (
	"regexp"
	"strings"
)

const (
	maxHashtags      = 30
	maxHashtagLength = 64
)

var hashtagPattern = regexp.MustCompile(`#([\p{L}\p{N}_]+)`)

// NormalizeHashtag lowercases tag and drops a leading '#'. It returns "" when
// tag is not a valid hashtag.
func NormalizeHashtag(tag string) string {
	tag = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
	if tag == "" || len([]rune(tag)) > maxHashtagLength {
		return ""
	}
	if m := hashtagPattern.FindString("#" + tag); m != "#"+tag {
		return ""
	}
	return tag
}

// Hashtags extracts the tags of caption followed by the explicit ones,
// lowercased and without duplicates, in first-seen order.
func Hashtags(caption string, explicit []string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	add := func(tag string) {
		tag = NormalizeHashtag(tag)
		if tag == "" {
			return
		}
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	for _, m := range hashtagPattern.FindAllStringSubmatch(caption, -1) {
		add(m[1])
	}
	for _, t := range explicit {
		add(t)
	}
	return out
}
