package content

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	frameURL     = regexp.MustCompile(`(?i)^(?:https?:)?//[^\s]+$`)
	videoHostURL = regexp.MustCompile(`(?i)^(?:https?:)?//(?:www\.|m\.)?(?:youtube\.com|youtu\.be|youtube-nocookie\.com)/`)

	articlePolicy = newArticlePolicy()
)

func newArticlePolicy() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("figure", "figcaption")
	policy.AllowAttrs("class").OnElements("figure", "figcaption", "p", "span")
	policy.AllowAttrs("loading").OnElements("img", "iframe")

	policy.AllowElements("iframe")
	policy.AllowAttrs("src").Matching(frameURL).OnElements("iframe")
	policy.AllowAttrs("width", "height", "title", "allow", "allowfullscreen", "frameborder", "referrerpolicy").OnElements("iframe")

	policy.AllowElements("video", "source")
	policy.AllowAttrs("src", "poster").OnElements("video")
	policy.AllowAttrs("controls", "muted", "loop", "playsinline", "preload", "width", "height").OnElements("video")
	policy.AllowAttrs("src", "type").OnElements("source")

	policy.AllowElements("embed", "object")
	policy.AllowAttrs("src").Matching(videoHostURL).OnElements("embed")
	policy.AllowAttrs("data").Matching(videoHostURL).OnElements("object")
	policy.AllowAttrs("type", "width", "height").OnElements("embed", "object")

	policy.RequireNoFollowOnLinks(true)
	return policy
}

// Sanitize strips scripts, event handlers and unknown markup from a CMS body.
// Video players and http(s) frames are kept; Normalize upgrades video frames.
func Sanitize(fragment string) string {
	if strings.TrimSpace(fragment) == "" {
		return ""
	}
	return strings.TrimSpace(articlePolicy.Sanitize(fragment))
}

// Render sanitizes and normalizes a CMS body for display. Its output is a
// fixed point of Normalize but not of Render: bluemonday may reorder the
// attributes of frames on a second pass.
func Render(fragment, textColor string) string {
	return Normalize(Sanitize(fragment), textColor)
}
