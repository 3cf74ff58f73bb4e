package content

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// EmbedHost is the privacy-enhanced player host.
const EmbedHost = "www.youtube-nocookie.com"

var (
	videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	durationPart   = regexp.MustCompile(`^(?:(\d+)h)?(?:(\d+)m)?(?:(\d+)s?)?$`)

	// bareVideoURL finds video links in running text. The match is trimmed of
	// trailing punctuation before use.
	bareVideoURL = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.|m\.)?(?:youtube(?:-nocookie)?\.com/(?:watch\?[^\s<>"']*|embed/|shorts/|live/|v/)|youtu\.be/)[A-Za-z0-9_\-=&?%#.;/]*`)
)

// playerParams is the fixed player configuration: visible controls, no
// keyboard control, no fullscreen button, inline playback, no related videos
// and no info overlay.
var playerParams = url.Values{
	"controls":    {"1"},
	"disablekb":   {"1"},
	"fs":          {"0"},
	"playsinline": {"1"},
	"rel":         {"0"},
	"showinfo":    {"0"},
}

// VideoID extracts the video id and start offset (seconds) from a YouTube
// watch, share, shorts or embed URL. It reports false for anything else.
func VideoID(raw string) (id string, start int, ok bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", 0, false
	}
	if strings.HasPrefix(raw, "//") {
		raw = "https:" + raw
	} else if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", 0, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", 0, false
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	switch host {
	case "youtu.be":
		id = segments[0]
	case "youtube.com":
		if len(segments) == 1 && segments[0] == "watch" {
			id = u.Query().Get("v")
			break
		}
		if len(segments) >= 2 {
			switch segments[0] {
			case "embed", "shorts", "live", "v":
				id = segments[1]
			}
		}
	case "youtube-nocookie.com":
		if len(segments) >= 2 && segments[0] == "embed" {
			id = segments[1]
		}
	}
	if !videoIDPattern.MatchString(id) {
		return "", 0, false
	}
	q := u.Query()
	start = parseOffset(q.Get("start"))
	if start == 0 {
		start = parseOffset(q.Get("t"))
	}
	if start == 0 && strings.HasPrefix(u.Fragment, "t=") {
		start = parseOffset(strings.TrimPrefix(u.Fragment, "t="))
	}
	return id, start, true
}

// EmbedURL returns the canonical player URL for id. The output is stable:
// EmbedURL(VideoID(EmbedURL(id, s))) == EmbedURL(id, s).
func EmbedURL(id string, start int) string {
	q := url.Values{}
	for k, v := range playerParams {
		q[k] = v
	}
	if start > 0 {
		q.Set("start", strconv.Itoa(start))
	}
	return (&url.URL{Scheme: "https", Host: EmbedHost, Path: "/embed/" + id, RawQuery: q.Encode()}).String()
}

// IsVideoURL reports whether raw points at a recognised video host.
func IsVideoURL(raw string) bool {
	_, _, ok := VideoID(raw)
	return ok
}

// parseOffset accepts "90", "90s" and "1h2m3s" forms.
func parseOffset(v string) int {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return 0
	}
	m := durationPart.FindStringSubmatch(v)
	if m == nil {
		return 0
	}
	total := 0
	for i, mult := range []int{3600, 60, 1} {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0
		}
		total += n * mult
	}
	return total
}

type videoMatch struct {
	start, end int
	id         string
	offset     int
}

// findBareVideoURLs locates video links in plain text.
func findBareVideoURLs(text string) []videoMatch {
	locs := bareVideoURL.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}
	out := make([]videoMatch, 0, len(locs))
	for _, loc := range locs {
		start, end := loc[0], loc[1]
		for end > start && strings.ContainsRune(".,;:!?)", rune(text[end-1])) {
			end--
		}
		id, offset, ok := VideoID(text[start:end])
		if !ok {
			continue
		}
		out = append(out, videoMatch{start: start, end: end, id: id, offset: offset})
	}
	return out
}
