package reader

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Viewport is the coarse width class of the client.
type Viewport int

const (
	Wide Viewport = iota
	Narrow
)

func (v Viewport) String() string {
	if v == Narrow {
		return "narrow"
	}
	return "wide"
}

// NarrowBreakpoint is the first CSS pixel width considered wide.
const NarrowBreakpoint = 768

// AcceptCH lists the client hints ViewportFrom understands.
const AcceptCH = "Sec-CH-Viewport-Width, Sec-CH-UA-Mobile, Viewport-Width"

// ViewportFrom classifies the client from an explicit view parameter,
// viewport-width hints, the mobile hint and the user agent, in that order.
func ViewportFrom(r *http.Request) Viewport {
	switch strings.ToLower(r.URL.Query().Get("view")) {
	case "wide":
		return Wide
	case "narrow":
		return Narrow
	}
	for _, h := range []string{"Sec-CH-Viewport-Width", "Viewport-Width"} {
		if raw := strings.TrimSpace(r.Header.Get(h)); raw != "" {
			if w, err := strconv.ParseFloat(raw, 64); err == nil && w > 0 {
				if w < NarrowBreakpoint {
					return Narrow
				}
				return Wide
			}
		}
	}
	switch strings.TrimSpace(r.Header.Get("Sec-CH-UA-Mobile")) {
	case "?1":
		return Narrow
	case "?0":
		return Wide
	}
	if isMobileUA(r.UserAgent()) {
		return Narrow
	}
	return Wide
}

func isMobileUA(ua string) bool {
	ua = strings.ToLower(ua)
	for _, marker := range []string{"iphone", "ipod", "android", "mobile", "windows phone", "blackberry", "opera mini"} {
		if strings.Contains(ua, marker) {
			return true
		}
	}
	return false
}

// Layout is the number of article panes rendered.
type Layout int

const (
	Single Layout = iota
	Dual
)

func (l Layout) String() string {
	if l == Dual {
		return "dual"
	}
	return "single"
}

// DecideLayout shows two panes only on wide viewports when a next article
// exists and its fetch succeeded.
func DecideLayout(v Viewport, hasNext, nextLoaded bool) Layout {
	if v == Wide && hasNext && nextLoaded {
		return Dual
	}
	return Single
}

// SwipeThreshold is the horizontal distance in pixels a drag must exceed.
const SwipeThreshold = 50

// Swipe is a classified touch gesture.
type Swipe int

const (
	NoSwipe Swipe = iota
	SwipePrevious
	SwipeNext
)

func (s Swipe) String() string {
	switch s {
	case SwipePrevious:
		return "previous"
	case SwipeNext:
		return "next"
	default:
		return "none"
	}
}

// DetectSwipe maps a drag to navigation: a rightward drag goes back, a
// leftward drag goes forward. Short or mostly vertical drags are scrolling.
func DetectSwipe(dx, dy float64) Swipe {
	if math.IsNaN(dx) || math.IsNaN(dy) {
		return NoSwipe
	}
	ax, ay := math.Abs(dx), math.Abs(dy)
	if ax <= SwipeThreshold || ax <= ay {
		return NoSwipe
	}
	if dx > 0 {
		return SwipePrevious
	}
	return SwipeNext
}

// ParseSwipe reads dx and dy from a query, treating missing values as zero.
func ParseSwipe(q url.Values) Swipe {
	dx, _ := strconv.ParseFloat(q.Get("dx"), 64)
	dy, _ := strconv.ParseFloat(q.Get("dy"), 64)
	return DetectSwipe(dx, dy)
}
