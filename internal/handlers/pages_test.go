package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/config"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/middleware"
	"github.com/mbarnig/ki-leierbud-knowledge-3-7-2025/internal/theme"
)

func TestNewPageDataDefaults(t *testing.T) {
	p := NewPageData("Title", "en", "/", AnalyticsFrom(config.AnalyticsConfig{}))
	require.Equal(t, theme.Default, p.Palette.Scheme)
	require.False(t, p.Analytics.Enabled())
	require.Empty(t, p.Notices)
}

func TestNotices(t *testing.T) {
	p := NewPageData("Title", "en", "/", Analytics{GA4MeasurementID: "G-TEST"})
	require.True(t, p.Analytics.Enabled())
	p.AddNotice("info", "")
	p.AddFlash(middleware.Flash{Level: "warning", Message: "hidden"}, false)
	p.AddFlash(middleware.Flash{Level: "warning", Message: "shown"}, true)
	p.AddJSONLD("")
	p.AddJSONLD(`{"@type":"Article"}`)
	require.Equal(t, []Notice{{Level: "warning", Message: "shown"}}, p.Notices)
	require.Len(t, p.JSONLD, 1)
}
