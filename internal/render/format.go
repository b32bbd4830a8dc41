package render

import (
	"fmt"
	"strings"
	"sync"
	"time"
	// time/tzdata guarantees America/New_York resolves on zoneless hosts.
	_ "time/tzdata"
)

// htmlEscaper makes cell text safe inside an HTML-in-Markdown table:
// markup characters and the column separator are entity-escaped, line
// breaks and tabs collapse to spaces.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
	"|", "&#124;",
	"\n", " ",
	"\r", " ",
	"\t", " ",
)

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// formatSeconds renders a duration as h:mm:ss, or m:ss under an hour.
// Negative means unknown and renders "?".
func formatSeconds(sec float64) string {
	if sec < 0 {
		return "?"
	}
	total := int64(sec + 0.5)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

var (
	easternOnce sync.Once
	easternLoc  *time.Location
)

func eastern() *time.Location {
	easternOnce.Do(func() {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			loc = time.UTC
		}
		easternLoc = loc
	})
	return easternLoc
}

// formatEastern renders an epoch for the report's "When (ET)" column,
// e.g. "Mar 01, 2026 07:04 PM EST".
func formatEastern(epoch int64) string {
	return time.Unix(epoch, 0).In(eastern()).Format("Jan 02, 2006 03:04 PM MST")
}
