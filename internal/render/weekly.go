package render

import (
	"fmt"
	"strings"

	"github.com/okian/podium/internal/domain/model"
)

// Weekly renders the one-shot current-records table. Unlike the daily
// report this is plain Markdown: raw UTC timestamps, no HTML cells.
func Weekly(attempts []model.Attempt, days int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "### Current #1 records verified in the last %d days\n\n", days)

	if len(attempts) == 0 {
		fmt.Fprintf(&sb, "_No current #1 records found in the last %d days (or API throttled)._ \n", days)
		return sb.String()
	}

	sb.WriteString("| Verified (UTC) | Game | Category | Level | Time | Runner(s) | Link |\n")
	sb.WriteString("|---|---|---|---|---:|---|---|\n")

	for i := range attempts {
		a := &attempts[i]
		fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s | %s | %s |\n",
			a.VerifiedISO,
			a.GameName,
			a.CategoryName,
			levelDisplay(a),
			formatSeconds(a.Duration),
			a.PlayerNames(),
			a.Weblink)
	}

	sb.WriteString("\n_Last updated: via GitHub Actions UTC_\n")
	return sb.String()
}

// levelDisplay prefers the level name, keeps the raw id when the embed
// carried no name, and stays empty for full-game runs.
func levelDisplay(a *model.Attempt) string {
	if a.LevelID == "" {
		return ""
	}
	if a.LevelName != "" {
		return a.LevelName
	}
	return a.LevelID
}
