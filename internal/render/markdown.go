// Package render writes the record log as Markdown. The daily report
// uses HTML-in-Markdown cells (cover art, avatars); only the
// Subcategory column is truncated.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/podium/internal/adapters/srcom"
	"github.com/okian/podium/internal/domain/model"
)

// subcatMaxChars bounds the Subcategory column; longer values are
// truncated with the full text kept in the title attribute.
const subcatMaxChars = 20

// Daily renders the full report: a heading plus one table per window.
// events must already be ordered newest first.
func Daily(events []model.RecordEvent, now time.Time, reportWindow, retention time.Duration) string {
	var sb strings.Builder
	sb.WriteString("## 🏁 Live #1 Records\n\n")
	sb.WriteString("_Updated hourly via GitHub Actions._\n\n")

	section(&sb, sectionTitle(reportWindow), events, now.Add(-reportWindow).Unix())
	section(&sb, sectionTitle(retention), events, now.Add(-retention).Unix())
	return sb.String()
}

func sectionTitle(window time.Duration) string {
	switch window {
	case time.Hour:
		return "Past hour"
	case 24 * time.Hour:
		return "Past 24 hours"
	}
	if window > 0 && window%time.Hour == 0 {
		return fmt.Sprintf("Past %d hours", int(window/time.Hour))
	}
	return "Past " + window.String()
}

// section writes one titled table holding every event verified at or
// after the cutoff.
func section(sb *strings.Builder, title string, events []model.RecordEvent, cutoffEpoch int64) {
	fmt.Fprintf(sb, "### %s\n\n", title)

	sb.WriteString("| <sub>When (ET)</sub> | <sub>Game</sub> | <sub>Category</sub> | <sub>Subcategory</sub> | <sub>Level</sub> | <sub>Time</sub> | <sub>Runner(s)</sub> | <sub>Link</sub> |\n")
	sb.WriteString("|---|---|---|---|---|---:|---|---|\n")

	printed := 0
	for i := range events {
		e := &events[i]
		if e.VerifiedEpoch < cutoffEpoch {
			continue
		}

		sb.WriteString("| ")
		plainSubCell(sb, formatEastern(e.VerifiedEpoch))
		sb.WriteString(" | ")
		gameCell(sb, e.Game, e.GameCover)
		sb.WriteString(" | ")
		plainSubCell(sb, e.Category)
		sb.WriteString(" | ")
		subcatCell(sb, e.Subcats, subcatMaxChars)
		sb.WriteString(" | ")
		plainSubCell(sb, e.Level)
		sb.WriteString(" | <sub>")
		sb.WriteString(escapeHTML(formatSeconds(e.PrimaryT)))
		sb.WriteString("</sub> | ")
		runnersCell(sb, e.PlayersData, e.Players)
		sb.WriteString(" | ")
		linkCell(sb, e.Weblink)
		sb.WriteString(" |\n")
		printed++
	}

	if printed == 0 {
		sb.WriteString("| <sub>—</sub> | <em>None</em> |  |  |  |  |  |  |\n")
	}

	sb.WriteString("\n")
}

func plainSubCell(sb *strings.Builder, s string) {
	sb.WriteString("<sub>")
	sb.WriteString(escapeHTML(s))
	sb.WriteString("</sub>")
}

// subcatCell truncates byte-wise, backing up to the nearest rune start
// so a multi-byte character is never torn; the untruncated text rides
// along in the title attribute.
func subcatCell(sb *strings.Builder, s string, maxChars int) {
	sb.WriteString(`<sub><span title="`)
	sb.WriteString(escapeHTML(s))
	sb.WriteString(`">`)

	if maxChars <= 0 || len(s) <= maxChars {
		sb.WriteString(escapeHTML(s))
	} else {
		take := maxChars - 1
		end := take
		for end > 0 && (s[end]&0xC0) == 0x80 {
			end--
		}
		if end <= 0 {
			end = take
		}
		sb.WriteString(escapeHTML(s[:end]))
		sb.WriteString("…")
	}

	sb.WriteString("</span></sub>")
}

// gameCell stacks the cover image above the game name. Covers stored by
// earlier versions may predate link normalization, so it is re-applied.
func gameCell(sb *strings.Builder, name, cover string) {
	cover = srcom.NormalizeCoverURI(cover)

	sb.WriteString(`<div style="text-align:center;">`)
	if cover != "" {
		sb.WriteString(`<img src="`)
		sb.WriteString(escapeHTML(cover))
		sb.WriteString(`" alt="" width="60" style="display:block; margin:0 auto 4px auto;"/>`)
		sb.WriteString("<br/>")
	} else {
		sb.WriteString("<br/>")
	}
	sb.WriteString("<sub>")
	sb.WriteString(escapeHTML(name))
	sb.WriteString("</sub>")
	sb.WriteString("</div>")
}

// runnersCell shows linked avatars when player details are present and
// falls back to the joined name list.
func runnersCell(sb *strings.Builder, players []model.Player, fallback string) {
	if len(players) == 0 {
		plainSubCell(sb, fallback)
		return
	}

	sb.WriteString(`<div style="display:flex; gap:6px; justify-content:center; align-items:flex-start;">`)
	for _, p := range players {
		name := p.Name
		if name == "" {
			name = "unknown"
		}

		sb.WriteString(`<div style="text-align:center;">`)
		if p.Image != "" {
			if p.Weblink != "" {
				sb.WriteString(`<a href="`)
				sb.WriteString(escapeHTML(p.Weblink))
				sb.WriteString(`">`)
			}
			sb.WriteString(`<img src="`)
			sb.WriteString(escapeHTML(p.Image))
			sb.WriteString(`" alt="" width="40" style="display:block; margin:0 auto 4px auto; border-radius:50%;"/>`)
			if p.Weblink != "" {
				sb.WriteString("</a>")
			}
			sb.WriteString("<br/>")
		} else {
			sb.WriteString("<br/>")
		}
		sb.WriteString("<sub>")
		sb.WriteString(escapeHTML(name))
		sb.WriteString("</sub>")
		sb.WriteString("</div>")
	}
	sb.WriteString("</div>")
}

func linkCell(sb *strings.Builder, weblink string) {
	if weblink == "" {
		sb.WriteString("<sub>&nbsp;</sub>")
		return
	}
	sb.WriteString(`<sub><a href="`)
	sb.WriteString(escapeHTML(weblink))
	sb.WriteString(`">link</a></sub>`)
}
