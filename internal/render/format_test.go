package render

import (
	"strings"
	"testing"
	"time"
)

func TestFormatSeconds(t *testing.T) {
	cases := []struct {
		sec  float64
		want string
	}{
		{-1, "?"},
		{0, "0:00"},
		{59.4, "0:59"},
		{59.5, "1:00"},
		{96, "1:36"},
		{3599, "59:59"},
		{3600, "1:00:00"},
		{3725.4, "1:02:05"},
		{36061, "10:01:01"},
	}
	for _, c := range cases {
		if got := formatSeconds(c.sec); got != c.want {
			t.Errorf("formatSeconds(%v) = %q, want %q", c.sec, got, c.want)
		}
	}
}

func TestEscapeHTML(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a&b", "a&amp;b"},
		{"<img>", "&lt;img&gt;"},
		{`"x"`, "&quot;x&quot;"},
		{"it's", "it&#39;s"},
		{"a|b", "a&#124;b"},
		{"a\nb\tc\r", "a b c "},
	}
	for _, c := range cases {
		if got := escapeHTML(c.in); got != c.want {
			t.Errorf("escapeHTML(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatEastern(t *testing.T) {
	cases := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2026, 1, 15, 13, 5, 0, 0, time.UTC), "Jan 15, 2026 08:05 AM EST"},
		{time.Date(2026, 7, 4, 16, 30, 0, 0, time.UTC), "Jul 04, 2026 12:30 PM EDT"},
	}
	for _, c := range cases {
		if got := formatEastern(c.at.Unix()); got != c.want {
			t.Errorf("formatEastern(%v) = %q, want %q", c.at, got, c.want)
		}
	}
}

func TestSectionTitle(t *testing.T) {
	cases := []struct {
		window time.Duration
		want   string
	}{
		{time.Hour, "Past hour"},
		{24 * time.Hour, "Past 24 hours"},
		{6 * time.Hour, "Past 6 hours"},
		{90 * time.Minute, "Past 1h30m0s"},
	}
	for _, c := range cases {
		if got := sectionTitle(c.window); got != c.want {
			t.Errorf("sectionTitle(%v) = %q, want %q", c.window, got, c.want)
		}
	}
}

func TestSubcatCellTruncation(t *testing.T) {
	renderCell := func(s string) string {
		var sb strings.Builder
		subcatCell(&sb, s, subcatMaxChars)
		return sb.String()
	}

	if got := renderCell("Easy"); got != `<sub><span title="Easy">Easy</span></sub>` {
		t.Errorf("short value altered: %q", got)
	}

	// Exactly at the limit passes through untouched.
	exact := "12345678901234567890"
	if got := renderCell(exact); !strings.Contains(got, ">"+exact+"<") {
		t.Errorf("boundary value truncated: %q", got)
	}

	// One past the limit keeps maxChars-1 bytes plus the ellipsis.
	long := "123456789012345678901"
	got := renderCell(long)
	if !strings.Contains(got, ">1234567890123456789…<") {
		t.Errorf("truncation wrong: %q", got)
	}
	if !strings.Contains(got, `title="`+long+`"`) {
		t.Errorf("full text missing from title: %q", got)
	}

	// The cut never lands inside a multi-byte character.
	accented := "123456789012345678é9999"
	if got := renderCell(accented); !strings.Contains(got, ">123456789012345678…<") {
		t.Errorf("multi-byte truncation wrong: %q", got)
	}

	// Escaping applies to both the body and the title attribute.
	piped := "a|bcdefghijklmnopqrstuvw"
	got = renderCell(piped)
	if !strings.Contains(got, `title="a&#124;bcdefghijklmnopqrstuvw"`) {
		t.Errorf("title not escaped: %q", got)
	}
	if !strings.Contains(got, ">a&#124;bcdefghijklmnopqr…<") {
		t.Errorf("body not escaped: %q", got)
	}
}
