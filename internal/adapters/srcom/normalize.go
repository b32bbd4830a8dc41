package srcom

import "strings"

func forceHTTPS(uri string) string {
	if strings.HasPrefix(uri, "http://") {
		return "https://" + strings.TrimPrefix(uri, "http://")
	}
	return uri
}

// NormalizeCoverURI forces https and rewrites ".../cover?..." asset paths
// to ".../cover.png?..." so they render inline. Links that already carry
// the extension pass through untouched.
func NormalizeCoverURI(uri string) string {
	if uri == "" {
		return ""
	}

	out := forceHTTPS(uri)
	idx := strings.Index(out, "/cover")
	if idx < 0 {
		return out
	}

	rest := out[idx+len("/cover"):]
	if strings.HasPrefix(rest, ".png") {
		return out
	}
	return out[:idx+len("/cover")] + ".png" + rest
}

// NormalizeUserImageURI forces https and appends ".png" to the last
// "/image" path segment of avatar links. The rewrite only applies when the
// segment ends the path or is followed by a query or fragment; anything
// else passes through.
func NormalizeUserImageURI(uri string) string {
	if uri == "" {
		return ""
	}

	out := forceHTTPS(uri)
	idx := strings.LastIndex(out, "/image")
	if idx < 0 {
		return out
	}

	rest := out[idx+len("/image"):]
	if strings.HasPrefix(rest, ".png") {
		return out
	}
	if rest == "" || rest[0] == '?' || rest[0] == '#' {
		return out[:idx+len("/image")] + ".png" + rest
	}
	return out
}
