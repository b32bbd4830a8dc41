package srcom_test

import (
	"testing"

	srcom "github.com/okian/podium/internal/adapters/srcom"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalizeCoverURI(t *testing.T) {
	Convey("Given game cover links in upstream shapes", t, func() {
		cases := []struct {
			about string
			in    string
			want  string
		}{
			{
				about: "extensionless cover with query gains .png before the query",
				in:    "https://www.speedrun.com/gameasset/om1m3625/cover?v=abc",
				want:  "https://www.speedrun.com/gameasset/om1m3625/cover.png?v=abc",
			},
			{
				about: "extensionless cover without query gains .png",
				in:    "https://www.speedrun.com/gameasset/om1m3625/cover",
				want:  "https://www.speedrun.com/gameasset/om1m3625/cover.png",
			},
			{
				about: "plain http is upgraded",
				in:    "http://www.speedrun.com/gameasset/om1m3625/cover?v=1",
				want:  "https://www.speedrun.com/gameasset/om1m3625/cover.png?v=1",
			},
			{
				about: "already normalized links pass through",
				in:    "https://www.speedrun.com/gameasset/om1m3625/cover.png?v=abc",
				want:  "https://www.speedrun.com/gameasset/om1m3625/cover.png?v=abc",
			},
			{
				about: "links without a cover segment pass through",
				in:    "https://cdn.example.com/art/box.jpg",
				want:  "https://cdn.example.com/art/box.jpg",
			},
			{
				about: "empty input stays empty",
				in:    "",
				want:  "",
			},
		}

		for _, tc := range cases {
			Convey("Then "+tc.about, func() {
				So(srcom.NormalizeCoverURI(tc.in), ShouldEqual, tc.want)
			})
		}
	})
}

func TestNormalizeUserImageURI(t *testing.T) {
	Convey("Given user avatar links in upstream shapes", t, func() {
		cases := []struct {
			about string
			in    string
			want  string
		}{
			{
				about: "extensionless avatar with query gains .png before the query",
				in:    "https://www.speedrun.com/static/user/abc/image?v=123",
				want:  "https://www.speedrun.com/static/user/abc/image.png?v=123",
			},
			{
				about: "bare avatar gains .png",
				in:    "http://www.speedrun.com/static/user/abc/image",
				want:  "https://www.speedrun.com/static/user/abc/image.png",
			},
			{
				about: "fragment suffixes are preserved",
				in:    "https://www.speedrun.com/static/user/abc/image#main",
				want:  "https://www.speedrun.com/static/user/abc/image.png#main",
			},
			{
				about: "already normalized avatars pass through",
				in:    "https://www.speedrun.com/static/user/abc/image.png?v=9",
				want:  "https://www.speedrun.com/static/user/abc/image.png?v=9",
			},
			{
				about: "image as a path prefix is left alone",
				in:    "https://cdn.example.com/images/foo.jpg",
				want:  "https://cdn.example.com/images/foo.jpg",
			},
			{
				about: "only the last image segment is rewritten",
				in:    "https://cdn.example.com/image/user/image",
				want:  "https://cdn.example.com/image/user/image.png",
			},
			{
				about: "links without an image segment pass through",
				in:    "https://cdn.example.com/avatar.gif",
				want:  "https://cdn.example.com/avatar.gif",
			},
		}

		for _, tc := range cases {
			Convey("Then "+tc.about, func() {
				So(srcom.NormalizeUserImageURI(tc.in), ShouldEqual, tc.want)
			})
		}
	})
}
