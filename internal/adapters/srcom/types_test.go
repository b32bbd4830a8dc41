package srcom

import (
	"encoding/json"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseVerifyDate(t *testing.T) {
	Convey("Given verification timestamps in upstream shapes", t, func() {
		Convey("When the timestamp is plain UTC", func() {
			got, ok := parseVerifyDate("2025-08-20T14:03:22Z")

			So(ok, ShouldBeTrue)
			So(got.Equal(time.Date(2025, 8, 20, 14, 3, 22, 0, time.UTC)), ShouldBeTrue)
		})

		Convey("When the timestamp carries fractional seconds", func() {
			got, ok := parseVerifyDate("2025-08-20T14:03:22.284Z")

			So(ok, ShouldBeTrue)
			So(got.Equal(time.Date(2025, 8, 20, 14, 3, 22, 0, time.UTC)), ShouldBeTrue)
		})

		Convey("When fractional seconds precede a numeric offset", func() {
			// Everything after the fraction is discarded, so the offset is
			// read as UTC. Matches how the persisted log has always been
			// built.
			got, ok := parseVerifyDate("2025-08-20T14:03:22.5+02:00")

			So(ok, ShouldBeTrue)
			So(got.Equal(time.Date(2025, 8, 20, 14, 3, 22, 0, time.UTC)), ShouldBeTrue)
		})

		Convey("When a numeric offset appears without a fraction", func() {
			_, ok := parseVerifyDate("2025-08-20T14:03:22+02:00")

			So(ok, ShouldBeFalse)
		})

		Convey("When the timestamp is empty or garbage", func() {
			_, emptyOK := parseVerifyDate("")
			_, garbageOK := parseVerifyDate("yesterday")

			So(emptyOK, ShouldBeFalse)
			So(garbageOK, ShouldBeFalse)
		})
	})
}

func TestDecodeResource(t *testing.T) {
	Convey("Given resource fields in their wire forms", t, func() {
		Convey("When the field is a plain id string", func() {
			id, name, data := decodeResource(json.RawMessage(`"om1m3625"`))

			So(id, ShouldEqual, "om1m3625")
			So(name, ShouldBeEmpty)
			So(data, ShouldBeNil)
		})

		Convey("When the field is embedded with an international name", func() {
			id, name, _ := decodeResource(json.RawMessage(
				`{"data": {"id": "om1m3625", "names": {"international": "Super Mario Bros."}}}`))

			So(id, ShouldEqual, "om1m3625")
			So(name, ShouldEqual, "Super Mario Bros.")
		})

		Convey("When both name forms are present", func() {
			_, name, _ := decodeResource(json.RawMessage(
				`{"data": {"id": "xd4e80wm", "name": "World 1-1", "names": {"international": "W1-1"}}}`))

			So(name, ShouldEqual, "World 1-1")
		})

		Convey("When the field is null or an empty embed", func() {
			nullID, _, _ := decodeResource(json.RawMessage(`null`))
			emptyID, _, _ := decodeResource(json.RawMessage(`{"data": []}`))
			absentID, _, _ := decodeResource(nil)

			So(nullID, ShouldBeEmpty)
			So(emptyID, ShouldBeEmpty)
			So(absentID, ShouldBeEmpty)
		})
	})
}

func TestToAttemptDefaults(t *testing.T) {
	Convey("Given a run with no times block", t, func() {
		var run runJSON
		So(json.Unmarshal([]byte(`{"id": "r1", "status": {"status": "verified"}}`), &run), ShouldBeNil)

		Convey("When it is flattened", func() {
			a := run.toAttempt()

			Convey("Then the duration is the unknown marker", func() {
				So(a.Duration, ShouldEqual, -1)
				So(a.HasDuration(), ShouldBeFalse)
			})

			Convey("Then the verification time is zero", func() {
				So(a.HasVerifiedAt(), ShouldBeFalse)
			})
		})
	})

	Convey("Given a run with an explicit zero duration", t, func() {
		var run runJSON
		So(json.Unmarshal([]byte(`{"id": "r1", "times": {"primary_t": 0}}`), &run), ShouldBeNil)

		Convey("When it is flattened", func() {
			a := run.toAttempt()

			Convey("Then zero is kept, not treated as unknown", func() {
				So(a.Duration, ShouldEqual, 0)
				So(a.HasDuration(), ShouldBeTrue)
			})
		})
	})

	Convey("Given players in guest and user forms", t, func() {
		var run runJSON
		payload := `{"id": "r1", "players": {"data": [
			{"rel": "user", "id": "zx7gd448"},
			{"rel": "guest", "name": "Casual Carl"},
			{"rel": "user"}
		]}}`
		So(json.Unmarshal([]byte(payload), &run), ShouldBeNil)

		Convey("When it is flattened", func() {
			a := run.toAttempt()

			Convey("Then names fall back id-first, then to unknown", func() {
				So(a.Players, ShouldHaveLength, 3)
				So(a.Players[0].Name, ShouldEqual, "zx7gd448")
				So(a.Players[1].Name, ShouldEqual, "Casual Carl")
				So(a.Players[2].Name, ShouldEqual, "unknown")
			})
		})
	})
}
