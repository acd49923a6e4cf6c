package model_test

import (
	"testing"

	model "github.com/okian/magicboard/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestActivityRecord_Roles(t *testing.T) {
	convey.Convey("Given an activity record with role tags", t, func() {
		convey.Convey("When the tags are comma separated with padding", func() {
			rec := model.ActivityRecord{Handle: "alice", RoleTags: " Team Lead ,Artist,, "}

			convey.Convey("Then roles should be trimmed and empty entries dropped", func() {
				convey.So(rec.Roles(), convey.ShouldResemble, []string{"Team Lead", "Artist"})
			})
		})

		convey.Convey("When the tags are blank", func() {
			rec := model.ActivityRecord{Handle: "bob", RoleTags: "   "}

			convey.Convey("Then there should be no roles", func() {
				convey.So(rec.Roles(), convey.ShouldBeNil)
			})
		})
	})
}

func TestActivityRecord_MatchesHandle(t *testing.T) {
	convey.Convey("Given a record stored with mixed case", t, func() {
		rec := model.ActivityRecord{Handle: "MagicMike"}

		convey.Convey("Then lookup should ignore case", func() {
			convey.So(rec.MatchesHandle("magicmike"), convey.ShouldBeTrue)
			convey.So(rec.MatchesHandle("MAGICMIKE"), convey.ShouldBeTrue)
			convey.So(rec.MatchesHandle("magicmik"), convey.ShouldBeFalse)
		})
	})
}
