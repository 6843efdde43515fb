package model_test

import (
	"image"
	"testing"

	model "github.com/ravushimo/gunsmoke-scanner/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestRowConfig(t *testing.T) {
	convey.Convey("Given a row configuration", t, func() {
		row := model.RowConfig{
			Nickname:   model.ScreenRegion{X: 10, Y: 20, Width: 100, Height: 30},
			SingleHigh: model.ScreenRegion{X: 200, Y: 20, Width: 60, Height: 30},
			TotalScore: model.ScreenRegion{X: 300, Y: 20, Width: 80, Height: 30},
		}

		convey.Convey("When looking up regions by role", func() {
			convey.Convey("Then every role should map to its own field", func() {
				convey.So(row.Region(model.FieldNickname), convey.ShouldResemble, row.Nickname)
				convey.So(row.Region(model.FieldSingleHigh), convey.ShouldResemble, row.SingleHigh)
				convey.So(row.Region(model.FieldTotalScore), convey.ShouldResemble, row.TotalScore)
			})
		})

		convey.Convey("When converting a region to a rectangle", func() {
			r := row.Nickname.Rect()

			convey.Convey("Then the corners should span width and height", func() {
				convey.So(r, convey.ShouldResemble, image.Rect(10, 20, 110, 50))
			})
		})
	})
}

func TestFieldRole(t *testing.T) {
	convey.Convey("Given the field roles", t, func() {
		convey.Convey("Then names should match the configuration keys", func() {
			convey.So(model.FieldNickname.String(), convey.ShouldEqual, "nickname")
			convey.So(model.FieldSingleHigh.String(), convey.ShouldEqual, "single_high")
			convey.So(model.FieldTotalScore.String(), convey.ShouldEqual, "total_score")
			convey.So(model.FieldRole(9).String(), convey.ShouldEqual, "unknown")
		})

		convey.Convey("Then only score fields should want digits", func() {
			convey.So(model.FieldNickname.Digits(), convey.ShouldBeFalse)
			convey.So(model.FieldSingleHigh.Digits(), convey.ShouldBeTrue)
			convey.So(model.FieldTotalScore.Digits(), convey.ShouldBeTrue)
		})

		convey.Convey("Then roles should be listed in capture order", func() {
			convey.So(len(model.Roles), convey.ShouldEqual, 3)
			convey.So(model.Roles[0], convey.ShouldEqual, model.FieldNickname)
		})
	})
}
