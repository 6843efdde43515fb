package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ravushimo/gunsmoke-scanner/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func ranked() []model.RankedRecord {
	return []model.RankedRecord{
		{Rank: 1, PlayerRecord: model.PlayerRecord{Season: 17, IGN: "枪火玩家", TopScore: 6596, TotalScore: 98000}},
		{Rank: 2, PlayerRecord: model.PlayerRecord{Season: 17, IGN: "Bravo", TopScore: 2100, TotalScore: 87500}},
	}
}

func TestWriteCSV(t *testing.T) {
	Convey("Given a ranked snapshot", t, func() {
		var buf bytes.Buffer

		Convey("When writing without a guild rank", func() {
			So(WriteCSV(&buf, ranked(), ""), ShouldBeNil)

			Convey("Then the output should start with a BOM and the header", func() {
				So(bytes.HasPrefix(buf.Bytes(), utf8BOM), ShouldBeTrue)
				rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(utf8BOM):])).ReadAll()
				So(err, ShouldBeNil)
				So(rows[0], ShouldResemble, Header)
				So(rows[1], ShouldResemble, []string{"1", "17", "枪火玩家", "6596", "98000"})
				So(rows[2], ShouldResemble, []string{"2", "17", "Bravo", "2100", "87500"})
			})
		})

		Convey("When writing with a guild rank", func() {
			So(WriteCSV(&buf, ranked(), "12"), ShouldBeNil)

			Convey("Then only the first row should carry it", func() {
				rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(utf8BOM):])).ReadAll()
				So(err, ShouldBeNil)
				So(rows[0][5], ShouldEqual, "guildrank")
				So(rows[1][5], ShouldEqual, "12")
				So(rows[2][5], ShouldEqual, "")
			})
		})
	})
}

func TestWriterSave(t *testing.T) {
	Convey("Given a writer into a temporary directory", t, func() {
		dir := filepath.Join(t.TempDir(), "out")
		at := time.Date(2025, time.December, 2, 21, 5, 9, 0, time.UTC)
		w := NewWriter(WithDir(dir), WithPrefix("GS"), WithClock(func() time.Time { return at }))

		Convey("When saving a snapshot", func() {
			path, err := w.Save(17, ranked())

			Convey("Then a timestamped file should be created", func() {
				So(err, ShouldBeNil)
				So(filepath.Base(path), ShouldEqual, "GS_Season17_20251202_210509.csv")
				data, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(bytes.Contains(data, []byte("Bravo")), ShouldBeTrue)
			})
		})

		Convey("When there is nothing to save", func() {
			_, err := w.Save(17, nil)

			Convey("Then ErrEmpty should be returned", func() {
				So(err, ShouldEqual, ErrEmpty)
			})
		})
	})

	Convey("Given a default writer", t, func() {
		w := NewWriter()

		Convey("Then file names should follow the default prefix", func() {
			name := w.FileName(3, time.Date(2026, time.January, 5, 8, 0, 0, 0, time.UTC))
			So(name, ShouldEqual, "Gunsmoke_Season3_20260105_080000.csv")
		})
	})
}
