package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func appendAll(batch ...Record) Merge {
	return func([]Record) []Record { return batch }
}

func TestBufferStore(t *testing.T) {
	Convey("Given an empty buffer", t, func() {
		ctx := context.Background()
		s := NewBufferStore(WithCapacity(8))

		So(s.Count(ctx), ShouldEqual, 0)
		So(s.Records(ctx), ShouldBeEmpty)

		Convey("When committing a batch", func() {
			added := s.Commit(ctx, appendAll(
				Record{Season: 17, IGN: "alpha", TopScore: 3420, TotalScore: 90000},
				Record{Season: 17, IGN: "bravo", TopScore: 2100, TotalScore: 85000},
			))

			Convey("Then the records should be appended in order", func() {
				So(len(added), ShouldEqual, 2)
				So(s.Count(ctx), ShouldEqual, 2)
				So(s.Records(ctx)[1].IGN, ShouldEqual, "bravo")
			})

			Convey("And the merge should see the current buffer", func() {
				var seen []Record
				s.Commit(ctx, func(history []Record) []Record {
					seen = append(seen, history...)
					return nil
				})
				So(len(seen), ShouldEqual, 2)
				So(s.Count(ctx), ShouldEqual, 2)
			})

			Convey("And mutating the returned copy should not leak", func() {
				recs := s.Records(ctx)
				recs[0].IGN = "changed"
				So(s.Records(ctx)[0].IGN, ShouldEqual, "alpha")
			})
		})

		Convey("When editing a record", func() {
			s.Commit(ctx, appendAll(Record{Season: 17, IGN: "a1pha", TotalScore: 10}))

			Convey("Then a valid edit should replace it", func() {
				err := s.Update(ctx, 0, Record{Season: 17, IGN: "alpha", TotalScore: 10})
				So(err, ShouldBeNil)
				So(s.Records(ctx)[0].IGN, ShouldEqual, "alpha")
			})

			Convey("Then an out of range index should be rejected", func() {
				So(s.Update(ctx, 5, Record{Season: 17, IGN: "x"}), ShouldEqual, ErrNotFound)
				So(s.Update(ctx, -1, Record{Season: 17, IGN: "x"}), ShouldEqual, ErrNotFound)
			})

			Convey("Then an invalid record should be rejected", func() {
				So(s.Update(ctx, 0, Record{Season: 17, IGN: ""}), ShouldEqual, ErrInvalidRecord)
				So(s.Update(ctx, 0, Record{Season: 0, IGN: "x"}), ShouldEqual, ErrInvalidRecord)
				So(s.Update(ctx, 0, Record{Season: 17, IGN: "x", TotalScore: -1}), ShouldEqual, ErrInvalidRecord)
			})

			Convey("Then a nickname outside the cleaned charset should be rejected", func() {
				So(s.Update(ctx, 0, Record{Season: 17, IGN: "al pha!!"}), ShouldEqual, ErrInvalidRecord)
				So(s.Update(ctx, 0, Record{Season: 17, IGN: "bravo-1"}), ShouldEqual, ErrInvalidRecord)
				So(s.Records(ctx)[0].IGN, ShouldEqual, "a1pha")

				So(s.Update(ctx, 0, Record{Season: 17, IGN: "枪烟_7"}), ShouldBeNil)
				So(s.Records(ctx)[0].IGN, ShouldEqual, "枪烟_7")
			})
		})

		Convey("When clearing", func() {
			s.Commit(ctx, appendAll(Record{Season: 1, IGN: "a"}, Record{Season: 1, IGN: "b"}))
			n := s.Clear(ctx)

			Convey("Then everything should be removed", func() {
				So(n, ShouldEqual, 2)
				So(s.Count(ctx), ShouldEqual, 0)
			})
		})
	})
}

func TestExport(t *testing.T) {
	Convey("Given a buffer with repeats and ties", t, func() {
		ctx := context.Background()
		s := NewBufferStore()
		s.Commit(ctx, appendAll(
			Record{Season: 17, IGN: "carol", TotalScore: 500},
			Record{Season: 17, IGN: "alice", TotalScore: 700},
			Record{Season: 17, IGN: "bob", TotalScore: 500},
			Record{Season: 17, IGN: "alice", TotalScore: 9999},
			Record{Season: 17, IGN: "dave", TotalScore: 900},
		))

		Convey("When exporting", func() {
			out := s.Export(ctx)

			Convey("Then the first capture of each nickname should win", func() {
				So(len(out), ShouldEqual, 4)
				for _, r := range out {
					if r.IGN == "alice" {
						So(r.TotalScore, ShouldEqual, 700)
					}
				}
			})

			Convey("Then rows should be ordered by total with stable ties", func() {
				got := make([]string, len(out))
				for i, r := range out {
					got[i] = fmt.Sprintf("%d:%s", r.Rank, r.IGN)
				}
				So(got, ShouldResemble, []string{"1:dave", "2:alice", "3:carol", "4:bob"})
			})

			Convey("Then the buffer should be left untouched", func() {
				So(s.Count(ctx), ShouldEqual, 5)
				So(s.Records(ctx)[0].IGN, ShouldEqual, "carol")
			})
		})

		Convey("When the buffer is empty", func() {
			Convey("Then the snapshot should be empty", func() {
				So(Rank(nil), ShouldBeEmpty)
			})
		})
	})
}

func TestBufferConcurrency(t *testing.T) {
	Convey("Given concurrent writers and readers", t, func() {
		ctx := context.Background()
		s := NewBufferStore()
		const writers, perWriter = 8, 50

		var wg sync.WaitGroup
		for w := 0; w < writers; w++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				for i := 0; i < perWriter; i++ {
					s.Commit(ctx, appendAll(Record{Season: 1, IGN: fmt.Sprintf("p%d_%d", id, i)}))
					_ = s.Export(ctx)
				}
			}(w)
		}
		wg.Wait()

		Convey("Then no append should be lost", func() {
			So(s.Count(ctx), ShouldEqual, writers*perWriter)
			So(len(s.Export(ctx)), ShouldEqual, writers*perWriter)
		})
	})
}
