package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/slamweb/slam/internal/domain/model"
	"github.com/slamweb/slam/internal/domain/sport"
	"github.com/slamweb/slam/pkg/metrics"
)

func newDraft() *model.Draft {
	return &model.Draft{
		Origin: model.OriginBlank,
		Sport:  &sport.Sport{Type: "Swimming", Extra: &sport.SwimmingExtra{MainStroke: sport.StrokeUnknown}},
	}
}

func TestMemoryStore(t *testing.T) {
	Convey("Given a draft store with a fake clock", t, func() {
		ctx := context.Background()
		now := time.Unix(1_700_000_000, 0)
		store := NewMemoryStore(ctx, WithCapacity(3), WithClock(func() time.Time { return now }))
		defer store.Close()

		Convey("Create assigns an id and timestamps", func() {
			d, err := store.Create(ctx, newDraft())
			So(err, ShouldBeNil)
			So(d.ID, ShouldNotBeEmpty)
			So(d.CreatedAt, ShouldEqual, now)
			So(store.Count(ctx), ShouldEqual, 1)

			got, err := store.Get(ctx, d.ID)
			So(err, ShouldBeNil)
			So(got.Sport.Type, ShouldEqual, "Swimming")
		})

		Convey("Returned drafts are copies", func() {
			d, _ := store.Create(ctx, newDraft())
			d.Sport.Calories = 999
			d.Sport.Extra.(*sport.SwimmingExtra).StrokeAvg = 7
			got, _ := store.Get(ctx, d.ID)
			So(got.Sport.Calories, ShouldEqual, 0)
			So(got.Sport.Extra.(*sport.SwimmingExtra).StrokeAvg, ShouldEqual, 0)
		})

		Convey("Update stores the result of fn and bumps UpdatedAt", func() {
			d, _ := store.Create(ctx, newDraft())
			now = now.Add(time.Minute)
			updated, err := store.Update(ctx, d.ID, func(d *model.Draft) error {
				d.Sport.Calories = 120
				d.ID = "hijacked"
				return nil
			})
			So(err, ShouldBeNil)
			So(updated.ID, ShouldEqual, d.ID)
			So(updated.Sport.Calories, ShouldEqual, 120)
			So(updated.UpdatedAt, ShouldEqual, now)
			So(updated.CreatedAt, ShouldEqual, d.CreatedAt)
		})

		Convey("A failing update leaves the draft untouched", func() {
			d, _ := store.Create(ctx, newDraft())
			boom := errors.New("boom")
			_, err := store.Update(ctx, d.ID, func(d *model.Draft) error {
				d.Sport.Calories = 5
				return boom
			})
			So(err, ShouldEqual, boom)
			got, _ := store.Get(ctx, d.ID)
			So(got.Sport.Calories, ShouldEqual, 0)
		})

		Convey("Unknown ids are not found", func() {
			_, err := store.Get(ctx, "nope")
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
			So(errors.Is(store.Delete(ctx, "nope"), ErrNotFound), ShouldBeTrue)
			_, err = store.Update(ctx, "nope", func(*model.Draft) error { return nil })
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("Drafts without a record are rejected", func() {
			_, err := store.Create(ctx, &model.Draft{})
			So(errors.Is(err, ErrInvalidDraft), ShouldBeTrue)
		})

		Convey("The store refuses drafts beyond its capacity", func() {
			for i := 0; i < 3; i++ {
				_, err := store.Create(ctx, newDraft())
				So(err, ShouldBeNil)
			}
			_, err := store.Create(ctx, newDraft())
			So(errors.Is(err, ErrCapacity), ShouldBeTrue)
		})

		Convey("List is ordered by most recent update", func() {
			a, _ := store.Create(ctx, newDraft())
			now = now.Add(time.Second)
			b, _ := store.Create(ctx, newDraft())
			now = now.Add(time.Second)
			_, _ = store.Update(ctx, a.ID, func(*model.Draft) error { return nil })
			list := store.List(ctx)
			So(len(list), ShouldEqual, 2)
			So(list[0].ID, ShouldEqual, a.ID)
			So(list[1].ID, ShouldEqual, b.ID)

			So(store.Delete(ctx, a.ID), ShouldBeNil)
			So(store.Count(ctx), ShouldEqual, 1)
		})
	})
}

func TestMemoryStoreMetricsInterval(t *testing.T) {
	Convey("Given stores with and without an explicit metrics interval", t, func() {
		ctx := context.Background()
		def := NewMemoryStore(ctx)
		defer def.Close()
		custom := NewMemoryStore(ctx, WithMetricsUpdateInterval(time.Second))
		defer custom.Close()

		So(def.metricsUpdateInterval, ShouldEqual, metrics.RefreshInterval())
		So(custom.metricsUpdateInterval, ShouldEqual, time.Second)
	})
}

func TestMemoryStoreConcurrency(t *testing.T) {
	Convey("Concurrent updates are serialized", t, func() {
		ctx := context.Background()
		store := NewMemoryStore(ctx, WithCapacity(0))
		defer store.Close()
		d, err := store.Create(ctx, newDraft())
		So(err, ShouldBeNil)

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = store.Update(ctx, d.ID, func(d *model.Draft) error {
					d.Sport.Calories++
					return nil
				})
			}()
		}
		wg.Wait()
		got, _ := store.Get(ctx, d.ID)
		So(got.Sport.Calories, ShouldEqual, 50)
	})
}

func TestJobTable(t *testing.T) {
	Convey("Given a job table", t, func() {
		ctx := context.Background()
		jobs := NewJobTable(WithMaxJobs(2))

		Convey("A job moves from pending to done", func() {
			st, err := jobs.Put(ctx, "j1")
			So(err, ShouldBeNil)
			So(st.Status, ShouldEqual, model.JobPending)

			_, err = jobs.Put(ctx, "j1")
			So(errors.Is(err, ErrJobExists), ShouldBeTrue)

			So(jobs.SetRunning(ctx, "j1"), ShouldBeNil)
			So(jobs.SetResult(ctx, "j1", "d1", "r1"), ShouldBeNil)
			st, err = jobs.Get(ctx, "j1")
			So(err, ShouldBeNil)
			So(st.Status, ShouldEqual, model.JobDone)
			So(st.DraftID, ShouldEqual, "d1")
			So(st.RequestID, ShouldEqual, "r1")

			Convey("and then no longer changes", func() {
				err := jobs.SetError(ctx, "j1", "r1", "late")
				So(errors.Is(err, ErrJobFinished), ShouldBeTrue)
			})
		})

		Convey("A failed job keeps its message", func() {
			_, _ = jobs.Put(ctx, "j2")
			So(jobs.SetError(ctx, "j2", "r2", "model busy"), ShouldBeNil)
			st, _ := jobs.Get(ctx, "j2")
			So(st.Status, ShouldEqual, model.JobFailed)
			So(st.Error, ShouldEqual, "model busy")
		})

		Convey("Unknown jobs are not found", func() {
			_, err := jobs.Get(ctx, "nope")
			So(errors.Is(err, ErrJobNotFound), ShouldBeTrue)
			So(errors.Is(jobs.SetRunning(ctx, "nope"), ErrJobNotFound), ShouldBeTrue)
		})

		Convey("Finished jobs are forgotten before pending ones", func() {
			_, _ = jobs.Put(ctx, "old-pending")
			_, _ = jobs.Put(ctx, "done")
			So(jobs.SetResult(ctx, "done", "d", "r"), ShouldBeNil)
			_, _ = jobs.Put(ctx, "new")
			So(jobs.Count(ctx), ShouldEqual, 2)
			_, err := jobs.Get(ctx, "old-pending")
			So(err, ShouldBeNil)
			_, err = jobs.Get(ctx, "done")
			So(errors.Is(err, ErrJobNotFound), ShouldBeTrue)

			Convey("and the oldest job goes when all are in flight", func() {
				_, _ = jobs.Put(ctx, fmt.Sprintf("j-%d", 3))
				_, err := jobs.Get(ctx, "old-pending")
				So(errors.Is(err, ErrJobNotFound), ShouldBeTrue)
				So(jobs.Count(ctx), ShouldEqual, 2)
			})
		})
	})
}
