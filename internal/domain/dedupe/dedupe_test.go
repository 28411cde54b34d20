package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/slamweb/slam/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		So(d.Size(), ShouldEqual, 0)

		Convey("When a fingerprint is claimed for the first time", func() {
			owner, dup := d.Claim(ctx, "fp-1", "job-1")

			Convey("Then the claimant owns it", func() {
				So(dup, ShouldBeFalse)
				So(owner, ShouldEqual, "job-1")
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And a second claim returns the first owner", func() {
				owner, dup := d.Claim(ctx, "fp-1", "job-2")
				So(dup, ShouldBeTrue)
				So(owner, ShouldEqual, "job-1")
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And after release it can be claimed again", func() {
				d.Release(ctx, "fp-1")
				So(d.Size(), ShouldEqual, 0)
				_, ok := d.Owner(ctx, "fp-1")
				So(ok, ShouldBeFalse)

				owner, dup := d.Claim(ctx, "fp-1", "job-3")
				So(dup, ShouldBeFalse)
				So(owner, ShouldEqual, "job-3")
			})
		})

		Convey("When more claims than the bound are made", func() {
			for i := 0; i < 4; i++ {
				d.Claim(ctx, fmt.Sprintf("fp-%d", i), fmt.Sprintf("job-%d", i))
			}

			Convey("Then the oldest claim is evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				_, ok := d.Owner(ctx, "fp-0")
				So(ok, ShouldBeFalse)
				owner, ok := d.Owner(ctx, "fp-3")
				So(ok, ShouldBeTrue)
				So(owner, ShouldEqual, "job-3")
			})
		})

		Convey("When releasing an unknown fingerprint", func() {
			d.Release(ctx, "missing")
			So(d.Size(), ShouldEqual, 0)
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
		for i := 0; i < 2000; i++ {
			d.Claim(ctx, fmt.Sprintf("fp-%d", i), "job")
		}
		So(d.Size(), ShouldEqual, 2000)
	})

	Convey("Given concurrent claims of the same fingerprint", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var wg sync.WaitGroup
		var mu sync.Mutex
		winners := 0
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if _, dup := d.Claim(ctx, "same", fmt.Sprintf("job-%d", i)); !dup {
					mu.Lock()
					winners++
					mu.Unlock()
				}
			}(i)
		}
		wg.Wait()
		So(winners, ShouldEqual, 1)
	})
}

func TestFingerprint(t *testing.T) {
	Convey("Fingerprints depend on content and split", t, func() {
		a := dedupe.Fingerprint([]byte("ab"), []byte("c"))
		So(a, ShouldEqual, dedupe.Fingerprint([]byte("ab"), []byte("c")))
		So(a, ShouldNotEqual, dedupe.Fingerprint([]byte("a"), []byte("bc")))
		So(a, ShouldNotEqual, dedupe.Fingerprint([]byte("c"), []byte("ab")))
		So(len(a), ShouldEqual, 64)
	})
}
