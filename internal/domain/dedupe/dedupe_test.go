package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	dedupe "github.com/okian/arena/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should have default configuration", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When creating a deduper with custom options", func() {
			d := dedupe.NewInMemoryDeduper(
				dedupe.WithMaxSize(100),
			)

			Convey("Then it should have custom configuration", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording match ids", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the match is new", func() {
				seen := d.SeenAndRecord(context.Background(), "match-1")

				Convey("Then it should return false and record the match", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the match was already reported", func() {
				// First time
				d.SeenAndRecord(context.Background(), "match-1")

				// Second time
				seen := d.SeenAndRecord(context.Background(), "match-1")

				Convey("Then it should return true", func() {
					So(seen, ShouldBeTrue)
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And multiple matches are recorded", func() {
				ids := []string{"match-1", "match-2", "match-3", "match-4", "match-5"}

				for _, id := range ids {
					seen := d.SeenAndRecord(context.Background(), id)
					So(seen, ShouldBeFalse)
				}

				Convey("Then all matches should be recorded", func() {
					So(d.Size(), ShouldEqual, int64(len(ids)))

					// Check that all matches are seen
					for _, id := range ids {
						seen := d.SeenAndRecord(context.Background(), id)
						So(seen, ShouldBeTrue)
					}
				})
			})
		})

		Convey("When unrecording match ids", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the match exists", func() {
				// Record the match
				d.SeenAndRecord(context.Background(), "match-1")
				So(d.Size(), ShouldEqual, 1)

				// Unrecord the match
				d.Unrecord(context.Background(), "match-1")

				Convey("Then it should be removed", func() {
					So(d.Size(), ShouldEqual, 0)

					// Should not be seen anymore
					seen := d.SeenAndRecord(context.Background(), "match-1")
					So(seen, ShouldBeFalse)
				})
			})

			Convey("And the match doesn't exist", func() {
				// Try to unrecord non-existent match
				d.Unrecord(context.Background(), "nonexistent")

				Convey("Then it should not affect the size", func() {
					So(d.Size(), ShouldEqual, 0)
				})
			})

			Convey("And multiple matches are unrecorded", func() {
				ids := []string{"match-1", "match-2", "match-3"}

				// Record all matches
				for _, id := range ids {
					d.SeenAndRecord(context.Background(), id)
				}
				So(d.Size(), ShouldEqual, int64(len(ids)))

				// Unrecord all matches
				for _, id := range ids {
					d.Unrecord(context.Background(), id)
				}

				Convey("Then all matches should be removed", func() {
					So(d.Size(), ShouldEqual, 0)

					// Check that none are seen
					for _, id := range ids {
						seen := d.SeenAndRecord(context.Background(), id)
						So(seen, ShouldBeFalse)
					}
				})
			})
		})

		Convey("When using bounded mode with eviction", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))

			Convey("And the deduper is at capacity", func() {
				for _, id := range []string{"match-1", "match-2", "match-3"} {
					So(d.SeenAndRecord(context.Background(), id), ShouldBeFalse)
				}
				So(d.Size(), ShouldEqual, 3)

				seen := d.SeenAndRecord(context.Background(), "match-4")

				Convey("Then the oldest id should be evicted first", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 3)

					So(d.SeenAndRecord(context.Background(), "match-2"), ShouldBeTrue)
					So(d.SeenAndRecord(context.Background(), "match-3"), ShouldBeTrue)
					So(d.SeenAndRecord(context.Background(), "match-4"), ShouldBeTrue)

					// match-1 was evicted and is recorded anew, evicting match-2.
					So(d.SeenAndRecord(context.Background(), "match-1"), ShouldBeFalse)
					So(d.Size(), ShouldEqual, 3)
					So(d.SeenAndRecord(context.Background(), "match-3"), ShouldBeTrue)
				})
			})

			Convey("And an id is unrecorded before the ring wraps", func() {
				d.SeenAndRecord(context.Background(), "match-1")
				d.SeenAndRecord(context.Background(), "match-2")
				d.Unrecord(context.Background(), "match-1")

				Convey("Then it should be accepted again", func() {
					So(d.Size(), ShouldEqual, 1)
					So(d.SeenAndRecord(context.Background(), "match-1"), ShouldBeFalse)
					So(d.SeenAndRecord(context.Background(), "match-2"), ShouldBeTrue)
					So(d.Size(), ShouldEqual, 2)
				})
			})
		})

		Convey("When using unbounded mode", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))

			Convey("And many matches are recorded", func() {
				const numMatches = 1000
				for i := 0; i < numMatches; i++ {
					matchID := fmt.Sprintf("match-%d", i)
					seen := d.SeenAndRecord(context.Background(), matchID)
					So(seen, ShouldBeFalse)
				}

				Convey("Then all matches should be recorded without eviction", func() {
					So(d.Size(), ShouldEqual, int64(numMatches))

					// Check that all matches are seen
					for i := 0; i < numMatches; i++ {
						matchID := fmt.Sprintf("match-%d", i)
						seen := d.SeenAndRecord(context.Background(), matchID)
						So(seen, ShouldBeTrue)
					}
				})
			})
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given a deduper with concurrent access", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1000))
		const numGoroutines = 10
		const matchesPerGoroutine = 100

		Convey("When multiple goroutines record matches concurrently", func() {
			var wg sync.WaitGroup
			errors := make(chan error, numGoroutines)

			for i := 0; i < numGoroutines; i++ {
				wg.Add(1)
				go func(goroutineID int) {
					defer wg.Done()
					for j := 0; j < matchesPerGoroutine; j++ {
						matchID := fmt.Sprintf("match-%d-%d", goroutineID, j)
						// This should not panic or cause race conditions
						d.SeenAndRecord(context.Background(), matchID)
					}
				}(i)
			}

			wg.Wait()
			close(errors)

			Convey("Then all matches should be recorded successfully", func() {
				So(d.Size(), ShouldEqual, int64(numGoroutines*matchesPerGoroutine))

				// Check for any errors
				for err := range errors {
					So(err, ShouldBeNil)
				}
			})
		})

		Convey("When multiple goroutines unrecord matches concurrently", func() {
			// First, record some matches
			const numMatches = 500
			for i := 0; i < numMatches; i++ {
				matchID := fmt.Sprintf("match-%d", i)
				d.SeenAndRecord(context.Background(), matchID)
			}

			So(d.Size(), ShouldEqual, int64(numMatches))

			// Now unrecord them concurrently
			var wg sync.WaitGroup
			for i := 0; i < numGoroutines; i++ {
				wg.Add(1)
				go func(goroutineID int) {
					defer wg.Done()
					for j := 0; j < numMatches/numGoroutines; j++ {
						matchID := fmt.Sprintf("match-%d", goroutineID*(numMatches/numGoroutines)+j)
						d.Unrecord(context.Background(), matchID)
					}
				}(i)
			}

			wg.Wait()

			Convey("Then all matches should be unrecorded successfully", func() {
				So(d.Size(), ShouldEqual, 0)
			})
		})
	})
}

func TestDedupeEdgeCases(t *testing.T) {
	Convey("Given a deduper with edge cases", t, func() {
		Convey("When an enqueue fails after the id was recorded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(4))
			ctx := context.Background()

			So(d.SeenAndRecord(ctx, "match-1"), ShouldBeFalse)
			d.Unrecord(ctx, "match-1")

			Convey("Then the retried report should be accepted once", func() {
				So(d.SeenAndRecord(ctx, "match-1"), ShouldBeFalse)
				So(d.SeenAndRecord(ctx, "match-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When a freed slot is reused by the ring", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(2))
			ctx := context.Background()

			So(d.SeenAndRecord(ctx, "match-1"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "match-2"), ShouldBeFalse)
			d.Unrecord(ctx, "match-1")
			So(d.SeenAndRecord(ctx, "match-3"), ShouldBeFalse)

			Convey("Then the surviving id should still be remembered", func() {
				So(d.SeenAndRecord(ctx, "match-2"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 2)
			})
		})

		Convey("When using very small max size", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(1))

			Convey("And adding multiple matches", func() {
				So(d.SeenAndRecord(context.Background(), "match-1"), ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)

				So(d.SeenAndRecord(context.Background(), "match-2"), ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)

				So(d.SeenAndRecord(context.Background(), "match-2"), ShouldBeTrue)
				So(d.SeenAndRecord(context.Background(), "match-1"), ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When using negative max size", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(-1))

			Convey("Then it should be unbounded", func() {
				const numMatches = 1000
				for i := 0; i < numMatches; i++ {
					matchID := fmt.Sprintf("match-%d", i)
					seen := d.SeenAndRecord(context.Background(), matchID)
					So(seen, ShouldBeFalse)
				}

				So(d.Size(), ShouldEqual, int64(numMatches))
			})
		})
	})
}

func TestDedupeOptions(t *testing.T) {
	Convey("Given dedupe options", t, func() {
		Convey("When using WithMaxSize", func() {
			Convey("Then it should set the max size", func() {
				d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(500))
				So(d, ShouldNotBeNil)
			})

			Convey("And when max size is zero", func() {
				d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
				So(d, ShouldNotBeNil)
			})

			Convey("And when max size is negative", func() {
				d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(-100))
				So(d, ShouldNotBeNil)
			})
		})

	})
}
