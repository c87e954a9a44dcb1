package cluster_test

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/okian/arena/internal/domain/cluster"
	"github.com/okian/arena/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// blob returns n points jittered tightly around center.
func blob(r *rand.Rand, center float64, n int) []model.FeatureVector {
	out := make([]model.FeatureVector, n)
	for i := range out {
		for d := 0; d < model.FeatureDims; d++ {
			out[i][d] = center + (r.Float64()-0.5)*0.02
		}
	}
	return out
}

func TestNew(t *testing.T) {
	Convey("Given an invalid cluster count", t, func() {
		_, err := cluster.New(0)

		Convey("Then construction should fail with ErrInvalidK", func() {
			So(errors.Is(err, cluster.ErrInvalidK), ShouldBeTrue)
		})
	})

	Convey("Given a valid cluster count", t, func() {
		m, err := cluster.New(3, cluster.WithSeed(1))

		Convey("Then the clusterer should start without centroids", func() {
			So(err, ShouldBeNil)
			So(m.K(), ShouldEqual, 3)
			So(m.Centroids(), ShouldBeEmpty)

			idx, err := m.Predict(model.FeatureVector{})
			So(idx, ShouldEqual, -1)
			So(errors.Is(err, cluster.ErrNoCentroids), ShouldBeTrue)
		})
	})
}

func TestFit(t *testing.T) {
	Convey("Given a seeded clusterer", t, func() {
		m, err := cluster.New(2, cluster.WithSeed(7))
		So(err, ShouldBeNil)

		Convey("When fitting empty data", func() {
			err := m.Fit(nil, 0)

			Convey("Then ErrEmptyData should be returned", func() {
				So(errors.Is(err, cluster.ErrEmptyData), ShouldBeTrue)
				So(m.Centroids(), ShouldBeEmpty)
			})
		})

		Convey("When fewer distinct vectors than k exist", func() {
			v := model.FeatureVector{1, 1, 1, 1, 1, 1}
			So(m.Fit([]model.FeatureVector{v, v, v}, 10), ShouldBeNil)

			Convey("Then a single centroid should be used", func() {
				So(m.Centroids(), ShouldHaveLength, 1)
				So(m.Centroids()[0], ShouldEqual, v)
			})
		})
	})

	Convey("Given exactly k distinct vectors", t, func() {
		a := model.FeatureVector{0, 0, 0, 0, 0, 0}
		b := model.FeatureVector{5, 5, 5, 5, 5, 5}
		c := model.FeatureVector{-5, 5, -5, 5, -5, 5}
		data := []model.FeatureVector{a, b, c, a, b, c}

		m, err := cluster.New(3, cluster.WithSeed(42))
		So(err, ShouldBeNil)
		So(m.Fit(data, 0), ShouldBeNil)

		Convey("Then every vector should become its own centroid", func() {
			So(m.Centroids(), ShouldHaveLength, 3)
			ia, _ := m.Predict(a)
			ib, _ := m.Predict(b)
			ic, _ := m.Predict(c)
			So(m.Centroids()[ia], ShouldEqual, a)
			So(m.Centroids()[ib], ShouldEqual, b)
			So(m.Centroids()[ic], ShouldEqual, c)
		})
	})

	Convey("Given two well separated groups", t, func() {
		r := rand.New(rand.NewSource(99))
		low := blob(r, 0, 20)
		high := blob(r, 10, 20)
		data := append(append([]model.FeatureVector{}, low...), high...)

		for _, seed := range []int64{1, 2, 3, 4, 5} {
			m, err := cluster.New(2, cluster.WithSeed(seed))
			So(err, ShouldBeNil)
			So(m.Fit(data, 30), ShouldBeNil)

			lowIdx, _ := m.Predict(low[0])
			highIdx, _ := m.Predict(high[0])
			So(lowIdx, ShouldNotEqual, highIdx)

			for _, v := range low {
				idx, err := m.Predict(v)
				So(err, ShouldBeNil)
				So(idx, ShouldEqual, lowIdx)
			}
			for _, v := range high {
				idx, _ := m.Predict(v)
				So(idx, ShouldEqual, highIdx)
			}
		}
	})

	Convey("Given the same seed twice", t, func() {
		r := rand.New(rand.NewSource(5))
		data := append(blob(r, 0, 10), blob(r, 3, 10)...)
		data = append(data, blob(r, 6, 10)...)

		m1, _ := cluster.New(3, cluster.WithSeed(11))
		m2, _ := cluster.New(3, cluster.WithRand(rand.New(rand.NewSource(11))))
		So(m1.Fit(data, 25), ShouldBeNil)
		So(m2.Fit(data, 25), ShouldBeNil)

		Convey("Then both fits should produce identical centroids", func() {
			So(m1.Centroids(), ShouldResemble, m2.Centroids())
		})

		Convey("And the centroid snapshot should be a copy", func() {
			snap := m1.Centroids()
			snap[0][0] = 1e9
			So(m1.Centroids()[0][0], ShouldNotEqual, 1e9)
		})
	})
}
