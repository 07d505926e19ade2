package qsim

import (
	"context"
	"sync/atomic"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPool(t *testing.T) {
	Convey("Given a pool of four workers", t, func() {
		pool := NewPool(context.Background(), 4)

		Reset(func() {
			pool.Close()
		})

		So(pool.Size(), ShouldEqual, 4)

		Convey("Run covers the range exactly once", func() {
			hits := make([]int32, 1000)

			pool.Run(len(hits), func(lo, hi int) {
				for i := lo; i < hi; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})

			for _, h := range hits {
				So(h, ShouldEqual, int32(1))
			}
		})

		Convey("Ranges smaller than the pool still complete", func() {
			var calls int32
			pool.Run(2, func(lo, hi int) { atomic.AddInt32(&calls, int32(hi-lo)) })
			So(calls, ShouldEqual, int32(2))
		})

		Convey("After Close work runs on the caller", func() {
			pool.Close()

			done := 0
			pool.Run(10, func(lo, hi int) { done += hi - lo })
			So(done, ShouldEqual, 10)
		})
	})
}
