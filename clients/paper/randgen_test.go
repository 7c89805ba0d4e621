package paper

import (
	"math"
	"testing"
)

func Test_newCoreRandomGenerator(t *testing.T) {

	t.Run("bounds", func(t *testing.T) {

		gen := newCoreRandomGenerator(5978461448311832750)

		points := 500000

		price := 100.0

		for i := 0; i < points; i++ {

			timeInc, priceInc, spread := gen.next()

			if timeInc < 0 || timeInc >= timePaceRateCore {
				t.Fatalf("time increment %f out of range at point %d", timeInc, i)
			}

			if spread < spreadMinCore || spread >= spreadMaxCore {
				t.Fatalf("spread %f out of range at point %d", spread, i)
			}

			price += priceInc * price

			if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
				t.Fatalf("price degenerated to %f at point %d", price, i)
			}
		}
	})

	t.Run("deterministic", func(t *testing.T) {

		first := newCoreRandomGenerator(7)
		second := newCoreRandomGenerator(7)

		for i := 0; i < 1000; i++ {
			t1, p1, s1 := first.next()
			t2, p2, s2 := second.next()

			if t1 != t2 || p1 != p2 || s1 != s2 {
				t.Fatalf("same seed diverged at point %d", i)
			}
		}
	})
}
