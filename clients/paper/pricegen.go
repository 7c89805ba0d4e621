package paper

import (
	"time"

	"github.com/openmargin/marginsdk"
)

type priceGenerator struct {
	pair    string
	randGen *randomGenerator
	price   float64
	time    time.Time
}

func newPriceGenerator(pair string, startTime time.Time, startPrice float64, seed int64) *priceGenerator {

	return &priceGenerator{
		pair:    pair,
		randGen: newCoreRandomGenerator(seed),
		price:   startPrice,
		time:    startTime,
	}
}

func (p *priceGenerator) next() *marginsdk.Ticker {

	timeInc, priceInc, spread := p.randGen.next()
	p.price += priceInc * p.price

	duration := time.Duration(timeInc * float64(time.Second))

	p.time = p.time.Add(duration)

	ticker := &marginsdk.Ticker{
		Pair: p.pair,
		Bid:  p.price,
		Ask:  p.price + spread*p.price,
		Last: p.price,
		Time: p.time,
	}

	return ticker
}
