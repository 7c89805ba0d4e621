package paper

import (
	"math/rand"
)

/************************************************************
Core probabilities/rates/stds/averages of the generator
Mu -> average
Sigma -> standard deviation
Prob -> probabilities
All price components are relative to the current price.
*************************************************************/
const (
	timePaceRateCore          float64 = 0.5
	noiseSigmaCore            float64 = 0.00005
	trendChangeProbCore       float64 = 0.20
	trendMuCore               float64 = 0.00005
	burstActivationProbCore   float64 = 0.10
	burstDeactivationProbCore float64 = 0.90
	burstSigmaCore            float64 = 0.0005
	spreadMinCore             float64 = 0.0001
	spreadMaxCore             float64 = 0.0005
)

/*

Random generator with time pace and 3 components noise, trend and volatility bursts

*/
type randomGenerator struct {
	timePaceRate      float64
	noiseSigma        float64
	trendChange       float64
	trendMu           float64
	burstActivation   float64
	burstDeactivation float64
	burstSigma        float64
	burstActivated    bool
	spreadMin         float64
	spreadMax         float64
	rand              *rand.Rand
}

func newCoreRandomGenerator(seed int64) *randomGenerator {

	gen := &randomGenerator{
		timePaceRate:      timePaceRateCore,
		noiseSigma:        noiseSigmaCore,
		trendChange:       trendChangeProbCore,
		trendMu:           trendMuCore,
		burstActivation:   burstActivationProbCore,
		burstDeactivation: burstDeactivationProbCore,
		burstSigma:        burstSigmaCore,
		spreadMin:         spreadMinCore,
		spreadMax:         spreadMaxCore,
		rand:              rand.New(rand.NewSource(seed)),
	}

	gen.trendMu = gen.trendMu * float64(gen.rand.Int63n(2)*2-1)

	return gen
}

// next returns the relative increments for the following quote: time pace in
// seconds, price change and spread, both as fractions of the current price.
func (g *randomGenerator) next() (float64, float64, float64) {

	timeInc := g.rand.Float64() * g.timePaceRate

	price := g.rand.NormFloat64()*g.noiseSigma + g.trendMu

	if g.rand.Float64() < g.trendChange {
		g.trendMu = -g.trendMu
	}

	if !g.burstActivated && g.rand.Float64() < g.burstActivation {
		g.burstActivated = true
	}

	if g.burstActivated {
		price += g.rand.NormFloat64() * g.burstSigma
	}

	if g.burstActivated && g.rand.Float64() < g.burstDeactivation {
		g.burstActivated = false
	}

	spread := g.rand.Float64()*(g.spreadMax-g.spreadMin) + g.spreadMin

	return timeInc, price, spread
}
