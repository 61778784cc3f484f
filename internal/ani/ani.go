package ani

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultConfidence is the confidence level ANICIFromContainment uses
// when the caller does not specify one.
const DefaultConfidence = 0.95

var standardNormal = distuv.Normal{Mu: 0, Sigma: 1}

// ANIFromContainment converts a containment fraction to an ANI point
// estimate, ANI = C^(1/k). Containment of exactly 0 or 1 map to 0 and 1
// without going through the exponentiation (avoiding 0^(1/k) rounding
// noise for very large k).
func ANIFromContainment(containment, ksize float64) float64 {
	switch containment {
	case 0:
		return 0
	case 1:
		return 1
	default:
		return math.Pow(containment, 1.0/ksize)
	}
}

// r1ToQ converts a per-base mutation rate r1 to the probability q that
// a k-mer spanning a mutated base differs from its unmutated
// counterpart: q = 1 - (1-r1)^k.
func r1ToQ(k, r1 float64) float64 {
	return 1.0 - math.Pow(1.0-r1, k)
}

// expNMutated is the expected number of mutated k-mers among l total
// k-mers at per-base mutation rate r1.
func expNMutated(l, k, r1 float64) float64 {
	return l * r1ToQ(k, r1)
}

// varNMutated is the variance of the number of mutated k-mers, per the
// closed-form derivation in the reference mutation-rate model. Returns
// ErrEstimation if the computed variance is negative, which signals
// the (k, r1) pair is outside the model's valid domain.
func varNMutated(l, k, r1 float64) (float64, error) {
	if r1 == 0 {
		return 0, nil
	}
	q := r1ToQ(k, r1)

	varN := l*(1.0-q)*(q*(2.0*k+(2.0/r1)-1.0)-2.0*k) +
		k*(k-1.0)*(1.0-q)*(1.0-q) +
		(2.0*(1.0-q)/(r1*r1))*((1.0+(k-1.0)*(1.0-q))*r1-q)

	if varN < 0 {
		return 0, ErrEstimation
	}
	return varN, nil
}

// expNMutatedSquared is E[N^2] = Var(N) + E[N]^2.
func expNMutatedSquared(l, k, r1 float64) (float64, error) {
	varN, err := varNMutated(l, k, r1)
	if err != nil {
		return 0, err
	}
	expN := expNMutated(l, k, r1)
	return varN + expN*expN, nil
}

// probit is the standard normal quantile function, Phi^-1.
func probit(p float64) float64 {
	return standardNormal.Quantile(p)
}

// ANICIFromContainment computes a confidence interval on the ANI point
// estimate for containment at the given ksize, scaled factor, and
// number of unique k-mers sampled, using the mutation-rate variance
// model and Brent's method to invert it. confidence defaults to
// DefaultConfidence when 0. Returns (low, high); at containment 0 or 1
// both bounds collapse to the point estimate.
func ANICIFromContainment(containment, ksize float64, scaled, nUniqueKmers uint64, confidence float64) (low, high float64, err error) {
	if containment == 0 {
		return 0, 0, nil
	}
	if containment == 1 {
		return 1, 1, nil
	}
	if confidence == 0 {
		confidence = DefaultConfidence
	}

	fScaled := 1.0 / float64(scaled)
	n := float64(nUniqueKmers)
	alpha := 1.0 - confidence

	zAlpha := probit(1.0 - alpha/2.0)
	biasFactor := 1.0 - math.Pow(1.0-fScaled, n)

	term1 := (1.0 - fScaled) / (fScaled * n * n * n * biasFactor * biasFactor)

	varDirect := func(pEst float64) (float64, error) {
		expSq, err := expNMutatedSquared(n, ksize, pEst)
		if err != nil {
			return 0, err
		}
		term2 := n*expNMutated(n, ksize, pEst) - expSq
		varN, err := varNMutated(n, ksize, pEst)
		if err != nil {
			return 0, err
		}
		term3 := varN / (n * n)
		return term1*term2 + term3, nil
	}

	var estimationErr error
	f1 := func(pEst float64) float64 {
		v, verr := varDirect(pEst)
		if verr != nil {
			estimationErr = verr
			return 0
		}
		return math.Pow(1.0-pEst, ksize) + zAlpha*math.Sqrt(v) - containment
	}
	f2 := func(pEst float64) float64 {
		v, verr := varDirect(pEst)
		if verr != nil {
			estimationErr = verr
			return 0
		}
		return math.Pow(1.0-pEst, ksize) - zAlpha*math.Sqrt(v) - containment
	}

	const lo, hi = 1e-7, 1 - 1e-7
	sol1 := findRootBrent(lo, hi, f1)
	sol2 := findRootBrent(lo, hi, f2)
	if estimationErr != nil {
		return 0, 0, estimationErr
	}

	return 1.0 - sol1, 1.0 - sol2, nil
}
