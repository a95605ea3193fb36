package engine

import (
	"github.com/mekdi/faction-services/internal/fpmath"
)

// Multiplier curve: a smooth rise-then-fall shape built from two cubic
// Hermite smoothstep segments. The value rises from 1.0 at zero to peak at
// target, then falls back to exactly 1.0 at max and beyond. value, target
// and max must share one unit (fixed-point USD for the amount axis, plain
// seconds for the time axis); only their ratios enter the math. peak and
// the result are fixed-point.

// smoothstep evaluates h(t) = 3t^2 - 2t^3 for a fixed-point t in [0, 1].
// h(0)=0, h(1)=1 and h'(0)=h'(1)=0, so the assembled curve has no corners.
func smoothstep(t int64) (int64, error) {
	t2, err := fpmath.MulFloor(t, t)
	if err != nil {
		return 0, err
	}
	t3, err := fpmath.MulFloor(t2, t)
	if err != nil {
		return 0, err
	}
	three, err := fpmath.MulFloor(3*fpmath.One, t2)
	if err != nil {
		return 0, err
	}
	two, err := fpmath.MulFloor(2*fpmath.One, t3)
	if err != nil {
		return 0, err
	}
	return fpmath.Sub(three, two)
}

// Curve maps value to a multiplier in [1.0, peak]. Callers guarantee
// target < max (enforced by Config.Validate).
func Curve(value, target, max, peak int64) (int64, error) {
	if value <= 0 {
		return fpmath.One, nil
	}
	bonus, err := fpmath.Sub(peak, fpmath.One)
	if err != nil {
		return 0, mathError(err)
	}

	if value <= target {
		// rising segment
		t, err := fpmath.DivFloor(value, target)
		if err != nil {
			return 0, mathError(err)
		}
		if t > fpmath.One {
			t = fpmath.One
		}
		h, err := smoothstep(t)
		if err != nil {
			return 0, mathError(err)
		}
		scaled, err := fpmath.MulFloor(h, bonus)
		if err != nil {
			return 0, mathError(err)
		}
		out, err := fpmath.Add(fpmath.One, scaled)
		if err != nil {
			return 0, mathError(err)
		}
		return out, nil
	}

	if value >= max {
		return fpmath.One, nil
	}

	// falling segment
	num, err := fpmath.Sub(value, target)
	if err != nil {
		return 0, mathError(err)
	}
	den, err := fpmath.Sub(max, target)
	if err != nil {
		return 0, mathError(err)
	}
	t, err := fpmath.DivFloor(num, den)
	if err != nil {
		return 0, mathError(err)
	}
	if t > fpmath.One {
		t = fpmath.One
	}
	h, err := smoothstep(t)
	if err != nil {
		return 0, mathError(err)
	}
	scaled, err := fpmath.MulFloor(h, bonus)
	if err != nil {
		return 0, mathError(err)
	}
	out, err := fpmath.Sub(peak, scaled)
	if err != nil {
		return 0, mathError(err)
	}
	return out, nil
}

// combinedMultiplier multiplies the amount and time curves, each run with a
// per-component peak of sqrt(config peak) so the product lands exactly on
// the headline peak when both axes sit at target simultaneously.
func (e *Engine) combinedMultiplier(balance, holdSecs int64) (int64, error) {
	cfg := e.st.config

	componentPeak, err := fpmath.SqrtFloor(cfg.PeakMultiplier)
	if err != nil {
		return 0, mathError(err)
	}

	amountMult, err := Curve(balance, cfg.TargetAmount, cfg.MaxAmount, componentPeak)
	if err != nil {
		return 0, err
	}
	timeMult, err := Curve(holdSecs, cfg.TargetHoldSecs, cfg.MaxHoldSecs, componentPeak)
	if err != nil {
		return 0, err
	}

	combined, err := fpmath.MulFloor(amountMult, timeMult)
	if err != nil {
		return 0, mathError(err)
	}
	return combined, nil
}
