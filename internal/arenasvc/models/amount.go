package models

import (
	"github.com/shopspring/decimal"

	"github.com/mekdi/faction-services/internal/fpmath"
)

// The engine works in int64 fixed-point (scale 1e7); everything that
// crosses a service boundary (Postgres numerics, JSON payloads, the vault
// API) is a decimal. These two helpers are the only conversion points.

var fixedScalar = decimal.NewFromInt(fpmath.Scalar)

// DecimalFromFixed renders an engine amount as a decimal value.
func DecimalFromFixed(v int64) decimal.Decimal {
	return decimal.NewFromInt(v).Div(fixedScalar)
}

// FixedFromDecimal converts a decimal amount to engine fixed-point,
// truncating anything finer than 1e-7.
func FixedFromDecimal(d decimal.Decimal) int64 {
	return d.Mul(fixedScalar).Truncate(0).IntPart()
}
