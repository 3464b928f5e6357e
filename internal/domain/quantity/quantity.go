// Package quantity defines the shared arithmetic policy for stock amounts:
// volumes are decimals with a fixed 4-digit scale rounded half away from
// zero at the arithmetic boundary, piece counts are plain integers.
package quantity

import "github.com/shopspring/decimal"

// VolumeScale is the number of fractional digits kept on cubic-meter volumes.
const VolumeScale = 4

// Round normalizes a volume to the ledger scale. shopspring's Round is
// half-away-from-zero, which is the rounding mode used across the ledger.
func Round(v decimal.Decimal) decimal.Decimal {
	return v.Round(VolumeScale)
}

// FromFloat converts a raw float volume into a ledger volume.
func FromFloat(v float64) decimal.Decimal {
	return Round(decimal.NewFromFloat(v))
}

// PieceTotal computes the total volume of a number of identical pieces.
func PieceTotal(pieceVolume decimal.Decimal, pieces int64) decimal.Decimal {
	return Round(pieceVolume.Mul(decimal.NewFromInt(pieces)))
}

// FromPieces represents an integer piece count as a decimal, for error
// reporting and mixed-stream totals.
func FromPieces(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}
