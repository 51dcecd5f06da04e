package attempt

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"

	"awareness-game/internal/model"
)

// Score compares answers position by position with the questions' correct
// indices. Extra answers are ignored and missing ones count as wrong. The
// percentage is computed in float64 and its exact binary value is rounded
// half-to-even to two decimals, so 23 of 160 gives 14.37, not 14.38.
func Score(questions []model.Question, answers []int) (correct, total int, score float64) {
	total = len(questions)
	for idx, question := range questions {
		if idx < len(answers) && answers[idx] == question.CorrectIndex {
			correct++
		}
	}
	if total == 0 {
		return 0, 0, 0
	}

	percent := float64(correct) / float64(total) * 100
	return correct, total, exactDecimal(percent).RoundBank(2).InexactFloat64()
}

// exactDecimal expands f into the decimal it represents exactly.
func exactDecimal(f float64) decimal.Decimal {
	frac, exp := math.Frexp(f)
	mantissa := big.NewInt(int64(frac * (1 << 53)))
	exp -= 53
	if exp >= 0 {
		return decimal.NewFromBigInt(mantissa.Lsh(mantissa, uint(exp)), 0)
	}
	// m * 2^exp == m * 5^-exp * 10^exp
	five := new(big.Int).Exp(big.NewInt(5), big.NewInt(int64(-exp)), nil)
	return decimal.NewFromBigInt(mantissa.Mul(mantissa, five), int32(exp))
}
