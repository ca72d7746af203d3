package bigint

import (
	"errors"
	"math/big"
)

// ErrProofLength describes a Wesolowski proof whose length does not match
// the log2(iterations) recurrence depth implied by t. Verify reports such a
// proof as false and does not return this error.
var ErrProofLength = errors.New("bigint: vdf proof length mismatch")

// Proof is a Wesolowski VDF proof: the ordered sequence of mu_i values
// produced while halving t down to the base case.
type Proof struct {
	Mus []*big.Int
}

// Prove attaches a Wesolowski-style proof linking g -> y = Eval(g, t) in t
// sequential-squaring steps. It replays the halving recurrence described in
// spec.md §4.1:
//
//	x_0, y_0 = g, y
//	at each level: mu_i = x_i^(2^(t/2)), r_i = FiatShamir(x_i, y_i, mu_i)
//	x_{i+1} = x_i^{r_i} * mu_i,  y_{i+1} = mu_i^{r_i} * y_i   (mod N)
//	t halves each level; whenever t is odd before halving (t > 1), t++
//	and y_i is squared first to compensate.
func Prove(g, y *big.Int, t uint64) Proof {
	var mus []*big.Int
	x := new(big.Int).Mod(g, N)
	yi := new(big.Int).Mod(y, N)
	for t > 1 {
		if t%2 == 1 {
			t++
			yi = ModSquare(yi)
		}
		halfT := t / 2
		mu := ModExp(x, new(big.Int).Lsh(big.NewInt(1), uint(halfT)))
		r := FiatShamir(x, yi, mu)

		xNext := new(big.Int).Mul(ModExp(x, r), mu)
		xNext.Mod(xNext, N)

		yNext := new(big.Int).Mul(ModExp(mu, r), yi)
		yNext.Mod(yNext, N)

		mus = append(mus, mu)
		x, yi = xNext, yNext
		t = halfT
	}
	return Proof{Mus: mus}
}

// Verify replays the same recurrence as Prove using the supplied mu_i
// values, accepting iff the final y equals the final x squared.
func Verify(g, y *big.Int, t uint64, proof Proof) bool {
	x := new(big.Int).Mod(g, N)
	yi := new(big.Int).Mod(y, N)
	idx := 0
	for t > 1 {
		if t%2 == 1 {
			t++
			yi = ModSquare(yi)
		}
		if idx >= len(proof.Mus) {
			return false
		}
		mu := proof.Mus[idx]
		idx++
		r := FiatShamir(x, yi, mu)

		xNext := new(big.Int).Mul(ModExp(x, r), mu)
		xNext.Mod(xNext, N)

		yNext := new(big.Int).Mul(ModExp(mu, r), yi)
		yNext.Mod(yNext, N)

		x, yi = xNext, yNext
		t = t / 2
	}
	if idx != len(proof.Mus) {
		return false
	}
	return yi.Cmp(ModSquare(x)) == 0
}
