// Package bigint implements the RSA-2048 group arithmetic the VDF runs
// over: the hardcoded modulus, modular exponentiation, and the two
// hash-to-group expansions (H_G for VDF inputs, and the distinct
// Fiat-Shamir challenge expansion used during Wesolowski proving). See
// spec.md §4.1, §9 ("Multiple copies of h_g / Fiat-Shamir helpers... keep
// them strictly separate").
package bigint

import "math/big"

// nDecimal is the decimal form of N, the RSA-2048 challenge modulus. This is a well-known, trustlessly
// generated 2048-bit RSA modulus (no one knows its factorization) used as
// the group for the VDF. Implementers MUST verify this constant bit-for-bit
// against the published RSA-2048 number before relying on it in production.
const nDecimal = "25195908475657893494027183240048398571429282126204032027777137836043662020707595556264018525880784406918290641249515082189298559149176184502808489120072844992687392807287776735971418347270261896375014971824691165077613379859095700097330459748808428401797429100642458691817195118746121515172654632282216869987549182422433637259085141865462043576798423387184774447920739934236584823824281198163815010674810451660377306056201619676256133844143603833904414952634432190114657544454178424020924616515723350778707749817125772467962926386356373289912154831438167899885040445364023527381951378636564391212010397122822120720357"

// N is the parsed modulus, ready for use in ModExp / H_G reduction.
var N *big.Int

func init() {
	n, ok := new(big.Int).SetString(nDecimal, 10)
	if !ok {
		panic("bigint: malformed RSA-2048 modulus constant")
	}
	N = n
}

// ModExp computes base^exp mod N.
func ModExp(base, exp *big.Int) *big.Int {
	return new(big.Int).Exp(base, exp, N)
}

// ModSquare computes base^2 mod N.
func ModSquare(base *big.Int) *big.Int {
	return new(big.Int).Exp(base, big.NewInt(2), N)
}

// Eval computes the VDF output g^(2^t) mod N by repeated squaring: t
// sequential modular squarings, each depending on the last, which is what
// makes the evaluation inherently sequential.
func Eval(g *big.Int, t uint64) *big.Int {
	y := new(big.Int).Mod(g, N)
	for i := uint64(0); i < t; i++ {
		y = ModSquare(y)
	}
	return y
}
