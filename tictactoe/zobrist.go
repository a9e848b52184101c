package tictactoe

// Zobrist keys for position hashing, from a PRNG with a fixed seed so
// hashes are reproducible across runs.
var (
	zobristCell [9][2]uint64 // [cell][X, O]
	zobristSide uint64       // XOR'd in when O is to move
)

func init() {
	rng := prng{state: 0x6C078965D1B71B9E}
	for i := range zobristCell {
		for m := range zobristCell[i] {
			zobristCell[i][m] = rng.next()
		}
	}
	zobristSide = rng.next()
}

// xorshift64* generator.
type prng struct {
	state uint64
}

func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}
