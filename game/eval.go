package game

// Eval is the score of a position from the perspective of the side to move.
// Positive favors the side to move; negating an Eval flips the perspective,
// which is what negamax relies on.
type Eval int32

// Score bands. EvalInfinity is only used as a search window bound and must
// stay safely negatable. Decided positions live in the band between EvalWin
// and EvalInfinity so that win-in-N scores (EvalWin - N) never collide with
// heuristic scores.
const (
	EvalInfinity Eval = 30000
	EvalWin      Eval = 29000
	EvalLoss     Eval = -EvalWin

	// MaxPly bounds the distance-to-win encoding.
	MaxPly = 128
)

// WinIn returns the score of a forced win ply half-moves from now.
// Nearer wins score higher.
func WinIn(ply int) Eval {
	return EvalWin - Eval(ply)
}

// LossIn returns the score of a forced loss ply half-moves from now.
// Farther losses score higher.
func LossIn(ply int) Eval {
	return -EvalWin + Eval(ply)
}

// IsWin reports whether e is inside the winning band.
func (e Eval) IsWin() bool {
	return e > EvalWin-MaxPly
}

// IsLoss reports whether e is inside the losing band.
func (e Eval) IsLoss() bool {
	return e < -EvalWin+MaxPly
}

// IsDecided reports whether e represents a certain win or loss rather than a
// heuristic estimate.
func (e Eval) IsDecided() bool {
	return e.IsWin() || e.IsLoss()
}
