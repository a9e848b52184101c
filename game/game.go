// Package game defines the capability contracts a two-player zero-sum game
// must satisfy to be searched, along with the Eval score type. The search
// engine is generic over these contracts and never depends on a concrete
// game.
package game

// Ply is the constraint on move types. A ply is an opaque, immutable move
// descriptor, valid only relative to the state that produced it. Equality is
// all the search needs (principal-variation continuity and ordering
// deduplication), so any comparable type will do.
type Ply interface {
	comparable
}

// State is a complete game position. Implementations carry their own
// legality logic; the search only assumes that every ply returned by
// Extrapolate is applicable to the state that produced it.
//
// The second type parameter is the implementing type itself, so that Apply
// can return a concrete successor instead of an interface.
type State[P Ply, S any] interface {
	// Extrapolate returns the candidate plies from this position. The order
	// is a pruning-efficiency hint only and never affects correctness. An
	// empty result signals a terminal position.
	Extrapolate() []P

	// Apply executes a ply and returns the successor state. An error means
	// the ply is not applicable here; the search skips such plies.
	Apply(ply P) (S, error)

	// Hash returns a position identity stable across transpositions, used
	// to key the transposition table.
	Hash() uint64

	// Terminal classifies a finished position from the side to move's
	// perspective (EvalLoss if the opponent just won, 0 for a draw). The
	// second result is false while the game is still in progress.
	Terminal() (Eval, bool)
}

// Evaluator scores a position from the perspective of the side to move.
// Implementations must be pure and deterministic.
type Evaluator[P Ply, S State[P, S]] interface {
	Evaluate(state S) Eval
}

// EvaluatorFunc adapts an ordinary function to the Evaluator interface.
type EvaluatorFunc[P Ply, S State[P, S]] func(state S) Eval

func (f EvaluatorFunc[P, S]) Evaluate(state S) Eval {
	return f(state)
}
