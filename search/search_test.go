package search

import (
	"errors"
	"testing"
	"time"

	"github.com/cdbfoster/zero-sum-sub001/game"
	"github.com/cdbfoster/zero-sum-sub001/tictactoe"
)

// takeaway is a last-take-wins subtraction game: remove 1-3 counters from a
// pile; the player facing an empty pile has lost. A pile of n is a forced
// win for the side to move iff n%4 != 0.

type takePly int

type takeState struct {
	pile int
}

func (s takeState) Extrapolate() []takePly {
	plies := make([]takePly, 0, 3)
	for take := 1; take <= 3 && take <= s.pile; take++ {
		plies = append(plies, takePly(take))
	}
	return plies
}

func (s takeState) Apply(p takePly) (takeState, error) {
	if p < 1 || p > 3 || int(p) > s.pile {
		return takeState{}, errInvalidTake
	}
	return takeState{pile: s.pile - int(p)}, nil
}

func (s takeState) Hash() uint64 {
	return mix64(uint64(s.pile) + 1)
}

func (s takeState) Terminal() (game.Eval, bool) {
	if s.pile == 0 {
		return game.EvalLoss, true
	}
	return 0, false
}

var errInvalidTake = errors.New("invalid take")

// wide is an effectively bottomless synthetic game with a large branching
// factor, for exercising the time budget. Positions are never terminal and
// evaluate to a deterministic hash-derived score.

const wideBranching = 40

type widePly int

type wideState struct {
	value uint64
}

func (s wideState) Extrapolate() []widePly {
	plies := make([]widePly, wideBranching)
	for i := range plies {
		plies[i] = widePly(i + 1)
	}
	return plies
}

func (s wideState) Apply(p widePly) (wideState, error) {
	return wideState{value: mix64(s.value*wideBranching + uint64(p))}, nil
}

func (s wideState) Hash() uint64 {
	return s.value
}

func (s wideState) Terminal() (game.Eval, bool) {
	return 0, false
}

func wideEval(s wideState) game.Eval {
	return game.Eval(int32(mix64(s.value)%2001) - 1000)
}

func mix64(v uint64) uint64 {
	v ^= v >> 33
	v *= 0xFF51AFD7ED558CCD
	v ^= v >> 33
	v *= 0xC4CEB9FE1A85EC53
	v ^= v >> 33
	return v
}

// Engine constructors for the test games.

func newTicTacToeEngine(t *testing.T, cfg Config) *PvSearch[tictactoe.Ply, tictactoe.Board] {
	t.Helper()
	engine, err := New[tictactoe.Ply, tictactoe.Board](tictactoe.Evaluator{}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return engine
}

func newTakeawayEngine(t *testing.T, cfg Config) *PvSearch[takePly, takeState] {
	t.Helper()
	engine, err := New[takePly, takeState](
		game.EvaluatorFunc[takePly, takeState](func(takeState) game.Eval { return 0 }), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return engine
}

func newWideEngine(t *testing.T, cfg Config, eval game.EvaluatorFunc[widePly, wideState]) *PvSearch[widePly, wideState] {
	t.Helper()
	if eval == nil {
		eval = wideEval
	}
	engine, err := New[widePly, wideState](eval, cfg)
	if err != nil {
		t.Fatal(err)
	}
	return engine
}

func TestConfigValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"zero depth", Config{}},
		{"negative depth", Config{MaxDepth: -1}},
		{"excessive depth", Config{MaxDepth: game.MaxPly}},
		{"negative time limit", Config{MaxDepth: 4, TimeLimit: -time.Second}},
		{"negative table size", Config{MaxDepth: 4, TableSize: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New[tictactoe.Ply, tictactoe.Board](tictactoe.Evaluator{}, tc.cfg); err == nil {
				t.Errorf("New(%+v) succeeded, want error", tc.cfg)
			}
		})
	}

	if _, err := New[tictactoe.Ply, tictactoe.Board](nil, Config{MaxDepth: 4}); err == nil {
		t.Error("New with nil evaluator succeeded, want error")
	}
}

func TestDeterminism(t *testing.T) {
	board := midGameBoard(t)

	first := newTicTacToeEngine(t, Config{MaxDepth: 6, TableSize: 1 << 14}).Search(board)
	second := newTicTacToeEngine(t, Config{MaxDepth: 6, TableSize: 1 << 14}).Search(board)

	if first.Eval != second.Eval {
		t.Errorf("evaluations differ: %d vs %d", first.Eval, second.Eval)
	}
	if len(first.PV) != len(second.PV) {
		t.Fatalf("PV lengths differ: %d vs %d", len(first.PV), len(second.PV))
	}
	for i := range first.PV {
		if first.PV[i] != second.PV[i] {
			t.Errorf("PV diverges at ply %d: %v vs %v", i, first.PV[i], second.PV[i])
		}
	}
	if first.Stats.NodesVisited != second.Stats.NodesVisited {
		t.Errorf("node counts differ: %d vs %d", first.Stats.NodesVisited, second.Stats.NodesVisited)
	}
}

func TestTableCapacityDoesNotChangeEval(t *testing.T) {
	board := midGameBoard(t)

	large := newTicTacToeEngine(t, Config{MaxDepth: 6, TableSize: 1 << 16}).Search(board)
	tiny := newTicTacToeEngine(t, Config{MaxDepth: 6, TableSize: 1}).Search(board)

	if large.Eval != tiny.Eval {
		t.Errorf("root evaluation depends on table capacity: %d (large) vs %d (tiny)", large.Eval, tiny.Eval)
	}
}

// exhaustiveNegamax is an un-pruned, un-cached reference search mirroring
// the engine's leaf handling.
func exhaustiveNegamax(b tictactoe.Board, depth, ply int) game.Eval {
	if term, over := b.Terminal(); over {
		return terminalScore(term, ply)
	}
	if depth == 0 {
		return tictactoe.Evaluator{}.Evaluate(b)
	}

	best := -game.EvalInfinity
	for _, p := range b.Extrapolate() {
		child, err := b.Apply(p)
		if err != nil {
			continue
		}
		if score := -exhaustiveNegamax(child, depth-1, ply+1); score > best {
			best = score
		}
	}
	return best
}

func TestAlphaBetaMatchesExhaustive(t *testing.T) {
	boards := map[string]tictactoe.Board{
		"empty":    tictactoe.New(),
		"mid game": midGameBoard(t),
	}

	for name, board := range boards {
		for depth := 1; depth <= 4; depth++ {
			want := exhaustiveNegamax(board, depth, 0)
			got := newTicTacToeEngine(t, Config{MaxDepth: depth, TableSize: 1 << 12}).Search(board)
			if got.Eval != want {
				t.Errorf("%s at depth %d: alpha-beta eval %d, exhaustive eval %d", name, depth, got.Eval, want)
			}
		}
	}
}

func TestNodeCountsGrowWithDepth(t *testing.T) {
	board := tictactoe.New()

	var previous uint64
	for depth := 1; depth <= 6; depth++ {
		analysis := newTicTacToeEngine(t, Config{MaxDepth: depth, TableSize: 1 << 14}).Search(board)
		if analysis.Stats.Depth > depth {
			t.Errorf("completed depth %d exceeds configured maximum %d", analysis.Stats.Depth, depth)
		}
		if analysis.Stats.NodesVisited < previous {
			t.Errorf("nodes visited fell from %d to %d at depth %d", previous, analysis.Stats.NodesVisited, depth)
		}
		previous = analysis.Stats.NodesVisited
	}
}

func TestGoalEarlyExit(t *testing.T) {
	// All positions evaluate to -600 from the side to move, so the root
	// scores +600 at every depth. The goal is the only stop condition that
	// can fire before MaxDepth.
	constEval := game.EvaluatorFunc[widePly, wideState](func(wideState) game.Eval { return -600 })

	withGoal := newWideEngine(t, Config{MaxDepth: 4, Goal: 500}, constEval).Search(wideState{value: 1})
	if withGoal.Stats.Depth != 1 {
		t.Errorf("goal did not stop the search at depth 1, completed depth %d", withGoal.Stats.Depth)
	}
	if withGoal.Eval < 500 {
		t.Errorf("goal exit with eval %d below the goal", withGoal.Eval)
	}

	withoutGoal := newWideEngine(t, Config{MaxDepth: 4}, constEval).Search(wideState{value: 1})
	if withoutGoal.Stats.Depth != 4 {
		t.Errorf("without a goal the search stopped at depth %d, want 4", withoutGoal.Stats.Depth)
	}
}

func TestForcedWinFound(t *testing.T) {
	// A pile of 7 is a forced win in three plies: take 3, and whatever the
	// opponent takes from 4, take the rest.
	analysis := newTakeawayEngine(t, Config{MaxDepth: 8}).Search(takeState{pile: 7})

	if !analysis.Eval.IsWin() {
		t.Fatalf("pile of 7 evaluated to %d, want a winning score", analysis.Eval)
	}
	if analysis.Stats.Depth != 3 {
		t.Errorf("win found at completed depth %d, want 3", analysis.Stats.Depth)
	}
	if len(analysis.PV) != 3 {
		t.Fatalf("winning PV has %d plies, want 3", len(analysis.PV))
	}
	if analysis.PV[0] != 3 {
		t.Errorf("winning PV starts with take %d, want 3", analysis.PV[0])
	}

	// A pile of 8 is a loss against perfect play.
	analysis = newTakeawayEngine(t, Config{MaxDepth: 8}).Search(takeState{pile: 8})
	if !analysis.Eval.IsLoss() {
		t.Errorf("pile of 8 evaluated to %d, want a losing score", analysis.Eval)
	}
}

func TestTimeBudgetReturnsCompletedAnalysis(t *testing.T) {
	engine := newWideEngine(t, Config{MaxDepth: 10, TimeLimit: 50 * time.Millisecond}, nil)

	start := time.Now()
	analysis := engine.Search(wideState{value: 1})
	elapsed := time.Since(start)

	if elapsed > 5*time.Second {
		t.Fatalf("search ran %v, far past its 50ms budget", elapsed)
	}
	if analysis.Stats.Depth < 1 {
		t.Errorf("no depth completed within the budget")
	}
	if len(analysis.PV) == 0 {
		t.Errorf("analysis has no principal variation")
	}
	if analysis.Stats.Depth >= 10 {
		t.Errorf("a 50ms budget completed all 10 depths of a branching-%d game", wideBranching)
	}
}

func TestTimeBudgetSmallerThanFirstDepth(t *testing.T) {
	engine := newWideEngine(t, Config{MaxDepth: 10, TimeLimit: time.Nanosecond}, nil)

	analysis := engine.Search(wideState{value: 1})

	// Nothing can complete in a nanosecond; the result is the empty
	// analysis, not a hang or a partial PV.
	if analysis.Stats.Depth != 0 {
		t.Errorf("completed depth %d inside a nanosecond budget", analysis.Stats.Depth)
	}
	if len(analysis.PV) != 0 {
		t.Errorf("got a %d-ply PV from an interrupted first iteration", len(analysis.PV))
	}
}

func TestStop(t *testing.T) {
	engine := newWideEngine(t, Config{MaxDepth: 30}, nil)

	done := make(chan Analysis[widePly], 1)
	go func() {
		done <- engine.Search(wideState{value: 1})
	}()

	time.Sleep(20 * time.Millisecond)
	engine.Stop()

	select {
	case analysis := <-done:
		if analysis.Stats.Depth < 1 {
			t.Errorf("stopped search completed no depth")
		}
	case <-time.After(10 * time.Second):
		t.Fatal("search did not stop")
	}
}

func TestSearchToDepthOverride(t *testing.T) {
	engine := newTicTacToeEngine(t, Config{MaxDepth: 9})

	analysis := engine.SearchToDepth(tictactoe.New(), 3)
	if analysis.Stats.Depth != 3 {
		t.Errorf("override to depth 3 completed depth %d", analysis.Stats.Depth)
	}

	// Out-of-range overrides fall back to the configured maximum.
	analysis = engine.SearchToDepth(midGameBoard(t), 0)
	if analysis.Stats.Depth > 9 {
		t.Errorf("completed depth %d exceeds MaxDepth 9", analysis.Stats.Depth)
	}
}

func TestTicTacToeIsADraw(t *testing.T) {
	engine := newTicTacToeEngine(t, Config{MaxDepth: 9, TableSize: 1 << 18})

	analysis := engine.Search(tictactoe.New())

	if analysis.Eval != 0 {
		t.Errorf("perfect play from the empty board evaluated to %d, want 0", analysis.Eval)
	}
	if len(analysis.PV) == 0 {
		t.Fatal("analysis has no principal variation")
	}

	// The PV must replay legally from the root.
	board := tictactoe.New()
	for i, ply := range analysis.PV {
		next, err := board.Apply(ply)
		if err != nil {
			t.Fatalf("PV ply %d (%v) is illegal: %v", i, ply, err)
		}
		board = next
	}

	if analysis.Stats.TTHits == 0 {
		t.Error("a full tic-tac-toe search produced no transposition hits")
	}
}

func TestTerminalRoot(t *testing.T) {
	board := tictactoe.New()
	for _, ply := range []tictactoe.Ply{
		{Mark: tictactoe.X, X: 0, Y: 0},
		{Mark: tictactoe.O, X: 0, Y: 1},
		{Mark: tictactoe.X, X: 1, Y: 0},
		{Mark: tictactoe.O, X: 1, Y: 1},
		{Mark: tictactoe.X, X: 2, Y: 0}, // X completes the top row
	} {
		next, err := board.Apply(ply)
		if err != nil {
			t.Fatal(err)
		}
		board = next
	}

	analysis := newTicTacToeEngine(t, Config{MaxDepth: 9}).Search(board)

	if !analysis.Eval.IsLoss() {
		t.Errorf("finished game evaluated to %d for the loser, want a losing score", analysis.Eval)
	}
	if len(analysis.PV) != 0 {
		t.Errorf("terminal root produced a %d-ply PV", len(analysis.PV))
	}
	if analysis.Stats.Depth != 0 {
		t.Errorf("terminal root reports completed depth %d", analysis.Stats.Depth)
	}
}

// midGameBoard returns a position a few plies in, with no immediate win.
func midGameBoard(t *testing.T) tictactoe.Board {
	t.Helper()
	board := tictactoe.New()
	for _, ply := range []tictactoe.Ply{
		{Mark: tictactoe.X, X: 1, Y: 1},
		{Mark: tictactoe.O, X: 0, Y: 0},
		{Mark: tictactoe.X, X: 2, Y: 0},
	} {
		next, err := board.Apply(ply)
		if err != nil {
			t.Fatal(err)
		}
		board = next
	}
	return board
}
