// Package search implements iterative-deepening principal-variation search
// with alpha-beta pruning and transposition-table memoization over the
// capability contracts in the game package.
package search

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cdbfoster/zero-sum-sub001/game"
)

// Config specifies the resource budget of a PvSearch. The zero value of an
// optional field disables it.
type Config struct {
	// MaxDepth is the deepest iteration of iterative deepening. Required.
	MaxDepth int

	// TimeLimit is the wall-clock budget per Search call. Zero means
	// unbounded. An iteration interrupted by the budget is discarded whole.
	TimeLimit time.Duration

	// Goal ends iterative deepening early once the root evaluation reaches
	// or exceeds it. It is an exit condition, not a pruning bound. Zero
	// disables it.
	Goal game.Eval

	// TableSize is the transposition-table capacity in entries, rounded
	// down to a power of two. Zero selects DefaultTableSize.
	TableSize int
}

// PvSearch is a search engine over one game type. The transposition table
// persists across Search calls on the same instance, so keeping an engine
// alive across successive moves of a game reuses earlier work. Concurrent
// Search calls on one instance are not supported; Stop may be called from
// any goroutine.
type PvSearch[P game.Ply, S game.State[P, S]] struct {
	evaluator game.Evaluator[P, S]
	cfg       Config
	tt        *TranspositionTable[P]

	// State of the in-flight Search call.
	stats    Statistics
	tm       TimeManager
	stopFlag atomic.Bool
	aborted  bool
}

// New validates cfg and creates an engine for it.
func New[P game.Ply, S game.State[P, S]](evaluator game.Evaluator[P, S], cfg Config) (*PvSearch[P, S], error) {
	if evaluator == nil {
		return nil, fmt.Errorf("search: evaluator is required")
	}
	if cfg.MaxDepth <= 0 {
		return nil, fmt.Errorf("search: MaxDepth must be positive, got %d", cfg.MaxDepth)
	}
	if cfg.MaxDepth >= game.MaxPly {
		return nil, fmt.Errorf("search: MaxDepth %d exceeds the limit of %d", cfg.MaxDepth, game.MaxPly-1)
	}
	if cfg.TimeLimit < 0 {
		return nil, fmt.Errorf("search: TimeLimit must not be negative, got %v", cfg.TimeLimit)
	}
	if cfg.TableSize < 0 {
		return nil, fmt.Errorf("search: TableSize must not be negative, got %d", cfg.TableSize)
	}
	size := cfg.TableSize
	if size == 0 {
		size = DefaultTableSize
	}
	return &PvSearch[P, S]{
		evaluator: evaluator,
		cfg:       cfg,
		tt:        NewTranspositionTable[P](size),
	}, nil
}

// Table exposes the engine's transposition table, for snapshotting or
// clearing between games.
func (s *PvSearch[P, S]) Table() *TranspositionTable[P] {
	return s.tt
}

// Stop aborts the in-flight Search call cooperatively. The call returns the
// deepest fully completed analysis.
func (s *PvSearch[P, S]) Stop() {
	s.stopFlag.Store(true)
}

// Search analyzes root up to the configured MaxDepth.
func (s *PvSearch[P, S]) Search(root S) Analysis[P] {
	return s.SearchToDepth(root, s.cfg.MaxDepth)
}

// SearchToDepth analyzes root with the deepening capped at maxDepth for
// this call only. Values outside (0, MaxDepth] fall back to MaxDepth.
func (s *PvSearch[P, S]) SearchToDepth(root S, maxDepth int) Analysis[P] {
	if maxDepth <= 0 || maxDepth > s.cfg.MaxDepth {
		maxDepth = s.cfg.MaxDepth
	}

	s.stats = Statistics{}
	s.stopFlag.Store(false)
	s.aborted = false
	s.tm.Start(s.cfg.TimeLimit)
	s.tt.NewSearch()

	var analysis Analysis[P]

	if term, over := root.Terminal(); over {
		s.stats.Evaluated++
		s.stats.Elapsed = s.tm.Elapsed()
		analysis.Eval = term
		analysis.Stats = s.stats
		return analysis
	}

	var pv []P
	for depth := 1; depth <= maxDepth; depth++ {
		iterStart := time.Now()

		score, line := s.negamax(root, pv, depth, 0, -game.EvalInfinity, game.EvalInfinity)
		if s.aborted {
			log.Debug().Msgf("search: abandoned depth %d after %v", depth, time.Since(iterStart))
			break
		}

		pv = line
		analysis.Eval = score
		analysis.PV = append([]P(nil), pv...)
		s.stats.Depth = depth
		lastIteration := time.Since(iterStart)

		log.Debug().Msgf("search: depth %d complete: eval %d, pv %d plies, %d nodes, %v",
			depth, score, len(pv), s.stats.NodesVisited, lastIteration)

		if s.pvResolved(root, pv) {
			break
		}
		if s.cfg.Goal != 0 && score >= s.cfg.Goal {
			break
		}
		if s.tm.Exceeded() || !s.tm.ShouldStartNext(lastIteration) {
			break
		}
	}

	s.stats.Elapsed = s.tm.Elapsed()
	analysis.Stats = s.stats
	return analysis
}

// pvResolved reports whether the principal variation ends in a terminal
// position, in which case deeper iterations cannot change the result.
func (s *PvSearch[P, S]) pvResolved(root S, pv []P) bool {
	state := root
	for _, ply := range pv {
		next, err := state.Apply(ply)
		if err != nil {
			return false
		}
		state = next
	}
	_, over := state.Terminal()
	return over
}
