package search

import "github.com/cdbfoster/zero-sum-sub001/game"

// The clock is sampled once per this many node visits. Every node would be
// wasteful; the driver also checks the budget between iterations.
const timeCheckMask = 1023

// negamax searches st to the remaining depth within the window (alpha,
// beta). prev is the tail of the previous iteration's principal variation
// rooted at this node (empty off the principal line); it seeds move
// ordering. The returned line is the best continuation found and never
// shares storage with sibling lines.
//
// The first candidate is searched on the full window and later candidates
// on a null window, re-searched on a fail-high inside (alpha, beta).
func (s *PvSearch[P, S]) negamax(st S, prev []P, depth, ply int, alpha, beta game.Eval) (game.Eval, []P) {
	if s.stats.NodesVisited&timeCheckMask == 0 {
		if s.stopFlag.Load() || s.tm.Exceeded() {
			s.aborted = true
		}
	}
	if s.aborted {
		return 0, nil
	}

	s.stats.NodesVisited++

	if term, over := st.Terminal(); over {
		s.stats.Evaluated++
		return terminalScore(term, ply), nil
	}
	if depth == 0 {
		s.stats.Evaluated++
		return s.evaluator.Evaluate(st), nil
	}

	hash := st.Hash()

	// A cached result deep enough for this node resolves it outright when
	// exact, and otherwise narrows the window. Skipped at the root so the
	// analysis always carries a full principal variation.
	var ttPly P
	var haveTTPly bool
	if entry, found := s.tt.Probe(hash); found {
		ttPly, haveTTPly = entry.BestPly, true
		if ply > 0 && int(entry.Depth) >= depth {
			score := adjustScoreFromTT(entry.Score, ply)
			switch entry.Bound {
			case BoundExact:
				s.stats.TTHits++
				return score, s.entryLine(st, entry)
			case BoundLower:
				if score > alpha {
					alpha = score
					s.stats.TTHits++
				}
			case BoundUpper:
				if score < beta {
					beta = score
					s.stats.TTHits++
				}
			}
			if alpha >= beta {
				return score, s.entryLine(st, entry)
			}
		}
	}

	plies := st.Extrapolate()
	if len(plies) == 0 {
		// The state reported no plies without classifying itself terminal.
		// That breaks the extrapolation contract; fall back to the static
		// evaluation rather than failing.
		s.stats.Evaluated++
		return s.evaluator.Evaluate(st), nil
	}

	var principal P
	hasPrincipal := len(prev) > 0
	if hasPrincipal {
		principal = prev[0]
	}
	ordered := orderPlies(plies, principal, hasPrincipal, ttPly, haveTTPly)

	alphaOrig := alpha
	bestScore := -game.EvalInfinity
	var bestLine []P
	first := true

	for _, cand := range ordered {
		child, err := st.Apply(cand)
		if err != nil {
			continue
		}

		var childPrev []P
		if hasPrincipal && cand == principal && len(prev) > 1 {
			childPrev = prev[1:]
		}

		var score game.Eval
		var line []P
		if first {
			v, l := s.negamax(child, childPrev, depth-1, ply+1, -beta, -alpha)
			score, line = -v, l
		} else {
			v, l := s.negamax(child, childPrev, depth-1, ply+1, -alpha-1, -alpha)
			score, line = -v, l
			if score > alpha && score < beta {
				v, l = s.negamax(child, childPrev, depth-1, ply+1, -beta, -alpha)
				score, line = -v, l
			}
		}
		if s.aborted {
			return 0, nil
		}
		first = false

		if score > bestScore {
			bestScore = score
			bestLine = append([]P{cand}, line...)
		}
		if score > alpha {
			alpha = score
		}
		if alpha >= beta {
			break
		}
	}

	if bestLine == nil {
		// Every candidate was inapplicable; same contract break as an
		// empty extrapolation.
		s.stats.Evaluated++
		return s.evaluator.Evaluate(st), nil
	}

	var bound Bound
	switch {
	case bestScore <= alphaOrig:
		bound = BoundUpper
	case bestScore >= beta:
		bound = BoundLower
	default:
		bound = BoundExact
	}
	if s.tt.Store(hash, depth, adjustScoreToTT(bestScore, ply), bound, bestLine[0]) {
		s.stats.TTStores++
	}

	return bestScore, bestLine
}

// entryLine turns a transposition entry into a one-ply continuation,
// verifying the cached ply still applies here. Entries restored from a
// snapshot carry no ply.
func (s *PvSearch[P, S]) entryLine(st S, entry Entry[P]) []P {
	if _, err := st.Apply(entry.BestPly); err != nil {
		return nil
	}
	return []P{entry.BestPly}
}

// terminalScore adjusts a terminal classification by its distance from the
// root so nearer wins (and farther losses) are preferred.
func terminalScore(term game.Eval, ply int) game.Eval {
	if term.IsWin() {
		return term - game.Eval(ply)
	}
	if term.IsLoss() {
		return term + game.Eval(ply)
	}
	return term
}

// orderPlies arranges candidates for exploration: the previous iteration's
// principal ply first, the cached best ply second, and the rest in
// extrapolation order.
func orderPlies[P game.Ply](plies []P, principal P, hasPrincipal bool, ttPly P, haveTTPly bool) []P {
	if !hasPrincipal && !haveTTPly {
		return plies
	}

	ordered := make([]P, 0, len(plies))
	if hasPrincipal {
		ordered = append(ordered, principal)
	}
	if haveTTPly && (!hasPrincipal || ttPly != principal) {
		ordered = append(ordered, ttPly)
	}
	for _, p := range plies {
		if hasPrincipal && p == principal {
			continue
		}
		if haveTTPly && p == ttPly {
			continue
		}
		ordered = append(ordered, p)
	}
	return ordered
}
