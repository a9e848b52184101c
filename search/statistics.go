package search

import (
	"fmt"
	"time"

	"github.com/cdbfoster/zero-sum-sub001/game"
)

// Statistics counts the work performed by a single Search call, including
// any abandoned final iteration.
type Statistics struct {
	NodesVisited uint64        // interior nodes entered
	Evaluated    uint64        // leaf and terminal evaluations
	TTHits       uint64        // usable transposition entries
	TTStores     uint64        // transposition entries written
	Depth        int           // deepest fully completed iteration
	Elapsed      time.Duration // wall-clock time of the whole call
}

func (s Statistics) String() string {
	return fmt.Sprintf("depth %d, %d nodes, %d evaluated, %d tt hits, %d tt stores, %v",
		s.Depth, s.NodesVisited, s.Evaluated, s.TTHits, s.TTStores, s.Elapsed.Round(time.Microsecond))
}

// Analysis is the result of a search: the best line found, its evaluation
// from the root side to move's perspective, and the work accounting. The PV
// always comes from a fully completed deepening iteration.
type Analysis[P game.Ply] struct {
	PV    []P
	Eval  game.Eval
	Stats Statistics
}
