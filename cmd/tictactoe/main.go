// Command tictactoe plays tic-tac-toe against the search engine on the
// terminal. The human plays X and enters moves as "column row" (1-based).
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cdbfoster/zero-sum-sub001/game"
	"github.com/cdbfoster/zero-sum-sub001/search"
	"github.com/cdbfoster/zero-sum-sub001/store"
	"github.com/cdbfoster/zero-sum-sub001/tictactoe"
)

const tableSnapshotName = "tictactoe"

var (
	depth     = flag.Int("depth", 9, "maximum search depth")
	moveTime  = flag.Duration("time", 0, "time budget per engine move (0 = none)")
	goal      = flag.Int("goal", 0, "stop deepening once the evaluation reaches this (0 = never)")
	tableSize = flag.Int("table", 1<<16, "transposition table capacity in entries")
	persist   = flag.Bool("persist", false, "persist the transposition table and search totals")
	verbose   = flag.Bool("v", false, "log per-depth search progress")
)

func main() {
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	engine, err := search.New[tictactoe.Ply, tictactoe.Board](tictactoe.Evaluator{}, search.Config{
		MaxDepth:  *depth,
		TimeLimit: *moveTime,
		Goal:      game.Eval(*goal),
		TableSize: *tableSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("bad engine configuration")
	}

	var db *store.Store
	totals := &store.Totals{}
	if *persist {
		db, err = store.OpenDefault()
		if err != nil {
			log.Fatal().Err(err).Msg("opening store")
		}
		defer db.Close()

		if saved, err := db.LoadTable(tableSnapshotName); err != nil {
			log.Warn().Err(err).Msg("loading table snapshot")
		} else if len(saved) > 0 {
			engine.Table().Restore(saved)
			log.Info().Msgf("restored %d transposition entries", len(saved))
		}
		if totals, err = db.LoadTotals(); err != nil {
			log.Warn().Err(err).Msg("loading totals")
			totals = &store.Totals{}
		}
	}

	board := tictactoe.New()
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Printf("\n%v\n", board)

		if term, over := board.Terminal(); over {
			printResult(board, term)
			break
		}

		var next tictactoe.Board
		if board.NextMark() == tictactoe.X {
			next = readHumanPly(reader, board)
		} else {
			analysis := engine.Search(board)
			totals.Add(analysis.Stats)
			log.Info().Msgf("engine: %s, eval %d", analysis.Stats, analysis.Eval)

			if len(analysis.PV) == 0 {
				log.Fatal().Msg("engine returned no move for a live position")
			}
			ply := analysis.PV[0]
			fmt.Printf("\nEngine plays %v\n", ply)
			next, err = board.Apply(ply)
			if err != nil {
				log.Fatal().Err(err).Msg("engine produced an illegal ply")
			}
		}
		board = next
	}

	if db != nil {
		if err := db.SaveTable(tableSnapshotName, engine.Table().Snapshot()); err != nil {
			log.Warn().Err(err).Msg("saving table snapshot")
		}
		if err := db.SaveTotals(totals); err != nil {
			log.Warn().Err(err).Msg("saving totals")
		}
		log.Info().Msgf("totals: %d searches, %d nodes, %v",
			totals.Searches, totals.NodesVisited, totals.TimeSearched.Round(time.Millisecond))
	}
}

func readHumanPly(reader *bufio.Reader, board tictactoe.Board) tictactoe.Board {
	for {
		fmt.Print("\nYour move (column row): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			os.Exit(0)
		}

		var x, y int
		if _, err := fmt.Sscanf(line, "%d %d", &x, &y); err != nil {
			fmt.Println("Enter two numbers, e.g. \"2 2\" for the center.")
			continue
		}

		next, err := board.Apply(tictactoe.Ply{Mark: board.NextMark(), X: x - 1, Y: y - 1})
		if err != nil {
			fmt.Println(err)
			continue
		}
		return next
	}
}

func printResult(board tictactoe.Board, term game.Eval) {
	switch {
	case term.IsLoss() && board.NextMark() == tictactoe.X:
		fmt.Println("\nThe engine wins.")
	case term.IsLoss():
		fmt.Println("\nYou win!")
	default:
		fmt.Println("\nCat's game.")
	}
}
