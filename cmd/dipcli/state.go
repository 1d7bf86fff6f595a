package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/freeeve/polite-betrayal/adjudicator/pkg/diplomacy"
)

var engineLog = zerolog.Nop()

// gameFlags selects the board a command works on: a saved snapshot, or a
// fresh game with a seeded choice of powers.
type gameFlags struct {
	statePath string
	numPowers int
	seed      uint64
	maxYears  int
}

func (f *gameFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.statePath, "state", "s", "", "JSON state snapshot to load (default: new game)")
	cmd.Flags().IntVarP(&f.numPowers, "powers", "n", 7, "Number of powers in a new game (3-7)")
	cmd.Flags().Uint64Var(&f.seed, "seed", 1, "Seed for choosing powers in a new game")
	cmd.Flags().IntVar(&f.maxYears, "max-years", diplomacy.DefaultMaxYears, "Years before the game ends in a draw (0 disables)")
}

func (f *gameFlags) load() (*diplomacy.Game, error) {
	opts := []diplomacy.Option{
		diplomacy.WithLogger(engineLog),
		diplomacy.WithMaxYears(f.maxYears),
		diplomacy.WithSeed(f.seed),
	}
	if f.statePath == "" {
		g, err := diplomacy.NewGame(opts...)
		if err != nil {
			return nil, err
		}
		if f.numPowers != len(diplomacy.AllPowers()) {
			if _, err := g.SetupGame(f.numPowers); err != nil {
				return nil, err
			}
		}
		return g, nil
	}

	data, err := os.ReadFile(f.statePath)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	var st diplomacy.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode state %s: %w", f.statePath, err)
	}
	return diplomacy.RestoreGame(st, opts...)
}

func saveState(path string, g *diplomacy.Game) error {
	data, err := json.MarshalIndent(g.State(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// readOrders parses an order file. Each line is "power: order"; blank
// lines and lines starting with # are skipped.
func readOrders(r io.Reader) (map[diplomacy.Power][]string, error) {
	orders := make(map[diplomacy.Power][]string)
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		power, text, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: want \"power: order\", got %q", lineNo, line)
		}
		p := diplomacy.Power(strings.ToLower(strings.TrimSpace(power)))
		orders[p] = append(orders[p], strings.TrimSpace(text))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}
