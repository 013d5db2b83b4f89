package recompute

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/ramonehamilton/bridge-scorer/internal/scoring/engine"
)

// Fingerprint hashes everything a session's results depend on: the engine
// configuration, the board rows, the corrections and the schema facts.
// Map iteration order never affects the result.
func Fingerprint(cfg engine.Config, in engine.SessionInput) string {
	h := fingerprinter{d: xxhash.New()}

	h.ints(int(cfg.Method), cfg.PairCount, cfg.SetSize, cfg.GameCount, flag(cfg.Neuberg), in.Session)

	games := make([]int, 0, len(in.Boards))
	for g := range in.Boards {
		games = append(games, g)
	}
	sort.Ints(games)
	for _, g := range games {
		rows := append([]engine.BoardResult(nil), in.Boards[g]...)
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i], rows[j]
			switch {
			case a.PairNS != b.PairNS:
				return a.PairNS < b.PairNS
			case a.PairEW != b.PairEW:
				return a.PairEW < b.PairEW
			case a.ScoreNS != b.ScoreNS:
				return a.ScoreNS < b.ScoreNS
			default:
				return a.ScoreEW < b.ScoreEW
			}
		})
		h.ints(g, len(rows))
		for _, r := range rows {
			h.ints(r.PairNS, r.PairEW, int(r.ScoreNS), int(r.ScoreEW))
		}
	}

	pairs := make([]int, 0, len(in.Corrections))
	for p := range in.Corrections {
		pairs = append(pairs, p)
	}
	sort.Ints(pairs)
	h.ints(len(pairs))
	for _, p := range pairs {
		c := in.Corrections[p]
		h.ints(p, int(c.Kind), c.Value)
		if c.Combi != nil {
			h.ints(1, c.Combi.Extra, c.Combi.MaxExtra, c.Combi.Games)
		} else {
			h.ints(0)
		}
	}

	if in.Schema != nil {
		h.ints(1, in.Schema.CombiTop())
		for p := 1; p <= cfg.PairCount; p++ {
			h.ints(in.Schema.NumberOfRounds(p), flag(in.Schema.IsCombiCandidate(p)))
		}
	} else {
		h.ints(0)
	}
	h.ints(in.GlobalPair...)

	return fmt.Sprintf("%016x", h.d.Sum64())
}

type fingerprinter struct {
	d   *xxhash.Digest
	buf [8]byte
}

func (f *fingerprinter) ints(vs ...int) {
	for _, v := range vs {
		binary.LittleEndian.PutUint64(f.buf[:], uint64(int64(v)))
		_, _ = f.d.Write(f.buf[:])
	}
}

func flag(b bool) int {
	if b {
		return 1
	}
	return 0
}
