// Package benchmarks measures scoring throughput on generated competitions.
//
//	go test -bench=. -benchmem ./benchmarks/...
//
// To compare two builds:
//
//	go install golang.org/x/perf/cmd/benchstat@latest
//	go test -bench=. -benchmem -count=5 ./benchmarks/... > old.txt
//	go test -bench=. -benchmem -count=5 ./benchmarks/... > new.txt
//	benchstat old.txt new.txt
package benchmarks

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/ramonehamilton/bridge-scorer/internal/recompute"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/engine"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/score"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/totals"
)

var sink interface{}

var contractScores = []score.Value{420, 450, 170, 140, -50, -100, 620, -420, 110, 300, -200}

// generateSession builds a Mitchell-like session: tables*2 pairs, every board
// played once per table.
func generateSession(tables, boards int, seed int64) engine.SessionInput {
	rng := rand.New(rand.NewSource(seed))
	in := engine.SessionInput{Session: 1, Boards: make(map[int][]engine.BoardResult, boards)}
	for g := 1; g <= boards; g++ {
		rows := make([]engine.BoardResult, 0, tables)
		for t := 1; t <= tables; t++ {
			ew := tables + 1 + (t+g)%tables
			rows = append(rows, engine.BoardResult{
				PairNS:  t,
				PairEW:  ew,
				ScoreNS: contractScores[rng.Intn(len(contractScores))],
				ScoreEW: score.NoScore,
			})
		}
		in.Boards[g] = rows
	}
	return in
}

func BenchmarkScoreSession(b *testing.B) {
	for _, tables := range []int{8, 16, 32} {
		in := generateSession(tables, 27, 42)
		for _, method := range []score.Method{score.MethodPercentage, score.MethodButler} {
			cfg := engine.Config{Method: method, PairCount: tables * 2, SetSize: 3, GameCount: 27, Neuberg: true}
			b.Run(fmt.Sprintf("%s/tables=%d", method, tables), func(b *testing.B) {
				b.ReportAllocs()
				for i := 0; i < b.N; i++ {
					sink = engine.ScoreSession(cfg, in)
				}
			})
		}
	}
}

func BenchmarkScoreCompetition(b *testing.B) {
	const pairs, sessions = 64, 10
	rng := rand.New(rand.NewSource(7))

	in := engine.CompetitionInput{PairCount: pairs, Sessions: make([]map[int]totals.Session, sessions)}
	for s := range in.Sessions {
		in.Sessions[s] = make(map[int]totals.Session, pairs)
		for p := 1; p <= pairs; p++ {
			if rng.Intn(10) == 0 {
				continue
			}
			in.Sessions[s][p] = totals.Session{Score: score.Hundredths(3500 + rng.Intn(3000)), Games: 27}
		}
	}
	cfg := engine.Config{Method: score.MethodPercentage, GameCount: 27, MaxSessions: sessions, MaxAbsent: 2, MaxMean: 6000}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		sink = engine.ScoreCompetition(cfg, in)
	}
}

func BenchmarkFingerprint(b *testing.B) {
	in := generateSession(16, 27, 42)
	cfg := engine.Config{Method: score.MethodPercentage, PairCount: 32, SetSize: 3, GameCount: 27}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		sink = recompute.Fingerprint(cfg, in)
	}
}
