package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ramonehamilton/bridge-scorer/internal/scoring/correction"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/engine"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/score"
	"github.com/ramonehamilton/bridge-scorer/internal/scoring/totals"
	"github.com/ramonehamilton/bridge-scorer/internal/storage/models"
)

// ErrSessionNotFound is returned when a session number is unknown.
var ErrSessionNotFound = errors.New("session not found")

// Service provides high-level operations over the scoring store.
type Service struct {
	db    *DB
	repos Repositories
}

// NewService creates a new storage service.
func NewService(db *DB) *Service {
	return &Service{
		db:    db,
		repos: newRepositories(db.Conn()),
	}
}

// Close closes the underlying database.
func (s *Service) Close() error {
	return s.db.Close()
}

// SessionSnapshot is everything stored about a session before scoring.
type SessionSnapshot struct {
	Session *models.Session
	Pairs   []*models.SessionPair
	Boards  []*models.BoardResult
	Input   engine.SessionInput
}

// LoadSession reads a session's board results, corrections and pairing facts
// and converts them to engine input.
func (s *Service) LoadSession(ctx context.Context, number int) (*SessionSnapshot, error) {
	session, err := s.repos.Sessions.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %d: %w", number, ErrSessionNotFound)
	}

	pairs, err := s.repos.Sessions.ListPairs(ctx, number)
	if err != nil {
		return nil, err
	}
	boards, err := s.repos.Boards.ListBySession(ctx, number)
	if err != nil {
		return nil, err
	}
	corrections, err := s.repos.Corrections.ListBySession(ctx, number)
	if err != nil {
		return nil, err
	}

	input := engine.SessionInput{
		Session:     number,
		Boards:      make(map[int][]engine.BoardResult),
		Corrections: make(map[int]correction.Correction, len(corrections)),
	}
	for _, b := range boards {
		input.Boards[b.Game] = append(input.Boards[b.Game], engine.BoardResult{
			PairNS:  b.PairNS,
			PairEW:  b.PairEW,
			ScoreNS: score.Value(b.ScoreNS),
			ScoreEW: score.Value(b.ScoreEW),
		})
	}
	for _, c := range corrections {
		conv, err := toCorrection(c)
		if err != nil {
			return nil, fmt.Errorf("session %d pair %d: %w", number, c.Pair, err)
		}
		input.Corrections[c.Pair] = conv
	}
	if len(pairs) > 0 {
		input.Schema = newSessionSchema(pairs, session.CombiTop)
		input.GlobalPair = globalPairs(pairs)
	}

	return &SessionSnapshot{Session: session, Pairs: pairs, Boards: boards, Input: input}, nil
}

// SaveSessionOutcome publishes a session's rank table, short results and
// diagnostics, and records the fingerprint they were computed from. Everything
// is written in one transaction.
func (s *Service) SaveSessionOutcome(ctx context.Context, res *engine.SessionResults, fingerprint, runID string, at time.Time) error {
	var results []*models.SessionResult
	for _, p := range res.Pairs {
		if p.Pair == 0 || !p.Played() {
			continue
		}
		results = append(results, &models.SessionResult{
			Session:     res.Session,
			GlobalPair:  p.GlobalPair,
			SessionPair: p.Pair,
			Score:       int(p.Score),
			Games:       p.Tally.Games,
		})
	}

	var ranks []*models.SessionRank
	for pos := 1; pos < len(res.Rank.PairAt); pos++ {
		pair := res.Rank.PairAt[pos]
		rank := 0
		if pair != 0 {
			rank = res.Rank.RankOf[pair]
		}
		ranks = append(ranks, &models.SessionRank{Session: res.Session, Position: pos, Pair: pair, Rank: rank})
	}

	var diags []*models.SessionDiagnostic
	for _, d := range res.Diagnostics {
		diags = append(diags, &models.SessionDiagnostic{Session: res.Session, Pair: d.Pair, Kind: "correction", Reason: d.Reason})
	}
	for _, b := range res.BadData {
		reason := b.Reason
		if b.Game > 0 {
			reason = fmt.Sprintf("board %d: %s", b.Game, b.Reason)
		}
		diags = append(diags, &models.SessionDiagnostic{Session: res.Session, Pair: b.PairNS, Kind: "bad_data", Reason: reason})
	}

	return s.db.WithTransaction(ctx, func(repos Repositories) error {
		if err := repos.Results.ReplaceSession(ctx, res.Session, results, ranks, diags); err != nil {
			return err
		}
		return repos.Sessions.MarkScored(ctx, res.Session, fingerprint, runID, at)
	})
}

// LoadCompetition reads every stored short result and end correction.
// Sessions are ordered by number; a gap in numbering yields an empty session.
func (s *Service) LoadCompetition(ctx context.Context, pairCount int) (engine.CompetitionInput, error) {
	in := engine.CompetitionInput{
		PairCount:      pairCount,
		EndCorrections: make(map[int]map[int]correction.EndCorrection),
	}

	sessions, err := s.repos.Sessions.List(ctx)
	if err != nil {
		return in, err
	}
	last := 0
	for _, sess := range sessions {
		if sess.Number > last {
			last = sess.Number
		}
	}
	in.Sessions = make([]map[int]totals.Session, last)
	for i := range in.Sessions {
		in.Sessions[i] = make(map[int]totals.Session)
	}

	results, err := s.repos.Results.ListAllResults(ctx)
	if err != nil {
		return in, err
	}
	for _, r := range results {
		if r.Session < 1 || r.Session > last {
			continue
		}
		in.Sessions[r.Session-1][r.GlobalPair] = totals.Session{Score: score.Hundredths(r.Score), Games: r.Games}
	}

	ends, err := s.repos.Corrections.ListEnd(ctx)
	if err != nil {
		return in, err
	}
	for _, e := range ends {
		if in.EndCorrections[e.Session] == nil {
			in.EndCorrections[e.Session] = make(map[int]correction.EndCorrection)
		}
		in.EndCorrections[e.Session][e.Pair] = correction.EndCorrection{
			Score: score.Hundredths(e.Score),
			Bonus: score.Hundredths(e.Bonus),
			Games: e.Games,
		}
	}

	in.Clubs, err = s.repos.Pairs.ClubMap(ctx)
	if err != nil {
		return in, err
	}
	return in, nil
}

// Sessions lists every session.
func (s *Service) Sessions(ctx context.Context) ([]*models.Session, error) {
	return s.repos.Sessions.List(ctx)
}

// EnsureSession creates a session header if it does not exist yet.
func (s *Service) EnsureSession(ctx context.Context, number int) (*models.Session, error) {
	existing, err := s.repos.Sessions.GetByNumber(ctx, number)
	if err != nil || existing != nil {
		return existing, err
	}
	session := &models.Session{Number: number}
	if err := s.repos.Sessions.Upsert(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// SaveSessionPairs stores a session's pairing schema facts.
func (s *Service) SaveSessionPairs(ctx context.Context, session int, combiTop int, pairs []*models.SessionPair) error {
	return s.db.WithTransaction(ctx, func(repos Repositories) error {
		existing, err := repos.Sessions.GetByNumber(ctx, session)
		if err != nil {
			return err
		}
		header := &models.Session{Number: session, CombiTop: combiTop}
		if existing != nil {
			header.PlayedOn = existing.PlayedOn
		}
		if err := repos.Sessions.Upsert(ctx, header); err != nil {
			return err
		}
		for _, p := range pairs {
			p.Session = session
			if err := repos.Sessions.UpsertPair(ctx, p); err != nil {
				return err
			}
		}
		return repos.Sessions.ClearFingerprint(ctx, session)
	})
}

// SaveBoardResults stores board results, creating the session when needed.
func (s *Service) SaveBoardResults(ctx context.Context, session int, rows []*models.BoardResult) error {
	if _, err := s.EnsureSession(ctx, session); err != nil {
		return err
	}
	return s.db.WithTransaction(ctx, func(repos Repositories) error {
		for _, row := range rows {
			row.Session = session
			if err := repos.Boards.Upsert(ctx, row); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveCorrection stores a session correction. A correction with nothing set
// is deleted instead.
func (s *Service) SaveCorrection(ctx context.Context, c *models.Correction) error {
	if _, err := s.EnsureSession(ctx, c.Session); err != nil {
		return err
	}
	if (c.Kind == "" || c.Kind == "none") && !c.HasCombi {
		return s.repos.Corrections.Delete(ctx, c.Session, c.Pair)
	}
	if c.Kind == "" {
		c.Kind = "none"
	}
	return s.repos.Corrections.Upsert(ctx, c)
}

// SaveEndCorrection stores an end correction.
func (s *Service) SaveEndCorrection(ctx context.Context, e *models.EndCorrection) error {
	return s.repos.Corrections.UpsertEnd(ctx, e)
}

// SavePair stores a competition pair.
func (s *Service) SavePair(ctx context.Context, p *models.Pair) error {
	return s.repos.Pairs.Upsert(ctx, p)
}

// SaveClub stores a club.
func (s *Service) SaveClub(ctx context.Context, c *models.Club) error {
	return s.repos.Pairs.UpsertClub(ctx, c)
}

// Clubs lists every club.
func (s *Service) Clubs(ctx context.Context) ([]*models.Club, error) {
	return s.repos.Pairs.ListClubs(ctx)
}

// Pairs lists every competition pair.
func (s *Service) Pairs(ctx context.Context) ([]*models.Pair, error) {
	return s.repos.Pairs.List(ctx)
}

// SessionStanding is one stored line of a session ranking.
type SessionStanding struct {
	Position   int `json:"position"`
	Rank       int `json:"rank"`
	Pair       int `json:"pair"`
	GlobalPair int `json:"globalPair"`
	Score      int `json:"score"` // Hundredths
	Games      int `json:"games"`
}

// SessionStandings reads a session's published ranking.
func (s *Service) SessionStandings(ctx context.Context, session int) ([]SessionStanding, error) {
	ranks, err := s.repos.Results.ListRanks(ctx, session)
	if err != nil {
		return nil, err
	}
	results, err := s.repos.Results.ListResults(ctx, session)
	if err != nil {
		return nil, err
	}

	bySessionPair := make(map[int]*models.SessionResult, len(results))
	for _, r := range results {
		bySessionPair[r.SessionPair] = r
	}

	var out []SessionStanding
	for _, rank := range ranks {
		if rank.Pair == 0 {
			continue
		}
		line := SessionStanding{Position: rank.Position, Rank: rank.Rank, Pair: rank.Pair, GlobalPair: rank.Pair}
		if r, ok := bySessionPair[rank.Pair]; ok {
			line.GlobalPair = r.GlobalPair
			line.Score = r.Score
			line.Games = r.Games
		}
		out = append(out, line)
	}
	return out, nil
}

// SessionDiagnostics reads the problems found when a session was last scored.
func (s *Service) SessionDiagnostics(ctx context.Context, session int) ([]*models.SessionDiagnostic, error) {
	return s.repos.Results.ListDiagnostics(ctx, session)
}

// BoardResults reads the stored rows of one board.
func (s *Service) BoardResults(ctx context.Context, session, game int) ([]*models.BoardResult, error) {
	return s.repos.Boards.ListByGame(ctx, session, game)
}

func toCorrection(c *models.Correction) (correction.Correction, error) {
	kind, err := correction.ParseKind(c.Kind)
	if err != nil {
		return correction.Correction{}, err
	}
	out := correction.Correction{Kind: kind, Value: c.Value}
	if c.HasCombi {
		out.Combi = &correction.Combi{Extra: c.CombiExtra, MaxExtra: c.CombiMaxExtra, Games: c.CombiGames}
	}
	return out, nil
}

func globalPairs(pairs []*models.SessionPair) []int {
	highest := 0
	for _, p := range pairs {
		if p.Pair > highest {
			highest = p.Pair
		}
	}
	out := make([]int, highest+1)
	for _, p := range pairs {
		out[p.Pair] = p.GlobalPair
	}
	return out
}

// sessionSchema answers engine.Schema from stored session pair rows.
type sessionSchema struct {
	rounds   map[int]int
	combi    map[int]bool
	combiTop int
}

func newSessionSchema(pairs []*models.SessionPair, combiTop int) *sessionSchema {
	s := &sessionSchema{
		rounds:   make(map[int]int, len(pairs)),
		combi:    make(map[int]bool, len(pairs)),
		combiTop: combiTop,
	}
	for _, p := range pairs {
		s.rounds[p.Pair] = p.Rounds
		s.combi[p.Pair] = p.CombiCandidate
	}
	return s
}

func (s *sessionSchema) NumberOfRounds(pair int) int { return s.rounds[pair] }

func (s *sessionSchema) IsCombiCandidate(pair int) bool { return s.combi[pair] }

func (s *sessionSchema) CombiTop() int { return s.combiTop }
