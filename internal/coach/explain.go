package coach

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
	"github.com/karu-dev/pawn-tutor/internal/msgcat"
)

// Reason identifies the single headline predicate behind an explanation.
type Reason string

const (
	ReasonCheck       Reason = "check"
	ReasonCapture     Reason = "capture"
	ReasonEscape      Reason = "escape"
	ReasonDevelopment Reason = "development"
	ReasonCenter      Reason = "center"
	ReasonDefault     Reason = "default"
)

// Explanation binds one headline reason to its rendered text.
type Explanation struct {
	Reason Reason
	Text   string
}

// moveFacts carries everything the predicates inspect, precomputed once so
// each predicate stays a pure function.
type moveFacts struct {
	pos      *nchess.Position
	move     *nchess.Move
	moveSAN  string
	mover    nchess.Color
	piece    nchess.Piece
	captured nchess.Piece
	before   grid
	after    grid
}

type predicate struct {
	reason Reason
	fires  func(f *moveFacts) bool
}

// Predicate order is the explanation priority: the first match wins, and the
// default always fires.
var predicateOrder = []predicate{
	{ReasonCheck, func(f *moveFacts) bool {
		return f.move.HasTag(nchess.Check)
	}},
	{ReasonCapture, func(f *moveFacts) bool {
		return f.captured != nchess.NoPiece
	}},
	{ReasonEscape, func(f *moveFacts) bool {
		ff, fr := squareCoords(f.move.S1())
		tf, tr := squareCoords(f.move.S2())
		enemy := opponent(f.mover)
		wasThreatened := f.before.isAttacked(ff, fr, enemy) && !f.before.isAttacked(ff, fr, f.mover)
		stillHanging := f.after.isAttacked(tf, tr, enemy) && !f.after.isAttacked(tf, tr, f.mover)
		return wasThreatened && !stillHanging
	}},
	{ReasonDevelopment, func(f *moveFacts) bool {
		t := f.piece.Type()
		if t != nchess.Knight && t != nchess.Bishop {
			return false
		}
		backRank := 0
		if f.mover == nchess.Black {
			backRank = 7
		}
		_, fr := squareCoords(f.move.S1())
		_, tr := squareCoords(f.move.S2())
		return fr == backRank && tr != backRank
	}},
	{ReasonCenter, func(f *moveFacts) bool {
		if isCenterSquare(f.move.S2()) {
			return true
		}
		return centerControl(&f.after, f.mover) > centerControl(&f.before, f.mover)
	}},
	{ReasonDefault, func(f *moveFacts) bool { return true }},
}

// Explainer renders the headline rationale for a chosen move from the
// message catalog. Deterministic and side-effect free; never returns an
// empty text for a legal move.
type Explainer struct {
	catalog *msgcat.Catalog
}

func NewExplainer(catalog *msgcat.Catalog) *Explainer {
	return &Explainer{catalog: catalog}
}

func (e *Explainer) Explain(pos *nchess.Position, moveUCI string) (Explanation, error) {
	facts, err := buildMoveFacts(pos, moveUCI)
	if err != nil {
		return Explanation{}, err
	}

	for _, p := range predicateOrder {
		if !p.fires(facts) {
			continue
		}
		return Explanation{Reason: p.reason, Text: e.render(p.reason, facts)}, nil
	}
	// Unreachable: the default predicate always fires.
	return Explanation{Reason: ReasonDefault, Text: e.render(ReasonDefault, facts)}, nil
}

// WhyNot produces short reasons a rejected candidate was not chosen.
func (e *Explainer) WhyNot(pos *nchess.Position, rejected ScoredMove, elo int) []string {
	facts, err := buildMoveFacts(pos, rejected.Move)
	if err != nil {
		return nil
	}
	data := map[string]any{"MoveSAN": facts.moveSAN, "Elo": elo}

	var reasons []string
	if hangingPieces(&facts.after, facts.mover) > hangingPieces(&facts.before, facts.mover) {
		reasons = appendRendered(reasons, e.catalog, "whynot.hanging", data)
	}
	if kingSafety(&facts.after, facts.mover) < kingSafety(&facts.before, facts.mover) {
		reasons = appendRendered(reasons, e.catalog, "whynot.king", data)
	}
	if rejected.Risk == RiskMistake || rejected.Risk == RiskBlunder {
		reasons = appendRendered(reasons, e.catalog, "whynot.risk", data)
	}
	return reasons
}

// LearningTip returns the fixed coaching tip shown in learning mode.
func (e *Explainer) LearningTip() string {
	if out, err := e.catalog.Render("tip.learning", nil); err == nil {
		return out
	}
	return "Develop pieces, protect your king, and avoid hanging material."
}

func (e *Explainer) render(reason Reason, facts *moveFacts) string {
	key := "explain." + string(reason)
	data := map[string]any{
		"MoveSAN":  facts.moveSAN,
		"Piece":    pieceName(facts.piece.Type()),
		"Captured": pieceName(facts.captured.Type()),
	}
	if reason == ReasonCapture && winsCapturedMaterial(facts) {
		if out, err := e.catalog.Render("explain.capture_winning", data); err == nil {
			return out
		}
	}
	if out, err := e.catalog.Render(key, data); err == nil && strings.TrimSpace(out) != "" {
		return out
	}
	// Catalog miss still yields a usable non-empty explanation.
	return fmt.Sprintf("%s is a reasonable move here.", facts.moveSAN)
}

// winsCapturedMaterial holds when the capture takes a more valuable piece or
// an undefended one.
func winsCapturedMaterial(f *moveFacts) bool {
	if f.captured == nchess.NoPiece {
		return false
	}
	if pieceValues[f.captured.Type()] > pieceValues[f.piece.Type()] {
		return true
	}
	tf, tr := squareCoords(f.move.S2())
	return !f.before.isAttacked(tf, tr, opponent(f.mover))
}

func buildMoveFacts(pos *nchess.Position, moveUCI string) (*moveFacts, error) {
	if pos == nil {
		return nil, fmt.Errorf("%w: nil position", ErrEncoding)
	}
	mv, err := resolveMove(pos, moveUCI)
	if err != nil {
		return nil, err
	}
	after := pos.Update(mv)
	if after == nil {
		return nil, fmt.Errorf("apply %s failed", moveUCI)
	}

	before := snapshot(pos.Board())
	mover := pos.Turn()

	captured := nchess.NoPiece
	if mv.HasTag(nchess.Capture) || mv.HasTag(nchess.EnPassant) {
		capSquare := mv.S2()
		if mv.HasTag(nchess.EnPassant) {
			f, r := squareCoords(mv.S2())
			if mover == nchess.White {
				capSquare = nchess.NewSquare(nchess.File(f), nchess.Rank(r-1))
			} else {
				capSquare = nchess.NewSquare(nchess.File(f), nchess.Rank(r+1))
			}
		}
		cf, cr := squareCoords(capSquare)
		captured = before.at(cf, cr)
	}

	ff, fr := squareCoords(mv.S1())
	return &moveFacts{
		pos:      pos,
		move:     mv,
		moveSAN:  nchess.AlgebraicNotation{}.Encode(pos, mv),
		mover:    mover,
		piece:    before.at(ff, fr),
		captured: captured,
		before:   before,
		after:    snapshot(after.Board()),
	}, nil
}

func appendRendered(out []string, catalog *msgcat.Catalog, key string, data map[string]any) []string {
	if rendered, err := catalog.Render(key, data); err == nil && strings.TrimSpace(rendered) != "" {
		return append(out, rendered)
	}
	return out
}

func pieceName(t nchess.PieceType) string {
	switch t {
	case nchess.Pawn:
		return "pawn"
	case nchess.Knight:
		return "knight"
	case nchess.Bishop:
		return "bishop"
	case nchess.Rook:
		return "rook"
	case nchess.Queen:
		return "queen"
	case nchess.King:
		return "king"
	default:
		return "piece"
	}
}
