package ai

import (
	"errors"
	"math/rand"
	"sort"

	"github.com/park285/paint-chess/pkg/paintdto"
)

// Candidate is one legal move with its selection weight.
type Candidate struct {
	From   string
	To     string
	Weight float64
}

// Weights tune how the player favours kinds of moves.
type Weights struct {
	Capture float64
	Paint   float64
	Quiet   float64
}

// DefaultWeights favour captures, then moves onto enemy turf.
var DefaultWeights = Weights{Capture: 6, Paint: 2, Quiet: 1}

// Candidates lists the legal moves of the side the view belongs to, in a
// stable order.
func Candidates(v paintdto.ClientView, w Weights) []Candidate {
	opp := "p2"
	if v.OwnRole == "p2" {
		opp = "p1"
	}
	var out []Candidate
	for from, tos := range v.LegalMovesRundown[v.OwnRole] {
		for _, to := range tos {
			weight := w.Quiet
			dst := v.BoardDesc[to]
			switch {
			case dst.Player == opp:
				weight = w.Capture
			case dst.Turf == opp:
				weight = w.Paint
			}
			out = append(out, Candidate{From: from, To: to, Weight: weight})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// SelectCandidate draws one candidate with probability proportional to its weight.
func SelectCandidate(candidates []Candidate, r *rand.Rand) (Candidate, error) {
	if len(candidates) == 0 {
		return Candidate{}, errors.New("no candidates to choose from")
	}
	total := 0.0
	for _, c := range candidates {
		if c.Weight > 0 {
			total += c.Weight
		}
	}
	if total == 0 {
		return Candidate{}, errors.New("candidate weights sum to zero")
	}

	threshold := r.Float64() * total
	var last Candidate
	for _, c := range candidates {
		if c.Weight <= 0 {
			continue
		}
		last = c
		threshold -= c.Weight
		if threshold <= 0 {
			return c, nil
		}
	}
	return last, nil
}
