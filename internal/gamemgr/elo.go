package gamemgr

import "math"

// WinProbability is the expected score of a player rated a against one rated b.
func WinProbability(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/400))
}

// NewRatings applies one Elo update. outcome is the score of p1: 1 for a win,
// 0.5 for a draw and 0 for a loss.
func NewRatings(p1, p2, k, outcome float64) (float64, float64) {
	e1 := WinProbability(p1, p2)
	e2 := WinProbability(p2, p1)
	return p1 + k*(outcome-e1), p2 + k*((1-outcome)-e2)
}
