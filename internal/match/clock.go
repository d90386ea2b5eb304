package match

import (
	"time"

	"github.com/park285/paint-chess/internal/board"
)

// clock is one side's remaining time. A zero lastTick means it is not counting.
type clock struct {
	left     time.Duration
	lastTick time.Time
}

func (c *clock) running() bool { return !c.lastTick.IsZero() }

// debit subtracts the time since the last tick and reports whether the clock ran out.
func (c *clock) debit(now time.Time) bool {
	if !c.running() {
		return false
	}
	if elapsed := now.Sub(c.lastTick); elapsed > 0 {
		c.left -= elapsed
	}
	c.lastTick = now
	if c.left <= 0 {
		c.left = 0
		return true
	}
	return false
}

func idx(r board.Role) int {
	if r == board.P2 {
		return 1
	}
	return 0
}

// toggleClocks hands the countdown to the side to move. Nothing counts until both
// sides have made their first move.
func (m *Match) toggleClocks(now time.Time) {
	if m.completedTurns <= 1 {
		return
	}
	toMove := m.board.Turn()
	mover := &m.clocks[idx(toMove.Opponent())]
	mover.debit(now)
	mover.lastTick = time.Time{}
	m.clocks[idx(toMove)].lastTick = now
}

// Tick debits the running clock and enforces the timeout and the start deadline.
func (m *Match) Tick(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ended {
		return
	}
	for _, r := range []board.Role{board.P1, board.P2} {
		if m.clocks[idx(r)].debit(now) {
			m.finishLocked(Result{Winner: r.Opponent(), Method: MethodTimeout})
			return
		}
	}
	if !m.startDeadline.IsZero() && m.completedTurns < 2 && !now.Before(m.startDeadline) {
		m.finishLocked(Result{Method: MethodAborted})
	}
}

// TimeLeft returns the remaining time of r and whether its clock is counting.
func (m *Match) TimeLeft(r board.Role) (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.clocks[idx(r)]
	return c.left, c.running()
}
