package board

import "errors"

// Move rejection reasons. Apply returns exactly one of these and leaves the board untouched.
var (
	ErrOutOfBounds         = errors.New("coordinate out of bounds")
	ErrNoPiece             = errors.New("no piece on origin square")
	ErrNotOwner            = errors.New("piece belongs to the other player")
	ErrOutOfTurn           = errors.New("not this player's turn")
	ErrIllegalShape        = errors.New("piece cannot move that way")
	ErrFriendlyCapture     = errors.New("cannot capture own piece")
	ErrPathBlocked         = errors.New("path is blocked")
	ErrSelfCheck           = errors.New("move leaves own king in check")
	ErrCastlingUnavailable = errors.New("castling not available")
	ErrInvalidPromotion    = errors.New("invalid promotion piece")
	ErrInvalidDescription  = errors.New("invalid board description")
)
