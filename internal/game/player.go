package game

import (
	"fmt"
)

// Player represents a seat at the table for the duration of a hand.
type Player struct {
	Seat      int    // Seat index (0-based)
	Name      string // Player name
	Chips     int    // Chips remaining behind
	HoleCards Hand   // Hole cards, encoded as a card bitmask

	Bet       int  // Amount committed this betting round
	TotalBet  int  // Amount committed this hand
	Folded    bool // Has folded this hand
	AllInFlag bool // Is all-in
}

// String returns a string representation of the player.
func (p *Player) String() string {
	return fmt.Sprintf("%s (Seat %d) - $%d", p.Name, p.Seat, p.Chips)
}

// IsInHand returns true if the player can still win the pot.
func (p *Player) IsInHand() bool {
	return !p.Folded
}

// CanAct returns true if the player is still able to take an action
// this hand (hasn't folded or been forced all-in).
func (p *Player) CanAct() bool {
	return !p.Folded && !p.AllInFlag
}

// GetEffectiveStack returns chips remaining plus whatever is already in
// the pot for this hand, i.e. the player's stack if the hand ended now
// and every chip returned.
func (p *Player) GetEffectiveStack() int {
	return p.Chips + p.TotalBet
}
