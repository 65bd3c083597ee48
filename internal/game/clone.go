package game

// Clone returns an independent copy of the deck: the same shuffled card
// order and deal position, sharing the RNG pointer (safe, since nothing
// past NewDeck reshuffles mid-hand).
func (d *Deck) Clone() *Deck {
	cloned := *d
	return &cloned
}

// Clone returns an independent copy of the pot manager.
func (pm *PotManager) Clone() *PotManager {
	cloned := make([]Pot, len(pm.pots))
	for i, p := range pm.pots {
		cp := p
		cp.Eligible = append([]int(nil), p.Eligible...)
		cloned[i] = cp
	}
	return &PotManager{pots: cloned}
}

// Clone returns an independent copy of the betting round.
func (br *BettingRound) Clone() *BettingRound {
	cloned := *br
	cloned.ActedThisRound = append([]bool(nil), br.ActedThisRound...)
	return &cloned
}

// Clone returns a deep, independent copy of the hand: a CFR tree branches
// many successors off the same parent node, so every mutation ProcessAction
// performs in place must happen on a private copy, never the parent's.
func (h *HandState) Clone() *HandState {
	players := make([]*Player, len(h.Players))
	for i, p := range h.Players {
		cp := *p
		players[i] = &cp
	}
	return &HandState{
		Players:      players,
		Button:       h.Button,
		Street:       h.Street,
		Board:        h.Board,
		PotManager:   h.PotManager.Clone(),
		ActivePlayer: h.ActivePlayer,
		Deck:         h.Deck.Clone(),
		Betting:      h.Betting.Clone(),
	}
}
