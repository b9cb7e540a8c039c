package opt

import "fmt"

// Move relocates Client from route From to route To. It is comparable and used
// directly as a map key; a move and its reverse are different keys.
type Move struct {
	Client string `json:"client"`
	From   int    `json:"from"`
	To     int    `json:"to"`
}

func (m Move) Reverse() Move { return Move{Client: m.Client, From: m.To, To: m.From} }

func (m Move) String() string { return fmt.Sprintf("%s:%d->%d", m.Client, m.From, m.To) }

// TabuList is the short-term memory of recently committed moves.
type TabuList struct {
	entries map[Move]int
}

func NewTabuList() *TabuList {
	return &TabuList{entries: map[Move]int{}}
}

func (t *TabuList) IsTabu(m Move) bool {
	_, ok := t.entries[m]
	return ok
}

// Register sets the remaining tenure of m. A tenure <= 0 clears it.
func (t *TabuList) Register(m Move, tenure int) {
	if tenure <= 0 {
		delete(t.entries, m)
		return
	}
	t.entries[m] = tenure
}

// Decay decrements every tenure by one and drops entries that reach zero.
func (t *TabuList) Decay() {
	for m, left := range t.entries {
		if left <= 1 {
			delete(t.entries, m)
			continue
		}
		t.entries[m] = left - 1
	}
}

// Remaining returns the tenure left for m, 0 when m is not tabu.
func (t *TabuList) Remaining(m Move) int { return t.entries[m] }

func (t *TabuList) Len() int { return len(t.entries) }
