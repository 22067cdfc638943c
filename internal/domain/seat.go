package domain

// Seat is one of the four fixed table positions.
type Seat int

const (
	SeatN Seat = iota
	SeatE
	SeatS
	SeatW
)

// SeatCount is the number of players at a Mendikot table.
const SeatCount = 4

// Seats lists all seats in turn order starting from North.
var Seats = [SeatCount]Seat{SeatN, SeatE, SeatS, SeatW}

// DealOrder is the fixed order in which cards are handed out.
var DealOrder = [SeatCount]Seat{SeatE, SeatS, SeatW, SeatN}

func (s Seat) String() string {
	switch s {
	case SeatN:
		return "N"
	case SeatE:
		return "E"
	case SeatS:
		return "S"
	case SeatW:
		return "W"
	default:
		return "?"
	}
}

// Valid reports whether s names one of the four seats.
func (s Seat) Valid() bool {
	return s >= SeatN && s <= SeatW
}

// Next returns the seat that acts after s (N→E→S→W→N).
func (s Seat) Next() Seat {
	return (s + 1) % SeatCount
}

// Partner returns the teammate sitting opposite s.
func (s Seat) Partner() Seat {
	return (s + 2) % SeatCount
}

// Team returns the partnership s belongs to.
func (s Seat) Team() Team {
	if s == SeatN || s == SeatS {
		return TeamNS
	}
	return TeamEW
}

// ParseSeat converts "N", "E", "S" or "W" into a Seat.
func ParseSeat(v string) (Seat, bool) {
	for _, s := range Seats {
		if s.String() == v {
			return s, true
		}
	}
	return 0, false
}

// Team is one of the two fixed partnerships.
type Team string

const (
	TeamNS Team = "NS"
	TeamEW Team = "EW"
)

// Teams lists both partnerships.
var Teams = [2]Team{TeamNS, TeamEW}

// Opponent returns the other partnership.
func (t Team) Opponent() Team {
	if t == TeamNS {
		return TeamEW
	}
	return TeamNS
}

// Members returns the two seats of the team.
func (t Team) Members() [2]Seat {
	if t == TeamNS {
		return [2]Seat{SeatN, SeatS}
	}
	return [2]Seat{SeatE, SeatW}
}

// Has reports whether seat belongs to the team.
func (t Team) Has(seat Seat) bool {
	return seat.Team() == t
}
