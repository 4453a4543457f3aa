package domain

// PlayerState is the occupant of a single cell.
type PlayerState int8

const (
	Opponent PlayerState = -1
	Empty    PlayerState = 0
	Agent    PlayerState = 1
)

// Identity is the value used in win checks and table encodings.
func (p PlayerState) Identity() int { return int(p) }

// Other swaps Agent and Opponent; Empty stays Empty.
func (p PlayerState) Other() PlayerState { return -p }

func (p PlayerState) String() string {
	switch p {
	case Agent:
		return "agent"
	case Opponent:
		return "opponent"
	default:
		return "empty"
	}
}

func (p PlayerState) lineOwner() (BoardState, bool) {
	if p == Empty {
		return Undecided, false
	}
	return BoardStateOf(p), true
}

// BoardState classifies a finished (or unfinished) board.
type BoardState int8

const (
	Undecided BoardState = iota
	AgentWon
	OpponentWon
	Tie
)

// BoardStateOf maps a cell occupant to the board result it produces when it completes a line.
func BoardStateOf(p PlayerState) BoardState {
	switch p {
	case Agent:
		return AgentWon
	case Opponent:
		return OpponentWon
	default:
		return Undecided
	}
}

// Identity encodes a meta-board cell: the owner's identity, 0 for undecided and tied boards.
func (b BoardState) Identity() int {
	switch b {
	case AgentWon:
		return int(Agent)
	case OpponentWon:
		return int(Opponent)
	default:
		return 0
	}
}

// A tied sub-board fills its meta cell but never completes a line.
func (b BoardState) lineOwner() (BoardState, bool) {
	switch b {
	case AgentWon, OpponentWon:
		return b, true
	default:
		return Undecided, false
	}
}

func (b BoardState) String() string {
	switch b {
	case AgentWon:
		return "agent"
	case OpponentWon:
		return "opponent"
	case Tie:
		return "tie"
	default:
		return "undecided"
	}
}
