package board

// Kind tags a board square with its rent category.
type Kind int

const (
	KindStreet  Kind = iota // color-group square with the house rent ladder
	KindRailway             // rent scales with railways owned
	KindUtility             // rent scales with utilities owned, times dice
	KindSpecial             // GO, tax, jail, card squares; never ownable
)

// Square is one static board position. IDs run 1-40 starting at GO.
type Square struct {
	ID        int
	Name      string
	Kind      Kind
	Group     string // color group id, "0" for non-developable squares
	Price     int64
	Rent      [6]int64 // site rent through hotel, streets only
	HouseCost int64
}

// Ownable reports whether the square can be bought from the bank.
func (s Square) Ownable() bool {
	return s.Kind != KindSpecial
}

// Developable reports whether houses can be built on the square.
func (s Square) Developable() bool {
	return s.Kind == KindStreet && s.Group != "0"
}

// MortgageValue is what the bank pays when the square is mortgaged.
func (s Square) MortgageValue() int64 {
	return s.Price / 2
}

// Get returns the square at the given board position.
func Get(id int) (Square, bool) {
	if id < 1 || id > len(catalog) {
		return Square{}, false
	}
	return catalog[id-1], true
}

// Size is the number of board positions.
func Size() int {
	return len(catalog)
}

// GroupPositions returns the board positions of a color group.
func GroupPositions(group string) []int {
	var out []int
	for _, sq := range catalog {
		if sq.Kind == KindStreet && sq.Group == group {
			out = append(out, sq.ID)
		}
	}
	return out
}

// StreetRent is the rent for a street at the given development level.
func StreetRent(s Square, development int) int64 {
	if development < 0 {
		development = 0
	}
	if development > 5 {
		development = 5
	}
	return s.Rent[development]
}

// RailwayRent doubles per railway owned: 25, 50, 100, 200.
func RailwayRent(owned int) int64 {
	if owned <= 0 {
		return 0
	}
	if owned > 4 {
		owned = 4
	}
	return 25 << (owned - 1)
}

// UtilityRent is 4x the dice total with one utility, 10x with both.
func UtilityRent(owned, dice int) int64 {
	switch {
	case owned <= 0:
		return 0
	case owned == 1:
		return int64(4 * dice)
	default:
		return int64(10 * dice)
	}
}

// expectedDice is the expected total of two dice, used when valuing
// utility rent potential without an actual roll.
const expectedDice = 7

// RentPotential is the one-turn rent a square would earn its owner,
// used by the net-worth evaluator. railways and utilities are the
// counts owned by that player.
func RentPotential(s Square, development, railways, utilities int) int64 {
	switch s.Kind {
	case KindStreet:
		return StreetRent(s, development)
	case KindRailway:
		return RailwayRent(railways)
	case KindUtility:
		return UtilityRent(utilities, expectedDice)
	default:
		return 0
	}
}
