package app

// Roulette identifies one of the two mount roulettes.
type Roulette uint

const (
	RouletteGround Roulette = iota
	RouletteFlying
)

// Roulettes returns all roulettes.
func Roulettes() []Roulette {
	return []Roulette{RouletteGround, RouletteFlying}
}

func (r Roulette) String() string {
	switch r {
	case RouletteGround:
		return "ground"
	case RouletteFlying:
		return "flying"
	}
	return "?"
}
