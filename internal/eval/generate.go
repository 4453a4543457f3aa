package eval

// Layouts is the number of distinct 3x3 boards over {-1, 0, 1}.
const Layouts = 19683

var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// ScoreFunc scores one 3x3 layout, row-major, identities -1/0/1.
type ScoreFunc func(cells [9]int) int

// Generate builds exhaustive tables by scoring every layout.
func Generate(sub, large ScoreFunc) *Tables {
	t := &Tables{
		Sub:   make(map[string]int, Layouts),
		Large: make(map[string]int, Layouts),
	}
	var cells [9]int
	for n := 0; n < Layouts; n++ {
		v := n
		for i := range cells {
			cells[i] = v%3 - 1
			v /= 3
		}
		key := Encode(cells)
		t.Sub[key] = sub(cells)
		t.Large[key] = large(cells)
	}
	return t
}

// LinePotential scores a layout by its open lines: a line held only by one
// side is worth weight*count^2 to that side, a completed line is worth win.
func LinePotential(weight, win int) ScoreFunc {
	return func(cells [9]int) int {
		score := 0
		for _, ln := range lines {
			mine, theirs := 0, 0
			for _, i := range ln {
				switch cells[i] {
				case 1:
					mine++
				case -1:
					theirs++
				}
			}
			switch {
			case mine == 3:
				return win
			case theirs == 3:
				return -win
			case theirs == 0:
				score += weight * mine * mine
			case mine == 0:
				score -= weight * theirs * theirs
			}
		}
		return score
	}
}

// DefaultTables are the line-potential tables written by cmd/tablegen.
func DefaultTables() *Tables {
	return Generate(LinePotential(1, 100), LinePotential(10, 10000))
}
