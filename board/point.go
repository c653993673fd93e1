package board

import "fmt"

// GridPoint addresses one milepost on the offset-hex board grid.
type GridPoint struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

func (p GridPoint) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Neighbors returns the six adjacent grid points of an offset-hex milepost.
// Even rows shift their diagonal neighbors left, odd rows shift them right.
func (p GridPoint) Neighbors() []GridPoint {
	diag := 0
	if p.Row%2 != 0 {
		diag = 1
	}
	return []GridPoint{
		{p.Row, p.Col - 1},
		{p.Row, p.Col + 1},
		{p.Row - 1, p.Col + diag - 1},
		{p.Row - 1, p.Col + diag},
		{p.Row + 1, p.Col + diag - 1},
		{p.Row + 1, p.Col + diag},
	}
}
