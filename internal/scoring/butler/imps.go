package butler

// Bracket is one row of the IMP scale: score differences from Low to High
// (inclusive) are worth IMP.
type Bracket struct {
	Low  int
	High int
	IMP  int
}

// Scale is the standard IMP table.
var Scale = [25]Bracket{
	{0, 10, 0},
	{20, 40, 1},
	{50, 80, 2},
	{90, 120, 3},
	{130, 160, 4},
	{170, 210, 5},
	{220, 260, 6},
	{270, 310, 7},
	{320, 360, 8},
	{370, 420, 9},
	{430, 490, 10},
	{500, 590, 11},
	{600, 740, 12},
	{750, 890, 13},
	{900, 1090, 14},
	{1100, 1290, 15},
	{1300, 1490, 16},
	{1500, 1740, 17},
	{1750, 1990, 18},
	{2000, 2240, 19},
	{2250, 2490, 20},
	{2500, 2990, 21},
	{3000, 3490, 22},
	{3500, 3990, 23},
	{4000, 99999, 24},
}

// Lookup returns the IMPs for an absolute score difference. Differences that
// are not multiples of ten fall into the bracket whose High they do not exceed.
func Lookup(diff int) int {
	if diff < 0 {
		diff = -diff
	}
	for _, b := range Scale {
		if diff <= b.High {
			return b.IMP
		}
	}
	return Scale[len(Scale)-1].IMP
}
