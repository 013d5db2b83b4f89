package score

import (
	"fmt"
	"strconv"
	"strings"
)

// Vulnerability is the vulnerability of a board.
type Vulnerability int

const (
	VulNone Vulnerability = iota
	VulNS
	VulEW
	VulAll
)

// vulnerabilityCycle is the standard 16-board vulnerability rotation.
var vulnerabilityCycle = [16]Vulnerability{
	VulNone, VulNS, VulEW, VulAll,
	VulNS, VulEW, VulAll, VulNone,
	VulEW, VulAll, VulNone, VulNS,
	VulAll, VulNone, VulNS, VulEW,
}

// BoardVulnerability returns the vulnerability of a board number (1-based).
func BoardVulnerability(board int) Vulnerability {
	if board < 1 {
		return VulNone
	}
	return vulnerabilityCycle[(board-1)%16]
}

// Contract is a parsed final contract.
type Contract struct {
	Level    int    // 1-7
	Strain   string // C, D, H, S or NT
	Doubled  int    // 0 undoubled, 1 doubled, 2 redoubled
	Declarer string // N, E, S or W
}

// ParseContract parses contracts such as "4H", "3NTX" or "6SXX" with a declarer seat.
func ParseContract(contract, declarer string) (Contract, error) {
	contract = strings.ToUpper(strings.TrimSpace(contract))
	declarer = strings.ToUpper(strings.TrimSpace(declarer))

	if len(contract) < 2 {
		return Contract{}, fmt.Errorf("contract %q too short", contract)
	}
	level, err := strconv.Atoi(contract[:1])
	if err != nil || level < 1 || level > 7 {
		return Contract{}, fmt.Errorf("invalid contract level in %q", contract)
	}

	c := Contract{Level: level, Declarer: declarer}
	rest := contract[1:]
	for _, strain := range []string{"NT", "S", "H", "D", "C"} {
		if strings.HasPrefix(rest, strain) {
			c.Strain = strain
			rest = strings.TrimPrefix(rest, strain)
			break
		}
	}
	if c.Strain == "" {
		return Contract{}, fmt.Errorf("invalid strain in %q", contract)
	}

	switch rest {
	case "":
	case "X":
		c.Doubled = 1
	case "XX":
		c.Doubled = 2
	default:
		return Contract{}, fmt.Errorf("invalid double marker in %q", contract)
	}

	switch declarer {
	case "N", "E", "S", "W":
	default:
		return Contract{}, fmt.Errorf("invalid declarer %q", declarer)
	}

	return c, nil
}

// ParseResult turns "=", "+1", "-2" or a number of odd tricks made ("5" for 4H+1)
// into over/under tricks relative to the contract level.
func ParseResult(level int, result string) (int, error) {
	result = strings.TrimSpace(result)
	switch {
	case result == "=":
		return 0, nil
	case strings.HasPrefix(result, "+") || strings.HasPrefix(result, "-"):
		n, err := strconv.Atoi(result[1:])
		if err != nil {
			return 0, fmt.Errorf("invalid result %q", result)
		}
		if result[0] == '-' {
			return -n, nil
		}
		return n, nil
	default:
		n, err := strconv.Atoi(result)
		if err != nil {
			return 0, fmt.Errorf("invalid result %q", result)
		}
		return n - level, nil
	}
}

// NSScore returns the duplicate score from North-South's point of view.
func (c Contract) NSScore(overUnder int, vul Vulnerability) (Value, error) {
	if c.Level+6+overUnder > 13 || c.Level+6+overUnder < 0 {
		return NoScore, fmt.Errorf("impossible result %+d for %d%s", overUnder, c.Level, c.Strain)
	}

	nsDeclares := c.Declarer == "N" || c.Declarer == "S"
	vulnerable := vul == VulAll || (vul == VulNS && nsDeclares) || (vul == VulEW && !nsDeclares)

	s := declarerScore(c, overUnder, vulnerable)
	if !nsDeclares {
		s = -s
	}
	return Value(s), nil
}

func declarerScore(c Contract, overUnder int, vulnerable bool) int {
	multiplier := 1 << c.Doubled

	if overUnder < 0 {
		down := -overUnder
		if c.Doubled == 0 {
			if vulnerable {
				return -100 * down
			}
			return -50 * down
		}
		var penalty int
		if vulnerable {
			penalty = 200 + (down-1)*300
		} else {
			switch down {
			case 1:
				penalty = 100
			case 2:
				penalty = 300
			default:
				penalty = 500 + (down-3)*300
			}
		}
		return -penalty * c.Doubled
	}

	perTrick := 30
	if c.Strain == "C" || c.Strain == "D" {
		perTrick = 20
	}
	trickPoints := c.Level * perTrick
	if c.Strain == "NT" {
		trickPoints += 10
	}
	trickPoints *= multiplier

	total := trickPoints
	if trickPoints >= 100 {
		total += pick(vulnerable, 500, 300)
	} else {
		total += 50
	}

	switch c.Level {
	case 6:
		total += pick(vulnerable, 750, 500)
	case 7:
		total += pick(vulnerable, 1500, 1000)
	}

	switch c.Doubled {
	case 0:
		total += overUnder * perTrick
	case 1:
		total += 50 + overUnder*pick(vulnerable, 200, 100)
	case 2:
		total += 100 + overUnder*pick(vulnerable, 400, 200)
	}

	return total
}

func pick(cond bool, a, b int) int {
	if cond {
		return a
	}
	return b
}
