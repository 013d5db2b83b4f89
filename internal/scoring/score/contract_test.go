package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNSScore(t *testing.T) {
	tests := []struct {
		name     string
		contract string
		declarer string
		result   string
		vul      Vulnerability
		want     Value
	}{
		{"Major game non-vulnerable", "4H", "N", "=", VulNone, 420},
		{"No trump game vulnerable plus one", "3NT", "S", "+1", VulAll, 630},
		{"Part score", "1NT", "N", "=", VulNone, 90},
		{"Minor part score overtricks", "2C", "S", "4", VulNone, 130},
		{"Doubled one down non-vulnerable", "4SX", "N", "-1", VulNone, -100},
		{"Doubled three down non-vulnerable", "4SX", "N", "-3", VulNone, -500},
		{"Doubled two down vulnerable", "4SX", "N", "-2", VulNS, -500},
		{"Redoubled one down vulnerable", "3NTXX", "N", "-1", VulAll, -400},
		{"Doubled part score makes game", "2HX", "N", "=", VulNone, 470},
		{"Small slam vulnerable", "6S", "N", "=", VulAll, 1430},
		{"Grand slam redoubled vulnerable", "7NTXX", "S", "=", VulAll, 2980},
		{"East-West declarer", "4H", "E", "=", VulNone, -420},
		{"East-West vulnerability only for East-West", "4H", "N", "=", VulEW, 420},
		{"Undoubled vulnerable down", "3NT", "W", "-2", VulEW, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseContract(tt.contract, tt.declarer)
			require.NoError(t, err)
			overUnder, err := ParseResult(c.Level, tt.result)
			require.NoError(t, err)
			got, err := c.NSScore(overUnder, tt.vul)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseContractErrors(t *testing.T) {
	for _, tc := range []struct{ contract, declarer string }{
		{"8H", "N"},
		{"4", "N"},
		{"4Z", "N"},
		{"4HXXX", "N"},
		{"4H", "Q"},
	} {
		_, err := ParseContract(tc.contract, tc.declarer)
		assert.Error(t, err, "%s by %s", tc.contract, tc.declarer)
	}
}

func TestNSScoreImpossibleResult(t *testing.T) {
	c, err := ParseContract("7NT", "N")
	require.NoError(t, err)
	_, err = c.NSScore(1, VulNone)
	assert.Error(t, err)
}

func TestBoardVulnerability(t *testing.T) {
	assert.Equal(t, VulNone, BoardVulnerability(1))
	assert.Equal(t, VulNS, BoardVulnerability(2))
	assert.Equal(t, VulEW, BoardVulnerability(3))
	assert.Equal(t, VulAll, BoardVulnerability(4))
	assert.Equal(t, VulAll, BoardVulnerability(13))
	assert.Equal(t, VulNone, BoardVulnerability(17))
}
