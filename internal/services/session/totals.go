package session

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/mcoot/scorepad/internal/model"
)

// Totals sums each player's column across rounds. Short rows count as 0
// for the missing positions.
func Totals(players []string, rounds [][]int) []int {
	totals := make([]int, len(players))
	for _, row := range rounds {
		for p := range totals {
			if p < len(row) {
				totals[p] += row[p]
			}
		}
	}
	return totals
}

// Rank pairs players with their totals sorted highest first. Equal totals
// keep roster order.
func Rank(players []string, totals []int) []model.PlayerTotal {
	ranked := make([]model.PlayerTotal, len(players))
	for i, player := range players {
		ranked[i] = model.PlayerTotal{Player: player, Total: totals[i]}
	}
	slices.SortStableFunc(ranked, func(a, b model.PlayerTotal) int {
		return cmp.Compare(b.Total, a.Total)
	})
	return ranked
}

// Winner names the top-ranked player, or every player sharing the top
// total joined by WinnerSeparator
func Winner(ranked []model.PlayerTotal) string {
	if len(ranked) == 0 {
		return ""
	}
	top := ranked[0].Total
	var names []string
	for _, pt := range ranked {
		if pt.Total != top {
			break
		}
		names = append(names, pt.Player)
	}
	return strings.Join(names, WinnerSeparator)
}

// ParseScore reads the leading integer of raw, ignoring surrounding
// whitespace. Input without a leading integer, or one too large to
// represent, yields 0.
func ParseScore(raw string) int {
	s := strings.TrimSpace(raw)

	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
