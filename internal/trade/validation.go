package trade

// Pure validation helpers for trade proposals. They operate on ID and
// role slices only so they are testable without persistence.

// maxPlayersPerSide bounds how many players one trade can move in each
// direction.
const (
	minPlayersPerSide = 1
	maxPlayersPerSide = 5
)

// validSideLengths reports whether the two player lists are acceptable:
// equal lengths, both within [1, 5].
func validSideLengths(playersFrom, playersTo []string) bool {
	if len(playersFrom) != len(playersTo) {
		return false
	}
	return len(playersFrom) >= minPlayersPerSide && len(playersFrom) <= maxPlayersPerSide
}

// firstDuplicate returns the first player ID appearing more than once
// in the list, or "" when all entries are distinct.
func firstDuplicate(playerIDs []string) string {
	seen := make(map[string]bool, len(playerIDs))
	for _, id := range playerIDs {
		if seen[id] {
			return id
		}
		seen[id] = true
	}
	return ""
}

// roleCounts builds the role multiset of a list of role tags.
func roleCounts(roles []string) map[string]int {
	counts := make(map[string]int, 4)
	for _, role := range roles {
		counts[role]++
	}
	return counts
}

// unbalancedRole compares the role multisets of the two sides and
// returns the first role whose counts differ. ok is true when the
// multisets are identical.
func unbalancedRole(rolesFrom, rolesTo []string) (role string, ok bool) {
	fromCounts := roleCounts(rolesFrom)
	toCounts := roleCounts(rolesTo)

	for role, count := range fromCounts {
		if toCounts[role] != count {
			return role, false
		}
	}
	for role, count := range toCounts {
		if fromCounts[role] != count {
			return role, false
		}
	}
	return "", true
}

// commonPlayers returns the IDs present in both lists.
func commonPlayers(playersFrom, playersTo []string) []string {
	fromSet := make(map[string]bool, len(playersFrom))
	for _, id := range playersFrom {
		fromSet[id] = true
	}

	var common []string
	for _, id := range playersTo {
		if fromSet[id] {
			common = append(common, id)
		}
	}
	return common
}
