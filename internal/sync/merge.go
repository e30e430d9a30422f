package sync

// Merge combines normalized candidate sequences from both feeds into a
// single set deduplicated by identity key. Output ordering is
// unspecified; consumers must not rely on feed order. After Merge, no
// duplicate identity key reaches the reconciler within one pass.
func Merge(feeds ...[]Candidate) []Candidate {
	byKey := make(map[string]Candidate)
	var keys []string

	for _, feed := range feeds {
		for _, cand := range feed {
			key := cand.IdentityKey()
			existing, ok := byKey[key]
			if !ok {
				byKey[key] = cand
				keys = append(keys, key)
				continue
			}
			byKey[key] = mergePair(existing, cand)
		}
	}

	out := make([]Candidate, 0, len(keys))
	for _, key := range keys {
		out = append(out, byKey[key])
	}
	return out
}

// mergePair resolves two candidates sharing an identity key: the one
// carrying Accepted wins, then the one carrying runtime/memory detail;
// missing fields are backfilled from the loser either way.
func mergePair(a, b Candidate) Candidate {
	winner, loser := a, b
	switch {
	case b.Accepted() && !a.Accepted():
		winner, loser = b, a
	case a.Accepted() == b.Accepted() && richness(b) > richness(a):
		winner, loser = b, a
	}

	if winner.Runtime == "" {
		winner.Runtime = loser.Runtime
	}
	if winner.Memory == "" {
		winner.Memory = loser.Memory
	}
	if winner.Title == "" {
		winner.Title = loser.Title
	}
	if winner.Language == "" {
		winner.Language = loser.Language
	}
	if winner.ExternalID == "" {
		winner.ExternalID = loser.ExternalID
	}
	return winner
}

func richness(c Candidate) int {
	n := 0
	if c.Runtime != "" {
		n++
	}
	if c.Memory != "" {
		n++
	}
	return n
}
