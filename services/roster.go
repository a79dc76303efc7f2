package services

import "math/rand"

// Team assignment policies. Team 0 means "no team" (FFA); sides are 1 and 2.
// Every policy returns a fresh map; applying it to a match invalidates any
// cached per-team lookup there.

// assignFFA maps every participant to team 0.
func assignFFA(players []string) map[string]int {
	teams := make(map[string]int, len(players))
	for _, id := range players {
		teams[id] = 0
	}
	return teams
}

// assignSplit shuffles the participants and alternates team 1/2 by position,
// which keeps the sides near-even regardless of input order.
func assignSplit(players []string, rnd *rand.Rand) map[string]int {
	shuffled := append([]string(nil), players...)
	rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	teams := make(map[string]int, len(shuffled))
	for i, id := range shuffled {
		teams[id] = i%2 + 1
	}
	return teams
}

// assignPartyVersus puts group A on team 1 and group B on team 2.
func assignPartyVersus(a, b []string) map[string]int {
	teams := make(map[string]int, len(a)+len(b))
	for _, id := range a {
		teams[id] = 1
	}
	for _, id := range b {
		teams[id] = 2
	}
	return teams
}

// assignQueue shuffles the pooled participants and sends the first perTeam
// of them to team 1, the rest to team 2.
func assignQueue(players []string, perTeam int, rnd *rand.Rand) map[string]int {
	shuffled := append([]string(nil), players...)
	rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	teams := make(map[string]int, len(shuffled))
	for i, id := range shuffled {
		if i < perTeam {
			teams[id] = 1
		} else {
			teams[id] = 2
		}
	}
	return teams
}
