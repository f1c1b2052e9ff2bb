package leaderboard

import "sort"

// ScoredUser is one ranked row. Never persisted; recomputed per request.
type ScoredUser struct {
	Email       string `json:"user_email"`
	DisplayName string `json:"display_name"`
	Level       int    `json:"level"`
	Score       int    `json:"score"`
	Rank        int    `json:"rank"`
}

// Ranking is a sorted, ranked list of scored users.
type Ranking []ScoredUser

// Rank sorts descending by score and assigns standard competition ranks:
// tied scores share the lower rank number and the next distinct score jumps
// to its true ordinal position ([100,100,90,80] ranks as [1,1,3,4]). Ties
// order by email ascending for stable output; rank is unaffected.
func Rank(users []ScoredUser) Ranking {
	ranked := make([]ScoredUser, len(users))
	copy(ranked, users)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Email < ranked[j].Email
	})
	for i := range ranked {
		if i > 0 && ranked[i].Score == ranked[i-1].Score {
			ranked[i].Rank = ranked[i-1].Rank
			continue
		}
		ranked[i].Rank = i + 1
	}
	return Ranking(ranked)
}

func (r Ranking) indexOf(email string) int {
	for i := range r {
		if r[i].Email == email {
			return i
		}
	}
	return -1
}

// RankOf returns the member's rank, or nil when absent from the ranking.
func (r Ranking) RankOf(email string) *int {
	idx := r.indexOf(email)
	if idx < 0 {
		return nil
	}
	rank := r[idx].Rank
	return &rank
}

// Nearby returns a position-based window around the member: radius entries
// before and after their index in the sorted list, clipped to bounds. With
// ties this may omit users sharing the member's displayed rank; proximity
// is by position, not rank value.
func (r Ranking) Nearby(email string, radius int) []ScoredUser {
	idx := r.indexOf(email)
	if idx < 0 || radius < 0 {
		return nil
	}
	lo := idx - radius
	if lo < 0 {
		lo = 0
	}
	hi := idx + radius + 1
	if hi > len(r) {
		hi = len(r)
	}
	window := make([]ScoredUser, hi-lo)
	copy(window, r[lo:hi])
	return window
}

// Top returns the first n entries for the public list.
func (r Ranking) Top(n int) []ScoredUser {
	if n <= 0 || n >= len(r) {
		return []ScoredUser(r)
	}
	return []ScoredUser(r[:n])
}
