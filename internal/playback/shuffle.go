package playback

import "math/rand/v2"

// Shuffle returns a random permutation of 0..n-1 using Fisher-Yates.
func Shuffle(n int, rng *rand.Rand) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		order[i], order[j] = order[j], order[i]
	}
	return order
}
