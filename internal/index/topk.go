package index

import "sort"

type candidate struct {
	id    int
	score float64
}

// better orders by score descending, then insertion order.
func better(a, b candidate) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.id < b.id
}

// selectTopK returns the k best candidates in order. It partitions with
// quickselect and sorts only the survivors, O(n + k log k) on average.
// c is reordered in place.
func selectTopK(c []candidate, k int) []candidate {
	if k <= 0 || len(c) == 0 {
		return nil
	}
	if k < len(c) {
		quickselect(c, k-1)
		c = c[:k]
	}
	sort.Slice(c, func(i, j int) bool { return better(c[i], c[j]) })
	return c
}

// quickselect moves the element of rank nth into position nth, with every
// better element before it.
func quickselect(c []candidate, nth int) {
	lo, hi := 0, len(c)-1
	for lo < hi {
		p := partition(c, lo, hi, lo+(hi-lo)/2)
		switch {
		case p == nth:
			return
		case p < nth:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
}

func partition(c []candidate, lo, hi, pivot int) int {
	pv := c[pivot]
	c[pivot], c[hi] = c[hi], c[pivot]
	store := lo
	for i := lo; i < hi; i++ {
		if better(c[i], pv) {
			c[store], c[i] = c[i], c[store]
			store++
		}
	}
	c[store], c[hi] = c[hi], c[store]
	return store
}
