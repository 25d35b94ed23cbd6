package engine

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// periodRand returns a pseudo-random source seeded deterministically from a
// period key. Every evaluation with the same key sees the same stream, in
// this run and across restarts, which is what lets a week-long vacation or
// a day skip stay consistent over hundreds of ticks without persisting a
// flag. Each call returns an independent source; the global generator is
// never touched.
func periodRand(key string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return rand.New(rand.NewSource(int64(splitmix64(h.Sum64()))))
}

// splitmix64 is a deterministic 64-bit finalizer. FNV alone clusters for
// short similar keys (consecutive dates); one mixing round decorrelates them.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

func weekKey(isoYear, isoWeek int) string {
	return fmt.Sprintf("week:%04d-W%02d", isoYear, isoWeek)
}

func dayKey(t Tick) string {
	return fmt.Sprintf("day:%04d-%02d-%02d", t.Year, int(t.Month), t.Day)
}

func hourKey(t Tick) string {
	return fmt.Sprintf("hour:%04d-%02d-%02d-%02d", t.Year, int(t.Month), t.Day, t.Hour)
}
