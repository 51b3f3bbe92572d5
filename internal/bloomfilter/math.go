package bloomfilter

import "math"

// OptimalM returns the bit count targeting a ~1% false-positive rate at the
// given expected cardinality: m = ceil(-n * ln(0.01) / ln(2)^2).
func OptimalM(cardinality uint32) uint64 {
	multiplier := math.Log(0.01) / (math.Log(2) * math.Log(2))
	idealSize := -float64(cardinality) * multiplier
	if idealSize < 1 {
		idealSize = 1
	}
	return uint64(math.Ceil(idealSize))
}

// OptimalK returns the number of hash functions for a filter of size m
// sized for the given cardinality: k = ceil((m/n) * ln 2).
func OptimalK(cardinality uint32, m uint64) uint32 {
	if cardinality == 0 {
		return 1
	}
	nbHashes := (float64(m) / float64(cardinality)) * math.Log(2)
	if nbHashes < 1 {
		nbHashes = 1
	}
	return uint32(math.Ceil(nbHashes))
}
