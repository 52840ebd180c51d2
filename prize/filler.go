package prize

// BuildFiller cycles the pool from its first item until at least length
// items exist, then truncates to exactly length. The result only drives the
// reel motion and has no bearing on which prize wins.
// An empty pool or a non-positive length yields nil.
func BuildFiller(pool Pool, length int) []Prize {
	if len(pool) == 0 || length <= 0 {
		return nil
	}

	seq := make([]Prize, 0, length+len(pool))
	for len(seq) < length {
		seq = append(seq, pool...)
	}
	return seq[:length]
}
