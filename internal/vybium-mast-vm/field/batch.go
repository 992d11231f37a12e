package field

import "sync"

// parallelThreshold mirrors the teacher's field_batch.go cutover point
// between sequential and goroutine-chunked batch inversion.
const parallelThreshold = 1000

// BatchInversion inverts every element of in using Montgomery's trick: one
// field inversion plus 3*len(in) multiplications, instead of len(in)
// inversions. Zero elements are left as zero in the output, unchanged,
// matching Felt.Inv's non-panicking convention.
func BatchInversion(in []Felt) []Felt {
	n := len(in)
	out := make([]Felt, n)
	if n == 0 {
		return out
	}

	nonZeroIdx := make([]int, 0, n)
	prefix := make([]Felt, 0, n)
	acc := One()
	for i, v := range in {
		if v.IsZero() {
			continue
		}
		nonZeroIdx = append(nonZeroIdx, i)
		prefix = append(prefix, acc)
		acc = acc.Mul(v)
	}

	if len(nonZeroIdx) == 0 {
		return out
	}

	accInv := acc.Inv()
	for j := len(nonZeroIdx) - 1; j >= 0; j-- {
		idx := nonZeroIdx[j]
		out[idx] = accInv.Mul(prefix[j])
		accInv = accInv.Mul(in[idx])
	}
	return out
}

// ParallelBatchInversion splits large batches across goroutines, each
// running its own Montgomery's-trick pass, before returning the combined
// results. For n below parallelThreshold it degrades to BatchInversion.
func ParallelBatchInversion(in []Felt) []Felt {
	n := len(in)
	if n < parallelThreshold {
		return BatchInversion(in)
	}

	workers := 4
	chunk := (n + workers - 1) / workers
	out := make([]Felt, n)

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			copy(out[start:end], BatchInversion(in[start:end]))
		}(start, end)
	}
	wg.Wait()
	return out
}
