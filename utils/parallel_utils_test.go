package utils

import (
	"math"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartitionMap(t *testing.T) {
	{ // Test PartitionMap
		getHisto := func(K, Np int) (histo map[int]int) {
			pm := NewPartitionMap(Np, K)
			histo = make(map[int]int)
			for np := 0; np < pm.ParallelDegree; np++ {
				kMin, kMax := pm.GetBucketRange(np)
				histo[kMax-kMin]++
			}
			return
		}
		getTotal := func(histo map[int]int) (total int) {
			for key, count := range histo {
				total += key * count
			}
			return
		}
		assert.Equal(t, map[int]int{0: 30, 1: 2}, getHisto(2, 32))
		assert.Equal(t, map[int]int{1: 32}, getHisto(32, 32))
		assert.Equal(t, map[int]int{8: 32}, getHisto(256, 32))
		assert.Equal(t, map[int]int{8: 1, 9: 31}, getHisto(287, 32))
		assert.Equal(t, 287, getTotal(getHisto(287, 32)))
		for n := 64; n < 2000; n++ {
			var (
				keys   [2]float64
				keyNum int
			)
			histo := getHisto(n, 32)
			for key := range histo {
				keys[keyNum] = float64(key)
				keyNum++
			}
			if keyNum == 2 {
				assert.Equal(t, 1., math.Abs(keys[0]-keys[1])) // Maximum imbalance of 1
			}
			assert.Equal(t, n, getTotal(histo))
		}
	}
}

func TestPartitionMapRun(t *testing.T) {
	var (
		N     = 1001
		pm    = NewPartitionMap(ParallelDegree(7, N), N)
		seen  = make([]int32, N)
		total int64
	)
	pm.Run(func(bn, kMin, kMax int) {
		for k := kMin; k < kMax; k++ {
			atomic.AddInt32(&seen[k], 1)
			atomic.AddInt64(&total, int64(k))
		}
	})
	for k := 0; k < N; k++ {
		assert.Equal(t, int32(1), seen[k])
	}
	assert.Equal(t, int64(N*(N-1)/2), total)
	assert.Equal(t, 3, ParallelDegree(3, 10))
	assert.Equal(t, 2, ParallelDegree(8, 2))
	assert.Equal(t, 1, ParallelDegree(4, 0))
	{ // A failing partition panics on the caller
		assert.PanicsWithValue(t, "bucket 2", func() {
			NewPartitionMap(4, 40).Run(func(bn, kMin, kMax int) {
				if bn == 2 {
					panic("bucket 2")
				}
			})
		})
	}
}

func TestLockSet(t *testing.T) {
	var (
		ls  = NewLockSet(3)
		sum = make([]float64, 3)
		pm  = NewPartitionMap(4, 400)
	)
	pm.Run(func(bn, kMin, kMax int) {
		for k := kMin; k < kMax; k++ {
			i := k % 3
			ls.With(i, func() { sum[i] += 1 })
		}
	})
	assert.Equal(t, 400., sum[0]+sum[1]+sum[2])
	assert.Equal(t, 134., sum[0])
}
