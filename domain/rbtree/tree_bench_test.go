package rbtree

import (
	"math/rand/v2"
	"testing"
)

func BenchmarkInsertAscending(b *testing.B) {
	tree := newIntTree()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tree.Insert(int64(i), i)
	}
}

func BenchmarkInsertRandom(b *testing.B) {
	r := rand.New(rand.NewPCG(1, 2))
	keys := make([]int64, b.N)
	for i := range keys {
		keys[i] = r.Int64N(1 << 40)
	}
	tree := newIntTree()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tree.Insert(keys[i], i)
	}
}

func BenchmarkSearch(b *testing.B) {
	tree := newIntTree()
	for i := 0; i < 1<<16; i++ {
		_, _ = tree.Insert(int64(i), i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = tree.Search(int64(i & (1<<16 - 1)))
	}
}

func BenchmarkGlb(b *testing.B) {
	tree := newIntTree()
	for i := 0; i < 1<<16; i++ {
		_, _ = tree.Insert(int64(i*2), i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, _ = tree.Glb(int64(i & (1<<17 - 1)))
	}
}
