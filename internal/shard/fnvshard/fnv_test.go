package fnvshard

import (
	"fmt"
	"testing"
)

func TestStrategy_Name(t *testing.T) {
	if got := New().Name(); got != "fnv32" {
		t.Errorf("Name() = %q, want %q", got, "fnv32")
	}
}

func TestSum_KnownVectors(t *testing.T) {
	tests := []struct {
		in   string
		want uint32
	}{
		{"", 0x811c9dc5},
		{"a", 0xe40c292c},
		{"foobar", 0xbf9cf968},
	}
	for _, tt := range tests {
		if got := Sum(tt.in); got != tt.want {
			t.Errorf("Sum(%q) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}

func TestStrategy_ShardID_Range(t *testing.T) {
	s := New()
	for _, total := range []int{1, 7, 256, 32768} {
		for i := 0; i < 100; i++ {
			id := s.ShardID(fmt.Sprintf("file-%d.txt", i), total)
			if id < 0 || id >= total {
				t.Fatalf("ShardID() = %d, want 0 <= id < %d", id, total)
			}
		}
	}
}

func TestStrategy_ShardID_Distribution(t *testing.T) {
	s := New()
	const total = 16
	counts := make([]int, total)
	for i := 0; i < 1600; i++ {
		counts[s.ShardID(fmt.Sprintf("logs/2024/%04d.log", i), total)]++
	}
	for id, n := range counts {
		if n < 50 || n > 150 {
			t.Errorf("shard %d holds %d of 1600 names, want roughly 100", id, n)
		}
	}
}

func BenchmarkStrategy_ShardID(b *testing.B) {
	s := New()
	for i := 0; i < b.N; i++ {
		s.ShardID("datasets/corpus/alice29.txt", 32768)
	}
}
