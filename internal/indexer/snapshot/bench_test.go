package snapshot

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/wordtracker/internal/indexer/bst"
	"github.com/Adithya-Monish-Kumar-K/wordtracker/internal/indexer/word"
)

func benchTree(b *testing.B, words int) *Tree {
	b.Helper()
	r := rand.New(rand.NewSource(7))
	tr := bst.New[*word.Record]()
	for i := 0; i < words*4; i++ {
		key := fmt.Sprintf("w%d", r.Intn(words))
		rec, ok, err := tr.Search(key)
		if err != nil {
			b.Fatal(err)
		}
		if !ok {
			rec = word.New(key)
			if err := tr.Insert(rec); err != nil {
				b.Fatal(err)
			}
		}
		rec.AddOccurrence(fmt.Sprintf("chapter%02d.txt", r.Intn(12)), 1+r.Intn(400))
	}
	return tr
}

func BenchmarkEncode(b *testing.B) {
	tr := benchTree(b, 5000)
	for _, compression := range []Compression{None, Snappy, LZ4} {
		codec := NewCodec(compression)
		b.Run(compression.String(), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				data, err := codec.Encode(tr)
				if err != nil {
					b.Fatal(err)
				}
				b.SetBytes(int64(len(data)))
			}
		})
	}
}

func BenchmarkDecode(b *testing.B) {
	tr := benchTree(b, 5000)
	for _, compression := range []Compression{None, Snappy, LZ4} {
		codec := NewCodec(compression)
		data, err := codec.Encode(tr)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(compression.String(), func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			for i := 0; i < b.N; i++ {
				if _, err := codec.Decode(data); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
