// Package duplicates detects exact and near duplicate spans across a
// corpus. Spans are canonicalized into role-placeholder token strings,
// hashed for exact matching, and shingled into bitmap sets for Jaccard
// based near matching.
package duplicates

import (
	"encoding/binary"
	"strings"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"

	"github.com/vitruves/loupe/pkg/lexer"
	"github.com/vitruves/loupe/pkg/models"
)

// Config controls fingerprinting and grouping.
type Config struct {
	// ShingleSize is the k in k-gram shingling of the canonical token
	// sequence.
	ShingleSize int
	// SimilarityThreshold is the Jaccard similarity a near pair must
	// exceed.
	SimilarityThreshold float64
	// AnchorCount is the number of smallest shingle hashes used to bucket
	// candidates before any full Jaccard computation.
	AnchorCount int
	// MinTokens drops spans with fewer canonical tokens from fingerprinting
	// entirely. Zero keeps everything.
	MinTokens int
}

// DefaultConfig returns the default detector configuration.
func DefaultConfig() Config {
	return Config{
		ShingleSize:         5,
		SimilarityThreshold: 0.8,
		AnchorCount:         4,
		MinTokens:           0,
	}
}

// Fingerprint is the duplicate-detection digest of a single span: its
// canonical token string, the hash of that string, and the shingle set.
// Fingerprints are immutable and carry everything the merge phase needs,
// so file tokens can be discarded once fingerprints are built.
type Fingerprint struct {
	Ref       models.SpanRef
	Canonical string
	Hash      uint64
	TokenLen  int
	// Shingles is nil when the span has fewer than ShingleSize canonical
	// tokens; such spans stay eligible for exact matching only.
	Shingles *roaring64.Bitmap
	Anchors  []uint64
}

// Build fingerprints every span of a file. Nested child tokens are carved
// out of the parent's canonical sequence; each span is fingerprinted over
// its own tokens only.
func Build(fileID string, tokens []lexer.Token, spans []models.Span, cfg Config) []Fingerprint {
	fps := make([]Fingerprint, 0, len(spans))
	for _, sp := range spans {
		canon := canonicalTokens(tokens, spans, sp.ID)
		if len(canon) < cfg.MinTokens {
			continue
		}
		fp := Fingerprint{
			Ref: models.SpanRef{
				FileID:    fileID,
				Span:      sp.ID,
				Name:      sp.Name,
				StartByte: sp.StartByte,
				EndByte:   sp.EndByte,
				StartLine: sp.StartLine,
				EndLine:   sp.EndLine,
			},
			Canonical: strings.Join(canon, " "),
			TokenLen:  len(canon),
		}
		fp.Hash = xxhash.Sum64String(fp.Canonical)
		if len(canon) >= cfg.ShingleSize {
			fp.Shingles = shingle(canon, cfg.ShingleSize)
			fp.Anchors = anchors(fp.Shingles, cfg.AnchorCount)
		}
		fps = append(fps, fp)
	}
	return fps
}

// canonicalTokens maps a span's own tokens to their canonical form:
// keywords and punctuation verbatim, identifiers and literals replaced by
// role placeholders. Two spans differing only in names and literal values
// produce identical sequences.
func canonicalTokens(tokens []lexer.Token, spans []models.Span, id int) []string {
	var canon []string
	for _, iv := range models.OwnIntervals(spans, id) {
		for _, tok := range tokens[iv[0]:iv[1]] {
			switch tok.Kind {
			case lexer.KindKeyword, lexer.KindPunct:
				canon = append(canon, tok.Text)
			case lexer.KindIdent:
				canon = append(canon, "ID")
			case lexer.KindNumber:
				canon = append(canon, "NUM")
			case lexer.KindString:
				canon = append(canon, "STR")
			}
		}
	}
	return canon
}

var sep = []byte{0}

// shingle hashes every window of k contiguous canonical tokens into a
// 64-bit set.
func shingle(canon []string, k int) *roaring64.Bitmap {
	bm := roaring64.New()
	h := blake3.New()
	for i := 0; i+k <= len(canon); i++ {
		h.Reset()
		for j := i; j < i+k; j++ {
			h.Write([]byte(canon[j]))
			h.Write(sep)
		}
		sum := h.Sum(nil)
		bm.Add(binary.LittleEndian.Uint64(sum[:8]))
	}
	return bm
}

// anchors returns the m smallest shingle hashes, the bucketing keys for
// candidate generation.
func anchors(bm *roaring64.Bitmap, m int) []uint64 {
	out := make([]uint64, 0, m)
	it := bm.Iterator()
	for it.HasNext() && len(out) < m {
		out = append(out, it.Next())
	}
	return out
}
