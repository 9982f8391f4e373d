package duplicates

import (
	"fmt"
	"testing"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitruves/loupe/pkg/lexer"
	"github.com/vitruves/loupe/pkg/models"
	"github.com/vitruves/loupe/pkg/structure"
)

func fingerprints(t *testing.T, fileID, src string, cfg Config) []Fingerprint {
	t.Helper()
	tokens, diags := lexer.Scan([]byte(src), lexer.FamilyCLike)
	require.Empty(t, diags)
	spans, spanDiags := structure.Extract(tokens)
	require.Empty(t, spanDiags)
	return Build(fileID, tokens, spans, cfg)
}

const processV1 = `void process_data_v1(int *data, int len) {
	for (int i = 0; i < len; i++) {
		if (data[i] > 100) {
			printf("large: %d\n", data[i]);
		}
	}
}
`

const processV2 = `void process_data_v2(int *items, int count) {
	for (int j = 0; j < count; j++) {
		if (items[j] > 100) {
			printf("large: %d\n", items[j]);
		}
	}
}
`

func TestRenamedFunctionsAreExactDuplicates(t *testing.T) {
	cfg := DefaultConfig()
	d := New()
	d.Add(fingerprints(t, "a.c", processV1, cfg)...)
	d.Add(fingerprints(t, "b.c", processV2, cfg)...)

	groups := d.Groups()
	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, models.GroupExact, g.Kind)
	assert.Equal(t, 1.0, g.Similarity)
	require.Len(t, g.Members, 2)
	assert.Equal(t, "a.c", g.Members[0].FileID)
	assert.Equal(t, "process_data_v1", g.Members[0].Name)
	assert.Equal(t, "b.c", g.Members[1].FileID)
	assert.Equal(t, "process_data_v2", g.Members[1].Name)
}

func TestCanonicalIgnoresLiteralValues(t *testing.T) {
	cfg := DefaultConfig()
	a := fingerprints(t, "a.c", `int f(int x) { return x + 10; }`, cfg)
	b := fingerprints(t, "b.c", `int g(int y) { return y + 999; }`, cfg)
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.Equal(t, a[0].Canonical, b[0].Canonical)
	assert.Equal(t, a[0].Hash, b[0].Hash)
}

func TestDifferentControlFlowIsNotExact(t *testing.T) {
	cfg := DefaultConfig()
	a := fingerprints(t, "a.c", `int f(int x) { return x + 1; }`, cfg)
	b := fingerprints(t, "b.c", `int g(int x) { if (x > 0) { return x; } return 1; }`, cfg)
	assert.NotEqual(t, a[0].Canonical, b[0].Canonical)
}

func TestNearDuplicates(t *testing.T) {
	// Same long body except one extra trailing statement.
	base := `void walk_%s(int *data, int len) {
	int total = 0;
	for (int i = 0; i < len; i++) {
		if (data[i] > 100) {
			total += data[i];
		} else {
			total -= data[i];
		}
		while (total > 1000) {
			total /= 2;
		}
	}
%s}
`
	v1 := fmt.Sprintf(base, "a", "")
	v2 := fmt.Sprintf(base, "b", "\tprintf(\"%d\", 1);\n")

	d := New(WithConfig(Config{ShingleSize: 5, SimilarityThreshold: 0.7, AnchorCount: 8}))
	d.Add(fingerprints(t, "a.c", v1, d.Config())...)
	d.Add(fingerprints(t, "b.c", v2, d.Config())...)

	groups := d.Groups()
	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, models.GroupNear, g.Kind)
	assert.GreaterOrEqual(t, g.Similarity, 0.7)
	assert.Less(t, g.Similarity, 1.0)
	require.Len(t, g.Members, 2)
}

func TestTinySpansExcludedFromNearMatching(t *testing.T) {
	cfg := Config{ShingleSize: 8, SimilarityThreshold: 0.8, AnchorCount: 4}
	fps := fingerprints(t, "a.c", "int f(){}\nint g(){}\n", cfg)
	require.Len(t, fps, 2)
	for _, fp := range fps {
		// Canonically `int ID ( ) { }`: six tokens, below the window.
		require.Equal(t, 6, fp.TokenLen)
		assert.Nil(t, fp.Shingles, "below shingle size there is no near signal")
		assert.Empty(t, fp.Anchors)
	}

	// Still eligible for exact matching.
	d := New(WithConfig(cfg))
	d.Add(fps...)
	groups := d.Groups()
	require.Len(t, groups, 1)
	assert.Equal(t, models.GroupExact, groups[0].Kind)
}

func TestNearPairMustExceedThreshold(t *testing.T) {
	mk := func(canonical string, vals ...uint64) Fingerprint {
		bm := roaring64.New()
		bm.AddMany(vals)
		return Fingerprint{Canonical: canonical, Shingles: bm}
	}
	d := New(WithSimilarityThreshold(0.8))

	// Eight shared shingles out of ten: similarity exactly 0.8.
	a := mk("a", 1, 2, 3, 4, 5, 6, 7, 8, 9)
	b := mk("b", 2, 3, 4, 5, 6, 7, 8, 9, 10)
	_, ok := d.nearPair(a, b)
	assert.False(t, ok, "a pair at the threshold is not near")

	// Identical shingle sets with different canonicals: similarity 1.0.
	c := mk("c", 1, 2, 3, 4, 5, 6, 7, 8, 9)
	sim, ok := d.nearPair(a, c)
	require.True(t, ok)
	assert.Equal(t, 1.0, sim)
}

func TestMinTokensDropsSpans(t *testing.T) {
	fps := fingerprints(t, "a.c", "int f(){}\n", Config{
		ShingleSize:         5,
		SimilarityThreshold: 0.8,
		AnchorCount:         4,
		MinTokens:           50,
	})
	assert.Empty(t, fps)
}

func TestDeterministicAcrossInsertionOrder(t *testing.T) {
	cfg := DefaultConfig()
	a := fingerprints(t, "a.c", processV1, cfg)
	b := fingerprints(t, "b.c", processV2, cfg)

	d1 := New()
	d1.Add(a...)
	d1.Add(b...)
	d2 := New()
	d2.Add(b...)
	d2.Add(a...)

	assert.Equal(t, d1.Groups(), d2.Groups())
}

func TestNestedSpanTokensExcludedFromParentFingerprint(t *testing.T) {
	cfg := DefaultConfig()
	withMethod := fingerprints(t, "a.c", `class C {
	int field;
	int heavy(int v) { if (v > 0 && v < 10) { return v; } return 0; }
};
`, cfg)
	bare := fingerprints(t, "b.c", `class D {
	int field;
};
`, cfg)

	require.Len(t, withMethod, 2)
	require.Len(t, bare, 1)
	assert.Equal(t, withMethod[0].Canonical, bare[0].Canonical,
		"a method's tokens belong to the method, not the class")
}

func TestGroupsSortedExactFirst(t *testing.T) {
	d := New(WithConfig(Config{ShingleSize: 5, SimilarityThreshold: 0.7, AnchorCount: 8}))
	cfg := d.Config()
	d.Add(fingerprints(t, "z1.c", processV1, cfg)...)
	d.Add(fingerprints(t, "z2.c", processV2, cfg)...)

	near1 := `void na(int *d, int n) {
	int t = 0;
	for (int i = 0; i < n; i++) {
		if (d[i] > 5) { t += d[i]; } else { t -= d[i]; }
		while (t > 100) { t /= 2; }
	}
}
`
	near2 := `void nb(int *d, int n) {
	int t = 0;
	for (int i = 0; i < n; i++) {
		if (d[i] > 5) { t += d[i]; } else { t -= d[i]; }
		while (t > 100) { t /= 3; }
	}
	return;
}
`
	d.Add(fingerprints(t, "a1.c", near1, cfg)...)
	d.Add(fingerprints(t, "a2.c", near2, cfg)...)

	groups := d.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, models.GroupExact, groups[0].Kind)
	assert.Equal(t, models.GroupNear, groups[1].Kind)
}
