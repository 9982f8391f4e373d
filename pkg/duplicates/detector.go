package duplicates

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/vitruves/loupe/pkg/models"
	"github.com/vitruves/loupe/pkg/stats"
)

// Detector accumulates fingerprints across files and computes duplicate
// groups in one single-threaded pass. It is not safe for concurrent use;
// callers add all fingerprints first, then call Groups once.
type Detector struct {
	config Config
	fps    []Fingerprint
}

// Option is a functional option for configuring a Detector.
type Option func(*Detector)

// WithShingleSize sets the k-gram size for near matching.
func WithShingleSize(k int) Option {
	return func(d *Detector) { d.config.ShingleSize = k }
}

// WithSimilarityThreshold sets the Jaccard similarity a near pair must exceed.
func WithSimilarityThreshold(threshold float64) Option {
	return func(d *Detector) { d.config.SimilarityThreshold = threshold }
}

// WithMinTokens sets the minimum canonical token count for fingerprinting.
func WithMinTokens(n int) Option {
	return func(d *Detector) { d.config.MinTokens = n }
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(d *Detector) { d.config = cfg }
}

// New creates a detector with default configuration.
func New(opts ...Option) *Detector {
	d := &Detector{config: DefaultConfig()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Config returns the detector's effective configuration.
func (d *Detector) Config() Config {
	return d.config
}

// Add records fingerprints for later grouping.
func (d *Detector) Add(fps ...Fingerprint) {
	d.fps = append(d.fps, fps...)
}

// Groups computes exact and near duplicate groups over everything added so
// far. Output is deterministic: members are sorted by (file, start byte)
// and groups by kind then first member, regardless of insertion order.
func (d *Detector) Groups() []models.DuplicateGroup {
	fps := make([]Fingerprint, len(d.fps))
	copy(fps, d.fps)
	sort.Slice(fps, func(i, j int) bool {
		if fps[i].Ref.FileID != fps[j].Ref.FileID {
			return fps[i].Ref.FileID < fps[j].Ref.FileID
		}
		return fps[i].Ref.StartByte < fps[j].Ref.StartByte
	})

	groups := d.exactGroups(fps)
	groups = append(groups, d.nearGroups(fps)...)
	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].Kind != groups[j].Kind {
			return groups[i].Kind == models.GroupExact
		}
		a, b := groups[i].Members[0], groups[j].Members[0]
		if a.FileID != b.FileID {
			return a.FileID < b.FileID
		}
		return a.StartByte < b.StartByte
	})
	return groups
}

// exactGroups unions fingerprints with identical canonical strings. Hash
// buckets narrow the candidates; string comparison verifies, so a hash
// collision can never merge distinct spans.
func (d *Detector) exactGroups(fps []Fingerprint) []models.DuplicateGroup {
	buckets := make(map[uint64][]int)
	for i, fp := range fps {
		buckets[fp.Hash] = append(buckets[fp.Hash], i)
	}

	uf := newUnionFind(len(fps))
	for _, bucket := range buckets {
		first := make(map[string]int)
		for _, i := range bucket {
			if j, ok := first[fps[i].Canonical]; ok {
				uf.union(j, i)
			} else {
				first[fps[i].Canonical] = i
			}
		}
	}

	var groups []models.DuplicateGroup
	for _, members := range uf.classes() {
		if len(members) < 2 {
			continue
		}
		groups = append(groups, models.DuplicateGroup{
			Kind:       models.GroupExact,
			Similarity: 1.0,
			Members:    refs(fps, members),
		})
	}
	return groups
}

// nearGroups unions fingerprint pairs whose shingle-set Jaccard similarity
// exceeds the threshold. Candidates come from anchor buckets (shared smallest
// shingle hashes) with a size-ratio prefilter, so most non-duplicates never
// reach a full intersection. Pairs that are canonically equal belong to
// exact groups and are skipped here.
func (d *Detector) nearGroups(fps []Fingerprint) []models.DuplicateGroup {
	buckets := make(map[uint64][]int)
	for i, fp := range fps {
		for _, a := range fp.Anchors {
			buckets[a] = append(buckets[a], i)
		}
	}

	uf := newUnionFind(len(fps))
	sims := make(map[[2]int]float64)
	seen := make(map[[2]int]bool)
	for _, bucket := range buckets {
		for x := 0; x < len(bucket); x++ {
			for y := x + 1; y < len(bucket); y++ {
				i, j := bucket[x], bucket[y]
				if i > j {
					i, j = j, i
				}
				key := [2]int{i, j}
				if seen[key] {
					continue
				}
				seen[key] = true
				if sim, ok := d.nearPair(fps[i], fps[j]); ok {
					uf.union(i, j)
					sims[key] = sim
				}
			}
		}
	}

	var groups []models.DuplicateGroup
	for _, members := range uf.classes() {
		if len(members) < 2 {
			continue
		}
		groups = append(groups, models.DuplicateGroup{
			Kind:       models.GroupNear,
			Similarity: groupSimilarity(members, sims),
			Members:    refs(fps, members),
		})
	}
	return groups
}

// nearPair computes the Jaccard similarity for a candidate pair, applying
// the cheap rejections first.
func (d *Detector) nearPair(a, b Fingerprint) (float64, bool) {
	if a.Shingles == nil || b.Shingles == nil {
		return 0, false
	}
	if a.Canonical == b.Canonical {
		return 0, false
	}
	sa, sb := a.Shingles.GetCardinality(), b.Shingles.GetCardinality()
	small, large := sa, sb
	if small > large {
		small, large = large, small
	}
	// Jaccard can never exceed the size ratio.
	if float64(small) < d.config.SimilarityThreshold*float64(large) {
		return 0, false
	}
	inter := roaring64.And(a.Shingles, b.Shingles).GetCardinality()
	union := sa + sb - inter
	if union == 0 {
		return 0, false
	}
	sim := float64(inter) / float64(union)
	if sim <= d.config.SimilarityThreshold {
		return 0, false
	}
	return sim, true
}

// groupSimilarity averages the verified pairwise similarities inside a
// group. Transitive members without a directly verified pair do not drag
// the average down.
func groupSimilarity(members []int, sims map[[2]int]float64) float64 {
	var xs []float64
	for x := 0; x < len(members); x++ {
		for y := x + 1; y < len(members); y++ {
			i, j := members[x], members[y]
			if i > j {
				i, j = j, i
			}
			if sim, ok := sims[[2]int{i, j}]; ok {
				xs = append(xs, sim)
			}
		}
	}
	return stats.Mean(xs)
}

func refs(fps []Fingerprint, members []int) []models.SpanRef {
	out := make([]models.SpanRef, 0, len(members))
	for _, i := range members {
		out = append(out, fps[i].Ref)
	}
	return out
}

// unionFind is a standard disjoint-set with path compression.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(x int) int {
	if u.parent[x] != x {
		u.parent[x] = u.find(u.parent[x])
	}
	return u.parent[x]
}

func (u *unionFind) union(x, y int) {
	px, py := u.find(x), u.find(y)
	if px != py {
		u.parent[px] = py
	}
}

// classes returns the members of every equivalence class, each sorted
// ascending, ordered by their smallest member.
func (u *unionFind) classes() [][]int {
	byRoot := make(map[int][]int)
	for i := range u.parent {
		root := u.find(i)
		byRoot[root] = append(byRoot[root], i)
	}
	out := make([][]int, 0, len(byRoot))
	for _, members := range byRoot {
		sort.Ints(members)
		out = append(out, members)
	}
	sort.Slice(out, func(i, j int) bool { return out[i][0] < out[j][0] })
	return out
}
