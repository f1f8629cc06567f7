// Package dendrogram implements the interactive hierarchical clustering
// builder. Merge state lives in the field store under keys owned by the
// builder's id; every operation loads an explicit arena from those keys,
// edits it and writes it back.
package dendrogram

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/abhisek/quizdeck/internal/fieldstore"
)

// NodeKind distinguishes leaves from merges.
type NodeKind uint8

const (
	KindLeaf NodeKind = iota
	KindMerge
)

// NodeRef names a leaf by position or a merge by id.
type NodeRef struct {
	Kind  NodeKind
	Index int
}

// Leaf returns a reference to leaf i.
func Leaf(i int) NodeRef { return NodeRef{Kind: KindLeaf, Index: i} }

// MergeRef returns a reference to merge k.
func MergeRef(k int) NodeRef { return NodeRef{Kind: KindMerge, Index: k} }

// String spells the reference the way it is stored: L:<i> or M:<k>.
func (r NodeRef) String() string {
	if r.Kind == KindMerge {
		return "M:" + strconv.Itoa(r.Index)
	}
	return "L:" + strconv.Itoa(r.Index)
}

// ParseRef parses L:<i> or M:<k>.
func ParseRef(s string) (NodeRef, error) {
	prefix, num, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return NodeRef{}, fmt.Errorf("node ref %q: missing ':'", s)
	}
	i, err := strconv.Atoi(num)
	if err != nil || i < 0 {
		return NodeRef{}, fmt.Errorf("node ref %q: bad index", s)
	}
	switch prefix {
	case "L":
		return Leaf(i), nil
	case "M":
		return MergeRef(i), nil
	}
	return NodeRef{}, fmt.Errorf("node ref %q: unknown kind %q", s, prefix)
}

// Merge joins two nodes under a new node.
type Merge struct {
	ID   int
	A, B NodeRef
}

// Children is the stored form of the pair.
func (m Merge) Children() string {
	return m.A.String() + "|" + m.B.String()
}

// ChildrenKey is the field-id holding merge k's child pair.
func ChildrenKey(id string, k int) string {
	return fmt.Sprintf("%s:merge:%d:children", id, k)
}

// HeightKey is the field-id holding merge k's height.
func HeightKey(id string, k int) string {
	return fmt.Sprintf("%s:merge_dist:%d", id, k)
}

// Graph is the merge arena over a fixed number of leaves. Merges is
// ordered by id.
type Graph struct {
	Leaves int
	Merges []Merge
}

// Load reads the merges of builder id from the store. Entries that do not
// parse are skipped and logged.
func Load(store *fieldstore.Store, id string, leaves int) Graph {
	g := Graph{Leaves: leaves}
	prefix := id + ":merge:"
	for _, key := range store.KeysWithPrefix(prefix) {
		rest, ok := strings.CutSuffix(strings.TrimPrefix(key, prefix), ":children")
		if !ok {
			continue
		}
		k, err := strconv.Atoi(rest)
		if err != nil {
			log.Printf("dendrogram: ignoring key %q", key)
			continue
		}
		m, err := parseChildren(k, store.String(key))
		if err != nil {
			log.Printf("dendrogram: ignoring %q: %v", key, err)
			continue
		}
		g.Merges = append(g.Merges, m)
	}
	sort.Slice(g.Merges, func(i, j int) bool { return g.Merges[i].ID < g.Merges[j].ID })
	return g
}

func parseChildren(k int, value string) (Merge, error) {
	left, right, ok := strings.Cut(value, "|")
	if !ok {
		return Merge{}, fmt.Errorf("want two refs separated by '|'")
	}
	a, err := ParseRef(left)
	if err != nil {
		return Merge{}, err
	}
	b, err := ParseRef(right)
	if err != nil {
		return Merge{}, err
	}
	return Merge{ID: k, A: a, B: b}, nil
}

// Complete reports whether a single root remains.
func (g Graph) Complete() bool {
	return len(g.Merges) == g.Leaves-1
}

// Find returns the merge with id k.
func (g Graph) Find(k int) (Merge, bool) {
	i := sort.Search(len(g.Merges), func(i int) bool { return g.Merges[i].ID >= k })
	if i < len(g.Merges) && g.Merges[i].ID == k {
		return g.Merges[i], true
	}
	return Merge{}, false
}

// Exists reports whether ref names a leaf in range or a present merge.
func (g Graph) Exists(ref NodeRef) bool {
	if ref.Kind == KindLeaf {
		return ref.Index >= 0 && ref.Index < g.Leaves
	}
	_, ok := g.Find(ref.Index)
	return ok
}

// parents maps every child to the id of the merge that uses it.
func (g Graph) parents() map[NodeRef]int {
	p := make(map[NodeRef]int, 2*len(g.Merges))
	for _, m := range g.Merges {
		p[m.A] = m.ID
		p[m.B] = m.ID
	}
	return p
}

// IsRoot reports whether ref exists and is not a child of any merge.
func (g Graph) IsRoot(ref NodeRef) bool {
	if !g.Exists(ref) {
		return false
	}
	_, used := g.parents()[ref]
	return !used
}

// Roots lists the current roots, leaves first.
func (g Graph) Roots() []NodeRef {
	p := g.parents()
	var roots []NodeRef
	for i := 0; i < g.Leaves; i++ {
		if _, used := p[Leaf(i)]; !used {
			roots = append(roots, Leaf(i))
		}
	}
	for _, m := range g.Merges {
		if _, used := p[MergeRef(m.ID)]; !used {
			roots = append(roots, MergeRef(m.ID))
		}
	}
	return roots
}

// Nodes lists every node, leaves first, then merges by id.
func (g Graph) Nodes() []NodeRef {
	nodes := make([]NodeRef, 0, g.Leaves+len(g.Merges))
	for i := 0; i < g.Leaves; i++ {
		nodes = append(nodes, Leaf(i))
	}
	for _, m := range g.Merges {
		nodes = append(nodes, MergeRef(m.ID))
	}
	return nodes
}

// NextID is one past the largest id in use.
func (g Graph) NextID() int {
	if len(g.Merges) == 0 {
		return 0
	}
	return g.Merges[len(g.Merges)-1].ID + 1
}

// Dependents returns k0 and every merge that reaches k0 through a chain
// of child references, in ascending id order.
func (g Graph) Dependents(k0 int) []int {
	if _, ok := g.Find(k0); !ok {
		return nil
	}
	// usedBy inverts the child edges: node -> merges that contain it.
	usedBy := make(map[int][]int)
	for _, m := range g.Merges {
		for _, c := range []NodeRef{m.A, m.B} {
			if c.Kind == KindMerge {
				usedBy[c.Index] = append(usedBy[c.Index], m.ID)
			}
		}
	}
	seen := map[int]bool{k0: true}
	queue := []int{k0}
	for len(queue) > 0 {
		k := queue[0]
		queue = queue[1:]
		for _, parent := range usedBy[k] {
			if !seen[parent] {
				seen[parent] = true
				queue = append(queue, parent)
			}
		}
	}
	out := make([]int, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Ints(out)
	return out
}
