package render

import (
	"io"
	"sort"

	"github.com/zboralski/lattice"
	lrender "github.com/zboralski/lattice/render"

	"github.com/reoring/pardump"
)

// TypeGraph builds the type reference graph of d. Every structure and enum
// is a node; a structure has an edge to its base and to every type its
// members reference, nested array items and map keys/values included.
// References resolve by hash, so a hash-only reference to a defined type
// lands on that type's node. Referenced types missing from the dump still
// appear as edge targets.
func TypeGraph(d *pardump.Dump) *lattice.Graph {
	g := &lattice.Graph{}
	for _, s := range SortedStructs(d) {
		g.Nodes = append(g.Nodes, s.Name.String())
	}
	for _, e := range SortedEnums(d) {
		g.Nodes = append(g.Nodes, e.Name.String())
	}
	for _, s := range SortedStructs(d) {
		from := s.Name.String()
		if s.Base != nil {
			g.Edges = append(g.Edges, lattice.Edge{Caller: from, Callee: label(d, s.Base.Name)})
		}
		for _, to := range referencedTypes(d, s) {
			g.Edges = append(g.Edges, lattice.Edge{Caller: from, Callee: to})
		}
	}
	g.Dedup()
	return g
}

// label is the display text of the definition n refers to, or n's own text
// when the dump does not define it.
func label(d *pardump.Dump, n pardump.Name) string {
	if s, ok := d.Struct(n); ok {
		return s.Name.String()
	}
	if e, ok := d.Enum(n); ok {
		return e.Name.String()
	}
	return n.String()
}

// referencedTypes lists the labels s's members link to, sorted.
func referencedTypes(d *pardump.Dump, s *pardump.Structure) []string {
	seen := make(map[uint32]string)
	for _, m := range s.Members {
		pardump.WalkMembers(m, func(m pardump.Member) {
			switch v := m.(type) {
			case *pardump.EnumMember:
				seen[v.EnumName.Hash()] = label(d, v.EnumName)
			case *pardump.StructMember:
				if v.StructName != nil {
					seen[v.StructName.Hash()] = label(d, *v.StructName)
				}
			}
		})
	}
	out := make([]string, 0, len(seen))
	for _, n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// DOT writes the type reference graph of d in Graphviz format.
func DOT(w io.Writer, d *pardump.Dump, title string) error {
	_, err := io.WriteString(w, lrender.DOT(TypeGraph(d), title))
	return err
}
