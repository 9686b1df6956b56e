package render_test

import (
	"bytes"
	"errors"
	"html"
	"regexp"
	"strings"
	"testing"

	"github.com/reoring/pardump"
	"github.com/reoring/pardump/render"
)

func mi(name string, typ pardump.MemberType, off, size uint64) pardump.MemberInfo {
	return pardump.MemberInfo{Name: pardump.NameFromString(name), Type: typ, Offset: off, Size: size}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func intMember(name string, off uint64) pardump.Member {
	return must(pardump.NewSimple(mi(name, pardump.TypeInt, off, 4), 0))
}

// selfRefDump is one structure CFoo whose m_next points back at CFoo.
func selfRefDump() *pardump.Dump {
	foo := pardump.NameFromString("CFoo")
	return &pardump.Dump{
		Game:  "gta5",
		Build: "2699",
		Structs: []*pardump.Structure{{
			Name: foo,
			Members: []pardump.Member{
				must(pardump.NewStruct(mi("m_next", pardump.TypeStruct, 8, 8), &foo, nil, nil, nil)),
				intMember("m_count", 0),
			},
		}},
	}
}

func textOf(t *testing.T, d *pardump.Dump) string {
	t.Helper()
	var b bytes.Buffer
	if err := render.Text(&b, d); err != nil {
		t.Fatalf("render: %v", err)
	}
	return b.String()
}

func TestTypeText_Array(t *testing.T) {
	size := uint64(4)
	fixed := must(pardump.NewArray(mi("xs", pardump.TypeArray, 0, 16), intMember("", 0), 0, &size, nil))
	if got := render.TypeText(fixed); got != "array<int, 4>" {
		t.Fatalf("fixed array = %q", got)
	}
	open := must(pardump.NewArray(mi("xs", pardump.TypeArray, 0, 16), intMember("", 0), 0, nil, nil))
	if got := render.TypeText(open); got != "array<int>" {
		t.Fatalf("counted array = %q", got)
	}
}

func TestTypeText_Variants(t *testing.T) {
	e := pardump.NameFromString("EFlags")
	key := must(pardump.NewString(mi("", pardump.TypeString, 0, 8), 0, 0))
	cases := []struct {
		m    pardump.Member
		want string
	}{
		{must(pardump.NewEnum(mi("a", pardump.TypeEnum, 0, 4), e, 0)), "EFlags"},
		{must(pardump.NewEnum(mi("a", pardump.TypeBitset, 0, 4), e, 0)), "bitset<enum EFlags>"},
		{must(pardump.NewMap(mi("a", pardump.TypeMap, 0, 16), key, intMember("", 0), nil, nil)), "map<string, int>"},
		{must(pardump.NewStruct(mi("a", pardump.TypeStruct, 0, 8), nil, nil, nil, nil)), "void"},
		{must(pardump.NewVector(mi("a", pardump.TypeVec3V, 0, 16), []float64{0, 0, 0})), "Vec3V"},
		{must(pardump.NewMatrix(mi("a", pardump.TypeMat34V, 0, 48), nil)), "Mat34V"},
		{must(pardump.NewBare(mi("a", pardump.TypeGUID, 0, 16))), "guid"},
		{must(pardump.NewBare(mi("a", pardump.TypeInt, 0, 4))), "int"},
		{must(pardump.NewStruct(mi("a", pardump.TypeStruct, 0, 8), ptr(pardump.NameFromHash(0xBEEF)), nil, nil, nil)), "0x0000BEEF"},
	}
	for _, c := range cases {
		if got := render.TypeText(c.m); got != c.want {
			t.Fatalf("%s: got %q want %q", c.m.Info().Type, got, c.want)
		}
	}
}

func ptr[T any](v T) *T { return &v }

func TestText_SelfReference(t *testing.T) {
	out := textOf(t, selfRefDump())
	want := "struct CFoo\n" +
		"{\n" +
		"\tint  m_count; // +0x0000 size 0x4\n" +
		"\tCFoo m_next;  // +0x0008 size 0x8\n" +
		"};\n"
	if out != want {
		t.Fatalf("text mismatch\n got: %q\nwant: %q", out, want)
	}
}

func TestText_EnumOnly(t *testing.T) {
	d := &pardump.Dump{Enums: []*pardump.Enum{{
		Name: pardump.NameFromString("EState"),
		Values: []pardump.EnumValue{
			{Name: pardump.NameFromString("OFF"), Value: 0},
			{Name: pardump.NameFromString("ON"), Value: 1},
		},
	}}}
	out := textOf(t, d)
	want := "enum EState\n{\n\tOFF = 0,\n\tON = 1,\n};\n"
	if out != want {
		t.Fatalf("text mismatch\n got: %q\nwant: %q", out, want)
	}
}

func TestText_OrderAndSeparation(t *testing.T) {
	d := &pardump.Dump{
		Structs: []*pardump.Structure{
			{Name: pardump.NameFromString("Banana")},
			{Name: pardump.NameFromString("apple")},
		},
		Enums: []*pardump.Enum{{Name: pardump.NameFromString("Aardvark")}},
	}
	out := textOf(t, d)
	ia := strings.Index(out, "struct apple")
	ib := strings.Index(out, "struct Banana")
	ie := strings.Index(out, "enum Aardvark")
	if ia < 0 || ib < 0 || ie < 0 {
		t.Fatalf("missing block in %q", out)
	}
	if !(ia < ib && ib < ie) {
		t.Fatalf("order wrong: apple@%d Banana@%d Aardvark@%d", ia, ib, ie)
	}
	if !strings.Contains(out, "};\n\nstruct Banana") {
		t.Fatalf("blocks must be separated by one blank line: %q", out)
	}
}

func TestText_Deterministic(t *testing.T) {
	d := selfRefDump()
	d.Structs = append(d.Structs, &pardump.Structure{Name: pardump.NameFromHash(7), Base: &pardump.StructureBase{Name: pardump.NameFromString("CFoo")}})
	first := textOf(t, d)
	for i := 0; i < 5; i++ {
		if got := textOf(t, d); got != first {
			t.Fatalf("render %d differs", i)
		}
	}
	if !strings.Contains(first, "struct 0x00000007 : CFoo\n") {
		t.Fatalf("base clause missing: %q", first)
	}
}

func TestText_ColumnsAligned(t *testing.T) {
	size := uint64(32)
	d := &pardump.Dump{Structs: []*pardump.Structure{{
		Name: pardump.NameFromString("CAligned"),
		Members: []pardump.Member{
			intMember("a", 0),
			must(pardump.NewArray(mi("m_longerName", pardump.TypeArray, 8, 128), intMember("", 0), 0, &size, nil)),
			must(pardump.NewVector(mi("pos", pardump.TypeVector3, 0x90, 12), []float64{0, 0, 0})),
		},
	}}}
	var commentCols, nameCols []int
	for _, line := range strings.Split(textOf(t, d), "\n") {
		if !strings.HasPrefix(line, "\t") {
			continue
		}
		commentCols = append(commentCols, strings.Index(line, "//"))
		nameCols = append(nameCols, regexp.MustCompile(`\S+;`).FindStringIndex(line)[0])
	}
	if len(commentCols) != 3 {
		t.Fatalf("expected 3 member lines, got %d", len(commentCols))
	}
	for i := 1; i < 3; i++ {
		if commentCols[i] != commentCols[0] || nameCols[i] != nameCols[0] {
			t.Fatalf("columns differ: names %v comments %v", nameCols, commentCols)
		}
	}
}

func TestMemberComment_Subtype(t *testing.T) {
	i := mi("m_name", pardump.TypeString, 0x1A, 0x10)
	i.Subtype = pardump.SubtypeAtString
	m := must(pardump.NewString(i, 0, 0))
	if got := render.MemberComment(m); got != "// +0x001A size 0x10, ATSTRING" {
		t.Fatalf("comment = %q", got)
	}
}

func TestHTML_SelfLink(t *testing.T) {
	var b bytes.Buffer
	if err := render.HTML(&b, selfRefDump()); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := b.String()
	anchor := pardump.NameFromString("CFoo").Anchor()
	if !strings.Contains(out, `<pre id="`+anchor+`">`) {
		t.Fatalf("block id missing: %s", out)
	}
	if !strings.Contains(out, `<a href="#`+anchor+`"`) {
		t.Fatalf("self link missing: %s", out)
	}
	if !strings.Contains(out, "<title>GTA5 (build 2699)</title>") {
		t.Fatalf("title missing: %s", out)
	}
}

func TestHTML_Escapes(t *testing.T) {
	size := uint64(2)
	d := &pardump.Dump{Game: "a<b", Structs: []*pardump.Structure{{
		Name:    pardump.NameFromString("T&U"),
		Members: []pardump.Member{must(pardump.NewArray(mi("xs", pardump.TypeArray, 0, 8), intMember("", 0), 0, &size, nil))},
	}}}
	var b bytes.Buffer
	if err := render.HTML(&b, d); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := b.String()
	if strings.Contains(out, "T&U") || !strings.Contains(out, "T&amp;U") {
		t.Fatalf("type name not escaped: %s", out)
	}
	if !strings.Contains(out, "&lt;") || !strings.Contains(out, "A&lt;B") {
		t.Fatalf("angle brackets not escaped: %s", out)
	}
}

var ansiEscape = regexp.MustCompile("\x1b\\[[0-9;]*m")

func TestANSI_StripsToText(t *testing.T) {
	d := selfRefDump()
	var b bytes.Buffer
	if err := render.ANSI(&b, d, render.ANSIOptions{ForceColor: true}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !ansiEscape.MatchString(b.String()) {
		t.Fatalf("expected color escapes with ForceColor")
	}
	if got := ansiEscape.ReplaceAllString(b.String(), ""); got != textOf(t, d) {
		t.Fatalf("stripped ANSI differs from text\n got: %q\nwant: %q", got, textOf(t, d))
	}
}

type failWriter struct{ n int }

func (f *failWriter) Write(p []byte) (int, error) {
	if f.n == 0 {
		return 0, errors.New("disk full")
	}
	f.n--
	return len(p), nil
}

func TestText_WriterError(t *testing.T) {
	err := render.Text(&failWriter{n: 3}, selfRefDump())
	if err == nil || err.Error() != "disk full" {
		t.Fatalf("expected writer error, got %v", err)
	}
}

func TestTypeGraph_Edges(t *testing.T) {
	d := selfRefDump()
	e := pardump.NameFromString("EState")
	d.Enums = []*pardump.Enum{{Name: e}}
	d.Structs = append(d.Structs, &pardump.Structure{
		Name: pardump.NameFromString("CBar"),
		Base: &pardump.StructureBase{Name: pardump.NameFromString("CFoo")},
		Members: []pardump.Member{
			must(pardump.NewArray(mi("states", pardump.TypeArray, 0, 16),
				must(pardump.NewEnum(mi("", pardump.TypeEnum, 0, 4), e, 0)), 0, nil, nil)),
		},
	})
	g := render.TypeGraph(d)
	want := map[[2]string]bool{
		{"CBar", "CFoo"}:   false,
		{"CBar", "EState"}: false,
		{"CFoo", "CFoo"}:   false,
	}
	for _, edge := range g.Edges {
		k := [2]string{edge.Caller, edge.Callee}
		if _, ok := want[k]; !ok {
			t.Fatalf("unexpected edge %v", k)
		}
		want[k] = true
	}
	for k, seen := range want {
		if !seen {
			t.Fatalf("missing edge %v", k)
		}
	}
	nodes := strings.Join(g.Nodes, ",")
	for _, n := range []string{"CBar", "CFoo", "EState"} {
		if !strings.Contains(nodes, n) {
			t.Fatalf("node %s missing from %v", n, g.Nodes)
		}
	}

	var b bytes.Buffer
	if err := render.DOT(&b, d, "types"); err != nil {
		t.Fatalf("dot: %v", err)
	}
	if !strings.Contains(b.String(), "CBar") {
		t.Fatalf("DOT output missing node: %s", b.String())
	}
}

func htmlOf(t *testing.T, d *pardump.Dump) string {
	t.Helper()
	var b bytes.Buffer
	if err := render.HTML(&b, d); err != nil {
		t.Fatalf("render: %v", err)
	}
	return b.String()
}

func TestHTML_Deterministic(t *testing.T) {
	d := selfRefDump()
	d.Enums = []*pardump.Enum{{Name: pardump.NameFromString("EState")}}
	first := htmlOf(t, d)
	for i := 0; i < 5; i++ {
		if got := htmlOf(t, d); got != first {
			t.Fatalf("render %d differs", i)
		}
	}
}

var htmlTag = regexp.MustCompile(`<[^>]*>`)

func TestHTML_ColumnsMatchText(t *testing.T) {
	size := uint64(32)
	e := pardump.NameFromString("EState")
	d := &pardump.Dump{Structs: []*pardump.Structure{{
		Name: pardump.NameFromString("CAligned"),
		Members: []pardump.Member{
			intMember("a", 0),
			must(pardump.NewArray(mi("m_longerName", pardump.TypeArray, 8, 128), intMember("", 0), 0, &size, nil)),
			must(pardump.NewEnum(mi("state", pardump.TypeBitset, 0x90, 4), e, 0)),
		},
	}}}
	var members []string
	for _, line := range strings.Split(html.UnescapeString(htmlTag.ReplaceAllString(htmlOf(t, d), "")), "\n") {
		if strings.HasPrefix(line, "\t") {
			members = append(members, line)
		}
	}
	var want []string
	for _, line := range strings.Split(textOf(t, d), "\n") {
		if strings.HasPrefix(line, "\t") {
			want = append(want, line)
		}
	}
	if len(members) != 3 || len(want) != 3 {
		t.Fatalf("member lines: html %d text %d", len(members), len(want))
	}
	col := strings.Index(members[0], "//")
	for i := range members {
		if members[i] != want[i] {
			t.Fatalf("line %d differs\nhtml: %q\ntext: %q", i, members[i], want[i])
		}
		if strings.Index(members[i], "//") != col {
			t.Fatalf("comment columns differ: %q", members)
		}
	}
}

func TestText_HashOnlyNamesSortByDisplayText(t *testing.T) {
	d := &pardump.Dump{Structs: []*pardump.Structure{
		{Name: pardump.NameFromString("CFoo")},
		{Name: pardump.NameFromHash(0xFF)},
		{Name: pardump.NameFromHash(7)},
	}}
	out := textOf(t, d)
	i7 := strings.Index(out, "struct 0x00000007")
	iff := strings.Index(out, "struct 0x000000FF")
	ifoo := strings.Index(out, "struct CFoo")
	if i7 < 0 || iff < 0 || ifoo < 0 {
		t.Fatalf("missing block in %q", out)
	}
	if !(i7 < iff && iff < ifoo) {
		t.Fatalf("order wrong: 0x07@%d 0xFF@%d CFoo@%d", i7, iff, ifoo)
	}
}

func TestTypeGraph_ResolvesByHash(t *testing.T) {
	foo := pardump.NameFromString("CFoo")
	ref := pardump.NameFromHash(foo.Hash())
	d := &pardump.Dump{Structs: []*pardump.Structure{
		{Name: foo},
		{
			Name:    pardump.NameFromString("CBar"),
			Base:    &pardump.StructureBase{Name: ref},
			Members: []pardump.Member{must(pardump.NewStruct(mi("m_foo", pardump.TypeStruct, 0, 8), &ref, nil, nil, nil))},
		},
	}}
	g := render.TypeGraph(d)
	for _, n := range g.Nodes {
		if n == ref.String() {
			t.Fatalf("hash-only reference must resolve to CFoo, nodes %v", g.Nodes)
		}
	}
	found := false
	for _, e := range g.Edges {
		if e.Callee == ref.String() {
			t.Fatalf("edge to unresolved label %v", e)
		}
		if e.Caller == "CBar" && e.Callee == "CFoo" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing CBar -> CFoo edge in %v", g.Edges)
	}
}
