package mindmap_test

import (
	"fmt"

	"github.com/matzehuels/mindcanvas/pkg/mindmap"
)

func ExampleNormalize() {
	root := &mindmap.Node{ID: "root", Text: "Plan", Children: []*mindmap.Node{
		{ID: "a", Text: ""},
		{ID: "a", Text: "Dup"},
	}}

	i := 0
	out, issues := mindmap.NormalizeWith(root, func() string {
		i++
		return fmt.Sprintf("n%d", i)
	})

	for _, c := range out.Children {
		fmt.Println(c.ID, c.Text)
	}
	fmt.Println("issues:", len(issues))
	// Output:
	// a New idea
	// n1 Dup
	// issues: 2
}

func ExampleEdges() {
	root := &mindmap.Node{ID: "r", Text: "R", Children: []*mindmap.Node{
		{ID: "a", Text: "A", Children: []*mindmap.Node{{ID: "c", Text: "C"}}},
		{ID: "b", Text: "B"},
	}}
	for _, e := range mindmap.Edges(root) {
		fmt.Printf("%s->%s\n", e.From, e.To)
	}
	// Output:
	// r->a
	// a->c
	// r->b
}
