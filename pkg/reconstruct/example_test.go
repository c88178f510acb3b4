package reconstruct_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/pageprint/pkg/canon"
	"github.com/matzehuels/pageprint/pkg/geom"
	"github.com/matzehuels/pageprint/pkg/paint"
	"github.com/matzehuels/pageprint/pkg/reconstruct"
)

func ExampleReconstruct() {
	card := &canon.Node{
		ID: "card", ParentID: "page", Kind: canon.KindFrame, Name: "card",
		Rect: geom.NewRect(20, 20, 160, 80), Opacity: 1, DocOrder: 1,
		Paints:  []paint.Paint{paint.Solid(paint.White)},
		Corners: paint.Corners{TopLeft: 12, TopRight: 12, BottomRight: 12, BottomLeft: 12},
	}
	page := &canon.Node{
		ID: "page", Kind: canon.KindFrame, Name: "page",
		Rect: geom.NewRect(0, 0, 200, 120), Opacity: 1,
		Children: []*canon.Node{card},
	}

	rec := reconstruct.NewRecorder(nil)
	res, err := reconstruct.Reconstruct(context.Background(), canon.NewDocument(page, nil), rec, reconstruct.Options{})
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, op := range rec.Ops() {
		fmt.Println(op.Seq, op.Type, op.Node)
	}
	fmt.Println("nodes:", res.Nodes)
	// Output:
	// 0 createFrame n1
	// 1 setRect n1
	// 2 createFrame n2
	// 3 setRect n2
	// 4 setPaints n2
	// 5 setCornerRadius n2
	// nodes: 2
}
