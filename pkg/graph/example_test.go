package graph_test

import (
	"fmt"
	"os"

	"github.com/matzehuels/vfxgraph/pkg/graph"
	"github.com/matzehuels/vfxgraph/pkg/model"
)

func ExampleFromModel() {
	spawner := &model.SpawnerNode{}
	event := &model.EventNode{Name: "OnPlay"}
	event.LinkStart(spawner)

	g := model.NewGraph()
	g.AddModel(spawner)
	g.AddModel(event)

	view := graph.FromModel(g)
	for _, n := range view.Nodes {
		fmt.Println(n.ID, n.Kind, n.DisplayLabel())
	}
	for _, e := range view.Edges {
		fmt.Println(e.From, "->", e.To, e.Kind)
	}
	// Output:
	// model/0 SpawnerNode Spawner
	// model/1 EventNode OnPlay
	// model/1 -> model/0 start
}

func ExampleWrite() {
	g := model.NewGraph()
	g.AddModel(&model.Comment{Title: "todo"})

	if err := graph.Write(graph.FromModel(g), os.Stdout); err != nil {
		fmt.Println("Error:", err)
	}
	// Output:
	// {
	//   "nodes": [
	//     {
	//       "id": "model/0",
	//       "kind": "Comment",
	//       "label": "todo"
	//     }
	//   ],
	//   "edges": []
	// }
}
