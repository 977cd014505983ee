package assemble

import (
	"math"

	"github.com/matsen/relgraph/internal/graph"
)

// Canvas configures circular placement of graph-shaped batches.
type Canvas struct {
	CenterX    float64
	CenterY    float64
	MaxRadius  float64
	RadiusStep float64 // Radius added per node, capped at MaxRadius
}

// DefaultCanvas returns the standard canvas geometry.
func DefaultCanvas() Canvas {
	return Canvas{CenterX: 400, CenterY: 300, MaxRadius: 300, RadiusStep: 60}
}

// Radius returns the circle radius used for a batch of count nodes.
func (c Canvas) Radius(count int) float64 {
	return math.Min(c.MaxRadius, float64(count)*c.RadiusStep)
}

// circlePosition places node index of count evenly around the canvas center.
func circlePosition(index, count int, c Canvas) graph.Position {
	if count <= 0 {
		return graph.Position{X: c.CenterX, Y: c.CenterY}
	}
	radius := c.Radius(count)
	angle := 2 * math.Pi * float64(index) / float64(count)
	return graph.Position{
		X: c.CenterX + radius*math.Cos(angle),
		Y: c.CenterY + radius*math.Sin(angle),
	}
}

// Viewport configures grid placement of single-entity nodes.
type Viewport struct {
	Width      float64
	NodeWidth  float64
	NodeHeight float64
	Padding    float64
}

// DefaultViewport returns the standard viewport geometry.
func DefaultViewport() Viewport {
	return Viewport{Width: 1200, NodeWidth: 180, NodeHeight: 80, Padding: 40}
}

// Columns returns how many nodes fit across the viewport, at least one.
func (v Viewport) Columns() int {
	cols := int((v.Width - v.Padding) / (v.NodeWidth + v.Padding))
	if cols < 1 {
		return 1
	}
	return cols
}

// gridPosition places the index-th accumulated node on a row-major grid.
func gridPosition(index int, v Viewport) graph.Position {
	cols := v.Columns()
	row, col := index/cols, index%cols
	return graph.Position{
		X: v.Padding + float64(col)*(v.NodeWidth+v.Padding),
		Y: v.Padding + float64(row)*(v.NodeHeight+v.Padding),
	}
}
