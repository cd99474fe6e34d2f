package world

import (
	"context"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/emberfall/internal/telemetry"
)

const (
	// Default overworld dimensions
	DefaultWidth  = 80
	DefaultHeight = 24

	// BSP parameters
	minZoneSize = 8  // Minimum clearing dimension
	maxZoneSize = 15 // Maximum clearing dimension
	minLeafSize = 10 // Minimum BSP leaf size before stopping split

	marshPercent = 12 // Share of clearing tiles converted to marsh
)

// Overworld is the explorable map: thicket-bounded clearings joined by
// trails. Generation is fully determined by the seed, so a saved game
// regenerates an identical map.
type Overworld struct {
	Width  int
	Height int
	Tiles  [][]Tile
	Zones  []Zone
	Seed   int64
	rng    *rand.Rand
}

// NewOverworld creates an overworld filled with thicket, seeded for
// reproducible generation. A zero seed picks one from the clock.
func NewOverworld(width, height int, seed int64) *Overworld {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	tiles := make([][]Tile, height)
	for y := range tiles {
		tiles[y] = make([]Tile, width)
		for x := range tiles[y] {
			tiles[y][x] = TileThicket
		}
	}

	return &Overworld{
		Width:  width,
		Height: height,
		Tiles:  tiles,
		Zones:  make([]Zone, 0),
		Seed:   seed,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Generate carves the overworld layout using BSP splitting.
func (o *Overworld) Generate(ctx context.Context) {
	tracer := telemetry.Tracer("world")
	_, span := tracer.Start(ctx, "overworld.generate")
	defer span.End()

	startTime := time.Now()

	root := &bspNode{
		x:      1,
		y:      1,
		width:  o.Width - 2,
		height: o.Height - 2,
	}

	o.splitNode(root)
	o.createZones(root)
	o.connectZones(root)
	o.seedMarsh()

	span.SetAttributes(
		attribute.Int("overworld.width", o.Width),
		attribute.Int("overworld.height", o.Height),
		attribute.Int("overworld.zone_count", len(o.Zones)),
		attribute.Int64("overworld.seed", o.Seed),
		attribute.Int64("overworld.generation_ms", time.Since(startTime).Milliseconds()),
	)
}

// IsPassable returns true if the given position can be walked on.
func (o *Overworld) IsPassable(x, y int) bool {
	if x < 0 || x >= o.Width || y < 0 || y >= o.Height {
		return false
	}
	return o.Tiles[y][x].IsPassable()
}

// GetTile returns the tile at the given position.
func (o *Overworld) GetTile(x, y int) Tile {
	if x < 0 || x >= o.Width || y < 0 || y >= o.Height {
		return TileThicket
	}
	return o.Tiles[y][x]
}

// ZoneIndexAt returns the index of the zone containing the position, or -1
// when the position is on a trail or in the thicket.
func (o *Overworld) ZoneIndexAt(x, y int) int {
	for i, zone := range o.Zones {
		if zone.Contains(x, y) {
			return i
		}
	}
	return -1
}

// RandomPointInZone returns a random passable point within the given zone.
func (o *Overworld) RandomPointInZone(zoneIndex int) (int, int) {
	if zoneIndex < 0 || zoneIndex >= len(o.Zones) {
		return -1, -1
	}
	zone := o.Zones[zoneIndex]

	for i := 0; i < 100; i++ {
		x := zone.X + o.rng.Intn(zone.Width)
		y := zone.Y + o.rng.Intn(zone.Height)
		if o.IsPassable(x, y) {
			return x, y
		}
	}
	return zone.Center()
}

// bspNode represents a node in the BSP tree.
type bspNode struct {
	x, y          int
	width, height int
	left, right   *bspNode
	zone          *Zone
}

func (n *bspNode) isLeaf() bool {
	return n.left == nil && n.right == nil
}

// splitNode recursively splits a BSP node.
func (o *Overworld) splitNode(node *bspNode) {
	if node.width < minLeafSize*2 && node.height < minLeafSize*2 {
		return
	}

	var splitHorizontally bool
	if node.width > node.height && node.width >= minLeafSize*2 {
		splitHorizontally = false
	} else if node.height >= minLeafSize*2 {
		splitHorizontally = true
	} else if node.width >= minLeafSize*2 {
		splitHorizontally = false
	} else {
		return
	}

	var splitPos int
	if splitHorizontally {
		lo, hi := minLeafSize, node.height-minLeafSize
		if hi <= lo {
			return
		}
		splitPos = lo + o.rng.Intn(hi-lo+1)
	} else {
		lo, hi := minLeafSize, node.width-minLeafSize
		if hi <= lo {
			return
		}
		splitPos = lo + o.rng.Intn(hi-lo+1)
	}

	if splitHorizontally {
		node.left = &bspNode{x: node.x, y: node.y, width: node.width, height: splitPos}
		node.right = &bspNode{x: node.x, y: node.y + splitPos, width: node.width, height: node.height - splitPos}
	} else {
		node.left = &bspNode{x: node.x, y: node.y, width: splitPos, height: node.height}
		node.right = &bspNode{x: node.x + splitPos, y: node.y, width: node.width - splitPos, height: node.height}
	}

	o.splitNode(node.left)
	o.splitNode(node.right)
}

// createZones carves a clearing in each BSP leaf.
func (o *Overworld) createZones(node *bspNode) {
	if node == nil {
		return
	}
	if !node.isLeaf() {
		o.createZones(node.left)
		o.createZones(node.right)
		return
	}

	zoneWidth := minZoneSize + o.rng.Intn(min(maxZoneSize-minZoneSize+1, node.width-minZoneSize+1))
	zoneHeight := minZoneSize + o.rng.Intn(min(maxZoneSize-minZoneSize+1, node.height-minZoneSize+1))

	if zoneWidth > node.width-2 {
		zoneWidth = node.width - 2
	}
	if zoneHeight > node.height-2 {
		zoneHeight = node.height - 2
	}
	if zoneWidth < minZoneSize || zoneHeight < minZoneSize {
		return
	}

	zoneX := node.x + 1 + o.rng.Intn(node.width-zoneWidth-1)
	zoneY := node.y + 1 + o.rng.Intn(node.height-zoneHeight-1)

	zone := Zone{X: zoneX, Y: zoneY, Width: zoneWidth, Height: zoneHeight}
	node.zone = &zone
	o.Zones = append(o.Zones, zone)
	o.carveZone(zone)
}

// carveZone sets all tiles within the zone to grass.
func (o *Overworld) carveZone(zone Zone) {
	for y := zone.Y; y < zone.Y+zone.Height; y++ {
		for x := zone.X; x < zone.X+zone.Width; x++ {
			if x > 0 && x < o.Width-1 && y > 0 && y < o.Height-1 {
				o.Tiles[y][x] = TileGrass
			}
		}
	}
}

// connectZones joins the BSP subtrees with trails.
func (o *Overworld) connectZones(node *bspNode) {
	if node == nil || node.isLeaf() {
		return
	}

	o.connectZones(node.left)
	o.connectZones(node.right)

	leftZone := o.getZone(node.left)
	rightZone := o.getZone(node.right)
	if leftZone != nil && rightZone != nil {
		o.carveTrail(*leftZone, *rightZone)
	}
}

func (o *Overworld) getZone(node *bspNode) *Zone {
	if node == nil {
		return nil
	}
	if node.zone != nil {
		return node.zone
	}
	if zone := o.getZone(node.left); zone != nil {
		return zone
	}
	return o.getZone(node.right)
}

// carveTrail carves an L-shaped trail between two zone centers.
func (o *Overworld) carveTrail(z1, z2 Zone) {
	x1, y1 := z1.Center()
	x2, y2 := z2.Center()

	if o.rng.Intn(2) == 0 {
		o.carveHorizontal(x1, x2, y1)
		o.carveVertical(y1, y2, x2)
	} else {
		o.carveVertical(y1, y2, x1)
		o.carveHorizontal(x1, x2, y2)
	}
}

func (o *Overworld) carveHorizontal(x1, x2, y int) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	for x := x1; x <= x2; x++ {
		if x > 0 && x < o.Width-1 && y > 0 && y < o.Height-1 {
			o.Tiles[y][x] = TileGrass
		}
	}
}

func (o *Overworld) carveVertical(y1, y2, x int) {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	for y := y1; y <= y2; y++ {
		if x > 0 && x < o.Width-1 && y > 0 && y < o.Height-1 {
			o.Tiles[y][x] = TileGrass
		}
	}
}

// seedMarsh converts a share of later-zone grass to marsh, making the deeper
// map more dangerous to cross.
func (o *Overworld) seedMarsh() {
	for i, zone := range o.Zones {
		if i == 0 {
			continue // The starting clearing stays safe grass
		}
		for y := zone.Y; y < zone.Y+zone.Height; y++ {
			for x := zone.X; x < zone.X+zone.Width; x++ {
				if o.Tiles[y][x] == TileGrass && o.rng.Intn(100) < marshPercent {
					o.Tiles[y][x] = TileMarsh
				}
			}
		}
	}
}
