package world

import (
	"context"
	"testing"
)

func TestGenerateCreatesZones(t *testing.T) {
	o := NewOverworld(DefaultWidth, DefaultHeight, 4242)
	o.Generate(context.Background())

	if len(o.Zones) == 0 {
		t.Fatal("no zones generated")
	}

	// Every zone interior must be passable
	for i, zone := range o.Zones {
		cx, cy := zone.Center()
		if !o.IsPassable(cx, cy) {
			t.Errorf("zone %d center (%d,%d) not passable", i, cx, cy)
		}
	}
}

func TestGenerateDeterministicBySeed(t *testing.T) {
	a := NewOverworld(DefaultWidth, DefaultHeight, 777)
	b := NewOverworld(DefaultWidth, DefaultHeight, 777)
	a.Generate(context.Background())
	b.Generate(context.Background())

	if len(a.Zones) != len(b.Zones) {
		t.Fatalf("zone counts differ: %d vs %d", len(a.Zones), len(b.Zones))
	}
	for y := 0; y < a.Height; y++ {
		for x := 0; x < a.Width; x++ {
			if a.Tiles[y][x] != b.Tiles[y][x] {
				t.Fatalf("tiles differ at (%d,%d) despite equal seeds", x, y)
			}
		}
	}
}

func TestBoundsArePassableSafe(t *testing.T) {
	o := NewOverworld(DefaultWidth, DefaultHeight, 1)
	o.Generate(context.Background())

	if o.IsPassable(-1, 5) || o.IsPassable(5, -1) {
		t.Error("negative coordinates reported passable")
	}
	if o.IsPassable(o.Width, 5) || o.IsPassable(5, o.Height) {
		t.Error("out-of-range coordinates reported passable")
	}
	if o.GetTile(-10, -10) != TileThicket {
		t.Error("out-of-range tile not thicket")
	}
}

func TestZoneIndexAt(t *testing.T) {
	o := NewOverworld(DefaultWidth, DefaultHeight, 99)
	o.Generate(context.Background())

	for i, zone := range o.Zones {
		cx, cy := zone.Center()
		if got := o.ZoneIndexAt(cx, cy); got != i {
			t.Errorf("ZoneIndexAt(%d,%d) = %d, want %d", cx, cy, got, i)
		}
	}
	if got := o.ZoneIndexAt(0, 0); got != -1 {
		t.Errorf("ZoneIndexAt(0,0) = %d, want -1 for thicket", got)
	}
}

func TestRandomPointInZonePassable(t *testing.T) {
	o := NewOverworld(DefaultWidth, DefaultHeight, 5)
	o.Generate(context.Background())

	for i := range o.Zones {
		x, y := o.RandomPointInZone(i)
		if !o.IsPassable(x, y) {
			t.Errorf("RandomPointInZone(%d) = (%d,%d) not passable", i, x, y)
		}
	}
	if x, y := o.RandomPointInZone(-1); x != -1 || y != -1 {
		t.Error("invalid zone index should return (-1,-1)")
	}
}

func TestTileEncounterChance(t *testing.T) {
	if TileThicket.EncounterChance() != 0 {
		t.Error("thicket should never trigger encounters")
	}
	if TileMarsh.EncounterChance() <= TileGrass.EncounterChance() {
		t.Error("marsh should be more dangerous than grass")
	}
}
