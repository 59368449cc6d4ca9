package renderer

import "image"

// Tile represents a rectangular region of the framebuffer rendered by one worker
type Tile struct {
	ID     int             // Row-major tile index
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	var tiles []*Tile
	tileID := 0

	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, &Tile{ID: tileID, Bounds: image.Rect(x0, y0, x1, y1)})
			tileID++
		}
	}

	return tiles
}

// tileBins lists, per tile, the screen triangles whose bounds overlap it.
// Triangles are appended in submission order, so every bin keeps that order.
type tileBins struct {
	tileSize int
	tilesX   int
	tilesY   int
	bins     [][]int32
}

func newTileBins(width, height, tileSize int) *tileBins {
	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize
	return &tileBins{
		tileSize: tileSize,
		tilesX:   tilesX,
		tilesY:   tilesY,
		bins:     make([][]int32, tilesX*tilesY),
	}
}

// reset empties every bin, keeping the allocations
func (tb *tileBins) reset() {
	for i := range tb.bins {
		tb.bins[i] = tb.bins[i][:0]
	}
}

// add records triangle index i in every tile that bounds overlaps
func (tb *tileBins) add(i int, bounds image.Rectangle) {
	if bounds.Empty() {
		return
	}
	tx0 := bounds.Min.X / tb.tileSize
	ty0 := bounds.Min.Y / tb.tileSize
	tx1 := min((bounds.Max.X-1)/tb.tileSize, tb.tilesX-1)
	ty1 := min((bounds.Max.Y-1)/tb.tileSize, tb.tilesY-1)
	for ty := ty0; ty <= ty1; ty++ {
		for tx := tx0; tx <= tx1; tx++ {
			id := ty*tb.tilesX + tx
			tb.bins[id] = append(tb.bins[id], int32(i))
		}
	}
}

func (tb *tileBins) bin(tileID int) []int32 {
	return tb.bins[tileID]
}
