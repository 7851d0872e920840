package arbor

import (
	"math"
	"sort"

	"github.com/akmonengine/arbor/volume"
	"github.com/go-gl/mathgl/mgl64"
)

// ============================================================================
// Types
// ============================================================================

// CellKey - Coordonnées d'une cellule dans l'espace 3D
type CellKey struct {
	X, Y, Z int
}

// Cell holds the indices of the bounds overlapping it
type Cell struct {
	indices []int
}

// Pair of indices whose bounds overlap, A < B
type Pair struct {
	A, B int
}

// SpatialGrid is a uniform hashed grid used as broad phase: it only reports pairs whose
// bounds overlap, and never misses one.
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int
}

// ============================================================================
// Constructor
// ============================================================================

// NewSpatialGrid rounds numCells up to a power of two
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].indices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

// nextPowerOfTwo - Arrondit à la puissance de 2 supérieure
func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Fits reports whether bounds covers no more cells than the grid holds.
// Larger bounds would wrap around the hash and should be paired by other means.
func (sg *SpatialGrid) Fits(bounds volume.Bounds) bool {
	count := 1.0
	for i := 0; i < 3; i++ {
		count *= math.Floor(bounds.Max[i]/sg.cellSize) - math.Floor(bounds.Min[i]/sg.cellSize) + 1
	}

	return count <= float64(len(sg.cells))
}

// Insert adds index to every cell covered by bounds
func (sg *SpatialGrid) Insert(index int, bounds volume.Bounds) {
	minCell := sg.worldToCell(bounds.Min)
	maxCell := sg.worldToCell(bounds.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := sg.hashCell(CellKey{x, y, z})

				sg.cells[cellIdx].indices = append(sg.cells[cellIdx].indices, index)
			}
		}
	}
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].indices = sg.cells[i].indices[:0]
	}
}

func (sg *SpatialGrid) SortCells() {
	for i := range sg.cells {
		if len(sg.cells[i].indices) > 1 {
			sort.Ints(sg.cells[i].indices)
		}
	}
}

// Build clears the grid and inserts every bounds under its index
func (sg *SpatialGrid) Build(bounds []volume.Bounds) {
	sg.Clear()
	for i, b := range bounds {
		sg.Insert(i, b)
	}
	sg.SortCells()
}

// FindPairs returns each overlapping pair once, ordered by A then by discovery.
// bounds must be the slice the grid was built with.
func (sg *SpatialGrid) FindPairs(bounds []volume.Bounds) []Pair {
	pairs := make([]Pair, 0, len(bounds)/2)
	seen := make([]bool, len(bounds))

	for idx := 0; idx < len(bounds); idx++ {
		clear(seen)
		a := bounds[idx]

		minCell := sg.worldToCell(a.Min)
		maxCell := sg.worldToCell(a.Max)

		for x := minCell.X; x <= maxCell.X; x++ {
			for y := minCell.Y; y <= maxCell.Y; y++ {
				for z := minCell.Z; z <= maxCell.Z; z++ {
					cellIdx := sg.hashCell(CellKey{x, y, z})

					for _, otherIdx := range sg.cells[cellIdx].indices {
						// Évite les doublons (A,B)/(B,A) et la même paire vue dans plusieurs cellules
						if otherIdx <= idx || seen[otherIdx] {
							continue
						}
						seen[otherIdx] = true

						if a.Overlaps(bounds[otherIdx]) {
							pairs = append(pairs, Pair{A: idx, B: otherIdx})
						}
					}
				}
			}
		}
	}

	return pairs
}

// worldToCell - Convertit une position monde en coordonnées de cellule
func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

// hashCell - Hash une cellule vers un index dans l'array
func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
