package core

// Grid describes a uniform row-major grid of square cells.
type Grid struct {
	W, H     int
	CellSize float64
}

// NewGrid returns a grid with at least one cell per axis.
func NewGrid(w, h int, cellSize float64) Grid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return Grid{W: w, H: h, CellSize: cellSize}
}

// Len returns the number of cells.
func (g Grid) Len() int { return g.W * g.H }

// Index returns the linear slice index for coordinates (x, y).
func (g Grid) Index(x, y int) int { return y*g.W + x }

// Coords is the inverse of Index.
func (g Grid) Coords(idx int) (int, int) { return idx % g.W, idx / g.W }

// InBounds reports whether (x, y) lies inside the grid.
func (g Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.W && y < g.H
}

// Boundary reports whether (x, y) lies on the outermost ring of cells.
func (g Grid) Boundary(x, y int) bool {
	return x == 0 || y == 0 || x == g.W-1 || y == g.H-1
}

// CellArea returns the area of one cell in square metres.
func (g Grid) CellArea() float64 { return g.CellSize * g.CellSize }

// Field is a double-buffered scalar field. Passes read Cur and write Next;
// Swap publishes the written generation.
type Field struct {
	Cur  []float64
	Next []float64
}

// NewField allocates both generations and fills them with v.
func NewField(n int, v float64) Field {
	f := Field{Cur: make([]float64, n), Next: make([]float64, n)}
	f.Fill(v)
	return f
}

// Swap exchanges the read and write generations.
func (f *Field) Swap() { f.Cur, f.Next = f.Next, f.Cur }

// Fill sets every cell of both generations to v.
func (f *Field) Fill(v float64) {
	for i := range f.Cur {
		f.Cur[i] = v
		f.Next[i] = v
	}
}

// Sync copies the current generation into the next one.
func (f *Field) Sync() { copy(f.Next, f.Cur) }

// ByteGrid stores a 2D grid of byte-sized cell values in row-major order.
type ByteGrid struct {
	W, H int
	data []uint8
}

// NewByteGrid allocates a grid with the given dimensions.
func NewByteGrid(w, h int) *ByteGrid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &ByteGrid{W: w, H: h, data: make([]uint8, w*h)}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *ByteGrid) Cells() []uint8 { return g.data }
