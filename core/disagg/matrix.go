package disagg

import "fmt"

// Axis names a matrix dimension.
type Axis int

const (
	AxisMag Axis = iota
	AxisDist
	AxisLon
	AxisLat
	AxisEps
	AxisTRT

	NumAxes = 6
)

var axisNames = [NumAxes]string{"mag", "dist", "lon", "lat", "eps", "trt"}

func (a Axis) String() string {
	if a < 0 || int(a) >= NumAxes {
		return fmt.Sprintf("Axis(%d)", int(a))
	}
	return axisNames[a]
}

// ParseAxis maps a name such as "mag" back to its Axis.
func ParseAxis(s string) (Axis, error) {
	for i, n := range axisNames {
		if n == s {
			return Axis(i), nil
		}
	}
	return 0, fmt.Errorf("disagg: unknown axis %q", s)
}

type (
	Shape [NumAxes]int
	Index [NumAxes]int
)

// Size is the number of cells.
func (s Shape) Size() int {
	n := 1
	for _, d := range s {
		n *= d
	}
	return n
}

// Matrix is a dense 6-D array of probabilities in row-major order
// (mag, dist, lon, lat, eps, trt).
type Matrix struct {
	shape   Shape
	strides [NumAxes]int
	data    []float64
}

// NewMatrix returns a zero matrix. Every dimension must be >= 1.
func NewMatrix(shape Shape) (*Matrix, error) {
	for a, d := range shape {
		if d < 1 {
			return nil, fmt.Errorf("%w: %s dimension %d", ErrShapeMismatch, Axis(a), d)
		}
	}
	m := &Matrix{shape: shape, data: make([]float64, shape.Size())}
	stride := 1
	for a := NumAxes - 1; a >= 0; a-- {
		m.strides[a] = stride
		stride *= shape[a]
	}
	return m, nil
}

func (m *Matrix) Shape() Shape { return m.shape }

// Len is the number of cells.
func (m *Matrix) Len() int { return len(m.data) }

func (m *Matrix) offset(idx Index) int {
	off := 0
	for a, i := range idx {
		if i < 0 || i >= m.shape[a] {
			panic(fmt.Sprintf("disagg: index %v out of shape %v", idx, m.shape))
		}
		off += i * m.strides[a]
	}
	return off
}

func (m *Matrix) At(idx Index) float64 { return m.data[m.offset(idx)] }

func (m *Matrix) Set(idx Index, v float64) { m.data[m.offset(idx)] = v }

// Combine folds p into a cell as an independent event: 1-(1-cell)(1-p).
func (m *Matrix) Combine(idx Index, p float64) {
	o := m.offset(idx)
	m.data[o] = union(m.data[o], p)
}

// Merge combines every cell of o into m with the union rule.
func (m *Matrix) Merge(o *Matrix) error {
	if o.shape != m.shape {
		return fmt.Errorf("%w: merge %v into %v", ErrShapeMismatch, o.shape, m.shape)
	}
	for i, v := range o.data {
		m.data[i] = union(m.data[i], v)
	}
	return nil
}

func (m *Matrix) Sum() float64 {
	s := 0.0
	for _, v := range m.data {
		s += v
	}
	return s
}

// Normalize scales the matrix to unit sum. It reports false and leaves the
// matrix untouched when the sum is zero.
func (m *Matrix) Normalize() bool {
	s := m.Sum()
	if s == 0 {
		return false
	}
	for i := range m.data {
		m.data[i] /= s
	}
	return true
}

// Each visits cells in row-major order.
func (m *Matrix) Each(fn func(idx Index, v float64)) {
	var idx Index
	for _, v := range m.data {
		fn(idx, v)
		for a := NumAxes - 1; a >= 0; a-- {
			idx[a]++
			if idx[a] < m.shape[a] {
				break
			}
			idx[a] = 0
		}
	}
}

// Values returns a copy of the cells in row-major order.
func (m *Matrix) Values() []float64 {
	return append([]float64(nil), m.data...)
}

// MatrixFromValues builds a matrix from row-major values.
func MatrixFromValues(shape Shape, values []float64) (*Matrix, error) {
	m, err := NewMatrix(shape)
	if err != nil {
		return nil, err
	}
	if len(values) != len(m.data) {
		return nil, fmt.Errorf("%w: %d values for shape %v", ErrShapeMismatch, len(values), shape)
	}
	copy(m.data, values)
	return m, nil
}

func union(a, b float64) float64 { return a + b - a*b }
