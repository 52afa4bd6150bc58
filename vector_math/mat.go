package vector_math

import (
	"github.com/pkg/errors"
)

// Mat is a row major matrix, m[row][column]. Translations live in the last column.
type Mat [][]float32

func NewMat(rows uint, cols uint) (Mat, error) {
	if rows == 0 || cols == 0 {
		return nil, errors.Errorf("cannot construct a %dx%d matrix", rows, cols)
	}
	m := make(Mat, rows)
	for r := range m {
		m[r] = make([]float32, cols)
	}
	return m, nil
}

// Size returns rows and columns.
func (m *Mat) Size() (int, int) {
	if len(*m) == 0 {
		return 0, 0
	}
	return len(*m), len((*m)[0])
}

func (m *Mat) Mult(b *Mat) (Mat, error) {
	rows, inner := m.Size()
	bRows, cols := b.Size()
	if inner != bRows {
		return nil, errors.Errorf("cannot multiply %dx%d with %dx%d matrix", rows, inner, bRows, cols)
	}
	prod, err := NewMat(uint(rows), uint(cols))
	if err != nil {
		return nil, err
	}
	for r, row := range *m {
		for k, a := range row {
			for c, x := range (*b)[k] {
				prod[r][c] += a * x
			}
		}
	}
	return prod, nil
}

// MustMult is Mult for operands whose sizes are known to match, e.g. two 4x4 transforms.
func (m *Mat) MustMult(b *Mat) Mat {
	prod, err := m.Mult(b)
	if err != nil {
		panic(err)
	}
	return prod
}
