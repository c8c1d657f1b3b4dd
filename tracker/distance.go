package tracker

import (
	"image"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// calcDistances builds the pairwise Euclidean distance matrix between the
// object centroids (rows) and the input centroids (columns)
func calcDistances(objects, inputs []image.Point) *mat.Dense {

	dist := mat.NewDense(len(objects), len(inputs), nil)

	a := make([]float64, 2)
	b := make([]float64, 2)

	for i, obj := range objects {
		a[0], a[1] = float64(obj.X), float64(obj.Y)

		for j, in := range inputs {
			b[0], b[1] = float64(in.X), float64(in.Y)
			dist.Set(i, j, floats.Distance(a, b, 2))
		}
	}

	return dist
}

// greedyAssignment matches rows to columns of the distance matrix by
// nearest neighbour.  Rows are visited in ascending order of their minimum
// distance, ties keeping the row order, and each row claims the
// first column holding its minimum unless that row or column was already
// consumed.  Returned matches are [row, col] pairs in commit order, and the
// unused rows and columns are in ascending order.
func greedyAssignment(dist *mat.Dense) (matchesIdx [][2]int, unusedRows, unusedCols []int) {

	nRows, nCols := dist.Dims()

	if nRows == 0 || nCols == 0 {
		for i := 0; i < nRows; i++ {
			unusedRows = append(unusedRows, i)
		}
		for i := 0; i < nCols; i++ {
			unusedCols = append(unusedCols, i)
		}
		return
	}

	rowMins := make([]float64, nRows)
	rowArgmins := make([]int, nRows)

	for i := 0; i < nRows; i++ {
		row := dist.RawRowView(i)
		rowArgmins[i] = floats.MinIdx(row)
		rowMins[i] = row[rowArgmins[i]]
	}

	// sort rows by their minimum distance so the closest matching objects
	// claim their inputs first
	order := make([]int, nRows)
	floats.ArgsortStable(rowMins, order)

	usedRows := make([]bool, nRows)
	usedCols := make([]bool, nCols)

	for _, row := range order {
		col := rowArgmins[row]

		if usedRows[row] || usedCols[col] {
			continue
		}

		matchesIdx = append(matchesIdx, [2]int{row, col})
		usedRows[row] = true
		usedCols[col] = true
	}

	for i, used := range usedRows {
		if !used {
			unusedRows = append(unusedRows, i)
		}
	}

	for i, used := range usedCols {
		if !used {
			unusedCols = append(unusedCols, i)
		}
	}

	return
}
