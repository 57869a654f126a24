package calc

import (
	"fmt"
	"math"

	"github.com/gonum/matrix/mat64"
)

// Correlations within this distance of a perfect +1 or -1 are snapped to it
const snapTolerance = 1e-12

// getStat stores the row mean and the root of its centered sum of squares
func getStat(timeSeriesMat mat64.Matrix, stats []statistic, index int) {
	_, numCols := timeSeriesMat.Dims()

	var accVal float64
	for t := 0; t < numCols; t++ {
		accVal += timeSeriesMat.At(index, t)
	}
	avgVal := accVal / float64(numCols)

	var accSqrDev float64
	for t := 0; t < numCols; t++ {
		dev := timeSeriesMat.At(index, t) - avgVal
		accSqrDev += dev * dev
	}

	stats[index].avg = avgVal
	stats[index].norm = math.Sqrt(accSqrDev)
}

func correlationDistance(cloud mat64.Matrix, distMat *mat64.Dense, stats []statistic, from int) {
	inputRows, inputCols := cloud.Dims()

	distMat.Set(from, from, 0)
	for to := from + 1; to < inputRows; to++ {
		if stats[from].norm == 0 || stats[to].norm == 0 {
			distMat.Set(from, to, 1)
			distMat.Set(to, from, 1)
			continue
		}

		var accProd float64
		for t := 0; t < inputCols; t++ {
			accProd += (cloud.At(from, t) - stats[from].avg) * (cloud.At(to, t) - stats[to].avg)
		}

		pearson := accProd / (stats[from].norm * stats[to].norm)
		switch {
		case pearson >= 1-snapTolerance:
			pearson = 1
		case pearson <= -1+snapTolerance:
			pearson = -1
		}

		distMat.Set(from, to, 1-pearson)
		distMat.Set(to, from, 1-pearson)
	}
}

// CorrelationDistance fills outputMat with 1 - r, r being Pearson's
// correlation between rows of cloud. Rows with zero variance sit at distance
// 1 from every other row.
func (p *PipeLine) CorrelationDistance(cloud mat64.Matrix, outputMat *mat64.Dense) error {
	inputRows, inputCols := cloud.Dims()
	outputRows, outputCols := outputMat.Dims()

	if outputRows != inputRows || outputCols != inputRows {
		return fmt.Errorf("[CorrelationDistance] input is %d by %d but output is %d by %d", inputRows, inputCols, outputRows, outputCols)
	}

	stats := make([]statistic, inputRows)

	// Get statistics for each observation
	p.run(inputRows, func(index int) {
		getStat(cloud, stats, index)
	})

	p.run(inputRows, func(from int) {
		correlationDistance(cloud, outputMat, stats, from)
	})

	return nil
}
