package evaluation

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// stddev is the population standard deviation.
func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	_, std := stat.PopMeanStdDev(xs, nil)
	return std
}

// slope fits y = a·x + b over x = 0..n-1 by least squares and returns a.
func slope(ys []float64) float64 {
	if len(ys) < 2 {
		return 0
	}
	xs := make([]float64, len(ys))
	for i := range xs {
		xs[i] = float64(i)
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return beta
}

// correlation is the Pearson coefficient of two equal-length series.
// It is NaN when either series is constant.
func correlation(xs, ys []float64) float64 {
	if len(xs) != len(ys) || len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

func last(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}

func first(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	return xs[:n]
}

// every keeps xs[0], xs[step], xs[2·step], ...
func every(xs []float64, step int) []float64 {
	out := make([]float64, 0, (len(xs)+step-1)/step)
	for i := 0; i < len(xs); i += step {
		out = append(out, xs[i])
	}
	return out
}
