package usage

import "errors"

// MinDays is the minimum number of distinct usage days before a
// prediction is attempted.
const MinDays = 7

// ErrInsufficientData is returned when too few days of usage exist to
// extrapolate a monthly total.
var ErrInsufficientData = errors.New("usage: insufficient data for prediction")

// Point is one observation for the curve fit: X is the day of month,
// Y the cumulative token count through that day.
type Point struct {
	X float64
	Y float64
}

// Fit is a fitted linear trend. R2 is the goodness of fit in [0, 1].
type Fit struct {
	Slope     float64
	Intercept float64
	R2        float64
}

// Estimator fits a trend line over daily usage totals.
type Estimator interface {
	Fit(points []Point) (Fit, error)
}

// LeastSquares is the default estimator: ordinary least-squares over
// the cumulative daily totals.
type LeastSquares struct{}

func (LeastSquares) Fit(points []Point) (Fit, error) {
	n := float64(len(points))
	if n < 2 {
		return Fit{}, ErrInsufficientData
	}

	var sumX, sumY, sumXY, sumXX float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
		sumXY += p.X * p.Y
		sumXX += p.X * p.X
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return Fit{}, ErrInsufficientData
	}
	slope := (n*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssRes, ssTot float64
	for _, p := range points {
		pred := slope*p.X + intercept
		ssRes += (p.Y - pred) * (p.Y - pred)
		ssTot += (p.Y - meanY) * (p.Y - meanY)
	}
	r2 := 1.0
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}
	if r2 < 0 {
		r2 = 0
	}

	return Fit{Slope: slope, Intercept: intercept, R2: r2}, nil
}
