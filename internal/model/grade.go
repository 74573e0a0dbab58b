package model

import (
	"math"
	"math/big"
	"strconv"
)

// PassMark is the lowest mark counted as a pass.
const PassMark = 40.0

// GradeNone is reported when a student has no results yet.
const GradeNone = "N/A"

type gradeBand struct {
	min   float64
	grade string
}

var gradeBands = []gradeBand{
	{90, "A+"},
	{80, "A"},
	{70, "B+"},
	{60, "B"},
	{50, "C+"},
	{40, "C"},
	{33, "D"},
}

// GradeOrder lists every grade from best to worst.
var GradeOrder = []string{"A+", "A", "B+", "B", "C+", "C", "D", "F"}

// GradeFor returns the letter grade for marks out of 100.
func GradeFor(marks float64) string {
	for _, b := range gradeBands {
		if marks >= b.min {
			return b.grade
		}
	}
	return "F"
}

// Passed reports whether marks meet the pass mark.
func Passed(marks float64) bool {
	return marks >= PassMark
}

// GPA converts an average mark to the 4-point scale.
func GPA(averageMarks float64) float64 {
	return Round2(averageMarks * 4 / 100)
}

// Round2 rounds half away from zero to two decimal places, the way a
// NUMERIC(5,2) column rounds the shortest decimal form of v. 89.995 becomes
// 90 even though its binary value sits just below.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(v, 'f', -1, 64))
	if !ok {
		return math.Round(v*100) / 100
	}
	scaled, _ := r.Mul(r, big.NewRat(100, 1)).Float64()
	return math.Round(scaled) / 100
}
