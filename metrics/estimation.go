package metrics

import (
	"math"

	"github.com/YuminosukeSato/pgmkit/pkg/errors"
)

// RelativeError は |estimate - truth| / |truth| を返す。
// truth が 0 の場合は相対誤差が定義できないため絶対誤差を返す。
func RelativeError(truth, estimate float64) float64 {
	diff := math.Abs(estimate - truth)
	if truth == 0 {
		return diff
	}
	return diff / math.Abs(truth)
}

// ParameterAccuracy はパラメータ推定の精度をパーセントで返す。
// 100 - 相対誤差*100 を 0 で下限クリップした値。
func ParameterAccuracy(truth, estimate float64) float64 {
	score := 100 - RelativeError(truth, estimate)*100
	return errors.ClipValue(score, 0, 100)
}
