// Package metrics provides the scores used to judge fitted models:
// label accuracy for classifiers and relative-error accuracy for parameter
// estimates.
package metrics

import (
	"github.com/YuminosukeSato/pgmkit/pkg/errors"
)

// Accuracy は予測ラベルと正解ラベルの一致率を計算する
func Accuracy[T comparable](yTrue, yPred []T) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.NewEmptyDataError("Accuracy", "yTrue")
	}
	if len(yPred) != n {
		return 0, errors.NewInvalidConfigurationError("Accuracy", "yPred", "length must match yTrue", len(yPred))
	}

	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}
