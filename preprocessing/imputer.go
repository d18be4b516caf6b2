// Package preprocessing はカテゴリカルなレコードの前処理を提供します。
package preprocessing

import (
	"fmt"
	"sort"

	"github.com/YuminosukeSato/pgmkit/core/model"
	"github.com/YuminosukeSato/pgmkit/pkg/errors"
)

// PluralityImputer は欠損した特徴量を学習データの最頻値で補完する
// 同数の場合は先に出現した値を採用する
type PluralityImputer struct {
	state *model.StateManager

	// Features は補完対象の特徴量。nilの場合はFit時に観測した全特徴量
	Features []string

	// Fill は特徴量ごとの補完値
	Fill map[string]string
}

// NewPluralityImputer は新しいPluralityImputerを作成する
//
// パラメータ:
//   - features: 補完対象の特徴量 (nil: 学習データに現れる全特徴量)
//
// 使用例:
//
//	imp := preprocessing.NewPluralityImputer(nil)
//	err := imp.Fit(records)
//	filled, err := imp.Transform(query)
func NewPluralityImputer(features []string) *PluralityImputer {
	return &PluralityImputer{
		state:    model.NewStateManager(),
		Features: features,
	}
}

// Fit は訓練レコードから特徴量ごとの最頻値を計算する
//
// パラメータ:
//   - records: 訓練レコード
//
// 戻り値:
//   - error: レコードが空、または対象特徴量がどのレコードにも無い場合
func (p *PluralityImputer) Fit(records []map[string]string) error {
	const op = "PluralityImputer.Fit"
	if len(records) == 0 {
		return errors.NewEmptyDataError(op, "records")
	}

	features := p.Features
	if features == nil {
		features = observedFeatures(records)
	}

	fill := make(map[string]string, len(features))
	for _, f := range features {
		v, ok := plurality(records, f)
		if !ok {
			return errors.NewInvalidConfigurationError(op, "features", "feature never observed in training data", f)
		}
		fill[f] = v
	}

	p.Features = features
	p.Fill = fill
	p.state.SetFitted(len(features), len(records))
	return nil
}

// Transform は欠損した特徴量を補完したレコードのコピーを返す
// 入力レコードは変更しない
func (p *PluralityImputer) Transform(record map[string]string) (map[string]string, error) {
	if err := p.state.RequireFitted("PluralityImputer", "Transform"); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(record)+len(p.Fill))
	for k, v := range record {
		out[k] = v
	}
	for _, f := range p.Features {
		if _, ok := out[f]; !ok {
			out[f] = p.Fill[f]
		}
	}
	return out, nil
}

// FitTransform は訓練データで学習し、同じデータを変換する
func (p *PluralityImputer) FitTransform(records []map[string]string) ([]map[string]string, error) {
	if err := p.Fit(records); err != nil {
		return nil, err
	}
	out := make([]map[string]string, len(records))
	for i, r := range records {
		filled, err := p.Transform(r)
		if err != nil {
			return nil, err
		}
		out[i] = filled
	}
	return out, nil
}

// IsFitted は学習済みかどうかを返す
func (p *PluralityImputer) IsFitted() bool {
	return p.state.IsFitted()
}

// String は補完器の文字列表現を返す
func (p *PluralityImputer) String() string {
	if !p.state.IsFitted() {
		return "PluralityImputer()"
	}
	return fmt.Sprintf("PluralityImputer(n_features=%d)", len(p.Features))
}

// observedFeatures は全レコードに現れる特徴量名をソートして返す
func observedFeatures(records []map[string]string) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for k := range r {
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func plurality(records []map[string]string, feature string) (string, bool) {
	var order []string
	counts := make(map[string]int)
	for _, r := range records {
		v, ok := r[feature]
		if !ok {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	if len(order) == 0 {
		return "", false
	}
	best := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best, true
}
