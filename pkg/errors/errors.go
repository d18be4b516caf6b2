// Package errors はpgmkit全体のエラーハンドリングと警告システムを提供します。
// 全ての公開操作は入力を境界で検証し、ここで定義された型付きエラーを返します。
package errors

import (
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex sync.Mutex
	// デフォルトでは警告を破棄する。pkg/log が読み込まれるとDebugレベルのログに置き換わる
	warningHandler func(w error)
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定します。
//
// 例:
//
//	errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
// nilを渡すと従来のハンドラに戻ります。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが利用可能な場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// UnderflowWarning は線形空間での確率計算がアンダーフローした場合の警告です。
// 前向き確率表が全てゼロになった場合や、尤度の積が0になった場合に発生します。
type UnderflowWarning struct {
	Op       string
	Quantity string
	Step     int
}

func (w *UnderflowWarning) Error() string {
	return fmt.Sprintf("%s: %s underflowed to zero at step %d; use the log-space quantity instead", w.Op, w.Quantity, w.Step)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *UnderflowWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("operation", w.Op).
		Str("quantity", w.Quantity).
		Int("step", w.Step).
		Str("type", "UnderflowWarning")
}

// NewUnderflowWarning は新しいUnderflowWarningを作成します。
func NewUnderflowWarning(op, quantity string, step int) *UnderflowWarning {
	return &UnderflowWarning{Op: op, Quantity: quantity, Step: step}
}

// ===========================================================================
//
//	センチネル
//
// ===========================================================================

var (
	// ErrInvalidModel はHMMの確率行・次元が不正な場合に付与されます。
	ErrInvalidModel = New("invalid model")

	// ErrInvalidObservation は観測記号がモデルの語彙に存在しない場合に付与されます。
	ErrInvalidObservation = New("invalid observation")

	// ErrInvalidConfiguration は設定値やデータサイズが不正な場合に付与されます。
	ErrInvalidConfiguration = New("invalid configuration")

	// ErrMissingFeature は予測クエリに必要な特徴量が欠けている場合に付与されます。
	ErrMissingFeature = New("missing feature")

	// ErrDomainViolation は推定値がパラメータの有効域を外れる場合に付与されます。
	ErrDomainViolation = New("domain violation")

	// ErrEmptyData は空のデータセット・標本・観測系列が渡された場合に
	// ErrInvalidConfiguration と併せて付与されます。
	ErrEmptyData = New("empty data")
)

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で `Predict` や `Transform` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("pgmkit: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// InvalidModelError はHMMモデルの定義が不正な場合のエラーです。
type InvalidModelError struct {
	Op     string
	Field  string
	Reason string
}

func (e *InvalidModelError) Error() string {
	return fmt.Sprintf("pgmkit: %s: invalid model: %s: %s", e.Op, e.Field, e.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InvalidModelError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("field", e.Field).
		Str("reason", e.Reason).
		Str("type", "InvalidModelError")
}

// NewInvalidModelError は新しいInvalidModelErrorを作成し、スタックトレースを付与します。
func NewInvalidModelError(op, field, reason string) error {
	err := &InvalidModelError{Op: op, Field: field, Reason: reason}
	return errors.WithStack(errors.Mark(err, ErrInvalidModel))
}

// InvalidObservationError は観測系列に未知の記号が含まれる場合のエラーです。
type InvalidObservationError struct {
	Op       string
	Symbol   string
	Position int
}

func (e *InvalidObservationError) Error() string {
	return fmt.Sprintf("pgmkit: %s: observation %q at position %d is not in the model vocabulary", e.Op, e.Symbol, e.Position)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InvalidObservationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("symbol", e.Symbol).
		Int("position", e.Position).
		Str("type", "InvalidObservationError")
}

// NewInvalidObservationError は新しいInvalidObservationErrorを作成し、スタックトレースを付与します。
func NewInvalidObservationError(op, symbol string, position int) error {
	err := &InvalidObservationError{Op: op, Symbol: symbol, Position: position}
	return errors.WithStack(errors.Mark(err, ErrInvalidObservation))
}

// InvalidConfigurationError は入力パラメータの検証に失敗した場合のエラーです。
type InvalidConfigurationError struct {
	Op        string
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("pgmkit: %s: invalid configuration for '%s': %s (got: %v)", e.Op, e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *InvalidConfigurationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "InvalidConfigurationError")
}

// NewInvalidConfigurationError は新しいInvalidConfigurationErrorを作成し、スタックトレースを付与します。
func NewInvalidConfigurationError(op, param, reason string, value interface{}) error {
	err := &InvalidConfigurationError{Op: op, ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(errors.Mark(err, ErrInvalidConfiguration))
}

// NewEmptyDataError は空の入力に対するInvalidConfigurationErrorを作成します。
// ErrInvalidConfiguration と ErrEmptyData の両方に一致します。
func NewEmptyDataError(op, param string) error {
	err := &InvalidConfigurationError{Op: op, ParamName: param, Reason: "must not be empty", Value: 0}
	return errors.WithStack(errors.Mark(errors.Mark(err, ErrInvalidConfiguration), ErrEmptyData))
}

// MissingFeatureError は予測クエリに木が参照する特徴量が無い場合のエラーです。
type MissingFeatureError struct {
	Op      string
	Feature string
}

func (e *MissingFeatureError) Error() string {
	return fmt.Sprintf("pgmkit: %s: record is missing feature '%s'", e.Op, e.Feature)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *MissingFeatureError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("feature", e.Feature).
		Str("type", "MissingFeatureError")
}

// NewMissingFeatureError は新しいMissingFeatureErrorを作成し、スタックトレースを付与します。
func NewMissingFeatureError(op, feature string) error {
	err := &MissingFeatureError{Op: op, Feature: feature}
	return errors.WithStack(errors.Mark(err, ErrMissingFeature))
}

// DomainViolationError は推定値やサンプルが分布の有効域を外れる場合のエラーです。
type DomainViolationError struct {
	Op        string
	ParamName string
	Value     float64
	Domain    string
}

func (e *DomainViolationError) Error() string {
	return fmt.Sprintf("pgmkit: %s: %s = %g is outside its valid domain %s", e.Op, e.ParamName, e.Value, e.Domain)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DomainViolationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("param_name", e.ParamName).
		Float64("value", e.Value).
		Str("domain", e.Domain).
		Str("type", "DomainViolationError")
}

// NewDomainViolationError は新しいDomainViolationErrorを作成し、スタックトレースを付与します。
func NewDomainViolationError(op, param string, value float64, domain string) error {
	err := &DomainViolationError{Op: op, ParamName: param, Value: value, Domain: domain}
	return errors.WithStack(errors.Mark(err, ErrDomainViolation))
}

// NumericalInstabilityError は入力にNaNやInfが含まれる場合のエラーです。
type NumericalInstabilityError struct {
	Op     string
	Values []float64
	Index  int
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("pgmkit: %s: non-finite value at index %d. Values: [%s]", e.Op, e.Index, valStr)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NumericalInstabilityError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("index", e.Index).
		Floats64("values", e.Values).
		Str("type", "NumericalInstabilityError")
}

// NewNumericalInstabilityError は新しいNumericalInstabilityErrorを作成します。
func NewNumericalInstabilityError(op string, values []float64, index int) error {
	err := &NumericalInstabilityError{Op: op, Values: values, Index: index}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}
