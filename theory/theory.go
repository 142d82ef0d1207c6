// Package theory provides closed-form expected-regret bounds for the
// two-armed Explore-Then-Commit policy, for comparison against Monte-Carlo
// estimates.
//
// Package theory は2本腕Explore-Then-Commitの期待リグレットの閉形式上界を提供します。
// モンテカルロ推定との比較に用います。
package theory

import (
	"math"
)

// OptimalM returns the suggested per-arm exploration count for two-armed ETC
// with suboptimality gap delta over horizon n:
//
//	max(1, ceil((4/delta^2) * log10(n*delta^2/4)))
//
// 対数の引数が1以下（delta=0を含む）の場合は1を返す。
func OptimalM(n int, delta float64) int {
	arg := float64(n) * delta * delta / 4.0
	// NaNもここで弾かれる
	if !(arg > 1.0) {
		return 1
	}
	m := int(math.Ceil(4.0 / (delta * delta) * math.Log10(arg)))
	if m < 1 {
		return 1
	}
	return m
}

// ETCBoundWithM returns the expected-regret upper bound for two-armed ETC
// that explores each arm m times:
//
//	m*delta + n*delta*exp(-m*delta^2/4)
func ETCBoundWithM(n int, delta float64, m int) float64 {
	fm := float64(m)
	return fm*delta + float64(n)*delta*math.Exp(-fm*delta*delta/4.0)
}

// ETCBound returns the bound at the exploration count OptimalM selects,
// collapsed to its closed form:
//
//	delta + (4/delta) * (1 + max(0, log10(n*delta^2/4)))
//
// delta=0 の場合は+Infを返す（パニックはしない）。
func ETCBound(n int, delta float64) float64 {
	arg := float64(n) * delta * delta / 4.0
	logTerm := 0.0
	if arg > 1.0 {
		logTerm = math.Log10(arg)
	}
	return delta + 4.0/delta*(1.0+logTerm)
}
