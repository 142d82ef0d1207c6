// Package bandit provides the multi-armed bandit environment, the per-round
// policy contract, and the Monte-Carlo engine that estimates a policy's
// expected regret. Input validation is centralized in Engine.Validate and
// the per-call argument checks.
//
// Package bandit は多腕バンディットの環境・方策コントラクト・
// 期待リグレットをモンテカルロ推定するエンジンを提供します。
// 入力バリデーションは Engine.Validate と各呼び出しの引数チェックに集約されています。
package bandit

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/sw965/kea/reward"
)

var (
	ErrEmptyEnvironment   = errors.New("Environmentエラー: アームが存在しません")
	ErrArmIndexOutOfRange = errors.New("アームインデックスエラー: 範囲外です")

	ErrNilEngineField  = errors.New("Engineエラー: フィールドがnilです")
	ErrInvalidHorizon  = errors.New("ホライゾンエラー: 1以上である必要があります")
	ErrInvalidTrialNum = errors.New("試行回数エラー: 1以上である必要があります")
	ErrEmptyRngs       = errors.New("乱数生成器エラー: 少なくとも1つ必要です")
)

// Environment is an ordered, index-addressable collection of arms.
// Arms are composed before simulation starts and must not be mutated while
// a trial is running.
type Environment struct {
	arms []reward.Arm
}

func NewEnvironment(arms ...reward.Arm) *Environment {
	return &Environment{arms: slices.Clone(arms)}
}

// AddArm appends an arm. Only valid before trials begin drawing.
func (e *Environment) AddArm(arm reward.Arm) {
	e.arms = append(e.arms, arm)
}

func (e *Environment) ArmNum() int {
	return len(e.arms)
}

func (e *Environment) Draw(i int, rng *rand.Rand) (float64, error) {
	if i < 0 || i >= len(e.arms) {
		return 0.0, fmt.Errorf("%w: i=%d armNum=%d", ErrArmIndexOutOfRange, i, len(e.arms))
	}
	return e.arms[i].Draw(rng), nil
}

// OptimalMean is the best true mean over all arms. It feeds the oracle side
// of the regret computation only; policies never see it.
func (e *Environment) OptimalMean() (float64, error) {
	if len(e.arms) == 0 {
		return 0.0, ErrEmptyEnvironment
	}
	best := e.arms[0].Mean()
	for _, arm := range e.arms[1:] {
		if m := arm.Mean(); m > best {
			best = m
		}
	}
	return best, nil
}

// Policy decides one arm per round and learns from the observed reward.
// Decide receives the 1-based round index t; policies that do not branch on
// the round (or on randomness) simply ignore the corresponding argument.
// Reset must restore the initial run-state so one Policy value can be reused
// across independent trials.
type Policy interface {
	Decide(t int, rng *rand.Rand) (int, error)
	Observe(arm int, reward float64) error
	Reset()
}

// PolicyFunc constructs a fresh Policy. The engine calls it once per worker.
type PolicyFunc func() (Policy, error)
