// Package egreedy provides the epsilon-greedy bandit policy.
//
// Package egreedy はε-greedy方策を提供します。
package egreedy

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
)

var (
	ErrInvalidArmNum      = errors.New("armNumエラー: 1以上である必要があります")
	ErrInvalidEpsilon     = errors.New("epsilonエラー: 0.0 <= epsilon <= 1.0 である必要があります")
	ErrInvalidRound       = errors.New("ラウンドエラー: 1以上である必要があります")
	ErrArmIndexOutOfRange = errors.New("アームインデックスエラー: 範囲外です")
)

type Policy struct {
	armNum        int
	epsilon       float64
	pullCounts    []int
	meanEstimates []float64
}

func New(armNum int, epsilon float64) (*Policy, error) {
	if armNum < 1 {
		return nil, fmt.Errorf("%w: armNum=%d", ErrInvalidArmNum, armNum)
	}
	if epsilon < 0.0 || epsilon > 1.0 || math.IsNaN(epsilon) {
		return nil, fmt.Errorf("%w: epsilon=%v", ErrInvalidEpsilon, epsilon)
	}
	return &Policy{
		armNum:        armNum,
		epsilon:       epsilon,
		pullCounts:    make([]int, armNum),
		meanEstimates: make([]float64, armNum),
	}, nil
}

// Decide explores a uniformly random arm with probability epsilon, otherwise
// exploits the arm with the highest mean estimate, ties resolving to the
// lowest index.
func (p *Policy) Decide(t int, rng *rand.Rand) (int, error) {
	if t < 1 {
		return 0, fmt.Errorf("%w: t=%d", ErrInvalidRound, t)
	}

	if rng.Float64() < p.epsilon {
		return rng.IntN(p.armNum), nil
	}

	best := 0
	for i := 1; i < p.armNum; i++ {
		if p.meanEstimates[i] > p.meanEstimates[best] {
			best = i
		}
	}
	return best, nil
}

func (p *Policy) Observe(arm int, reward float64) error {
	if arm < 0 || arm >= p.armNum {
		return fmt.Errorf("%w: arm=%d armNum=%d", ErrArmIndexOutOfRange, arm, p.armNum)
	}
	p.pullCounts[arm] += 1
	p.meanEstimates[arm] += (reward - p.meanEstimates[arm]) / float64(p.pullCounts[arm])
	return nil
}

func (p *Policy) Reset() {
	clear(p.pullCounts)
	clear(p.meanEstimates)
}

func (p *Policy) PullCounts() []int {
	return slices.Clone(p.pullCounts)
}

func (p *Policy) MeanEstimates() []float64 {
	return slices.Clone(p.meanEstimates)
}
