// Package ucb provides the UCB1 bandit policy.
//
// Package ucb はUCB1方策を提供します。
package ucb

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
)

var (
	ErrInvalidArmNum      = errors.New("armNumエラー: 1以上である必要があります")
	ErrInvalidC           = errors.New("cエラー: 正の有限な実数である必要があります")
	ErrInvalidRound       = errors.New("ラウンドエラー: 1以上である必要があります")
	ErrArmIndexOutOfRange = errors.New("アームインデックスエラー: 範囲外です")
)

type UCB1 struct {
	armNum        int
	c             float64
	pullCounts    []int
	meanEstimates []float64
	totalPulls    int
}

func NewUCB1(armNum int, c float64) (*UCB1, error) {
	if armNum < 1 {
		return nil, fmt.Errorf("%w: armNum=%d", ErrInvalidArmNum, armNum)
	}
	if c <= 0.0 || math.IsNaN(c) || math.IsInf(c, 0) {
		return nil, fmt.Errorf("%w: c=%v", ErrInvalidC, c)
	}
	return &UCB1{
		armNum:        armNum,
		c:             c,
		pullCounts:    make([]int, armNum),
		meanEstimates: make([]float64, armNum),
	}, nil
}

// Decide plays every arm once first (lowest index first), then the arm with
// the highest upper confidence bound, ties resolving to the lowest index.
// UCB1は観測に対して決定的なので、rngは使用しない。
func (p *UCB1) Decide(t int, _ *rand.Rand) (int, error) {
	if t < 1 {
		return 0, fmt.Errorf("%w: t=%d", ErrInvalidRound, t)
	}

	for i, n := range p.pullCounts {
		if n == 0 {
			return i, nil
		}
	}

	best := 0
	bestScore := p.score(0)
	for i := 1; i < p.armNum; i++ {
		if s := p.score(i); s > bestScore {
			best = i
			bestScore = s
		}
	}
	return best, nil
}

func (p *UCB1) score(i int) float64 {
	exploration := p.c * math.Sqrt(2.0*math.Log(float64(p.totalPulls))/float64(p.pullCounts[i]))
	return p.meanEstimates[i] + exploration
}

func (p *UCB1) Observe(arm int, reward float64) error {
	if arm < 0 || arm >= p.armNum {
		return fmt.Errorf("%w: arm=%d armNum=%d", ErrArmIndexOutOfRange, arm, p.armNum)
	}
	p.pullCounts[arm] += 1
	p.totalPulls += 1
	p.meanEstimates[arm] += (reward - p.meanEstimates[arm]) / float64(p.pullCounts[arm])
	return nil
}

func (p *UCB1) Reset() {
	clear(p.pullCounts)
	clear(p.meanEstimates)
	p.totalPulls = 0
}

func (p *UCB1) PullCounts() []int {
	return slices.Clone(p.pullCounts)
}

func (p *UCB1) MeanEstimates() []float64 {
	return slices.Clone(p.meanEstimates)
}
