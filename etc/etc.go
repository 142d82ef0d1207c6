// Package etc provides the Explore-Then-Commit bandit policy: play every arm
// m times round-robin, then commit permanently to the empirically best arm.
//
// Package etc はExplore-Then-Commit方策を提供します。
// 各アームをm回ずつラウンドロビンで探索した後、経験的に最良のアームに固定します。
package etc

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
)

var (
	ErrInvalidArmNum      = errors.New("armNumエラー: 1以上である必要があります")
	ErrInvalidExploreNum  = errors.New("mエラー: 0以上である必要があります")
	ErrInvalidRound       = errors.New("ラウンドエラー: 1以上である必要があります")
	ErrArmIndexOutOfRange = errors.New("アームインデックスエラー: 範囲外です")
)

// Policy is the per-trial run-state of ETC. The committed arm is tracked
// with an explicit flag, never by the truthiness of the index value, so that
// committing to arm 0 does not re-trigger the argmax selection.
type Policy struct {
	armNum        int
	m             int
	pullCounts    []int
	meanEstimates []float64
	committed     bool
	committedArm  int
}

// New returns a fresh ETC policy over armNum arms with per-arm exploration
// count m. The intended operating range is 1 <= m <= n/armNum, but any
// m >= 0 is accepted; m = 0 skips exploration entirely (see Decide).
func New(armNum, m int) (*Policy, error) {
	if armNum < 1 {
		return nil, fmt.Errorf("%w: armNum=%d", ErrInvalidArmNum, armNum)
	}
	if m < 0 {
		return nil, fmt.Errorf("%w: m=%d", ErrInvalidExploreNum, m)
	}
	return &Policy{
		armNum:        armNum,
		m:             m,
		pullCounts:    make([]int, armNum),
		meanEstimates: make([]float64, armNum),
	}, nil
}

// Decide returns the arm for the 1-based round t. Rounds t <= m*armNum play
// the arms round-robin; the first round past that commits to the arm with
// the highest mean estimate, ties resolving to the lowest index. With m = 0
// there are no observations to compare and the commit deterministically
// falls back to arm 0. If m*armNum >= n for the caller's horizon, the commit
// is simply never reached, which is valid.
// ETCは観測に対して決定的なので、rngは使用しない。
func (p *Policy) Decide(t int, _ *rand.Rand) (int, error) {
	if t < 1 {
		return 0, fmt.Errorf("%w: t=%d", ErrInvalidRound, t)
	}

	if p.committed {
		return p.committedArm, nil
	}

	if t <= p.m*p.armNum {
		return (t - 1) % p.armNum, nil
	}

	p.commit()
	return p.committedArm, nil
}

func (p *Policy) commit() {
	best := 0
	for i := 1; i < p.armNum; i++ {
		if p.meanEstimates[i] > p.meanEstimates[best] {
			best = i
		}
	}
	p.committedArm = best
	p.committed = true
}

// Observe feeds back the reward for the arm played this round. During
// exploration the arm's mean estimate is updated with the single-pass
// incremental recurrence; after the commit the estimates are frozen, but the
// pull counts keep counting so that sum(pullCounts) equals the number of
// rounds elapsed for the whole trial.
func (p *Policy) Observe(arm int, reward float64) error {
	if arm < 0 || arm >= p.armNum {
		return fmt.Errorf("%w: arm=%d armNum=%d", ErrArmIndexOutOfRange, arm, p.armNum)
	}

	p.pullCounts[arm] += 1
	if p.committed {
		return nil
	}
	p.meanEstimates[arm] += (reward - p.meanEstimates[arm]) / float64(p.pullCounts[arm])
	return nil
}

// Reset restores the initial run-state so the same Policy value can drive
// independent trials without reallocation.
func (p *Policy) Reset() {
	clear(p.pullCounts)
	clear(p.meanEstimates)
	p.committed = false
	p.committedArm = 0
}

func (p *Policy) ArmNum() int {
	return p.armNum
}

func (p *Policy) ExploreNum() int {
	return p.m
}

func (p *Policy) PullCounts() []int {
	return slices.Clone(p.pullCounts)
}

func (p *Policy) MeanEstimates() []float64 {
	return slices.Clone(p.meanEstimates)
}

// CommittedArm returns the committed arm index and whether the commit has
// happened yet.
func (p *Policy) CommittedArm() (int, bool) {
	return p.committedArm, p.committed
}
