package bandit

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/sw965/omw/parallel"
	"gonum.org/v1/gonum/stat"
)

type Engine struct {
	Env        *Environment
	PolicyFunc PolicyFunc
}

func (e Engine) Validate() error {
	if e.Env == nil {
		return fmt.Errorf("%w: Env", ErrNilEngineField)
	}
	if e.Env.ArmNum() == 0 {
		return ErrEmptyEnvironment
	}
	if e.PolicyFunc == nil {
		return fmt.Errorf("%w: PolicyFunc", ErrNilEngineField)
	}
	return nil
}

// RunTrial runs one trial of n rounds and returns the cumulative realized
// reward. The policy's run-state is reset first, so a dirty policy is safe
// to pass in. Each round is decide, draw, observe, accumulate.
func (e Engine) RunTrial(policy Policy, n int, rng *rand.Rand) (float64, error) {
	if n < 1 {
		return 0.0, fmt.Errorf("%w: n=%d", ErrInvalidHorizon, n)
	}

	policy.Reset()
	cumulative := 0.0

	for t := 1; t <= n; t++ {
		arm, err := policy.Decide(t, rng)
		if err != nil {
			return 0.0, err
		}

		r, err := e.Env.Draw(arm, rng)
		if err != nil {
			return 0.0, err
		}

		if err := policy.Observe(arm, r); err != nil {
			return 0.0, err
		}
		cumulative += r
	}
	return cumulative, nil
}

// RegretSummary is the sample mean and sample standard deviation of the
// per-trial regret over TrialNum independent trials.
// TrialNum == 1 の場合、StdDevはNaNになる（標本標準偏差が定義出来ない為）。
type RegretSummary struct {
	Mean     float64
	StdDev   float64
	TrialNum int
}

// EstimateRegret runs r independent trials of n rounds and returns the
// per-trial regret sample mean and standard deviation. The trials are
// distributed over len(rngs) workers; each worker owns one generator and one
// policy, and RunTrial's reset keeps the trials statistically independent.
// len(rngs) == 1 で逐次かつ再現可能な実行になる。
func (e Engine) EstimateRegret(n, r int, rngs []*rand.Rand) (RegretSummary, error) {
	return e.estimateRegret(context.Background(), n, r, rngs)
}

// EstimateRegretContext is EstimateRegret with cancellation between trials,
// for long sweeps over many gap values.
func (e Engine) EstimateRegretContext(ctx context.Context, n, r int, rngs []*rand.Rand) (RegretSummary, error) {
	return e.estimateRegret(ctx, n, r, rngs)
}

func (e Engine) estimateRegret(ctx context.Context, n, r int, rngs []*rand.Rand) (RegretSummary, error) {
	if err := e.Validate(); err != nil {
		return RegretSummary{}, err
	}

	if r < 1 {
		return RegretSummary{}, fmt.Errorf("%w: r=%d", ErrInvalidTrialNum, r)
	}

	p := len(rngs)
	if p == 0 {
		return RegretSummary{}, ErrEmptyRngs
	}

	optimal, err := e.Env.OptimalMean()
	if err != nil {
		return RegretSummary{}, err
	}

	policies := make([]Policy, p)
	for i := range policies {
		policy, err := e.PolicyFunc()
		if err != nil {
			return RegretSummary{}, err
		}
		policies[i] = policy
	}

	oracle := float64(n) * optimal
	regrets := make([]float64, r)

	err = parallel.For(r, p, func(workerId, idx int) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		cumulative, err := e.RunTrial(policies[workerId], n, rngs[workerId])
		if err != nil {
			return err
		}
		regrets[idx] = oracle - cumulative
		return nil
	})
	if err != nil {
		return RegretSummary{}, err
	}

	// 集計は全試行の完了後にのみ行う
	return RegretSummary{
		Mean:     stat.Mean(regrets, nil),
		StdDev:   stat.StdDev(regrets, nil),
		TrialNum: r,
	}, nil
}
