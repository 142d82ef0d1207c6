package bandit_test

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/sw965/kea/bandit"
	"github.com/sw965/kea/etc"
	"github.com/sw965/kea/reward"
	"github.com/sw965/kea/theory"
	"github.com/sw965/omw/mathx/randx"
)

func newETCEngine(t *testing.T, env *bandit.Environment, m int) bandit.Engine {
	t.Helper()
	return bandit.Engine{
		Env: env,
		PolicyFunc: func() (bandit.Policy, error) {
			return etc.New(env.ArmNum(), m)
		},
	}
}

// 報酬が決定的な環境（ベルヌーイのmu=1とmu=0）では、累積報酬は厳密に計算出来る。
// m=1のETCは、t=1で1、t=2で0を観測してアーム0にコミットする為、累積報酬はn-1になる。
func TestRunTrialDeterministic(t *testing.T) {
	rng := randx.NewPCG()
	env := newTwoArmedBernoulli(t, 1.0, 0.0)
	engine := newETCEngine(t, env, 1)

	policy, err := engine.PolicyFunc()
	if err != nil {
		t.Fatalf("予期せぬエラーが発生した: %v", err)
	}

	n := 20
	for trial := 0; trial < 3; trial++ {
		// RunTrialは最初にResetする為、同じpolicyを汚れたまま渡しても結果は変わらない
		cumulative, err := engine.RunTrial(policy, n, rng)
		if err != nil {
			t.Fatalf("予期せぬエラーが発生した: %v", err)
		}
		if want := float64(n - 1); cumulative != want {
			t.Errorf("trial=%d: cumulative = %v, want %v", trial, cumulative, want)
		}
	}
}

func TestRunTrialInvalidHorizon(t *testing.T) {
	rng := randx.NewPCG()
	env := newTwoArmedBernoulli(t, 1.0, 0.0)
	engine := newETCEngine(t, env, 1)

	policy, err := engine.PolicyFunc()
	if err != nil {
		t.Fatalf("予期せぬエラーが発生した: %v", err)
	}

	if _, err := engine.RunTrial(policy, 0, rng); !errors.Is(err, bandit.ErrInvalidHorizon) {
		t.Errorf("err = %v, want %v", err, bandit.ErrInvalidHorizon)
	}
}

func TestEngineValidate(t *testing.T) {
	env := newTwoArmedBernoulli(t, 1.0, 0.0)

	tests := []struct {
		name    string
		engine  bandit.Engine
		wantErr error
	}{
		{
			name:    "異常_Envがnil",
			engine:  bandit.Engine{PolicyFunc: func() (bandit.Policy, error) { return etc.New(2, 1) }},
			wantErr: bandit.ErrNilEngineField,
		},
		{
			name:    "異常_PolicyFuncがnil",
			engine:  bandit.Engine{Env: env},
			wantErr: bandit.ErrNilEngineField,
		},
		{
			name:    "異常_空の環境",
			engine:  bandit.Engine{Env: bandit.NewEnvironment(), PolicyFunc: func() (bandit.Policy, error) { return etc.New(2, 1) }},
			wantErr: bandit.ErrEmptyEnvironment,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.engine.Validate(); !errors.Is(err, tc.wantErr) {
				t.Errorf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

// 決定的な環境では、全試行のリグレットが同一になり、平均は厳密値・標準偏差は0になる。
func TestEstimateRegretDeterministic(t *testing.T) {
	env := newTwoArmedBernoulli(t, 1.0, 0.0)
	engine := newETCEngine(t, env, 1)

	n := 20
	r := 8
	rngs, err := randx.NewPCGs(2)
	if err != nil {
		t.Fatalf("予期せぬエラーが発生した: %v", err)
	}

	summary, err := engine.EstimateRegret(n, r, rngs)
	if err != nil {
		t.Fatalf("予期せぬエラーが発生した: %v", err)
	}

	// 各試行のリグレット = n*1.0 - (n-1) = 1
	if summary.Mean != 1.0 {
		t.Errorf("Mean = %v, want 1", summary.Mean)
	}
	if summary.StdDev != 0.0 {
		t.Errorf("StdDev = %v, want 0", summary.StdDev)
	}
	if summary.TrialNum != r {
		t.Errorf("TrialNum = %d, want %d", summary.TrialNum, r)
	}
}

func TestEstimateRegretArgumentErrors(t *testing.T) {
	env := newTwoArmedBernoulli(t, 1.0, 0.0)
	engine := newETCEngine(t, env, 1)
	rngs, err := randx.NewPCGs(1)
	if err != nil {
		t.Fatalf("予期せぬエラーが発生した: %v", err)
	}

	if _, err := engine.EstimateRegret(10, 0, rngs); !errors.Is(err, bandit.ErrInvalidTrialNum) {
		t.Errorf("err = %v, want %v", err, bandit.ErrInvalidTrialNum)
	}

	if _, err := engine.EstimateRegret(10, 1, []*rand.Rand{}); !errors.Is(err, bandit.ErrEmptyRngs) {
		t.Errorf("err = %v, want %v", err, bandit.ErrEmptyRngs)
	}
}

// r=1の場合、標本標準偏差は定義出来ずNaNになるが、エラーにはならない。
func TestEstimateRegretSingleTrial(t *testing.T) {
	env := newTwoArmedBernoulli(t, 1.0, 0.0)
	engine := newETCEngine(t, env, 1)
	rngs, err := randx.NewPCGs(1)
	if err != nil {
		t.Fatalf("予期せぬエラーが発生した: %v", err)
	}

	summary, err := engine.EstimateRegret(20, 1, rngs)
	if err != nil {
		t.Fatalf("予期せぬエラーが発生した: %v", err)
	}
	if summary.Mean != 1.0 {
		t.Errorf("Mean = %v, want 1", summary.Mean)
	}
	if !math.IsNaN(summary.StdDev) {
		t.Errorf("StdDev = %v, want NaN", summary.StdDev)
	}
}

func TestEstimateRegretContextCanceled(t *testing.T) {
	env := newTwoArmedBernoulli(t, 1.0, 0.0)
	engine := newETCEngine(t, env, 1)
	rngs, err := randx.NewPCGs(1)
	if err != nil {
		t.Fatalf("予期せぬエラーが発生した: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := engine.EstimateRegretContext(ctx, 20, 100, rngs); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want %v", err, context.Canceled)
	}
}

// 2本腕ガウス環境で、理論最適な探索回数mを用いたETCの経験的リグレットが
// 閉形式の上界を超えない事を確認する（統計的性質）。
func TestEstimateRegretBoundedByTheory(t *testing.T) {
	if testing.Short() {
		t.Skip("統計的テストの為、shortモードではスキップする")
	}

	n := 200
	delta := 0.5
	m := theory.OptimalM(n, delta)
	bound := theory.ETCBound(n, delta)

	best, err := reward.NewGaussian(0.0, 1.0)
	if err != nil {
		t.Fatalf("予期せぬエラーが発生した: %v", err)
	}
	worst, err := reward.NewGaussian(-delta, 1.0)
	if err != nil {
		t.Fatalf("予期せぬエラーが発生した: %v", err)
	}

	env := bandit.NewEnvironment(best, worst)
	engine := newETCEngine(t, env, m)

	r := 10000
	rngs, err := randx.NewPCGs(4)
	if err != nil {
		t.Fatalf("予期せぬエラーが発生した: %v", err)
	}

	summary, err := engine.EstimateRegret(n, r, rngs)
	if err != nil {
		t.Fatalf("予期せぬエラーが発生した: %v", err)
	}

	if summary.Mean > bound {
		t.Errorf("経験的平均リグレット = %v, 理論上界 = %v (n=%d delta=%v m=%d)", summary.Mean, bound, n, delta, m)
	}

	// 探索だけでもmのリグレットは発生するので、平均が非現実的に小さい場合も検出する
	if summary.Mean < float64(m)*delta*0.5 {
		t.Errorf("経験的平均リグレット = %v が小さすぎる (m=%d delta=%v)", summary.Mean, m, delta)
	}
}

// ワーカー1つでpolicyを使い回しても（Resetによる独立性）、並列実行と同じ期待値が得られる。
func TestEstimateRegretResetIndependence(t *testing.T) {
	if testing.Short() {
		t.Skip("統計的テストの為、shortモードではスキップする")
	}

	env := newTwoArmedBernoulli(t, 0.9, 0.1)
	n := 60
	m := 30 // m*armNum >= n で探索のみになる

	engine := newETCEngine(t, env, m)

	r := 4000
	sequential, err := randx.NewPCGs(1)
	if err != nil {
		t.Fatalf("予期せぬエラーが発生した: %v", err)
	}
	parallelRngs, err := randx.NewPCGs(4)
	if err != nil {
		t.Fatalf("予期せぬエラーが発生した: %v", err)
	}

	seqSummary, err := engine.EstimateRegret(n, r, sequential)
	if err != nil {
		t.Fatalf("予期せぬエラーが発生した: %v", err)
	}
	parSummary, err := engine.EstimateRegret(n, r, parallelRngs)
	if err != nil {
		t.Fatalf("予期せぬエラーが発生した: %v", err)
	}

	// 探索のみの期待リグレット = (n/2) * (0.9 - 0.1) = 24
	want := float64(n) / 2.0 * 0.8
	for _, summary := range []bandit.RegretSummary{seqSummary, parSummary} {
		// 1試行のリグレットの標準偏差は高々sqrt(n)/2程度なので、平均の誤差は十分小さい
		tolerance := 5.0 * math.Sqrt(float64(n)) / 2.0 / math.Sqrt(float64(r))
		if math.Abs(summary.Mean-want) > tolerance {
			t.Errorf("Mean = %v, want %v (許容誤差 %v)", summary.Mean, want, tolerance)
		}
	}
}
