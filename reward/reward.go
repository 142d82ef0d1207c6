// Package reward provides stochastic reward sources (arms) for bandit environments.
// Parameter validation is centralized in the constructors.
//
// Package reward はバンディット環境の為の確率的報酬源（アーム）を提供します。
// パラメータのバリデーションはコンストラクタに集約されています。
package reward

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

var (
	ErrInvalidMu    = errors.New("muエラー: 有限の実数である必要があります")
	ErrMuOutOfRange = errors.New("muエラー: 0.0 <= mu <= 1.0 である必要があります")
	ErrInvalidSigma = errors.New("sigmaエラー: 正の有限な実数である必要があります")
)

// Arm draws one independent scalar reward per call, using only the given
// generator. Implementations hold no draw history and no internal RNG.
// Mean returns the true mean of the distribution; it exists for the oracle
// regret computation and must never be consulted by a decision policy.
type Arm interface {
	Draw(rng *rand.Rand) float64
	Mean() float64
}

type Bernoulli struct {
	mu float64
}

func NewBernoulli(mu float64) (*Bernoulli, error) {
	if math.IsNaN(mu) {
		return nil, fmt.Errorf("%w: mu=%v", ErrInvalidMu, mu)
	}
	if mu < 0.0 || mu > 1.0 {
		return nil, fmt.Errorf("%w: mu=%.6g", ErrMuOutOfRange, mu)
	}
	return &Bernoulli{mu: mu}, nil
}

// Draw returns 1 with probability mu, otherwise 0.
func (b *Bernoulli) Draw(rng *rand.Rand) float64 {
	return distuv.Bernoulli{P: b.mu, Src: rng}.Rand()
}

func (b *Bernoulli) Mean() float64 {
	return b.mu
}

type Gaussian struct {
	mu    float64
	sigma float64
}

func NewGaussian(mu, sigma float64) (*Gaussian, error) {
	if math.IsNaN(mu) || math.IsInf(mu, 0) {
		return nil, fmt.Errorf("%w: mu=%v", ErrInvalidMu, mu)
	}
	if sigma <= 0.0 || math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return nil, fmt.Errorf("%w: sigma=%v", ErrInvalidSigma, sigma)
	}
	return &Gaussian{mu: mu, sigma: sigma}, nil
}

// Draw returns one sample from Normal(mu, sigma).
func (g *Gaussian) Draw(rng *rand.Rand) float64 {
	return distuv.Normal{Mu: g.mu, Sigma: g.sigma, Src: rng}.Rand()
}

func (g *Gaussian) Mean() float64 {
	return g.mu
}
