package thresholds

import (
	"fmt"
	"math"

	"github.com/go-viper/mapstructure/v2"
)

//go:generate go tool mockgen -destination=mocks/mock_noise.go -package=mocks . NoiseModel

// NoiseModel maps a score difference on a metric to the probability, in
// [0, 100], that the difference reflects a genuine quality gap.
//
// Implementations must be non-decreasing in |diff| and fail with an
// *UnknownMetricError for metrics they have no calibration for.
type NoiseModel interface {
	Accuracy(diff float64, metric string) (float64, error)
}

// Kind names a NoiseModel implementation in configuration.
type Kind string

const (
	// KindNormalCDF is a half-normal CDF over |diff| scaled by sigma,
	// rising from 0 to 100.
	KindNormalCDF Kind = "normal-cdf"
	// KindCeiling is KindNormalCDF capped at the metric's mu, for
	// calibrations where mu is the best accuracy the metric ever reaches.
	KindCeiling Kind = "ceiling"
)

// DefaultKind is used when no model is configured.
const DefaultKind = KindNormalCDF

type modelParams struct {
	// SigmaScale widens (>1) or narrows (<1) every metric's sigma.
	SigmaScale float64 `mapstructure:"sigma_scale"`
}

// New builds the NoiseModel of the given kind over profile. params holds
// kind-specific settings as decoded from configuration.
func New(kind Kind, profile *Profile, params map[string]any) (NoiseModel, error) {
	if profile == nil {
		return nil, fmt.Errorf("noise model %q: nil profile", kind)
	}

	v := modelParams{SigmaScale: 1}
	if err := mapstructure.Decode(params, &v); err != nil {
		return nil, fmt.Errorf("noise model %q: %w", kind, err)
	}
	if !(v.SigmaScale > 0) || math.IsInf(v.SigmaScale, 0) {
		return nil, fmt.Errorf("noise model %q: sigma_scale must be positive, got %v", kind, v.SigmaScale)
	}

	switch kind {
	case "", KindNormalCDF:
		return &NormalCDFModel{profile: profile, sigmaScale: v.SigmaScale}, nil
	case KindCeiling:
		return &CeilingModel{NormalCDFModel{profile: profile, sigmaScale: v.SigmaScale}}, nil
	default:
		return nil, fmt.Errorf("unknown noise model kind %q", kind)
	}
}

// NormalCDFModel computes
//
//	accuracy(d) = 100 · (2Φ(|d|/σ) − 1) = 100 · erf(|d| / (σ√2))
//
// i.e. the probability mass a zero-mean normal noise distribution with
// standard deviation σ puts inside ±|d|. It is symmetric in the sign of d.
type NormalCDFModel struct {
	profile    *Profile
	sigmaScale float64
}

// NewNormalCDFModel returns a NormalCDFModel over profile.
func NewNormalCDFModel(profile *Profile) *NormalCDFModel {
	return &NormalCDFModel{profile: profile, sigmaScale: 1}
}

func (m *NormalCDFModel) Accuracy(diff float64, metric string) (float64, error) {
	c, err := m.profile.Lookup(metric)
	if err != nil {
		return 0, err
	}
	return 100 * m.fraction(diff, c), nil
}

func (m *NormalCDFModel) fraction(diff float64, c Calibration) float64 {
	if math.IsNaN(diff) {
		return 0
	}
	return math.Erf(math.Abs(diff) / (c.Sigma * m.sigmaScale * math.Sqrt2))
}

// CeilingModel scales the normal CDF curve to top out at the metric's mu.
type CeilingModel struct {
	base NormalCDFModel
}

func (m *CeilingModel) Accuracy(diff float64, metric string) (float64, error) {
	c, err := m.base.profile.Lookup(metric)
	if err != nil {
		return 0, err
	}
	ceiling := math.Min(math.Max(c.Mu, 0), 100)
	return ceiling * m.base.fraction(diff, c), nil
}
