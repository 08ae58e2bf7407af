package thresholds

import "sync"

// builtinCalibrations is the empirical mt-metrics noise table.
var builtinCalibrations = map[string]Calibration{
	"bleu":                {Mu: 88.33333333333225, Sigma: 0.9663926931178954},
	"chrf":                {Mu: 92.999999999972, Sigma: 1.1142732157139852},
	"spBLEU101":           {Mu: 84.58445492823891, Sigma: 1.262507595109315},
	"spBLEU200":           {Mu: 90.99999999998793, Sigma: 0.8079046528617078},
	"bleurt-default":      {Mu: 94.66666666666666, Sigma: 0.4947232832741672},
	"bleurt20":            {Mu: 98.33333333332963, Sigma: 1.3727206190931929},
	"comet20":             {Mu: 97.33333333332897, Sigma: 0.7266990738678005},
	"comet22":             {Mu: 96.22374133884283, Sigma: 2.8359194570556636},
	"comet21qe":           {Mu: 93.7997435048193, Sigma: 43.38413992717536},
	"cometkiwi22":         {Mu: 98.88141616584615, Sigma: 2.719280643871758},
	"xcometXXL":           {Mu: 98.93432477039522, Sigma: 1.1629533711748128},
	"xcometxl":            {Mu: 96.56738237041118, Sigma: 1.4535595865214588},
	"cometkiwiXXL":        {Mu: 96.23167242471065, Sigma: 1.2826577343149304},
	"bertscore":           {Mu: 94.99999999999999, Sigma: 2.6823162097239917},
	"cometkiwi23-xl-src":  {Mu: 96.39080593943235, Sigma: 1.8888877927713834},
	"metricx-23-large":    {Mu: 93.60777624544488, Sigma: 26.277850179370947},
	"metricx-23-qe-large": {Mu: 97.99999999782683, Sigma: 15.541455989240491},
}

var (
	defaultOnce    sync.Once
	defaultProfile *Profile
)

// Default returns the built-in profile. The same *Profile is returned on
// every call.
func Default() *Profile {
	defaultOnce.Do(func() {
		p, err := NewProfile(builtinCalibrations)
		if err != nil {
			panic("thresholds: built-in profile is invalid: " + err.Error())
		}
		defaultProfile = p
	})
	return defaultProfile
}
