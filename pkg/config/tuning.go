package config

import (
	"github.com/spf13/viper"

	"github.com/mpapenbr/racetrack-sim-go/pkg/physics"
)

const TuningKey = "tuning"

// LoadTuning returns the default vehicle tuning overridden by the values
// found below the "tuning" key of the config file.
func LoadTuning(v *viper.Viper) (physics.Tuning, error) {
	ret := physics.DefaultTuning()
	if v.IsSet(TuningKey) {
		if err := v.UnmarshalKey(TuningKey, &ret); err != nil {
			return ret, err
		}
	}
	return ret, ret.Validate()
}
