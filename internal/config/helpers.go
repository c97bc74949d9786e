package config

import (
	"findash/pkg/market"
)

// MustLoadMarket loads etc/market.yaml from the project root and panics on error.
// It lets tools that only need providers skip the main config.
func MustLoadMarket() *market.Config {
	return market.MustLoad()
}

// MustBuildSelector loads the default market configuration and builds its selector.
func MustBuildSelector() *market.Selector {
	selector, err := MustLoadMarket().BuildSelector()
	if err != nil {
		panic(err)
	}
	return selector
}
