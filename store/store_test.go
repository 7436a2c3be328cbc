package store

import "github.com/avelinec/docdex/config"

func testConfig() *config.Config {
	return config.DefaultConfig()
}
