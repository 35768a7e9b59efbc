package usecase

import (
	"MarketBoard/pkg/logger"
)

func testLogger() *logger.Logger {
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		panic(err)
	}
	return log
}
