package logging_test

import (
	"github.com/sirupsen/logrus"

	"github.com/grovetools/searchcore/logging"
)

func ExampleNewLogger() {
	log := logging.NewLogger("my-component")

	log.Debug("Debug information")
	log.Info("Starting search")

	log.WithFields(logrus.Fields{
		"index":   "products",
		"widgets": 4,
	}).Info("Recomputed queries")

	// Configuration via searchcore.yml:
	//
	// logging:
	//   level: debug
	//   report_caller: true
	//   file:
	//     enabled: true
	//     path: ~/.local/state/searchcore/searchcore.log
	//   format:
	//     preset: json
}
