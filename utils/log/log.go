package log

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pulsifi-app/pulsifi-backend/utils/flag"
)

// global accessible logger
var (
	LogV2 *logrus.Logger
)

// This init function is only for testing cases, where the entry point is not
// main function. Unit test will fail with nil pointer dereference if we don't
// init here.
func init() {
	initLogger()
}

func initLogger() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	env := os.Getenv("PULSIFI_ENV")
	if len(env) == 0 {
		env = "unknown"
	}

	if env == "prod" {
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	logger.AddHook(&defaultFieldsHook{fields: logrus.Fields{
		"app": strings.ReplaceAll(*flag.ServiceName, "_", "-"),
		"env": env,
	}})

	LogV2 = logger
}

// defaultFieldsHook stamps every entry with the service identity so log
// lines remain attributable after aggregation.
type defaultFieldsHook struct {
	fields logrus.Fields
}

func (h *defaultFieldsHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *defaultFieldsHook) Fire(entry *logrus.Entry) error {
	for k, v := range h.fields {
		if _, ok := entry.Data[k]; !ok {
			entry.Data[k] = v
		}
	}
	return nil
}
