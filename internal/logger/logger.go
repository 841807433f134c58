package logger

import (
	"encoding/json"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/opsforge/state-reconciler/pkg/types"
)

// New builds a logger with the specified level. Log output goes to stderr so
// that marshalled reconciliation results stay parseable on stdout.
func New(level string) (types.Logger, error) {
	var cfg zap.Config
	cfgJSON := []byte(`{
		"development": false,
	  "level": "` + level + `",
	  "encoding": "console",
	  "outputPaths": ["stderr"],
	  "errorOutputPaths": ["stderr"],
	  "encoderConfig": {
			"timeKey": "timestamp",
			"timeEncoder": "iso8601",
	    "messageKey": "message",
	    "levelKey": "level",
	    "levelEncoder": "capitalColor"
	  }
	}`)

	if err := json.Unmarshal(cfgJSON, &cfg); err != nil {
		return nil, errors.Wrap(err, "json unmarshalling error")
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "logger building error")
	}

	return logger.Sugar(), nil
}
