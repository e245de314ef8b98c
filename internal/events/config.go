package events

import (
	"io"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads YAML from file path. If path is empty, returns zero value.
func LoadConfig(path string) (Config, error) {
	var c Config
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	err = yaml.Unmarshal(data, &c)
	return c, err
}

// Build creates the enabled sinks and a dispatcher that logs failed
// deliveries. Sinks that fail to start are skipped and reported in err. The
// returned closer releases sink connections.
func Build(cfg Config, logger *zap.SugaredLogger) (*Dispatcher, io.Closer, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	var (
		sinks   []Sink
		closers closeAll
		errs    error
	)
	if wh := NewWebhookSink(cfg.Sinks.Webhook); wh != nil {
		sinks = append(sinks, wh)
	}
	if rs, err := NewRedisSink(cfg.Sinks.Redis); err != nil {
		errs = multierr.Append(errs, err)
	} else if rs != nil {
		sinks = append(sinks, rs)
		closers = append(closers, rs)
	}
	if ks, err := NewKafkaSink(cfg.Sinks.Kafka); err != nil {
		errs = multierr.Append(errs, err)
	} else if ks != nil {
		sinks = append(sinks, ks)
		closers = append(closers, ks)
	}
	logger.Debugw("event sinks configured", "count", len(sinks))
	return NewDispatcher(cfg, &LogDLQ{Logger: logger}, sinks...), closers, errs
}

type closeAll []io.Closer

func (c closeAll) Close() error {
	var err error
	for _, cl := range c {
		err = multierr.Append(err, cl.Close())
	}
	return err
}
