// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

package service // import "github.com/signalpipe/signalpipe/service"

import (
	"fmt"
	"time"

	"github.com/signalpipe/signalpipe/component"
	"github.com/signalpipe/signalpipe/confmap"
	"github.com/signalpipe/signalpipe/service/pipelines"
	"github.com/signalpipe/signalpipe/service/telemetry"
)

// configSettings is the shape of the "service" section of the raw config.
type configSettings struct {
	Pipelines       pipelines.Config `mapstructure:"pipelines"`
	Telemetry       telemetry.Config `mapstructure:"telemetry"`
	ShutdownTimeout time.Duration    `mapstructure:"shutdown_timeout"`
}

// LoadConfig decodes a raw configuration map into a Config, resolving each
// component section against the factories in set. The expected layout is
//
//	receivers:  {<type>[/<name>]: <component config>}
//	processors: {<type>[/<name>]: <component config>}
//	exporters:  {<type>[/<name>]: <component config>}
//	service:
//	  pipelines: {<signal>[/<name>]: {receivers, processors, exporters}}
//	  telemetry: {logs: {level, encoding, development}}
//	  shutdown_timeout: <duration>
//
// Component configs start from the factory defaults, so sections only need
// the keys they override.
func LoadConfig(conf *confmap.Conf, set Settings) (*Config, error) {
	receivers, err := loadComponentSection(conf, "receivers", func(t component.Type) (func() component.Config, bool) {
		f, ok := set.ReceiverFactories[t]
		if !ok {
			return nil, false
		}
		return f.CreateDefaultConfig, true
	})
	if err != nil {
		return nil, err
	}
	processors, err := loadComponentSection(conf, "processors", func(t component.Type) (func() component.Config, bool) {
		f, ok := set.ProcessorFactories[t]
		if !ok {
			return nil, false
		}
		return f.CreateDefaultConfig, true
	})
	if err != nil {
		return nil, err
	}
	exporters, err := loadComponentSection(conf, "exporters", func(t component.Type) (func() component.Config, bool) {
		f, ok := set.ExporterFactories[t]
		if !ok {
			return nil, false
		}
		return f.CreateDefaultConfig, true
	})
	if err != nil {
		return nil, err
	}

	serviceConf, err := conf.Sub("service")
	if err != nil {
		return nil, err
	}
	settings := configSettings{
		Telemetry:       telemetry.NewDefaultConfig(),
		ShutdownTimeout: defaultShutdownTimeout,
	}
	if err := serviceConf.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("cannot unmarshal the service section: %w", err)
	}

	return &Config{
		Receivers:       receivers,
		Processors:      processors,
		Exporters:       exporters,
		Pipelines:       settings.Pipelines,
		Telemetry:       settings.Telemetry,
		ShutdownTimeout: settings.ShutdownTimeout,
	}, nil
}

func loadComponentSection(conf *confmap.Conf, section string, defaultCfg func(component.Type) (func() component.Config, bool)) (map[component.ID]component.Config, error) {
	sectionConf, err := conf.Sub(section)
	if err != nil {
		return nil, err
	}

	cfgs := make(map[component.ID]component.Config)
	for key := range sectionConf.ToStringMap() {
		var id component.ID
		if err := id.UnmarshalText([]byte(key)); err != nil {
			return nil, fmt.Errorf("invalid %s id %q: %w", section, key, err)
		}
		newDefault, ok := defaultCfg(id.Type())
		if !ok {
			return nil, fmt.Errorf("unknown %s type %q for %q", section, id.Type(), id)
		}

		componentConf, err := sectionConf.Sub(key)
		if err != nil {
			return nil, err
		}
		cfg := newDefault()
		if err := componentConf.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("cannot unmarshal %s %q: %w", section, id, err)
		}
		cfgs[id] = cfg
	}
	return cfgs, nil
}
