// Copyright The Signalpipe Authors
// SPDX-License-Identifier: Apache-2.0

// Package confmap holds the resolved configuration handed to the engine and
// decodes sections of it into typed component configs. It does not read or
// parse configuration files; producing the raw map is the embedder's job.
package confmap // import "github.com/signalpipe/signalpipe/confmap"

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
)

// KeyDelimiter is used as the default key delimiter in nested config keys.
const KeyDelimiter = "::"

// Conf represents the raw configuration map.
type Conf struct {
	k *koanf.Koanf
}

// New creates a new empty Conf.
func New() *Conf {
	return &Conf{k: koanf.New(KeyDelimiter)}
}

// NewFromStringMap creates a Conf from a map[string]any.
func NewFromStringMap(data map[string]any) *Conf {
	p := New()
	// Cannot return an error because the koanf instance is empty.
	_ = p.k.Load(confmap.Provider(data, KeyDelimiter), nil)
	return p
}

// AllKeys returns all keys holding a value, regardless of where they are set.
// Nested keys are returned with a KeyDelimiter separator.
func (l *Conf) AllKeys() []string {
	return l.k.Keys()
}

// Get can retrieve any value given the key to use.
func (l *Conf) Get(key string) any {
	return l.k.Get(key)
}

// IsSet checks to see if the key has been set in any of the data locations.
func (l *Conf) IsSet(key string) bool {
	return l.k.Exists(key)
}

// Merge merges the input given configuration into the existing config.
// Note that the given map may be modified.
func (l *Conf) Merge(in *Conf) error {
	return l.k.Merge(in.k)
}

// Sub returns new Conf instance representing a sub-config of this instance.
// It returns an error if the sub-config is not a map.
func (l *Conf) Sub(key string) (*Conf, error) {
	data := l.Get(key)
	if data == nil {
		return New(), nil
	}
	if v, ok := data.(map[string]any); ok {
		return NewFromStringMap(v), nil
	}
	return nil, fmt.Errorf("unexpected sub-config value kind for key:%s value:%v kind:%T", key, data, data)
}

// ToStringMap creates a map[string]any from a Conf.
func (l *Conf) ToStringMap() map[string]any {
	return maps.Unflatten(l.k.All(), KeyDelimiter)
}

// Unmarshal unmarshals the config into a struct. Tags on the fields of the
// structure must be set to "mapstructure". Unknown keys in the config are an
// error.
func (l *Conf) Unmarshal(result any) error {
	dc := &mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      result,
		TagName:     "mapstructure",
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.TextUnmarshallerHookFunc(),
		),
	}
	decoder, err := mapstructure.NewDecoder(dc)
	if err != nil {
		return err
	}
	return decoder.Decode(l.ToStringMap())
}
