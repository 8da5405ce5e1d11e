// Copyright © 2021 Kaleido, Inc.
//
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kaleido-io/firefly-tokenclaims/internal/i18n"
	"github.com/kaleido-io/firefly-tokenclaims/internal/log"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// The following keys can be access from the root configuration.
// Plugins are resonsible for defining their own keys using the Prefix interface
var (
	Lang                      RootKey = ark("lang")
	LogLevel                  RootKey = ark("log.level")
	LogColor                  RootKey = ark("log.color")
	LogUTC                    RootKey = ark("log.utc")
	DebugPort                 RootKey = ark("debug.port")
	CorsEnabled               RootKey = ark("cors.enabled")
	CorsAllowedOrigins        RootKey = ark("cors.origins")
	CorsAllowedMethods        RootKey = ark("cors.methods")
	CorsAllowedHeaders        RootKey = ark("cors.headers")
	CorsAllowCredentials      RootKey = ark("cors.credentials")
	CorsMaxAge                RootKey = ark("cors.maxAge")
	CorsDebug                 RootKey = ark("cors.debug")
	APIRequestTimeout         RootKey = ark("api.requestTimeout")
	APIMaxRequestSize         RootKey = ark("api.maxRequestSize")
	APIDefaultRecordLimit     RootKey = ark("api.defaultRecordLimit")
	MetricsEnabled            RootKey = ark("metrics.enabled")
	MetricsPath               RootKey = ark("metrics.path")
	DatabaseType              RootKey = ark("database.type")
	DiscoveryType             RootKey = ark("discovery.type")
	SelectionStrategy         RootKey = ark("selection.strategy")
	SelectionRegexCacheSize   RootKey = ark("selection.regexCacheSize")
	DispatcherQueueLength     RootKey = ark("dispatcher.queueLength")
	DispatcherMaxAttempts     RootKey = ark("dispatcher.maxAttempts")
	DispatcherRetryInitDelay  RootKey = ark("dispatcher.retry.initDelay")
	DispatcherRetryMaxDelay   RootKey = ark("dispatcher.retry.maxDelay")
	DispatcherRetryFactor     RootKey = ark("dispatcher.retry.factor")
	RecordsCacheSize          RootKey = ark("records.cache.size")
	RecordsCacheTTL           RootKey = ark("records.cache.ttl")
	LedgerEnabled             RootKey = ark("ledger.enabled")
	LedgerDedupeTTL           RootKey = ark("ledger.dedupe.ttl")
	LedgerSubscribe           RootKey = ark("ledger.subscribe")
	LedgerAckEnabled          RootKey = ark("ledger.ack")
	LedgerDispatchParallelism RootKey = ark("ledger.dispatchParallelism")
)

// Prefix represents the global configuration, at a nested point in
// the config heirarchy. This allows plugins to define their
// Note that all values are GLOBAL so this cannot be used for per-instance
// customization. Rather for global initialization of plugins.
type Prefix interface {
	AddKnownKey(key string, defValue ...interface{})
	SubPrefix(suffix string) Prefix
	Set(key string, value interface{})
	Resolve(key string) string

	GetString(key string) string
	GetBool(key string) bool
	GetInt(key string) int
	GetInt64(key string) int64
	GetUint(key string) uint
	GetFloat64(key string) float64
	GetDuration(key string) time.Duration
	GetStringSlice(key string) []string
	GetStringMap(key string) map[string]interface{}
	UnmarshalKey(ctx context.Context, key string, rawVal interface{}) error
	Get(key string) interface{}
}

// RootKey key are the known configuration keys
type RootKey string

// Reset clears all config, and re-applies the defaults
func Reset() {
	keysMutex.Lock() // must only call viper directly here (as we already hold the lock)
	defer keysMutex.Unlock()

	viper.Reset()

	// Set defaults
	viper.SetDefault(string(Lang), "en")
	viper.SetDefault(string(LogLevel), "info")
	viper.SetDefault(string(LogColor), true)
	viper.SetDefault(string(LogUTC), false)
	viper.SetDefault(string(DebugPort), -1)
	viper.SetDefault(string(CorsEnabled), true)
	viper.SetDefault(string(CorsAllowedOrigins), []string{"*"})
	viper.SetDefault(string(CorsAllowedMethods), []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete})
	viper.SetDefault(string(CorsAllowedHeaders), []string{"*"})
	viper.SetDefault(string(CorsAllowCredentials), true)
	viper.SetDefault(string(CorsMaxAge), 600)
	viper.SetDefault(string(APIRequestTimeout), "120s")
	viper.SetDefault(string(APIMaxRequestSize), "1mb")
	viper.SetDefault(string(APIDefaultRecordLimit), 25)
	viper.SetDefault(string(MetricsEnabled), true)
	viper.SetDefault(string(MetricsPath), "/metrics")
	viper.SetDefault(string(DatabaseType), "sqlite")
	viper.SetDefault(string(DiscoveryType), "sql")
	viper.SetDefault(string(SelectionStrategy), "smallest")
	viper.SetDefault(string(SelectionRegexCacheSize), 100)
	viper.SetDefault(string(DispatcherQueueLength), 50)
	viper.SetDefault(string(DispatcherMaxAttempts), 5)
	viper.SetDefault(string(DispatcherRetryInitDelay), "250ms")
	viper.SetDefault(string(DispatcherRetryMaxDelay), "30s")
	viper.SetDefault(string(DispatcherRetryFactor), 2.0)
	viper.SetDefault(string(RecordsCacheSize), 1000)
	viper.SetDefault(string(RecordsCacheTTL), "5m")
	viper.SetDefault(string(LedgerEnabled), false)
	viper.SetDefault(string(LedgerDedupeTTL), "10m")
	viper.SetDefault(string(LedgerAckEnabled), true)
	viper.SetDefault(string(LedgerDispatchParallelism), 10)

	i18n.SetLang(viper.GetString(string(Lang)))
}

// ReadConfig initializes the config
func ReadConfig(cfgFile string) error {
	Reset()

	// Set precedence order for reading config location
	viper.SetEnvPrefix("ffclaims")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	viper.SetConfigType("yaml")
	if cfgFile != "" {
		f, err := os.Open(cfgFile)
		if err == nil {
			defer f.Close()
			err = viper.ReadConfig(f)
		}
		return err
	}
	viper.SetConfigName("ffclaims")
	viper.AddConfigPath("/etc/ffclaims/")
	viper.AddConfigPath("$HOME/.ffclaims")
	viper.AddConfigPath(".")
	return viper.ReadInConfig()
}

// SetupLogging initializes the root logger from the logging configuration
func SetupLogging(ctx context.Context) {
	log.SetFormatting(log.Formatting{
		DisableColor: !GetBool(LogColor),
		UTC:          GetBool(LogUTC),
	})
	log.SetLevel(GetString(LogLevel))
	log.L(ctx).Debugf("Log level: %s", logrus.GetLevel())
}

// GetKnownKeys gets the known keys
func GetKnownKeys() []string {
	var keys []string
	keysMutex.Lock()
	defer keysMutex.Unlock()
	for k := range knownKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetConfig returns the full config tree, used for output by the showconf command
func GetConfig() map[string]interface{} {
	return viper.AllSettings()
}

var root = &configPrefix{
	keys: map[string]bool{}, // All keys go here, including those defined in sub prefixies
}

var knownKeys = root.keys

var keysMutex = &sync.Mutex{}

// ark adds a root key, used to define the keys that are used within the core
func ark(k string) RootKey {
	root.AddKnownKey(k)
	return RootKey(k)
}

// configPrefix is the main config structure passed to plugins, and used for root to wrap viper
type configPrefix struct {
	prefix string
	keys   map[string]bool
}

// NewPluginConfig creates a new plugin configuration object, at the specified prefix
func NewPluginConfig(prefix string) Prefix {
	if !strings.HasSuffix(prefix, ".") {
		prefix += "."
	}
	return &configPrefix{
		prefix: prefix,
		keys:   root.keys,
	}
}

func (c *configPrefix) prefixKey(k string) string {
	keysMutex.Lock()
	defer keysMutex.Unlock()
	key := c.prefix + k
	if !c.keys[key] {
		panic(fmt.Sprintf("Undefined configuration key '%s'", key))
	}
	return key
}

func (c *configPrefix) SubPrefix(suffix string) Prefix {
	return &configPrefix{
		prefix: c.prefix + suffix + ".",
		keys:   root.keys,
	}
}

func (c *configPrefix) AddKnownKey(k string, defValue ...interface{}) {
	keysMutex.Lock()
	defer keysMutex.Unlock()
	key := c.prefix + k
	if len(defValue) == 1 {
		viper.SetDefault(key, defValue[0])
	} else if len(defValue) > 0 {
		viper.SetDefault(key, defValue)
	}
	c.keys[key] = true
}

func (c *configPrefix) Resolve(key string) string {
	return c.prefixKey(key)
}

// GetString gets a configuration string
func GetString(key RootKey) string {
	return root.GetString(string(key))
}
func (c *configPrefix) GetString(key string) string {
	return viper.GetString(c.prefixKey(key))
}

// GetStringSlice gets a configuration string array
func GetStringSlice(key RootKey) []string {
	return root.GetStringSlice(string(key))
}
func (c *configPrefix) GetStringSlice(key string) []string {
	return viper.GetStringSlice(c.prefixKey(key))
}

// GetBool gets a configuration bool
func GetBool(key RootKey) bool {
	return root.GetBool(string(key))
}
func (c *configPrefix) GetBool(key string) bool {
	return viper.GetBool(c.prefixKey(key))
}

// GetDuration gets a configuration time duration, from a string such as "250ms" or "15s"
func GetDuration(key RootKey) time.Duration {
	return root.GetDuration(string(key))
}
func (c *configPrefix) GetDuration(key string) time.Duration {
	return viper.GetDuration(c.prefixKey(key))
}

// GetUint gets a configuration uint
func GetUint(key RootKey) uint {
	return root.GetUint(string(key))
}
func (c *configPrefix) GetUint(key string) uint {
	return viper.GetUint(c.prefixKey(key))
}

// GetInt gets a configuration int
func GetInt(key RootKey) int {
	return root.GetInt(string(key))
}
func (c *configPrefix) GetInt(key string) int {
	return viper.GetInt(c.prefixKey(key))
}

// GetInt64 gets a configuration int64
func GetInt64(key RootKey) int64 {
	return root.GetInt64(string(key))
}
func (c *configPrefix) GetInt64(key string) int64 {
	return viper.GetInt64(c.prefixKey(key))
}

// GetFloat64 gets a configuration float64
func GetFloat64(key RootKey) float64 {
	return root.GetFloat64(string(key))
}
func (c *configPrefix) GetFloat64(key string) float64 {
	return viper.GetFloat64(c.prefixKey(key))
}

// GetStringMap gets a configuration map
func GetStringMap(key RootKey) map[string]interface{} {
	return root.GetStringMap(string(key))
}
func (c *configPrefix) GetStringMap(key string) map[string]interface{} {
	return viper.GetStringMap(c.prefixKey(key))
}

// Get gets a configuration in raw form
func Get(key RootKey) interface{} {
	return root.Get(string(key))
}
func (c *configPrefix) Get(key string) interface{} {
	return viper.Get(c.prefixKey(key))
}

// Set allows runtime setting of config (used in unit tests)
func Set(key RootKey, value interface{}) {
	root.Set(string(key), value)
}
func (c *configPrefix) Set(key string, value interface{}) {
	viper.Set(c.prefixKey(key), value)
}

// UnmarshalKey gets a configuration section into a struct
func UnmarshalKey(ctx context.Context, key RootKey, rawVal interface{}) error {
	return root.UnmarshalKey(ctx, string(key), rawVal)
}
func (c *configPrefix) UnmarshalKey(ctx context.Context, key string, rawVal interface{}) error {
	// Viper's unmarshal does not work with our json annotated config
	// structures, so we have to go from map to JSON, then to unmarshal
	var intermediate map[string]interface{}
	err := viper.UnmarshalKey(c.prefixKey(key), &intermediate)
	if err == nil {
		b, _ := json.Marshal(intermediate)
		err = json.Unmarshal(b, rawVal)
	}
	if err != nil {
		return i18n.WrapError(ctx, err, i18n.MsgConfigFailed)
	}
	return nil
}
