package config

import (
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/lypee/flakeid"
	"github.com/lypee/flakeid/base"
	"github.com/lypee/flakeid/common"
	"github.com/lypee/flakeid/utils"
)

const (
	EnvPrefix = "FLAKEID"
	// AutoWorkerID derives the worker id from the hostname
	AutoWorkerID = "auto"
)

type Config struct {
	Snowflake SnowflakeConfig
	Log       base.Config
	Zookeeper ZookeeperConfig
}

type SnowflakeConfig struct {
	ServerIDBits int
	WorkerIDBits int
	ServerID     int
	WorkerID     int
	MaxRetries   int
	RetryDelay   time.Duration
}

type ZookeeperConfig struct {
	Enabled        bool
	Servers        []string
	SessionTimeout time.Duration
	Root           string
	MaxProbes      int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("snowflake.server_id_bits", common.DefaultServerIDBits)
	v.SetDefault("snowflake.worker_id_bits", common.DefaultWorkerIDBits)
	v.SetDefault("snowflake.server_id", 0)
	v.SetDefault("snowflake.worker_id", 0)
	v.SetDefault("snowflake.max_retries", common.MaxRetries)
	v.SetDefault("snowflake.retry_delay", common.DefaultRetryDelay)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("zookeeper.enabled", false)
	v.SetDefault("zookeeper.servers", []string{"127.0.0.1:2181"})
	v.SetDefault("zookeeper.session_timeout", 5*time.Second)
	v.SetDefault("zookeeper.root", common.WorkIdPath)
	v.SetDefault("zookeeper.max_probes", common.MaxWorkIdProbes)
}

// Load reads <path>/<name>.yaml if present and applies FLAKEID_* environment
// overrides, e.g. FLAKEID_SNOWFLAKE_WORKER_ID.
func Load(path, name string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("yaml")
	v.AddConfigPath(path)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, common.ConfigErr.WithMsg("read config %s/%s", path, name).WithTrueErr(err)
		}
		base.DebugF("no config file %s/%s, using defaults and environment", path, name)
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var (
		cfg Config
		err error
	)
	sf := &cfg.Snowflake
	for key, dst := range map[string]*int{
		"snowflake.server_id_bits": &sf.ServerIDBits,
		"snowflake.worker_id_bits": &sf.WorkerIDBits,
		"snowflake.server_id":      &sf.ServerID,
		"snowflake.max_retries":    &sf.MaxRetries,
	} {
		if *dst, err = toInt(key, v.Get(key)); err != nil {
			return nil, err
		}
	}

	raw := v.Get("snowflake.worker_id")
	if s, ok := raw.(string); ok && strings.EqualFold(strings.TrimSpace(s), AutoWorkerID) {
		if sf.WorkerIDBits < 0 || sf.WorkerIDBits > int(common.FreeBits) {
			return nil, common.ConfigErr.WithMsg("invalid worker_id_bits: %d", sf.WorkerIDBits)
		}
		slot, err := utils.HostSlot(uint32(1)<<uint(sf.WorkerIDBits) - 1)
		if err != nil {
			return nil, common.ConfigErr.WithMsg("derive worker_id from hostname").WithTrueErr(err)
		}
		sf.WorkerID = int(slot)
	} else if sf.WorkerID, err = toInt("snowflake.worker_id", raw); err != nil {
		return nil, err
	}

	if sf.RetryDelay, err = toDuration("snowflake.retry_delay", v.Get("snowflake.retry_delay")); err != nil {
		return nil, err
	}

	cfg.Log = base.Config{
		Level:  cast.ToString(v.Get("log.level")),
		Pretty: cast.ToBool(v.Get("log.pretty")),
	}

	zc := &cfg.Zookeeper
	if zc.Enabled, err = cast.ToBoolE(v.Get("zookeeper.enabled")); err != nil {
		return nil, common.ConfigErr.WithMsg("invalid zookeeper.enabled").WithTrueErr(err)
	}
	zc.Servers = toStringSlice(v.Get("zookeeper.servers"))
	if zc.SessionTimeout, err = toDuration("zookeeper.session_timeout", v.Get("zookeeper.session_timeout")); err != nil {
		return nil, err
	}
	zc.Root = strings.TrimRight(cast.ToString(v.Get("zookeeper.root")), "/")
	if zc.Root == "" || !strings.HasPrefix(zc.Root, "/") {
		return nil, common.ConfigErr.WithMsg("zookeeper.root must be an absolute path, got %q", zc.Root)
	}
	if zc.MaxProbes, err = toInt("zookeeper.max_probes", v.Get("zookeeper.max_probes")); err != nil {
		return nil, err
	}
	if zc.MaxProbes <= 0 {
		return nil, common.ConfigErr.WithMsg("zookeeper.max_probes must be positive, got %d", zc.MaxProbes)
	}

	return &cfg, nil
}

// toInt rejects fractional values instead of truncating them.
func toInt(key string, val interface{}) (int, error) {
	switch f := val.(type) {
	case float64:
		if f != math.Trunc(f) {
			return 0, common.ConfigErr.WithMsg("%s must be an integer, got %v", key, f)
		}
	case float32:
		if float64(f) != math.Trunc(float64(f)) {
			return 0, common.ConfigErr.WithMsg("%s must be an integer, got %v", key, f)
		}
	}
	n, err := cast.ToIntE(val)
	if err != nil {
		return 0, common.ConfigErr.WithMsg("%s must be an integer, got %v", key, val).WithTrueErr(err)
	}
	return n, nil
}

func toDuration(key string, val interface{}) (time.Duration, error) {
	d, err := cast.ToDurationE(val)
	if err != nil {
		return 0, common.ConfigErr.WithMsg("%s must be a duration, got %v", key, val).WithTrueErr(err)
	}
	return d, nil
}

// toStringSlice also splits comma separated strings, as found in environment variables.
func toStringSlice(val interface{}) []string {
	var parts []string
	if s, ok := val.(string); ok {
		parts = strings.Split(s, ",")
	} else {
		parts = cast.ToStringSlice(val)
	}
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Options turns the snowflake section into Factory options.
func (c *Config) Options() []flakeid.OptFunc {
	sf := c.Snowflake
	return []flakeid.OptFunc{
		flakeid.WithServerIDBits(sf.ServerIDBits),
		flakeid.WithWorkerIDBits(sf.WorkerIDBits),
		flakeid.WithServerID(sf.ServerID),
		flakeid.WithWorkerID(sf.WorkerID),
		flakeid.WithMaxRetries(sf.MaxRetries),
		flakeid.WithRetryDelay(sf.RetryDelay),
	}
}

// NewFactory builds a Factory from c.
func (c *Config) NewFactory(extra ...flakeid.OptFunc) (*flakeid.Factory, error) {
	return flakeid.New(append(c.Options(), extra...)...)
}
