package config

import "time"

type config struct {
	Server       server       `yaml:"server" mapstructure:"server"`
	Mysql        mysql        `yaml:"mysql" mapstructure:"mysql"`
	Redis        redis        `yaml:"redis" mapstructure:"redis"`
	RabbitMq     rabbitmq     `yaml:"rabbitmq" mapstructure:"rabbitmq"`
	Elastic      elastic      `yaml:"elasticsearch" mapstructure:"elasticsearch"`
	Jwt          jwtConfig    `yaml:"jwt" mapstructure:"jwt"`
	Feed         feed         `yaml:"feed" mapstructure:"feed"`
	Notification notification `yaml:"notification" mapstructure:"notification"`
	Aggregator   aggregator   `yaml:"aggregator" mapstructure:"aggregator"`
	Log          logging      `yaml:"log" mapstructure:"log"`
}

type server struct {
	Addr string `yaml:"addr"`
}

type mysql struct {
	Addr     string `yaml:"addr"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Charset  string `yaml:"charset"`
}

type redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
}

type rabbitmq struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type elastic struct {
	Addr    string `yaml:"addr"`
	Enabled bool   `yaml:"enabled"`
}

type jwtConfig struct {
	Secret string        `yaml:"secret"`
	Expire time.Duration `yaml:"expire"`
}

// feed holds the ranking knobs. Only the resulting ordering is contractual,
// the weights themselves are tunable per deployment.
type feed struct {
	LikeWeight    float64       `yaml:"like_weight"`
	ViewWeight    float64       `yaml:"view_weight"`
	CommentWeight float64       `yaml:"comment_weight"`
	ShareWeight   float64       `yaml:"share_weight"`
	WatchWeight   float64       `yaml:"watch_weight"`
	RecencyWeight float64       `yaml:"recency_weight"`
	HalfLife      time.Duration `yaml:"half_life"`
}

type notification struct {
	DedupWindow time.Duration `yaml:"dedup_window"`
}

type aggregator struct {
	ReconcileInterval time.Duration `yaml:"reconcile_interval"`
}

type logging struct {
	Level string `yaml:"level"`
	Json  bool   `yaml:"json"`
}
