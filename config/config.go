package config

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var ConfigInfo config

// Init reads config.yml and fills the global ConfigInfo. Values are read
// key by key so a partially written file still yields usable defaults.
func Init() {
	viper.SetConfigType("yaml")
	viper.SetConfigName("config.yml")

	configPaths := []string{
		"./config",
		"../config",
		"../../config",
		".",
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logrus.Warnf("config file not found, falling back to env/defaults: %v", err)
		} else {
			logrus.Errorf("config error: %v", err)
		}
	} else {
		logrus.Infof("using config file: %s", viper.ConfigFileUsed())
	}

	setDefaults()

	ConfigInfo.Server.Addr = viper.GetString("server.addr")

	ConfigInfo.Mysql.Addr = viper.GetString("mysql.addr")
	ConfigInfo.Mysql.Database = viper.GetString("mysql.database")
	ConfigInfo.Mysql.Username = viper.GetString("mysql.username")
	ConfigInfo.Mysql.Password = viper.GetString("mysql.password")
	ConfigInfo.Mysql.Charset = viper.GetString("mysql.charset")

	ConfigInfo.Redis.Addr = viper.GetString("redis.addr")
	ConfigInfo.Redis.Password = viper.GetString("redis.password")

	ConfigInfo.RabbitMq.Addr = viper.GetString("rabbitmq.addr")
	ConfigInfo.RabbitMq.Username = viper.GetString("rabbitmq.username")
	ConfigInfo.RabbitMq.Password = viper.GetString("rabbitmq.password")

	ConfigInfo.Elastic.Addr = viper.GetString("elasticsearch.addr")
	ConfigInfo.Elastic.Enabled = viper.GetBool("elasticsearch.enabled")

	ConfigInfo.Jwt.Secret = viper.GetString("jwt.secret")
	ConfigInfo.Jwt.Expire = viper.GetDuration("jwt.expire")

	ConfigInfo.Feed.LikeWeight = viper.GetFloat64("feed.like_weight")
	ConfigInfo.Feed.ViewWeight = viper.GetFloat64("feed.view_weight")
	ConfigInfo.Feed.CommentWeight = viper.GetFloat64("feed.comment_weight")
	ConfigInfo.Feed.ShareWeight = viper.GetFloat64("feed.share_weight")
	ConfigInfo.Feed.WatchWeight = viper.GetFloat64("feed.watch_weight")
	ConfigInfo.Feed.RecencyWeight = viper.GetFloat64("feed.recency_weight")
	ConfigInfo.Feed.HalfLife = viper.GetDuration("feed.half_life")

	ConfigInfo.Notification.DedupWindow = viper.GetDuration("notification.dedup_window")
	ConfigInfo.Aggregator.ReconcileInterval = viper.GetDuration("aggregator.reconcile_interval")

	ConfigInfo.Log.Level = viper.GetString("log.level")
	ConfigInfo.Log.Json = viper.GetBool("log.json")
}

func setDefaults() {
	viper.SetDefault("server.addr", "0.0.0.0:8888")
	viper.SetDefault("mysql.charset", "utf8mb4")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("rabbitmq.addr", "localhost:5672")
	viper.SetDefault("rabbitmq.username", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("jwt.expire", 24*time.Hour)
	viper.SetDefault("feed.like_weight", 3.0)
	viper.SetDefault("feed.view_weight", 0.5)
	viper.SetDefault("feed.comment_weight", 5.0)
	viper.SetDefault("feed.share_weight", 10.0)
	viper.SetDefault("feed.watch_weight", 2.0)
	viper.SetDefault("feed.recency_weight", 1.0)
	viper.SetDefault("feed.half_life", 6*time.Hour)
	viper.SetDefault("notification.dedup_window", 5*time.Minute)
	viper.SetDefault("aggregator.reconcile_interval", 10*time.Minute)
	viper.SetDefault("log.level", "info")
}
