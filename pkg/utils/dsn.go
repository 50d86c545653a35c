package utils

import (
	"strings"

	"clipstream.com/config"
)

func GetMysqlDsn() string {
	dsn := strings.Join([]string{config.ConfigInfo.Mysql.Username, ":",
		config.ConfigInfo.Mysql.Password, "@tcp(", config.ConfigInfo.Mysql.Addr, ")/",
		config.ConfigInfo.Mysql.Database, "?charset=" + config.ConfigInfo.Mysql.Charset + "&parseTime=true&loc=Local"}, "")
	return dsn
}

func GetRabbitMqURL() string {
	return strings.Join([]string{"amqp://", config.ConfigInfo.RabbitMq.Username, ":",
		config.ConfigInfo.RabbitMq.Password, "@", config.ConfigInfo.RabbitMq.Addr, "/"}, "")
}
