package kafka

import (
	"os"

	"github.com/Shopify/sarama"
	"github.com/rs/zerolog/log"
)

// Config 分区数据源配置
type Config struct {
	Brokers     []string `json:"brokers"`
	Topic       string   `json:"topic"`
	Partition   int32    `json:"partition"`
	Offset      int64    `json:"offset"`       // 起始offset, 小于0时由FromOldest决定
	FromOldest  bool     `json:"from_oldest"`  // 从最早的消息开始消费, 否则从最新的消息开始
	MaxMessages int      `json:"max_messages"` // 消费的消息数上限, 0表示一直消费到分区消费者被关闭
	ClientID    string   `json:"client_id"`
}

// NewConfig 返回sarama配置, SASL账号从环境变量读取.
func NewConfig(cfg *Config) *sarama.Config {
	conf := sarama.NewConfig()
	if cfg.FromOldest {
		conf.Consumer.Offsets.Initial = sarama.OffsetOldest
	}
	conf.Consumer.Return.Errors = true
	if cfg.ClientID != "" {
		conf.ClientID = cfg.ClientID
	}
	GetKafkaAccessEnv(conf)
	return conf
}

// GetKafkaAccessEnv 从KAFKA_USERNAME/KAFKA_PASSWORD读取SASL账号.
func GetKafkaAccessEnv(cfg *sarama.Config) {
	usr := os.Getenv("KAFKA_USERNAME")
	pwd := os.Getenv("KAFKA_PASSWORD")
	if usr == "" || pwd == "" {
		log.Warn().Msg("access kafka without SASL setting")
		return
	}
	cfg.Net.SASL.Enable = true
	cfg.Net.SASL.Mechanism = sarama.SASLTypePlaintext
	cfg.Net.SASL.User = usr
	cfg.Net.SASL.Password = pwd
	cfg.Net.SASL.Version = sarama.SASLHandshakeV1
}

func (cfg *Config) startOffset() int64 {
	if cfg.Offset >= 0 {
		return cfg.Offset
	}
	return cfg.fallbackOffset()
}

func (cfg *Config) fallbackOffset() int64 {
	if cfg.FromOldest {
		return sarama.OffsetOldest
	}
	return sarama.OffsetNewest
}
