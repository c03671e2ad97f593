package kafka

import (
	"context"
	"io"

	"github.com/Shopify/sarama"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// PartitionSource 将一个kafka分区适配为chunk数据源, 每条消息的Value是一个chunk.
type PartitionSource struct {
	conf      *Config
	consumer  sarama.Consumer
	owned     bool // consumer由Dial创建, Close时一起关闭
	pc        sarama.PartitionConsumer
	messages  <-chan *sarama.ConsumerMessage
	errs      <-chan *sarama.ConsumerError
	consumed  int
	exhausted bool
}

// Dial 连接kafka并返回PartitionSource实例.
func Dial(cfg *Config) (*PartitionSource, error) {
	consumer, err := sarama.NewConsumer(cfg.Brokers, NewConfig(cfg))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create kafka consumer")
	}
	s, err := NewPartitionSource(consumer, cfg)
	if err != nil {
		consumer.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// NewPartitionSource 在consumer上开始消费cfg指定的分区.
// 起始offset越界时按FromOldest退回到最早或最新的offset.
func NewPartitionSource(consumer sarama.Consumer, cfg *Config) (*PartitionSource, error) {
	offset := cfg.startOffset()
	pc, err := consumer.ConsumePartition(cfg.Topic, cfg.Partition, offset)
	if err != nil && isOffsetOutOfRange(err) && offset != cfg.fallbackOffset() {
		log.Warn().Msgf("offset %d out of range, partition: %v", offset, cfg.Partition)
		offset = cfg.fallbackOffset()
		pc, err = consumer.ConsumePartition(cfg.Topic, cfg.Partition, offset)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to consume %s/%d", cfg.Topic, cfg.Partition)
	}

	log.Info().Msgf("create kafka partition source, topic: %v, partition: %v, offset: %v", cfg.Topic, cfg.Partition, offset)

	return &PartitionSource{
		conf:     cfg,
		consumer: consumer,
		pc:       pc,
		messages: pc.Messages(),
		errs:     pc.Errors(),
	}, nil
}

// Pull 返回下一条消息的Value.
// 达到MaxMessages或者分区消费者被关闭时返回io.EOF, 消费错误视为拉取失败.
func (s *PartitionSource) Pull(ctx context.Context) ([]byte, error) {
	if s.exhausted {
		return nil, io.EOF
	}
	if s.conf.MaxMessages > 0 && s.consumed >= s.conf.MaxMessages {
		s.exhausted = true
		return nil, io.EOF
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case msg, ok := <-s.messages:
			if !ok {
				s.exhausted = true
				return nil, io.EOF
			}
			s.consumed++
			return msg.Value, nil
		case err, ok := <-s.errs:
			if !ok {
				s.errs = nil
				continue
			}
			return nil, errors.Wrapf(err, "failed to consume %s/%d", s.conf.Topic, s.conf.Partition)
		}
	}
}

// Consumed 返回已消费的消息数.
func (s *PartitionSource) Consumed() int {
	return s.consumed
}

// Close 关闭分区消费者.
func (s *PartitionSource) Close() error {
	err := s.pc.Close()
	if err != nil {
		log.Warn().Err(err).Msgf("failed to close consumer, partition: %v", s.conf.Partition)
	}
	if s.owned {
		if cerr := s.consumer.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("failed to close consumer")
			if err == nil {
				err = cerr
			}
		}
	}
	log.Info().Msgf("kafka partition source has been closed, partition: %v", s.conf.Partition)
	return err
}

func isOffsetOutOfRange(err error) bool {
	if perr, ok := err.(*sarama.ConsumerError); ok {
		err = perr.Err
	}
	return err == sarama.ErrOffsetOutOfRange
}
