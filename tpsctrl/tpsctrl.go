package tpsctrl

import (
	"context"
	"time"

	"github.com/juju/ratelimit"
	"github.com/rs/zerolog/log"

	quickreader "github.com/usherasnick/quick-reader/quick-reader"
)

// TPSController 用于调控拉取chunk的TPS
type TPSController struct {
	quota  int
	bucket *ratelimit.Bucket
}

// NewTPSController 返回TPSController实例.
// Max(TPS) == quota, quota <= 0 表示不限制.
func NewTPSController(quota int) *TPSController {
	ctrl := TPSController{}
	ctrl.quota = quota
	if ctrl.quota <= 0 {
		return &ctrl
	}

	interval := time.Second / time.Duration(ctrl.quota)
	if interval <= 0 {
		interval = time.Nanosecond
	}
	ctrl.bucket = ratelimit.NewBucket(interval, int64(ctrl.quota))

	return &ctrl
}

// Take 从令牌桶中取1个令牌, 如果当前无可用令牌, 等待直到出现可用令牌或者ctx结束.
func (ctrl *TPSController) Take(ctx context.Context) error {
	return ctrl.TakeX(ctx, 1)
}

// TakeX 从令牌桶中取x个令牌, 如果当前无可用令牌, 等待直到出现可用令牌或者ctx结束.
func (ctrl *TPSController) TakeX(ctx context.Context, x int64) error {
	if ctrl.bucket == nil {
		return nil
	}
	return wait(ctx, ctrl.bucket.Take(x))
}

// Wrap 返回限速的数据源, 每次拉取消耗1个令牌.
func (ctrl *TPSController) Wrap(src quickreader.Source) quickreader.Source {
	return quickreader.SourceFunc(func(ctx context.Context) ([]byte, error) {
		if err := ctrl.Take(ctx); err != nil {
			return nil, err
		}
		return src.Pull(ctx)
	})
}

// NewByteRateSource 返回按字节限速的数据源, 每拉取到一个chunk消耗len(chunk)个令牌.
// bytesPerSec <= 0 表示不限制.
func NewByteRateSource(src quickreader.Source, bytesPerSec int) quickreader.Source {
	if bytesPerSec <= 0 {
		return src
	}
	bucket := ratelimit.NewBucketWithRate(float64(bytesPerSec), int64(bytesPerSec))
	return quickreader.SourceFunc(func(ctx context.Context) ([]byte, error) {
		chunk, err := src.Pull(ctx)
		if err != nil {
			return nil, err
		}
		if err = wait(ctx, bucket.Take(int64(len(chunk)))); err != nil {
			return nil, err
		}
		return chunk, nil
	})
}

func wait(ctx context.Context, d time.Duration) error {
	if d == 0 {
		return nil
	}
	log.Debug().Msgf("rate limit exceeds, wait %s until resource turns to be available", d.String())

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
