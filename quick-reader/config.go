package quickreader

import (
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	__DefaultMaxQueueLen = 64 * 1024 * 1024

	__MaxQueueLenEnv = "QUICKREADER_MAX_QUEUE_LEN"
)

// MaxQueueLen 进程级的默认最大累积长度, Cfg.MaxQueueLen为0时使用.
// 默认64MiB, 可通过环境变量QUICKREADER_MAX_QUEUE_LEN覆盖.
var MaxQueueLen = envInt(__MaxQueueLenEnv, __DefaultMaxQueueLen)

// Allocator 分配长度恰好为n的缓冲区.
// 返回的缓冲区会作为读取结果交给调用方, 不能被复用.
type Allocator func(n int) []byte

func defaultAllocator(n int) []byte {
	return make([]byte, n)
}

// Cfg Reader配置
type Cfg struct {
	MaxQueueLen int             // 最大累积长度, 0表示使用MaxQueueLen
	EOFAsDelim  bool            // 数据流结束是否可以作为分隔符
	Allocator   Allocator       // 跨chunk拼接时使用的分配器, 默认make([]byte, n)
	Logger      *zerolog.Logger // 默认使用全局log.Logger
	Metrics     *Metrics        // 可选
}

func envInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("env", name).Str("value", v).Msgf("invalid value, use default %d", def)
		return def
	}
	return n
}
