package zknode

import (
	"context"
	"io"
	"path"
	"sort"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/samuel/go-zookeeper/zk"
)

const (
	__DefaultHeartbeat = 5 * time.Second
)

// Cfg 节点数据源配置
type Cfg struct {
	ZkEndpoints []string `json:"zk_endpoints"`
	Path        string   `json:"path"`      // 父节点, 其子节点按名字排序后依次作为chunk
	Heartbeat   int      `json:"heartbeat"` // 会话心跳, 单位秒
}

// Getter 读取zookeeper节点, *zk.Conn实现了该接口.
type Getter interface {
	Children(path string) ([]string, *zk.Stat, error)
	Get(path string) ([]byte, *zk.Stat, error)
}

// Connect 连接zookeeper集群, 会话事件只记录日志.
func Connect(cfg *Cfg) (*zk.Conn, error) {
	heartbeat := __DefaultHeartbeat
	if cfg.Heartbeat > 0 {
		heartbeat = time.Duration(cfg.Heartbeat) * time.Second
	}

	conn, sessionEv, err := zk.Connect(cfg.ZkEndpoints, heartbeat)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to zookeeper cluster (%v)", cfg.ZkEndpoints)
	}
	go func() {
		for ev := range sessionEv {
			if ev.State == zk.StateExpired || ev.State == zk.StateAuthFailed {
				log.Error().Str("state", ev.State.String()).Msg("zookeeper session lost")
				continue
			}
			log.Debug().Str("state", ev.State.String()).Msg("zookeeper session event")
		}
	}()
	return conn, nil
}

// NodeSource 将父节点下的子节点适配为chunk数据源, 每个子节点的数据是一个chunk.
// 子节点列表只在第一次拉取时读取一次.
type NodeSource struct {
	conn     Getter
	path     string
	listed   bool
	children []string
}

// NewNodeSource 返回NodeSource实例.
func NewNodeSource(conn Getter, cfg *Cfg) *NodeSource {
	return &NodeSource{conn: conn, path: cfg.Path}
}

// Pull 返回下一个子节点的数据, 读取时已被删除的子节点会被跳过.
func (s *NodeSource) Pull(ctx context.Context) ([]byte, error) {
	if !s.listed {
		children, _, err := s.conn.Children(s.path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to list %s", s.path)
		}
		sort.Strings(children)
		s.children = children
		s.listed = true
	}

	for len(s.children) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		node := path.Join(s.path, s.children[0])
		s.children = s.children[1:]

		data, _, err := s.conn.Get(node)
		if err == zk.ErrNoNode {
			log.Warn().Str("node", node).Msg("node deleted before read, skip")
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get %s", node)
		}
		return data, nil
	}
	return nil, io.EOF
}
