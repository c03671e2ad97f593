package cassandrablob

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	__DefaultTimeout  = 2 * time.Second
	__DefaultPageSize = 64
)

// Cfg blob表配置
type Cfg struct {
	CassandraEndpoints []string `json:"cassandra_endpoints"`
	Keyspace           string   `json:"keyspace"`
	TableName          string   `json:"table_name"`
	KeyColumn          string   `json:"key_column"`
	SeqColumn          string   `json:"seq_column"`
	BlobColumn         string   `json:"blob_column"`
	PageSize           int      `json:"page_size"`
}

// NewConfig 生成默认配置.
// CREATE KEYSPACE IF NOT EXISTS quick_reader WITH replication = {'class':'SimpleStrategy', 'replication_factor': 3};
func NewConfig(table string) *Cfg {
	return &Cfg{
		Keyspace:   "quick_reader",
		TableName:  table,
		KeyColumn:  "stream_id",
		SeqColumn:  "seq",
		BlobColumn: "chunk",
		PageSize:   __DefaultPageSize,
	}
}

// Connect 创建cassandra会话.
func Connect(cfg *Cfg) (*gocql.Session, error) {
	if cfg.Keyspace == "" {
		return nil, errors.New("no keyspace")
	}

	clusterCfg := gocql.NewCluster(cfg.CassandraEndpoints...)
	clusterCfg.ConnectTimeout = __DefaultTimeout
	clusterCfg.Timeout = __DefaultTimeout
	clusterCfg.Keyspace = cfg.Keyspace

	session, err := clusterCfg.CreateSession()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to cassandra cluster (%v)", cfg.CassandraEndpoints)
	}
	log.Info().Str("keyspace", cfg.Keyspace).Msg("cassandra session created")
	return session, nil
}

// CreateTable 创建blob表, 同一个key下的chunk按seq升序存放.
func CreateTable(session *gocql.Session, cfg *Cfg) error {
	cql := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
		%s text,
		%s int,
		%s blob,
		PRIMARY KEY (%s, %s)
	) WITH CLUSTERING ORDER BY (%s ASC)`,
		cfg.Keyspace, cfg.TableName,
		cfg.KeyColumn, cfg.SeqColumn, cfg.BlobColumn,
		cfg.KeyColumn, cfg.SeqColumn, cfg.SeqColumn)
	return session.Query(cql).Exec()
}

// SelectCQL 返回按seq顺序读取key下所有chunk的查询语句.
func (cfg *Cfg) SelectCQL() string {
	return fmt.Sprintf("SELECT %s FROM %s.%s WHERE %s = ? ORDER BY %s ASC",
		cfg.BlobColumn, cfg.Keyspace, cfg.TableName, cfg.KeyColumn, cfg.SeqColumn)
}

// BlobSource 将查询结果适配为chunk数据源, 每一行的blob是一个chunk.
type BlobSource struct {
	scanner   gocql.Scanner
	exhausted bool
	err       error
}

// NewBlobSource 返回BlobSource实例.
func NewBlobSource(scanner gocql.Scanner) *BlobSource {
	return &BlobSource{scanner: scanner}
}

// Open 查询key下的所有chunk并返回BlobSource实例, 结果按PageSize分页拉取.
func Open(ctx context.Context, session *gocql.Session, cfg *Cfg, key interface{}) *BlobSource {
	q := session.Query(cfg.SelectCQL(), key).WithContext(ctx)
	if cfg.PageSize > 0 {
		q = q.PageSize(cfg.PageSize)
	}
	return NewBlobSource(q.Iter().Scanner())
}

// Pull 返回下一行的blob, 所有行读完时返回io.EOF.
func (s *BlobSource) Pull(ctx context.Context) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.exhausted {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !s.scanner.Next() {
		s.exhausted = true
		if err := s.scanner.Err(); err != nil {
			s.err = errors.Wrap(err, "failed to iterate blobs")
			return nil, s.err
		}
		return nil, io.EOF
	}

	var blob []byte
	if err := s.scanner.Scan(&blob); err != nil {
		s.err = errors.Wrap(err, "failed to scan blob")
		return nil, s.err
	}
	return blob, nil
}
