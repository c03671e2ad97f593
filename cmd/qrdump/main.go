package main

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/usherasnick/quick-reader/compress"
	"github.com/usherasnick/quick-reader/fwriter"
	quickreader "github.com/usherasnick/quick-reader/quick-reader"
	streamio "github.com/usherasnick/quick-reader/stream-io"
	"github.com/usherasnick/quick-reader/tpsctrl"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Record 记录文件中的一条记录: u32 LE id, '\0'结尾的name, u8 age.
type Record struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
	Age  uint8  `json:"age"`
}

type options struct {
	format      string
	codec       string
	chunkSize   int
	maxQueueLen int
	rate        int
	verbose     bool
	output      string
	input       string
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var opts options
	app := kingpin.New("qrdump", "Decode a record file or a line file into NDJSON.")
	app.Flag("format", "Input layout: records ({u32 LE id, NUL-terminated name, u8 age}...) or lines.").Default("records").EnumVar(&opts.format, "records", "lines")
	app.Flag("codec", "Stream compression of the input.").Default("none").EnumVar(&opts.codec, "none", "snappy", "zstd")
	app.Flag("chunk-size", "Bytes requested per read from the input.").Default("16384").IntVar(&opts.chunkSize)
	app.Flag("max-queue-len", "Maximum bytes accumulated for one field, 0 means the process default.").Default("0").IntVar(&opts.maxQueueLen)
	app.Flag("rate", "Input bytes per second, 0 means unlimited.").Default("0").IntVar(&opts.rate)
	app.Flag("output", "Write NDJSON to this file instead of stdout; the file is replaced only when the whole input decodes.").Short('o').StringVar(&opts.output)
	app.Flag("verbose", "Log reader internals and counters.").Short('v').BoolVar(&opts.verbose)
	app.Arg("input", "File path or http(s) URL.").Required().StringVar(&opts.input)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if opts.verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if err := execute(context.Background(), &opts, os.Stdout); err != nil {
		log.Fatal().Err(err).Str("input", opts.input).Msg("failed to dump")
	}
}

// execute 输出到stdout, 或者原子地输出到opts.output.
func execute(ctx context.Context, opts *options, stdout io.Writer) error {
	if opts.output == "" {
		return run(ctx, opts, stdout)
	}
	w, err := fwriter.NewSafeWriter(opts.output)
	if err != nil {
		return err
	}
	if err = run(ctx, opts, w); err != nil {
		w.Abort()
		return err
	}
	return w.Commit()
}

func run(ctx context.Context, opts *options, out io.Writer) error {
	src, closer, err := openSource(ctx, opts)
	if err != nil {
		return err
	}
	defer closer()

	reg := prometheus.NewRegistry()
	r := quickreader.NewReader(tpsctrl.NewByteRateSource(src, opts.rate), &quickreader.Cfg{
		MaxQueueLen: opts.maxQueueLen,
		Metrics:     quickreader.NewMetrics(reg),
	})

	w := bufio.NewWriter(out)

	var n int
	switch opts.format {
	case "lines":
		n, err = dumpLines(ctx, r, w)
	default:
		n, err = dumpRecords(ctx, r, w)
	}
	logCounters(reg)
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = errors.Wrap(ferr, "flush output")
	}
	if err != nil {
		return err
	}
	log.Debug().Int("count", n).Msg("dump finished")
	return nil
}

func openSource(ctx context.Context, opts *options) (quickreader.Source, func(), error) {
	cfg := &streamio.ReaderSourceCfg{ChunkSize: opts.chunkSize}

	var in io.ReadCloser
	if strings.HasPrefix(opts.input, "http://") || strings.HasPrefix(opts.input, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.input, nil)
		if err != nil {
			return nil, nil, errors.Wrap(err, "new request")
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "get %s", opts.input)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, nil, errors.Errorf("get %s: %s", opts.input, resp.Status)
		}
		in = resp.Body
	} else if opts.codec == "none" {
		f, err := streamio.OpenFile(opts.input, cfg)
		if err != nil {
			return nil, nil, err
		}
		return f, func() { f.Close() }, nil
	} else {
		f, err := os.Open(opts.input)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "open %s", opts.input)
		}
		in = f
	}

	switch opts.codec {
	case "snappy":
		return compress.NewSnappySource(in, cfg), func() { in.Close() }, nil
	case "zstd":
		src, err := compress.NewZstdSource(in, cfg)
		if err != nil {
			in.Close()
			return nil, nil, err
		}
		return src, func() { src.Close(); in.Close() }, nil
	}
	return streamio.NewReaderSource(in, cfg), func() { in.Close() }, nil
}

// dumpRecords 解码记录直到数据流结束, 每条记录输出一行JSON.
func dumpRecords(ctx context.Context, r *quickreader.Reader, w io.Writer) (int, error) {
	if err := r.Pull(ctx); err != nil {
		return 0, err
	}
	enc := json.NewEncoder(w)

	var n int
	for !r.EOF() {
		var (
			rec Record
			err error
		)
		if rec.ID, err = r.U32().Get(ctx); err != nil {
			return n, err
		}
		if rec.Name, err = r.Txt().Get(ctx); err != nil {
			return n, err
		}
		if rec.Age, err = r.U8().Get(ctx); err != nil {
			return n, err
		}
		if err = enc.Encode(&rec); err != nil {
			return n, errors.Wrap(err, "encode record")
		}
		n++
	}
	return n, nil
}

// dumpLines 按行读取直到数据流结束, 最后一行可以没有换行符.
func dumpLines(ctx context.Context, r *quickreader.Reader, w io.Writer) (int, error) {
	r.SetEOFAsDelim(true)
	if err := r.Pull(ctx); err != nil {
		return 0, err
	}
	enc := json.NewEncoder(w)

	var n int
	for !r.EOF() {
		line, err := r.TxtLn().Get(ctx)
		if err != nil {
			return n, err
		}
		if err = enc.Encode(line); err != nil {
			return n, errors.Wrap(err, "encode line")
		}
		n++
	}
	return n, nil
}

func logCounters(reg *prometheus.Registry) {
	families, err := reg.Gather()
	if err != nil {
		log.Warn().Err(err).Msg("failed to gather counters")
		return
	}
	ev := log.Debug()
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			ev = ev.Float64(mf.GetName(), m.GetCounter().GetValue())
		}
	}
	ev.Msg("reader counters")
}
