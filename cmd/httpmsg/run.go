package main

import (
	"bufio"
	"flag"
	"io"
	"os"

	"github.com/dreamsmith-workshop/multiverse/config"
	"github.com/dreamsmith-workshop/multiverse/http/http1"
	"github.com/dreamsmith-workshop/multiverse/http/method"
	"github.com/dreamsmith-workshop/multiverse/internal/dump"
	"github.com/dreamsmith-workshop/multiverse/transport"
	"github.com/pkg/errors"
)

type options struct {
	response  bool
	head      bool
	canonical bool
	cfg       *config.Config
}

func defaultOptions() options {
	return options{cfg: config.Default()}
}

func (o *options) register(set *flag.FlagSet) {
	set.BoolVar(&o.response, "response", false, "parse responses instead of requests")
	set.BoolVar(&o.head, "head", false, "responses answer HEAD requests and carry no content")
	set.BoolVar(&o.canonical, "canonical", false, "print re-serialized messages instead of JSON")
	set.IntVar(&o.cfg.StartLine.Size.Maximal, "max-start-line", o.cfg.StartLine.Size.Maximal,
		"longest start-line accepted")
	set.IntVar(&o.cfg.Headers.MaxFieldSize, "max-field", o.cfg.Headers.MaxFieldSize,
		"longest field line accepted")
	set.IntVar(&o.cfg.Headers.Space.Maximal, "max-header-space", o.cfg.Headers.Space.Maximal,
		"total size of all field lines of a message")
	set.IntVar(&o.cfg.Headers.Number.Maximal, "max-headers", o.cfg.Headers.Number.Maximal,
		"maximal number of header fields")
	set.Uint64Var(&o.cfg.Body.MaxSize, "max-body", o.cfg.Body.MaxSize, "maximal body size")
	set.Uint64Var(&o.cfg.Body.MaxChunkSize, "max-chunk", o.cfg.Body.MaxChunkSize,
		"maximal chunk-size value")
}

// process reads from the file named by args, or from stdin if there's none. The file is
// closed before returning.
func process(args []string, stdin io.Reader, out io.Writer, opts options) error {
	switch len(args) {
	case 0:
		return run(stdin, out, opts)
	case 1:
		file, err := os.Open(args[0])
		if err != nil {
			return errors.Wrap(err, "open input")
		}

		defer file.Close()
		return run(file, out, opts)
	default:
		return errors.New("at most one input file is accepted")
	}
}

func run(src io.Reader, out io.Writer, opts options) error {
	if opts.response {
		parser := http1.NewResponseParser(opts.cfg)
		before := func() {}
		if opts.head {
			before = func() {
				parser.SetRequestMethod(method.HEAD)
			}
		}

		return emit(newReader(src, parser, opts.cfg), out, opts, before)
	}

	parser := http1.NewRequestParser(opts.cfg)

	return emit(newReader(src, parser, opts.cfg), out, opts, func() {})
}

func newReader[M transport.Message](src io.Reader, parser *http1.Parser[M], cfg *config.Config) *transport.Reader[M] {
	// files report deadlines as unsupported, so they're disabled
	return transport.NewReader(src, parser, cfg.NET, transport.WithTimeout(0))
}

func emit[M transport.Message](reader *transport.Reader[M], out io.Writer, opts options, before func()) error {
	w := bufio.NewWriter(out)

	for n := 1; ; n++ {
		before()
		msg, err := reader.Read()
		switch {
		case errors.Is(err, io.EOF):
			return w.Flush()
		case err != nil:
			// everything parsed before the failure is still worth printing
			_ = w.Flush()
			return errors.Wrapf(err, "message #%d", n)
		}

		if opts.canonical {
			_, err = http1.WriteTo(w, msg)
		} else {
			err = dump.Write(w, msg)
		}

		if err != nil {
			return errors.Wrap(err, "write")
		}
	}
}
