// fizzbuzz publishes Fizz and Buzz commands on two timers and detects
// when both arrive at the same time.
//
// Commands travel as discriminated-union JSON inside CloudEvents, either
// through an in-process broker (--transport=memory, the default) or a
// RabbitMQ queue (--transport=rabbitmq). Configuration is read from
// FIZZBUZZ_* environment variables, dotenv files and flags, in increasing
// order of precedence.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/fxsml/unioncase/config"
	"github.com/fxsml/unioncase/fizzbuzz"
	"github.com/fxsml/unioncase/message"
	"github.com/fxsml/unioncase/stream"
	"github.com/fxsml/unioncase/transport"
	"github.com/fxsml/unioncase/union"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	transport      string
	amqpURL        string
	queue          string
	source         string
	runFor         time.Duration
	fizzInterval   time.Duration
	buzzInterval   time.Duration
	window         time.Duration
	metricsAddr    string
	logLevel       string
	envFiles       []string
	legacyFallback bool
	validate       bool
}

type subscriber interface {
	Subscribe(ctx context.Context) (<-chan *message.TypedMessage[fizzbuzz.Command], error)
}

func run(args []string) error {
	var opts options

	flagSet := pflag.NewFlagSet("fizzbuzz", pflag.ContinueOnError)
	flagSet.StringVar(&opts.transport, "transport", "memory", "message transport: memory or rabbitmq")
	flagSet.StringVar(&opts.amqpURL, "amqp-url", transport.DefaultURL, "RabbitMQ connection URL")
	flagSet.StringVar(&opts.queue, "queue", "", "RabbitMQ queue (default: name of the command type)")
	flagSet.StringVar(&opts.source, "source", transport.DefaultSource, "CloudEvents source attribute")
	flagSet.DurationVar(&opts.runFor, "run-for", 50*time.Second, "time after which the producer halts")
	flagSet.DurationVar(&opts.fizzInterval, "fizz-interval", 3*time.Second, "interval between Fizz commands")
	flagSet.DurationVar(&opts.buzzInterval, "buzz-interval", 5*time.Second, "interval between Buzz commands")
	flagSet.DurationVar(&opts.window, "window", 50*time.Millisecond, "maximum distance of simultaneous commands")
	flagSet.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	flagSet.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flagSet.StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "dotenv files with FIZZBUZZ_* variables")
	flagSet.BoolVar(&opts.legacyFallback, "legacy-fallback", false, "resolve untagged objects to the first case with fields")
	flagSet.BoolVar(&opts.validate, "validate", false, "check event data against the JSON Schema of the commands")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(os.Stderr, flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(os.Stderr, flagSet)
		return nil
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return fmt.Errorf("unexpected argument: %s", rest[0])
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	metrics, err := fizzbuzz.NewMetrics(reg)
	if err != nil {
		return err
	}

	pcfg, dcfg, rcfg, err := load(flagSet, opts)
	if err != nil {
		return err
	}
	pcfg.Logger, pcfg.Metrics = logger, metrics
	dcfg.Logger, dcfg.Metrics, dcfg.Trace = logger, metrics, os.Stdout
	rcfg.Logger, rcfg.OnDecodeError = logger, metrics.DecodeFailed

	codecOpts := []union.Option[fizzbuzz.Command]{union.WithLogger[fizzbuzz.Command](logger)}
	if opts.legacyFallback {
		codecOpts = append(codecOpts, union.WithFirstMatchFallback[fizzbuzz.Command]())
	}
	ecfg := transport.EnvelopeConfig{Source: opts.source}
	if opts.validate {
		if ecfg.Validator, err = union.NewSchemaValidator(fizzbuzz.Registry()); err != nil {
			return err
		}
	}
	env := transport.NewEnvelope(union.NewCodec(fizzbuzz.Registry(), codecOpts...), ecfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.metricsAddr != "" {
		srv := &http.Server{
			Addr:              opts.metricsAddr,
			Handler:           promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", "component", "main", "error", err)
			}
		}()
		defer srv.Close()
		logger.Info("Serving metrics", "component", "main", "addr", opts.metricsAddr)
	}

	var (
		pub fizzbuzz.Publisher
		sub subscriber
	)
	switch strings.ToLower(opts.transport) {
	case "memory":
		m := transport.NewMemory(env, transport.MemoryConfig{
			Logger:        logger,
			OnDecodeError: metrics.DecodeFailed,
		})
		defer m.Close()
		pub, sub = m, m
	case "rabbitmq":
		p := transport.NewRabbitPublisher(env, rcfg)
		if err := p.Connect(ctx); err != nil {
			return err
		}
		defer p.Close()
		pub, sub = p, transport.NewRabbitSubscriber(env, rcfg)
	default:
		return fmt.Errorf("unknown --transport %q", opts.transport)
	}

	return detect(ctx, logger, pub, sub, pcfg, dcfg)
}

// detect runs producer and detector until the Halt command has been
// consumed or ctx is cancelled.
func detect(
	ctx context.Context,
	logger *slog.Logger,
	pub fizzbuzz.Publisher,
	sub subscriber,
	pcfg fizzbuzz.ProducerConfig,
	dcfg fizzbuzz.DetectorConfig,
) error {
	subCtx, unsubscribe := context.WithCancel(ctx)
	defer unsubscribe()

	msgs, err := sub.Subscribe(subCtx)
	if err != nil {
		return err
	}
	cmds := stream.Transform(msgs, func(msg *message.TypedMessage[fizzbuzz.Command]) fizzbuzz.Command {
		msg.Ack()
		return msg.Data
	})

	produced := make(chan error, 1)
	go func() {
		produced <- fizzbuzz.NewProducer(pub, pcfg).Run(ctx)
	}()

	for e := range fizzbuzz.NewDetector(dcfg).Detect(cmds) {
		switch e.Kind {
		case fizzbuzz.EventHalt:
			logger.Info("Producer halted, stopping", "component", "main")
			unsubscribe()
		default:
			fmt.Fprintln(os.Stdout, e)
		}
	}

	if err := <-produced; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// load reads the component configs from dotenv files and the environment
// and applies explicitly set flags on top.
func load(flagSet *pflag.FlagSet, opts options) (
	pcfg fizzbuzz.ProducerConfig,
	dcfg fizzbuzz.DetectorConfig,
	rcfg transport.RabbitConfig,
	err error,
) {
	loader := config.Loader{Files: opts.envFiles}
	if err = loader.Load("producer", &pcfg); err != nil {
		return
	}
	if err = loader.Load("detector", &dcfg); err != nil {
		return
	}
	if err = loader.Load("rabbitmq", &rcfg); err != nil {
		return
	}

	set := func(name string, apply func()) {
		if flagSet.Changed(name) {
			apply()
		}
	}
	set("run-for", func() { pcfg.RunFor = opts.runFor })
	set("fizz-interval", func() { pcfg.FizzInterval = opts.fizzInterval })
	set("buzz-interval", func() { pcfg.BuzzInterval = opts.buzzInterval })
	set("window", func() { dcfg.Window = opts.window })
	set("amqp-url", func() { rcfg.URL = opts.amqpURL })
	set("queue", func() { rcfg.Queue = opts.queue })
	return
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprint(w, `fizzbuzz publishes Fizz every 3s and Buzz every 5s and prints FizzBuzz
when two consecutive commands are created within the detection window.

Environment variables (overridden by flags):
`)
	for _, keys := range [][]string{
		config.Keys("producer", fizzbuzz.ProducerConfig{}),
		config.Keys("detector", fizzbuzz.DetectorConfig{}),
		config.Keys("rabbitmq", transport.RabbitConfig{}),
	} {
		for _, key := range keys {
			fmt.Fprintf(w, "  %s\n", key)
		}
	}
	fmt.Fprint(w, `
Usage: fizzbuzz [flags]

Flags:
`)
	flagSet.SetOutput(w)
	flagSet.PrintDefaults()
}
