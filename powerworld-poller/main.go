package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	rtu "github.com/bangzek/powerworld-rtu"
	"github.com/bangzek/powerworld-rtu/config"
	"github.com/bangzek/powerworld-rtu/gateway"
	"github.com/bangzek/powerworld-rtu/metrics"
	"github.com/bangzek/powerworld-rtu/powerworld"
)

func main() {
	cfgPath := flag.String("config", "powerworld.yaml", "config file")
	cmd := flag.String("cmd", "", "run one command, e.g. operation-mode=heating, and exit")
	once := flag.Bool("once", false, "poll once, print the sample and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: %s [-config FILE] [-cmd TARGET=LEVEL | -once]\n"+
				" e.g.: %s -cmd hot-water-setpoint=45\n",
			os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERR: %s\n", err)
		os.Exit(1)
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "ERR: %s\n", err)
		os.Exit(1)
	}
	config.Normalize(cfg)

	log := newLogger(cfg.Log)
	bridgeLogs(log)

	t, done, err := newTransport(cfg.Controller, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Transport")
	}
	defer done()

	o := &powerworld.Orchestrator{
		Transport:     t,
		Unit:          cfg.Controller.UnitID,
		Interval:      cfg.Poll.Interval(),
		RetryInterval: cfg.Poll.RetryInterval(),
		Log: log.With().
			Uint8("unit_id", cfg.Controller.UnitID).
			Str("transport", cfg.Controller.Transport).
			Logger(),
	}

	switch {
	case *cmd != "":
		var c powerworld.Command
		if c, err = powerworld.ParseCommand(*cmd); err != nil {
			done()
			log.Fatal().Err(err).Msg("Command")
		}
		err = o.Execute(c)
		done()
		if err != nil {
			os.Exit(1)
		}
		return
	case *once:
		o.Sink = printSink{os.Stdout}
		_, err = o.Poll(time.Now())
		done()
		if err != nil {
			os.Exit(1)
		}
		return
	}

	sinks := multiSink{logSink{log}}
	if cfg.Metrics.Listen != "" {
		reg := prometheus.NewRegistry()
		sinks = append(sinks, metrics.New(reg))
		go serveMetrics(cfg.Metrics.Listen, reg, log)
	}
	o.Sink = sinks

	run(o)
	log.Info().Msg("Stopped")
}

func run(o *powerworld.Orchestrator) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	o.Tick(time.Now())
	for {
		select {
		case <-sig:
			return
		case now := <-tick.C:
			o.Tick(now)
		}
	}
}

func newLogger(c config.LogConfig) zerolog.Logger {
	var w io.Writer = os.Stderr
	if c.Console {
		w = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.DateTime}
	}
	lvl, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// bridgeLogs sends the rtu library hooks to l.
func bridgeLogs(l zerolog.Logger) {
	l = l.With().Str("component", "rtu").Logger()
	rtu.InfoLogFunc = func(f string, a ...any) { l.Info().Msgf(f, a...) }
	rtu.WarnLogFunc = func(f string, a ...any) { l.Warn().Msgf(f, a...) }
	if l.GetLevel() <= zerolog.DebugLevel {
		rtu.DebugLogFunc = func(f string, a ...any) { l.Debug().Msgf(f, a...) }
	}
}

func newTransport(
	c config.ControllerConfig, log zerolog.Logger,
) (powerworld.Transport, func(), error) {
	switch c.Transport {
	case config.TransportModbusTCP:
		t, err := gateway.New(gateway.Config{
			Endpoint: c.Address,
			Timeout:  c.Timeout(),
			Gap:      c.Gap(),
			Attempts: c.Attempts,
		}, log.With().Str("component", "gateway").Logger())
		if err != nil {
			return nil, nil, err
		}
		return t, func() { t.Close() }, nil

	case config.TransportSerial:
		con := &rtu.Controller{
			Port: &rtu.SerialPort{
				Dev:      c.Device,
				Baudrate: c.Baudrate,
				Parity:   c.Parity,
				StopBits: c.StopBits,
			},
			Timeout:  c.Timeout(),
			Gap:      c.Gap(),
			Attempts: c.Attempts,
			KeepOpen: true,
		}
		return con, con.Close, nil

	case config.TransportRTUOverTCP:
		con := &rtu.Controller{
			Port: &rtu.TCPPort{
				Addr:    c.Address,
				Timeout: c.Timeout(),
			},
			Timeout:  c.Timeout(),
			Gap:      c.Gap(),
			Attempts: c.Attempts,
		}
		return con, con.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown transport %q", c.Transport)
}

func serveMetrics(addr string, reg *prometheus.Registry, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info().Str("listen", addr).Msg("Serving metrics")
	if err := srv.ListenAndServe(); err != nil &&
		!errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Metrics server")
	}
}
