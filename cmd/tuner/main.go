package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/RyanBlaney/sonido-tuner/algorithms/common"
	"github.com/RyanBlaney/sonido-tuner/capture"
	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/RyanBlaney/sonido-tuner/playback"
	"github.com/RyanBlaney/sonido-tuner/preset"
	"github.com/RyanBlaney/sonido-tuner/transcode"
	"github.com/RyanBlaney/sonido-tuner/tuner"
)

type options struct {
	presets   string
	tuning    string
	str       int
	input     string
	file      string
	toneFreq  float64
	frameSize int
	rate      int
	window    string
	reference bool
	logLevel  string
	verbose   bool
	list      bool
}

func main() {
	_ = godotenv.Load()

	opts, err := parseOptions(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := run(opts, os.Stdout); err != nil {
		logging.Error(err, "Tuner exited with an error")
		os.Exit(1)
	}
}

// parseOptions layers flags over environment variables over defaults.
func parseOptions(args []string, getenv func(string) string) (*options, error) {
	env := func(key, fallback string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return fallback
	}
	envInt := func(key string, fallback int) int {
		if v, err := strconv.Atoi(getenv(key)); err == nil {
			return v
		}
		return fallback
	}

	opts := &options{}
	fs := flag.NewFlagSet("tuner", flag.ContinueOnError)
	fs.StringVar(&opts.presets, "presets", env("TUNER_PRESETS", ""), "tuning catalog (.json, .yaml); empty uses the builtin catalog")
	fs.StringVar(&opts.tuning, "tuning", env("TUNER_TUNING", "Standard"), "tuning name to select")
	fs.IntVar(&opts.str, "string", envInt("TUNER_STRING", 0), "string number to target; 0 targets the first string")
	fs.StringVar(&opts.input, "input", env("TUNER_INPUT", "mic"), "frame source: mic, file or tone")
	fs.StringVar(&opts.file, "file", env("TUNER_FILE", ""), "audio file for -input file, - reads stdin")
	fs.Float64Var(&opts.toneFreq, "tone-freq", 110, "tone frequency for -input tone")
	fs.IntVar(&opts.frameSize, "frame", envInt("TUNER_FRAME_SIZE", 4096), "samples per analysis frame")
	fs.IntVar(&opts.rate, "rate", envInt("TUNER_SAMPLE_RATE", 48000), "sample rate in Hz")
	fs.StringVar(&opts.window, "window", env("TUNER_WINDOW", "rectangular"), "analysis window: rectangular, hann, hamming, blackman")
	fs.BoolVar(&opts.reference, "reference", false, "play the target pitch")
	fs.StringVar(&opts.logLevel, "log-level", env("TUNER_LOG_LEVEL", "info"), "log level")
	fs.BoolVar(&opts.verbose, "v", false, "debug logging")
	fs.BoolVar(&opts.list, "list", false, "list tunings and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch opts.input {
	case "mic", "file", "tone":
	default:
		return nil, fmt.Errorf("unknown input %q: want mic, file or tone", opts.input)
	}
	if opts.input == "file" && opts.file == "" {
		return nil, errors.New("-input file requires -file")
	}
	if opts.frameSize < 2 || opts.rate <= 0 {
		return nil, fmt.Errorf("invalid frame size %d or rate %d", opts.frameSize, opts.rate)
	}
	return opts, nil
}

func run(opts *options, out io.Writer) error {
	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	if opts.verbose {
		level = logging.DebugLevel
	}
	logging.SetLevel(level)
	logger := logging.WithFields(logging.Fields{"component": "cli"})

	catalog := loadCatalog(opts.presets, logger)
	if opts.list {
		printCatalog(out, catalog)
		return nil
	}
	checkFrameSize(opts.frameSize, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, done, closeSource, err := openSource(ctx, opts)
	if err != nil {
		return err
	}
	defer closeSource()

	session, err := tuner.NewSession(source, &tuner.Config{Window: opts.window})
	if err != nil {
		return err
	}
	session.LoadTunings(catalog)
	if err := session.SelectTuningByName(opts.tuning); err != nil {
		logger.Warn("Tuning not found, status stays unknown", logging.Fields{"tuning": opts.tuning})
	}
	if opts.str > 0 {
		if err := session.SelectStringNumber(opts.str); err != nil {
			logger.Warn("String not found", logging.Fields{"string": opts.str})
		}
	}

	if opts.reference {
		ref, err := playback.NewReferenceTone(&playback.ReferenceConfig{
			SampleRate: opts.rate,
			Volume:     0.4,
		})
		if err != nil {
			logger.Error(err, "Reference tone unavailable")
		} else {
			defer ref.Close()
			ref.SetFrequency(session.Target())
			ref.Play()
		}
	}

	states, cancel := session.Subscribe(8)
	defer cancel()

	if err := session.Start(); err != nil {
		return err
	}
	defer session.Stop()

	printer := newStatusPrinter(out)
	for {
		select {
		case <-ctx.Done():
			printer.finish()
			return nil
		case <-done:
			drain(states, printer)
			printer.finish()
			stats := session.Stats()
			logger.Info("Input finished", logging.Fields{
				"processed": stats.Processed,
				"skipped":   stats.Skipped,
				"rejected":  stats.Rejected,
			})
			return nil
		case st := <-states:
			printer.print(st)
		}
	}
}

// checkFrameSize warns when the estimator will drop the tail of each frame.
func checkFrameSize(frameSize int, logger logging.Logger) {
	if common.IsPowerOfTwo(frameSize) {
		return
	}
	logger.Warn("Frame size is not a power of two, only the leading samples are analyzed", logging.Fields{
		"frame_size": frameSize,
		"analyzed":   common.PreviousPowerOfTwo(frameSize),
	})
}

// drain prints states that were published before the input finished but not
// yet received.
func drain(states <-chan tuner.TuningState, printer *statusPrinter) {
	for {
		select {
		case st := <-states:
			printer.print(st)
		default:
			return
		}
	}
}

func loadCatalog(path string, logger logging.Logger) []tuner.Tuning {
	if path == "" {
		return preset.Builtin()
	}
	tunings, err := preset.Load(path)
	if err != nil {
		logger.Error(err, "Failed to load presets, continuing with an empty catalog")
		return nil
	}
	return tunings
}

// openSource builds the frame source. done is closed when a finite input
// runs out and is nil otherwise.
func openSource(ctx context.Context, opts *options) (tuner.FrameSource, <-chan struct{}, func(), error) {
	switch opts.input {
	case "file":
		cfg := transcode.DefaultDecoderConfig()
		cfg.TargetSampleRate = opts.rate
		decoder := transcode.NewDecoder(cfg)

		var src *transcode.PCMSource
		var err error
		if opts.file == "-" {
			src, err = transcode.NewStreamSource(ctx, decoder, os.Stdin, opts.frameSize)
		} else {
			src, err = transcode.NewFileSource(ctx, decoder, opts.file, opts.frameSize)
		}
		if err != nil {
			return nil, nil, nil, err
		}
		return src, src.Done(), func() {}, nil

	case "tone":
		src := capture.NewToneSource(opts.toneFreq, float64(opts.rate), opts.frameSize)
		return src, nil, func() {}, nil

	default:
		mic, err := capture.NewMicrophone(&capture.MicrophoneConfig{
			SampleRate: uint32(opts.rate),
			FrameSize:  opts.frameSize,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		return mic, nil, func() { _ = mic.Close() }, nil
	}
}

func printCatalog(out io.Writer, catalog []tuner.Tuning) {
	title := color.New(color.Bold)
	for _, t := range catalog {
		title.Fprintf(out, "%s", t.Name)
		if t.Description != "" {
			fmt.Fprintf(out, "  %s", t.Description)
		}
		fmt.Fprintln(out)
		for _, s := range t.Strings {
			fmt.Fprintf(out, "  %d  %-3s %7.2f Hz\n", s.String, s.Note, s.Frequency)
		}
	}
}

type statusPrinter struct {
	out  io.Writer
	last string

	inTune  *color.Color
	offTune *color.Color
	unknown *color.Color
}

func newStatusPrinter(out io.Writer) *statusPrinter {
	return &statusPrinter{
		out:     out,
		inTune:  color.New(color.FgGreen, color.Bold),
		offTune: color.New(color.FgYellow),
		unknown: color.New(color.FgHiBlack),
	}
}

func (p *statusPrinter) print(st tuner.TuningState) {
	line := formatState(st)
	if line == p.last {
		return
	}
	p.last = line

	c := p.unknown
	switch st.Status {
	case tuner.StatusInTune:
		c = p.inTune
	case tuner.StatusTooLow, tuner.StatusTooHigh:
		c = p.offTune
	}
	fmt.Fprint(p.out, "\r\033[K")
	c.Fprint(p.out, line)
}

func (p *statusPrinter) finish() {
	if p.last != "" {
		fmt.Fprintln(p.out)
	}
}

func formatState(st tuner.TuningState) string {
	note := st.Note
	if note == "" {
		note = "--"
	}
	line := fmt.Sprintf("%-4s %8.2f Hz", note, st.Frequency)
	if st.TargetFrequency > 0 {
		line += fmt.Sprintf("  target %7.2f Hz", st.TargetFrequency)
	}
	if hint := st.Status.Hint(); hint != "" {
		line += "  " + hint
	}
	return line
}
