package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/RyanBlaney/sonido-tuner/logging"
	"github.com/RyanBlaney/sonido-tuner/tuner"
)

func TestParseOptionsLayering(t *testing.T) {
	env := map[string]string{
		"TUNER_TUNING":     "Drop D",
		"TUNER_FRAME_SIZE": "2048",
		"TUNER_INPUT":      "tone",
	}
	getenv := func(k string) string { return env[k] }

	opts, err := parseOptions([]string{"-frame", "8192", "-string", "6"}, getenv)
	if err != nil {
		t.Fatal(err)
	}
	if opts.tuning != "Drop D" {
		t.Errorf("tuning = %q, want value from env", opts.tuning)
	}
	if opts.frameSize != 8192 {
		t.Errorf("frameSize = %d, flag should override env", opts.frameSize)
	}
	if opts.input != "tone" || opts.str != 6 || opts.rate != 48000 || opts.window != "rectangular" {
		t.Errorf("unexpected options %+v", opts)
	}
}

func TestParseOptionsRejects(t *testing.T) {
	none := func(string) string { return "" }
	for _, args := range [][]string{
		{"-input", "line-in"},
		{"-input", "file"},
		{"-frame", "1"},
		{"-rate", "0"},
	} {
		if _, err := parseOptions(args, none); err == nil {
			t.Errorf("parseOptions(%v) should fail", args)
		}
	}
}

func TestFormatState(t *testing.T) {
	tests := []struct {
		state tuner.TuningState
		want  []string
	}{
		{tuner.TuningState{}, []string{"--", "0.00 Hz"}},
		{
			tuner.TuningState{Note: "G#2", Frequency: 105.47, TargetFrequency: 110, Status: tuner.StatusTooLow},
			[]string{"G#2", "105.47 Hz", "target  110.00 Hz", "raise pitch"},
		},
		{
			tuner.TuningState{Note: "A4", Frequency: 440.2, TargetFrequency: 440, Status: tuner.StatusInTune, IsTuned: true},
			[]string{"A4", "in tune"},
		},
	}

	for _, tt := range tests {
		got := formatState(tt.state)
		for _, w := range tt.want {
			if !strings.Contains(got, w) {
				t.Errorf("formatState(%+v) = %q, missing %q", tt.state, got, w)
			}
		}
	}
}

func TestStatusPrinterSkipsRepeats(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	p := newStatusPrinter(&buf)

	st := tuner.TuningState{Note: "A2", Frequency: 110, TargetFrequency: 110, Status: tuner.StatusInTune}
	p.print(st)
	p.print(st)
	p.finish()

	if n := strings.Count(buf.String(), "A2"); n != 1 {
		t.Errorf("repeated state printed %d times, want 1: %q", n, buf.String())
	}
}

func TestRunListsBuiltinCatalog(t *testing.T) {
	color.NoColor = true
	logging.SetGlobalLogger(logging.NewMemoryLogger())
	defer logging.SetGlobalLogger(nil)

	opts, err := parseOptions([]string{"-list", "-input", "tone"}, func(string) string { return "" })
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := run(opts, &buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Standard", "Drop D", "82.41 Hz"} {
		if !strings.Contains(out, want) {
			t.Errorf("listing is missing %q:\n%s", want, out)
		}
	}
}

func TestRunWithMissingPresetsListsNothing(t *testing.T) {
	mem := logging.NewMemoryLogger()
	logging.SetGlobalLogger(mem)
	defer logging.SetGlobalLogger(nil)

	opts, err := parseOptions([]string{"-list", "-presets", "does-not-exist.json"}, func(string) string { return "" })
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := run(opts, &buf); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected an empty listing, got %q", buf.String())
	}

	var logged bool
	for _, e := range mem.Entries() {
		if e.Level == logging.ErrorLevel {
			logged = true
		}
	}
	if !logged {
		t.Errorf("a failed preset load should be logged")
	}
}

func TestDrainPrintsBufferedStates(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	p := newStatusPrinter(&buf)

	states := make(chan tuner.TuningState, 4)
	states <- tuner.TuningState{Note: "G#2", Frequency: 103.2, TargetFrequency: 110, Status: tuner.StatusTooLow}
	states <- tuner.TuningState{Note: "A2", Frequency: 110.1, TargetFrequency: 110, Status: tuner.StatusInTune, IsTuned: true}

	drain(states, p)
	p.finish()

	if len(states) != 0 {
		t.Errorf("%d states left in the channel", len(states))
	}
	if p.last != formatState(tuner.TuningState{Note: "A2", Frequency: 110.1, TargetFrequency: 110, Status: tuner.StatusInTune}) {
		t.Errorf("last printed line = %q, want the newest state", p.last)
	}
	if !strings.HasSuffix(buf.String(), "\n") {
		t.Errorf("finish should end the status line: %q", buf.String())
	}

	// an empty channel returns immediately
	drain(states, p)
}

func TestCheckFrameSize(t *testing.T) {
	mem := logging.NewMemoryLogger()

	checkFrameSize(4096, mem)
	if n := len(mem.Entries()); n != 0 {
		t.Fatalf("power-of-two frame logged %d entries", n)
	}

	checkFrameSize(4100, mem)
	entries := mem.Entries()
	if len(entries) != 1 || entries[0].Level != logging.WarnLevel {
		t.Fatalf("entries = %+v, want one warning", entries)
	}
	if got := entries[0].Fields["analyzed"]; got != 4096 {
		t.Errorf("analyzed = %v, want 4096", got)
	}
}

func TestParseOptionsAcceptsStdin(t *testing.T) {
	opts, err := parseOptions([]string{"-input", "file", "-file", "-"}, func(string) string { return "" })
	if err != nil {
		t.Fatal(err)
	}
	if opts.file != "-" {
		t.Errorf("file = %q, want -", opts.file)
	}
}
