// Command oxydraw draws two textured sprites through the renderer, in a window or headless on the recording
// device.
//
// Keys: C cycles the clear color, V toggles vsync, Space pauses the spinning sprite, Esc quits.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/Carmen-Shannon/oxy-gpu/common"
	"github.com/Carmen-Shannon/oxy-gpu/config"
	"github.com/Carmen-Shannon/oxy-gpu/engine"
	"github.com/Carmen-Shannon/oxy-gpu/engine/profiler"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gpu/engine/renderer/device"
	"github.com/Carmen-Shannon/oxy-gpu/engine/window"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML config file")
		headless   = flag.Bool("headless", false, "draw on the recording device instead of a window")
		frames     = flag.Int("frames", 120, "frames to draw in headless mode")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *headless {
		cfg.Backend = renderer.BackendTypeHeadless.String()
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	if err := run(cfg, *frames, os.Stdout); err != nil {
		log.Fatalf("oxydraw: %v", err)
	}
}

// run opens the configured backend and drives the demo scene until the window closes, or for frames
// frames when headless. A headless run writes its renderer counters to out.
func run(cfg config.Config, frames int, out io.Writer) error {
	backend, err := cfg.BackendType()
	if err != nil {
		return err
	}

	devCfg := cfg.DeviceConfig()
	var win window.Window
	if backend == renderer.BackendTypeWGPU {
		win, err = window.NewWindow(cfg.WindowOptions()...)
		if err != nil {
			return err
		}
		defer closeWindow(win)
		devCfg.Surface = win.SurfaceDescriptor()
		devCfg.Size = win.Size()
	}

	dev, err := renderer.NewDevice(backend, devCfg)
	if err != nil {
		return fmt.Errorf("failed to open %s device: %w", backend, err)
	}
	defer dev.Destroy()

	r := renderer.NewRenderer(dev, append(cfg.RendererOptions(), renderer.WithResolution(devCfg.Size))...)
	sc := newDemo(r.ClearColor())

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithRenderer(r),
		engine.WithFrameSource(sc.Frame),
		engine.WithProfiling(cfg.Profiler.Enabled),
		engine.WithProfilerOptions(profiler.WithInterval(cfg.Profiler.Interval)),
		engine.WithRenderFrameLimit(cfg.Renderer.FrameLimit),
	)

	if win == nil {
		if err := eng.RunFrames(frames); err != nil {
			return err
		}
		writeSummary(out, eng, dev)
		return nil
	}

	win.SetKeyDownCallback(func(key common.KeyCode) {
		switch key {
		case common.KeyC:
			r.SetClearColor(sc.CycleClearColor())
		case common.KeyV:
			r.SetVSync(!r.VSync())
			common.Logger().Info("vsync toggled", "enabled", r.VSync())
		case common.KeySpace:
			sc.TogglePause()
		}
	})
	return eng.Run()
}

// writeSummary prints what a headless run did.
func writeSummary(out io.Writer, eng engine.Engine, dev device.Device) {
	s := eng.Renderer().Stats()
	fmt.Fprintf(out, "frames=%d submissions=%d passes=%d draws=%d skipped_draws=%d pipelines=%d buffers=%d\n",
		eng.Frames(), s.Submissions, s.RenderPasses, s.DrawCalls, s.SkippedDraws, s.PipelinesBuilt, s.BuffersCreated)

	if rec, ok := dev.(*device.RecordingDevice); ok {
		for _, v := range rec.Violations() {
			fmt.Fprintf(out, "violation: %v\n", v)
		}
		for _, l := range rec.LiveResources() {
			fmt.Fprintf(out, "leaked: %s\n", l)
		}
	}
}

func closeWindow(w window.Window) {
	if err := w.Close(); err != nil {
		common.Logger().Debug("window already closed", "error", err)
	}
}
