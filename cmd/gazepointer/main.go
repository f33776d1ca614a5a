// Gaze Pointer - hands-free pointing with a head-mounted eye tracker.
// Maps gaze onto the screen, clicks on dwell and streams the pointer
// position as UDP datagrams.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/teslashibe/go-gazepointer/internal/config"
	"github.com/teslashibe/go-gazepointer/internal/log"
	"github.com/teslashibe/go-gazepointer/pkg/app"
)

func main() {
	env, err := config.Load(".env")
	if err != nil {
		log.Init("info")
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}

	cfg := parseFlags(env)

	level := env.LogLevel
	if cfg.Debug {
		level = "debug"
	}
	log.InitWithFile(level, env.LogFile)
	log.Debug("environment loaded", "udp_addr", env.UDPAddr(), "web_port", env.WebPort, "rtp_addr", env.RTPAddr)

	a, err := app.New(cfg)
	if err != nil {
		log.Error("configuration error", "error", err)
		os.Exit(1)
	}

	if err := a.Init(); err != nil {
		log.Error("initialization failed", "error", err)
		os.Exit(1)
	}
	defer a.Shutdown()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		log.Error("runtime error", "error", err)
		a.Shutdown()
		os.Exit(1)
	}
}

// parseFlags parses command line flags on top of the environment.
func parseFlags(env config.Config) app.Config {
	cfg := app.DefaultConfig()
	cfg.ApplyEnv(env)

	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	debugGaze := flag.Bool("debug-gaze", false, "Log every gaze sample (very verbose)")
	source := flag.String("source", cfg.Source, "Gaze source: rtp, replay, companion")
	replay := flag.String("replay", "", "Recorded gaze file (JSON lines) for -source replay")
	fast := flag.Bool("fast", false, "Replay as fast as possible instead of in real time")
	rtpAddr := flag.String("rtp", cfg.RTPAddr, "Local address for gaze RTP packets")
	companions := flag.String("companion", "", "Comma separated companion app addresses for -source companion")
	udpHost := flag.String("udp-host", cfg.UDPHost, "Pointer datagram host")
	udpPort := flag.Int("udp-port", cfg.UDPPort, "Pointer datagram port")
	webPort := flag.String("web-port", cfg.WebPort, "Dashboard port (empty disables)")
	mapper := flag.String("mapper", cfg.Mapper, "Surface mapper: passthrough, homography (needs an embedded marker detector)")
	mouse := flag.Bool("mouse", false, "Move the cursor and click on dwell")
	diagnostics := flag.Bool("diagnostics", false, "Also send raw and surface gaze as JSON datagrams")
	dwellTime := flag.Float64("dwell-time", cfg.Pointer.Settings.DwellTime, "Dwell time in seconds")
	dwellRadius := flag.Float64("dwell-radius", cfg.Pointer.Settings.DwellRadius, "Dwell radius in pixels")
	smoothing := flag.Float64("smoothing", cfg.Pointer.Settings.Smoothing, "Pointer smoothing (0 = raw gaze, 1 = frozen)")
	flag.Parse()

	cfg.Debug, cfg.DebugGaze = *debug, *debugGaze
	cfg.Source, cfg.ReplayPath, cfg.ReplayPaced = *source, *replay, !*fast
	cfg.RTPAddr = *rtpAddr
	cfg.UDPHost, cfg.UDPPort, cfg.WebPort = *udpHost, *udpPort, *webPort
	cfg.Mapper = *mapper
	cfg.MouseEnabled, cfg.Diagnostics = *mouse, *diagnostics
	cfg.Pointer.Settings.DwellTime = *dwellTime
	cfg.Pointer.Settings.DwellRadius = *dwellRadius
	cfg.Pointer.Settings.Smoothing = *smoothing

	for _, c := range strings.Split(*companions, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cfg.Companions = append(cfg.Companions, c)
		}
	}
	return cfg
}
