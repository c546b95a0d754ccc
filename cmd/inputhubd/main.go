// Command inputhubd runs the input core as a standalone daemon: it opens
// every evdev node under a configured directory, classifies and maps each
// one, and logs the resulting cooked event stream.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/rawinput/inputhub/eventhub"
	"github.com/rawinput/inputhub/input"
	"github.com/rawinput/inputhub/internal/envconfig"
	"github.com/rawinput/inputhub/internal/server"
	"github.com/rawinput/inputhub/internal/settings"
	"github.com/rawinput/inputhub/policy"
	"github.com/rawinput/inputhub/reader"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var displayWidth, displayHeight int
	var noControlAPI bool

	cmd := &cobra.Command{
		Use:     "inputhubd",
		Short:   "Input event hub and device registry daemon",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			var widthOverride, heightOverride int32
			if cmd.Flags().Changed("display-width") {
				widthOverride = int32(displayWidth)
			}
			if cmd.Flags().Changed("display-height") {
				heightOverride = int32(displayHeight)
			}
			return run(configPath, widthOverride, heightOverride, !noControlAPI)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to an inputhub config file (optional)")
	cmd.Flags().IntVar(&displayWidth, "display-width", 1080, "display width in pixels, for touch coordinate scaling (persisted once set)")
	cmd.Flags().IntVar(&displayHeight, "display-height", 1920, "display height in pixels, for touch coordinate scaling (persisted once set)")
	cmd.Flags().BoolVar(&noControlAPI, "no-control-api", false, "disable the loopback HTTP control API")

	cmd.AddCommand(newDumpCmd(&configPath))
	cmd.AddCommand(newAutostartCmd())
	return cmd
}

// run resolves display geometry from the persisted settings store, letting
// an explicit --display-width/--display-height flag override and re-persist
// it, then starts the daemon proper.
func run(configPath string, widthOverride, heightOverride int32, withControlAPI bool) error {
	logger := charmlog.New(os.Stderr)
	logger.SetPrefix("inputhubd")

	cfg, err := envconfig.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	hub, err := eventhub.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create event hub: %w", err)
	}
	defer hub.Close()

	sett, err := settings.Load()
	if err != nil {
		logger.Warn("could not load persisted settings, using defaults", "err", err)
		sett = settings.Default()
	}
	display := sett.Display()
	if widthOverride != 0 {
		display.Width = widthOverride
	}
	if heightOverride != 0 {
		display.Height = heightOverride
	}
	if widthOverride != 0 || heightOverride != 0 {
		if err := sett.SetDisplay(display.Width, display.Height, display.Orientation); err != nil {
			logger.Warn("could not persist display geometry", "err", err)
		}
	}

	pol := policy.NewStatic(display.Width, display.Height, display.Orientation)
	registry := reader.NewRegistry(hub, pol)
	listener := newLoggingListener(logger)
	rd := reader.New(hub, registry, listener, logger)

	if withControlAPI {
		ctl := server.New(registry, hub, pol, sett, version, logger)
		if _, err := ctl.Start(); err != nil {
			logger.Warn("control api failed to start", "err", err)
		} else {
			defer ctl.Stop()
		}
	}

	stop := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		logger.Info("shutting down")
		close(stop)
		hub.Wake()
	}()

	logger.Info("inputhubd starting", "device_dir", cfg.DeviceDir)
	rd.Run(stop)
	return nil
}

// loggingListener is the default input.Listener for standalone operation:
// it logs every cooked notification rather than forwarding it anywhere,
// useful for bring-up and for the `dump` subcommand's dry run.
type loggingListener struct {
	log *charmlog.Logger
}

func newLoggingListener(log *charmlog.Logger) *loggingListener {
	return &loggingListener{log: log}
}

func (l *loggingListener) NotifyConfigurationChanged(e input.ConfigurationChangedEvent) {
	l.log.Debug("configuration changed", "when", e.When)
}

func (l *loggingListener) NotifyDeviceReset(e input.DeviceResetEvent) {
	l.log.Info("device reset", "device", e.DeviceID)
}

func (l *loggingListener) NotifyKey(e input.KeyEvent) {
	l.log.Info("key", "device", e.DeviceID, "action", e.Action, "keycode", e.KeyCode, "flags", e.Flags)
}

func (l *loggingListener) NotifyMotion(e input.MotionEvent) {
	l.log.Debug("motion", "device", e.DeviceID, "action", e.Action, "pointers", len(e.Pointers))
}

func (l *loggingListener) NotifySwitch(e input.SwitchEvent) {
	l.log.Info("switch", "code", e.SwitchCode, "value", e.SwitchValue)
}

var _ input.Listener = (*loggingListener)(nil)
