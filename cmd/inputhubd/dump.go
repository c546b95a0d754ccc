package main

import (
	"fmt"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/rawinput/inputhub/eventhub"
	"github.com/rawinput/inputhub/input"
	"github.com/rawinput/inputhub/internal/envconfig"
	"github.com/rawinput/inputhub/internal/settings"
	"github.com/rawinput/inputhub/policy"
	"github.com/rawinput/inputhub/reader"
)

// newDumpCmd mirrors the original reader's `dumpsys input` entry point: run
// discovery long enough to register every present device, then print a
// one-line summary per device and exit.
func newDumpCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print a snapshot of every classified input device and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(*configPath)
		},
	}
}

func runDump(configPath string) error {
	logger := charmlog.New(os.Stderr)
	logger.SetLevel(charmlog.WarnLevel)

	cfg, err := envconfig.Load(configPath)
	if err != nil {
		return err
	}
	hub, err := eventhub.New(cfg, logger)
	if err != nil {
		return err
	}
	defer hub.Close()

	sett, err := settings.Load()
	if err != nil {
		sett = settings.Default()
	}
	display := sett.Display()
	pol := policy.NewStatic(display.Width, display.Height, display.Orientation)
	registry := reader.NewRegistry(hub, pol)
	rd := reader.New(hub, registry, discardListener{}, logger)

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if err := rd.LoopOnce(); err != nil {
			return err
		}
	}

	fmt.Print(registry.Dump())
	return nil
}

type discardListener struct{}

func (discardListener) NotifyConfigurationChanged(input.ConfigurationChangedEvent) {}
func (discardListener) NotifyDeviceReset(input.DeviceResetEvent)                   {}
func (discardListener) NotifyKey(input.KeyEvent)                                  {}
func (discardListener) NotifyMotion(input.MotionEvent)                            {}
func (discardListener) NotifySwitch(input.SwitchEvent)                            {}

var _ input.Listener = discardListener{}
