// Package tray shows inputhubd's status as a system tray icon — a thin,
// optional presentation layer over the daemon's own control API (§6). It
// never touches /dev/input itself; it polls the HTTP control server that
// cmd/inputhubd's control API exposes and reflects what it reports.
package tray

import (
	"strconv"
	"strings"

	"fyne.io/systray"
)

// RunOpts configures the system tray.
type RunOpts struct {
	Version          string // daemon version string (e.g., "1.0.0")
	AutoStartEnabled bool   // initial state of "Start on Login" checkbox
	OnReady          func()
	OnAutoStart      func(enabled bool) // called when user toggles auto-start
	OnOpenDump       func()             // called when user opens the device dump in a browser
	OnQuit           func()
}

var (
	statusItem *systray.MenuItem
	titleLabel string
)

// Run starts the system tray. It blocks on the calling goroutine, so callers
// that also run other background work (e.g. polling the control API) must
// start that work from OnReady.
func Run(opts RunOpts) {
	systray.Run(func() {
		systray.SetIcon(IconIdle)
		systray.SetTitle("")
		systray.SetTooltip("Input Hub — connecting")

		titleLabel = "Input Hub"
		if opts.Version != "" && opts.Version != "dev" {
			titleLabel += " v" + strings.TrimPrefix(opts.Version, "v")
		}
		mTitle := systray.AddMenuItem(titleLabel, "")
		mTitle.Disable()

		systray.AddSeparator()

		mDump := systray.AddMenuItem("View devices...", "Open the device dump in a browser")
		mAutoStart := systray.AddMenuItemCheckbox("Start on Login", "Launch automatically on login", opts.AutoStartEnabled)

		systray.AddSeparator()

		mStatus := systray.AddMenuItem("Status: connecting", "")
		mStatus.Disable()
		statusItem = mStatus

		systray.AddSeparator()

		mQuit := systray.AddMenuItem("Quit", "Stop inputhubd")

		if opts.OnReady != nil {
			opts.OnReady()
		}

		go func() {
			for {
				select {
				case <-mDump.ClickedCh:
					if opts.OnOpenDump != nil {
						opts.OnOpenDump()
					}
				case <-mAutoStart.ClickedCh:
					if mAutoStart.Checked() {
						mAutoStart.Uncheck()
						if opts.OnAutoStart != nil {
							opts.OnAutoStart(false)
						}
					} else {
						mAutoStart.Check()
						if opts.OnAutoStart != nil {
							opts.OnAutoStart(true)
						}
					}
				case <-mQuit.ClickedCh:
					if opts.OnQuit != nil {
						opts.OnQuit()
					}
					systray.Quit()
				}
			}
		}()
	}, func() {
		// cleanup on systray exit
	})
}

// SetDeviceCount updates the tray icon, tooltip and status line to reflect
// how many devices the daemon currently has registered. A negative count
// means the control API is unreachable.
func SetDeviceCount(n int) {
	if n < 0 {
		systray.SetIcon(IconAlert)
		systray.SetTooltip("Input Hub — unreachable")
		if statusItem != nil {
			statusItem.SetTitle("Status: control API unreachable")
		}
		return
	}
	if n == 0 {
		systray.SetIcon(IconIdle)
		systray.SetTooltip("Input Hub — no devices")
	} else {
		systray.SetIcon(IconBusy)
		systray.SetTooltip("Input Hub — ready")
	}
	if statusItem != nil {
		statusItem.SetTitle(pluralDevices(n))
	}
}

func pluralDevices(n int) string {
	if n == 1 {
		return "Status: 1 device"
	}
	return "Status: " + strconv.Itoa(n) + " devices"
}

// Quit stops the system tray.
func Quit() {
	systray.Quit()
}
