// Command inputhub-tray is an optional desktop companion to inputhubd: a
// system tray icon that polls the daemon's loopback control API (§6) and
// shows how many devices it currently has registered. It has no input path
// of its own — inputhubd keeps running under systemd or as a root service
// whether or not this is open.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/rawinput/inputhub/internal/autostart"
	"github.com/rawinput/inputhub/internal/tray"
)

var version = "dev"

const pollInterval = 3 * time.Second

func main() {
	apiURL := flag.String("api", "http://127.0.0.1:8787", "inputhubd control API base URL")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	client := &http.Client{Timeout: 2 * time.Second}

	enabled := autostart.IsEnabled()

	tray.Run(tray.RunOpts{
		Version:          version,
		AutoStartEnabled: enabled,

		OnReady: func() {
			go pollStatus(ctx, client, *apiURL)
			log.Printf("[inputhub-tray] polling %s", *apiURL)
		},

		OnOpenDump: func() {
			openBrowser(*apiURL + "/dump")
		},

		OnAutoStart: func(on bool) {
			var err error
			if on {
				err = autostart.Enable()
			} else {
				err = autostart.Disable()
			}
			if err != nil {
				log.Printf("[inputhub-tray] autostart: %v", err)
			}
		},

		OnQuit: func() {
			cancel()
		},
	})
}

type statusResponse struct {
	DeviceCount int `json:"device_count"`
}

// pollStatus hits GET /status on an interval and reflects the device count
// in the tray until ctx is cancelled. An unreachable API surfaces as a
// negative count so the tray can distinguish "zero devices" from "daemon
// not running".
func pollStatus(ctx context.Context, client *http.Client, apiURL string) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	fetch := func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/status", nil)
		if err != nil {
			tray.SetDeviceCount(-1)
			return
		}
		resp, err := client.Do(req)
		if err != nil {
			tray.SetDeviceCount(-1)
			return
		}
		defer resp.Body.Close()

		var status statusResponse
		if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
			tray.SetDeviceCount(-1)
			return
		}
		tray.SetDeviceCount(status.DeviceCount)
	}

	fetch()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fetch()
		}
	}
}

func openBrowser(url string) {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	if err := exec.Command(cmd, args...).Start(); err != nil {
		log.Printf("[inputhub-tray] open browser: %v", err)
	}
}
