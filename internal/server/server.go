// Package server exposes a local, loopback-only HTTP control surface over
// the input registry: device inventory, a text dump, and operator-driven
// display/reopen requests. It is the daemon's external interface (§6)
// alternative to a CLI for anything that wants to poll or script it.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	charmlog "github.com/charmbracelet/log"

	"github.com/rawinput/inputhub/eventhub"
	"github.com/rawinput/inputhub/internal/settings"
	"github.com/rawinput/inputhub/policy"
	"github.com/rawinput/inputhub/reader"
)

// Server serves the control API on localhost.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	registry   *reader.Registry
	hub        *eventhub.Hub
	pol        *policy.Static
	sett       *settings.Settings
	version    string
	log        *charmlog.Logger
}

// New creates a control server bound to one daemon's registry/hub/policy.
func New(registry *reader.Registry, hub *eventhub.Hub, pol *policy.Static, sett *settings.Settings, version string, log *charmlog.Logger) *Server {
	return &Server{registry: registry, hub: hub, pol: pol, sett: sett, version: version, log: log}
}

// defaultAddr is the control API's well-known loopback address. Tools like
// cmd/tray poll it by default without needing the daemon to announce its
// port some other way; if it's already taken, Start falls back to a random
// port so a second daemon instance (e.g. under test) doesn't fail to start.
const defaultAddr = "127.0.0.1:8787"

// Start begins serving on the default loopback port, or a random one if
// that's already in use, and returns its URL.
func (s *Server) Start() (string, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/devices", s.handleDevices)
	mux.HandleFunc("/dump", s.handleDump)
	mux.HandleFunc("/display", s.handleDisplay)
	mux.HandleFunc("/reopen", s.handleReopen)

	ln, err := net.Listen("tcp", defaultAddr)
	if err != nil {
		ln, err = net.Listen("tcp", "127.0.0.1:0")
	}
	if err != nil {
		return "", fmt.Errorf("listen: %w", err)
	}
	s.listener = ln

	s.httpServer = &http.Server{
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("control server stopped", "err", err)
		}
	}()

	url := fmt.Sprintf("http://%s", ln.Addr().String())
	s.log.Info("control api listening", "url", url)
	return url, nil
}

// Stop shuts down the HTTP server.
func (s *Server) Stop() {
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.httpServer.Shutdown(ctx)
	}
}

// URL returns the server's URL, or empty string if not started.
func (s *Server) URL() string {
	if s.listener == nil {
		return ""
	}
	return fmt.Sprintf("http://%s", s.listener.Addr().String())
}
