package server

import (
	"encoding/json"
	"net/http"

	"github.com/rawinput/inputhub/input"
	"github.com/rawinput/inputhub/mapper"
)

// statusResponse is the JSON response for GET /status.
type statusResponse struct {
	Version      string             `json:"version"`
	DeviceCount  int                `json:"device_count"`
	DisplayWidth int32              `json:"display_width"`
	DisplayHeight int32             `json:"display_height"`
	Rotation     int32              `json:"rotation"`
	ControlURL   string             `json:"control_url"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	disp, _ := s.pol.GetDisplayInfo(-1)
	writeJSON(w, statusResponse{
		Version:       s.version,
		DeviceCount:   len(s.registry.GetInputDeviceIDs()),
		DisplayWidth:  disp.Width,
		DisplayHeight: disp.Height,
		Rotation:      int32(disp.Orientation),
		ControlURL:    s.URL(),
	})
}

// deviceResponse is one entry in the GET /devices array.
type deviceResponse struct {
	ID      int32  `json:"id"`
	Name    string `json:"name"`
	Classes uint32 `json:"classes"`
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ids := s.registry.GetInputDeviceIDs()
	resp := make([]deviceResponse, 0, len(ids))
	for _, id := range ids {
		info, ok := s.registry.GetInputDeviceInfo(id)
		if !ok {
			continue
		}
		resp = append(resp, deviceResponse{
			ID:      info.ID,
			Name:    info.Identifier.Name,
			Classes: uint32(info.Classes),
		})
	}
	writeJSON(w, resp)
}

func (s *Server) handleDump(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(s.registry.Dump()))
}

// displayRequest is the JSON body for POST /display.
type displayRequest struct {
	Width    int32 `json:"width"`
	Height   int32 `json:"height"`
	Rotation int32 `json:"rotation"`
}

// displayResponse is the JSON response for POST /display.
type displayResponse struct {
	Width    int32  `json:"width"`
	Height   int32  `json:"height"`
	Rotation int32  `json:"rotation"`
	Error    string `json:"error,omitempty"`
}

// handleDisplay updates the shared display geometry live, persists it, and
// pushes ConfigChangeDisplayInfo through the registry so every touch mapper
// reconfigures its surface (§4.5.2) on the next loop_once.
func (s *Server) handleDisplay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req displayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, displayResponse{Error: "invalid JSON"})
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		writeJSON(w, displayResponse{Error: "width and height must be positive"})
		return
	}

	rotation := input.Rotation(req.Rotation)
	s.pol.SetDisplay(req.Width, req.Height, rotation)
	if err := s.sett.SetDisplay(req.Width, req.Height, rotation); err != nil {
		s.log.Warn("persist display geometry failed", "err", err)
		writeJSON(w, displayResponse{Error: "applied but failed to persist"})
		return
	}
	s.registry.RequestRefreshConfiguration(mapper.ConfigChangeDisplayInfo)

	writeJSON(w, displayResponse{Width: req.Width, Height: req.Height, Rotation: req.Rotation})
}

// handleReopen asks the hub to rescan every device node on the next
// loop_once, mirroring request_reopen_devices (§6).
func (s *Server) handleReopen(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.hub.RequestReopen()
	w.WriteHeader(http.StatusAccepted)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
