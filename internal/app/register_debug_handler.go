// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/mpu9150/internal/config"
	"github.com/relabs-tech/mpu9150/internal/imu"
	"github.com/relabs-tech/mpu9150/internal/register"
	"github.com/relabs-tech/mpu9150/internal/sensors"
)

// RegisterAccess is what the register debug tool needs from the IMU.
// *sensors.IMUManager implements it.
type RegisterAccess interface {
	ReadRegister(device string, addr byte) (byte, error)
	WriteRegister(device string, addr, value byte) error
	ReadAllRegisters(device string) (map[byte]byte, error)
	ReinitializeIMU() error
	ReadIMU() (imu.IMURaw, error)
}

// AddrRange is an inclusive register address range.
type AddrRange struct {
	Lo, Hi byte
}

// AddrRanges is a set of writable register ranges.
type AddrRanges []AddrRange

// ParseAddrRanges parses a list like "0x1B-0x1D,0x6B". An empty string
// yields an empty set, which allows nothing.
func ParseAddrRanges(s string) (AddrRanges, error) {
	var out AddrRanges
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		a, err := parseRegAddr(lo)
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", part, err)
		}
		b := a
		if isRange {
			if b, err = parseRegAddr(hi); err != nil {
				return nil, fmt.Errorf("range %q: %w", part, err)
			}
		}
		if b < a {
			return nil, fmt.Errorf("range %q: end before start", part)
		}
		out = append(out, AddrRange{Lo: a, Hi: b})
	}
	return out, nil
}

// Contains reports whether addr falls in any range.
func (r AddrRanges) Contains(addr byte) bool {
	for _, ar := range r {
		if addr >= ar.Lo && addr <= ar.Hi {
			return true
		}
	}
	return false
}

func (r AddrRanges) String() string {
	parts := make([]string, len(r))
	for i, ar := range r {
		if ar.Lo == ar.Hi {
			parts[i] = fmt.Sprintf("0x%02X", ar.Lo)
		} else {
			parts[i] = fmt.Sprintf("0x%02X-0x%02X", ar.Lo, ar.Hi)
		}
	}
	return strings.Join(parts, ",")
}

func parseRegAddr(s string) (byte, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid register value %q", s)
	}
	return byte(n), nil
}

// RegisterCmd is a websocket request.
type RegisterCmd struct {
	Action  string `json:"action"` // get_map, read, read_all, write, init, export_config
	Device  string `json:"device,omitempty"`
	Address string `json:"addr,omitempty"`
	Value   string `json:"value,omitempty"`
}

// RegisterResponse is a websocket reply.
type RegisterResponse struct {
	Type        string            `json:"type"` // "register_data", "register_map", "status", "export_config", "error"
	Device      string            `json:"device,omitempty"`
	Address     string            `json:"addr,omitempty"`
	Value       string            `json:"value,omitempty"`
	Registers   map[string]string `json:"registers,omitempty"`
	Timestamp   string            `json:"timestamp,omitempty"`
	Message     string            `json:"message,omitempty"`
	Status      string            `json:"status,omitempty"`
	RegisterMap []register.Info   `json:"register_map,omitempty"`
	Config      *RegisterConfig   `json:"config,omitempty"`
	Filename    string            `json:"filename,omitempty"`
}

// RegisterConfig is the exported register configuration.
type RegisterConfig struct {
	Version   int               `json:"version"`
	Device    string            `json:"device"`
	Timestamp string            `json:"timestamp"`
	Registers map[string]string `json:"registers"` // hex address -> hex value
}

// RegisterDebugServer serves register peek/poke over a websocket.
type RegisterDebugServer struct {
	acc      RegisterAccess
	allowed  AddrRanges
	upgrader websocket.Upgrader
}

// NewRegisterDebugServer returns a server; primary-device writes are
// limited to allowed.
func NewRegisterDebugServer(acc RegisterAccess, allowed AddrRanges) *RegisterDebugServer {
	return &RegisterDebugServer{
		acc:     acc,
		allowed: allowed,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // local bench tool
			},
		},
	}
}

// Handler routes /ws, /api/imu and /api/map.
func (s *RegisterDebugServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	mux.HandleFunc("/api/imu", s.HandleIMUData)
	mux.HandleFunc("/api/map", s.HandleMap)
	return mux
}

// RunRegisterDebug serves the register debug tool on WEB_SERVER_PORT until
// ctx is done.
func RunRegisterDebug(ctx context.Context) error {
	cfg := config.Get()
	allowed, err := ParseAddrRanges(cfg.RegisterDebugAllowedRanges)
	if err != nil {
		return fmt.Errorf("REGISTER_DEBUG_ALLOWED_RANGES: %w", err)
	}

	imuManager := sensors.GetIMUManager()
	if err := imuManager.Init(); err != nil {
		log.Warnf("IMU initialization had issues: %v", err)
		log.Warn("continuing anyway, use the init action to retry")
	}
	defer imuManager.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler:           NewRegisterDebugServer(imuManager, allowed).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Infof("register debug tool listening on %s (writable: %s)", srv.Addr, allowed)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// HandleWS handles the WebSocket connection for register debugging.
func (s *RegisterDebugServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Errorf("register_debug: websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	sess := &registerSession{srv: s, conn: conn}
	if err := sess.sendRegisterMap(sensors.DevicePrimary); err != nil {
		log.Errorf("register_debug: error sending register map: %v", err)
		return
	}

	for {
		var cmd RegisterCmd
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warnf("register_debug: websocket error: %v", err)
			}
			return
		}
		if cmd.Device == "" {
			cmd.Device = sensors.DevicePrimary
		}
		if err := sess.dispatch(cmd); err != nil {
			log.Errorf("register_debug: write error: %v", err)
			return
		}
	}
}

type registerSession struct {
	srv  *RegisterDebugServer
	conn *websocket.Conn
}

func (s *registerSession) dispatch(cmd RegisterCmd) error {
	switch cmd.Action {
	case "get_map":
		return s.sendRegisterMap(cmd.Device)
	case "read":
		return s.handleRead(cmd)
	case "read_all":
		return s.handleReadAll(cmd)
	case "write":
		return s.handleWrite(cmd)
	case "init":
		return s.handleInit()
	case "export_config":
		return s.handleExportConfig(cmd)
	case "":
		return s.sendError("missing or invalid action field")
	default:
		return s.sendError(fmt.Sprintf("unknown action: %s", cmd.Action))
	}
}

func now3339() string { return time.Now().Format(time.RFC3339) }

func (s *registerSession) handleRead(cmd RegisterCmd) error {
	addr, err := parseRegAddr(cmd.Address)
	if err != nil {
		return s.sendError(fmt.Sprintf("invalid address format: %s", cmd.Address))
	}
	value, err := s.srv.acc.ReadRegister(cmd.Device, addr)
	if err != nil {
		return s.sendError(fmt.Sprintf("read error: %v", err))
	}
	return s.conn.WriteJSON(RegisterResponse{
		Type:      "register_data",
		Device:    cmd.Device,
		Address:   fmt.Sprintf("0x%02X", addr),
		Value:     fmt.Sprintf("0x%02X", value),
		Timestamp: now3339(),
	})
}

func hexMap(regs map[byte]byte) map[string]string {
	out := make(map[string]string, len(regs))
	for addr, value := range regs {
		out[fmt.Sprintf("0x%02X", addr)] = fmt.Sprintf("0x%02X", value)
	}
	return out
}

func (s *registerSession) handleReadAll(cmd RegisterCmd) error {
	regs, err := s.srv.acc.ReadAllRegisters(cmd.Device)
	if err != nil {
		return s.sendError(fmt.Sprintf("read all error: %v", err))
	}
	return s.conn.WriteJSON(RegisterResponse{
		Type:      "register_data",
		Device:    cmd.Device,
		Registers: hexMap(regs),
		Timestamp: now3339(),
	})
}

func (s *registerSession) handleWrite(cmd RegisterCmd) error {
	addr, err := parseRegAddr(cmd.Address)
	if err != nil {
		return s.sendError(fmt.Sprintf("invalid address format: %s", cmd.Address))
	}
	value, err := parseRegAddr(cmd.Value)
	if err != nil {
		return s.sendError(fmt.Sprintf("invalid value format: %s", cmd.Value))
	}
	if cmd.Device == sensors.DevicePrimary && !s.srv.allowed.Contains(addr) {
		return s.sendError(fmt.Sprintf("register 0x%02X not in allowed write ranges", addr))
	}
	if err := s.srv.acc.WriteRegister(cmd.Device, addr, value); err != nil {
		return s.sendError(fmt.Sprintf("write error: %v", err))
	}
	log.WithField("device", cmd.Device).Infof("register_debug: wrote 0x%02X to 0x%02X", value, addr)
	return s.conn.WriteJSON(RegisterResponse{
		Type:      "register_data",
		Device:    cmd.Device,
		Address:   fmt.Sprintf("0x%02X", addr),
		Value:     fmt.Sprintf("0x%02X", value),
		Timestamp: now3339(),
		Message:   "write successful",
	})
}

func (s *registerSession) handleInit() error {
	if err := s.srv.acc.ReinitializeIMU(); err != nil {
		return s.sendError(fmt.Sprintf("reinit error: %v", err))
	}
	return s.conn.WriteJSON(RegisterResponse{
		Type:    "status",
		Status:  "initialized",
		Message: "IMU reinitialized successfully",
	})
}

func (s *registerSession) handleExportConfig(cmd RegisterCmd) error {
	regs, err := s.srv.acc.ReadAllRegisters(cmd.Device)
	if err != nil {
		return s.sendError(fmt.Sprintf("export error: %v", err))
	}
	ts := time.Now()
	return s.conn.WriteJSON(RegisterResponse{
		Type:    "export_config",
		Device:  cmd.Device,
		Message: "config exported",
		Config: &RegisterConfig{
			Version:   1,
			Device:    cmd.Device,
			Timestamp: ts.Format(time.RFC3339),
			Registers: hexMap(regs),
		},
		Filename: fmt.Sprintf("%s_%s_registers.json", cmd.Device, ts.Format("20060102_150405")),
	})
}

func (s *registerSession) sendRegisterMap(device string) error {
	regs, err := sensors.RegisterMap(device)
	if err != nil {
		return s.sendError(err.Error())
	}
	return s.conn.WriteJSON(RegisterResponse{
		Type:        "register_map",
		Device:      device,
		RegisterMap: regs,
	})
}

func (s *registerSession) sendError(message string) error {
	return s.conn.WriteJSON(RegisterResponse{
		Type:    "error",
		Message: message,
	})
}

// HandleIMUData serves one live IMU sample as JSON.
func (s *RegisterDebugServer) HandleIMUData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	raw, err := s.acc.ReadIMU()
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}
	json.NewEncoder(w).Encode(raw)
}

// HandleMap serves the register map of ?device= (default mpu6050).
func (s *RegisterDebugServer) HandleMap(w http.ResponseWriter, r *http.Request) {
	device := r.URL.Query().Get("device")
	regs, err := sensors.RegisterMap(device)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(regs)
}
