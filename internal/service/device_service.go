package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"eventvote/internal/domain"
	apperrors "eventvote/pkg/errors"
	"eventvote/pkg/logger"
)

// noCodeSentinel is what the paired device reports while it has no fresh
// code to hand out.
const noCodeSentinel = "---"

// CodeIssuer is the slice of AdminService the device poller needs.
type CodeIssuer interface {
	IssueCode(ctx context.Context, code, via string) (*domain.VotingCode, error)
}

// DeviceCode is the most recent code observed from the paired device.
type DeviceCode struct {
	Code       string    `json:"code"`
	ObservedAt time.Time `json:"observed_at"`
}

// DeviceService pairs with a code-generator device on the local network and
// polls it for fresh codes. Each new code the device reports is issued
// through the registry like a manually generated one.
type DeviceService struct {
	issuer     CodeIssuer
	logger     *logger.Logger
	httpClient *http.Client
	interval   time.Duration

	mu         sync.RWMutex
	deviceAddr string
	latest     *DeviceCode
	isRunning  bool

	pollTicker *time.Ticker
	stopPoll   chan struct{}
}

func NewDeviceService(issuer CodeIssuer, log *logger.Logger, interval time.Duration) *DeviceService {
	return &DeviceService{
		issuer:   issuer,
		logger:   log,
		interval: interval,
		httpClient: &http.Client{
			Timeout: 3 * time.Second,
		},
		stopPoll: make(chan struct{}),
	}
}

// Connect verifies the device at addr answers its health endpoint and starts
// polling it for codes. Connecting to a new address replaces the old pairing.
func (s *DeviceService) Connect(ctx context.Context, addr string) error {
	addr = strings.TrimSuffix(strings.TrimSpace(addr), "/")
	if addr == "" {
		return apperrors.NewValidationError("Device address is required", nil)
	}
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		addr = "http://" + addr
	}

	status, err := s.fetchHealth(ctx, addr)
	if err != nil {
		s.logger.WithError(err).WithField("device_addr", addr).Warn("Device health check failed")
		vErr := apperrors.NewValidationError("Device is not reachable", nil)
		vErr.Internal = err
		return vErr
	}
	if status != "online" {
		return apperrors.NewValidationError(fmt.Sprintf("Device reported status %q", status), nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.deviceAddr = addr
	if !s.isRunning {
		s.pollTicker = time.NewTicker(s.interval)
		go s.pollRoutine()
		s.isRunning = true
	}

	s.logger.WithField("device_addr", addr).Info("Paired with code-generator device")
	return nil
}

// Stop halts polling. Safe to call when never connected.
func (s *DeviceService) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}
	s.pollTicker.Stop()
	close(s.stopPoll)
	s.isRunning = false

	s.logger.Info("Device polling stopped")
	return nil
}

// LatestCode returns the newest code observed from the device, or nil when
// none has been seen yet.
func (s *DeviceService) LatestCode() *DeviceCode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil
	}
	latest := *s.latest
	return &latest
}

// Connected reports whether a device is currently paired.
func (s *DeviceService) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning && s.deviceAddr != ""
}

func (s *DeviceService) pollRoutine() {
	for {
		select {
		case <-s.stopPoll:
			return
		case <-s.pollTicker.C:
			s.pollOnce()
		}
	}
}

func (s *DeviceService) pollOnce() {
	s.mu.RLock()
	addr := s.deviceAddr
	s.mu.RUnlock()
	if addr == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	code, err := s.fetchLatestCode(ctx, addr)
	if err != nil {
		s.logger.WithError(err).Debug("Device poll failed")
		return
	}
	if code == "" || code == noCodeSentinel {
		return
	}

	s.mu.RLock()
	unchanged := s.latest != nil && s.latest.Code == code
	s.mu.RUnlock()
	if unchanged {
		return
	}

	if _, err := s.issuer.IssueCode(ctx, code, domain.GeneratedViaDevice); err != nil {
		if err != domain.ErrCodeExists {
			s.logger.WithError(err).WithField("code", code).Warn("Failed to issue device code")
			return
		}
		// Already registered, still record it as the latest observation.
	}

	s.mu.Lock()
	s.latest = &DeviceCode{Code: code, ObservedAt: time.Now()}
	s.mu.Unlock()

	s.logger.WithField("code", code).Info("New code received from device")
}

func (s *DeviceService) fetchHealth(ctx context.Context, addr string) (string, error) {
	body, err := s.fetch(ctx, addr+"/health")
	if err != nil {
		return "", err
	}
	var payload struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("failed to decode device health response: %w", err)
	}
	return payload.Status, nil
}

func (s *DeviceService) fetchLatestCode(ctx context.Context, addr string) (string, error) {
	body, err := s.fetch(ctx, addr+"/getLatestCode")
	if err != nil {
		return "", err
	}
	// The device answers either bare text or {"code":"123"}.
	var payload struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Code != "" {
		return payload.Code, nil
	}
	return strings.TrimSpace(string(body)), nil
}

func (s *DeviceService) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("device returned status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 4096))
}
