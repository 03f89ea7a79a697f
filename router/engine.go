/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package router

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/dlep-router/dlep/protocol"
)

// maxFrameSize bounds the TCP frame assembly buffer so a modem that lies
// about a frame's declared length cannot force an unbounded allocation
// (spec.md section 5; SPEC_FULL.md section 12).
const maxFrameSize = 64 * 1024

// sessionHeaderLen is the TCP session header's fixed size: message id (2
// bytes) + declared payload length (2 bytes).
const sessionHeaderLen = 4

// initResponseTimeout bounds how long the router waits for Session
// Initialization Response after sending Session Initialization.
const initResponseTimeout = 10 * time.Second

// state is the session engine's current phase (spec.md section 4.4).
type state int

const (
	stateDiscovering state = iota
	stateInitialising
	stateInSession
	stateTerminating
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateDiscovering:
		return "Discovering"
	case stateInitialising:
		return "Initialising"
	case stateInSession:
		return "InSession"
	case stateTerminating:
		return "Terminating"
	case stateClosed:
		return "Closed"
	default:
		return "unknown"
	}
}

// Metrics is the core's optional telemetry sink (spec.md section 4.5): an
// engine behaves identically with or without one attached, the same
// separation Logger keeps from logrus.
type Metrics interface {
	IncFramesSent(msg protocol.MessageType)
	IncFramesReceived(msg protocol.MessageType)
	SetDestinationsActive(n int)
	IncStateTransition(state string)
	ObserveHeartbeatArrival(gapSeconds float64)
}

type nopMetrics struct{}

func (nopMetrics) IncFramesSent(protocol.MessageType)     {}
func (nopMetrics) IncFramesReceived(protocol.MessageType) {}
func (nopMetrics) SetDestinationsActive(int)              {}
func (nopMetrics) IncStateTransition(string)              {}
func (nopMetrics) ObserveHeartbeatArrival(float64)        {}

// Engine drives the DLEP router session state machine end to end: UDP
// discovery, TCP session initialisation, the steady in-session dispatch
// loop, and graceful or forced termination. It is single-threaded: Run
// must not be called concurrently with itself, and nothing it touches is
// shared with another goroutine except through Destinations' own lock.
type Engine struct {
	cfg         Config
	log         Logger
	clock       Clock
	dialer      Dialer
	dests       *Destinations
	metrics     Metrics
	onReady     func()
	onHeartbeat func()
	current     state

	session  *Destination // modem's own reported link metrics, keyed by no MAC
	lastSent time.Time
	lastRecv time.Time
	modemHB  time.Duration
}

// NewEngine constructs a session engine. logger and clock may be nil, in
// which case a no-op logger and the system clock are used; dialer may be
// nil to use real sockets (tests inject a mock Dialer instead).
func NewEngine(cfg Config, logger Logger, clock Clock, dialer Dialer) *Engine {
	if logger == nil {
		logger = nopLogger{}
	}
	if clock == nil {
		clock = systemClock{}
	}
	if dialer == nil {
		dialer = netDialer{}
	}
	return &Engine{
		cfg:     cfg,
		log:     logger,
		clock:   clock,
		dialer:  dialer,
		dests:   NewDestinations(),
		session: &Destination{},
		metrics: nopMetrics{},
	}
}

// Destinations returns the engine's live destination table, for a status
// CLI subcommand or metrics exporter running alongside Run.
func (e *Engine) Destinations() *Destinations { return e.dests }

// State returns the session state machine's current phase, for a status
// CLI subcommand running alongside Run.
func (e *Engine) State() string { return e.current.String() }

// SetMetrics attaches a telemetry sink. Call it before Run; it is not
// safe to change concurrently with a running session.
func (e *Engine) SetMetrics(m Metrics) {
	if m == nil {
		m = nopMetrics{}
	}
	e.metrics = m
}

// SetReadyHook attaches a callback invoked once Session Initialization
// succeeds, for a caller that wants to notify systemd or an external
// health check once a session is actually up.
func (e *Engine) SetReadyHook(fn func()) {
	e.onReady = fn
}

// SetHeartbeatHook attaches a callback invoked every time the engine sends
// a Heartbeat message, for a caller that wants to ping a systemd watchdog
// off the same liveness signal the modem is given.
func (e *Engine) SetHeartbeatHook(fn func()) {
	e.onHeartbeat = fn
}

// setState records a state machine transition and reports it to metrics.
func (e *Engine) setState(s state) {
	e.current = s
	e.metrics.IncStateTransition(s.String())
}

// Run executes one full session lifecycle: discovery (unless a target was
// configured), initialisation, the in-session loop, and termination. It
// returns once the session reaches Closed. ctx cancellation is honoured
// between suspension points and produces OutcomeGraceful with a Shutdown
// status sent to the peer if a session is up.
func (e *Engine) Run(ctx context.Context) Result {
	e.setState(stateDiscovering)
	defer e.setState(stateClosed)

	addr, port, zone, err := e.discoverOrConfigured(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return Result{Outcome: OutcomeGraceful}
		}
		return Result{Outcome: OutcomeFatal, Err: err}
	}

	e.setState(stateInitialising)
	sock, err := e.dialer.OpenSession(addr, port, zone)
	if err != nil {
		return Result{Outcome: OutcomeRetryable, Err: fmt.Errorf("opening session socket: %w", err)}
	}
	defer sock.Close()

	if err := e.initialise(ctx, sock); err != nil {
		if errors.Is(err, context.Canceled) {
			return Result{Outcome: OutcomeGraceful}
		}
		return Result{Outcome: OutcomeRetryable, Err: err}
	}

	outcome, err := e.inSession(ctx, sock)
	return Result{Outcome: outcome, Err: err}
}

// discoverOrConfigured returns the target address (addr, port) for the
// Initialising state, either from the operator's static Config.Target or
// from a discovered Peer Offer, and the IPv6 zone id to dial with.
func (e *Engine) discoverOrConfigured(ctx context.Context) (addr string, port int, zone string, err error) {
	if e.cfg.Target != nil {
		zone, err = e.resolveZone(e.cfg.Target.IP)
		if err != nil {
			return "", 0, "", err
		}
		p := e.cfg.Target.Port
		if p == 0 {
			p = protocol.WellKnownPort
		}
		return e.cfg.Target.IP, p, zone, nil
	}

	family := "ipv4"
	if e.cfg.UseIPv6 {
		family = "ipv6"
	}
	sock, err := e.dialer.OpenDiscovery(family, e.cfg.Interface)
	if err != nil {
		return "", 0, "", fmt.Errorf("opening discovery socket: %w", err)
	}
	defer sock.Close()

	payload := protocol.BuildPeerDiscovery(e.cfg.PeerType)
	buf := make([]byte, 2048)
	for {
		if err := ctx.Err(); err != nil {
			return "", 0, "", err
		}
		if err := sock.Send(payload); err != nil {
			return "", 0, "", fmt.Errorf("sending peer discovery: %w", err)
		}
		n, _, err := sock.RecvWithTimeout(buf, e.cfg.DiscoveryRetry)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			return "", 0, "", fmt.Errorf("discovery recv: %w", err)
		}
		offer, err := protocol.CheckPeerOfferSignal(buf[:n])
		if err != nil {
			e.log.Event(LevelWarn, "invalid peer offer", map[string]any{"error": err.Error()})
			continue
		}
		cp, v6 := pickConnectionPoint(offer, e.cfg.UseIPv6)
		p := protocol.WellKnownPort
		if cp.HasPort {
			p = int(cp.Port)
		}
		zone = ""
		if v6 && cp.IP.IsLinkLocalUnicast() {
			zone, err = e.resolveZone(e.cfg.Interface)
			if err != nil {
				return "", 0, "", err
			}
		}
		e.log.Event(LevelInfo, "peer offer accepted", map[string]any{"address": cp.IP.String(), "port": p})
		return cp.IP.String(), p, zone, nil
	}
}

// resolveZone asks the dialer to resolve host's interface scope id when
// host names a link-local address; otherwise it returns an empty zone.
func (e *Engine) resolveZone(host string) (string, error) {
	ip := net.ParseIP(host)
	if ip == nil || !ip.IsLinkLocalUnicast() {
		return "", nil
	}
	return e.dialer.ScopeID(e.cfg.Interface)
}

// pickConnectionPoint selects the first Connection Point matching the
// requested address family, preferring IPv6 only when configured to.
func pickConnectionPoint(offer *protocol.PeerOffer, preferV6 bool) (protocol.ConnectionPoint, bool) {
	if preferV6 && len(offer.IPv6ConnectionPoints) > 0 {
		return offer.IPv6ConnectionPoints[0], true
	}
	if len(offer.IPv4ConnectionPoints) > 0 {
		return offer.IPv4ConnectionPoints[0], false
	}
	return offer.IPv6ConnectionPoints[0], true
}

// initialise sends Session Initialization and waits for a successful
// Session Initialization Response (spec.md section 4.4's Initialising
// state), recording the negotiated modem heartbeat interval.
func (e *Engine) initialise(ctx context.Context, sock StreamSocket) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out := protocol.BuildSessionInit(uint32(e.cfg.RouterHeartbeat.Milliseconds()), e.cfg.PeerType)
	if err := sock.Send(out); err != nil {
		return fmt.Errorf("sending session init: %w", err)
	}
	e.metrics.IncFramesSent(protocol.MessageSessionInit)
	now := e.clock.Now()
	e.lastSent = now

	buf, err := e.readFrame(sock, initResponseTimeout)
	if err != nil {
		return fmt.Errorf("reading session init response: %w", err)
	}
	e.lastRecv = e.clock.Now()

	e.metrics.IncFramesReceived(protocol.MessageSessionInitResp)
	resp, err := protocol.CheckSessionInitRespMessage(buf)
	if err != nil {
		return fmt.Errorf("invalid session init response: %w", err)
	}
	if resp.Status.Code != protocol.StatusSuccess {
		return fmt.Errorf("modem rejected session init: %s", resp.Status.Code)
	}
	e.modemHB = time.Duration(resp.HeartbeatInterval) * time.Millisecond
	if e.modemHB <= 0 {
		return fmt.Errorf("%w: modem heartbeat interval must be non-zero", protocol.ErrInvalidData)
	}
	e.session.applyMetrics(protocol.Metrics{
		IPv4Addresses: resp.IPv4Addresses,
		IPv6Addresses: resp.IPv6Addresses,
		MDRR:          &resp.MDRR,
		MDRT:          &resp.MDRT,
		CDRR:          &resp.CDRR,
		CDRT:          &resp.CDRT,
		Latency:       &resp.Latency,
		Resources:     resp.Resources,
		RLQR:          resp.RLQR,
		RLQT:          resp.RLQT,
		MTU:           resp.MTU,
	})
	e.log.Event(LevelInfo, "session established", map[string]any{"modem_heartbeat_ms": resp.HeartbeatInterval})
	e.setState(stateInSession)
	if e.onReady != nil {
		e.onReady()
	}
	return nil
}

// inSession runs the steady-state dispatch loop (spec.md section 4.4's
// InSession row and dispatch table) until a transition to Terminating is
// warranted, then drains into Closed.
func (e *Engine) inSession(ctx context.Context, sock StreamSocket) (Outcome, error) {
	for {
		if err := ctx.Err(); err != nil {
			e.terminate(sock, protocol.StatusShutdown, true)
			return OutcomeGraceful, nil
		}

		now := e.clock.Now()
		if now.Sub(e.lastRecv) >= 2*e.modemHB {
			e.log.Event(LevelWarn, "modem heartbeat timeout", nil)
			e.terminate(sock, protocol.StatusTimedOut, true)
			return OutcomeRetryable, fmt.Errorf("modem heartbeat timeout")
		}
		if now.Sub(e.lastSent) >= e.cfg.RouterHeartbeat {
			if err := sock.Send(protocol.BuildHeartbeat()); err != nil {
				return OutcomeRetryable, fmt.Errorf("sending heartbeat: %w", err)
			}
			e.metrics.IncFramesSent(protocol.MessageHeartbeat)
			e.lastSent = e.clock.Now()
			if e.onHeartbeat != nil {
				e.onHeartbeat()
			}
		}

		timeout := e.nextReadTimeout(now)
		buf, err := e.readFrame(sock, timeout)
		if err != nil {
			if isTimeout(err) {
				continue
			}
			return OutcomeRetryable, fmt.Errorf("session read: %w", err)
		}
		prevRecv := e.lastRecv
		e.lastRecv = e.clock.Now()

		outcome, done, err := e.dispatch(sock, buf, prevRecv)
		if done {
			return outcome, err
		}
	}
}

// nextReadTimeout computes how long the engine may block on its next read
// without missing either the heartbeat-send or peer-liveness deadline
// (spec.md section 5).
func (e *Engine) nextReadTimeout(now time.Time) time.Duration {
	untilSend := e.lastSent.Add(e.cfg.RouterHeartbeat).Sub(now)
	untilTimeout := e.lastRecv.Add(2 * e.modemHB).Sub(now)
	d := untilSend
	if untilTimeout < d {
		d = untilTimeout
	}
	if d <= 0 {
		d = time.Millisecond
	}
	return d
}

// dispatch handles one fully-assembled session message per spec.md
// section 4.4's InSession dispatch table. done is true once the session
// has moved past InSession (outcome and err are then meaningful).
func (e *Engine) dispatch(sock StreamSocket, buf []byte, prevRecv time.Time) (outcome Outcome, done bool, err error) {
	msg, err := protocol.PeekMessageType(buf)
	if err != nil {
		e.terminate(sock, protocol.StatusInvalidData, true)
		return OutcomeRetryable, true, err
	}
	e.metrics.IncFramesReceived(msg)

	switch msg {
	case protocol.MessageHeartbeat:
		if err := protocol.CheckHeartbeatMessage(buf); err != nil {
			e.terminate(sock, protocol.StatusOf(err), true)
			return OutcomeRetryable, true, err
		}
		if !prevRecv.IsZero() {
			e.metrics.ObserveHeartbeatArrival(e.lastRecv.Sub(prevRecv).Seconds())
		}
		return 0, false, nil

	case protocol.MessageSessionUpdate:
		upd, err := protocol.CheckSessionUpdateMessage(buf)
		if err != nil {
			e.terminate(sock, protocol.StatusOf(err), true)
			return OutcomeRetryable, true, err
		}
		e.session.applyMetrics(upd.Metrics)
		return 0, false, nil

	case protocol.MessageSessionTerm:
		term, err := protocol.CheckSessionTermMessage(buf)
		if err != nil {
			e.terminate(sock, protocol.StatusOf(err), true)
			return OutcomeRetryable, true, err
		}
		e.log.Event(LevelInfo, "peer session termination", map[string]any{"status": term.Status.Code.String()})
		e.setState(stateTerminating)
		_ = sock.Send(protocol.BuildSessionTermResp())
		e.metrics.IncFramesSent(protocol.MessageSessionTermResp)
		return OutcomeGraceful, true, nil

	case protocol.MessageDestinationUp:
		up, err := protocol.CheckDestinationUpMessage(buf)
		if err != nil {
			e.terminate(sock, protocol.StatusOf(err), true)
			return OutcomeRetryable, true, err
		}
		if len(up.IPv4Addresses) == 0 && len(up.IPv6Addresses) == 0 {
			e.log.Event(LevelWarn, "destination up carries no IP address item", map[string]any{"mac": up.MAC.String()})
		}
		e.dests.Insert(up)
		e.metrics.SetDestinationsActive(e.dests.Len())
		if err := sock.Send(protocol.BuildDestinationUpResp(macArray(up.MAC), protocol.StatusSuccess)); err != nil {
			return OutcomeRetryable, true, err
		}
		e.metrics.IncFramesSent(protocol.MessageDestinationUpResp)
		return 0, false, nil

	case protocol.MessageDestinationUpdate:
		upd, err := protocol.CheckDestinationUpdateMessage(buf)
		if err != nil {
			e.terminate(sock, protocol.StatusOf(err), true)
			return OutcomeRetryable, true, err
		}
		if _, ok := e.dests.Update(upd); !ok {
			e.log.Event(LevelWarn, "update for unknown destination", map[string]any{"mac": upd.MAC.String()})
		}
		return 0, false, nil

	case protocol.MessageDestinationDown:
		down, err := protocol.CheckDestinationDownMessage(buf)
		if err != nil {
			e.terminate(sock, protocol.StatusOf(err), true)
			return OutcomeRetryable, true, err
		}
		e.dests.Remove(down.MAC)
		e.metrics.SetDestinationsActive(e.dests.Len())
		if err := sock.Send(protocol.BuildDestinationDownResp(macArray(down.MAC), protocol.StatusSuccess)); err != nil {
			return OutcomeRetryable, true, err
		}
		e.metrics.IncFramesSent(protocol.MessageDestinationDownResp)
		return 0, false, nil

	case protocol.MessageLinkCharRequest:
		req, err := protocol.CheckLinkCharRequestMessage(buf)
		if err != nil {
			e.terminate(sock, protocol.StatusOf(err), true)
			return OutcomeRetryable, true, err
		}
		// The router never initiates link characteristics negotiation; it
		// always denies the modem's request (spec.md section 4.3).
		if err := sock.Send(protocol.BuildLinkCharResp(macArray(req.MAC), protocol.StatusRequestDenied)); err != nil {
			return OutcomeRetryable, true, err
		}
		e.metrics.IncFramesSent(protocol.MessageLinkCharResponse)
		return 0, false, nil

	case protocol.MessageSessionInit, protocol.MessageSessionInitResp,
		protocol.MessageSessionUpdateResp, protocol.MessageSessionTermResp,
		protocol.MessageDestinationUpResp, protocol.MessageDestinationDownResp,
		protocol.MessageDestinationAnnounce, protocol.MessageDestinationAnnounceResp,
		protocol.MessageLinkCharResponse:
		err := fmt.Errorf("%w: %s not expected in session", protocol.ErrUnexpectedMessage, msg)
		e.terminate(sock, protocol.StatusUnexpectedMessage, true)
		return OutcomeRetryable, true, err

	default:
		err := fmt.Errorf("%w: %s", protocol.ErrUnknownMessage, msg)
		e.terminate(sock, protocol.StatusUnknownMessage, true)
		return OutcomeRetryable, true, err
	}
}

// terminate sends a Session Termination with status and waits, bounded by
// 4x the modem heartbeat, for the peer's Session Termination Response
// before returning (spec.md section 4.4's Terminating row). With
// weInitiated false it only records the Terminating state and sends
// nothing.
func (e *Engine) terminate(sock StreamSocket, status protocol.Status, weInitiated bool) {
	e.setState(stateTerminating)
	if !weInitiated {
		return
	}
	if err := sock.Send(protocol.BuildSessionTerm(status)); err != nil {
		e.log.Event(LevelWarn, "failed to send session termination", map[string]any{"error": err.Error()})
		return
	}
	e.metrics.IncFramesSent(protocol.MessageSessionTerm)
	deadline := e.clock.Now().Add(4 * e.modemHB)
	for {
		remaining := deadline.Sub(e.clock.Now())
		if remaining <= 0 {
			return
		}
		buf, err := e.readFrame(sock, remaining)
		if err != nil {
			return
		}
		msg, err := protocol.PeekMessageType(buf)
		if err == nil && msg == protocol.MessageSessionTermResp {
			return
		}
		// Late updates are ignored while draining.
	}
}

// readFrame reads one complete session message: the 4-byte header, then
// its declared payload, returning the whole frame for the validator.
func (e *Engine) readFrame(sock StreamSocket, timeout time.Duration) ([]byte, error) {
	header := make([]byte, sessionHeaderLen)
	if _, err := sock.RecvWithTimeout(header, timeout); err != nil {
		return nil, err
	}
	declared := int(protocol.ReadU16(header[2:]))
	if declared > maxFrameSize {
		return nil, fmt.Errorf("%w: declared length %d exceeds maximum frame size", protocol.ErrInvalidData, declared)
	}
	frame := make([]byte, sessionHeaderLen+declared)
	copy(frame, header)
	if declared > 0 {
		if _, err := sock.RecvWithTimeout(frame[sessionHeaderLen:], timeout); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

func macArray(mac net.HardwareAddr) [6]byte {
	var out [6]byte
	copy(out[:], mac)
	return out
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
