package check

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/optimode/mailcheck/types"
)

// ProbeConfig is the catch-all prober configuration.
type ProbeConfig struct {
	HeloDomain string
	MailFrom   string
	Port       string

	// Timeout is the hard upper bound for a probe, measured from the start
	// of the connection attempt.
	Timeout time.Duration

	// CommandDelay is the longest the prober waits for a reply before it
	// sends the next command anyway.
	CommandDelay time.Duration

	// Dial is injectable for testing. Defaults to net.DialTimeout.
	Dial func(network, address string, timeout time.Duration) (net.Conn, error)

	Logger logrus.FieldLogger
}

// CatchAllProber estimates whether a domain accepts mail for any local part
// by asking its preferred exchanger to accept a recipient that cannot exist.
// It never sends DATA and opens one connection per probe.
type CatchAllProber struct {
	cfg ProbeConfig
}

func NewCatchAllProber(cfg ProbeConfig) *CatchAllProber {
	if cfg.HeloDomain == "" {
		cfg.HeloDomain = "localhost"
	}
	if cfg.MailFrom == "" {
		cfg.MailFrom = "verify@" + cfg.HeloDomain
	}
	if cfg.Port == "" {
		cfg.Port = "25"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.CommandDelay <= 0 {
		cfg.CommandDelay = 250 * time.Millisecond
	}
	if cfg.Dial == nil {
		cfg.Dial = net.DialTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &CatchAllProber{cfg: cfg}
}

type probeState int

const (
	stateIdle probeState = iota
	stateConnecting
	stateAwaitingGreeting
	stateEhloSent
	stateMailFromSent
	stateRcptToSent
	stateResponded
	stateFailed
	stateTimedOut
)

func (s probeState) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateConnecting:
		return "connecting"
	case stateAwaitingGreeting:
		return "awaiting_greeting"
	case stateEhloSent:
		return "ehlo_sent"
	case stateMailFromSent:
		return "mail_from_sent"
	case stateRcptToSent:
		return "rcpt_to_sent"
	case stateResponded:
		return "responded"
	case stateFailed:
		return "failed"
	case stateTimedOut:
		return "timed_out"
	}
	return "unknown"
}

// ProbeAddress returns a local part that should not exist on any real
// mailbox, for the given domain.
func ProbeAddress(domain string) string {
	return "mc-" + strings.ReplaceAll(uuid.NewString(), "-", "") + "@" + domain
}

// Probe runs the catch-all probe against the most preferred exchanger in mx.
// It never fails: every error is folded into a low-confidence negative
// result with the failure text in Response.
func (p *CatchAllProber) Probe(ctx context.Context, domain string, mx []types.MXRecord) types.CatchAllCheck {
	if len(mx) == 0 {
		return types.CatchAllCheck{
			Valid:      types.False,
			IsCatchAll: types.False,
			Confidence: types.ConfidenceLow,
			Response:   "no MX records",
		}
	}

	best := mx[0]
	for _, r := range mx[1:] {
		if r.Priority < best.Priority {
			best = r
		}
	}
	host := best.Exchange

	s := &session{
		cfg:    p.cfg,
		host:   host,
		rcpt:   ProbeAddress(domain),
		state:  stateIdle,
		logger: p.cfg.Logger.WithFields(logrus.Fields{"mx": host, "domain": domain}),
	}
	text, state := s.run(ctx)

	res := types.CatchAllCheck{MXHost: host, Response: text}
	if state != stateResponded {
		res.Valid = types.False
		res.IsCatchAll = types.False
		res.Confidence = types.ConfidenceLow
		return res
	}
	res.Valid = types.True
	res.IsCatchAll, res.Confidence = ClassifyResponse(text)
	return res
}

// ClassifyResponse maps the exchanger's reply to RCPT TO onto a catch-all
// verdict. The leading status code is used when present; otherwise the text
// is searched for one. 552 and 554 say nothing about the mailbox, so they
// leave the status Unknown.
func ClassifyResponse(text string) (isCatchAll types.Tri, confidence types.Confidence) {
	code := statusCode(lastLine(text))
	has := func(c string) bool {
		if code != "" {
			return code == c
		}
		return strings.Contains(text, c)
	}

	switch {
	case has("250"):
		return types.True, types.ConfidenceHigh
	case has("550"):
		return types.False, types.ConfidenceHigh
	case has("552"), has("554"):
		return types.Unknown, types.ConfidenceLow
	default:
		return types.False, types.ConfidenceMedium
	}
}

// session is one probe conversation. It is driven by run and is not safe
// for concurrent use.
type session struct {
	cfg    ProbeConfig
	host   string
	rcpt   string
	state  probeState
	logger logrus.FieldLogger
}

func (s *session) transition(next probeState) {
	s.logger.WithFields(logrus.Fields{"from": s.state, "to": next}).Debug("catch-all probe state")
	s.state = next
}

func (s *session) run(ctx context.Context) (string, probeState) {
	start := time.Now()
	deadline := start.Add(s.cfg.Timeout)

	s.transition(stateConnecting)
	conn, err := s.cfg.Dial("tcp", net.JoinHostPort(s.host, s.cfg.Port), s.cfg.Timeout)
	if err != nil {
		s.transition(stateFailed)
		return fmt.Sprintf("connection failed: %v", err), s.state
	}
	defer func() { _ = conn.Close() }()
	_ = conn.SetDeadline(deadline)

	done := make(chan struct{})
	defer close(done)
	chunks := make(chan []byte)
	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 4096)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				select {
				case chunks <- append([]byte(nil), buf[:n]...):
				case <-done:
					return
				}
			}
			if err != nil {
				readErr <- err
				return
			}
		}
	}()

	commands := []string{
		"EHLO " + s.cfg.HeloDomain,
		"MAIL FROM:<" + s.cfg.MailFrom + ">",
		"RCPT TO:<" + s.rcpt + ">",
	}
	sent := 0
	send := func() error {
		if _, err := conn.Write([]byte(commands[sent] + "\r\n")); err != nil {
			return err
		}
		sent++
		s.transition(stateAwaitingGreeting + probeState(sent))
		return nil
	}

	hardStop := time.NewTimer(time.Until(deadline))
	defer hardStop.Stop()
	delay := time.NewTimer(s.cfg.CommandDelay)
	delay.Stop()
	defer delay.Stop()

	var replies replyReader
	s.transition(stateAwaitingGreeting)
	for {
		select {
		case <-ctx.Done():
			s.transition(stateFailed)
			return fmt.Sprintf("probe cancelled: %v", ctx.Err()), s.state

		case <-hardStop.C:
			s.transition(stateTimedOut)
			return fmt.Sprintf("no response within %s", s.cfg.Timeout), s.state

		case err := <-readErr:
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				s.transition(stateTimedOut)
				return fmt.Sprintf("no response within %s", s.cfg.Timeout), s.state
			}
			s.transition(stateFailed)
			return fmt.Sprintf("connection closed before RCPT reply: %v", err), s.state

		case data := <-chunks:
			replies.feed(data)
			// greeting + EHLO + MAIL FROM + RCPT TO
			if replies.count() >= len(commands)+1 {
				s.transition(stateResponded)
				return replies.reply(len(commands)), s.state
			}
			// The greeting, or the reply to the latest command, advances
			// the sequence without waiting for the delay.
			if sent < len(commands) && replies.count() > sent {
				if err := send(); err != nil {
					s.transition(stateFailed)
					return fmt.Sprintf("write failed: %v", err), s.state
				}
				delay.Reset(s.cfg.CommandDelay)
			}

		case <-delay.C:
			if sent == 0 || sent >= len(commands) {
				continue
			}
			if err := send(); err != nil {
				s.transition(stateFailed)
				return fmt.Sprintf("write failed: %v", err), s.state
			}
			if sent < len(commands) {
				delay.Reset(s.cfg.CommandDelay)
			}
		}
	}
}

// replyReader splits a byte stream into SMTP replies. A reply ends with a
// line whose fourth character is a space (or which is exactly three digits);
// "250-" lines continue it.
type replyReader struct {
	partial string
	current []string
	done    []string
}

func (r *replyReader) feed(b []byte) {
	r.partial += string(b)
	for {
		i := strings.IndexByte(r.partial, '\n')
		if i < 0 {
			return
		}
		line := strings.TrimRight(r.partial[:i], "\r")
		r.partial = r.partial[i+1:]

		r.current = append(r.current, line)
		if statusCode(line) != "" && (len(line) == 3 || line[3] == ' ') {
			r.done = append(r.done, strings.Join(r.current, "\n"))
			r.current = nil
		}
	}
}

func (r *replyReader) count() int { return len(r.done) }

// reply returns the i-th complete reply, counting the greeting as 0.
func (r *replyReader) reply(i int) string {
	if i < 0 || i >= len(r.done) {
		return ""
	}
	return r.done[i]
}

func statusCode(line string) string {
	if len(line) < 3 {
		return ""
	}
	for i := 0; i < 3; i++ {
		if line[i] < '0' || line[i] > '9' {
			return ""
		}
	}
	if len(line) > 3 && line[3] != ' ' && line[3] != '-' {
		return ""
	}
	return line[:3]
}

func lastLine(text string) string {
	text = strings.TrimRight(text, "\r\n")
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		return text[i+1:]
	}
	return text
}
