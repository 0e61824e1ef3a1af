package check_test

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/optimode/mailcheck/check"
	"github.com/optimode/mailcheck/types"
)

// testSMTPServer simulates a mail exchanger on one end of a net.Pipe.
// Replies are keyed by command verb; a verb with no entry gets no reply.
func testSMTPServer(server net.Conn, banner string, responses map[string]string) {
	defer func() { _ = server.Close() }()

	if banner != "" {
		_, _ = fmt.Fprintf(server, "%s\r\n", banner)
	}

	r := bufio.NewReader(server)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		verb := strings.ToUpper(fields[0])
		if strings.HasPrefix(verb, "MAIL") {
			verb = "MAIL"
		} else if strings.HasPrefix(verb, "RCPT") {
			verb = "RCPT"
		}
		if resp, ok := responses[verb]; ok {
			_, _ = fmt.Fprintf(server, "%s\r\n", resp)
		}
	}
}

type dialRecorder struct {
	mu    sync.Mutex
	addrs []string
}

func (d *dialRecorder) dialer(banner string, responses map[string]string) func(string, string, time.Duration) (net.Conn, error) {
	return func(_, addr string, _ time.Duration) (net.Conn, error) {
		d.mu.Lock()
		d.addrs = append(d.addrs, addr)
		d.mu.Unlock()

		client, server := net.Pipe()
		go testSMTPServer(server, banner, responses)
		return client, nil
	}
}

var testMX = []types.MXRecord{{Exchange: "mx1.example.com", Priority: 10}}

func newProber(dial func(string, string, time.Duration) (net.Conn, error)) *check.CatchAllProber {
	return check.NewCatchAllProber(check.ProbeConfig{
		HeloDomain:   "test.com",
		MailFrom:     "verify@test.com",
		Timeout:      2 * time.Second,
		CommandDelay: 20 * time.Millisecond,
		Dial:         dial,
	})
}

func TestCatchAllProber_Responses(t *testing.T) {
	tests := []struct {
		name       string
		rcpt       string
		catchAll   types.Tri
		confidence types.Confidence
	}{
		{"accepts anything", "250 2.1.5 OK", types.True, types.ConfidenceHigh},
		{"rejects unknown", "550 5.1.1 No such user", types.False, types.ConfidenceHigh},
		{"policy block", "554 5.7.1 Relay access denied", types.Unknown, types.ConfidenceLow},
		{"mailbox full", "552 5.2.2 Over quota", types.Unknown, types.ConfidenceLow},
		{"greylisted", "451 4.7.1 Try again later", types.False, types.ConfidenceMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &dialRecorder{}
			p := newProber(d.dialer("220 mx1.example.com ESMTP", map[string]string{
				"EHLO": "250-mx1.example.com\r\n250-SIZE 35882577\r\n250 PIPELINING",
				"MAIL": "250 2.1.0 OK",
				"RCPT": tt.rcpt,
			}))

			res := p.Probe(context.Background(), "example.com", testMX)

			assert.Equal(t, types.True, res.Valid)
			assert.Equal(t, tt.catchAll, res.IsCatchAll)
			assert.Equal(t, tt.confidence, res.Confidence)
			assert.Equal(t, "mx1.example.com", res.MXHost)
			assert.Equal(t, tt.rcpt, res.Response)
			assert.Equal(t, []string{"mx1.example.com:25"}, d.addrs)
		})
	}
}

func TestCatchAllProber_PrefersLowestPriority(t *testing.T) {
	d := &dialRecorder{}
	p := newProber(d.dialer("220 ready", map[string]string{
		"EHLO": "250 hello",
		"MAIL": "250 OK",
		"RCPT": "550 no",
	}))

	res := p.Probe(context.Background(), "example.com", []types.MXRecord{
		{Exchange: "backup.example.com", Priority: 20},
		{Exchange: "primary.example.com", Priority: 5},
	})

	assert.Equal(t, "primary.example.com", res.MXHost)
	assert.Equal(t, []string{"primary.example.com:25"}, d.addrs)
}

func TestCatchAllProber_SendsOnDelayWithoutReplies(t *testing.T) {
	// Replies are withheld until RCPT TO arrives, so the prober can only get
	// there by advancing on its command delay.
	dial := func(_, _ string, _ time.Duration) (net.Conn, error) {
		client, server := net.Pipe()
		go func() {
			defer func() { _ = server.Close() }()
			_, _ = fmt.Fprint(server, "220 slow.example.com\r\n")
			r := bufio.NewReader(server)
			for {
				line, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if strings.HasPrefix(line, "RCPT") {
					_, _ = fmt.Fprint(server, "250 hello\r\n250 sender ok\r\n250 recipient ok\r\n")
				}
			}
		}()
		return client, nil
	}

	res := newProber(dial).Probe(context.Background(), "example.com", testMX)

	assert.Equal(t, types.True, res.Valid)
	assert.Equal(t, types.True, res.IsCatchAll)
	assert.Equal(t, "250 recipient ok", res.Response)
}

func TestCatchAllProber_Failures(t *testing.T) {
	t.Run("dial error", func(t *testing.T) {
		p := newProber(func(_, _ string, _ time.Duration) (net.Conn, error) {
			return nil, errors.New("connection refused")
		})

		res := p.Probe(context.Background(), "example.com", testMX)

		assert.Equal(t, types.False, res.Valid)
		assert.Equal(t, types.False, res.IsCatchAll)
		assert.Equal(t, types.ConfidenceLow, res.Confidence)
		assert.Contains(t, res.Response, "connection refused")
	})

	t.Run("closed before rcpt reply", func(t *testing.T) {
		p := newProber(func(_, _ string, _ time.Duration) (net.Conn, error) {
			client, server := net.Pipe()
			go func() {
				_, _ = fmt.Fprint(server, "421 too busy\r\n")
				_, _ = bufio.NewReader(server).ReadString('\n')
				_ = server.Close()
			}()
			return client, nil
		})

		res := p.Probe(context.Background(), "example.com", testMX)

		assert.Equal(t, types.False, res.Valid)
		assert.Equal(t, types.False, res.IsCatchAll)
		assert.Equal(t, types.ConfidenceLow, res.Confidence)
		assert.NotEmpty(t, res.Response)
	})

	t.Run("no rcpt reply before timeout", func(t *testing.T) {
		d := &dialRecorder{}
		p := check.NewCatchAllProber(check.ProbeConfig{
			Timeout:      150 * time.Millisecond,
			CommandDelay: 20 * time.Millisecond,
			Dial: d.dialer("220 ready", map[string]string{
				"EHLO": "250 hello",
				"MAIL": "250 OK",
			}),
		})

		start := time.Now()
		res := p.Probe(context.Background(), "example.com", testMX)

		assert.Equal(t, types.False, res.Valid)
		assert.Equal(t, types.False, res.IsCatchAll)
		assert.Equal(t, types.ConfidenceLow, res.Confidence)
		assert.Contains(t, res.Response, "no response")
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("silent server", func(t *testing.T) {
		d := &dialRecorder{}
		p := check.NewCatchAllProber(check.ProbeConfig{
			Timeout: 100 * time.Millisecond,
			Dial:    d.dialer("", nil),
		})

		res := p.Probe(context.Background(), "example.com", testMX)

		assert.Equal(t, types.False, res.IsCatchAll)
		assert.Equal(t, types.ConfidenceLow, res.Confidence)
	})

	t.Run("context cancelled", func(t *testing.T) {
		d := &dialRecorder{}
		p := newProber(d.dialer("", nil))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		res := p.Probe(ctx, "example.com", testMX)

		assert.Equal(t, types.False, res.IsCatchAll)
		assert.Equal(t, types.ConfidenceLow, res.Confidence)
		assert.Contains(t, res.Response, "cancelled")
	})
}

func TestCatchAllProber_NoMX(t *testing.T) {
	d := &dialRecorder{}
	p := newProber(d.dialer("220 ready", nil))

	res := p.Probe(context.Background(), "example.com", nil)

	assert.Equal(t, types.False, res.IsCatchAll)
	assert.Equal(t, types.ConfidenceLow, res.Confidence)
	assert.Empty(t, d.addrs, "no connection without an exchanger")
}

func TestClassifyResponse(t *testing.T) {
	tests := []struct {
		text       string
		catchAll   types.Tri
		confidence types.Confidence
	}{
		{"250 2.1.5 Recipient OK", types.True, types.ConfidenceHigh},
		{"550 5.1.1 User unknown", types.False, types.ConfidenceHigh},
		{"552 5.2.2 Mailbox full", types.Unknown, types.ConfidenceLow},
		{"554 5.7.1 Rejected", types.Unknown, types.ConfidenceLow},
		{"450 4.2.0 Greylisted", types.False, types.ConfidenceMedium},
		{"550-5.1.1 The email account\n550 5.1.1 does not exist", types.False, types.ConfidenceHigh},
		{"550 5.1.1 see error 2501", types.False, types.ConfidenceHigh},
		{"accepted: 250", types.True, types.ConfidenceHigh},
		{"", types.False, types.ConfidenceMedium},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			catchAll, confidence := check.ClassifyResponse(tt.text)
			assert.Equal(t, tt.catchAll, catchAll)
			assert.Equal(t, tt.confidence, confidence)
		})
	}
}

func TestProbeAddress(t *testing.T) {
	a := check.ProbeAddress("example.com")
	b := check.ProbeAddress("example.com")

	assert.True(t, strings.HasSuffix(a, "@example.com"))
	assert.NotEqual(t, a, b)
}
