package mailer

import (
	"context"
	"io"
	"net"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-management/notifier/config"
	"github.com/Astemirdum/library-management/pkg/circuit_breaker"
	"github.com/Astemirdum/library-management/pkg/kafka"
)

var job = kafka.Notification{
	ID:      "42",
	To:      "leo@example.com",
	Subject: "New Book Added",
	Body:    "The book 'War and Peace' has been added to the library.",
}

func newTestMailer(send sendFunc) *Mailer {
	m := New(config.SMTP{Host: "smtp.example.com", Port: "465", Username: "library@example.com", UseSSL: true},
		circuit_breaker.New(2, time.Hour, 1, 1), zap.NewNop())
	m.send = send
	m.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return m
}

func TestMailer_Send(t *testing.T) {
	t.Parallel()
	var (
		gotAddr string
		gotFrom string
		gotTo   []string
		gotMsg  string
	)
	m := newTestMailer(func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, string(msg)
		return nil
	})

	require.NoError(t, m.Send(context.Background(), job))
	require.Equal(t, "smtp.example.com:465", gotAddr)
	require.Equal(t, "library@example.com", gotFrom)
	require.Equal(t, []string{"leo@example.com"}, gotTo)
	require.Contains(t, gotMsg, "Subject: New Book Added\r\n")
	require.Contains(t, gotMsg, "To: leo@example.com\r\n")
	require.Contains(t, gotMsg, "Message-ID: <42@library>\r\n")
	require.True(t, strings.HasSuffix(gotMsg, "\r\n\r\nThe book 'War and Peace' has been added to the library."))
}

func TestMailer_Send_opensBreaker(t *testing.T) {
	t.Parallel()
	calls := 0
	m := newTestMailer(func(string, smtp.Auth, string, []string, []byte) error {
		calls++
		return errors.New("connection refused")
	})

	require.Error(t, m.Send(context.Background(), job))
	require.Error(t, m.Send(context.Background(), job))
	require.ErrorIs(t, m.Send(context.Background(), job), circuit_breaker.ErrOpen)
	require.Equal(t, 2, calls)
}

func TestMailer_Send_rejectsBadJobs(t *testing.T) {
	t.Parallel()
	m := newTestMailer(func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("must not send")
		return nil
	})

	bad := job
	bad.To = ""
	require.Error(t, m.Send(context.Background(), bad))

	bad.To = "leo@example.com\r\nBcc: all@example.com"
	require.Error(t, m.Send(context.Background(), bad))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, m.Send(ctx, job), context.Canceled)
}

func TestBuildMessage_encodesSubject(t *testing.T) {
	t.Parallel()
	n := job
	n.Subject = "Новая книга"
	msg, err := buildMessage("library@example.com", n, time.Now())
	require.NoError(t, err)
	require.Contains(t, string(msg), "Subject: =?utf-8?q?")
}

func TestSetDeadline(t *testing.T) {
	t.Parallel()
	client, server := net.Pipe()
	defer server.Close()

	require.NoError(t, setDeadline(client, time.Second))
	require.NoError(t, setDeadline(client, 0))

	require.NoError(t, client.Close())
	err := setDeadline(client, time.Second)
	require.ErrorIs(t, err, io.ErrClosedPipe)
	require.ErrorContains(t, err, "set deadline")
	require.NoError(t, setDeadline(client, 0))
}
