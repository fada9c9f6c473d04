package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-management/notifier/config"
	"github.com/Astemirdum/library-management/pkg/circuit_breaker"
	"github.com/Astemirdum/library-management/pkg/kafka"
)

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer delivers notifications over SMTP through a circuit breaker.
type Mailer struct {
	cfg  config.SMTP
	cb   circuit_breaker.CircuitBreaker
	auth smtp.Auth
	send sendFunc
	now  func() time.Time
	log  *zap.Logger
}

func New(cfg config.SMTP, cb circuit_breaker.CircuitBreaker, log *zap.Logger) *Mailer {
	m := &Mailer{
		cfg: cfg,
		cb:  cb,
		now: time.Now,
		log: log.Named("mailer"),
	}
	if cfg.Username != "" {
		m.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	m.send = smtp.SendMail
	if cfg.UseSSL {
		m.send = m.sendTLS
	}
	return m
}

func (m *Mailer) Send(ctx context.Context, n kafka.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n.To == "" {
		return errors.New("empty recipient")
	}
	msg, err := buildMessage(m.cfg.Sender(), n, m.now())
	if err != nil {
		return err
	}
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)

	return m.cb.Call(func() error {
		if err := m.send(addr, m.auth, m.cfg.Sender(), []string{n.To}, msg); err != nil {
			return errors.Wrap(err, "smtp send")
		}
		m.log.Debug("mail sent", zap.String("id", n.ID), zap.String("subject", n.Subject))
		return nil
	})
}

// sendTLS is smtp.SendMail over an implicit TLS connection (port 465).
func (m *Mailer) sendTLS(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
	dialer := &net.Dialer{Timeout: m.cfg.Timeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{
		ServerName: m.cfg.Host,
		MinVersion: tls.VersionTLS12,
	})
	if err != nil {
		return errors.Wrap(err, "tls dial")
	}
	if err = setDeadline(conn, m.cfg.Timeout); err != nil {
		conn.Close()
		return err
	}

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return errors.Wrap(err, "smtp client")
	}
	defer c.Close()

	if a != nil {
		if ok, _ := c.Extension("AUTH"); ok {
			if err = c.Auth(a); err != nil {
				return errors.Wrap(err, "auth")
			}
		}
	}
	if err = c.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err = c.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write(msg); err != nil {
		return err
	}
	if err = w.Close(); err != nil {
		return err
	}
	return c.Quit()
}

// setDeadline bounds the whole SMTP exchange; zero timeout means none.
func setDeadline(conn net.Conn, timeout time.Duration) error {
	if timeout <= 0 {
		return nil
	}
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return errors.Wrap(err, "set deadline")
	}
	return nil
}

func buildMessage(from string, n kafka.Notification, now time.Time) ([]byte, error) {
	if strings.ContainsAny(n.To, "\r\n") || strings.ContainsAny(from, "\r\n") {
		return nil, errors.New("invalid address")
	}

	var buf bytes.Buffer
	header := func(k, v string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
	}
	header("From", from)
	header("To", n.To)
	header("Subject", mime.QEncoding.Encode("utf-8", n.Subject))
	header("Date", now.Format(time.RFC1123Z))
	if n.ID != "" {
		header("Message-ID", fmt.Sprintf("<%s@library>", n.ID))
	}
	header("MIME-Version", "1.0")
	header("Content-Type", `text/plain; charset="utf-8"`)
	header("Content-Transfer-Encoding", "quoted-printable")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write([]byte(n.Body)); err != nil {
		return nil, err
	}
	if err := qp.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
