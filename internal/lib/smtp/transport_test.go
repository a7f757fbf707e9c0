package smtp

import (
	"bufio"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/psycontrol/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestTransport_Sender(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.SMTP
		want string
	}{
		{name: "explicit from", cfg: config.SMTP{SMTPUser: "relay-user", SMTPFrom: "agenda@clinic.test"}, want: "agenda@clinic.test"},
		{name: "falls back to user", cfg: config.SMTP{SMTPUser: "relay-user@clinic.test"}, want: "relay-user@clinic.test"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewTransport(tt.cfg, discardLogger()).Sender())
		})
	}
}

func TestTransport_ConnectRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	_, err = NewTransport(config.SMTP{SMTPHost: host, SMTPPort: port}, discardLogger()).Connect()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp.Transport.Connect")
}

func TestTransport_ConnectWithoutStartTLS(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		r := bufio.NewReader(conn)
		_, _ = conn.Write([]byte("220 localhost ESMTP\r\n"))
		for {
			line, err := r.ReadString('\n')
			if err != nil {
				return
			}
			switch {
			case len(line) >= 4 && line[:4] == "EHLO":
				_, _ = conn.Write([]byte("250-localhost\r\n250 8BITMIME\r\n"))
			case len(line) >= 4 && line[:4] == "QUIT":
				_, _ = conn.Write([]byte("221 bye\r\n"))
				return
			default:
				_, _ = conn.Write([]byte("250 ok\r\n"))
			}
		}
	}()

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)

	_, err = NewTransport(config.SMTP{SMTPHost: host, SMTPPort: port}, discardLogger()).Connect()
	assert.ErrorIs(t, err, ErrNoStartTLS)
}
