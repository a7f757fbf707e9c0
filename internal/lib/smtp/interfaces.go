// Package smtp opens authenticated STARTTLS sessions to the reminder mail relay.
package smtp

import "io"

// Client is the part of *smtp.Client a message send needs.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface opens sessions and reports the envelope sender.
type TransportInterface interface {
	Connect() (Client, error)
	Sender() string
}
