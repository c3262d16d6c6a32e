package monitor

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

// DBusClient is the subset of a session bus connection the monitor uses.
// Tests replace it with mocks.MockDBusClient.
//
//go:generate mockgen -destination=mocks/dbus_client_mock.go -package=mocks github.com/genricoloni/coverring/internal/monitor DBusClient
type DBusClient interface {
	Close() error

	AddMatchSignal(options ...dbus.MatchOption) error

	// Signal registers a channel to receive matched signals
	Signal(ch chan<- *dbus.Signal)

	ListNames() ([]string, error)

	// GetNameOwner returns the unique name (":1.45") owning a well-known name
	GetNameOwner(name string) (string, error)

	// GetProperty reads prop (e.g. "org.mpris.MediaPlayer2.Player.Position")
	// from the object at path on the given bus name
	GetProperty(bus, path, prop string) (dbus.Variant, error)
}

// StdDBusClient wraps a private session bus connection
type StdDBusClient struct {
	conn *dbus.Conn
}

// NewStdDBusClient opens a private connection to the session bus, so
// closing it does not affect other users of the shared connection
func NewStdDBusClient() (*StdDBusClient, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &StdDBusClient{conn: conn}, nil
}

func (c *StdDBusClient) Close() error {
	return c.conn.Close()
}

func (c *StdDBusClient) AddMatchSignal(options ...dbus.MatchOption) error {
	return c.conn.AddMatchSignal(options...)
}

func (c *StdDBusClient) Signal(ch chan<- *dbus.Signal) {
	c.conn.Signal(ch)
}

func (c *StdDBusClient) ListNames() ([]string, error) {
	var names []string
	err := c.conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names)
	return names, err
}

func (c *StdDBusClient) GetNameOwner(name string) (string, error) {
	var owner string
	err := c.conn.BusObject().Call("org.freedesktop.DBus.GetNameOwner", 0, name).Store(&owner)
	return owner, err
}

func (c *StdDBusClient) GetProperty(bus, path, prop string) (dbus.Variant, error) {
	return c.conn.Object(bus, dbus.ObjectPath(path)).GetProperty(prop)
}
