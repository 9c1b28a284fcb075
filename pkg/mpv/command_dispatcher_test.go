package mpv

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"testing"
	"time"
)

type fakeMpv struct {
	conn     net.Conn
	commands chan []interface{}
	respond  func(cmd []interface{}) (string, interface{})
}

func (f *fakeMpv) serve() {
	scanner := bufio.NewScanner(f.conn)
	for scanner.Scan() {
		var payload struct {
			Command   []interface{} `json:"command"`
			RequestID int           `json:"request_id"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &payload); err != nil {
			return
		}

		f.commands <- payload.Command
		status, data := f.respond(payload.Command)
		out, _ := json.Marshal(map[string]interface{}{
			"request_id": payload.RequestID,
			"error":      status,
			"data":       data,
		})
		f.conn.Write(append(out, '\n'))
	}
}

func (f *fakeMpv) emit(name string, data interface{}) {
	out, _ := json.Marshal(map[string]interface{}{
		"event": propertyChangeEvent,
		"id":    1,
		"name":  name,
		"data":  data,
	})
	f.conn.Write(append(out, '\n'))
}

func newConnectedDispatcher(t *testing.T, respond func(cmd []interface{}) (string, interface{})) (*commandDispatcher, *fakeMpv) {
	t.Helper()

	client, server := net.Pipe()
	cd := newCommandDispatcher(commandDispatcherConfig{
		errWriter:      io.Discard,
		outWriter:      io.Discard,
		requestTimeout: time.Second,
	})
	cd.conn = client

	fake := &fakeMpv{
		conn:     server,
		commands: make(chan []interface{}, 16),
		respond:  respond,
	}
	go fake.serve()
	go cd.Serve()

	deadline := time.Now().Add(time.Second)
	for !cd.Connected() {
		if time.Now().After(deadline) {
			t.Fatalf("Dispatcher did not start serving")
		}
		time.Sleep(time.Millisecond)
	}

	t.Cleanup(func() {
		cd.Close()
		server.Close()
	})

	return cd, fake
}

func TestRequest_ReturnsDataOnSuccess(t *testing.T) {
	// given
	cd, fake := newConnectedDispatcher(t, func(cmd []interface{}) (string, interface{}) {
		return resultSuccess, "42.5"
	})

	// when
	response, err := cd.Request(command{name: setPropertyCommand, elements: []interface{}{VolumeProperty, 50}})

	// then
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	if response.Data != "42.5" {
		t.Errorf("Expected data %v to equal 42.5", response.Data)
	}

	cmd := <-fake.commands
	if fmt.Sprint(cmd) != fmt.Sprint([]interface{}{setPropertyCommand, VolumeProperty, float64(50)}) {
		t.Errorf("Unexpected command dispatched: %v", cmd)
	}
}

func TestRequest_FailedResponse(t *testing.T) {
	// given
	cd, _ := newConnectedDispatcher(t, func(cmd []interface{}) (string, interface{}) {
		return "property unavailable", nil
	})

	// when
	_, err := cd.Request(command{name: seekCommand, elements: []interface{}{10.0, AbsoluteExactValue}})

	// then
	if !errors.Is(err, ErrCommandFailedResponse) {
		t.Errorf("Expected error %v to be ErrCommandFailedResponse", err)
	}
}

func TestRequest_NotConnected(t *testing.T) {
	// given
	cd := newCommandDispatcher(commandDispatcherConfig{
		errWriter: io.Discard,
		outWriter: io.Discard,
	})

	// when
	_, err := cd.Request(command{name: stopCommand})

	// then
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("Expected error %v to be ErrNotConnected", err)
	}
}

func TestSubscribeToProperty_DeliversChanges(t *testing.T) {
	// given
	cd, fake := newConnectedDispatcher(t, func(cmd []interface{}) (string, interface{}) {
		return resultSuccess, nil
	})
	out := make(chan ObservePropertyResponse, 1)

	// when
	_, err := cd.SubscribeToProperty(PlaybackTimeProperty, out)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	cmd := <-fake.commands
	go fake.emit(PlaybackTimeProperty, "3.250000")

	// then
	if cmd[0] != observePropertyCommand || cmd[2] != PlaybackTimeProperty {
		t.Errorf("Unexpected observe command dispatched: %v", cmd)
	}

	select {
	case change := <-out:
		if change.Property != PlaybackTimeProperty || change.Data != "3.250000" {
			t.Errorf("Unexpected change delivered: %+v", change)
		}
	case <-time.After(time.Second):
		t.Fatalf("Property change was not delivered")
	}
}

func TestUnobserveProperty_UnknownSubscription(t *testing.T) {
	// given
	cd := newCommandDispatcher(commandDispatcherConfig{
		errWriter: io.Discard,
		outWriter: io.Discard,
	})
	out := make(chan ObservePropertyResponse)
	cd.SubscribeToProperty(PauseProperty, out)

	// when
	err := cd.UnobserveProperty(PauseProperty, 1000)

	// then
	if !errors.Is(err, ErrNoPropertySubscription) {
		t.Errorf("Expected error %v to be ErrNoPropertySubscription", err)
	}
}
