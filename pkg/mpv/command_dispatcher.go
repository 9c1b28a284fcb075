package mpv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"
)

const (
	socketType = "unix"

	resultSuccess = "success"

	propertyChangeEvent = "property-change"

	defaultRequestTimeout = 5 * time.Second
)

var (
	// ErrCommandFailedResponse informs about mpv returning something other than "success" in an error field of a response.
	ErrCommandFailedResponse = errors.New("mpv response does not include success state")

	// ErrConnectionInProgress informs about failure of operation due to connection of command dispatcher being in progress.
	ErrConnectionInProgress = errors.New("command dispatcher is connected to mpv socket")

	// ErrNotConnected informs that request could not be made since there is no connection to mpv.
	ErrNotConnected = errors.New("command dispatcher is not connected to mpv socket")

	// ErrNoPropertyObserver informs about failure of finding observer for a specified property name (most likely property is not observed).
	ErrNoPropertyObserver = errors.New("could not find observer for a provided property name")

	// ErrNoPropertySubscription informs about failure of finding observer for a specified subscription id.
	ErrNoPropertySubscription = errors.New("could not find subscription for a provided subscription id")

	// ErrRequestTimeout informs that mpv did not respond to the request in time.
	ErrRequestTimeout = errors.New("mpv did not respond to the request in time")

	newline = []byte("\n")

	commandDispatcherLogPrefix = "mpv.CommandDispatcher#"
)

// commandPayload represents command payload sent to the mpv
type commandPayload struct {
	Command   []interface{} `json:"command"`
	RequestID int           `json:"request_id"`
}

// Response is a result of executing mpv request command.
type Response struct {
	Data interface{} `json:"data"`
}

// ObservePropertyResponse is a result of mpv emitting event with a property change
type ObservePropertyResponse struct {
	Response
	Property string
}

// ResponsePayload holds data returned after mpv command execution through json IPC.
type ResponsePayload struct {
	Err       string      `json:"error"`
	RequestID int         `json:"request_id"`
	ID        int         `json:"id"`
	Event     string      `json:"event"`
	Name      string      `json:"name"`
	Data      interface{} `json:"data"`
}

// commandDispatcher connects to the provided socket path and handles sending commands and handling results
type commandDispatcher struct {
	conn                       net.Conn
	connLock                   *sync.RWMutex
	connectionTimeout          time.Duration
	errLog                     *log.Logger
	listeningOnSocket          bool
	listeningOnSocketLock      *sync.RWMutex
	outLog                     *log.Logger
	propertyObservers          map[string]*propertyObserver
	propertyObserversLock      *sync.RWMutex
	propertySubscriptionID     int
	propertySubscriptionIDLock *sync.Mutex
	requests                   map[int]chan ResponsePayload
	requestsLock               *sync.Mutex
	requestID                  int
	requestIDLock              *sync.Mutex
	requestTimeout             time.Duration
	socketPath                 string
}

type propertyObserver struct {
	lock          *sync.RWMutex
	subscriptions map[int]chan<- ObservePropertyResponse
}

type commandDispatcherConfig struct {
	connectionTimeout time.Duration
	errWriter         io.Writer
	requestTimeout    time.Duration
	socketPath        string
	outWriter         io.Writer
}

// newCommandDispatcher returns dispatcher connected to the socket.
func newCommandDispatcher(cfg commandDispatcherConfig) *commandDispatcher {
	requestTimeout := cfg.requestTimeout
	if requestTimeout == 0 {
		requestTimeout = defaultRequestTimeout
	}

	return &commandDispatcher{
		connLock:                   &sync.RWMutex{},
		connectionTimeout:          cfg.connectionTimeout,
		errLog:                     log.New(cfg.errWriter, commandDispatcherLogPrefix, log.LstdFlags),
		listeningOnSocket:          false,
		listeningOnSocketLock:      &sync.RWMutex{},
		outLog:                     log.New(cfg.outWriter, commandDispatcherLogPrefix, log.LstdFlags),
		propertyObservers:          make(map[string]*propertyObserver),
		propertyObserversLock:      &sync.RWMutex{},
		propertySubscriptionID:     1,
		propertySubscriptionIDLock: &sync.Mutex{},
		requests:                   make(map[int]chan ResponsePayload),
		requestsLock:               &sync.Mutex{},
		requestID:                  1,
		requestIDLock:              &sync.Mutex{},
		requestTimeout:             requestTimeout,
		socketPath:                 cfg.socketPath,
	}
}

// Close makes connection by ipc to the mpv closed.
func (cd *commandDispatcher) Close() {
	cd.connLock.Lock()
	defer cd.connLock.Unlock()

	if cd.conn == nil {
		return
	}

	cd.conn.Close()
	cd.conn = nil
}

// Connect attempts to connect to the unix socket through which dispatcher will communicate with MPV.
// When connection is already estabilished, ErrConnectionInProgress will be returned,
// as connection is an invalid operation while dispatcher is already connected.
func (cd *commandDispatcher) Connect() error {
	if cd.Connected() {
		return ErrConnectionInProgress
	}

	cd.outLog.Printf("trying to connect to mpv socket at '%s' with timeout: %f seconds\n", cd.socketPath, cd.connectionTimeout.Seconds())
	err := cd.connectToMpvSocket()
	if err != nil {
		cd.errLog.Printf("could not connect to socket due to error: %s\n", err)
		return err
	}
	cd.outLog.Printf("connected to socket at '%s'\n", cd.socketPath)

	return nil
}

// Connected informs whether CommandDispatcher is ready to make requests and observe properties.
func (cd *commandDispatcher) Connected() bool {
	cd.listeningOnSocketLock.RLock()
	defer cd.listeningOnSocketLock.RUnlock()

	return cd.listeningOnSocket
}

// Dispatch sends a commmand with specified requestID to the mpv using socket.
// Returns error if command was not correctly dispatched.
func (cd *commandDispatcher) Dispatch(cmd command, requestID int) error {
	payload, err := prepareCommandPayload(cmd, requestID)
	if err != nil {
		return err
	}

	cd.connLock.RLock()
	defer cd.connLock.RUnlock()

	if cd.conn == nil {
		return ErrNotConnected
	}

	written, err := cd.conn.Write(payload)
	if err != nil {
		return err
	}

	if len(payload) != written {
		return fmt.Errorf("written %d out of %d bytes of command '%s'", written, len(payload), cmd.name)
	}

	return nil
}

// Request is used to send simple Request->response command that is completed after the first response from mpv comes.
// Request gives up after the request timeout elapses, since mpv may be closed while the request is in flight.
func (cd *commandDispatcher) Request(cmd command) (Response, error) {
	var result Response

	if !cd.Connected() {
		return result, ErrNotConnected
	}

	requestResult := make(chan ResponsePayload, 1)

	requestID := cd.reserveRequestID()
	cd.requestsLock.Lock()
	cd.requests[requestID] = requestResult
	cd.requestsLock.Unlock()

	defer func() {
		cd.requestsLock.Lock()
		delete(cd.requests, requestID)
		cd.requestsLock.Unlock()
	}()

	err := cd.Dispatch(cmd, requestID)
	if err != nil {
		return result, err
	}

	timer := time.NewTimer(cd.requestTimeout)
	defer timer.Stop()

	select {
	case resPayload := <-requestResult:
		if !IsResultSuccess(resPayload) {
			return result, fmt.Errorf("%w: command '%s' returned '%s'", ErrCommandFailedResponse, cmd.name, resPayload.Err)
		}

		return Response{
			Data: resPayload.Data,
		}, nil
	case <-timer.C:
		return result, ErrRequestTimeout
	}
}

// Serve instructs command dispatcher to serve communication handling with mpv through the socket -
// this involves dispatching requests and property observing.
// During the process property observers already registered on command dispatcher are observed.
// It's necessary since either command dispatcher could be reconnected (due to MPV instance closing etc.), thus losing all observers,
// or subscriptions occured before connection was made, resulting in no request being sent since there was no MPV instance to receive those requests.
// Property observing errors are non fatal to serving of CommandDispatcher, as such no errors interecepting is done on "observerProperties".
func (cd *commandDispatcher) Serve() error {
	cd.setListeningOnSocket(true)
	defer cd.setListeningOnSocket(false)

	go cd.observeProperties()
	cd.outLog.Printf("listening on unix socket at '%s'\n", cd.socketPath)

	return cd.listenOnUnixSocket()
}

// SubscribeToProperty listens to property mpv events.
// Returned id is used as a key to listened property mpv events. Id should be used when unsubscribing. When error is encountered id is useless.
// The channel provided is never closed to enable aggregation from multiple observers.
// However calling unsubscribe will ensure that command dispatcher will stop trying to send on a specified channel.
func (cd *commandDispatcher) SubscribeToProperty(propertyName string, out chan<- ObservePropertyResponse) (int, error) {
	propertySubscriptionID := cd.reservePropertySubscriptionID()

	observer, ok := cd.propertyObserver(propertyName)
	if !ok {
		newObserver, err := cd.addPropertyObserver(propertyName)
		if err != nil {
			return 0, err
		}

		observer = newObserver
	}

	observer.lock.Lock()
	observer.subscriptions[propertySubscriptionID] = out
	observer.lock.Unlock()

	return propertySubscriptionID, nil
}

// UnobserveProperty instructs command dispatcher to stop sending updates about property on specified id.
func (cd *commandDispatcher) UnobserveProperty(propertyName string, id int) error {
	observer, ok := cd.propertyObserver(propertyName)
	if !ok {
		return ErrNoPropertyObserver
	}

	observer.lock.Lock()
	defer observer.lock.Unlock()

	if _, ok := observer.subscriptions[id]; !ok {
		return ErrNoPropertySubscription
	}

	delete(observer.subscriptions, id)
	return nil
}

// addPropertyObserver creates a new observer for a specific property.
// The request to observer property will not be made if the connection is not estabilished since it will fail,
// but the observer is added to propertyObservers map which will be used during connection to start observing properties on a new connection.
func (cd *commandDispatcher) addPropertyObserver(propertyName string) (*propertyObserver, error) {
	newObserver := &propertyObserver{
		lock:          &sync.RWMutex{},
		subscriptions: make(map[int]chan<- ObservePropertyResponse),
	}

	cd.propertyObserversLock.Lock()
	cd.propertyObservers[propertyName] = newObserver
	cd.propertyObserversLock.Unlock()

	// Do not try to send a request when dispatcher is not connected to the MPV instance through the socket.
	if !cd.Connected() {
		return newObserver, nil
	}

	err := cd.observeProperty(propertyName)
	return newObserver, err
}

func (cd *commandDispatcher) connectToMpvSocket() error {
	conn, err := waitForSocketConnection(cd.socketPath, cd.connectionTimeout)
	if err != nil {
		return err
	}

	cd.connLock.Lock()
	cd.conn = conn
	cd.connLock.Unlock()

	return nil
}

func (cd *commandDispatcher) distributeResponse(result ResponsePayload) error {
	if result.Event == propertyChangeEvent {
		observer, ok := cd.propertyObserver(result.Name)
		if !ok {
			return fmt.Errorf("observe property event provided to not observed property %s", result.Name)
		}

		change := ObservePropertyResponse{
			Property: result.Name,
			Response: Response{
				Data: result.Data,
			},
		}

		observer.lock.RLock()
		defer observer.lock.RUnlock()
		for _, out := range observer.subscriptions {
			out <- change
		}

		return nil
	}

	if result.Event != "" {
		return nil
	}

	if result.RequestID == 0 {
		return fmt.Errorf("result provided without RequestID")
	}

	cd.requestsLock.Lock()
	request, ok := cd.requests[result.RequestID]
	cd.requestsLock.Unlock()
	if !ok {
		return fmt.Errorf("result %d provided to not dispatched request", result.RequestID)
	}

	request <- result
	return nil
}

func (cd *commandDispatcher) listenOnUnixSocket() error {
	cd.connLock.RLock()
	conn := cd.conn
	cd.connLock.RUnlock()

	if conn == nil {
		return ErrNotConnected
	}

	responses := NewResponsesIterator(conn)
	for {
		payload, err := responses.Next()
		if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
			cd.outLog.Println("connection closed")
			return nil
		} else if err != nil {
			var unmarshalErr *json.UnmarshalTypeError
			if errors.As(err, &unmarshalErr) {
				cd.errLog.Printf("could not parse the payload from the connection: %s\n", err)
				continue
			}

			return fmt.Errorf("could not read the payload from the connection: %w", err)
		}

		err = cd.distributeResponse(payload)
		if err != nil {
			cd.errLog.Printf("could not distribute response: %s\n", err)
		}
	}
}

func (cd *commandDispatcher) observeProperties() {
	cd.propertyObserversLock.RLock()
	names := make([]string, 0, len(cd.propertyObservers))
	for propertyName := range cd.propertyObservers {
		names = append(names, propertyName)
	}
	cd.propertyObserversLock.RUnlock()

	for _, propertyName := range names {
		err := cd.observeProperty(propertyName)
		if err != nil {
			cd.errLog.Printf("could not observe property '%s' due to error: %s", propertyName, err)
		}
	}
}

func (cd *commandDispatcher) observeProperty(propertyName string) error {
	observeID := cd.reserveRequestID()
	cmd := command{
		name:     observePropertyCommand,
		elements: []interface{}{observeID, propertyName},
	}
	_, err := cd.Request(cmd)

	return err
}

func (cd *commandDispatcher) propertyObserver(propertyName string) (*propertyObserver, bool) {
	cd.propertyObserversLock.RLock()
	defer cd.propertyObserversLock.RUnlock()

	observer, ok := cd.propertyObservers[propertyName]
	return observer, ok
}

func (cd *commandDispatcher) reserveRequestID() int {
	cd.requestIDLock.Lock()
	defer cd.requestIDLock.Unlock()

	requestID := cd.requestID
	cd.requestID++

	return requestID
}

func (cd *commandDispatcher) reservePropertySubscriptionID() int {
	cd.propertySubscriptionIDLock.Lock()
	defer cd.propertySubscriptionIDLock.Unlock()

	propertyObserverID := cd.propertySubscriptionID
	cd.propertySubscriptionID++

	return propertyObserverID
}

func (cd *commandDispatcher) setListeningOnSocket(listening bool) {
	cd.listeningOnSocketLock.Lock()
	defer cd.listeningOnSocketLock.Unlock()

	cd.listeningOnSocket = listening
}

// IsResultSuccess return whether returned result specifies successful command execution.
func IsResultSuccess(result ResponsePayload) bool {
	return result.Err == resultSuccess
}

func waitForSocketConnection(socketPath string, timeout time.Duration) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	connection := make(chan net.Conn, 1)
	go dialSocket(ctx, socketType, socketPath, connection)

	select {
	case conn := <-connection:
		return conn, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func dialSocket(ctx context.Context, socketType string, socketPath string, done chan<- net.Conn) {
	for {
		conn, err := net.Dial(socketType, socketPath)
		if err == nil {
			done <- conn
			return
		}

		// mpv takes a moment (up to a few seconds) to start listening on the socket, repeat until connection successful.
		select {
		case <-ctx.Done():
			return
		case <-time.After(1 * time.Second):
		}
	}
}

func getResponsePayload(payload []byte) (ResponsePayload, error) {
	var result ResponsePayload
	err := json.Unmarshal(payload, &result)
	if err != nil {
		return result, fmt.Errorf("could not parse the response JSON as ResponsePayload: %w", err)
	}

	return result, nil
}

func prepareCommandPayload(cmd command, requestID int) ([]byte, error) {
	var payload []byte
	cmdPayload := commandPayload{
		Command:   cmd.JSONIPCFormat(),
		RequestID: requestID,
	}

	payload, err := json.Marshal(cmdPayload)
	if err != nil {
		return payload, err
	}

	payload = append(payload, newline...)

	return payload, nil
}
