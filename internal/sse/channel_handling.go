package sse

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"sync"
)

var (
	sseEventEnd = []byte("\n\n")

	errResponseJSONCreationFailed = errors.New("could not create JSON for response")
	errClientWritingFailed        = errors.New("could not write to the client")
	errConvertToFlusherFailed     = errors.New("could not instantiate http sse flusher")
)

const (
	replaySseStateArg = "replay"
	sseChannelArg     = "channel"

	// ObserverAdded informs about new observer being added to the SSE server.
	ObserverAdded ObserverChangeVariant = "observer-added"

	// ObserverRemoved informs about new observer being removed from the SSE server.
	ObserverRemoved ObserverChangeVariant = "observer-removed"
)

// ObserverChangeVariant specifies what change to the state the specified observers change specifies (addition, removal, etc.).
type ObserverChangeVariant string

// ObserversChange informs about changes to the SSE observers list.
type ObserversChange struct {
	ChangeVariant  ObserverChangeVariant
	RemoteAddr     string
	ChannelVariant ChannelVariant
}

// handlerConfig is used to control creation of SSE handler for Server
type handlerConfig struct {
	Channels map[ChannelVariant]channel
}

func (s *Server) createSseRegisterHandler(cfg handlerConfig) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			res.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var channels []channel
		for _, reqChannel := range req.URL.Query()[sseChannelArg] {
			sseChannel, ok := cfg.Channels[ChannelVariant(reqChannel)]
			if !ok {
				res.WriteHeader(http.StatusBadRequest)
				res.Write([]byte(fmt.Sprintf("unknown channel %s\n", reqChannel)))

				return
			}

			channels = append(channels, sseChannel)
		}

		if len(channels) == 0 {
			res.WriteHeader(http.StatusBadRequest)
			res.Write([]byte(fmt.Sprintf("at least one %s argument is required\n", sseChannelArg)))

			return
		}

		sseResWriter, err := sseResponseWriter(res)
		if err != nil {
			res.WriteHeader(http.StatusBadRequest)
			return
		}

		done := make(chan struct{})
		go func() {
			select {
			case <-req.Context().Done():
			case <-s.ctx.Done():
			}
			close(done)
		}()

		wg := &sync.WaitGroup{}
		for _, sseChannel := range channels {
			wg.Add(1)
			go s.observeChannelVariant(sseResWriter, req, sseChannel, done, wg)
		}

		wg.Wait()
		s.outLog.Printf("all sse channels closed for %s\n", req.RemoteAddr)
	}
}

func (s *Server) observeChannelVariant(res ResponseWriter, req *http.Request, sseChannel channel, done <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()

	remoteAddr := req.RemoteAddr
	sseChannel.AddObserver(remoteAddr)
	s.notifyObserversChange(ObserversChange{
		ChangeVariant:  ObserverAdded,
		RemoteAddr:     remoteAddr,
		ChannelVariant: sseChannel.Variant(),
	})
	s.outLog.Printf("added %s observer with addr %s\n", sseChannel.Variant(), remoteAddr)

	if replaySseState(req) {
		err := sseChannel.Replay(res)
		if err != nil {
			s.errLog.Printf("could not replay data on sse: %s\n", err)
		}
	}

	err := sseChannel.ServeObserver(remoteAddr, res, done)
	if err != nil {
		s.errLog.Printf("sse observation on channel %s failed for %s: %s\n", sseChannel.Variant(), remoteAddr, err)
	}

	sseChannel.RemoveObserver(remoteAddr)
	s.notifyObserversChange(ObserversChange{
		ChangeVariant:  ObserverRemoved,
		RemoteAddr:     remoteAddr,
		ChannelVariant: sseChannel.Variant(),
	})
	s.outLog.Printf("removing %s observer with addr %s\n", sseChannel.Variant(), remoteAddr)
}

func (s *Server) notifyObserversChange(change ObserversChange) {
	select {
	case s.observersChanges <- change:
	case <-s.ctx.Done():
	}
}

func sseResponseWriter(res http.ResponseWriter) (ResponseWriter, error) {
	flusher, ok := res.(http.Flusher)
	if !ok {
		return ResponseWriter{}, errConvertToFlusherFailed
	}

	res.Header().Set("Connection", "keep-alive")
	res.Header().Set("Content-Type", "text/event-stream")
	res.Header().Set("Access-Control-Allow-Origin", "*")
	res.WriteHeader(http.StatusOK)
	flusher.Flush()

	sseFlusher := ResponseWriter{
		res:     res,
		flusher: flusher,
		lock:    &sync.Mutex{},
	}
	return sseFlusher, nil
}

func replaySseState(req *http.Request) bool {
	replay, ok := req.URL.Query()[replaySseStateArg]

	return ok && len(replay) > 0 && replay[0] == "true"
}

func formatSseEvent(channel ChannelVariant, eventName string, data []byte) []byte {
	var out []byte

	channelEvent := fmt.Sprintf("%s.%s", channel, eventName)
	out = append(out, []byte(fmt.Sprintf("event:%s\n", channelEvent))...)

	dataEntries := bytes.Split(data, []byte("\n"))
	for _, dataEntry := range dataEntries {
		out = append(out, []byte(fmt.Sprintf("data:%s\n", dataEntry))...)
	}

	out = append(out, sseEventEnd...)
	return out
}
