package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/output"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// Progress messages are sent at most this many times per render, plus the last scanline
const progressUpdates = 20

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ProgressMessage is one JSON message on the /api/progress websocket
type ProgressMessage struct {
	Type      string `json:"type"` // "console", "progress", "complete", "error"
	Done      int    `json:"done,omitempty"`
	Total     int    `json:"total,omitempty"`
	Message   string `json:"message,omitempty"`
	ImageData string `json:"imageData,omitempty"` // Base64 encoded PNG
	Stats     *Stats `json:"stats,omitempty"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// handleRender renders synchronously and responds with the encoded image
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	sceneObj, err := s.createScene(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	raytracer, err := newRaytracer(sceneObj, s.logger)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	logRenderRequest(s.logger, sceneObj.Name, raytracer)

	frame, stats, err := raytracer.Render(r.Context())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			s.logger.Printf("Render of %s cancelled by client\n", sceneObj.Name)
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Render error: %v", err))
		return
	}

	var buf bytes.Buffer
	if err := output.Encode(&buf, frame.Image(req.Profile), req.Format); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", req.Format.ContentType())
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Render-Duration-Ms", strconv.FormatInt(stats.Duration.Milliseconds(), 10))
	w.Header().Set("X-Render-Samples", strconv.Itoa(stats.TotalSamples))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleProgress renders while streaming progress over a websocket.
// The final message carries the image as a base64 PNG.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("upgrade: %v\n", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// Single writer goroutine; the connection allows one concurrent writer
	events := make(chan ProgressMessage, 64)
	writerDone := make(chan struct{})
	go s.writeEvents(conn, cancel, events, writerDone)

	// Reader: the client closing the socket cancels the render
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	startTime := time.Now()
	send := func(msg ProgressMessage) {
		msg.ElapsedMs = time.Since(startTime).Milliseconds()
		select {
		case events <- msg:
		case <-ctx.Done():
		}
	}

	s.streamRender(ctx, r, send)

	close(events)
	<-writerDone

	deadline := time.Now().Add(writeTimeout)
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
}

// streamRender runs one render, reporting console output and progress through send
func (s *Server) streamRender(ctx context.Context, r *http.Request, send func(ProgressMessage)) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		send(ProgressMessage{Type: "error", Message: fmt.Sprintf("Invalid request: %v", err)})
		return
	}
	sceneObj, err := s.createScene(req)
	if err != nil {
		send(ProgressMessage{Type: "error", Message: err.Error()})
		return
	}

	// Setup console logging and streaming
	consoleChan, webLogger := s.setupConsoleLogging(sceneObj)
	var forwarder sync.WaitGroup
	forwarder.Add(1)
	go func() {
		defer forwarder.Done()
		for msg := range consoleChan {
			send(ProgressMessage{Type: "console", Message: msg.Message})
		}
	}()

	raytracer, err := newRaytracer(sceneObj, webLogger)
	if err != nil {
		close(consoleChan)
		forwarder.Wait()
		send(ProgressMessage{Type: "error", Message: err.Error()})
		return
	}

	logRenderRequest(webLogger, sceneObj.Name, raytracer)
	raytracer.SetProgressCallback(func(done, total int) {
		step := max(1, total/progressUpdates)
		if done%step == 0 || done == total {
			send(ProgressMessage{Type: "progress", Done: done, Total: total})
		}
	})

	frame, stats, err := raytracer.Render(ctx)
	close(consoleChan)
	forwarder.Wait()
	if err != nil {
		send(ProgressMessage{Type: "error", Message: fmt.Sprintf("Render error: %v", err)})
		return
	}

	imageData, err := imageToBase64PNG(frame.Image(req.Profile))
	if err != nil {
		send(ProgressMessage{Type: "error", Message: fmt.Sprintf("failed to encode image: %v", err)})
		return
	}

	renderStats := newStats(frame, stats)
	send(ProgressMessage{
		Type:      "complete",
		Done:      frame.Height,
		Total:     frame.Height,
		ImageData: imageData,
		Stats:     &renderStats,
	})
}

// writeEvents writes every message from events to the socket. After a failed
// write it cancels the render and keeps draining so senders never block.
func (s *Server) writeEvents(conn *websocket.Conn, cancel context.CancelFunc, events <-chan ProgressMessage, done chan<- struct{}) {
	defer close(done)
	failed := false
	for msg := range events {
		if failed {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			s.logger.Printf("websocket write: %v\n", err)
			failed = true
			cancel()
		}
	}
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging(sceneObj *scene.Scene) (chan ConsoleMessage, *WebLogger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("%s-%d", sceneObj.Name, time.Now().UnixNano())
	return consoleChan, NewWebLogger(renderID, s.logger, consoleChan)
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// logRenderRequest records what a request is about to render
func logRenderRequest(logger core.Logger, sceneName string, raytracer *renderer.Raytracer) {
	camera, sampling := raytracer.Camera(), raytracer.Config()
	logger.Printf("Render request: %s scene at %dx%d, %d spp, seed %d\n",
		sceneName, camera.Width(), camera.Height(), sampling.SamplesPerPixel, sampling.Seed)
}
