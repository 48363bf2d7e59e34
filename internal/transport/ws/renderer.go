// Package ws streams chunk geometry to websocket viewers.
//
// Renderer implements render.Renderer. Every call is encoded as a wire frame
// and broadcast to connected viewers; a viewer that connects late first
// receives a replay of every live instance.
package ws

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/websocket"

	"github.com/OCharnyshevich/voxelgd/internal/mesh"
	"github.com/OCharnyshevich/voxelgd/internal/render"
	"github.com/OCharnyshevich/voxelgd/internal/voxel"
	"github.com/OCharnyshevich/voxelgd/internal/wire"
)

const (
	writeWait    = 5 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = 30 * time.Second

	defaultQueue = 256
)

// Options configure a Renderer.
type Options struct {
	Dims voxel.Dims
	Seed int64

	// Queue is the number of frames buffered per viewer. A viewer that falls
	// further behind is disconnected.
	Queue int

	// CompressThreshold is passed to wire.Encode. Zero uses the wire default.
	CompressThreshold int

	Logger *slog.Logger
}

type instance struct {
	create    []byte
	transform []byte
	geometry  []byte
}

type viewer struct {
	id  uint64
	out chan []byte
}

// Renderer is a render.Renderer that streams to websocket viewers.
type Renderer struct {
	log       *slog.Logger
	upgrader  websocket.Upgrader
	queue     int
	threshold int

	mu         sync.Mutex
	hello      wire.Hello
	next       render.Instance
	instances  map[render.Instance]*instance
	viewers    map[uint64]*viewer
	nextViewer uint64
	closed     bool
}

var _ render.Renderer = (*Renderer)(nil)

// NewRenderer creates a Renderer with no instances and no viewers.
func NewRenderer(opts Options) *Renderer {
	if opts.Dims == (voxel.Dims{}) {
		opts.Dims = voxel.DefaultDims()
	}
	if opts.Queue <= 0 {
		opts.Queue = defaultQueue
	}
	if opts.CompressThreshold == 0 {
		opts.CompressThreshold = wire.DefaultCompressThreshold
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	return &Renderer{
		log: opts.Logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		queue:     opts.Queue,
		threshold: opts.CompressThreshold,
		hello: wire.Hello{
			Version: wire.Version,
			Axis:    int32(opts.Dims.Axis),
			Height:  int32(opts.Dims.Height),
			Seed:    opts.Seed,
		},
		instances: make(map[render.Instance]*instance),
		viewers:   make(map[uint64]*viewer),
	}
}

// SetSeed changes the seed announced to viewers that connect later.
func (r *Renderer) SetSeed(seed int64) {
	r.mu.Lock()
	r.hello.Seed = seed
	r.mu.Unlock()
}

func (r *Renderer) CreateInstance(key uint64, bounds render.Bounds) (render.Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	inst := r.next
	frame, err := wire.Encode(&wire.CreateInstance{
		Instance: int64(inst),
		Key:      int64(key),
		Min:      bounds.Min,
		Max:      bounds.Max,
	}, r.threshold)
	if err != nil {
		return render.NoInstance, fmt.Errorf("encode create instance: %w", err)
	}

	r.instances[inst] = &instance{create: frame}
	r.broadcastLocked(frame)
	return inst, nil
}

func (r *Renderer) SetGeometry(inst render.Instance, geo mesh.Geometry, mat *render.Material) error {
	render.EnsureDefault(&mat, "ws renderer", r.log)

	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.instances[inst]
	if !ok {
		return fmt.Errorf("set geometry on %d: %w", inst, render.ErrUnknownInstance)
	}
	frame, err := wire.Encode(&wire.Geometry{
		Instance: int64(inst),
		Material: mat.Name,
		Albedo:   mat.Albedo,
		Vertices: geo.Vertices,
		Normals:  geo.Normals,
		UVs:      geo.UVs,
		Indices:  geo.Indices,
	}, r.threshold)
	if err != nil {
		return fmt.Errorf("encode geometry for %d: %w", inst, err)
	}

	st.geometry = frame
	r.broadcastLocked(frame)
	return nil
}

func (r *Renderer) SetTransform(inst render.Instance, origin mgl32.Vec3) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.instances[inst]
	if !ok {
		return fmt.Errorf("set transform on %d: %w", inst, render.ErrUnknownInstance)
	}
	frame, err := wire.Encode(&wire.Transform{Instance: int64(inst), Origin: origin}, r.threshold)
	if err != nil {
		return fmt.Errorf("encode transform for %d: %w", inst, err)
	}

	st.transform = frame
	r.broadcastLocked(frame)
	return nil
}

func (r *Renderer) FreeInstance(inst render.Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.instances[inst]; !ok {
		return fmt.Errorf("free %d: %w", inst, render.ErrUnknownInstance)
	}
	frame, err := wire.Encode(&wire.Free{Instance: int64(inst)}, r.threshold)
	if err != nil {
		return fmt.Errorf("encode free for %d: %w", inst, err)
	}

	delete(r.instances, inst)
	r.broadcastLocked(frame)
	return nil
}

// Viewers returns the number of connected viewers.
func (r *Renderer) Viewers() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.viewers)
}

// Close disconnects every viewer and refuses new ones.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	for id, v := range r.viewers {
		close(v.out)
		delete(r.viewers, id)
	}
}

// broadcastLocked queues frame for every viewer. Viewers whose queue is full
// are dropped.
func (r *Renderer) broadcastLocked(frame []byte) {
	for id, v := range r.viewers {
		select {
		case v.out <- frame:
		default:
			r.log.Warn("viewer too slow, disconnecting", "viewer", id, "queue", r.queue)
			close(v.out)
			delete(r.viewers, id)
		}
	}
}

// replayLocked returns the frames that bring a new viewer up to date.
func (r *Renderer) replayLocked() ([][]byte, error) {
	hello, err := wire.Encode(&r.hello, -1)
	if err != nil {
		return nil, fmt.Errorf("encode hello: %w", err)
	}
	frames := [][]byte{hello}

	ids := make([]render.Instance, 0, len(r.instances))
	for id := range r.instances {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		st := r.instances[id]
		frames = append(frames, st.create)
		if st.transform != nil {
			frames = append(frames, st.transform)
		}
		if st.geometry != nil {
			frames = append(frames, st.geometry)
		}
	}
	return frames, nil
}

// join registers a viewer whose queue already holds the replay.
func (r *Renderer) join() (*viewer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, fmt.Errorf("renderer closed")
	}
	frames, err := r.replayLocked()
	if err != nil {
		return nil, err
	}

	r.nextViewer++
	v := &viewer{id: r.nextViewer, out: make(chan []byte, len(frames)+r.queue)}
	for _, f := range frames {
		v.out <- f
	}
	r.viewers[v.id] = v
	return v, nil
}

func (r *Renderer) leave(v *viewer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.viewers[v.id]; ok {
		close(v.out)
		delete(r.viewers, v.id)
	}
}

// Handler upgrades requests to websocket viewer streams.
func (r *Renderer) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, req *http.Request) {
		conn, err := r.upgrader.Upgrade(rw, req, nil)
		if err != nil {
			r.log.Debug("websocket upgrade failed", "remote", req.RemoteAddr, "error", err)
			return
		}
		defer conn.Close()

		v, err := r.join()
		if err != nil {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, err.Error()),
				time.Now().Add(time.Second))
			return
		}
		r.log.Info("viewer connected", "viewer", v.id, "remote", req.RemoteAddr)
		defer r.log.Info("viewer disconnected", "viewer", v.id)

		ctx, cancel := context.WithCancel(req.Context())
		defer cancel()

		writeErr := make(chan error, 1)
		go func() { writeErr <- r.writeLoop(ctx, conn, v) }()

		// Viewers only send control frames; reading drives pong handling and
		// notices disconnects.
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		readDone := make(chan struct{})
		go func() {
			defer close(readDone)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		select {
		case <-readDone:
			r.leave(v)
			cancel()
			<-writeErr
		case err := <-writeErr:
			r.leave(v)
			if err != nil {
				r.log.Debug("viewer write failed", "viewer", v.id, "error", err)
			}
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
				time.Now().Add(time.Second))
			conn.Close()
			<-readDone
		}
	}
}

func (r *Renderer) writeLoop(ctx context.Context, conn *websocket.Conn, v *viewer) error {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-v.out:
			if !ok {
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				return err
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}
