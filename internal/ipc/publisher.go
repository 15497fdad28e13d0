package ipc

import (
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"clockwork/internal/recorder"
)

// Publisher broadcasts recordings and replay progress to connected
// inspector clients over a Unix socket. Structurally identical to the
// teacher's snapshot publisher: an accept loop, a bounded broadcast
// channel that drops the oldest entry under backpressure, and a
// broadcast loop fanning out to every connected client.
type Publisher struct {
	socketPath string
	listener   net.Listener

	clients   map[net.Conn]struct{}
	clientsMu sync.RWMutex

	recordingCh chan recorder.Recording
	progressCh  chan ProgressMessage

	clientCount   int32 // atomic
	sent          int64 // atomic
	droppedFrames int64 // atomic

	running int32 // atomic
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewPublisher creates a Publisher bound to socketPath (DefaultSocketPath
// if empty).
func NewPublisher(socketPath string) *Publisher {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	return &Publisher{
		socketPath:  socketPath,
		clients:     make(map[net.Conn]struct{}),
		recordingCh: make(chan recorder.Recording, 4),
		progressCh:  make(chan ProgressMessage, 8),
		stopCh:      make(chan struct{}),
	}
}

// Start starts the publisher's accept and broadcast loops.
func (p *Publisher) Start() error {
	if !atomic.CompareAndSwapInt32(&p.running, 0, 1) {
		return nil
	}

	listener, err := CreateListener(p.socketPath)
	if err != nil {
		atomic.StoreInt32(&p.running, 0)
		return err
	}
	p.listener = listener

	p.wg.Add(2)
	go p.acceptLoop()
	go p.broadcastLoop()

	log.Printf("ipc: publisher started on %s", p.socketPath)
	return nil
}

// Stop stops the publisher and closes every connected client.
func (p *Publisher) Stop() {
	if !atomic.CompareAndSwapInt32(&p.running, 1, 0) {
		return
	}

	close(p.stopCh)
	if p.listener != nil {
		p.listener.Close()
	}

	p.clientsMu.Lock()
	for conn := range p.clients {
		conn.Close()
	}
	p.clients = make(map[net.Conn]struct{})
	p.clientsMu.Unlock()

	p.wg.Wait()
	CleanupSocket(p.socketPath)
	log.Println("ipc: publisher stopped")
}

// PublishRecording queues a recording snapshot for broadcast,
// non-blocking: it drops the oldest queued recording if the channel is
// full rather than backing up the caller (the owning Engine thread).
func (p *Publisher) PublishRecording(rec recorder.Recording) {
	if atomic.LoadInt32(&p.running) == 0 {
		return
	}
	select {
	case p.recordingCh <- rec:
	default:
		select {
		case <-p.recordingCh:
			atomic.AddInt64(&p.droppedFrames, 1)
		default:
		}
		select {
		case p.recordingCh <- rec:
		default:
		}
	}
}

// PublishProgress queues a replay progress snapshot for broadcast,
// same non-blocking drop-oldest discipline as PublishRecording.
func (p *Publisher) PublishProgress(msg ProgressMessage) {
	if atomic.LoadInt32(&p.running) == 0 {
		return
	}
	select {
	case p.progressCh <- msg:
	default:
		select {
		case <-p.progressCh:
			atomic.AddInt64(&p.droppedFrames, 1)
		default:
		}
		select {
		case p.progressCh <- msg:
		default:
		}
	}
}

// GetStats returns publisher statistics.
func (p *Publisher) GetStats() (clients int, sent int64, dropped int64) {
	return int(atomic.LoadInt32(&p.clientCount)),
		atomic.LoadInt64(&p.sent),
		atomic.LoadInt64(&p.droppedFrames)
}

func (p *Publisher) acceptLoop() {
	defer p.wg.Done()
	for atomic.LoadInt32(&p.running) == 1 {
		conn, err := p.listener.Accept()
		if err != nil {
			if atomic.LoadInt32(&p.running) == 0 {
				return
			}
			log.Printf("ipc: accept error: %v", err)
			continue
		}
		p.addClient(conn)
	}
}

func (p *Publisher) addClient(conn net.Conn) {
	p.clientsMu.Lock()
	p.clients[conn] = struct{}{}
	p.clientsMu.Unlock()

	count := atomic.AddInt32(&p.clientCount, 1)
	log.Printf("ipc: inspector client connected: %s (total: %d)", conn.RemoteAddr(), count)
}

func (p *Publisher) removeClient(conn net.Conn) {
	p.clientsMu.Lock()
	if _, ok := p.clients[conn]; ok {
		delete(p.clients, conn)
		conn.Close()
		p.clientsMu.Unlock()
		count := atomic.AddInt32(&p.clientCount, -1)
		log.Printf("ipc: inspector client disconnected (remaining: %d)", count)
	} else {
		p.clientsMu.Unlock()
	}
}

func (p *Publisher) broadcastLoop() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopCh:
			return
		case rec := <-p.recordingCh:
			p.broadcast(MsgTypeRecording, rec)
		case msg := <-p.progressCh:
			p.broadcast(MsgTypeProgress, msg)
		}
	}
}

func (p *Publisher) broadcast(msgType byte, payload interface{}) {
	p.clientsMu.RLock()
	clients := make([]net.Conn, 0, len(p.clients))
	for conn := range p.clients {
		clients = append(clients, conn)
	}
	p.clientsMu.RUnlock()

	var failed []net.Conn
	for _, conn := range clients {
		conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
		if err := WriteMessage(conn, msgType, payload); err != nil {
			failed = append(failed, conn)
		}
	}

	for _, conn := range failed {
		p.removeClient(conn)
	}

	if len(clients) > 0 && len(failed) < len(clients) {
		atomic.AddInt64(&p.sent, 1)
	}
}
