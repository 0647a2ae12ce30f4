// file: websocket/connection_test.go
package websocket

import (
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn implements WSConn. Inbound frames are fed through reads and
// outbound writes are recorded.
type fakeConn struct {
	reads chan int

	mu      sync.Mutex
	written [][]byte
	closed  bool
	done    chan struct{}
}

func newFakeConn() *fakeConn {
	return &fakeConn{reads: make(chan int, 8), done: make(chan struct{})}
}

func (fc *fakeConn) WriteMessage(messageType int, data []byte) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.closed {
		return errors.New("closed")
	}
	if messageType == websocket.TextMessage {
		fc.written = append(fc.written, data)
	}
	return nil
}

func (fc *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (fc *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case mt := <-fc.reads:
		return mt, []byte("ping"), nil
	case <-fc.done:
		return 0, nil, errors.New("use of closed connection")
	}
}

func (fc *fakeConn) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if !fc.closed {
		fc.closed = true
		close(fc.done)
	}
	return nil
}

func (fc *fakeConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 12345}
}

func (fc *fakeConn) SetReadLimit(int64) {}

func (fc *fakeConn) SetReadDeadline(time.Time) error { return nil }

func (fc *fakeConn) SetPongHandler(func(string) error) {}

func (fc *fakeConn) messages() [][]byte {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return append([][]byte(nil), fc.written...)
}

func TestConnection_ReadPumpCountsFrames(t *testing.T) {
	fc := newFakeConn()
	c := newConnection(7, fc)

	var mu sync.Mutex
	data := 0
	closed := make(chan struct{})
	go c.readPump(func() {
		mu.Lock()
		data++
		mu.Unlock()
	}, func() { close(closed) })

	fc.reads <- websocket.TextMessage
	fc.reads <- websocket.BinaryMessage
	fc.reads <- websocket.TextMessage
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return data == 3
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, fc.Close())
	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("readPump did not report close")
	}
}

func TestConnection_WritePumpDeliversQueuedMessages(t *testing.T) {
	fc := newFakeConn()
	c := newConnection(1, fc)
	done := make(chan struct{})
	go func() {
		c.writePump()
		close(done)
	}()

	assert.True(t, c.Send([]byte("a")))
	assert.True(t, c.Send([]byte("b")))
	require.Eventually(t, func() bool { return len(fc.messages()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, fc.messages())

	c.Close()
	c.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("writePump did not exit")
	}
	assert.False(t, c.Send([]byte("c")))
}

func TestConnection_SendDropsWhenBufferFull(t *testing.T) {
	c := newConnection(1, newFakeConn())
	for i := 0; i < sendBuffer; i++ {
		require.True(t, c.Send([]byte("x")))
	}
	assert.False(t, c.Send([]byte("overflow")))
}
