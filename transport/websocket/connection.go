package websocket

import (
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// connection wraps a socket so handlers and bot callbacks can write to it concurrently.
type connection struct {
	socket *websocket.Conn

	writeMutex sync.Mutex

	playerMutex sync.RWMutex
	playerID    string
}

func newConnection(socket *websocket.Conn) *connection {
	return &connection{socket: socket}
}

func (that *connection) Read() ([]byte, error) {
	_, data, err := that.socket.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("failed to read message: %w", err)
	}

	return data, nil
}

func (that *connection) WriteJSON(v any) error {
	that.writeMutex.Lock()
	defer that.writeMutex.Unlock()

	if err := that.socket.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err := that.socket.WriteJSON(v); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func (that *connection) SetPlayerID(id string) {
	that.playerMutex.Lock()
	defer that.playerMutex.Unlock()

	that.playerID = id
}

func (that *connection) PlayerID() string {
	that.playerMutex.RLock()
	defer that.playerMutex.RUnlock()

	return that.playerID
}

func (that *connection) Close() {
	_ = that.socket.Close()
}
