// websocket/types.go
package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Типы событий ленты прогресса
const (
	EventLog         = "log"
	EventRunFinished = "run_finished"
)

// Event - сообщение ленты прогресса расчёта
type Event struct {
	Type      string      `json:"type"`
	Time      time.Time   `json:"time"`
	Level     string      `json:"level,omitempty"`
	Component string      `json:"component,omitempty"`
	Message   string      `json:"message,omitempty"`
	Run       interface{} `json:"run,omitempty"`
}

// Клиент WebSocket
type Client struct {
	ID     string
	Socket *websocket.Conn
	Send   chan []byte
}

// Менеджер WebSocket-соединений
type Manager struct {
	Clients    map[string]*Client
	Broadcast  chan []byte
	Register   chan *Client
	Unregister chan *Client

	clientsMutex sync.RWMutex
	done         chan struct{}
}

// Конфигурация WebSocket-соединения
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Разрешаем подключения с любого источника
	},
}
