// websocket/manager.go
package websocket

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/LilVoxy/spod_rost/ETL/models"
	"go.uber.org/zap/zapcore"
)

// Создание нового менеджера ленты прогресса
func NewManager() *Manager {
	return &Manager{
		Broadcast:  make(chan []byte),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Clients:    make(map[string]*Client),
		done:       make(chan struct{}),
	}
}

// Run обслуживает подключения и рассылку до отмены ctx
func (manager *Manager) Run(ctx context.Context) {
	defer func() {
		close(manager.done)
		manager.clientsMutex.Lock()
		for id, client := range manager.Clients {
			close(client.Send)
			delete(manager.Clients, id)
		}
		manager.clientsMutex.Unlock()
	}()

	for {
		select {
		case client := <-manager.Register:
			manager.clientsMutex.Lock()
			manager.Clients[client.ID] = client
			manager.clientsMutex.Unlock()
			log.Printf("Клиент ленты %s подключился", client.ID)

		case client := <-manager.Unregister:
			manager.clientsMutex.Lock()
			if _, ok := manager.Clients[client.ID]; ok {
				delete(manager.Clients, client.ID)
				close(client.Send)
				log.Printf("Клиент ленты %s отключился", client.ID)
			}
			manager.clientsMutex.Unlock()

		case message := <-manager.Broadcast:
			// Рассылаем сообщение всем подключенным клиентам
			manager.broadcast(message)

		case <-ctx.Done():
			return
		}
	}
}

// broadcast отправляет сообщение всем подключенным клиентам.
// Клиент с переполненной очередью отключается.
func (manager *Manager) broadcast(message []byte) {
	manager.clientsMutex.Lock()
	defer manager.clientsMutex.Unlock()

	for id, client := range manager.Clients {
		select {
		case client.Send <- message:
		default:
			close(client.Send)
			delete(manager.Clients, id)
		}
	}
}

// ClientCount возвращает число подключенных клиентов
func (manager *Manager) ClientCount() int {
	manager.clientsMutex.RLock()
	defer manager.clientsMutex.RUnlock()
	return len(manager.Clients)
}

// Publish отправляет событие в ленту. После остановки менеджера событие отбрасывается.
func (manager *Manager) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Ошибка кодирования события ленты: %v", err)
		return
	}
	select {
	case manager.Broadcast <- data:
	case <-manager.done:
	}
}

// LogHook передаёт записи журнала расчёта в ленту
func (manager *Manager) LogHook(entry zapcore.Entry) error {
	manager.Publish(Event{
		Type:      EventLog,
		Time:      entry.Time,
		Level:     entry.Level.CapitalString(),
		Component: entry.LoggerName,
		Message:   entry.Message,
	})
	return nil
}

// RunFinished сообщает ленте о завершении запуска
func (manager *Manager) RunFinished(run models.RunLog) {
	manager.Publish(Event{
		Type: EventRunFinished,
		Time: time.Now(),
		Run:  run,
	})
}
