// routes/api_routes.go
package routes

import (
	"net/http"

	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/LilVoxy/spod_rost/websocket"
	"github.com/gorilla/mux"
)

// RunExecutor запускает расчёт по запросу
type RunExecutor interface {
	Execute() (*models.RunLog, error)
}

// SetupRoutes настраивает все маршруты API и WebSocket.
// journal может быть nil: тогда маршруты истории отвечают 503.
func SetupRoutes(router *mux.Router, executor RunExecutor, journal models.RunLogRepository, wsManager *websocket.Manager) {
	// Применяем CORS middleware
	router.Use(corsMiddleware)

	handlers := &RunHandlers{executor: executor, journal: journal}

	// Лента прогресса расчёта
	router.HandleFunc("/ws/progress", wsManager.HandleConnections)

	// API запусков
	router.HandleFunc("/api/runs", handlers.ListRuns).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/runs", handlers.StartRun).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/runs/last", handlers.GetLastRun).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/runs/{id}", handlers.GetRun).Methods("GET", "OPTIONS")
	router.HandleFunc("/api/runs/{id}/spod", handlers.GetSpod).Methods("GET", "OPTIONS")
}

// corsMiddleware разрешает запросы с любого источника
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
