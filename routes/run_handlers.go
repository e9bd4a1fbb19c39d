// routes/run_handlers.go
package routes

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/LilVoxy/spod_rost/ETL/models"
	"github.com/LilVoxy/spod_rost/processor"
	"github.com/gorilla/mux"
)

const defaultHistoryDays = 30

// RunsResponse структура ответа API для списка запусков
type RunsResponse struct {
	Runs []models.RunLog `json:"runs"`
}

// ErrorResponse структура ответа API с ошибкой
type ErrorResponse struct {
	Error string         `json:"error"`
	Run   *models.RunLog `json:"run,omitempty"`
}

// RunHandlers обрабатывает запросы к журналу и запуск расчёта
type RunHandlers struct {
	executor RunExecutor
	journal  models.RunLogRepository
}

// ListRuns возвращает запуски за последние days дней
func (h *RunHandlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	if !h.journalAvailable(w) {
		return
	}

	days := defaultHistoryDays
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		parsed, err := strconv.Atoi(daysStr)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "Неверный формат параметра days", nil)
			return
		}
		days = parsed
	}

	runs, err := h.journal.GetRunStats(days)
	if err != nil {
		log.Printf("Ошибка при получении журнала запусков: %v", err)
		writeError(w, http.StatusInternalServerError, "Ошибка при получении журнала запусков", nil)
		return
	}
	if runs == nil {
		runs = []models.RunLog{}
	}
	writeJSON(w, http.StatusOK, RunsResponse{Runs: runs})
}

// GetRun возвращает запись о запуске
func (h *RunHandlers) GetRun(w http.ResponseWriter, r *http.Request) {
	if !h.journalAvailable(w) {
		return
	}

	id := mux.Vars(r)["id"]
	run, err := h.journal.GetRun(id)
	if err != nil {
		log.Printf("Ошибка при получении запуска %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Ошибка при получении запуска", nil)
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "Запуск не найден", nil)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// GetLastRun возвращает последний успешный запуск
func (h *RunHandlers) GetLastRun(w http.ResponseWriter, r *http.Request) {
	if !h.journalAvailable(w) {
		return
	}

	run, err := h.journal.GetLastSuccessfulRun()
	if err != nil {
		log.Printf("Ошибка при получении последнего успешного запуска: %v", err)
		writeError(w, http.StatusInternalServerError, "Ошибка при получении последнего запуска", nil)
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "Успешных запусков нет", nil)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// GetSpod отдаёт выгрузку СПОД запуска из архива журнала
func (h *RunHandlers) GetSpod(w http.ResponseWriter, r *http.Request) {
	if !h.journalAvailable(w) {
		return
	}

	id := mux.Vars(r)["id"]
	archive, err := h.journal.GetSpodArchive(id)
	if err != nil {
		log.Printf("Ошибка при получении выгрузки запуска %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Ошибка при получении выгрузки", nil)
		return
	}
	if len(archive) == 0 {
		writeError(w, http.StatusNotFound, "Выгрузка не найдена", nil)
		return
	}

	content, err := processor.DecompressExport(archive)
	if err != nil {
		log.Printf("Поврежден архив выгрузки запуска %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Архив выгрузки поврежден", nil)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"SPOD_%s.csv\"", id))
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}

// StartRun выполняет расчёт и возвращает запись о запуске
func (h *RunHandlers) StartRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.executor.Execute()
	if err != nil {
		log.Printf("Ошибка при выполнении расчёта: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error(), run)
		return
	}
	writeJSON(w, http.StatusCreated, run)
}

func (h *RunHandlers) journalAvailable(w http.ResponseWriter) bool {
	if h.journal == nil {
		writeError(w, http.StatusServiceUnavailable, "Журнал запусков отключен", nil)
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, message string, run *models.RunLog) {
	writeJSON(w, status, ErrorResponse{Error: message, Run: run})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	// Устанавливаем заголовок для JSON
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Кодируем и отправляем ответ
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Ошибка при кодировании JSON: %v", err)
	}
}
