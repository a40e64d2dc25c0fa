// Package respond writes JSON responses for the /lists and /api routes.
package respond

import (
	"encoding/json"
	"net/http"
)

func JSON(w http.ResponseWriter, r *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	// заголовок уже отправлен, ошибку кодирования клиенту не передать
	_ = json.NewEncoder(w).Encode(data)
}

// Error пишет {"error": message}
func Error(w http.ResponseWriter, r *http.Request, code int, message string) {
	JSON(w, r, code, map[string]string{"error": message})
}

// NoContent отвечает 204 без тела: удаление списка, выход из API
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
