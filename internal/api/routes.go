package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/char5742/pointer-relay/internal/config"
	"github.com/char5742/pointer-relay/internal/event"
	"github.com/char5742/pointer-relay/internal/features"
)

// ルートの設定
func (s *Server) setupRoutes(router *http.ServeMux) {
	// 設定関連のエンドポイント
	router.HandleFunc("GET /api/config", s.handleGetConfig)
	router.HandleFunc("PUT /api/config", s.handleUpdateConfig)
	router.HandleFunc("POST /api/config/save", s.handleSaveConfig)
	router.HandleFunc("PUT /api/filter", s.handleUpdateFilter)

	// デバイス関連のエンドポイント
	router.HandleFunc("GET /api/devices", s.handleGetDevices)
	router.HandleFunc("PUT /api/devices/preferred", s.handleSetPreferredDevices)

	// サービス関連のエンドポイント
	router.HandleFunc("POST /api/service/start", s.handleStartService)
	router.HandleFunc("POST /api/service/stop", s.handleStopService)
	router.HandleFunc("GET /api/service/status", s.handleServiceStatus)

	// 離散入力イベントの投入エンドポイント
	router.HandleFunc("POST /api/event", s.handleInjectEvent)

	// ヘルスチェック用エンドポイント
	router.HandleFunc("GET /api/health", s.handleHealthCheck)
}

// 設定取得ハンドラ
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.GetConfig())
}

// 設定更新ハンドラ
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var newConfig config.Config

	if err := json.NewDecoder(r.Body).Decode(&newConfig); err != nil {
		writeError(w, http.StatusBadRequest, "設定の解析に失敗しました")
		return
	}

	s.UpdateConfig(&newConfig)
	if pointerService != nil {
		pointerService.UpdateConfig(&newConfig)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// フィルター更新ハンドラ
// フィルター設定のみを差し替え、サービスが動作中なら即座に反映する
func (s *Server) handleUpdateFilter(w http.ResponseWriter, r *http.Request) {
	var filterConfig config.FilterConfig

	if err := json.NewDecoder(r.Body).Decode(&filterConfig); err != nil {
		writeError(w, http.StatusBadRequest, "フィルター設定の解析に失敗しました")
		return
	}

	// 実行中のループは設定ポインターの変化で更新を検知するため、
	// 共有中の設定を直接書き換えず、コピーを作ってから公開する
	updated := *s.GetConfig()
	updated.Filter = filterConfig
	s.UpdateConfig(&updated)
	if pointerService != nil {
		pointerService.UpdateConfig(&updated)
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"filter": filterConfig.Type,
	})
}

// 設定保存ハンドラ
func (s *Server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var saveRequest struct {
		Path string `json:"path"`
	}

	if err := json.NewDecoder(r.Body).Decode(&saveRequest); err != nil {
		writeError(w, http.StatusBadRequest, "リクエストの解析に失敗しました")
		return
	}

	configPath := saveRequest.Path
	if configPath == "" {
		// デフォルトパスを使用
		userConfigDir, err := config.GetDefaultConfigDir()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "デフォルト設定ディレクトリの取得に失敗しました")
			return
		}
		configPath = filepath.Join(userConfigDir, "config.toml")
	}

	if err := config.SaveConfig(configPath, s.GetConfig()); err != nil {
		writeError(w, http.StatusInternalServerError, "設定の保存に失敗しました: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"path":   configPath,
	})
}

// デバイス一覧取得ハンドラ
func (s *Server) handleGetDevices(w http.ResponseWriter, r *http.Request) {
	devices, err := features.GetDevices()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "デバイス一覧の取得に失敗しました: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, devices)
}

// 優先デバイス設定ハンドラ
func (s *Server) handleSetPreferredDevices(w http.ResponseWriter, r *http.Request) {
	var request struct {
		TouchDevice    string `json:"touch_device"`
		KeyboardDevice string `json:"keyboard_device"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "リクエストの解析に失敗しました")
		return
	}

	// こちらも共有中の設定は書き換えず、コピーを公開する
	updated := *s.GetConfig()
	updated.DevicePrefs.PreferredTouchDevice = request.TouchDevice
	updated.DevicePrefs.PreferredKeyboardDevice = request.KeyboardDevice
	s.UpdateConfig(&updated)
	if pointerService != nil {
		pointerService.UpdateConfig(&updated)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

// ポインター中継サービス
var pointerService *PointerService

// サービス起動ハンドラ
func (s *Server) handleStartService(w http.ResponseWriter, r *http.Request) {
	if pointerService == nil {
		pointerService = NewPointerService(s.GetConfig())
	}

	if pointerService.IsRunning() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "already_running"})
		return
	}

	if err := pointerService.Start(); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("サービスの起動に失敗しました: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

// サービス停止ハンドラ
func (s *Server) handleStopService(w http.ResponseWriter, r *http.Request) {
	if pointerService == nil || !pointerService.IsRunning() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "not_running"})
		return
	}

	if err := pointerService.Stop(); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("サービスの停止に失敗しました: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

// サービス状態取得ハンドラ
func (s *Server) handleServiceStatus(w http.ResponseWriter, r *http.Request) {
	status := "stopped"
	if pointerService != nil && pointerService.IsRunning() {
		status = "running"
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

// イベント投入ハンドラ
// 外部のジェスチャー分類器が分類済みのイベントをここに送信する
func (s *Server) handleInjectEvent(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Button    string `json:"button"`
		Phase     string `json:"phase"`
		Direction string `json:"direction"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "リクエストの解析に失敗しました")
		return
	}

	var ev event.Event
	if request.Direction != "" && request.Direction != "None" {
		d, err := event.ParseDirection(request.Direction)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ev = event.ForDirection(d)
	} else {
		btn, err := event.ParseButton(request.Button)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		phase, err := event.ParsePhase(request.Phase)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ev = event.ForButton(btn, phase)
	}

	if pointerService == nil || !pointerService.IsRunning() {
		writeError(w, http.StatusConflict, "サービスが実行されていません")
		return
	}

	if !pointerService.InjectEvent(ev) {
		writeError(w, http.StatusServiceUnavailable, "イベントキューが満杯です")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "accepted",
		"event":  ev.String(),
	})
}

// ヘルスチェックハンドラ
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
