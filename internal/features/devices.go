package features

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Device は検出された入力デバイスを表す構造体
type Device struct {
	Name string
	Path string
	Type DeviceType
}

// DeviceType はデバイスタイプを表す列挙型
type DeviceType int

const (
	DeviceTypeKeyboard DeviceType = iota
	DeviceTypeMouse
	DeviceTypeTouchScreen
)

// DeviceEventType はデバイスイベントの種類を表す
type DeviceEventType int

const (
	DeviceAdded DeviceEventType = iota
	DeviceRemoved
)

// DeviceEvent はデバイスの変更イベントを表す
type DeviceEvent struct {
	Type   DeviceEventType
	Device *Device
	Path   string
}

// DeviceCallback はデバイスイベント発生時に呼び出されるコールバック関数の型
type DeviceCallback func(event DeviceEvent)

// ScanDevices は/dev/input/by-idを走査して接続中のデバイス一覧を返す
func ScanDevices() ([]Device, error) {
	entries, err := os.ReadDir("/dev/input/by-id")
	if err != nil {
		return nil, err
	}
	var devices []Device
	for _, entry := range entries {
		// eventが含まれない場合はスキップ
		if !strings.Contains(entry.Name(), "event") {
			continue
		}
		fullPath := "/dev/input/by-id/" + entry.Name()
		realPath, err := os.Readlink(fullPath)
		if err != nil {
			continue
		}

		// 絶対パスを構築
		absPath := ""
		if strings.HasPrefix(realPath, "/") {
			absPath = realPath
		} else {
			absPath = "/dev/input/" + filepath.Base(realPath)
		}

		name := entry.Name()
		switch {
		case strings.Contains(name, "touchscreen") || strings.Contains(name, "touch"):
			devices = append(devices, Device{Name: name, Path: absPath, Type: DeviceTypeTouchScreen})
		case strings.Contains(name, "kbd"):
			devices = append(devices, Device{Name: name, Path: absPath, Type: DeviceTypeKeyboard})
		case strings.Contains(name, "mouse"):
			devices = append(devices, Device{Name: name, Path: absPath, Type: DeviceTypeMouse})
		}
	}

	sort.Slice(devices, func(i, j int) bool { return devices[i].Name < devices[j].Name })
	return devices, nil
}

// GetDevices は現在接続されているデバイス一覧を取得する
// モニターが動作中であればそのキャッシュを、なければ直接スキャンする
func GetDevices() ([]Device, error) {
	deviceMonitorMutex.Lock()
	monitor := globalDeviceMonitor
	deviceMonitorMutex.Unlock()

	if monitor != nil {
		devices := monitor.GetConnectedDevices()
		if len(devices) > 0 {
			return devices, nil
		}
	}

	return ScanDevices()
}

// DeviceMonitor はデバイスの接続状態を監視する構造体
type DeviceMonitor struct {
	watcher       *fsnotify.Watcher
	callbacks     []DeviceCallback
	devices       map[string]*Device // パスをキーにしたデバイスマップ
	mutex         sync.RWMutex
	stopChan      chan struct{}
	pollingTicker *time.Ticker
	isRunning     bool
}

// グローバルなDeviceMonitorインスタンス
var (
	globalDeviceMonitor *DeviceMonitor
	deviceMonitorMutex  sync.Mutex
)

// NewDeviceMonitor は新しいDeviceMonitorを作成する
func NewDeviceMonitor() (*DeviceMonitor, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dm := &DeviceMonitor{
		watcher:   watcher,
		callbacks: make([]DeviceCallback, 0),
		devices:   make(map[string]*Device),
		stopChan:  make(chan struct{}),
	}

	deviceMonitorMutex.Lock()
	globalDeviceMonitor = dm
	deviceMonitorMutex.Unlock()

	return dm, nil
}

// Start はデバイスの監視を開始する
func (dm *DeviceMonitor) Start() error {
	if dm.isRunning {
		return nil // すでに実行中
	}

	log.Println("デバイスモニターを開始します")
	dm.isRunning = true
	dm.stopChan = make(chan struct{})

	// 監視対象のディレクトリを追加
	for _, dir := range []string{"/dev/input", "/dev/input/by-id"} {
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			if err := dm.watcher.Add(dir); err != nil {
				log.Printf("ディレクトリの監視に失敗しました: %s - %v", dir, err)
			}
		}
	}

	// 初期デバイス一覧を取得
	devices, err := ScanDevices()
	if err != nil {
		log.Printf("初期デバイス一覧の取得に失敗しました: %v", err)
	} else {
		dm.updateDeviceList(devices)
	}

	// fsnotifyイベントの監視ゴルーチンを起動
	go dm.watchEvents()

	// fsnotifyが取りこぼすケースに備えたポーリング監視（2秒ごと）
	dm.pollingTicker = time.NewTicker(2 * time.Second)
	go dm.runPolling()

	return nil
}

// Stop はデバイスの監視を停止する
func (dm *DeviceMonitor) Stop() {
	if !dm.isRunning {
		return
	}

	log.Println("デバイスモニターを停止します")

	close(dm.stopChan)

	if dm.pollingTicker != nil {
		dm.pollingTicker.Stop()
	}

	dm.watcher.Close()
	dm.isRunning = false
}

// RegisterCallback はデバイスイベントのコールバック関数を登録する
func (dm *DeviceMonitor) RegisterCallback(callback DeviceCallback) {
	dm.mutex.Lock()
	defer dm.mutex.Unlock()

	dm.callbacks = append(dm.callbacks, callback)
}

// GetConnectedDevices は現在接続中のデバイス一覧を返す
func (dm *DeviceMonitor) GetConnectedDevices() []Device {
	dm.mutex.RLock()
	defer dm.mutex.RUnlock()

	devices := make([]Device, 0, len(dm.devices))
	for _, d := range dm.devices {
		devices = append(devices, *d)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].Name < devices[j].Name })
	return devices
}

// watchEvents はfsnotifyのイベントを監視する
func (dm *DeviceMonitor) watchEvents() {
	// 短時間に連続するイベントをまとめるためのデバウンスタイマー
	var rescanTimer *time.Timer

	for {
		select {
		case <-dm.stopChan:
			return

		case ev, ok := <-dm.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove) == 0 {
				continue
			}
			if rescanTimer != nil {
				rescanTimer.Stop()
			}
			rescanTimer = time.AfterFunc(200*time.Millisecond, dm.rescan)

		case err, ok := <-dm.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("デバイス監視エラー: %v", err)
		}
	}
}

// runPolling はデバイス一覧を定期的に再スキャンする
func (dm *DeviceMonitor) runPolling() {
	for {
		select {
		case <-dm.stopChan:
			return
		case <-dm.pollingTicker.C:
			dm.rescan()
		}
	}
}

// rescan はデバイス一覧を再取得して変更を反映する
func (dm *DeviceMonitor) rescan() {
	devices, err := ScanDevices()
	if err != nil {
		log.Printf("デバイススキャンに失敗しました: %v", err)
		return
	}
	dm.updateDeviceList(devices)
}

// updateDeviceList は現在のデバイス一覧を更新し、追加・削除を通知する
func (dm *DeviceMonitor) updateDeviceList(newDevices []Device) {
	dm.mutex.Lock()

	newByPath := make(map[string]*Device, len(newDevices))
	for i := range newDevices {
		newByPath[newDevices[i].Path] = &newDevices[i]
	}

	var events []DeviceEvent

	// 削除されたデバイスを検出
	for path, device := range dm.devices {
		if _, exists := newByPath[path]; !exists {
			log.Printf("デバイスが削除されました: %s (%s)", device.Name, path)
			events = append(events, DeviceEvent{Type: DeviceRemoved, Device: device, Path: path})
			delete(dm.devices, path)
		}
	}

	// 追加されたデバイスを検出
	for path, device := range newByPath {
		if _, exists := dm.devices[path]; !exists {
			log.Printf("デバイスが追加されました: %s (%s)", device.Name, path)
			dm.devices[path] = device
			events = append(events, DeviceEvent{Type: DeviceAdded, Device: device, Path: path})
		}
	}

	callbacks := make([]DeviceCallback, len(dm.callbacks))
	copy(callbacks, dm.callbacks)
	dm.mutex.Unlock()

	// ロックを持たずにコールバックを呼ぶ
	for _, ev := range events {
		for _, cb := range callbacks {
			cb(ev)
		}
	}
}
