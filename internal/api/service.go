package api

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/char5742/pointer-relay/internal/config"
	"github.com/char5742/pointer-relay/internal/consts"
	"github.com/char5742/pointer-relay/internal/event"
	"github.com/char5742/pointer-relay/internal/features"
	"github.com/char5742/pointer-relay/internal/filter"
	"github.com/char5742/pointer-relay/internal/pointer"
)

// PointerService はポインター中継サービスを管理する構造体
//
// 物理タッチデバイスから絶対座標を読み取り、平滑化パイプラインを
// 通して仮想マウスへ相対移動として書き込む。外部から注入された
// 離散入力イベントはイベントマッピング層経由でボタン操作に変換される。
type PointerService struct {
	cfg          *config.Config
	stopChan     chan struct{}
	running      bool
	statusMutex  sync.RWMutex
	touch        features.TouchScreen
	keyboard     features.Keyboard
	mouse        features.Mouse
	updateConfig chan *config.Config
	events       chan event.Event
	done         chan struct{}
}

// NewPointerService は新しいポインター中継サービスを作成する
func NewPointerService(cfg *config.Config) *PointerService {
	return &PointerService{
		cfg:          cfg,
		stopChan:     make(chan struct{}),
		running:      false,
		updateConfig: make(chan *config.Config, 1),
		events:       make(chan event.Event, 16),
	}
}

// Start はポインター中継サービスを開始する
func (s *PointerService) Start() error {
	s.statusMutex.Lock()
	defer s.statusMutex.Unlock()

	if s.running {
		return fmt.Errorf("サービスは既に実行中です")
	}

	// 仮想マウスデバイスの作成
	mouse, err := features.CreateMouse("/dev/uinput", []byte("PointerRelay Mouse"))
	if err != nil {
		return fmt.Errorf("仮想マウスの作成に失敗しました: %v", err)
	}
	s.mouse = mouse

	// デバイス一覧の取得
	devices, err := features.GetDevices()
	if err != nil {
		s.mouse.Close()
		return fmt.Errorf("デバイス一覧の取得に失敗しました: %v", err)
	}

	// 設定ファイルで指定された優先デバイスまたは最初に見つかったデバイスを使用
	preferredTouch := s.cfg.DevicePrefs.PreferredTouchDevice
	preferredKeyboard := s.cfg.DevicePrefs.PreferredKeyboardDevice

	var touchDevice *features.Device
	var keyboardDevice *features.Device
	var firstTouchDevice *features.Device
	var firstKeyboardDevice *features.Device

	for _, device := range devices {
		if device.Type == features.DeviceTypeTouchScreen {
			if firstTouchDevice == nil {
				firstTouchDevice = &device
			}
			if preferredTouch != "" && device.Name == preferredTouch {
				touchDevice = &device
			}
		} else if device.Type == features.DeviceTypeKeyboard {
			if firstKeyboardDevice == nil {
				firstKeyboardDevice = &device
			}
			if preferredKeyboard != "" && device.Name == preferredKeyboard {
				keyboardDevice = &device
			}
		}
	}

	// 優先デバイスが見つからなかった場合は最初のデバイスを使用
	if touchDevice == nil {
		touchDevice = firstTouchDevice
	}
	if keyboardDevice == nil {
		keyboardDevice = firstKeyboardDevice
	}

	if touchDevice == nil {
		s.mouse.Close()
		return fmt.Errorf("タッチデバイスが見つかりませんでした")
	}

	log.Printf("使用するタッチデバイス: %s", touchDevice.Name)

	// タッチデバイスを開く
	touch, err := features.CreateTouchScreen(touchDevice.Path)
	if err != nil {
		s.mouse.Close()
		return fmt.Errorf("タッチデバイスのオープンに失敗しました[path=%s]: %v", touchDevice.Path, err)
	}
	s.touch = touch

	// キーボードは方向イベントの入力元として使う（任意）
	if keyboardDevice != nil {
		log.Printf("使用するキーボード: %s", keyboardDevice.Name)
		keyboard, err := features.CreateKeyboard(keyboardDevice.Path)
		if err != nil {
			log.Printf("キーボードデバイスのオープンに失敗しました: %v", err)
		} else {
			s.keyboard = keyboard
		}
	}

	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	s.running = true

	// ポインター中継のメインループを開始
	// デバイスはループに所有権ごと渡し、再起動時にフィールドが
	// 上書きされても終了処理が新しいデバイスを閉じないようにする
	go s.runPointerLoop(s.touch, s.keyboard, s.mouse)

	return nil
}

// Stop はポインター中継サービスを停止する
func (s *PointerService) Stop() error {
	s.statusMutex.Lock()
	defer s.statusMutex.Unlock()

	if !s.running {
		return fmt.Errorf("サービスは実行されていません")
	}

	close(s.stopChan)
	s.running = false

	// デバイスのクローズは runPointerLoop 内で行われるため、
	// ループの終了を待ってから戻る。これにより直後の再起動が
	// 終了処理と競合しない
	<-s.done

	return nil
}

// UpdateConfig は設定を更新する
func (s *PointerService) UpdateConfig(cfg *config.Config) {
	select {
	case s.updateConfig <- cfg:
		// 設定更新チャネルに送信成功
	default:
		// チャネルがブロックされている場合は古い設定を破棄して新しい設定を送信
		select {
		case <-s.updateConfig:
		default:
		}
		s.updateConfig <- cfg
	}
}

// InjectEvent は外部の分類器が生成した離散入力イベントを投入する
// キューが満杯の場合はfalseを返してイベントを破棄する
func (s *PointerService) InjectEvent(ev event.Event) bool {
	select {
	case s.events <- ev:
		return true
	default:
		return false
	}
}

// IsRunning はサービスが実行中かどうかを返す
func (s *PointerService) IsRunning() bool {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()
	return s.running
}

// runPointerLoop はポインター中継のメインループ
// デバイスは引数で受け取ったものだけを使い、終了時にクローズする
func (s *PointerService) runPointerLoop(touch features.TouchScreen, keyboard features.Keyboard, mouse features.Mouse) {
	defer func() {
		// サービス終了時にデバイスをクローズ
		if touch != nil {
			touch.Close()
		}
		if keyboard != nil {
			keyboard.Close()
		}
		if mouse != nil {
			mouse.Close()
		}
		log.Println("ポインター中継サービスを停止しました")
		close(s.done)
	}()

	// 設定値を取得するための関数（設定更新に対応）
	getCfg := func() *config.Config {
		select {
		case newCfg := <-s.updateConfig:
			log.Println("設定を更新しました")
			s.cfg = newCfg
		default:
		}
		return s.cfg
	}

	cfg := getCfg()
	filterCfg := cfg.Filter

	processor := pointer.NewProcessor(filter.New(filterCfg.Settings()), mouse)
	processor.SetSensitivity(cfg.Pointer.HorizontalSensitivity, cfg.Pointer.VerticalSensitivity)
	processor.SetScale(cfg.Pointer.GlobalScale)

	mapper := features.NewEventMapper(mouse, cfg.Pointer.ScrollStep)

	var (
		touching bool
		prevKey  int32 = -1
	)

	log.Println("ポインター中継を開始しました...")

	for {
		select {
		case <-s.stopChan:
			return

		case ev := <-s.events:
			if err := mapper.Apply(ev); err != nil {
				log.Printf("イベントの適用に失敗しました: %v", err)
			}

		default:
			newCfg := getCfg()
			if newCfg != cfg {
				cfg = newCfg
				// 感度とスケールはフィルター状態を保ったまま反映する
				processor.SetSensitivity(cfg.Pointer.HorizontalSensitivity, cfg.Pointer.VerticalSensitivity)
				processor.SetScale(cfg.Pointer.GlobalScale)
				if cfg.Filter != filterCfg {
					filterCfg = cfg.Filter
					processor.SetFilter(filter.New(filterCfg.Settings()))
					log.Printf("フィルターを切り替えました: %s", filterCfg.Type)
				}
			}

			// タッチサンプルを処理する
			for {
				sample, ok := touch.ReadSample()
				if !ok {
					break
				}

				if sample.Touching {
					touching = true
					processor.UpdatePosition(filter.Point{X: sample.X, Y: sample.Y}, sample.Time)
				} else if touching {
					// 指が離れたら基準位置とフィルター状態を破棄し、
					// 古い速度やトレンドを次の操作に持ち越さない
					touching = false
					processor.Reset()
				}
			}

			// 矢印キーを方向イベントに変換する（押下エッジのみ）
			if keyboard != nil {
				pressedKey := keyboard.GetKey()
				if pressedKey != prevKey {
					if d := directionForKey(pressedKey); d != event.DirectionNone {
						_ = mapper.Apply(event.ForDirection(d))
					}
					prevKey = pressedKey
				}
			}

			time.Sleep(100 * time.Microsecond)
		}
	}
}

// directionForKey は矢印キーのキーコードを方向に変換する
func directionForKey(key int32) event.Direction {
	switch key {
	case consts.KeyUp:
		return event.DirectionUp
	case consts.KeyRight:
		return event.DirectionRight
	case consts.KeyDown:
		return event.DirectionDown
	case consts.KeyLeft:
		return event.DirectionLeft
	default:
		return event.DirectionNone
	}
}
