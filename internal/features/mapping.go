package features

import (
	"fmt"

	"github.com/char5742/pointer-relay/internal/consts"
	"github.com/char5742/pointer-relay/internal/event"
)

// EventMapper は離散入力イベントを仮想マウスの操作に変換する
//
// 外部の分類器が生成したイベントストリームを消費する入力マッピング層。
// ボタンイベントはマウスボタンの押下・解放に、方向イベントは
// スクロールホイールのステップに対応付けられる。
type EventMapper struct {
	mouse      Mouse
	scrollStep int32

	// 長押しトグルで押しっぱなしにしているボタン
	held map[event.ButtonID]bool
}

// NewEventMapper は新しいイベントマッパーを作成する
// scrollStepは方向イベント1回あたりのスクロール量
func NewEventMapper(mouse Mouse, scrollStep int32) *EventMapper {
	if scrollStep < 1 {
		scrollStep = 1
	}
	return &EventMapper{
		mouse:      mouse,
		scrollStep: scrollStep,
		held:       make(map[event.ButtonID]bool),
	}
}

// buttonCode はボタンIDをevdevのボタンコードに変換する
func buttonCode(id event.ButtonID) int {
	switch id {
	case event.ButtonSecondary:
		return consts.MouseBtnRight
	case event.ButtonTertiary:
		return consts.MouseBtnMiddle
	default:
		return consts.MouseBtnLeft
	}
}

// Apply はイベントを1つ仮想マウスに適用する
// Noneイベントは何もせずに成功を返す
func (m *EventMapper) Apply(ev event.Event) error {
	if ev.IsNone() {
		return nil
	}

	if ev.IsDirection() {
		return m.applyDirection(ev.Direction)
	}

	btn := buttonCode(ev.Button)

	switch {
	case ev.IsPress(), ev.IsHoldBegin():
		return m.mouse.Press(btn)

	case ev.IsRelease(), ev.IsHoldEnd():
		return m.mouse.Release(btn)

	case ev.IsTap():
		return m.click(btn)

	case ev.IsDoubleTap():
		if err := m.click(btn); err != nil {
			return err
		}
		return m.click(btn)

	case ev.IsLongPress():
		// 長押しはボタンの押しっぱなしをトグルする
		if m.held[ev.Button] {
			delete(m.held, ev.Button)
			return m.mouse.Release(btn)
		}
		m.held[ev.Button] = true
		return m.mouse.Press(btn)
	}

	return fmt.Errorf("未対応のイベントです: %v", ev)
}

// click はボタンの押下と解放を連続して送信する
func (m *EventMapper) click(btn int) error {
	if err := m.mouse.Press(btn); err != nil {
		return err
	}
	return m.mouse.Release(btn)
}

// applyDirection は方向イベントをスクロールに変換する
func (m *EventMapper) applyDirection(d event.Direction) error {
	switch d {
	case event.DirectionUp:
		return m.mouse.Scroll(m.scrollStep)
	case event.DirectionDown:
		return m.mouse.Scroll(-m.scrollStep)
	case event.DirectionRight:
		return m.mouse.ScrollHorizontal(m.scrollStep)
	case event.DirectionLeft:
		return m.mouse.ScrollHorizontal(-m.scrollStep)
	}
	return nil
}
