package features

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/char5742/pointer-relay/internal/consts"
	"github.com/char5742/pointer-relay/internal/types"
	"github.com/char5742/pointer-relay/internal/utils"
)

// 1回の移動レポートで許容される各軸の最大値
const maxDelta = 127

// Mouse は相対移動デバイスを表現するインターフェース
//
// Acceptはpointer.MovementSinkを満たす。移動量は±127にクランプされて
// 書き込まれ、戻り値はデバイスへの書き込みが成功したかどうかを表す。
type Mouse interface {
	Accept(dx, dy int32) bool
	Press(button int) error
	Release(button int) error
	Scroll(amount int32) error
	ScrollHorizontal(amount int32) error
	io.Closer
}

type virtualMouse struct {
	name       []byte
	deviceFile *os.File
}

// CreateMouse は新しい仮想マウスデバイスを作成する
func CreateMouse(path string, name []byte) (Mouse, error) {
	fd, err := createMouse(path, name)
	if err != nil {
		return nil, err
	}

	return &virtualMouse{name: name, deviceFile: fd}, nil
}

func (vm *virtualMouse) Close() error {
	_ = releaseDevice(vm.deviceFile)
	return vm.deviceFile.Close()
}

func createMouse(path string, name []byte) (*os.File, error) {
	deviceFile, err := createDeviceFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not create relative axis input device: %v", err)
	}

	// 相対座標入力イベント(EV_REL)を登録する
	// これによりマウスカーソルの相対移動が可能になる
	err = registerDevice(deviceFile, uintptr(consts.Rel))
	if err != nil {
		_ = deviceFile.Close()
		return nil, fmt.Errorf("相対座標入力イベント(EV_REL)の登録に失敗しました: %v", err)
	}

	// 相対移動の軸（X、Y、ホイール）を登録する
	for _, ev := range []int{
		consts.RelX,      // X軸の相対移動
		consts.RelY,      // Y軸の相対移動
		consts.RelWheel,  // 縦スクロール
		consts.RelHWheel, // 横スクロール
	} {
		if err = utils.IOCtl(deviceFile, consts.SetRelBit, uintptr(ev)); err != nil {
			_ = deviceFile.Close()
			return nil, fmt.Errorf("相対移動軸の登録に失敗しました %v: %v", ev, err)
		}
	}

	// キー入力イベント(EV_KEY)を登録する
	// これによりマウスボタンの送信が可能になる
	err = registerDevice(deviceFile, uintptr(consts.Key))
	if err != nil {
		_ = deviceFile.Close()
		return nil, fmt.Errorf("キー入力イベント(EV_KEY)の登録に失敗しました: %v", err)
	}

	// マウスボタンの種類を登録する
	for _, ev := range []int{
		consts.MouseBtnLeft,   // マウス左ボタン
		consts.MouseBtnRight,  // マウス右ボタン
		consts.MouseBtnMiddle, // マウス中ボタン
	} {
		if err = utils.IOCtl(deviceFile, consts.SetKeyBit, uintptr(ev)); err != nil {
			_ = deviceFile.Close()
			return nil, fmt.Errorf("マウスボタンの登録に失敗しました %v: %v", ev, err)
		}
	}

	// ポインターデバイスプロパティを設定する
	if err := utils.IOCtl(deviceFile, consts.SetPropBit, uintptr(consts.PropPointer)); err != nil {
		_ = deviceFile.Close()
		return nil, fmt.Errorf("ポインターデバイスプロパティの設定に失敗しました: %v", err)
	}

	userDev := types.UserDev{
		Name: toUinputName(name),
		ID: types.InputID{
			Bustype: consts.BusUsb,
			Vendor:  0x4711,
			Product: 0x0818,
			Version: 1,
		},
	}

	fd, err := createUsbDevice(deviceFile, userDev)
	if err != nil {
		_ = deviceFile.Close()
		return nil, fmt.Errorf("USBデバイスの作成に失敗しました: %v", err)
	}

	return fd, nil
}

// Accept は量子化された移動量を仮想マウスに書き込む
// 各軸は±127にクランプされる。1フレームの欠落は知覚されないため、
// 書き込み失敗はfalseを返すだけでリトライしない
func (vm *virtualMouse) Accept(dx, dy int32) bool {
	events := []types.Event{
		{Type: consts.Rel, Code: consts.RelX, Value: clampDelta(dx)},
		{Type: consts.Rel, Code: consts.RelY, Value: clampDelta(dy)},
		{Type: consts.Syn, Code: consts.SynReport, Value: 0},
	}

	return writeEvents(vm.deviceFile, events) == nil
}

// Press はマウスボタンを押下する
func (vm *virtualMouse) Press(button int) error {
	events := []types.Event{
		{Type: consts.Key, Code: uint16(button), Value: 1},
		{Type: consts.Syn, Code: consts.SynReport, Value: 0},
	}

	return writeEvents(vm.deviceFile, events)
}

// Release はマウスボタンを解放する
func (vm *virtualMouse) Release(button int) error {
	events := []types.Event{
		{Type: consts.Key, Code: uint16(button), Value: 0},
		{Type: consts.Syn, Code: consts.SynReport, Value: 0},
	}

	return writeEvents(vm.deviceFile, events)
}

// Scroll は縦スクロールを送信する。正の値で上方向にスクロールする
func (vm *virtualMouse) Scroll(amount int32) error {
	events := []types.Event{
		{Type: consts.Rel, Code: consts.RelWheel, Value: amount},
		{Type: consts.Syn, Code: consts.SynReport, Value: 0},
	}

	return writeEvents(vm.deviceFile, events)
}

// ScrollHorizontal は横スクロールを送信する。正の値で右方向にスクロールする
func (vm *virtualMouse) ScrollHorizontal(amount int32) error {
	events := []types.Event{
		{Type: consts.Rel, Code: consts.RelHWheel, Value: amount},
		{Type: consts.Syn, Code: consts.SynReport, Value: 0},
	}

	return writeEvents(vm.deviceFile, events)
}

// clampDelta は移動量を±127の範囲に制限する
func clampDelta(v int32) int32 {
	if v > maxDelta {
		return maxDelta
	}
	if v < -maxDelta {
		return -maxDelta
	}
	return v
}

// デバイスファイルを作成する
func createDeviceFile(path string) (fd *os.File, err error) {
	deviceFile, err := os.OpenFile(path, syscall.O_WRONLY|syscall.O_NONBLOCK, 0660)
	if err != nil {
		return nil, errors.New("デバイスファイルを開くのに失敗しました")
	}
	return deviceFile, err
}

// デバイスを解放する
func releaseDevice(deviceFile *os.File) error {
	return utils.IOCtl(deviceFile, consts.DevDestroy, uintptr(0))
}

// デバイスを登録する
func registerDevice(deviceFile *os.File, evType uintptr) error {
	err := utils.IOCtl(deviceFile, consts.SetEvBit, evType)
	if err != nil {
		defer deviceFile.Close()
		err = releaseDevice(deviceFile)
		if err != nil {
			return fmt.Errorf("デバイスを解放するのに失敗しました: %v", err)
		}
		return fmt.Errorf("無効なファイルハンドルがutils.IOCtlから返されました: %v", err)
	}
	return nil
}

// USBデバイスを作成する
func createUsbDevice(deviceFile *os.File, dev types.UserDev) (fd *os.File, err error) {
	buf := new(bytes.Buffer)
	err = binary.Write(buf, binary.LittleEndian, dev)
	if err != nil {
		_ = deviceFile.Close()
		return nil, fmt.Errorf("ユーザーデバイスバッファの書き込みに失敗しました: %v", err)
	}
	_, err = deviceFile.Write(buf.Bytes())
	if err != nil {
		_ = deviceFile.Close()
		return nil, fmt.Errorf("デバイス構造体をデバイスファイルに書き込むのに失敗しました: %v", err)
	}

	err = utils.IOCtl(deviceFile, consts.DevCreate, uintptr(0))
	if err != nil {
		_ = deviceFile.Close()
		return nil, fmt.Errorf("デバイスの作成に失敗しました: %v", err)
	}

	return deviceFile, err
}

// イベントを書き込む
func writeEvents(deviceFile *os.File, events []types.Event) error {
	for _, ev := range events {
		buf := new(bytes.Buffer)
		if err := binary.Write(buf, binary.LittleEndian, ev); err != nil {
			return fmt.Errorf("イベントをバッファに書き込むのに失敗しました: %v", err)
		}
		if _, err := deviceFile.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("イベントの書き込みに失敗しました: %v", err)
		}
	}
	return nil
}

// 名前をuinput用の固定長配列に変換する
func toUinputName(name []byte) (uinputName [consts.MaxNameSize]byte) {
	var fixedSizeName [consts.MaxNameSize]byte
	copy(fixedSizeName[:], name)
	return fixedSizeName
}
