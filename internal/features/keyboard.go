package features

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// EVIOCGKEYでキー押下状態を取得するための定数
const (
	keyCodeMax = 0x2ff
	eviocgkey  = 0x80484518
)

// Keyboard は方向イベントの入力元となる物理キーボードを表現するインターフェース
//
// イベントストリームの読み取りではなく、EVIOCGKEYによる押下状態の
// ポーリングで実装する。押しっぱなしの検出だけが必要なため、
// イベントの取りこぼしを考慮せずに済む。
type Keyboard interface {
	// 現在押下中のキーのうち最小のキーコードを返す。押下がなければ-1
	GetKey() int32
	Close() error
}

type physicalKeyboard struct {
	file *os.File
	bits [keyCodeMax/8 + 1]byte
}

// CreateKeyboard は監視するデバイスのパスを指定してキーボードを開く
func CreateKeyboard(path string) (Keyboard, error) {
	// デバイスを読み取り、非ブロッキングモードで開く
	f, err := os.OpenFile(path, syscall.O_RDONLY|syscall.O_NONBLOCK, 0660)
	if err != nil {
		return nil, fmt.Errorf("キーボードデバイスを開くのに失敗しました: %w", err)
	}
	return &physicalKeyboard{file: f}, nil
}

func (k *physicalKeyboard) GetKey() int32 {
	if err := k.readKeyBitmap(); err != nil {
		return -1
	}

	for i, b := range k.bits {
		if b == 0 {
			continue
		}
		for bit := 0; bit < 8; bit++ {
			if b&(1<<bit) != 0 {
				return int32(i*8 + bit)
			}
		}
	}
	return -1
}

// readKeyBitmap は押下状態のビットマップをカーネルから読み取る
// バッファはEVIOCGKEYが毎回全体を上書きするため再利用できる
func (k *physicalKeyboard) readKeyBitmap() error {
	_, _, errno := unix.Syscall(
		unix.SYS_IOCTL,
		k.file.Fd(),
		uintptr(eviocgkey),
		uintptr(unsafe.Pointer(&k.bits[0])),
	)
	if errno != 0 {
		return errno
	}
	return nil
}

func (k *physicalKeyboard) Close() error {
	return k.file.Close()
}
