package features

import (
	"encoding/binary"
	"fmt"
	"os"
	"syscall"

	"github.com/char5742/pointer-relay/internal/consts"
	"github.com/char5742/pointer-relay/internal/types"
	"github.com/char5742/pointer-relay/internal/utils"
)

// TouchSample はタッチデバイスから読み取った1サンプルを表す構造体
type TouchSample struct {
	X        float64 // 絶対X座標
	Y        float64 // 絶対Y座標
	Time     float64 // 秒単位のタイムスタンプ
	Touching bool    // 指が接触しているか
}

// TouchScreen は絶対座標を生成する物理タッチデバイスを表現するインターフェース
type TouchScreen interface {
	// 次のサンプルを読み取る。読み取れるサンプルがない場合はfalseを返す
	ReadSample() (TouchSample, bool)
	// デバイス操作を専有する
	Grab() error
	// デバイス操作の専有を解除する
	Release() error
	Close() error
}

type physicalTouchScreen struct {
	file    *os.File
	grabbed bool

	// SYN_REPORT間で蓄積する現在のタッチ状態
	curX     int32
	curY     int32
	touching bool
}

// CreateTouchScreen は指定されたパスでタッチデバイスを開く
func CreateTouchScreen(path string) (TouchScreen, error) {
	f, err := os.OpenFile(path, syscall.O_RDONLY|syscall.O_NONBLOCK, 0660)
	if err != nil {
		return nil, fmt.Errorf("failed to open device file: %w", err)
	}
	return &physicalTouchScreen{file: f}, nil
}

// ReadSample はイベントをSYN_REPORTまで読み進めて1サンプルを組み立てる
// ノンブロッキングで動作し、イベントが届いていない場合はfalseを返す
func (ts *physicalTouchScreen) ReadSample() (TouchSample, bool) {
	var e types.Event
	size := binary.Size(e)
	buf := make([]byte, size)

	for {
		_, err := ts.file.Read(buf)
		if err != nil {
			return TouchSample{}, false
		}

		e.Time.Sec = int64(binary.LittleEndian.Uint64(buf[0:8]))
		e.Time.Usec = int64(binary.LittleEndian.Uint64(buf[8:16]))
		e.Type = binary.LittleEndian.Uint16(buf[16:18])
		e.Code = binary.LittleEndian.Uint16(buf[18:20])
		e.Value = int32(binary.LittleEndian.Uint32(buf[20:24]))

		switch e.Type {
		case consts.Abs:
			switch e.Code {
			case consts.AbsX, consts.AbsMtPositionX:
				ts.curX = e.Value
			case consts.AbsY, consts.AbsMtPositionY:
				ts.curY = e.Value
			case consts.AbsMtTrackingId:
				ts.touching = e.Value >= 0
			}
		case consts.Key:
			if e.Code == consts.BtnTouch {
				ts.touching = e.Value != 0
			}
		case consts.Syn:
			if e.Code == consts.SynReport {
				return TouchSample{
					X:        float64(ts.curX),
					Y:        float64(ts.curY),
					Time:     float64(e.Time.Sec) + float64(e.Time.Usec)/1e6,
					Touching: ts.touching,
				}, true
			}
		}
	}
}

func (ts *physicalTouchScreen) Grab() error {
	if ts.grabbed {
		return nil
	}
	if err := utils.IOCtl(ts.file, consts.EVIOCGRAB, 1); err != nil {
		return fmt.Errorf("failed to grab device: %w", err)
	}
	ts.grabbed = true
	return nil
}

func (ts *physicalTouchScreen) Release() error {
	if !ts.grabbed {
		return nil
	}
	if err := utils.IOCtl(ts.file, consts.EVIOCGRAB, 0); err != nil {
		return fmt.Errorf("failed to release device: %w", err)
	}
	ts.grabbed = false
	return nil
}

func (ts *physicalTouchScreen) Close() error {
	_ = ts.Release()
	return ts.file.Close()
}
