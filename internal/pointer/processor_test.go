package pointer

import (
	"testing"

	"github.com/char5742/pointer-relay/internal/filter"
)

// sinkRecorder はテスト用のMovementSink実装
type sinkRecorder struct {
	calls  [][2]int32
	result bool
}

func (s *sinkRecorder) Accept(dx, dy int32) bool {
	s.calls = append(s.calls, [2]int32{dx, dy})
	return s.result
}

func newTestProcessor() (*Processor, *sinkRecorder) {
	sink := &sinkRecorder{result: true}
	p := NewProcessor(filter.NewIdentity(), sink)
	return p, sink
}

// 移動量がゼロのサンプルはシンクに送信されない
func TestProcessorSuppressesZeroDelta(t *testing.T) {
	p, sink := newTestProcessor()

	// 初回サンプルは基準位置の設定のみで何も送信しない
	p.UpdatePosition(filter.Point{X: 10, Y: 10}, 1.0)
	if len(sink.calls) != 0 {
		t.Fatalf("初回サンプルで送信されました: %v", sink.calls)
	}

	// 同じ座標なら移動量(0, 0)となり送信されない
	p.UpdatePosition(filter.Point{X: 10, Y: 10}, 2.0)
	if len(sink.calls) != 0 {
		t.Errorf("ゼロ移動量で送信されました: %v", sink.calls)
	}
}

// 移動量に感度とスケールが適用されて量子化される
func TestProcessorQuantization(t *testing.T) {
	p, sink := newTestProcessor()

	p.UpdatePosition(filter.Point{X: 0, Y: 0}, 1.0)
	p.UpdatePosition(filter.Point{X: 1, Y: 0}, 2.0)

	if len(sink.calls) != 1 {
		t.Fatalf("送信回数 = %d, want 1", len(sink.calls))
	}
	// 生の移動量(1, 0) × 感度3 = (3, 0)
	if got := sink.calls[0]; got != [2]int32{3, 0} {
		t.Errorf("送信された移動量 = %v, want (3, 0)", got)
	}
}

// 0.5ちょうどの値はゼロから遠い方へ丸められる
func TestProcessorRoundingHalfAwayFromZero(t *testing.T) {
	p, sink := newTestProcessor()
	p.SetSensitivity(1.0, 1.0)

	p.UpdatePosition(filter.Point{X: 0, Y: 0}, 1.0)
	p.UpdatePosition(filter.Point{X: 0.5, Y: -0.5}, 2.0)

	if len(sink.calls) != 1 {
		t.Fatalf("送信回数 = %d, want 1", len(sink.calls))
	}
	if got := sink.calls[0]; got != [2]int32{1, -1} {
		t.Errorf("送信された移動量 = %v, want (1, -1)", got)
	}
}

// GlobalScaleは両軸に掛かる
func TestProcessorGlobalScale(t *testing.T) {
	p, sink := newTestProcessor()
	p.SetSensitivity(1.0, 1.0)
	p.SetScale(2.0)

	p.UpdatePosition(filter.Point{X: 0, Y: 0}, 1.0)
	p.UpdatePosition(filter.Point{X: 3, Y: -2}, 2.0)

	if got := sink.calls[0]; got != [2]int32{6, -4} {
		t.Errorf("送信された移動量 = %v, want (6, -4)", got)
	}
}

// Resetで基準位置が破棄され、次のサンプルは送信されない
func TestProcessorReset(t *testing.T) {
	p, sink := newTestProcessor()

	p.UpdatePosition(filter.Point{X: 0, Y: 0}, 1.0)
	p.UpdatePosition(filter.Point{X: 5, Y: 5}, 2.0)
	if len(sink.calls) != 1 {
		t.Fatalf("送信回数 = %d, want 1", len(sink.calls))
	}

	p.Reset()

	// リセット後の初回サンプルは基準位置の設定のみ
	p.UpdatePosition(filter.Point{X: 100, Y: 100}, 3.0)
	if len(sink.calls) != 1 {
		t.Errorf("リセット後の初回サンプルで送信されました: %v", sink.calls)
	}
}

// SetFilterはフィルターを差し替えるだけで基準位置を維持する
func TestProcessorSetFilterKeepsBaseline(t *testing.T) {
	p, sink := newTestProcessor()
	p.SetSensitivity(1.0, 1.0)

	p.UpdatePosition(filter.Point{X: 10, Y: 10}, 1.0)

	// Muteフィルターに差し替えると出力座標は(0, 0)になるため、
	// 前回位置(10, 10)からの差分が送信される
	p.SetFilter(filter.NewMute())
	p.UpdatePosition(filter.Point{X: 12, Y: 12}, 2.0)

	if len(sink.calls) != 1 {
		t.Fatalf("送信回数 = %d, want 1", len(sink.calls))
	}
	if got := sink.calls[0]; got != [2]int32{-10, -10} {
		t.Errorf("送信された移動量 = %v, want (-10, -10)", got)
	}
}

// シンクの失敗はリトライされない
func TestProcessorDoesNotRetryFailedSink(t *testing.T) {
	sink := &sinkRecorder{result: false}
	p := NewProcessor(filter.NewIdentity(), sink)
	p.SetSensitivity(1.0, 1.0)

	p.UpdatePosition(filter.Point{X: 0, Y: 0}, 1.0)
	p.UpdatePosition(filter.Point{X: 1, Y: 1}, 2.0)
	p.UpdatePosition(filter.Point{X: 2, Y: 2}, 3.0)

	// 失敗しても各サンプルにつき1回だけ送信される
	if len(sink.calls) != 2 {
		t.Errorf("送信回数 = %d, want 2", len(sink.calls))
	}
}

// 感度変更はフィルター状態を保ったまま次のサンプルから反映される
func TestProcessorSensitivityChangeWithoutReset(t *testing.T) {
	p, sink := newTestProcessor()

	p.UpdatePosition(filter.Point{X: 0, Y: 0}, 1.0)
	p.SetSensitivity(10.0, 1.0)
	p.UpdatePosition(filter.Point{X: 1, Y: 1}, 2.0)

	if got := sink.calls[0]; got != [2]int32{10, 1} {
		t.Errorf("送信された移動量 = %v, want (10, 1)", got)
	}
}

// タイムスタンプ0は現在時刻として扱われ、処理は正常に行われる
func TestProcessorDefaultTimestamp(t *testing.T) {
	p, sink := newTestProcessor()

	p.UpdatePosition(filter.Point{X: 0, Y: 0}, 0)
	p.UpdatePosition(filter.Point{X: 1, Y: 0}, 0)

	if len(sink.calls) != 1 {
		t.Fatalf("送信回数 = %d, want 1", len(sink.calls))
	}
	if got := sink.calls[0]; got != [2]int32{3, 0} {
		t.Errorf("送信された移動量 = %v, want (3, 0)", got)
	}
}

// MovementSinkFuncアダプター経由でも同様に動作する
func TestMovementSinkFunc(t *testing.T) {
	var got [2]int32
	sink := MovementSinkFunc(func(dx, dy int32) bool {
		got = [2]int32{dx, dy}
		return true
	})

	p := NewProcessor(filter.NewIdentity(), sink)
	p.SetSensitivity(1.0, 1.0)
	p.UpdatePosition(filter.Point{X: 0, Y: 0}, 1.0)
	p.UpdatePosition(filter.Point{X: 2, Y: 3}, 2.0)

	if got != [2]int32{2, 3} {
		t.Errorf("送信された移動量 = %v, want (2, 3)", got)
	}
}
