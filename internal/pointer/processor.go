package pointer

import (
	"math"
	"time"

	"github.com/char5742/pointer-relay/internal/filter"
)

// デフォルトの感度とスケール
const (
	DefaultSensitivity = 3.0
	DefaultScale       = 1.0
)

// MovementSink は量子化された移動量を受け取るインターフェース
//
// dx, dyはそれぞれ-127〜127の範囲で渡される。
// 戻り値は下流の転送が移動を受理したかどうかを表す。
// コールバックは呼び出し元のスレッドで同期的に実行されるため、
// ブロックしない実装にすること。
type MovementSink interface {
	Accept(dx, dy int32) bool
}

// MovementSinkFunc は関数をMovementSinkとして使うためのアダプター
type MovementSinkFunc func(dx, dy int32) bool

func (f MovementSinkFunc) Accept(dx, dy int32) bool { return f(dx, dy) }

// Processor は絶対座標の入力ストリームを相対移動量に変換する
//
// アクティブなフィルターで座標を平滑化し、前回位置との差分に
// 感度とスケールを適用して整数に量子化する。(0, 0)の移動量は
// 情報を持たないため送信しない。
//
// 同一インスタンスへの並行呼び出しは安全ではない。複数スレッドから
// 入力する場合は呼び出し側で直列化すること。
type Processor struct {
	flt  filter.Filter
	sink MovementSink

	// 前回のフィルター済み座標。未設定の場合はnil
	lastFiltered *filter.Point

	horizontalSensitivity float64
	verticalSensitivity   float64
	globalScale           float64
}

// NewProcessor は新しいプロセッサーを作成する
func NewProcessor(flt filter.Filter, sink MovementSink) *Processor {
	return &Processor{
		flt:                   flt,
		sink:                  sink,
		horizontalSensitivity: DefaultSensitivity,
		verticalSensitivity:   DefaultSensitivity,
		globalScale:           DefaultScale,
	}
}

// SetFilter はアクティブなフィルターを差し替える
// フィルターや基準位置のリセットは行わない
func (p *Processor) SetFilter(flt filter.Filter) {
	p.flt = flt
}

// SetSensitivity は水平・垂直の感度を設定する
// フィルター状態はリセットされず、次のサンプルから反映される
func (p *Processor) SetSensitivity(horizontal, vertical float64) {
	p.horizontalSensitivity = horizontal
	p.verticalSensitivity = vertical
}

// SetScale は全体スケールを設定する
func (p *Processor) SetScale(scale float64) {
	p.globalScale = scale
}

// Reset は基準位置を未設定に戻し、フィルターの状態も破棄する
// ドラッグやジェスチャーの終了時に呼び、古い速度やトレンドが
// 無関係な次の操作に持ち越されるのを防ぐ
func (p *Processor) Reset() {
	p.lastFiltered = nil
	p.flt.Reset()
}

// UpdatePosition は絶対座標のサンプルを1つ処理する
// tは秒単位のタイムスタンプで、0の場合は現在時刻を使う
func (p *Processor) UpdatePosition(pos filter.Point, t float64) {
	if t == 0 {
		t = float64(time.Now().UnixNano()) / float64(time.Second)
	}

	// 基準位置が未設定の場合は生の入力値で初期化する
	// これにより任意の原点からの初回ジャンプを防ぐ
	if p.lastFiltered == nil {
		seed := pos
		p.lastFiltered = &seed
	}

	filtered := p.flt.Filter(pos, t)
	delta := filtered.Sub(*p.lastFiltered)
	p.lastFiltered = &filtered

	dx := quantize(delta.X * p.horizontalSensitivity * p.globalScale)
	dy := quantize(delta.Y * p.verticalSensitivity * p.globalScale)

	// ゼロの移動量は送信しない
	if dx == 0 && dy == 0 {
		return
	}

	// 送信失敗はリトライしない。ポインター移動の1フレーム欠落は
	// 知覚されないため、各サンプルは送りっぱなしでよい
	p.sink.Accept(dx, dy)
}

// quantize は連続値を最も近い整数に丸める
// 0.5ちょうどの場合はゼロから遠い方へ丸める（math.Roundの規約に従う）
func quantize(v float64) int32 {
	return int32(math.Round(v))
}
