package filter

import (
	"math"
	"testing"
)

const eps = 1e-9

func almostEqual(a, b Point) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps
}

// 全フィルターはリセット直後の入力をそのまま返す（Muteは原点を返す）
func TestResetThenFilterReturnsInput(t *testing.T) {
	tests := []struct {
		name string
		flt  Filter
		want Point
	}{
		{"identity", NewIdentity(), Point{X: 3.5, Y: -2.25}},
		{"mute", NewMute(), Point{}},
		{"ema", NewEMA(0.5, 1.0), Point{X: 3.5, Y: -2.25}},
		{"holt", NewHolt(0.5, 0.3), Point{X: 3.5, Y: -2.25}},
		{"kalman", NewKalman(0.05, 2.0), Point{X: 3.5, Y: -2.25}},
		{"predictive", NewPredictive(0.03, 0.5), Point{X: 3.5, Y: -2.25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Point{X: 3.5, Y: -2.25}

			// 一度状態を作ってからリセットする
			tt.flt.Filter(Point{X: 100, Y: 100}, 0.0)
			tt.flt.Filter(Point{X: 120, Y: 80}, 0.1)
			tt.flt.Reset()

			got := tt.flt.Filter(in, 0.2)
			if !almostEqual(got, tt.want) {
				t.Errorf("Filter() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIdentityReturnsInput(t *testing.T) {
	flt := NewIdentity()
	points := []Point{{0, 0}, {1.5, -3}, {-100, 42.42}, {1e6, -1e6}}
	for i, p := range points {
		if got := flt.Filter(p, float64(i)); got != p {
			t.Errorf("Filter(%v) = %v, want %v", p, got, p)
		}
	}
}

func TestMuteReturnsOrigin(t *testing.T) {
	flt := NewMute()
	points := []Point{{0, 0}, {1.5, -3}, {-100, 42.42}}
	for i, p := range points {
		if got := flt.Filter(p, float64(i)); got != (Point{}) {
			t.Errorf("Filter(%v) = %v, want (0, 0)", p, got)
		}
	}
}

// alpha=1のEMAは平滑化せず常に生の入力を返す
func TestEMAAlphaOnePassesThrough(t *testing.T) {
	flt := NewEMA(1.0, 0)
	points := []Point{{10, 10}, {-5, 3}, {0, 0}, {7.5, -7.5}}
	for i, p := range points {
		if got := flt.Filter(p, float64(i)); !almostEqual(got, p) {
			t.Errorf("Filter(%v) = %v, want %v", p, got, p)
		}
	}
}

// デッドバンド: 閾値未満の移動では前回値を保持する
func TestEMADeadBand(t *testing.T) {
	flt := NewEMA(0.5, 1.0)

	first := flt.Filter(Point{X: 0, Y: 0}, 0.0)
	if !almostEqual(first, Point{}) {
		t.Fatalf("初回のFilter() = %v, want (0, 0)", first)
	}

	// 移動量0.1はminChange=1.0のデッドバンドに吸収される
	second := flt.Filter(Point{X: 0.1, Y: 0.1}, 0.1)
	if !almostEqual(second, Point{}) {
		t.Errorf("デッドバンド内のFilter() = %v, want (0, 0)", second)
	}
}

// デッドバンドを超える移動は通常通り平滑化される
func TestEMACommitsAboveDeadBand(t *testing.T) {
	flt := NewEMA(0.5, 1.0)

	flt.Filter(Point{X: 0, Y: 0}, 0.0)
	got := flt.Filter(Point{X: 10, Y: 0}, 0.1)
	want := Point{X: 5, Y: 0}
	if !almostEqual(got, want) {
		t.Errorf("Filter() = %v, want %v", got, want)
	}
}

// EMAの構築パラメータは範囲外の場合クランプされる
func TestEMAParameterClamping(t *testing.T) {
	// alpha > 1 は1にクランプされ、パススルーと同じ動作になる
	flt := NewEMA(2.5, -1)
	flt.Filter(Point{X: 0, Y: 0}, 0.0)
	got := flt.Filter(Point{X: 10, Y: 10}, 0.1)
	if !almostEqual(got, Point{X: 10, Y: 10}) {
		t.Errorf("Filter() = %v, want (10, 10)", got)
	}
}

// beta=0のHoltはlevelへの単純なEMAと一致する
func TestHoltBetaZeroReducesToEMA(t *testing.T) {
	const alpha = 0.4
	holt := NewHolt(alpha, 0)
	ema := NewEMA(alpha, 0)

	points := []Point{{0, 0}, {10, -10}, {20, -5}, {15, 0}, {30, 30}}
	for i, p := range points {
		hp := holt.Filter(p, float64(i))
		ep := ema.Filter(p, float64(i))
		if !almostEqual(hp, ep) {
			t.Errorf("サンプル%d: holt = %v, ema = %v", i, hp, ep)
		}
	}
}

// Holtはステップ入力に対して入力値へ収束する
func TestHoltConvergesToStep(t *testing.T) {
	flt := NewHolt(0.5, 0.3)
	flt.Filter(Point{X: 0, Y: 0}, 0.0)

	var got Point
	for i := 1; i <= 100; i++ {
		got = flt.Filter(Point{X: 100, Y: 100}, float64(i))
	}
	if math.Abs(got.X-100) > 0.01 || math.Abs(got.Y-100) > 0.01 {
		t.Errorf("100サンプル後のFilter() = %v, want ≈(100, 100)", got)
	}
}

// 観測ノイズrを大きくするほどステップ入力への追従が遅れる
func TestKalmanLagIncreasesWithMeasurementNoise(t *testing.T) {
	const q = 0.05
	rs := []float64{0.1, 1.0, 10.0}

	step := func(r float64) float64 {
		flt := NewKalman(q, r)
		flt.Filter(Point{X: 0, Y: 0}, 0.0)
		var out Point
		for i := 1; i <= 10; i++ {
			out = flt.Filter(Point{X: 100, Y: 0}, float64(i))
		}
		return out.X
	}

	prev := math.Inf(1)
	for _, r := range rs {
		got := step(r)
		// 速度状態を持つため、小さいrではステップ入力を
		// わずかに行き過ぎることがある。範囲検査はそれを許容する
		if got <= 0 || got > 110 {
			t.Fatalf("r=%v: 推定値%vが0〜110の範囲外です", r, got)
		}
		if got >= prev {
			t.Errorf("r=%v: 推定値%vが減少していません (前回 %v)", r, got, prev)
		}
		prev = got
	}
}

// 両軸に同一のフィルターが対称に適用される
func TestKalmanAxesSymmetric(t *testing.T) {
	flt := NewKalman(0.05, 2.0)
	flt.Filter(Point{X: 0, Y: 0}, 0.0)

	var out Point
	for i := 1; i <= 20; i++ {
		out = flt.Filter(Point{X: 50, Y: 50}, float64(i))
	}
	if math.Abs(out.X-out.Y) > eps {
		t.Errorf("X軸とY軸の推定値が一致しません: %v", out)
	}
}

// Kalmanは定常入力へ単調に収束し、NaNやInfを出さない
func TestKalmanStaysFinite(t *testing.T) {
	flt := NewKalman(1e-9, 1e-9)
	flt.Filter(Point{X: 0, Y: 0}, 0.0)
	for i := 1; i <= 1000; i++ {
		out := flt.Filter(Point{X: 1e9, Y: -1e9}, float64(i))
		if math.IsNaN(out.X) || math.IsInf(out.X, 0) || math.IsNaN(out.Y) || math.IsInf(out.Y, 0) {
			t.Fatalf("サンプル%dで非有限値が出力されました: %v", i, out)
		}
	}
}

// predictionTime=0の予測フィルターは入力をそのまま返す
func TestPredictiveZeroPredictionTime(t *testing.T) {
	flt := NewPredictive(0, 0.5)
	points := []Point{{0, 0}, {10, 5}, {20, 10}, {30, 15}}
	for i, p := range points {
		if got := flt.Filter(p, float64(i)*0.1); !almostEqual(got, p) {
			t.Errorf("Filter(%v) = %v, want %v", p, got, p)
		}
	}
}

// 等速移動では推定速度×先読み時間だけ先の位置を返す
func TestPredictiveExtrapolatesConstantVelocity(t *testing.T) {
	const (
		tau = 0.1
		vx  = 10.0
	)
	// smoothing=1で最新の観測速度をそのまま使う
	flt := NewPredictive(tau, 1.0)

	flt.Filter(Point{X: 0, Y: 0}, 0.0)
	got := flt.Filter(Point{X: 1, Y: 0}, 0.1)

	want := Point{X: 1 + vx*tau, Y: 0}
	if !almostEqual(got, want) {
		t.Errorf("Filter() = %v, want %v", got, want)
	}
}

// 経過時間がほぼゼロの場合は速度をゼロとして扱い、ゼロ除算しない
func TestPredictiveZeroElapsedTime(t *testing.T) {
	flt := NewPredictive(0.1, 1.0)

	flt.Filter(Point{X: 0, Y: 0}, 1.0)
	got := flt.Filter(Point{X: 5, Y: 5}, 1.0)

	if !almostEqual(got, Point{X: 5, Y: 5}) {
		t.Errorf("Filter() = %v, want (5, 5)", got)
	}
	if math.IsNaN(got.X) || math.IsInf(got.X, 0) {
		t.Errorf("非有限値が出力されました: %v", got)
	}
}

// ファクトリはタイプ名に応じたフィルターを返し、未知の名前はidentityになる
func TestNewSelectsFilterByType(t *testing.T) {
	in := Point{X: 7, Y: -7}

	tests := []struct {
		typeName string
		want     Point
	}{
		{TypeIdentity, in},
		{TypeMute, Point{}},
		{"unknown", in},
		{"", in},
	}

	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			flt := New(Settings{Type: tt.typeName})
			if got := flt.Filter(in, 0); got != tt.want {
				t.Errorf("Filter() = %v, want %v", got, tt.want)
			}
		})
	}
}
