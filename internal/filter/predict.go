package filter

// predictHistorySize は速度推定に使う履歴サンプル数
const predictHistorySize = 5

// predictDtEpsilon はこれ未満の経過時間では速度を計算しない閾値
const predictDtEpsilon = 1e-6

// predictSample は履歴リングバッファの1エントリ
type predictSample struct {
	pos Point
	t   float64
}

// predictiveFilter は速度推定による先読みフィルター
//
// 直近の履歴から推定した速度でpredictionTime秒だけ先の位置を外挿し、
// 転送経路の遅延による体感の遅れを打ち消す。
// velocitySmoothingは速度推定の平滑化係数で、1.0に近いほど
// 最新の観測速度を強く反映する。
type predictiveFilter struct {
	predictionTime    float64
	velocitySmoothing float64
	history           [predictHistorySize]predictSample
	count             int // 有効な履歴数（最大predictHistorySize）
	next              int // 次に書き込むリングバッファ位置
	vel               Point
}

// NewPredictive は先読みフィルターを作成する
// predictionTimeが負の場合は0、velocitySmoothingは0.0〜1.0にクランプされる
func NewPredictive(predictionTime, velocitySmoothing float64) Filter {
	if predictionTime < 0 {
		predictionTime = 0
	}
	return &predictiveFilter{
		predictionTime:    predictionTime,
		velocitySmoothing: clamp01(velocitySmoothing),
	}
}

func (f *predictiveFilter) Filter(p Point, t float64) Point {
	f.history[f.next] = predictSample{pos: p, t: t}
	f.next = (f.next + 1) % predictHistorySize
	if f.count < predictHistorySize {
		f.count++
	}

	if f.count >= 2 {
		newest := f.history[(f.next+predictHistorySize-1)%predictHistorySize]
		oldest := f.history[(f.next+predictHistorySize-f.count)%predictHistorySize]

		dt := newest.t - oldest.t
		var instant Point
		if dt > predictDtEpsilon {
			instant = newest.pos.Sub(oldest.pos).Scale(1.0 / dt)
		}
		// ゼロ除算を避けるため、経過時間が短すぎる場合は速度ゼロとして扱う

		s := f.velocitySmoothing
		f.vel = Point{
			X: f.vel.X + (instant.X-f.vel.X)*s,
			Y: f.vel.Y + (instant.Y-f.vel.Y)*s,
		}
	}

	return p.Add(f.vel.Scale(f.predictionTime))
}

func (f *predictiveFilter) Reset() {
	f.history = [predictHistorySize]predictSample{}
	f.count = 0
	f.next = 0
	f.vel = Point{}
}
