package filter

// holtFilter は二重指数平滑化（Holt法）フィルター
//
// levelは平滑化された座標、trendは平滑化された変化率を保持する。
// trendは収束速度の調整に使われるだけで、出力には加算しない。
// betaを0にするとlevelへの単純なEMAと同じ動作になる。
type holtFilter struct {
	alpha       float64
	beta        float64
	level       Point
	trend       Point
	initialized bool
}

// NewHolt は二重指数平滑化フィルターを作成する
// alphaとbetaはそれぞれ0.0〜1.0にクランプされる
func NewHolt(alpha, beta float64) Filter {
	return &holtFilter{
		alpha: clamp01(alpha),
		beta:  clamp01(beta),
	}
}

func (f *holtFilter) Filter(p Point, t float64) Point {
	// 初回はlevelを入力値、trendをゼロで初期化する
	if !f.initialized {
		f.level = p
		f.trend = Point{}
		f.initialized = true
		return p
	}

	a, b := f.alpha, f.beta
	prevLevel := f.level

	f.level = Point{
		X: a*p.X + (1.0-a)*(prevLevel.X+f.trend.X),
		Y: a*p.Y + (1.0-a)*(prevLevel.Y+f.trend.Y),
	}
	f.trend = Point{
		X: b*(f.level.X-prevLevel.X) + (1.0-b)*f.trend.X,
		Y: b*(f.level.Y-prevLevel.Y) + (1.0-b)*f.trend.Y,
	}

	return f.level
}

func (f *holtFilter) Reset() {
	f.level = Point{}
	f.trend = Point{}
	f.initialized = false
}
