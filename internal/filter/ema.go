package filter

// emaFilter は指数移動平均による平滑化フィルター
//
// alphaが1.0に近いほど平滑化が弱くなり、入力への追従が速くなる。
// minChangeは微小なジッターを無視するためのデッドバンド閾値で、
// フィルター後の移動量がこの距離未満の場合は前回値を保持する。
type emaFilter struct {
	alpha       float64
	minChange   float64
	lastValue   Point
	initialized bool
}

// NewEMA は指数移動平均フィルターを作成する
// alphaは0.0〜1.0にクランプされ、minChangeは負の場合0になる
func NewEMA(alpha, minChange float64) Filter {
	if minChange < 0 {
		minChange = 0
	}
	return &emaFilter{
		alpha:     clamp01(alpha),
		minChange: minChange,
	}
}

func (f *emaFilter) Filter(p Point, t float64) Point {
	// 初回は入力値で初期化してそのまま返す
	if !f.initialized {
		f.lastValue = p
		f.initialized = true
		return p
	}

	a := f.alpha
	filtered := Point{
		X: a*p.X + (1.0-a)*f.lastValue.X,
		Y: a*p.Y + (1.0-a)*f.lastValue.Y,
	}

	// デッドバンド: 移動量が閾値未満なら前回値を維持する
	d := filtered.Sub(f.lastValue)
	if d.X*d.X+d.Y*d.Y < f.minChange*f.minChange {
		return f.lastValue
	}

	f.lastValue = filtered
	return filtered
}

func (f *emaFilter) Reset() {
	f.lastValue = Point{}
	f.initialized = false
}
