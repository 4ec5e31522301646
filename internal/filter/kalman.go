package filter

// kalmanDt は予測ステップで使う固定の公称時間刻み（秒）
// 実際の経過時間は使わず、呼び出しごとに一定時間が進んだものとして扱う
const kalmanDt = 0.01

// kalmanEpsilon は共分散の逆数計算を保護する閾値
const kalmanEpsilon = 1e-9

// kalmanAxis は1軸分の位置・速度カルマンフィルターの状態
type kalmanAxis struct {
	pos float64
	vel float64
	// 共分散行列 [[p00, p01], [p10, p11]]
	p00, p01, p10, p11 float64
}

// resetCovariance は共分散を単位行列に戻す
func (a *kalmanAxis) resetCovariance() {
	a.p00, a.p01, a.p10, a.p11 = 1, 0, 0, 1
}

// step は予測と観測更新を1回分進めて位置の推定値を返す
func (a *kalmanAxis) step(z, q, r float64) float64 {
	// 予測: 等速モデル x' = F x, F = [[1, dt], [0, 1]]
	a.pos += a.vel * kalmanDt

	// 共分散の伝播: P' = F P F^T + q I
	p00 := a.p00 + kalmanDt*(a.p10+a.p01) + kalmanDt*kalmanDt*a.p11 + q
	p01 := a.p01 + kalmanDt*a.p11
	p10 := a.p10 + kalmanDt*a.p11
	p11 := a.p11 + q

	// 観測更新: イノベーションの分散 S = p00 + r
	s := p00 + r
	if s < kalmanEpsilon {
		// 分散が潰れた場合は単位行列に戻して更新をスキップする
		a.resetCovariance()
		return a.pos
	}

	k0 := p00 / s
	k1 := p10 / s

	innovation := z - a.pos
	a.pos += k0 * innovation
	a.vel += k1 * innovation

	// 共分散の収縮: P = (I - K H) P'
	a.p00 = (1 - k0) * p00
	a.p01 = (1 - k0) * p01
	a.p10 = p10 - k1*p00
	a.p11 = p11 - k1*p01

	return a.pos
}

// kalmanFilter は位置と速度を状態に持つカルマンフィルター
//
// X軸とY軸それぞれに独立した同一のスカラーフィルターを適用する。
// processNoiseを大きくすると追従が速くなり、
// measurementNoiseを大きくすると平滑化が強くなる（遅延が増える）。
type kalmanFilter struct {
	q           float64
	r           float64
	x           kalmanAxis
	y           kalmanAxis
	initialized bool
}

// NewKalman は位置・速度カルマンフィルターを作成する
// ノイズパラメータが正でない場合は最小値にクランプされる
func NewKalman(processNoise, measurementNoise float64) Filter {
	const minNoise = 1e-6
	if processNoise < minNoise {
		processNoise = minNoise
	}
	if measurementNoise < minNoise {
		measurementNoise = minNoise
	}
	return &kalmanFilter{q: processNoise, r: measurementNoise}
}

func (f *kalmanFilter) Filter(p Point, t float64) Point {
	// 初回は観測値で状態を初期化してそのまま返す
	if !f.initialized {
		f.x = kalmanAxis{pos: p.X}
		f.y = kalmanAxis{pos: p.Y}
		f.x.resetCovariance()
		f.y.resetCovariance()
		f.initialized = true
		return p
	}

	return Point{
		X: f.x.step(p.X, f.q, f.r),
		Y: f.y.step(p.Y, f.q, f.r),
	}
}

func (f *kalmanFilter) Reset() {
	f.x = kalmanAxis{}
	f.y = kalmanAxis{}
	f.initialized = false
}
