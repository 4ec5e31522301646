package filter

// Point はフィルターが扱う2次元座標を表す構造体
type Point struct {
	X float64
	Y float64
}

// Add は2つの座標を加算する
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub は2つの座標の差分を返す
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Scale は座標をスカラー倍する
func (p Point) Scale(f float64) Point {
	return Point{X: p.X * f, Y: p.Y * f}
}

// Filter はポインター座標の平滑化フィルターを表すインターフェース
//
// Filterは有限の入力に対して決してエラーを返さない。
// パラメータは構築時にクランプされるため、実行時の検証は不要。
type Filter interface {
	// 座標にフィルターを適用する。tは秒単位のタイムスタンプ
	Filter(p Point, t float64) Point
	// フィルターの内部状態を破棄して未初期化状態に戻す
	Reset()
}

// フィルタータイプの名前
const (
	TypeIdentity   = "identity"
	TypeMute       = "mute"
	TypeEMA        = "ema"
	TypeHolt       = "holt"
	TypeKalman     = "kalman"
	TypePredictive = "predictive"
)

// Settings はフィルター構築用のパラメータ
type Settings struct {
	Type              string  // フィルタータイプ名
	Alpha             float64 // EMA/Holtの平滑化係数
	Beta              float64 // Holtのトレンド係数
	MinChange         float64 // EMAのデッドバンド閾値
	ProcessNoise      float64 // Kalmanのプロセスノイズ
	MeasurementNoise  float64 // Kalmanの観測ノイズ
	PredictionTime    float64 // 予測フィルターの先読み時間（秒）
	VelocitySmoothing float64 // 予測フィルターの速度平滑化係数
}

// New は設定に応じたフィルターを構築する
// 未知のタイプ名の場合はIdentityフィルターを返す
func New(s Settings) Filter {
	switch s.Type {
	case TypeMute:
		return NewMute()
	case TypeEMA:
		return NewEMA(s.Alpha, s.MinChange)
	case TypeHolt:
		return NewHolt(s.Alpha, s.Beta)
	case TypeKalman:
		return NewKalman(s.ProcessNoise, s.MeasurementNoise)
	case TypePredictive:
		return NewPredictive(s.PredictionTime, s.VelocitySmoothing)
	default:
		return NewIdentity()
	}
}

// clamp01 は値を0.0〜1.0の範囲に制限する
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// identityFilter は入力をそのまま返すフィルター
type identityFilter struct{}

// NewIdentity は何も加工しないフィルターを作成する
func NewIdentity() Filter {
	return &identityFilter{}
}

func (f *identityFilter) Filter(p Point, t float64) Point { return p }

func (f *identityFilter) Reset() {}

// muteFilter は常に原点を返すフィルター
// パイプラインを繋いだままポインター移動を無効化するために使う
type muteFilter struct{}

// NewMute はポインター移動を無効化するフィルターを作成する
func NewMute() Filter {
	return &muteFilter{}
}

func (f *muteFilter) Filter(p Point, t float64) Point { return Point{} }

func (f *muteFilter) Reset() {}
