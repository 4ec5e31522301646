package event

// ButtonID はポインターのボタンを表す列挙型
type ButtonID int

const (
	ButtonPrimary ButtonID = iota
	ButtonSecondary
	ButtonTertiary
)

// String はボタンの正準表記を返す
func (b ButtonID) String() string {
	switch b {
	case ButtonPrimary:
		return "Primary"
	case ButtonSecondary:
		return "Secondary"
	case ButtonTertiary:
		return "Tertiary"
	default:
		return "Unknown"
	}
}

// Phase はボタンイベントの段階を表す列挙型
type Phase int

const (
	PhaseNone Phase = iota
	PhasePress
	PhaseRelease
	PhaseHoldBegin
	PhaseHoldEnd
	PhaseTap
	PhaseDoubleTap
	PhaseLongPress
)

// String は段階の正準表記を返す
func (p Phase) String() string {
	switch p {
	case PhaseNone:
		return "None"
	case PhasePress:
		return "Press"
	case PhaseRelease:
		return "Release"
	case PhaseHoldBegin:
		return "HoldBegin"
	case PhaseHoldEnd:
		return "HoldEnd"
	case PhaseTap:
		return "Tap"
	case PhaseDoubleTap:
		return "DoubleTap"
	case PhaseLongPress:
		return "LongPress"
	default:
		return "Unknown"
	}
}

// Direction は方向入力を表す列挙型
type Direction int

const (
	DirectionNone Direction = iota
	DirectionUp
	DirectionRight
	DirectionDown
	DirectionLeft
)

// String は方向の正準表記を返す
func (d Direction) String() string {
	switch d {
	case DirectionNone:
		return "None"
	case DirectionUp:
		return "Up"
	case DirectionRight:
		return "Right"
	case DirectionDown:
		return "Down"
	case DirectionLeft:
		return "Left"
	default:
		return "Unknown"
	}
}

// Event は外部のジェスチャー分類器が生成する離散入力イベント
//
// ボタンイベント（ボタン×段階）と方向イベントのいずれか一方だけが
// 有効になるタグ付き共用体。ファクトリ関数経由で構築することで
// この不変条件が保証される。ゼロ値は「イベントなし」を表すNoneイベント。
//
// 比較は(Button, Phase, Direction)の構造的等価で行えるため、
// そのまま==演算子やマップのキーとして使える。
type Event struct {
	Button    ButtonID
	Phase     Phase
	Direction Direction
}

// None は「イベントなし」を表す正準値
var None = Event{}

// ForButton はボタンイベントを構築する
func ForButton(id ButtonID, phase Phase) Event {
	return Event{Button: id, Phase: phase}
}

// ForDirection は方向イベントを構築する
// 方向イベントではPhaseはNone、ButtonはPrimaryに固定される
func ForDirection(d Direction) Event {
	return Event{Button: ButtonPrimary, Phase: PhaseNone, Direction: d}
}

// IsDirection は方向イベントかどうかを返す
func (e Event) IsDirection() bool { return e.Direction != DirectionNone }

// IsNone はイベントなしを表す値かどうかを返す
func (e Event) IsNone() bool {
	return e.Phase == PhaseNone && e.Direction == DirectionNone
}

// IsPress はボタン押下イベントかどうかを返す
func (e Event) IsPress() bool { return e.Phase == PhasePress }

// IsRelease はボタン解放イベントかどうかを返す
func (e Event) IsRelease() bool { return e.Phase == PhaseRelease }

// IsTap はタップイベントかどうかを返す
func (e Event) IsTap() bool { return e.Phase == PhaseTap }

// IsDoubleTap はダブルタップイベントかどうかを返す
func (e Event) IsDoubleTap() bool { return e.Phase == PhaseDoubleTap }

// IsLongPress は長押しイベントかどうかを返す
func (e Event) IsLongPress() bool { return e.Phase == PhaseLongPress }

// IsHoldBegin はホールド開始イベントかどうかを返す
func (e Event) IsHoldBegin() bool { return e.Phase == PhaseHoldBegin }

// IsHoldEnd はホールド終了イベントかどうかを返す
func (e Event) IsHoldEnd() bool { return e.Phase == PhaseHoldEnd }

// String はイベントの正準表記を返す
// 方向イベントは "Direction.<方向>"、Noneイベントは "None"、
// ボタンイベントは "<ボタン>.<段階>" の形式になる
func (e Event) String() string {
	if e.IsDirection() {
		return "Direction." + e.Direction.String()
	}
	if e.IsNone() {
		return "None"
	}
	return e.Button.String() + "." + e.Phase.String()
}
