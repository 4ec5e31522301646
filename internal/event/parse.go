package event

import "fmt"

// ParseButton はボタンの正準表記をButtonIDに変換する
func ParseButton(s string) (ButtonID, error) {
	switch s {
	case "", "Primary":
		return ButtonPrimary, nil
	case "Secondary":
		return ButtonSecondary, nil
	case "Tertiary":
		return ButtonTertiary, nil
	default:
		return ButtonPrimary, fmt.Errorf("未知のボタンです: %q", s)
	}
}

// ParsePhase は段階の正準表記をPhaseに変換する
func ParsePhase(s string) (Phase, error) {
	switch s {
	case "", "None":
		return PhaseNone, nil
	case "Press":
		return PhasePress, nil
	case "Release":
		return PhaseRelease, nil
	case "HoldBegin":
		return PhaseHoldBegin, nil
	case "HoldEnd":
		return PhaseHoldEnd, nil
	case "Tap":
		return PhaseTap, nil
	case "DoubleTap":
		return PhaseDoubleTap, nil
	case "LongPress":
		return PhaseLongPress, nil
	default:
		return PhaseNone, fmt.Errorf("未知の段階です: %q", s)
	}
}

// ParseDirection は方向の正準表記をDirectionに変換する
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "None":
		return DirectionNone, nil
	case "Up":
		return DirectionUp, nil
	case "Right":
		return DirectionRight, nil
	case "Down":
		return DirectionDown, nil
	case "Left":
		return DirectionLeft, nil
	default:
		return DirectionNone, fmt.Errorf("未知の方向です: %q", s)
	}
}
