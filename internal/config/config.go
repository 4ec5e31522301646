package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/char5742/pointer-relay/internal/filter"
)

// Config はアプリケーション全体の設定を表す構造体
type Config struct {
	Filter      FilterConfig      `toml:"filter" json:"filter"`
	Pointer     PointerConfig     `toml:"pointer" json:"pointer"`
	DevicePrefs DevicePrefsConfig `toml:"device_prefs" json:"device_prefs"`
}

// FilterConfig は平滑化フィルターの設定
type FilterConfig struct {
	Type              string  `toml:"type" json:"type"`
	Alpha             float64 `toml:"alpha" json:"alpha"`
	Beta              float64 `toml:"beta" json:"beta"`
	MinChange         float64 `toml:"min_change" json:"min_change"`
	ProcessNoise      float64 `toml:"process_noise" json:"process_noise"`
	MeasurementNoise  float64 `toml:"measurement_noise" json:"measurement_noise"`
	PredictionTime    float64 `toml:"prediction_time" json:"prediction_time"`
	VelocitySmoothing float64 `toml:"velocity_smoothing" json:"velocity_smoothing"`
}

// Settings はフィルター構築用のパラメータに変換する
func (c FilterConfig) Settings() filter.Settings {
	return filter.Settings{
		Type:              c.Type,
		Alpha:             c.Alpha,
		Beta:              c.Beta,
		MinChange:         c.MinChange,
		ProcessNoise:      c.ProcessNoise,
		MeasurementNoise:  c.MeasurementNoise,
		PredictionTime:    c.PredictionTime,
		VelocitySmoothing: c.VelocitySmoothing,
	}
}

// PointerConfig はポインター変換の設定
type PointerConfig struct {
	HorizontalSensitivity float64 `toml:"horizontal_sensitivity" json:"horizontal_sensitivity"`
	VerticalSensitivity   float64 `toml:"vertical_sensitivity" json:"vertical_sensitivity"`
	GlobalScale           float64 `toml:"global_scale" json:"global_scale"`
	ScrollStep            int32   `toml:"scroll_step" json:"scroll_step"`
}

// DevicePrefsConfig は使用するデバイスの設定
type DevicePrefsConfig struct {
	PreferredTouchDevice    string `toml:"preferred_touch_device" json:"preferred_touch_device"`
	PreferredKeyboardDevice string `toml:"preferred_keyboard_device" json:"preferred_keyboard_device"`
}

// DefaultConfig はデフォルト設定を返す
func DefaultConfig() *Config {
	return &Config{
		Filter: FilterConfig{
			Type:              filter.TypeEMA,
			Alpha:             0.6,
			Beta:              0.1,
			MinChange:         0.0,
			ProcessNoise:      0.05,
			MeasurementNoise:  2.0,
			PredictionTime:    0.03,
			VelocitySmoothing: 0.5,
		},
		Pointer: PointerConfig{
			HorizontalSensitivity: 3.0,
			VerticalSensitivity:   3.0,
			GlobalScale:           1.0,
			ScrollStep:            1,
		},
		DevicePrefs: DevicePrefsConfig{
			PreferredTouchDevice:    "",
			PreferredKeyboardDevice: "",
		},
	}
}

// GetDefaultConfigDir はデフォルトの設定ディレクトリを返す
func GetDefaultConfigDir() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(userConfigDir, "pointer-relay"), nil
}

// LoadConfig は設定ファイルから設定を読み込む
func LoadConfig(configPath string) (*Config, error) {
	// デフォルト設定を用意
	config := DefaultConfig()

	// ファイルが存在しない場合はデフォルト設定を保存して返す
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// 設定ディレクトリの作成
		configDir := filepath.Dir(configPath)
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return config, err
		}

		// デフォルト設定の保存
		if err := SaveConfig(configPath, config); err != nil {
			return config, err
		}

		return config, nil
	}

	// 設定ファイルの読み込み
	if _, err := toml.DecodeFile(configPath, config); err != nil {
		return config, err
	}

	return config, nil
}

// SaveConfig は設定をTOMLファイルに保存する
func SaveConfig(configPath string, config *Config) error {
	// 設定ディレクトリの作成
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return err
	}

	// ファイルを開く（なければ作成）
	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	// TOML形式でエンコードして書き込み
	encoder := toml.NewEncoder(f)
	return encoder.Encode(config)
}
