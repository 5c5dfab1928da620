package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath           = "."
	defaultRequestTimeout = 20 * time.Second
	defaultNavDelay       = time.Second
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	// Backend is the remote REST API this client talks to.
	Backend struct {
		BaseURL        string        `json:"baseUrl" yaml:"baseUrl"`
		RequestTimeout time.Duration `json:"requestTimeout" yaml:"requestTimeout"`
	} `json:"backend" yaml:"backend"`

	// Callback is the loopback server that receives OAuth redirects.
	Callback struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"callback" yaml:"callback"`

	// Storage holds the device-local credential store settings.
	Storage struct {
		Path string `json:"path" yaml:"path"`
	} `json:"storage" yaml:"storage"`

	DeepLink *DeepLinkConfig `json:"deepLink" yaml:"deepLink"`

	Facebook *FacebookConfig `json:"facebook" yaml:"facebook"`

	TikTok *TikTokConfig `json:"tiktok" yaml:"tiktok"`

	// QRCode configuration for connect-URL QR rendering
	QRCode *QRCodeConfig `json:"qrcode" yaml:"qrcode"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// DeepLinkConfig defines how inbound URLs are recognized as belonging to the app.
type DeepLinkConfig struct {
	// Scheme is the custom app scheme, e.g. "thaiquestify".
	Scheme string `json:"scheme" yaml:"scheme"`

	// UniversalPrefixes are https prefixes routed into the app instead of a browser.
	UniversalPrefixes []string `json:"universalPrefixes" yaml:"universalPrefixes"`

	// NavigationDelay is the pause before handing a login callback to the auth bridge.
	NavigationDelay time.Duration `json:"navigationDelay" yaml:"navigationDelay"`

	// InitialURL is an optional launch URL drained once at startup (cold start by link).
	InitialURL string `json:"initialUrl" yaml:"initialUrl"`
}

// FacebookConfig defines the SDK-style Facebook integration.
type FacebookConfig struct {
	AppID        string `json:"appId" yaml:"appId"`
	AppSecret    string `json:"appSecret" yaml:"appSecret"`
	RedirectURI  string `json:"redirectUri" yaml:"redirectUri"`
	TargetPageID string `json:"targetPageId" yaml:"targetPageId"`

	// GraphBaseURL is overridable for tests; defaults to the public Graph host.
	GraphBaseURL string `json:"graphBaseUrl" yaml:"graphBaseUrl"`
}

// TikTokConfig defines the redirect-style TikTok integration.
type TikTokConfig struct {
	ClientKey   string `json:"clientKey" yaml:"clientKey"`
	RedirectURI string `json:"redirectUri" yaml:"redirectUri"`
	Scopes      string `json:"scopes" yaml:"scopes"`
}

// QRCodeConfig defines QR code generation configuration
type QRCodeConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: BACKEND_BASEURL -> backend.baseUrl (not backend.baseurl)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	if cfg.Backend.RequestTimeout <= 0 {
		cfg.Backend.RequestTimeout = defaultRequestTimeout
	}
	if cfg.DeepLink != nil && cfg.DeepLink.NavigationDelay <= 0 {
		cfg.DeepLink.NavigationDelay = defaultNavDelay
	}

	return cfg, nil
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
