// Package settings stores user preferences, one key per preference.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/craftfolder/internal/apperr"
	"github.com/starford/craftfolder/internal/cost"
	"github.com/starford/craftfolder/internal/kvstore"
)

// Storage keys. appTheme holds a bare string; the rest hold JSON values.
const (
	KeyAppTheme             = "appTheme"
	KeyPreferredCurrency    = "preferredCurrency"
	KeyManualCurrencyCode   = "manualCurrencyCode"
	KeyNotificationsEnabled = "notificationsEnabled"
	KeyShakeToReturn        = "shakeToReturn"
	KeyTutorialEnabled      = "tutorialEnabled"
	KeyCloudSync            = "cloudSync"
	KeyUnits                = "units"
)

// Keys lists every key owned by this package.
var Keys = []string{
	KeyAppTheme, KeyPreferredCurrency, KeyManualCurrencyCode, KeyNotificationsEnabled,
	KeyShakeToReturn, KeyTutorialEnabled, KeyCloudSync, KeyUnits,
}

// Currency preference modes. Any supported currency code is also accepted.
const (
	CurrencyAuto   = "auto"
	CurrencyManual = "manual"
)

var (
	Themes = []interface{}{"light", "dark", "pastel", "nature"}
	Units  = []interface{}{"metric", "imperial"}
)

// Settings is the full preference set.
type Settings struct {
	AppTheme             string `json:"appTheme"`
	PreferredCurrency    string `json:"preferredCurrency"`
	ManualCurrencyCode   string `json:"manualCurrencyCode"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	ShakeToReturn        bool   `json:"shakeToReturn"`
	TutorialEnabled      bool   `json:"tutorialEnabled"`
	CloudSync            bool   `json:"cloudSync"`
	Units                string `json:"units"`
}

// Defaults returns the settings of a fresh install.
func Defaults() Settings {
	return Settings{
		AppTheme:             "light",
		PreferredCurrency:    CurrencyAuto,
		ManualCurrencyCode:   cost.DefaultCurrency,
		NotificationsEnabled: true,
		TutorialEnabled:      true,
		Units:                "metric",
	}
}

// Patch changes the non-nil fields.
type Patch struct {
	AppTheme             *string `json:"appTheme,omitempty"`
	PreferredCurrency    *string `json:"preferredCurrency,omitempty"`
	ManualCurrencyCode   *string `json:"manualCurrencyCode,omitempty"`
	NotificationsEnabled *bool   `json:"notificationsEnabled,omitempty"`
	ShakeToReturn        *bool   `json:"shakeToReturn,omitempty"`
	TutorialEnabled      *bool   `json:"tutorialEnabled,omitempty"`
	CloudSync            *bool   `json:"cloudSync,omitempty"`
	Units                *string `json:"units,omitempty"`
}

// Validate checks the set fields.
func (p *Patch) Validate() error {
	return validation.ValidateStruct(p,
		validation.Field(&p.AppTheme, validation.NilOrNotEmpty, validation.In(Themes...)),
		validation.Field(&p.PreferredCurrency, validation.NilOrNotEmpty, validation.By(preferenceRule)),
		validation.Field(&p.ManualCurrencyCode, validation.NilOrNotEmpty, validation.By(codeRule)),
		validation.Field(&p.Units, validation.NilOrNotEmpty, validation.In(Units...)),
	)
}

func preferenceRule(value interface{}) error {
	s, ok := value.(*string)
	if !ok || s == nil {
		return nil
	}
	if *s == CurrencyAuto || *s == CurrencyManual {
		return nil
	}
	return codeRule(value)
}

func codeRule(value interface{}) error {
	s, ok := value.(*string)
	if !ok || s == nil {
		return nil
	}
	if _, ok := cost.LookupCurrency(*s); !ok {
		return validation.NewError("validation_currency", "must be auto, manual or a supported currency code")
	}
	return nil
}

// Store reads and writes settings through kv.
type Store struct {
	kv     kvstore.Store
	logger *slog.Logger

	mu  sync.RWMutex
	cur Settings
}

// NewStore creates a store holding the defaults until Load is called.
func NewStore(kv kvstore.Store, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{kv: kv, logger: logger, cur: Defaults()}
}

// Load reads every key. Missing keys keep their defaults; an unreadable
// value is logged and skipped, and the first such error is returned.
func (s *Store) Load(ctx context.Context) error {
	next := Defaults()
	var firstErr error
	for _, key := range Keys {
		raw, err := s.kv.Get(ctx, key)
		if errors.Is(err, apperr.ErrNotFound) {
			continue
		}
		if err == nil {
			err = decodeInto(&next, key, raw)
		}
		if err != nil {
			s.logger.Error("settings: load failed", slog.String("key", key), slog.String("error", err.Error()))
			if firstErr == nil {
				firstErr = fmt.Errorf("settings: load %s: %w", key, err)
			}
		}
	}

	s.mu.Lock()
	s.cur = next
	s.mu.Unlock()
	return firstErr
}

// Get returns the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Update validates p and writes each set field.
func (s *Store) Update(ctx context.Context, p Patch) (Settings, error) {
	if p.ManualCurrencyCode != nil {
		code := strings.ToUpper(strings.TrimSpace(*p.ManualCurrencyCode))
		p.ManualCurrencyCode = &code
	}
	if p.PreferredCurrency != nil {
		pref := normalizePreference(*p.PreferredCurrency)
		p.PreferredCurrency = &pref
	}
	if err := p.Validate(); err != nil {
		return s.Get(), apperr.Invalid(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cur
	writes := map[string]any{}
	if p.AppTheme != nil {
		next.AppTheme = *p.AppTheme
		writes[KeyAppTheme] = *p.AppTheme
	}
	if p.PreferredCurrency != nil {
		next.PreferredCurrency = *p.PreferredCurrency
		writes[KeyPreferredCurrency] = *p.PreferredCurrency
	}
	if p.ManualCurrencyCode != nil {
		next.ManualCurrencyCode = *p.ManualCurrencyCode
		writes[KeyManualCurrencyCode] = *p.ManualCurrencyCode
	}
	if p.NotificationsEnabled != nil {
		next.NotificationsEnabled = *p.NotificationsEnabled
		writes[KeyNotificationsEnabled] = *p.NotificationsEnabled
	}
	if p.ShakeToReturn != nil {
		next.ShakeToReturn = *p.ShakeToReturn
		writes[KeyShakeToReturn] = *p.ShakeToReturn
	}
	if p.TutorialEnabled != nil {
		next.TutorialEnabled = *p.TutorialEnabled
		writes[KeyTutorialEnabled] = *p.TutorialEnabled
	}
	if p.CloudSync != nil {
		next.CloudSync = *p.CloudSync
		writes[KeyCloudSync] = *p.CloudSync
	}
	if p.Units != nil {
		next.Units = *p.Units
		writes[KeyUnits] = *p.Units
	}

	s.cur = next
	for _, key := range Keys {
		v, ok := writes[key]
		if !ok {
			continue
		}
		if err := s.write(ctx, key, v); err != nil {
			return next, err
		}
	}
	return next, nil
}

// SetCurrency selects the display currency. "auto" and "manual" only change
// the preference mode; a concrete code also becomes the manual code.
func (s *Store) SetCurrency(ctx context.Context, code string) (Settings, error) {
	pref := normalizePreference(code)
	p := Patch{PreferredCurrency: &pref}
	if pref != CurrencyAuto && pref != CurrencyManual {
		p.ManualCurrencyCode = &pref
	}
	return s.Update(ctx, p)
}

// Currency resolves the display currency code. A manual preference uses the
// manual code, an explicit code is used as is, and auto maps locale.
func (s *Store) Currency(locale string) string {
	return Resolve(s.Get(), locale)
}

// Resolve applies the currency rules to st.
func Resolve(st Settings, locale string) string {
	switch {
	case st.PreferredCurrency == CurrencyManual && st.ManualCurrencyCode != "":
		return st.ManualCurrencyCode
	case st.PreferredCurrency != "" && st.PreferredCurrency != CurrencyAuto && st.PreferredCurrency != CurrencyManual:
		return st.PreferredCurrency
	default:
		return cost.CurrencyForLocale(locale)
	}
}

// Clear deletes every settings key and restores the defaults.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = Defaults()
	for _, key := range Keys {
		if err := s.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("settings: delete %s: %w", key, err)
		}
	}
	return nil
}

func (s *Store) write(ctx context.Context, key string, v any) error {
	var raw []byte
	if str, ok := v.(string); ok && key == KeyAppTheme {
		raw = []byte(str)
	} else {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("settings: encode %s: %w", key, err)
		}
		raw = b
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		s.logger.Error("settings: save failed", slog.String("key", key), slog.String("error", err.Error()))
		return fmt.Errorf("settings: save %s: %w", key, err)
	}
	return nil
}

func normalizePreference(v string) string {
	v = strings.TrimSpace(v)
	lower := strings.ToLower(v)
	if lower == CurrencyAuto || lower == CurrencyManual {
		return lower
	}
	return strings.ToUpper(v)
}

// decodeInto parses raw for key. String values are accepted both quoted and
// bare.
func decodeInto(st *Settings, key string, raw []byte) error {
	switch key {
	case KeyAppTheme:
		st.AppTheme = decodeString(raw)
	case KeyPreferredCurrency:
		st.PreferredCurrency = decodeString(raw)
	case KeyManualCurrencyCode:
		st.ManualCurrencyCode = decodeString(raw)
	case KeyUnits:
		st.Units = decodeString(raw)
	case KeyNotificationsEnabled:
		return json.Unmarshal(raw, &st.NotificationsEnabled)
	case KeyShakeToReturn:
		return json.Unmarshal(raw, &st.ShakeToReturn)
	case KeyTutorialEnabled:
		return json.Unmarshal(raw, &st.TutorialEnabled)
	case KeyCloudSync:
		return json.Unmarshal(raw, &st.CloudSync)
	}
	return nil
}

func decodeString(raw []byte) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
