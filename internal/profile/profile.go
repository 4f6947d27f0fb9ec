// Package profile holds the weighting profiles, piece values and
// visualization constants an evaluator and the renderers consult.
package profile

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// MaxNameLength bounds saved profile names
const MaxNameLength = 64

var (
	ErrUnknownMetric = errors.New("unknown metric")
	ErrInvalidName   = errors.New("invalid profile name")
	ErrKingValue     = errors.New("king value is fixed at 0")
)

var validate = validator.New()

type Metric string

const (
	Material Metric = "material"
	Mobility Metric = "mobility"
	Attack   Metric = "attack"
	Defense  Metric = "defense"
)

// ParseMetric accepts full names and the PV/MS/AT/DF abbreviations
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "material", "pv":
		return Material, nil
	case "mobility", "ms":
		return Mobility, nil
	case "attack", "at":
		return Attack, nil
	case "defense", "df":
		return Defense, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

type Weights struct {
	Material float64 `json:"material" mapstructure:"material" validate:"gte=0"`
	Mobility float64 `json:"mobility" mapstructure:"mobility" validate:"gte=0"`
	Attack   float64 `json:"attack" mapstructure:"attack" validate:"gte=0"`
	Defense  float64 `json:"defense" mapstructure:"defense" validate:"gte=0"`
}

func (w *Weights) Get(m Metric) float64 {
	switch m {
	case Material:
		return w.Material
	case Mobility:
		return w.Mobility
	case Attack:
		return w.Attack
	case Defense:
		return w.Defense
	}
	return 0
}

func (w *Weights) set(m Metric, v float64) {
	switch m {
	case Material:
		w.Material = v
	case Mobility:
		w.Mobility = v
	case Attack:
		w.Attack = v
	case Defense:
		w.Defense = v
	}
}

type Profile struct {
	Name        string  `json:"name" mapstructure:"name" validate:"required"`
	Description string  `json:"description,omitempty" mapstructure:"description"`
	Weights     Weights `json:"weights" mapstructure:"weights"`
}

// Validate reports negative weights and missing names
func (p Profile) Validate() error {
	return validate.Struct(p)
}

// Fallback is the single profile used when no profile document loads
func Fallback() Profile {
	return Profile{
		Name:        "Balanced",
		Description: "Equal weight to all metrics",
		Weights:     Weights{Material: 1, Mobility: 1, Attack: 1, Defense: 1},
	}
}

// Document is the profiles configuration input
type Document struct {
	Profiles []Profile `json:"profiles" mapstructure:"profiles" validate:"required,min=1,dive"`
	Default  string    `json:"default" mapstructure:"default"`
}

// Model is the in-memory profile set with one active profile. User edits
// mutate the active profile in place.
type Model struct {
	mu          sync.RWMutex
	profiles    map[string]*Profile
	active      string
	pieceValues PieceValues
	viz         Visualization
}

// NewModel returns a model holding the built-in defaults
func NewModel() *Model {
	m := &Model{
		pieceValues: DefaultPieceValues(),
		viz:         DefaultVisualization(),
	}
	m.resetProfiles()
	return m
}

func (m *Model) resetProfiles() {
	fb := Fallback()
	m.profiles = map[string]*Profile{fb.Name: &fb}
	m.active = fb.Name
}

// ApplyDocument replaces the profile set. The document's default becomes
// active when present, otherwise the first listed profile.
func (m *Model) ApplyDocument(doc Document) error {
	if err := validate.Struct(doc); err != nil {
		return fmt.Errorf("invalid profiles document: %w", err)
	}

	profiles := make(map[string]*Profile, len(doc.Profiles))
	for i := range doc.Profiles {
		p := doc.Profiles[i]
		profiles[p.Name] = &p
	}
	active := doc.Profiles[0].Name
	if _, ok := profiles[doc.Default]; ok {
		active = doc.Default
	}

	m.mu.Lock()
	m.profiles = profiles
	m.active = active
	m.mu.Unlock()
	return nil
}

// UseFallback drops all profiles and installs the built-in one
func (m *Model) UseFallback() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resetProfiles()
}

// Active returns a copy of the active profile
func (m *Model) Active() Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.profiles[m.active]
}

// Get returns a copy of a profile by name
func (m *Model) Get(name string) (Profile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[name]
	if !ok {
		return Profile{}, false
	}
	return *p, true
}

// Names lists profile names in sorted order
func (m *Model) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := maps.Keys(m.profiles)
	slices.Sort(names)
	return names
}

// Profiles lists all profiles sorted by name
func (m *Model) Profiles() []Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := maps.Keys(m.profiles)
	slices.Sort(names)
	out := make([]Profile, 0, len(names))
	for _, n := range names {
		out = append(out, *m.profiles[n])
	}
	return out
}

// SetWeight changes one weight of the active profile. Negative values are
// stored as given; Validate reports them.
func (m *Model) SetWeight(metric Metric, value float64) error {
	parsed, err := ParseMetric(string(metric))
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[m.active].Weights.set(parsed, value)
	return nil
}

// SwitchProfile activates a profile by name. Unknown names leave the
// active profile unchanged.
func (m *Model) SwitchProfile(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[name]; ok {
		m.active = name
	}
}

// ValidateName checks a profile name for saving
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: longer than %d characters", ErrInvalidName, MaxNameLength)
	}
	if strings.IndexFunc(name, func(r rune) bool { return !unicode.IsPrint(r) }) >= 0 {
		return fmt.Errorf("%w: %q contains control characters", ErrInvalidName, name)
	}
	return nil
}

// SaveProfile stores the active weights under name, replacing a profile of
// the same name, and makes it active. Names must be non-empty printable
// text of at most MaxNameLength runes.
func (m *Model) SaveProfile(name string) error {
	name = strings.TrimSpace(name)
	if err := ValidateName(name); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	p := &Profile{
		Name:        name,
		Description: "User-saved profile",
		Weights:     m.profiles[m.active].Weights,
	}
	m.profiles[name] = p
	m.active = name
	return nil
}

func (m *Model) PieceValues() PieceValues {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pieceValues
}

func (m *Model) SetPieceValues(pv PieceValues) {
	pv.King = 0
	m.mu.Lock()
	m.pieceValues = pv
	m.mu.Unlock()
}

func (m *Model) Visualization() Visualization {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.viz
}

func (m *Model) SetVisualization(v Visualization) {
	m.mu.Lock()
	m.viz = v
	m.mu.Unlock()
}

// Clone returns an independent copy: profiles, active name, piece values
// and visualization
func (m *Model) Clone() *Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c := &Model{
		profiles:    make(map[string]*Profile, len(m.profiles)),
		active:      m.active,
		pieceValues: m.pieceValues,
		viz:         m.viz,
	}
	for name, p := range m.profiles {
		cp := *p
		c.profiles[name] = &cp
	}
	return c
}
