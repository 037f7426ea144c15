package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ValentinKolb/asadmin/lib/driver"
	"github.com/ValentinKolb/asadmin/lib/store"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("profile")

const (
	profileKeyPrefix = "profile:"
	activeProfileKey = "active-profile"
	themeKey         = "ui:theme"
	editorWidthKey   = "ui:editor-width"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrInvalidProfile  = errors.New("invalid profile")
	ErrInvalidTheme    = errors.New("invalid theme")
)

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Profile is a saved set of connection parameters.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Host      string    `json:"host"`
	Port      int       `json:"port"`
	Username  string    `json:"username,omitempty"`
	Password  string    `json:"password,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ConnectParams returns the connection parameters of the profile.
func (p Profile) ConnectParams() driver.ConnectParams {
	return driver.ConnectParams{Host: p.Host, Port: p.Port, User: p.Username, Password: p.Password}.WithDefaults()
}

func (p Profile) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidProfile)
	}
	if p.Port < 0 || p.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidProfile, p.Port)
	}
	return nil
}

// Theme is the color theme of the terminal UI.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"

	DefaultTheme = ThemeDark
)

// ParseTheme parses a theme name.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeDark, ThemeLight:
		return t, nil
	default:
		return "", fmt.Errorf("%w %q (expected dark or light)", ErrInvalidTheme, s)
	}
}

const (
	DefaultEditorWidth = 500
	MinEditorWidth     = 300
	MaxEditorWidth     = 800
)

// ClampEditorWidth limits an editor width to [MinEditorWidth, MaxEditorWidth].
func ClampEditorWidth(w int) int {
	return min(max(w, MinEditorWidth), MaxEditorWidth)
}

// --------------------------------------------------------------------------
// Manager
// --------------------------------------------------------------------------

// IManager manages connection profiles and UI preferences. Profiles, the
// active profile id and each preference are stored under their own keys.
type IManager interface {
	// List returns all profiles, oldest first.
	List() ([]Profile, error)
	// Get returns a profile by id.
	Get(id string) (Profile, error)
	// Find returns the profile with the given id or, failing that, name.
	Find(idOrName string) (Profile, error)
	// Save stores a new profile with a fresh id and creation time.
	Save(p Profile) (Profile, error)
	// Update merges the non zero fields of patch into a stored profile.
	Update(id string, patch Profile) (Profile, error)
	// Delete removes a profile. Deleting the active profile clears the active id.
	Delete(id string) error

	// Active returns the active profile; ok is false if none is set.
	Active() (p Profile, ok bool, err error)
	// SetActive marks a profile as active. An empty id clears it.
	SetActive(id string) error

	Theme() (Theme, error)
	SetTheme(t Theme) error
	EditorWidth() (int, error)
	// SetEditorWidth stores the clamped width and returns it.
	SetEditorWidth(w int) (int, error)
}

type managerImpl struct {
	store store.IStore
	now   func() time.Time
	newID func() string
}

// NewManager creates a profile manager on top of a store.
func NewManager(s store.IStore) IManager {
	return &managerImpl{store: s, now: time.Now, newID: uuid.NewString}
}

func (m *managerImpl) load(key string) (Profile, bool, error) {
	raw, ok, err := m.store.Get(key)
	if err != nil || !ok {
		return Profile{}, false, err
	}
	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil {
		return Profile{}, false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return p, true, nil
}

func (m *managerImpl) write(p Profile) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return m.store.Set(profileKeyPrefix+p.ID, raw)
}

func (m *managerImpl) List() ([]Profile, error) {
	keys, err := m.store.Keys(profileKeyPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]Profile, 0, len(keys))
	for _, k := range keys {
		p, ok, err := m.load(k)
		if err != nil {
			Logger.Warningf("skipping unreadable profile: %v", err)
			continue
		}
		if ok {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *managerImpl) Get(id string) (Profile, error) {
	p, ok, err := m.load(profileKeyPrefix + id)
	if err != nil {
		return Profile{}, err
	}
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, id)
	}
	return p, nil
}

func (m *managerImpl) Find(idOrName string) (Profile, error) {
	if p, err := m.Get(idOrName); err == nil {
		return p, nil
	}
	profiles, err := m.List()
	if err != nil {
		return Profile{}, err
	}
	for _, p := range profiles {
		if p.Name == idOrName {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, idOrName)
}

func (m *managerImpl) Save(p Profile) (Profile, error) {
	if err := p.validate(); err != nil {
		return Profile{}, err
	}
	p.ID = m.newID()
	p.CreatedAt = m.now().UTC()
	if err := m.write(p); err != nil {
		return Profile{}, err
	}
	Logger.Infof("saved profile %q (%s)", p.Name, p.ID)
	return p, nil
}

func (m *managerImpl) Update(id string, patch Profile) (Profile, error) {
	p, err := m.Get(id)
	if err != nil {
		return Profile{}, err
	}
	if patch.Name != "" {
		p.Name = patch.Name
	}
	if patch.Host != "" {
		p.Host = patch.Host
	}
	if patch.Port != 0 {
		p.Port = patch.Port
	}
	if patch.Username != "" {
		p.Username = patch.Username
	}
	if patch.Password != "" {
		p.Password = patch.Password
	}
	if err := p.validate(); err != nil {
		return Profile{}, err
	}
	if err := m.write(p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (m *managerImpl) Delete(id string) error {
	if err := m.store.Delete(profileKeyPrefix + id); err != nil {
		return err
	}
	active, _, err := m.store.Get(activeProfileKey)
	if err != nil {
		return err
	}
	if string(active) == id {
		return m.store.Delete(activeProfileKey)
	}
	return nil
}

func (m *managerImpl) Active() (Profile, bool, error) {
	id, ok, err := m.store.Get(activeProfileKey)
	if err != nil || !ok {
		return Profile{}, false, err
	}
	p, found, err := m.load(profileKeyPrefix + string(id))
	if err != nil {
		return Profile{}, false, err
	}
	return p, found, nil
}

func (m *managerImpl) SetActive(id string) error {
	if id == "" {
		return m.store.Delete(activeProfileKey)
	}
	if _, err := m.Get(id); err != nil {
		return err
	}
	return m.store.Set(activeProfileKey, []byte(id))
}

// --------------------------------------------------------------------------
// Preferences
// --------------------------------------------------------------------------

func (m *managerImpl) Theme() (Theme, error) {
	raw, ok, err := m.store.Get(themeKey)
	if err != nil || !ok {
		return DefaultTheme, err
	}
	t, err := ParseTheme(string(raw))
	if err != nil {
		Logger.Warningf("ignoring stored theme: %v", err)
		return DefaultTheme, nil
	}
	return t, nil
}

func (m *managerImpl) SetTheme(t Theme) error {
	if _, err := ParseTheme(string(t)); err != nil {
		return err
	}
	return m.store.Set(themeKey, []byte(t))
}

func (m *managerImpl) EditorWidth() (int, error) {
	raw, ok, err := m.store.Get(editorWidthKey)
	if err != nil || !ok {
		return DefaultEditorWidth, err
	}
	w, err := strconv.Atoi(string(raw))
	if err != nil {
		return DefaultEditorWidth, nil
	}
	return ClampEditorWidth(w), nil
}

func (m *managerImpl) SetEditorWidth(w int) (int, error) {
	w = ClampEditorWidth(w)
	return w, m.store.Set(editorWidthKey, []byte(strconv.Itoa(w)))
}
