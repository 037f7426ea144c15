package profile

import (
	"fmt"
	"testing"
	"time"

	"github.com/ValentinKolb/asadmin/lib/store/lstore"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *managerImpl {
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	n := 0
	return &managerImpl{
		store: lstore.NewLocalStore(),
		now: func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		},
		newID: func() string {
			n++
			return fmt.Sprintf("id-%d", n)
		},
	}
}

func TestProfiles(t *testing.T) {
	m := newTestManager()

	local, err := m.Save(Profile{Name: "local", Host: "127.0.0.1", Port: 3000})
	require.NoError(t, err)
	assert.Equal(t, "id-1", local.ID)
	assert.False(t, local.CreatedAt.IsZero())

	prod, err := m.Save(Profile{Name: "prod", Host: "db.example.com", Username: "admin", Password: "secret"})
	require.NoError(t, err)

	list, err := m.List()
	require.NoError(t, err)
	if diff := cmp.Diff([]Profile{local, prod}, list); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}

	updated, err := m.Update(prod.ID, Profile{Port: 4000})
	require.NoError(t, err)
	assert.Equal(t, 4000, updated.Port)
	assert.Equal(t, "db.example.com", updated.Host)
	assert.Equal(t, prod.CreatedAt, updated.CreatedAt)

	found, err := m.Find("prod")
	require.NoError(t, err)
	assert.Equal(t, prod.ID, found.ID)

	_, err = m.Get("missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)
	_, err = m.Update("missing", Profile{Name: "x"})
	assert.ErrorIs(t, err, ErrProfileNotFound)

	_, err = m.Save(Profile{Host: "nameless"})
	assert.ErrorIs(t, err, ErrInvalidProfile)
	_, err = m.Save(Profile{Name: "bad port", Port: 70000})
	assert.ErrorIs(t, err, ErrInvalidProfile)
}

func TestActiveProfile(t *testing.T) {
	m := newTestManager()

	_, ok, err := m.Active()
	require.NoError(t, err)
	assert.False(t, ok)

	p, err := m.Save(Profile{Name: "prod", Host: "db", Username: "admin", Password: "pw"})
	require.NoError(t, err)

	assert.ErrorIs(t, m.SetActive("nope"), ErrProfileNotFound)
	require.NoError(t, m.SetActive(p.ID))

	active, ok, err := m.Active()
	require.NoError(t, err)
	require.True(t, ok)
	params := active.ConnectParams()
	assert.Equal(t, "db", params.Host)
	assert.Equal(t, 3000, params.Port)
	assert.True(t, params.HasCredentials())

	require.NoError(t, m.Delete(p.ID))
	_, ok, err = m.Active()
	require.NoError(t, err)
	assert.False(t, ok, "deleting the active profile clears the active id")
	has, _ := m.store.Has(activeProfileKey)
	assert.False(t, has)
}

func TestPreferences(t *testing.T) {
	m := newTestManager()

	theme, err := m.Theme()
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)
	require.NoError(t, m.SetTheme(ThemeLight))
	theme, _ = m.Theme()
	assert.Equal(t, ThemeLight, theme)
	assert.ErrorIs(t, m.SetTheme("neon"), ErrInvalidTheme)

	w, err := m.EditorWidth()
	require.NoError(t, err)
	assert.Equal(t, DefaultEditorWidth, w)

	for in, want := range map[int]int{100: 300, 650: 650, 5000: 800} {
		got, err := m.SetEditorWidth(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		stored, _ := m.EditorWidth()
		assert.Equal(t, want, stored)
	}

	// preferences are independent of the profiles
	_, err = m.Save(Profile{Name: "p"})
	require.NoError(t, err)
	list, _ := m.List()
	assert.Len(t, list, 1)
}
