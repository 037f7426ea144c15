package browse

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Quit       key.Binding
	Help       key.Binding
	NextPanel  key.Binding
	PrevPanel  key.Binding
	Open       key.Binding
	Back       key.Binding
	Search     key.Binding
	Clear      key.Binding
	Refresh    key.Binding
	NextPage   key.Binding
	PrevPage   key.Binding
	Bigger     key.Binding
	Smaller    key.Binding
	Add        key.Binding
	Delete     key.Binding
	Connect    key.Binding
	Disconnect key.Binding
	Theme      key.Binding
	Save       key.Binding
	Confirm    key.Binding
	Cancel     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		NextPanel:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next panel")),
		PrevPanel:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "previous panel")),
		Open:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		Back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Search:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search keys")),
		Clear:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "clear search")),
		Refresh:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		NextPage:   key.NewBinding(key.WithKeys("right", "n"), key.WithHelp("→/n", "next page")),
		PrevPage:   key.NewBinding(key.WithKeys("left", "p"), key.WithHelp("←/p", "previous page")),
		Bigger:     key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "larger pages")),
		Smaller:    key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "smaller pages")),
		Add:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add record")),
		Delete:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete record")),
		Connect:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "connect")),
		Disconnect: key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "disconnect")),
		Theme:      key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "toggle theme")),
		Save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Confirm:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		Cancel:     key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n/esc", "cancel")),
	}
}

// helpLine renders bindings as "key action · key action"
func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}

func (k keyMap) browseHelp(full bool) string {
	if !full {
		return helpLine(k.Open, k.NextPanel, k.Search, k.NextPage, k.PrevPage, k.Add, k.Help, k.Quit)
	}
	return strings.Join([]string{
		helpLine(k.Open, k.NextPanel, k.PrevPanel, k.Refresh, k.Quit),
		helpLine(k.Search, k.Clear, k.NextPage, k.PrevPage, k.Bigger, k.Smaller),
		helpLine(k.Add, k.Delete, k.Connect, k.Disconnect, k.Theme, k.Help),
	}, "\n")
}
