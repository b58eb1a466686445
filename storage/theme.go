package storage

import (
	"context"
	"fmt"
)

// Theme is the persisted colour scheme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"

	themeKey = "theme"
)

// ParseTheme accepts "light" or "dark".
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// ThemeStore persists the theme preference next to the session.
type ThemeStore struct {
	backend Backend
}

func NewThemeStore(backend Backend) *ThemeStore {
	return &ThemeStore{backend: backend}
}

// Get returns the stored theme, light when unset or unreadable.
func (t *ThemeStore) Get(ctx context.Context) (Theme, error) {
	raw, ok, err := t.backend.Get(ctx, themeKey)
	if err != nil {
		return ThemeLight, err
	}
	if !ok {
		return ThemeLight, nil
	}
	theme, err := ParseTheme(raw)
	if err != nil {
		return ThemeLight, nil
	}
	return theme, nil
}

func (t *ThemeStore) Set(ctx context.Context, theme Theme) error {
	return t.backend.Set(ctx, themeKey, string(theme))
}

// Toggle flips between light and dark and returns the new theme.
func (t *ThemeStore) Toggle(ctx context.Context) (Theme, error) {
	current, err := t.Get(ctx)
	if err != nil {
		return current, err
	}
	next := ThemeDark
	if current == ThemeDark {
		next = ThemeLight
	}
	if err := t.Set(ctx, next); err != nil {
		return current, err
	}
	return next, nil
}
