package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	builderrors "github.com/kashifsoofi/kashifsoofi.github.io/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "_config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFile_ReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "_config.yml"))
	require.NoError(t, err)
	require.Equal(t, "_site", cfg.Destination)
	require.Equal(t, "_layouts", cfg.LayoutsDir)
	require.Equal(t, "pretty", cfg.Permalink)
	require.Equal(t, "/page:num/", cfg.PaginatePath)

	_, enabled := cfg.PageSize()
	require.False(t, enabled)
}

func TestLoad_RecognizedKeys_ArePromoted(t *testing.T) {
	path := writeConfig(t, `
title: My Blog
base_url: https://example.com/
permalink: "/:categories/:title/"
paginate: 5
paginate_path: "/posts/page:num/"
include: [".well-known"]
exclude: ["drafts-wip"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "My Blog", cfg.Title)
	require.Equal(t, "https://example.com", cfg.BaseURL, "trailing slash trimmed")
	require.Equal(t, "/:categories/:title/", cfg.Permalink)
	require.Equal(t, []string{".well-known"}, cfg.Include)
	require.Equal(t, []string{"drafts-wip"}, cfg.Exclude)

	n, enabled := cfg.PageSize()
	require.True(t, enabled)
	require.Equal(t, 5, n)
}

func TestLoad_UnrecognizedKeys_LandInExtra(t *testing.T) {
	path := writeConfig(t, "title: t\ngithub_username: kashifsoofi\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "kashifsoofi", cfg.Extra["github_username"])
}

func TestLoad_NonPositivePaginate_IsConfigError(t *testing.T) {
	for _, v := range []string{"0", "-3"} {
		path := writeConfig(t, "paginate: "+v+"\n")

		_, err := Load(path)
		require.Error(t, err)
		be, ok := err.(*builderrors.BuildError)
		require.True(t, ok)
		require.Equal(t, builderrors.CategoryConfig, be.Category)
		require.True(t, be.Fatal())
	}
}

func TestLoad_PaginatePathWithoutNumToken_IsConfigError(t *testing.T) {
	path := writeConfig(t, "paginate_path: /page/\n")

	_, err := Load(path)
	require.Error(t, err)
	be, ok := err.(*builderrors.BuildError)
	require.True(t, ok)
	require.Equal(t, builderrors.CategoryConfig, be.Category)
}

func TestLoad_MalformedYAML_IsConfigError(t *testing.T) {
	path := writeConfig(t, "title: [unclosed\n")

	_, err := Load(path)
	require.Error(t, err)
	be, ok := err.(*builderrors.BuildError)
	require.True(t, ok)
	require.Equal(t, builderrors.CategoryConfig, be.Category)
}

func TestLoad_BadRebuildInterval_IsConfigError(t *testing.T) {
	path := writeConfig(t, "serve:\n  rebuild_interval: sometimes\n")

	_, err := Load(path)
	require.Error(t, err)
}
