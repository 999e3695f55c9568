package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func TestUsedAndUnusedCodes(t *testing.T) {
	root := writeTree(t, map[string]string{
		"store/codes.go": `package store

import "github.com/gear6io/quackview/pkg/errors"

var (
	ErrMissing = errors.MustNewCode("store.missing")
	ErrFull    = errors.MustNewCode("store.full")
	ErrIdle    = errors.MustNewCode("store.idle")
)
`,
		"store/store.go": `package store

import "github.com/gear6io/quackview/pkg/errors"

func Get() error { return errors.New(ErrMissing, "no such key", nil) }
`,
		"api/api.go": `package api

import (
	"github.com/example/app/store"
	"github.com/gear6io/quackview/pkg/errors"
)

func Put() bool { return errors.HasCode(nil, store.ErrFull) }
`,
	})

	c := NewChecker(defaultConfig())
	require.NoError(t, c.CheckDirectory(root))

	assert.Empty(t, c.Findings())
	assert.Empty(t, c.ValidateCodes())

	unused := c.Unused()
	require.Len(t, unused, 1)
	assert.Equal(t, "ErrIdle", unused[0].Name)
}

func TestForbiddenCallsResolveImports(t *testing.T) {
	root := writeTree(t, map[string]string{
		"bad/bad.go": `package bad

import (
	"fmt"
	stderrs "errors"

	ferrors "github.com/go-faster/errors"
)

func a() error { return fmt.Errorf("a %d", 1) }
func b() error { return stderrs.New("b") }
func c() error { return ferrors.Wrap(b(), "c") }
`,
		"good/good.go": `package good

import "github.com/gear6io/quackview/pkg/errors"

var ErrX = errors.MustNewCode("good.x")

func a() error { return errors.New(ErrX, "fine", nil) }
`,
	})

	c := NewChecker(defaultConfig())
	require.NoError(t, c.CheckDirectory(root))

	findings := c.Findings()
	require.Len(t, findings, 3)
	for _, f := range findings {
		assert.Equal(t, "forbidden", f.Rule)
		assert.Equal(t, "bad.go", filepath.Base(f.Pos.Filename))
	}
	assert.Contains(t, findings[0].Msg, "fmt.Errorf")
}

func TestValidateCodes(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/codes.go": `package a

import "github.com/gear6io/quackview/pkg/errors"

var (
	ErrOne   = errors.MustNewCode("a.one")
	ErrShape = errors.MustNewCode("NotDotted")
	ErrWord  = errors.MustNewCode("a.parse_error")
)
`,
		"b/codes.go": `package b

import "github.com/gear6io/quackview/pkg/errors"

var ErrOne = errors.MustNewCode("a.one")
`,
	})

	c := NewChecker(defaultConfig())
	require.NoError(t, c.CheckDirectory(root))

	rules := map[string]int{}
	for _, f := range c.ValidateCodes() {
		rules[f.Rule]++
	}
	assert.Equal(t, map[string]int{"code": 2, "duplicate": 1}, rules)
}

func TestExcludedAndTestFilesAreSkipped(t *testing.T) {
	root := writeTree(t, map[string]string{
		"vendor/lib/lib.go": `package lib

import "fmt"

func a() error { return fmt.Errorf("vendored") }
`,
		"pkg/x_test.go": `package pkg

import "errors"

var sentinel = errors.New("test only")
`,
	})

	c := NewChecker(defaultConfig())
	require.NoError(t, c.CheckDirectory(root))
	assert.Empty(t, c.Findings())
	assert.Zero(t, c.files)
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	root := writeTree(t, map[string]string{
		"errorcode.yml": "skip_tests: false\nexit_on_unused: true\n",
	})

	cfg, err := loadConfig(filepath.Join(root, "errorcode.yml"))
	require.NoError(t, err)
	assert.False(t, cfg.SkipTests)
	assert.True(t, cfg.ExitOnUnused)
	assert.Contains(t, cfg.ForbiddenCalls, "fmt.Errorf")

	_, err = loadConfig(filepath.Join(root, "missing.yml"))
	assert.Error(t, err)
}
