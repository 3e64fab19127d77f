// Package prefix lays out a temporary install prefix whose libdir points at the real one,
// so cases written against "lib" run unchanged against other libdir layouts.
package prefix

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/ethpandaops/tapcheck/internal/config"
	"github.com/sirupsen/logrus"
)

var (
	// ErrRemapActive is returned when a remap is requested while another is still open.
	ErrRemapActive = errors.New("a prefix remap is already active")

	errPrefixPathUnset = errors.New(config.EnvPrefixPath + " must be set to remap the prefix")
	errInvalidLibdir   = errors.New("invalid libdir")
)

var active atomic.Bool

// Options describes the requested layout.
type Options struct {
	// Libdir is the build's configured libdir, possibly multi-component.
	Libdir string
	// Prefix is the requested prefix. Any non-empty value forces a remap.
	Prefix string
	// PrefixPath is the current value of CPS_PREFIX_PATH.
	PrefixPath string
}

// Mapping is the result of Remap. Close releases it.
type Mapping struct {
	// Prefix is what {prefix} resolves to for the run.
	Prefix string

	root     string
	link     string
	log      logrus.FieldLogger
	once     sync.Once
	closeErr error
}

// Remap creates the temporary layout when opts.Libdir differs from "lib" or a prefix is
// requested. Otherwise it returns a mapping that changes nothing.
func Remap(log logrus.FieldLogger, opts Options) (*Mapping, error) {
	log = log.WithField("component", "prefix")

	libdir := opts.Libdir
	if libdir == "" {
		libdir = config.DefaultLibdir
	}

	if libdir == config.DefaultLibdir && opts.Prefix == "" {
		return &Mapping{log: log}, nil
	}

	cleaned := filepath.Clean(libdir)
	if filepath.IsAbs(cleaned) || cleaned == "." || cleaned == ".." || filepath.Base(cleaned) == ".." {
		return nil, fmt.Errorf("%w: %q", errInvalidLibdir, libdir)
	}

	if opts.PrefixPath == "" {
		return nil, errPrefixPathUnset
	}

	if !active.CompareAndSwap(false, true) {
		return nil, ErrRemapActive
	}

	m, err := build(log, cleaned, opts.PrefixPath)
	if err != nil {
		active.Store(false)
		return nil, err
	}

	return m, nil
}

func build(log logrus.FieldLogger, libdir, prefixPath string) (*Mapping, error) {
	root, err := os.MkdirTemp("", "tapcheck-prefix-")
	if err != nil {
		return nil, fmt.Errorf("creating temporary prefix: %w", err)
	}

	parent, base := filepath.Split(libdir)
	dir := filepath.Join(root, parent)

	if parent != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			_ = os.RemoveAll(root)
			return nil, fmt.Errorf("creating libdir parents: %w", err)
		}
	}

	source := filepath.Join(prefixPath, config.DefaultLibdir)
	link := filepath.Join(dir, base)

	if err := os.Symlink(source, link); err != nil {
		_ = os.RemoveAll(root)
		return nil, fmt.Errorf("linking %s to %s: %w", link, source, err)
	}

	log.WithFields(logrus.Fields{
		"prefix": root,
		"link":   link,
		"source": source,
	}).Debug("remapped prefix")

	return &Mapping{
		Prefix: root,
		root:   root,
		link:   link,
		log:    log,
	}, nil
}

// Remapped reports whether a temporary layout was created.
func (m *Mapping) Remapped() bool {
	return m.root != ""
}

// Env returns the variables that point cases at the temporary layout. It is empty when
// nothing was remapped.
func (m *Mapping) Env() map[string]string {
	if !m.Remapped() {
		return map[string]string{}
	}

	return map[string]string{config.EnvPrefixPath: m.root}
}

// PrefixOr returns the remapped prefix, or fallback when nothing was remapped.
func (m *Mapping) PrefixOr(fallback string) string {
	if m.Remapped() {
		return m.Prefix
	}

	return fallback
}

// Close removes the link and the temporary prefix. It is safe to call more than once.
func (m *Mapping) Close() error {
	if !m.Remapped() {
		return nil
	}

	m.once.Do(func() {
		defer active.Store(false)

		if err := os.Remove(m.link); err != nil && !errors.Is(err, os.ErrNotExist) {
			m.closeErr = fmt.Errorf("removing %s: %w", m.link, err)
		}

		if err := os.RemoveAll(m.root); err != nil && m.closeErr == nil {
			m.closeErr = fmt.Errorf("removing %s: %w", m.root, err)
		}

		m.log.WithField("prefix", m.root).Debug("removed remapped prefix")
	})

	return m.closeErr
}
