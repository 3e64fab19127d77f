// Package suite loads test suite definition files into case specifications.
package suite

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ethpandaops/tapcheck/internal/testcase"
	"github.com/kballard/go-shellquote"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var (
	errUnsupportedFormat = errors.New("unsupported suite format")
	errMissingName       = errors.New("case name is required")
	errDuplicateCase     = errors.New("duplicate case name")
	errDuplicateSuite    = errors.New("duplicate suite name")
	errConflictingStdout = errors.New("only one of stdout, stdout_contains and stdout_unordered may be set")
	errStdoutModeTarget  = errors.New("stdout_mode requires stdout")
	errNegativeTimeout   = errors.New("timeout must not be negative")
	errMissingCommand    = errors.New("no command to run")
	errInvalidCommand    = errors.New("invalid command")
	errSetupKey          = errors.New("setup only accepts env")
)

const (
	// IgnoreSentinel disables comparison of the stream it is assigned to.
	IgnoreSentinel = "<ignore>"

	setupTable = "setup"
	listKey    = "case"
)

// Suite is a loaded suite definition file.
type Suite struct {
	Name  string
	Path  string
	Env   map[string]string
	Cases []*testcase.CaseSpec
}

// Loader loads suite definition files.
type Loader interface {
	Load(path string) (*Suite, error)
	LoadAll(paths []string) ([]*Suite, error)
}

// Option configures a Loader.
type Option func(*loader)

// WithDefaultTimeout sets the timeout applied to cases that do not declare one.
func WithDefaultTimeout(d time.Duration) Option {
	return func(l *loader) {
		if d > 0 {
			l.defaultTimeout = d
		}
	}
}

type loader struct {
	log            logrus.FieldLogger
	runner         []string
	defaultTimeout time.Duration
}

var _ Loader = (*loader)(nil)

// NewLoader creates a loader whose cases run the given argv prefix unless a case overrides
// its command.
func NewLoader(log logrus.FieldLogger, runner []string, opts ...Option) Loader {
	l := &loader{
		log:            log.WithField("component", "suite_loader"),
		runner:         runner,
		defaultTimeout: testcase.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load reads and validates a single suite file.
func (l *loader) Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading suite %s: %w", path, err)
	}

	codec, err := codecFor(path)
	if err != nil {
		return nil, fmt.Errorf("loading suite %s: %w", path, err)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	s, err := l.parse(name, data, codec)
	if err != nil {
		return nil, fmt.Errorf("loading suite %s: %w", path, err)
	}

	s.Path = path

	l.log.WithFields(logrus.Fields{
		"suite": s.Name,
		"path":  path,
		"cases": len(s.Cases),
	}).Debug("loaded suite")

	return s, nil
}

// LoadAll loads every path in order, failing on the first invalid suite. Suite names come
// from file base names and must be unique across paths, since they qualify case IDs.
func (l *loader) LoadAll(paths []string) ([]*Suite, error) {
	suites := make([]*Suite, 0, len(paths))
	seen := make(map[string]string, len(paths))

	for _, path := range paths {
		s, err := l.Load(path)
		if err != nil {
			return nil, err
		}

		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("%w: %s is defined by both %s and %s", errDuplicateSuite, s.Name, prev, path)
		}

		seen[s.Name] = path
		suites = append(suites, s)
	}

	return suites, nil
}

// Cases flattens the cases of all suites in load order.
func Cases(suites []*Suite) []*testcase.CaseSpec {
	var cases []*testcase.CaseSpec
	for _, s := range suites {
		cases = append(cases, s.Cases...)
	}

	return cases
}

func (l *loader) parse(name string, data []byte, c codec) (*Suite, error) {
	var probe map[string]any
	if err := c.decode(data, &probe, false); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", c.name, err)
	}

	if list, ok := probe[listKey].([]any); ok && len(list) > 0 {
		var file listFile
		if err := c.decode(data, &file, true); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", c.name, err)
		}

		return l.buildList(name, &file)
	}

	if err := checkSetup(probe); err != nil {
		return nil, err
	}

	var file map[string]*namedCase
	if err := c.decode(data, &file, true); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", c.name, err)
	}

	return l.buildNamed(name, file)
}

// codec decodes one file format, optionally rejecting unknown keys.
type codec struct {
	name   string
	decode func(data []byte, v any, strict bool) error
}

func codecFor(path string) (codec, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return codec{name: "toml", decode: decodeTOML}, nil
	case ".yaml", ".yml":
		return codec{name: "yaml", decode: decodeYAML}, nil
	default:
		return codec{}, fmt.Errorf("%w: %q", errUnsupportedFormat, filepath.Ext(path))
	}
}

func decodeTOML(data []byte, v any, strict bool) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	if strict {
		dec.DisallowUnknownFields()
	}

	return dec.Decode(v)
}

func decodeYAML(data []byte, v any, strict bool) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(strict)

	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

// checkSetup rejects case keys in the setup table, which would otherwise decode and be
// dropped.
func checkSetup(probe map[string]any) error {
	setup, ok := probe[setupTable].(map[string]any)
	if !ok {
		return nil
	}

	keys := make([]string, 0, len(setup))
	for key := range setup {
		if key != "env" {
			keys = append(keys, key)
		}
	}

	if len(keys) == 0 {
		return nil
	}

	sort.Strings(keys)

	return fmt.Errorf("%w, found %s", errSetupKey, strings.Join(keys, ", "))
}

// sortedNames returns case names in a stable order, since neither decoder preserves the
// order of top-level tables.
func sortedNames(file map[string]*namedCase) []string {
	names := make([]string, 0, len(file))
	for name := range file {
		if name != setupTable {
			names = append(names, name)
		}
	}

	sort.Strings(names)

	return names
}

func (l *loader) timeout(seconds *float64) (time.Duration, error) {
	if seconds == nil || *seconds == 0 {
		return l.defaultTimeout, nil
	}

	if *seconds < 0 {
		return 0, fmt.Errorf("%w: %v", errNegativeTimeout, *seconds)
	}

	return time.Duration(*seconds * float64(time.Second)), nil
}

func (l *loader) command(override string) ([]string, error) {
	if override == "" {
		if len(l.runner) == 0 {
			return nil, errMissingCommand
		}

		return append([]string(nil), l.runner...), nil
	}

	argv, err := shellquote.Split(override)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", errInvalidCommand, override, err)
	}

	if len(argv) == 0 {
		return nil, errMissingCommand
	}

	return argv, nil
}
