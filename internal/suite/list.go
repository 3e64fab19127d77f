package suite

import (
	"fmt"
	"strings"

	"github.com/ethpandaops/tapcheck/internal/testcase"
)

// cpsDir is where the list dialect's {prefix} resolves to for the cps target.
const cpsDir = "{prefix}/{libdir}/cps"

type listFile struct {
	Case []*listCase `toml:"case" yaml:"case"`
}

// listCase is one [[case]] entry. Output is compared token-wise and stderr is not checked.
type listCase struct {
	Name         string   `toml:"name" yaml:"name"`
	CPS          string   `toml:"cps" yaml:"cps"`
	Args         []string `toml:"args" yaml:"args"`
	Expected     string   `toml:"expected" yaml:"expected"`
	Mode         string   `toml:"mode" yaml:"mode"`
	ReturnCode   int      `toml:"returncode" yaml:"returncode"`
	ExpectedFail bool     `toml:"expected_fail" yaml:"expected_fail"`
	Timeout      *float64 `toml:"timeout" yaml:"timeout"`
}

func (l *loader) buildList(name string, file *listFile) (*Suite, error) {
	s := &Suite{Name: name}
	seen := make(map[string]struct{}, len(file.Case))

	for i, raw := range file.Case {
		if raw == nil || raw.Name == "" {
			return nil, fmt.Errorf("%w at index %d", errMissingName, i)
		}

		if _, ok := seen[raw.Name]; ok {
			return nil, fmt.Errorf("%w: %s", errDuplicateCase, raw.Name)
		}
		seen[raw.Name] = struct{}{}

		timeout, err := l.timeout(raw.Timeout)
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", raw.Name, err)
		}

		command, err := l.command("")
		if err != nil {
			return nil, fmt.Errorf("case %s: %w", raw.Name, err)
		}

		s.Cases = append(s.Cases, &testcase.CaseSpec{
			Suite:        s.Name,
			Name:         raw.Name,
			Command:      command,
			Args:         raw.Args,
			Target:       strings.ReplaceAll(raw.CPS, "{prefix}", cpsDir),
			Format:       raw.Mode,
			InheritEnv:   true,
			Stdout:       testcase.Expectation{Mode: testcase.MatchUnordered, Text: raw.Expected},
			Stderr:       testcase.Expectation{Mode: testcase.MatchIgnore},
			ExitCode:     raw.ReturnCode,
			ExpectedFail: raw.ExpectedFail,
			Timeout:      timeout,
		})
	}

	return s, nil
}
