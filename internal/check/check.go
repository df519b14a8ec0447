// Package check validates a materialized schema repository: structural,
// robustness, and backward-compatibility rule sets, each reported per
// rule per schema like independent test cases.
package check

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/rs/zerolog"

	"github.com/schemakit-dev/schemakit/internal/config"
	"github.com/schemakit-dev/schemakit/internal/materialize"
	"github.com/schemakit-dev/schemakit/internal/repo"
)

type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

// Result is one rule verdict for one schema (or schema group).
type Result struct {
	Rule    string `json:"rule"`
	Title   string `json:"title"`
	Path    string `json:"path"`
	Version string `json:"version,omitempty"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Rule names, usable in the skip_schema_test_cases config map.
const (
	RuleSameDirectory        = "structural/same-directory"
	RuleCurrentExists        = "structural/current-exists"
	RuleNoCurrentSymlink     = "structural/no-current-symlink"
	RuleCurrentMaterialized  = "structural/current-materialized"
	RuleLatestSymlinks       = "structural/latest-symlinks"
	RuleVersionContentTypes  = "structural/version-content-types"
	RuleExtensionlessSymlink = "structural/extensionless-symlink"
	RuleContentTypeEquality  = "structural/content-type-equality"

	RuleValidSchema          = "robustness/valid-schema"
	RuleSecureSchema         = "robustness/secure-schema"
	RuleSnakeCase            = "robustness/snake-case"
	RuleDeterministicTypes   = "robustness/deterministic-types"
	RuleArrayItems           = "robustness/array-items"
	RuleObjectShape          = "robustness/object-shape"
	RuleAdditionalProperties = "robustness/additional-properties"
	RuleOneOfConsistency     = "robustness/oneof-consistency"
	RuleRequiredDeclared     = "robustness/required-declared"
	RuleNumericBounds        = "robustness/numeric-bounds"
	RuleExamples             = "robustness/examples"

	RuleBackwardCompatible = "compat/backward-compatible"
)

type skipEntry struct {
	id    *regexp.Regexp
	rules map[string]bool
}

// Checker runs the rule sets over a scanned repository. It only reads;
// it never mutates the scan or the repository.
type Checker struct {
	opts    config.Options
	scanner *repo.Scanner
	mat     *materialize.Materializer
	skips   []skipEntry
	log     zerolog.Logger
}

func New(opts config.Options, log zerolog.Logger) (*Checker, error) {
	scanner, err := repo.NewScanner(opts)
	if err != nil {
		return nil, err
	}
	skips := make([]skipEntry, 0, len(opts.SkipSchemaTestCases))
	for pattern, rules := range opts.SkipSchemaTestCases {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid skip pattern %q: %w", pattern, err)
		}
		ruleSet := make(map[string]bool, len(rules))
		for _, rule := range rules {
			ruleSet[rule] = true
		}
		skips = append(skips, skipEntry{id: re, rules: ruleSet})
	}
	return &Checker{
		opts:    opts,
		scanner: scanner,
		mat:     materialize.New(opts, log),
		skips:   skips,
		log:     log,
	}, nil
}

// Run scans basePath once and evaluates every rule set against the
// result. One rule's failure never prevents another from running.
func (c *Checker) Run(basePath string) ([]Result, error) {
	infos, err := c.scanner.FindAllSchemasInfo(basePath)
	if err != nil {
		return nil, err
	}
	var results []Result
	results = append(results, c.Structural(infos)...)
	results = append(results, c.Robustness(infos)...)
	results = append(results, c.Compatibility(infos)...)
	return results, nil
}

// record emits one verdict, honoring the skip list for the schema's $id.
func (c *Checker) record(results []Result, rule, id string, base Result, violations []string) []Result {
	base.Rule = rule
	if c.skipped(id, rule) {
		base.Status = StatusSkip
		return append(results, base)
	}
	if len(violations) == 0 {
		base.Status = StatusPass
		return append(results, base)
	}
	base.Status = StatusFail
	base.Message = joinViolations(violations)
	return append(results, base)
}

func (c *Checker) skipped(id, rule string) bool {
	for _, entry := range c.skips {
		if id != "" && entry.id.MatchString(id) && entry.rules[rule] {
			return true
		}
	}
	return false
}

func joinViolations(violations []string) string {
	const maxShown = 5
	msg := ""
	for i, v := range violations {
		if i == maxShown {
			msg += fmt.Sprintf("; ... (%d more)", len(violations)-maxShown)
			break
		}
		if i > 0 {
			msg += "; "
		}
		msg += v
	}
	return msg
}

// Failures filters results down to failed rules.
func Failures(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Status == StatusFail {
			failed = append(failed, r)
		}
	}
	return failed
}

func sortedTitles[V any](m map[string]V) []string {
	titles := make([]string, 0, len(m))
	for title := range m {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles
}
