// Command matchingram compiles a YAML rule set and runs chat messages
// through it.
//
// Usage:
//
//	matchingram <rules.yaml> [messages.jsonl]
//
// The rule file holds a list of named rule expressions. Messages are
// Bot API JSON objects, one per line, read from the given file or from
// stdin. For every message the names of the matching rules are
// printed.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matchingram/matchingram/matcher"
	"github.com/matchingram/matchingram/telegram"
)

type ruleFile struct {
	Rules []namedRule `yaml:"rules"`
}

type namedRule struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`
}

type compiledRule struct {
	name    string
	matcher *matcher.Matcher
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <rules.yaml> [messages.jsonl]\n", os.Args[0])
		os.Exit(1)
	}

	rules, err := loadRules(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
	fmt.Printf("Compiled %d rule(s) from %s\n", len(rules), os.Args[1])

	in := io.Reader(os.Stdin)
	if len(os.Args) > 2 {
		f, err := os.Open(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening %s: %v\n", os.Args[2], err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	if err := run(rules, in, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadRules(filename string) ([]compiledRule, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var rf ruleFile
	if err := yaml.Unmarshal(content, &rf); err != nil {
		return nil, fmt.Errorf("parsing rule file: %w", err)
	}
	if len(rf.Rules) == 0 {
		return nil, fmt.Errorf("no rules in file")
	}

	rules := make([]compiledRule, 0, len(rf.Rules))
	var bad int
	for _, nr := range rf.Rules {
		m, err := matcher.Compile(nr.Expr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rule %q: %v\n", nr.Name, err)
			bad++
			continue
		}
		rules = append(rules, compiledRule{name: nr.Name, matcher: m})
	}
	if bad > 0 {
		return nil, fmt.Errorf("%d rule(s) failed to compile", bad)
	}
	return rules, nil
}

func run(rules []compiledRule, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		var msg telegram.Message
		if err := json.Unmarshal([]byte(text), &msg); err != nil {
			fmt.Fprintf(os.Stderr, "message %d: bad JSON: %v\n", line, err)
			continue
		}

		view := telegram.NewView(&msg)
		var matched []string
		for _, r := range rules {
			if r.matcher.Match(view) {
				matched = append(matched, r.name)
			}
		}
		if len(matched) == 0 {
			fmt.Fprintf(out, "message %d: -\n", line)
		} else {
			fmt.Fprintf(out, "message %d: %s\n", line, strings.Join(matched, ", "))
		}
	}
	return scanner.Err()
}
