package main

import (
	"regexp"
	"strings"
	"time"

	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/config"
	"github.com/ivaylokenov/MyTested.AspNetCore.Mvc-sub012/framework"

	"github.com/alessio/shellescape"
	"github.com/spf13/pflag"
)

type commandParams struct {
	configPath  string
	filters     framework.RegexFilters
	parallelism int
	timeout     time.Duration
	debug       bool
	debugAll    bool
	noColor     bool
}

func (p *commandParams) register(fs *pflag.FlagSet) {
	fs.StringVar(&p.configPath, "config", config.DefaultPath, "YAML file with default settings")
	fs.Var(&p.filters.MustMatch, "run", "regex pattern(s) to select scenarios to run")
	fs.Var(&p.filters.MustNotMatch, "skip", "regex pattern(s) to select scenarios not to run")
	fs.IntVar(&p.parallelism, "parallel", 1, "how many scenarios to run at once (0 for no limit)")
	fs.DurationVar(&p.timeout, "timeout", 10*time.Second, "time limit for each scenario")
	fs.BoolVar(&p.debug, "debug", false, "show debug output for failed scenarios")
	fs.BoolVar(&p.debugAll, "debug-all", false, "show debug output for all scenarios")
	fs.BoolVar(&p.noColor, "no-color", false, "disable colored output")
}

// resolve loads the config file and applies every flag that was set on the command line
// on top of it. Filter patterns from both sources apply.
func (p *commandParams) resolve(fs *pflag.FlagSet) (config.Config, framework.RegexFilters, error) {
	cfg, err := config.LoadFile(p.configPath)
	if err != nil {
		return cfg, framework.RegexFilters{}, err
	}
	if fs.Changed("parallel") {
		cfg.Parallelism = p.parallelism
	}
	if fs.Changed("timeout") {
		cfg.Timeout = p.timeout
	}
	cfg.Debug = cfg.Debug || p.debug
	cfg.DebugAll = cfg.DebugAll || p.debugAll
	cfg.NoColor = cfg.NoColor || p.noColor
	cfg.Run = append(cfg.Run, p.filters.MustMatch.Patterns()...)
	cfg.Skip = append(cfg.Skip, p.filters.MustNotMatch.Patterns()...)
	if err := cfg.Validate(); err != nil {
		return cfg, framework.RegexFilters{}, err
	}
	filters, err := cfg.Filters()
	return cfg, filters, err
}

// rerunCommand is a shell command line that runs only the failed scenarios again.
func rerunCommand(program string, configPath string, failures []framework.TestResult) string {
	var b commandBuilder
	b.add(program, "run")
	if configPath != "" && configPath != config.DefaultPath {
		b.add("--config", configPath)
	}
	for _, f := range failures {
		if len(f.TestID.Path) == 0 {
			continue
		}
		b.add("--run", "^"+regexp.QuoteMeta(f.TestID.String())+"$")
	}
	return b.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
