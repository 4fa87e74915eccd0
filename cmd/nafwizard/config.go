package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	wizard "github.com/goliatone/go-wizard"
	"github.com/goliatone/go-wizard/pkg/enums"
	"github.com/joho/godotenv"
)

// Environment variables read after the env file is loaded.
const (
	envAddr       = "NAFWIZARD_ADDR"
	envStrategies = "NAFWIZARD_STRATEGIES"
	envCategories = "NAFWIZARD_CATEGORIES"
	envEnumFile   = "NAFWIZARD_ENUM_FILE"
	envRuleEngine = "NAFWIZARD_RULE_ENGINE"
)

const defaultAddr = ":8080"

type config struct {
	Addr         string
	Enumerations enums.Set
	RuleEngine   string
}

// loadEnvFile loads path into the process environment. A missing file is not
// an error; variables already set win.
func loadEnvFile(path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false, nil
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("load env file %s: %w", path, err)
	}
	return true, nil
}

func configFromEnv(getenv func(string) string) (config, error) {
	cfg := config{
		Addr:         strings.TrimSpace(getenv(envAddr)),
		RuleEngine:   strings.ToLower(strings.TrimSpace(getenv(envRuleEngine))),
		Enumerations: enums.Set{},
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}

	if path := strings.TrimSpace(getenv(envEnumFile)); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return config{}, fmt.Errorf("%s: %w", envEnumFile, err)
		}
		set, err := enums.ParseSet(data)
		if err != nil {
			return config{}, fmt.Errorf("%s: %w", envEnumFile, err)
		}
		cfg.Enumerations = enums.Merge(cfg.Enumerations, set)
	}

	for name, key := range map[string]string{
		wizard.EnumDeploymentStrategies: envStrategies,
		wizard.EnumUseCaseCategories:    envCategories,
	} {
		members, err := listValue(getenv(key))
		if err != nil {
			return config{}, fmt.Errorf("%s: %w", key, err)
		}
		if members != nil {
			cfg.Enumerations = enums.Merge(cfg.Enumerations, enums.Set{name: members})
		}
	}
	return cfg, nil
}

// listValue reads a YAML file when value names one, otherwise a comma list.
func listValue(value string) ([]string, error) {
	value = strings.TrimSpace(value)
	switch strings.ToLower(filepath.Ext(value)) {
	case ".yaml", ".yml":
		return enums.LoadList(value)
	}
	return enums.SplitList(value), nil
}

func (c config) evaluator() (wizard.Evaluator, error) {
	switch c.RuleEngine {
	case "", "expr":
		return wizard.NewExprEvaluator(), nil
	case "cel":
		return wizard.NewCELEvaluator(), nil
	case "js":
		if e := wizard.NewJSEvaluator(); e != nil {
			return e, nil
		}
		return nil, fmt.Errorf("rule engine js needs a build with the js_eval tag")
	default:
		return nil, fmt.Errorf("unknown rule engine %q", c.RuleEngine)
	}
}
