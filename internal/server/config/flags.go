package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
)

// parsedFlags явно заданные флаги командной строки
type parsedFlags struct {
	values     map[string]string
	configFile string
}

// parseFlags разбирает args. Значения применяются позже, поверх остальных источников,
// поэтому сохраняются только явно заданные флаги.
func parseFlags(args []string) (*parsedFlags, error) {
	pf := &parsedFlags{values: make(map[string]string)}

	fs := flag.NewFlagSet("budgetkeeper-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&pf.configFile, "c", "", "path to JSON config file")
	fs.StringVar(&pf.configFile, "config", "", "path to JSON config file")
	fs.Func("env-file", "path to .env file", func(v string) error {
		pf.values["env-file"] = v
		return nil
	})

	for _, f := range fields {
		name := f.flag
		fs.Func(name, f.usage+" (env "+f.env+")", func(v string) error {
			pf.values[name] = v
			return nil
		})
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(os.Stderr)
			fs.PrintDefaults()
			return nil, ErrHelp
		}
		return nil, fmt.Errorf("failed to parse flags: %w", err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	return pf, nil
}

func (pf *parsedFlags) apply(c *Config) error {
	for _, f := range fields {
		v, ok := pf.values[f.flag]
		if !ok {
			continue
		}
		if err := f.set(c, v); err != nil {
			return fmt.Errorf("-%s: %w", f.flag, err)
		}
	}
	return nil
}

// readDotEnv читает .env; отсутствие файла не является ошибкой
func readDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return values, nil
}
