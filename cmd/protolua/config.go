package main

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the settings shared by every subcommand.
type Config struct {
	// Module is the name of the namespace and of its require() module.
	Module string `validate:"required,luaident"`
	// Global is the global variable bound to the namespace; empty skips it.
	Global   string   `validate:"omitempty,luaident"`
	LogLevel string   `validate:"oneof=debug info warn error"`
	Libs     []string `validate:"dive,oneof=package base table io os string math debug channel coroutine"`
}

// allLibs lists the standard libraries in opening order.
var allLibs = []string{"package", "base", "table", "io", "os", "string", "math", "debug", "channel", "coroutine"}

func defaultConfig() Config {
	return Config{
		Module:   "llvm",
		Global:   "llvm",
		LogLevel: "warn",
		Libs:     append([]string(nil), allLibs...),
	}
}

var luaIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterValidation("luaident", func(fl validator.FieldLevel) bool {
		return luaIdent.MatchString(fl.Field().String())
	})
	return v
}()

// Validate reports the first invalid field of c.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// newLogger builds the process logger. Debug level selects the
// development encoder.
func newLogger(c Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	var zc zap.Config
	if level.Level() == zapcore.DebugLevel {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zc.Level = level
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
