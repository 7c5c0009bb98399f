/*
 * logging.go, part of gocg.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package logging builds the zap loggers used by the gocg commands. Logs go
// to stderr, or to a file rotated by lumberjack.
package logging

import (
	"os"
	"strings"

	"github.com/natefinch/lumberjack"
	cg "github.com/rmera/gocg"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls the logger. The zero value logs at info level, in
// console format, to stderr.
type Config struct {
	Level      string `mapstructure:"level" yaml:"level"`   //debug, info, warn or error
	Format     string `mapstructure:"format" yaml:"format"` //console or json
	File       string `mapstructure:"file" yaml:"file"`     //empty for stderr
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
}

// Validate checks the level and format of C.
func (C Config) Validate() error {
	if _, err := level(C.Level); err != nil {
		return err
	}
	switch strings.ToLower(C.Format) {
	case "", "console", "json":
		return nil
	}
	return cg.NewError(cg.ErrConfig, "logging.Validate", "unknown log format %q", C.Format)
}

func level(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	l, err := zapcore.ParseLevel(s)
	if err != nil {
		return l, cg.WrapError(cg.ErrConfig, "logging.level", err)
	}
	return l, nil
}

// New returns a logger as described by cfg.
func New(cfg Config) (*zap.Logger, error) {
	var w zapcore.WriteSyncer = zapcore.Lock(os.Stderr)
	if cfg.File != "" {
		w = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB, // megabytes
			MaxAge:     cfg.MaxAgeDays,
			MaxBackups: cfg.MaxBackups,
		})
	}
	return NewWithWriter(cfg, w)
}

// NewWithWriter is New, but logging to w regardless of cfg.File.
func NewWithWriter(cfg Config, w zapcore.WriteSyncer) (*zap.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, cg.ErrDecorate(err, "logging.New")
	}
	lvl, _ := level(cfg.Level)
	var enc zapcore.Encoder
	if strings.ToLower(cfg.Format) == "json" {
		ec := zap.NewProductionEncoderConfig()
		ec.TimeKey = "ts"
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(ec)
	} else {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewConsoleEncoder(ec)
	}
	return zap.New(zapcore.NewCore(enc, w, lvl)), nil
}
