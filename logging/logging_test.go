/*
 * logging_test.go, part of gocg.
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

package logging

import (
	"os"
	"path/filepath"
	"testing"

	cg "github.com/rmera/gocg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestLevels(Te *testing.T) {
	buf := &zaptest.Buffer{}
	log, err := NewWithWriter(Config{Level: "warn", Format: "json"}, buf)
	require.NoError(Te, err)
	log.Info("hidden")
	log.Warn("shown", zap.String("molecule", "1L2Y"))
	lines := buf.Lines()
	require.Len(Te, lines, 1)
	assert.Contains(Te, lines[0], `"msg":"shown"`)
	assert.Contains(Te, lines[0], `"molecule":"1L2Y"`)
}

func TestInvalid(Te *testing.T) {
	_, err := New(Config{Level: "loud"})
	assert.Equal(Te, cg.KindConfig, cg.KindOf(err))
	_, err = New(Config{Format: "xml"})
	assert.Equal(Te, cg.KindConfig, cg.KindOf(err))
	assert.NoError(Te, Config{}.Validate())
}

func TestRotatingFile(Te *testing.T) {
	file := filepath.Join(Te.TempDir(), "gocg.log")
	log, err := New(Config{Level: "debug", File: file, MaxSizeMB: 1})
	require.NoError(Te, err)
	log.Debug("mapped", zap.Int("particles", 20))
	require.NoError(Te, log.Sync())
	data, err := os.ReadFile(file)
	require.NoError(Te, err)
	assert.Contains(Te, string(data), "mapped")
}
