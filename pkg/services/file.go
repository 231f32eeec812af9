// Copyright 2026 © The Agentbridge Authors
// SPDX-License-Identifier: Apache-2.0

package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/wtfsayo/agentbridge/pkg/errors"
	"github.com/wtfsayo/agentbridge/pkg/legacy"
)

// fileService stores blobs under a cache directory, one file per key. Keys
// are hashed so arbitrary strings cannot escape the directory.
type fileService struct {
	dir string
}

var _ legacy.FileService = (*fileService)(nil)

func (s *fileService) Type() legacy.ServiceType { return legacy.ServiceFile }

func (s *fileService) Initialize(context.Context, legacy.Runtime) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.New(errors.CodeInit, "create cache directory", err).WithContext("dir", s.dir)
	}
	return nil
}

func (s *fileService) Stop(context.Context) error { return nil }

func (s *fileService) Get(_ context.Context, key string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.New(errors.CodeInternal, "read cache file", err)
	}
	return data, true, nil
}

func (s *fileService) Set(_ context.Context, key string, value []byte) error {
	if err := os.WriteFile(s.path(key), value, 0o644); err != nil {
		return errors.New(errors.CodeInternal, "write cache file", err)
	}
	return nil
}

func (s *fileService) path(key string) string {
	sum := sha1.Sum([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:]))
}
