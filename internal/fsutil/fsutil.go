/*
 * Copyright 2025 SREDiag Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package fsutil contains file system checks made before a project is written.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
)

var (
	// ErrNoSpace is returned when the workspace volume has less free space than required.
	ErrNoSpace = errors.New("workspace has not enough free space")
	// ErrNotWritable is returned when the workspace cannot be written by this process.
	ErrNotWritable = errors.New("workspace is not writable")
)

// PathExists reports whether path exists.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || !os.IsNotExist(err)
}

// nearestExisting walks up from path to the first directory that exists.
func nearestExisting(path string) string {
	for {
		if PathExists(path) {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}

// EnsureFreeSpace checks that the volume holding dir has at least need bytes
// free. dir does not have to exist yet.
func EnsureFreeSpace(dir string, need uint64) error {
	if need == 0 {
		return nil
	}
	stat, err := disk.Usage(nearestExisting(dir))
	if err != nil {
		return fmt.Errorf("disk usage of %s: %w", dir, err)
	}
	if stat.Free < need {
		return fmt.Errorf("%w: %s has %d bytes free, need %d", ErrNoSpace, dir, stat.Free, need)
	}
	return nil
}

// EnsureWritable checks that dir, or its nearest existing ancestor, is writable.
func EnsureWritable(dir string) error {
	target := nearestExisting(dir)
	if err := writable(target); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotWritable, target, err)
	}
	return nil
}
