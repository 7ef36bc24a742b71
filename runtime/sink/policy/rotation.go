/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package policy

import (
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	spolicy "dirpx.dev/dlog/apis/sink/policy"
)

// ErrRotatorClosed is returned by Write/Sync once Close has been called.
var ErrRotatorClosed = errors.New("sink/policy: rotator closed")

// ErrRotatorNoPath is returned by NewRotator for an empty path.
var ErrRotatorNoPath = errors.New("sink/policy: empty rotator path")

// RotatorOptions configures a Rotator.
type RotatorOptions struct {
	// Path is the path to the active file.
	Path string

	// Policy describes when and how rotation should happen:
	//   - MaxSizeMB > 0  -> rotate when file size would exceed N megabytes.
	//   - MaxAgeDays > 0 -> rotate when file age exceeds N days.
	//   - MaxBackups > 0 -> keep at most N rotated files (older ones pruned).
	//   - Compress       -> gzip rotated files.
	Policy spolicy.Rotation

	// FileMode controls permissions for created files. Zero means 0640.
	FileMode os.FileMode
}

// Rotator is a size/age-rotating append-only file writer. It is the
// on-disk bookkeeping half of a file-backed sink: it owns no knowledge of
// the Sink ABI or of event encoding, only of when and how to roll the
// active file over to a backup.
//
// A concrete native Sink (runtime/sink/file) composes a Rotator with a
// Batcher and an encoder.Encoder: each piece owns one concern, wired
// together above.
type Rotator struct {
	mu      sync.Mutex
	path    string
	policy  spolicy.Rotation
	mode    os.FileMode
	file    *os.File
	size    int64
	created time.Time
	closed  bool
}

// NewRotator opens (or creates) opt.Path and initializes rotation state
// from the file's current size and modification time.
func NewRotator(opt RotatorOptions) (*Rotator, error) {
	if opt.Path == "" {
		return nil, ErrRotatorNoPath
	}
	mode := opt.FileMode
	if mode == 0 {
		mode = 0o640
	}
	r := &Rotator{
		path:   opt.Path,
		policy: normalizeRotationPolicy(opt.Policy),
		mode:   mode,
	}
	if err := r.openCurrent(); err != nil {
		return nil, err
	}
	return r, nil
}

// Write rotates the active file first if the policy requires it, then
// appends entry. Concurrency-safe.
func (r *Rotator) Write(entry []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, ErrRotatorClosed
	}
	if r.file == nil {
		if err := r.openCurrent(); err != nil {
			return 0, err
		}
	}
	if r.shouldRotate(time.Now(), len(entry)) {
		if err := r.rotateLocked(); err != nil {
			return 0, err
		}
	}

	n, err := r.file.Write(entry)
	r.size += int64(n)
	return n, err
}

// Sync flushes the active file to disk.
func (r *Rotator) Sync() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrRotatorClosed
	}
	if r.file == nil {
		return nil
	}
	return r.file.Sync()
}

// Close closes the active file. Idempotent.
func (r *Rotator) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}

func (r *Rotator) openCurrent() error {
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, r.mode)
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return err
	}
	r.file = f
	r.size = info.Size()
	r.created = info.ModTime()
	return nil
}

func (r *Rotator) shouldRotate(now time.Time, incomingBytes int) bool {
	p := r.policy
	if p.MaxSizeMB > 0 {
		maxSize := int64(p.MaxSizeMB) * 1024 * 1024
		if r.size+int64(incomingBytes) > maxSize {
			return true
		}
	}
	if p.MaxAgeDays > 0 {
		maxAge := time.Duration(p.MaxAgeDays) * 24 * time.Hour
		if now.Sub(r.created) >= maxAge {
			return true
		}
	}
	return false
}

// rotateLocked closes the current file, renames it to a timestamped
// backup, optionally compresses it, prunes excess backups, and reopens
// the active path. Caller must hold r.mu.
func (r *Rotator) rotateLocked() error {
	if r.file != nil {
		_ = r.file.Close()
		r.file = nil
	}

	if _, err := os.Stat(r.path); err == nil {
		backup := rotatedFilename(r.path, time.Now())
		if err := os.Rename(r.path, backup); err != nil {
			return err
		}
		if r.policy.Compress {
			_ = compressFile(backup) // best-effort: content is already durable
		}
		if r.policy.MaxBackups > 0 {
			_ = pruneBackups(r.path, r.policy.MaxBackups)
		}
	}
	return r.openCurrent()
}

// normalizeRotationPolicy clamps negative fields to zero (disabled).
func normalizeRotationPolicy(p spolicy.Rotation) spolicy.Rotation {
	if p.MaxSizeMB < 0 {
		p.MaxSizeMB = 0
	}
	if p.MaxAgeDays < 0 {
		p.MaxAgeDays = 0
	}
	if p.MaxBackups < 0 {
		p.MaxBackups = 0
	}
	return p
}

// rotatedFilename builds a rotated file path for basePath at t, e.g.
// "/var/log/app.log" -> "/var/log/app.log.20250301-123456".
func rotatedFilename(basePath string, t time.Time) string {
	dir := filepath.Dir(basePath)
	name := filepath.Base(basePath)
	ts := t.UTC().Format("20060102-150405")
	return filepath.Join(dir, name+"."+ts)
}

// pruneBackups removes the oldest rotated files so at most maxBackups
// remain, matched by the basePath's filename prefix (including ".gz").
func pruneBackups(basePath string, maxBackups int) error {
	if maxBackups <= 0 {
		return nil
	}
	dir := filepath.Dir(basePath)
	prefix := filepath.Base(basePath) + "."

	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	type backup struct {
		path    string
		modTime time.Time
	}
	var backups []backup
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, backup{path: filepath.Join(dir, name), modTime: info.ModTime()})
	}
	if len(backups) <= maxBackups {
		return nil
	}
	sort.Slice(backups, func(i, j int) bool { return backups[i].modTime.Before(backups[j].modTime) })
	for _, b := range backups[:len(backups)-maxBackups] {
		_ = os.Remove(b.path) // best-effort
	}
	return nil
}

// compressFile gzips srcPath into srcPath+".gz" and removes the original.
func compressFile(srcPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dstPath := srcPath + ".gz"
	dst, err := os.OpenFile(dstPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return err
	}
	defer dst.Close()

	gw := gzip.NewWriter(dst)
	if _, err := io.Copy(gw, src); err != nil {
		_ = gw.Close()
		return err
	}
	if err := gw.Close(); err != nil {
		return err
	}
	return os.Remove(srcPath)
}
