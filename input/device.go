// Package input reads physical devices into latest-value ports.
// file: input/device.go
package input

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"gamepad-websocket/logger"
)

// DevInputPath is where the kernel creates input device nodes.
const DevInputPath = "/dev/input"

// retryDelay spaces attach attempts when the node exists but cannot be opened.
var retryDelay = time.Second

// devicePath resolves a bare device name below DevInputPath.
func devicePath(device string) string {
	if filepath.IsAbs(device) {
		return device
	}
	return filepath.Join(DevInputPath, filepath.Base(device))
}

// attachLoop runs attach until ctx is done. Whenever the device goes away it
// waits for the node to be created again before re-attaching.
func attachLoop(ctx context.Context, path string, attach func(context.Context) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	for {
		err := attach(ctx)
		if ctx.Err() != nil {
			return nil
		}
		logger.Warn.Printf("[input] lost device %s: %v", path, err)
		if err := waitForDevice(ctx, watcher, path); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(retryDelay):
		}
		logger.Info.Printf("[input] re-attaching %s", path)
	}
}

func waitForDevice(ctx context.Context, watcher *fsnotify.Watcher, path string) error {
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		return err
	}
	defer func() {
		_ = watcher.Remove(dir)
		for len(watcher.Events) > 0 {
			<-watcher.Events
		}
	}()

	// the node may have reappeared before the watch was set
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-watcher.Errors:
			return err
		case ev := <-watcher.Events:
			if !ev.Has(fsnotify.Create) || ev.Name != path {
				continue
			}
			if _, err := os.Stat(path); err == nil {
				return nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return err
			}
		}
	}
}
