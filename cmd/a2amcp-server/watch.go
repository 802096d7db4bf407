package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchPollInterval is the fallback scan cadence for filesystems where
// inotify events are unreliable (NFS, some container mounts).
const watchPollInterval = 5 * time.Second

// runWatchCommand implements "a2amcp-server watch". It tails the completion
// status directory and prints marker files as agents finish their tasks, for
// orchestrators that watch the filesystem instead of speaking MCP.
func runWatchCommand() {
	logger := log.New(os.Stderr, "", 0)
	cfg := loadConfig(logger)

	dir := cfg.StatusDir
	if dir == "" {
		fatal(fmt.Errorf("no status directory configured (A2AMCP_STATUS_DIR)"))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fatal(err)
	}

	seen := make(map[string]bool)
	printExistingMarkers(dir, seen)

	useFsnotify := true
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fsnotify init failed (%v), using poll-only\n", err)
		useFsnotify = false
	} else {
		defer watcher.Close()
		if err := watcher.Add(dir); err != nil {
			fmt.Fprintf(os.Stderr, "fsnotify add %s failed (%v), using poll-only\n", dir, err)
			useFsnotify = false
		}
	}

	fmt.Printf("watching %s for completion markers (ctrl-c to stop)\n", dir)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(watchPollInterval)
	defer ticker.Stop()

	var events chan fsnotify.Event
	var watchErrs chan error
	if useFsnotify {
		events = watcher.Events
		watchErrs = watcher.Errors
	}

	for {
		select {
		case <-sigCh:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				printMarker(ev.Name, seen)
			}
		case err, ok := <-watchErrs:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		case <-ticker.C:
			printExistingMarkers(dir, seen)
		}
	}
}

// printExistingMarkers reports markers already on disk, once each.
func printExistingMarkers(dir string, seen map[string]bool) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			printMarker(filepath.Join(dir, e.Name()), seen)
		}
	}
}

func printMarker(path string, seen map[string]bool) {
	if !strings.HasSuffix(path, ".status") || seen[path] {
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	seen[path] = true
	session := strings.TrimSuffix(filepath.Base(path), ".status")
	fmt.Printf("%s  %s  %s\n", time.Now().Format("15:04:05"), session, strings.TrimSpace(string(data)))
}
