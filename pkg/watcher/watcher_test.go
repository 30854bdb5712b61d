package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func TestIgnoreFolder(t *testing.T) {
	c := qt.New(t)

	c.Assert(IgnoreFolder("/app/node_modules"), qt.IsTrue)
	c.Assert(IgnoreFolder("/app/.git"), qt.IsTrue)
	c.Assert(IgnoreFolder("/app/src"), qt.IsFalse)
	c.Assert(IgnoreFolder("."), qt.IsFalse)
}

// waitForEvent waits until a batch contains an event for path.
// An empty typ matches any event type.
func waitForEvent(c *qt.C, w *Watcher, path string, typ EventType) {
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-w.EventsReady:
		case <-deadline:
			c.Fatalf("timed out waiting for %s event on %s", typ, path)
		}
		batch := w.GetEventsBatch()
		if batch == nil {
			continue
		}
		for _, ev := range batch.Events() {
			if ev.Path == path && (typ == "" || ev.EventType == typ) {
				return
			}
		}
	}
}

func TestWatcher(t *testing.T) {
	c := qt.New(t)

	root := c.TempDir()
	src := filepath.Join(root, "src")
	dist := filepath.Join(root, "dist")
	for _, dir := range []string{src, dist, filepath.Join(root, "node_modules")} {
		c.Assert(os.MkdirAll(dir, 0755), qt.IsNil)
	}

	w, err := New(dist)
	c.Assert(err, qt.IsNil)
	defer func() { _ = w.Close() }()
	c.Assert(w.RecursivelyWatch(root), qt.IsNil)

	w.mutex.Lock()
	_, watchingDist := w.directories[dist]
	_, watchingSrc := w.directories[src]
	w.mutex.Unlock()
	c.Assert(watchingDist, qt.IsFalse)
	c.Assert(watchingSrc, qt.IsTrue)

	path := filepath.Join(src, "main.jsx")
	c.Assert(os.WriteFile(path, []byte("export {}"), 0644), qt.IsNil)

	waitForEvent(c, w, path, "")

	c.Assert(os.Remove(path), qt.IsNil)
	waitForEvent(c, w, path, DELETED)

	c.Assert(w.Close(), qt.IsNil)
	c.Assert(w.Close(), qt.IsNil)
}

func TestEventsOrdered(t *testing.T) {
	c := qt.New(t)

	e := newEventBatch()
	e.addEvent("/b", CREATED, nil)
	e.addEvent("/a", MODIFIED, nil)
	e.addEvent("/b", DELETED, nil)

	c.Assert(e.Paths(), qt.DeepEquals, []string{"/a", "/b"})
	c.Assert(e.Events()[1].EventType, qt.Equals, DELETED)
}

func TestWatcherNewDirectory(t *testing.T) {
	c := qt.New(t)

	root := c.TempDir()
	w, err := New()
	c.Assert(err, qt.IsNil)
	defer func() { _ = w.Close() }()
	c.Assert(w.RecursivelyWatch(root), qt.IsNil)

	// Write into the new directory immediately, racing the watch being added.
	dir := filepath.Join(root, "img", "icons")
	c.Assert(os.MkdirAll(dir, 0755), qt.IsNil)
	path := filepath.Join(dir, "logo.svg")
	c.Assert(os.WriteFile(path, []byte("<svg/>"), 0644), qt.IsNil)

	waitForEvent(c, w, path, "")

	// Later writes in the new directory are seen too.
	later := filepath.Join(dir, "later.svg")
	c.Assert(os.WriteFile(later, []byte("<svg/>"), 0644), qt.IsNil)
	waitForEvent(c, w, later, "")
}

func TestRecordTree(t *testing.T) {
	c := qt.New(t)

	root := c.TempDir()
	for _, name := range []string{"a/b.txt", "a/c/d.txt", "a/node_modules/x.js"} {
		path := filepath.Join(root, filepath.FromSlash(name))
		c.Assert(os.MkdirAll(filepath.Dir(path), 0755), qt.IsNil)
		c.Assert(os.WriteFile(path, nil, 0644), qt.IsNil)
	}

	w, err := New()
	c.Assert(err, qt.IsNil)
	defer func() { _ = w.Close() }()

	w.recordTree(filepath.Join(root, "a"))
	batch := w.GetEventsBatch()
	c.Assert(batch, qt.IsNotNil)
	c.Assert(batch.Paths(), qt.DeepEquals, []string{
		filepath.Join(root, "a"),
		filepath.Join(root, "a", "b.txt"),
		filepath.Join(root, "a", "c"),
		filepath.Join(root, "a", "c", "d.txt"),
	})
}
