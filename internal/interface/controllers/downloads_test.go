package controllers_test

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"pdfcompress/internal/interface/controllers"
)

type manualTimers struct {
	fns     []func()
	stopped int
}

func (m *manualTimers) after(_ time.Duration, fn func()) func() bool {
	m.fns = append(m.fns, fn)
	return func() bool {
		m.stopped++
		return true
	}
}

func TestDownloadRegistry_MintIsIdempotent(t *testing.T) {
	r := controllers.NewDownloadRegistry(time.Minute, nil)
	r.SetScheduler((&manualTimers{}).after)

	a := r.Mint("job-1", 0, "compressed_a.pdf", []byte("a"))
	again := r.Mint("job-1", 0, "compressed_a.pdf", []byte("a"))
	b := r.Mint("job-1", 1, "compressed_b.pdf", []byte("b"))

	if a != again {
		t.Errorf("Expected same URL for the same file, got %s and %s", a, again)
	}
	if a == b || !strings.HasPrefix(a, controllers.DownloadURLPrefix) {
		t.Errorf("Unexpected URLs %s, %s", a, b)
	}

	urls := r.URLs("job-1")
	if len(urls) != 2 || urls[0] != a || urls[1] != b {
		t.Errorf("Unexpected URL map %v", urls)
	}
	if len(r.URLs("job-2")) != 0 {
		t.Error("Expected no URLs for another job")
	}

	d, ok := r.Resolve(b)
	if !ok || d.FileName != "compressed_b.pdf" || string(d.Data) != "b" || d.Index != 1 {
		t.Errorf("Unexpected download %+v", d)
	}
}

func TestDownloadRegistry_ExpiresAfterTTL(t *testing.T) {
	timers := &manualTimers{}
	r := controllers.NewDownloadRegistry(10*time.Minute, nil)
	r.SetScheduler(timers.after)

	url := r.Mint("job-1", 0, "a.pdf", []byte("a"))
	if len(timers.fns) != 1 {
		t.Fatalf("Expected one expiry timer, got %d", len(timers.fns))
	}

	timers.fns[0]()
	if _, ok := r.Resolve(url); ok {
		t.Error("Expected URL released after TTL")
	}
	if r.Len() != 0 {
		t.Errorf("Expected empty registry, got %d", r.Len())
	}
	if next := r.Mint("job-1", 0, "a.pdf", []byte("a")); next == url {
		t.Error("Expected a fresh URL after expiry")
	}
}

func TestDownloadRegistry_ReleaseAllStopsTimers(t *testing.T) {
	timers := &manualTimers{}
	r := controllers.NewDownloadRegistry(time.Minute, nil)
	r.SetScheduler(timers.after)

	r.Mint("job-1", 0, "a.pdf", nil)
	r.Mint("job-1", 1, "b.pdf", nil)

	if n := r.ReleaseAll(); n != 2 {
		t.Errorf("Expected 2 released, got %d", n)
	}
	if timers.stopped != 2 {
		t.Errorf("Expected 2 timers stopped, got %d", timers.stopped)
	}
	if r.ReleaseAll() != 0 {
		t.Error("Expected second release to be empty")
	}

	// запоздавший таймер не ломает реестр
	timers.fns[0]()
	if r.Len() != 0 {
		t.Errorf("Expected empty registry, got %d", r.Len())
	}
}

func TestDownloadRegistry_ZeroTTLNeverExpires(t *testing.T) {
	timers := &manualTimers{}
	r := controllers.NewDownloadRegistry(0, nil)
	r.SetScheduler(timers.after)

	r.Mint("job-1", 0, "a.pdf", nil)
	if len(timers.fns) != 0 {
		t.Errorf("Expected no timers with zero TTL, got %d", len(timers.fns))
	}
}

func TestBuildBundle(t *testing.T) {
	data, err := controllers.BuildBundle([]controllers.Download{
		{Index: 0, FileName: "compressed_a.pdf", Data: []byte("first")},
		{Index: 1, FileName: "compressed_a.pdf", Data: []byte("second")},
		{Index: 2, FileName: "dir/compressed_c.pdf", Data: []byte("third")},
	})
	if err != nil {
		t.Fatalf("BuildBundle failed: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("Expected valid zip: %v", err)
	}

	want := map[string]string{
		"compressed_a.pdf":    "first",
		"02_compressed_a.pdf": "second",
		"compressed_c.pdf":    "third",
	}
	if len(zr.File) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(zr.File))
	}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("Open %s: %v", f.Name, err)
		}
		body, _ := io.ReadAll(rc)
		rc.Close()
		if want[f.Name] != string(body) {
			t.Errorf("Entry %s: expected %q, got %q", f.Name, want[f.Name], body)
		}
	}
}
