package httputil

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient(0, TLSOptions{})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if c.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.Timeout, DefaultTimeout)
	}
}

func TestNewClientTimeout(t *testing.T) {
	c, err := NewClient(3*time.Second, TLSOptions{})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	if c.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", c.Timeout)
	}
}

func TestNewClientInsecure(t *testing.T) {
	c, err := NewClient(0, TLSOptions{Insecure: true})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	transport, ok := c.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("Transport is %T, want *http.Transport", c.Transport)
	}
	if transport.TLSClientConfig == nil || !transport.TLSClientConfig.InsecureSkipVerify {
		t.Error("InsecureSkipVerify not set")
	}
}

func TestNewClientMissingCACert(t *testing.T) {
	if _, err := NewClient(0, TLSOptions{CACert: "/nonexistent/ca.pem"}); err == nil {
		t.Error("NewClient() should fail for missing CA file")
	}
}

func TestNewClientInvalidCACert(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ca.pem")
	if err := os.WriteFile(path, []byte("not a certificate"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewClient(0, TLSOptions{CACert: path}); err == nil {
		t.Error("NewClient() should fail for a file without certificates")
	}
}
