package brandkit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/eringen/brandkit/record"
)

func TestOpenStoreMemory(t *testing.T) {
	s, err := OpenStore(Config{Backend: BackendMemory})
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	if _, ok := s.(*record.MemoryStore); !ok {
		t.Fatalf("got %T, want *record.MemoryStore", s)
	}
}

func TestOpenStoreSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "brandkit.db")
	s, err := OpenStore(Config{Backend: BackendSQLite, DatabasePath: path})
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer s.Close()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("database file not created: %v", err)
	}
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	if _, err := OpenStore(Config{Backend: "etcd"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.setDefaults()

	if cfg.Addr != ":3000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.Backend != BackendSQLite {
		t.Errorf("Backend = %q", cfg.Backend)
	}
	if cfg.PresentationCacheTTL != time.Minute {
		t.Errorf("PresentationCacheTTL = %v", cfg.PresentationCacheTTL)
	}
	if cfg.MaxUploadSize != 10<<20 {
		t.Errorf("MaxUploadSize = %d", cfg.MaxUploadSize)
	}
	if cfg.logLevel() != log.INFO {
		t.Errorf("logLevel = %v", cfg.logLevel())
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"complete", Config{AdminPassword: "p", SessionSecret: "s", Backend: BackendMemory}, false},
		{"no password", Config{SessionSecret: "s", Backend: BackendMemory}, true},
		{"no secret", Config{AdminPassword: "p", Backend: BackendMemory}, true},
		{"s3 without bucket", Config{AdminPassword: "p", SessionSecret: "s", Backend: BackendS3}, true},
		{"unknown backend", Config{AdminPassword: "p", SessionSecret: "s", Backend: "redis"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brandkit.yaml")
	yml := `name: Garir Dokan
addr: ":8080"
backend: s3
s3:
  bucket: brand-assets
  region: ap-south-1
presentation_cache_ttl: 30s
hero_candidates:
  - /public/hero/one.jpg
  - /public/hero/two.jpg
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Name != "Garir Dokan" || cfg.Addr != ":8080" {
		t.Errorf("got name %q addr %q", cfg.Name, cfg.Addr)
	}
	if cfg.Backend != BackendS3 || cfg.S3.Bucket != "brand-assets" || cfg.S3.Region != "ap-south-1" {
		t.Errorf("unexpected s3 config: %+v", cfg.S3)
	}
	if cfg.PresentationCacheTTL != 30*time.Second {
		t.Errorf("PresentationCacheTTL = %v", cfg.PresentationCacheTTL)
	}
	if len(cfg.HeroCandidates) != 2 {
		t.Errorf("HeroCandidates = %v", cfg.HeroCandidates)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"BRANDKIT_BACKEND":         "memory",
		"BRANDKIT_ADMIN_PASSWORD":  "hunter2",
		"BRANDKIT_COOKIE_SECURE":   "true",
		"BRANDKIT_CACHE_TTL":       "5s",
		"BRANDKIT_MAX_UPLOAD_SIZE": "2048",
		"BRANDKIT_HERO_CANDIDATES": "/a.jpg, ,/b.jpg",
		"BRANDKIT_NAME":            "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Config{Name: "from-file", Backend: BackendSQLite}
	if err := cfg.applyEnv(lookup); err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if cfg.Name != "from-file" {
		t.Errorf("empty env var overrode Name: %q", cfg.Name)
	}
	if cfg.Backend != BackendMemory || cfg.AdminPassword != "hunter2" || !cfg.CookieSecure {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.PresentationCacheTTL != 5*time.Second || cfg.MaxUploadSize != 2048 {
		t.Errorf("ttl %v size %d", cfg.PresentationCacheTTL, cfg.MaxUploadSize)
	}
	if len(cfg.HeroCandidates) != 2 || cfg.HeroCandidates[1] != "/b.jpg" {
		t.Errorf("HeroCandidates = %v", cfg.HeroCandidates)
	}

	env["BRANDKIT_CACHE_TTL"] = "soon"
	if err := cfg.applyEnv(lookup); err == nil {
		t.Error("expected error for bad duration")
	}
}
