package templates

import (
	"strings"
	"testing"
)

func TestConfigYAML(t *testing.T) {
	content := string(ConfigYAML)

	if content == "" {
		t.Fatal("ConfigYAML is empty")
	}

	for _, key := range []string{"scan:", "pool_size", "timeout_seconds", "header_row_limit", "cache:", "output:", "log:"} {
		if !strings.Contains(content, key) {
			t.Errorf("ConfigYAML missing key %q", key)
		}
	}
}

func TestEnvFile(t *testing.T) {
	content := string(EnvFile)

	if content == "" {
		t.Fatal("EnvFile is empty")
	}
	if !strings.Contains(content, "LOGSIEVE_") {
		t.Error("EnvFile should document the LOGSIEVE_ prefix")
	}
}
