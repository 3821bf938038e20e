package system

import (
	"encoding/json"
	"testing"
)

func TestValidateDocument(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		raw     string
		wantErr bool
	}{
		{"valid mail", KeyMail, `{"enable":true,"host":"smtp.example.com","port":587}`, false},
		{"valid storage", KeyStorage, `{"enable":true,"bucket":"atrium","region":"eu-west-1"}`, false},
		{"valid site", KeySite, `{"name":"Atrium"}`, false},
		{"unknown fields pass through", KeySite, `{"name":"Atrium","theme":"dark"}`, false},
		{"type mismatch rejected", KeyMail, `{"enable":"yes"}`, true},
		{"array rejected", KeySite, `["not","an","object"]`, true},
		{"unknown key", "secrets", `{}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateDocument(tt.key, json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Errorf("validateDocument(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestKnownKey(t *testing.T) {
	for _, key := range []string{KeyMail, KeyStorage, KeySite} {
		if !knownKey(key) {
			t.Errorf("knownKey(%q) = false", key)
		}
	}
	if knownKey("jwt_secret") {
		t.Error("knownKey accepted an arbitrary name")
	}
}
