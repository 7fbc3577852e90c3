/* Copyright © 2025 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
)

func signedRequest(t *testing.T, priv ed25519.PrivateKey, body string) *http.Request {
	const timestamp = "1718323200"
	sig := ed25519.Sign(priv, []byte(timestamp+body))

	r := httptest.NewRequest(http.MethodPost, InteractPath, strings.NewReader(body))
	r.Header.Set("X-Signature-Ed25519", hex.EncodeToString(sig))
	r.Header.Set("X-Signature-Timestamp", timestamp)
	return r
}

func TestInteractionHandlerVerifies(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	hdlr := newInteractionHandler(pub)

	w := httptest.NewRecorder()
	hdlr(w, httptest.NewRequest(http.MethodPost, InteractPath,
		strings.NewReader(`{"type":1}`)))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unsigned request: status %v", w.Code)
	}

	w = httptest.NewRecorder()
	hdlr(w, signedRequest(t, priv, `{"type":1}`))
	if w.Code != http.StatusOK {
		t.Fatalf("signed ping: status %v", w.Code)
	}
	var resp discordgo.InteractionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if resp.Type != discordgo.InteractionResponsePong {
		t.Errorf("expected pong, got %v", resp.Type)
	}
}

func TestServeInteraction(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		status   int
		contains string
	}{
		{"garbage", `not json`, http.StatusBadRequest, ""},
		{"unknown command",
			`{"type":2,"data":{"id":"1","name":"other","type":1}}`,
			http.StatusOK, "unknown command 'other'"},
		{"help",
			`{"type":2,"data":{"id":"1","name":"topdeck","type":1,"options":[{"name":"help","type":1}]}}`,
			http.StatusOK, "/topdeck standings"},
		{"autocomplete", `{"type":4,"data":{"id":"1","name":"topdeck","type":1}}`,
			http.StatusNotImplemented, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			serveInteraction(w, httptest.NewRequest(http.MethodPost,
				InteractPath, strings.NewReader(c.body)))
			if w.Code != c.status {
				t.Errorf("status = %v; want %v", w.Code, c.status)
			}
			if c.contains != "" && !strings.Contains(w.Body.String(), c.contains) {
				t.Errorf("body %q does not contain %q", w.Body.String(), c.contains)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	pub, _, _ := ed25519.GenerateKey(nil)

	t.Setenv(EnvBotToken, "")
	t.Setenv(EnvAppId, "")
	if _, err := loadConfig(); err == nil {
		t.Error("expected error without credentials")
	}

	t.Setenv(EnvBotToken, "tok")
	t.Setenv(EnvAppId, "123")
	t.Setenv(EnvPubKey, "zz")
	if _, err := loadConfig(); err == nil {
		t.Error("expected error for bad public key")
	}

	t.Setenv(EnvPubKey, hex.EncodeToString(pub))
	t.Setenv(EnvListen, "")
	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.addr != DefaultAddr || !cfg.pubKey.Equal(pub) {
		t.Errorf("unexpected config %+v", cfg)
	}
}
