package command

import (
	"net/http"
	"strings"
	"testing"
)

func TestPairCommandStructure(t *testing.T) {
	cmd := PairCommand()
	if cmd.Name != "pair" {
		t.Errorf("Name = %q", cmd.Name)
	}
	if cmd.Action == nil {
		t.Error("pair should have an action")
	}

	var hasNumber bool
	for _, f := range cmd.Flags {
		for _, name := range f.Names() {
			if name == "number" {
				hasNumber = true
			}
		}
	}
	if !hasNumber {
		t.Error("pair should have a --number flag")
	}
}

func TestQRCommandStructure(t *testing.T) {
	cmd := QRCommand()
	if cmd.Name != "qr" {
		t.Errorf("Name = %q", cmd.Name)
	}

	subNames := make(map[string]bool)
	for _, sub := range cmd.Subcommands {
		subNames[sub.Name] = true
		if sub.Action == nil {
			t.Errorf("subcommand %q has no action", sub.Name)
		}
	}
	for _, want := range []string{"generate", "status"} {
		if !subNames[want] {
			t.Errorf("missing subcommand %q", want)
		}
	}
}

func TestPairAction(t *testing.T) {
	srv := newMockServer()
	defer srv.Close()

	srv.handle("/pair", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		jsonResponse(w, http.StatusOK, map[string]any{
			"success":   true,
			"code":      "ABCD-1234",
			"sessionId": "GHOST_V1_1_aa_001",
		})
	})

	c := testContext(srv, map[string]string{"number": "15551234567"})
	if err := pairAction(c); err != nil {
		t.Fatalf("pairAction: %v", err)
	}
}

func TestPairActionSurfacesAPIError(t *testing.T) {
	srv := newMockServer()
	defer srv.Close()

	srv.handle("/pair", func(w http.ResponseWriter, r *http.Request) {
		errorResponse(w, http.StatusBadRequest, "GL-PAIR-4001", "invalid phone number format")
	})

	c := testContext(srv, map[string]string{"number": "123"})
	err := pairAction(c)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "GL-PAIR-4001") {
		t.Errorf("err = %v, want error code surfaced", err)
	}
}

func TestQRGenerateAction(t *testing.T) {
	srv := newMockServer()
	defer srv.Close()

	srv.handle("/qr/generate", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]any{
			"success":   true,
			"qr":        "2@payload",
			"sessionId": "QR_GHOST_V1_1_bb_001",
		})
	})

	c := testContext(srv, nil)
	if err := qrGenerateAction(c); err != nil {
		t.Fatalf("qrGenerateAction: %v", err)
	}
}

func TestQRStatusActionRequiresArg(t *testing.T) {
	srv := newMockServer()
	defer srv.Close()

	c := testContext(srv, nil)
	if err := qrStatusAction(c); err == nil {
		t.Fatal("expected error without a session ID argument")
	}
}

func TestQRStatusAction(t *testing.T) {
	srv := newMockServer()
	defer srv.Close()

	srv.handle("/qr/status/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "QR_GHOST_V1_1_bb_001") {
			t.Errorf("path = %q", r.URL.Path)
		}
		jsonResponse(w, http.StatusOK, map[string]any{
			"exists": true,
			"active": true,
		})
	})

	c := testContext(srv, nil, "QR_GHOST_V1_1_bb_001")
	if err := qrStatusAction(c); err != nil {
		t.Fatalf("qrStatusAction: %v", err)
	}
}
