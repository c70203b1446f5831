package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/bbodi/rustarok-sub001/internal/protocol"
)

type fakeHost struct {
	spawned      []string
	balanceCalls []string
	broadcasts   []string
}

func (h *fakeHost) SpawnNPC(name string, team protocol.Team, x, y float32) uint64 {
	h.spawned = append(h.spawned, name)
	return uint64(len(h.spawned))
}

func (h *fakeHost) SetBalance(job string, maxHP, attackDamage int32) {
	h.balanceCalls = append(h.balanceCalls, job)
}

func (h *fakeHost) BroadcastText(text string) {
	h.broadcasts = append(h.broadcasts, text)
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "init.cmd")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestRunInitScriptCallsRegisteredAPI(t *testing.T) {
	host := &fakeHost{}
	e := NewEngine(host, zap.NewNop())
	defer e.Close()

	path := writeScript(t, `
-- spawn a training dummy
spawn_npc("dummy", 2, 10, 10)
set_balance("knight", 1200, 60)
broadcast_text("arena is open")
`)

	if err := e.RunInitScript(path); err != nil {
		t.Fatalf("RunInitScript: %v", err)
	}
	if len(host.spawned) != 1 || host.spawned[0] != "dummy" {
		t.Fatalf("expected one spawn_npc call for dummy, got %+v", host.spawned)
	}
	if len(host.balanceCalls) != 1 || host.balanceCalls[0] != "knight" {
		t.Fatalf("expected one set_balance call for knight, got %+v", host.balanceCalls)
	}
	if len(host.broadcasts) != 1 || host.broadcasts[0] != "arena is open" {
		t.Fatalf("expected one broadcast_text call, got %+v", host.broadcasts)
	}
}

func TestRunInitScriptMissingFileIsNotAnError(t *testing.T) {
	host := &fakeHost{}
	e := NewEngine(host, zap.NewNop())
	defer e.Close()

	if err := e.RunInitScript(filepath.Join(t.TempDir(), "missing.cmd")); err != nil {
		t.Fatalf("expected missing init script to be a no-op, got %v", err)
	}
}

func TestRunInitScriptPropagatesLuaErrors(t *testing.T) {
	host := &fakeHost{}
	e := NewEngine(host, zap.NewNop())
	defer e.Close()

	path := writeScript(t, `this is not lua(`)
	if err := e.RunInitScript(path); err == nil {
		t.Fatal("expected a lua syntax error")
	}
}

func TestRunConsoleCommandCallsAPIAndSkipsBlankAndComments(t *testing.T) {
	host := &fakeHost{}
	e := NewEngine(host, zap.NewNop())
	defer e.Close()

	if err := e.RunConsoleCommand(`broadcast_text("hello from console")`); err != nil {
		t.Fatalf("RunConsoleCommand: %v", err)
	}
	if len(host.broadcasts) != 1 || host.broadcasts[0] != "hello from console" {
		t.Fatalf("expected broadcast recorded, got %+v", host.broadcasts)
	}

	if err := e.RunConsoleCommand("  "); err != nil {
		t.Fatalf("blank command should be a no-op, got %v", err)
	}
	if err := e.RunConsoleCommand("-- a comment"); err != nil {
		t.Fatalf("comment command should be a no-op, got %v", err)
	}
	if len(host.broadcasts) != 1 {
		t.Fatalf("blank/comment lines should not trigger more calls, got %+v", host.broadcasts)
	}
}
