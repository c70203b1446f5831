// Package scripting embeds a Lua VM that interprets init.cmd at startup and
// ConsoleCommand messages at runtime (§3.3), grounded on
// rdtc8822-debug-L1JGO-Whale/internal/scripting/engine.go's single-VM,
// registered-function-bridge shape. Delegating to a real Lua VM keeps
// console-command text parsing out of scope while still giving the
// init-script feature a concrete implementation.
package scripting

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/bbodi/rustarok-sub001/internal/protocol"
)

// Host is the subset of Hub the scripted API can reach. Keeping it an
// interface, rather than importing internal/server directly, avoids a
// server<->scripting import cycle (server.Hub implements this).
type Host interface {
	SpawnNPC(name string, team protocol.Team, x, y float32) uint64
	SetBalance(job string, maxHP, attackDamage int32)
	BroadcastText(text string)
}

// Engine wraps one gopher-lua VM. A gopher-lua LState is not safe for
// concurrent use, but RunConsoleCommand may be called from any session's
// goroutine, so mu serializes every VM entry point.
type Engine struct {
	mu  sync.Mutex
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a VM and registers the init-script/console-command API:
// spawn_npc(name, team, x, y), set_balance(job, max_hp, attack_damage),
// broadcast_text(text).
func NewEngine(host Host, log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	e := &Engine{vm: vm, log: log}

	vm.SetGlobal("spawn_npc", vm.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		team := protocol.Team(L.CheckNumber(2))
		x := float32(L.CheckNumber(3))
		y := float32(L.CheckNumber(4))
		id := host.SpawnNPC(name, team, x, y)
		L.Push(lua.LNumber(id))
		return 1
	}))

	vm.SetGlobal("set_balance", vm.NewFunction(func(L *lua.LState) int {
		job := L.CheckString(1)
		maxHP := int32(L.CheckNumber(2))
		attackDamage := int32(L.CheckNumber(3))
		host.SetBalance(job, maxHP, attackDamage)
		return 0
	}))

	vm.SetGlobal("broadcast_text", vm.NewFunction(func(L *lua.LState) int {
		host.BroadcastText(L.CheckString(1))
		return 0
	}))

	return e
}

// RunInitScript executes path line by line: blank lines and lines starting
// with "--" are skipped, every other line is one Lua statement. A missing
// file is not an error, since init.cmd is optional per §6.
func (e *Engine) RunInitScript(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open init script: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		if err := e.vm.DoString(line); err != nil {
			e.log.Error("init script line failed",
				zap.String("path", path), zap.Int("line", lineNo), zap.Error(err))
			return fmt.Errorf("init script %s:%d: %w", path, lineNo, err)
		}
	}
	return scanner.Err()
}

// RunConsoleCommand interprets one line of text through the same VM and API
// surface the init script uses.
func (e *Engine) RunConsoleCommand(line string) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "--") {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.vm.DoString(line); err != nil {
		e.log.Error("console command failed", zap.String("line", line), zap.Error(err))
		return err
	}
	return nil
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
