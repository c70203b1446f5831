// Command client drives a predicting connection against a server. It is a
// headless harness, not a renderer: with -script it replays a line-oriented
// file of intentions and exits; without one it prints every inbound event
// until interrupted, useful for poking a running server by hand.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bbodi/rustarok-sub001/internal/client"
	"github.com/bbodi/rustarok-sub001/internal/protocol"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "127.0.0.1:7350", "server address")
	name := flag.String("name", "player", "player name sent in the Welcome handshake")
	scriptPath := flag.String("script", "", "line-oriented intention script; if unset, the client idles printing events")
	flag.Parse()

	zlog, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer zlog.Sync()

	c, err := client.Dial(*addr, *name, zlog)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", *addr, err)
	}
	defer c.Close()

	go printEvents(c, zlog)

	if *scriptPath == "" {
		select {}
	}
	return runScript(c, *scriptPath)
}

func printEvents(c *client.Client, zlog *zap.Logger) {
	for ev := range c.Events() {
		switch ev.Kind {
		case protocol.KindDamage:
			zlog.Info("damage", zap.Uint64("src", ev.Damage.SrcID), zap.Uint64("dst", ev.Damage.DstID), zap.Float32("amount", ev.Damage.Amount))
		case protocol.KindBroadcastText:
			zlog.Info("broadcast", zap.String("text", ev.Text))
		case protocol.KindNewEntity:
			zlog.Info("new entity", zap.Uint64("id", ev.NewEntID))
		case protocol.KindPlayerDisconnected:
			zlog.Info("player disconnected", zap.Uint64("id", ev.NewEntID))
		}
	}
}

// runScript executes one scripted intention per line:
//
//	move X Y              -> MoveTo
//	mouse X Y             -> MoveTowardsMouse
//	attack_towards X Y    -> AttackTowards
//	attack ENTITY_ID      -> Attack
//	wait DURATION         -> time.Sleep(DURATION), e.g. "wait 500ms"
//
// blank lines and lines starting with "#" are skipped.
func runScript(c *client.Client, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open script %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := runScriptLine(c, line); err != nil {
			return fmt.Errorf("script %s:%d: %w", path, lineNo, err)
		}
	}
	return scanner.Err()
}

func runScriptLine(c *client.Client, line string) error {
	fields := strings.Fields(line)
	switch fields[0] {
	case "move":
		p, err := parsePoint(fields)
		if err != nil {
			return err
		}
		return c.MoveTo(p)
	case "mouse":
		p, err := parsePoint(fields)
		if err != nil {
			return err
		}
		return c.MoveTowardsMouse(p)
	case "attack_towards":
		p, err := parsePoint(fields)
		if err != nil {
			return err
		}
		return c.AttackTowards(p)
	case "attack":
		if len(fields) != 2 {
			return fmt.Errorf("attack requires exactly one entity id")
		}
		id, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return fmt.Errorf("attack: invalid entity id %q: %w", fields[1], err)
		}
		return c.Attack(id)
	case "wait":
		if len(fields) != 2 {
			return fmt.Errorf("wait requires exactly one duration")
		}
		d, err := time.ParseDuration(fields[1])
		if err != nil {
			return fmt.Errorf("wait: invalid duration %q: %w", fields[1], err)
		}
		time.Sleep(d)
		return nil
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

func parsePoint(fields []string) (protocol.Point, error) {
	if len(fields) != 3 {
		return protocol.Point{}, fmt.Errorf("expected X Y, got %d fields", len(fields)-1)
	}
	x, err := strconv.ParseFloat(fields[1], 32)
	if err != nil {
		return protocol.Point{}, fmt.Errorf("invalid X %q: %w", fields[1], err)
	}
	y, err := strconv.ParseFloat(fields[2], 32)
	if err != nil {
		return protocol.Point{}, fmt.Errorf("invalid Y %q: %w", fields[2], err)
	}
	return protocol.Point{X: float32(x), Y: float32(y)}, nil
}
