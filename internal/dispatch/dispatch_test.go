package dispatch

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/osu-server/bancho-gateway/internal/codec"
	"github.com/osu-server/bancho-gateway/internal/gatectx"
)

func testContext() *gatectx.Context {
	return &gatectx.Context{
		Ctx: context.Background(),
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestUnknownOpcodeEmitsNotification(t *testing.T) {
	reg := NewRegistry(map[uint16]HandlerFunc{
		codec.ClientPing: func(gc *gatectx.Context, body []byte) []byte { return nil },
	})
	body := codec.WritePacket(9999, nil)
	out := reg.Run(testContext(), body)

	frames := codec.ReadFrames(out)
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if frames[0].Opcode != codec.ServerNotification {
		t.Fatalf("opcode = %d, want NOTIFICATION", frames[0].Opcode)
	}
	text, err := codec.NewReader(frames[0].Body).String()
	if err != nil {
		t.Fatalf("decode notification: %v", err)
	}
	if !strings.Contains(text, "[Unhandled Packet] Unknown (9999)") {
		t.Fatalf("notification text = %q", text)
	}
}

func TestLogoutWithoutHandlerEmitsNothing(t *testing.T) {
	reg := NewRegistry(map[uint16]HandlerFunc{})
	body := codec.WritePacket(codec.ClientLogout, nil)
	out := reg.Run(testContext(), body)
	if len(out) != 0 {
		t.Fatalf("expected no output for unhandled LOGOUT, got % x", out)
	}
}

func TestHandlerOutputIsAppendedInOrder(t *testing.T) {
	reg := NewRegistry(map[uint16]HandlerFunc{
		codec.ClientPing: func(gc *gatectx.Context, body []byte) []byte {
			return codec.WritePacket(codec.ServerPong, nil)
		},
		codec.ClientLogout: func(gc *gatectx.Context, body []byte) []byte {
			return codec.WritePacket(codec.ServerUserLogout, codec.UserLogoutBody(1))
		},
	})
	body := append(codec.WritePacket(codec.ClientPing, nil), codec.WritePacket(codec.ClientLogout, nil)...)
	out := reg.Run(testContext(), body)

	frames := codec.ReadFrames(out)
	if len(frames) != 2 || frames[0].Opcode != codec.ServerPong || frames[1].Opcode != codec.ServerUserLogout {
		t.Fatalf("got frames %+v", frames)
	}
}

func TestFailingHandlerDoesNotAbortLoop(t *testing.T) {
	reg := NewRegistry(map[uint16]HandlerFunc{
		codec.ClientPing: func(gc *gatectx.Context, body []byte) []byte {
			return nil // simulates a handler that hit a backend error
		},
		codec.ClientLogout: func(gc *gatectx.Context, body []byte) []byte {
			return codec.WritePacket(codec.ServerPong, nil)
		},
	})
	body := append(codec.WritePacket(codec.ClientPing, nil), codec.WritePacket(codec.ClientLogout, nil)...)
	out := reg.Run(testContext(), body)

	frames := codec.ReadFrames(out)
	if len(frames) != 1 || frames[0].Opcode != codec.ServerPong {
		t.Fatalf("expected only the second handler's output, got %+v", frames)
	}
}
