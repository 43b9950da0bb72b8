package codec

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

func TestPrimitiveRoundTrip(t *testing.T) {
	w := NewWriter(0)
	w.U8(0xAB).I8(-5).U16(0xBEEF).I16(-1234).U32(0xDEADBEEF).I32(-987654321).
		U64(0xFEEDFACECAFEBEEF).I64(-1).F32(3.14159).F64(2.718281828)
	r := NewReader(w.Bytes())

	if v, err := r.U8(); err != nil || v != 0xAB {
		t.Fatalf("U8 = %v, %v", v, err)
	}
	if v, err := r.I8(); err != nil || v != -5 {
		t.Fatalf("I8 = %v, %v", v, err)
	}
	if v, err := r.U16(); err != nil || v != 0xBEEF {
		t.Fatalf("U16 = %v, %v", v, err)
	}
	if v, err := r.I16(); err != nil || v != -1234 {
		t.Fatalf("I16 = %v, %v", v, err)
	}
	if v, err := r.U32(); err != nil || v != 0xDEADBEEF {
		t.Fatalf("U32 = %v, %v", v, err)
	}
	if v, err := r.I32(); err != nil || v != -987654321 {
		t.Fatalf("I32 = %v, %v", v, err)
	}
	if v, err := r.U64(); err != nil || v != 0xFEEDFACECAFEBEEF {
		t.Fatalf("U64 = %v, %v", v, err)
	}
	if v, err := r.I64(); err != nil || v != -1 {
		t.Fatalf("I64 = %v, %v", v, err)
	}
	if v, err := r.F32(); err != nil || float32(math.Abs(float64(v-3.14159))) > 1e-6 {
		t.Fatalf("F32 = %v, %v", v, err)
	}
	if v, err := r.F64(); err != nil || math.Abs(v-2.718281828) > 1e-12 {
		t.Fatalf("F64 = %v, %v", v, err)
	}
	if r.Len() != 0 {
		t.Fatalf("expected reader exhausted, %d bytes left", r.Len())
	}
}

func TestStringEmptyEncodesAsSingleZeroByte(t *testing.T) {
	w := NewWriter(0).String("")
	if got := w.Bytes(); !bytes.Equal(got, []byte{0x00}) {
		t.Fatalf("empty string encoded as % x, want [00]", got)
	}
	s, err := NewReader([]byte{0x00}).String()
	if err != nil || s != "" {
		t.Fatalf("decode empty = %q, %v", s, err)
	}
}

func TestStringLeadingByteOtherThanMarkersIsEmpty(t *testing.T) {
	r := NewReader([]byte{0xFF, 'j', 'u', 'n', 'k'})
	s, err := r.String()
	if err != nil || s != "" {
		t.Fatalf("decode = %q, %v, want empty string and no error", s, err)
	}
	if r.Len() != 4 {
		t.Fatalf("expected no bytes consumed past the marker, %d remain", r.Len())
	}
}

func TestStringRoundTripVariousLengths(t *testing.T) {
	for _, n := range []int{0, 1, 2, 126, 127, 128, 129, 1000, 16383, 16384, 100000} {
		s := strings.Repeat("a", n)
		w := NewWriter(0).String(s)
		got, err := NewReader(w.Bytes()).String()
		if err != nil {
			t.Fatalf("len %d: decode error %v", n, err)
		}
		if got != s {
			t.Fatalf("len %d: round trip mismatch (got len %d)", n, len(got))
		}
	}
}

func TestULEB128Boundaries(t *testing.T) {
	for _, n := range []int{0, 127, 128, 16383, 16384, 2097151, 2097152} {
		s := strings.Repeat("x", n)
		w := NewWriter(0).String(s)
		got, err := NewReader(w.Bytes()).String()
		if err != nil {
			t.Fatalf("length %d: %v", n, err)
		}
		if len(got) != n {
			t.Fatalf("length %d: got %d bytes back", n, len(got))
		}
	}
}

func TestWritePacketFraming(t *testing.T) {
	for _, id := range []uint16{0, 1, 0xFFFF, ServerUserStats, ClientPing} {
		data := []byte{1, 2, 3, 4, 5}
		got := WritePacket(id, data)
		want := []byte{byte(id), byte(id >> 8), 0x00, 5, 0, 0, 0, 1, 2, 3, 4, 5}
		if !bytes.Equal(got, want) {
			t.Fatalf("id %d: got % x, want % x", id, got, want)
		}
	}
}

func TestReadFrameToleratesReservedByte(t *testing.T) {
	body := []byte{9, 9, 9}
	raw := []byte{5, 0, 0xFF, 3, 0, 0, 0}
	raw = append(raw, body...)
	f, err := ReadFrame(NewReader(raw))
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if f.Opcode != 5 || !bytes.Equal(f.Body, body) {
		t.Fatalf("got frame %+v", f)
	}
}

func TestReadFramesStopsOnTruncatedTail(t *testing.T) {
	full := WritePacket(ClientPing, nil)
	truncated := append([]byte{}, WritePacket(ClientLogout, nil)...)
	truncated = append(truncated, 1, 2) // incomplete trailing header
	buf := append(full, truncated...)

	frames := ReadFrames(buf)
	if len(frames) != 2 {
		t.Fatalf("got %d frames, want 2", len(frames))
	}
	if frames[0].Opcode != ClientPing || frames[1].Opcode != ClientLogout {
		t.Fatalf("unexpected opcodes: %+v", frames)
	}
}

func TestOpcodeNameLookup(t *testing.T) {
	if got := ClientOpcodeName(9999); got != "Unknown" {
		t.Fatalf("ClientOpcodeName(9999) = %q", got)
	}
	if got := ClientOpcodeName(ClientChangeAction); got != "OSU_CHANGE_ACTION" {
		t.Fatalf("ClientOpcodeName(CHANGE_ACTION) = %q", got)
	}
	if got := ServerOpcodeName(ServerUserStats); got != "USER_STATS" {
		t.Fatalf("ServerOpcodeName(USER_STATS) = %q", got)
	}
}

func TestUserStatsAccuracyScaledOnce(t *testing.T) {
	body := UserStatsBody(1, 0, "", "", 0, 0, 0, 0, 98.5, 0, 0, 0, 0)
	r := NewReader(body)
	_, _ = r.I32()
	_, _ = r.U8()
	_, _ = r.String()
	_, _ = r.String()
	_, _ = r.U32()
	_, _ = r.U8()
	_, _ = r.I32()
	_, _ = r.I64()
	acc, err := r.F32()
	if err != nil {
		t.Fatalf("F32: %v", err)
	}
	if math.Abs(float64(acc)-0.985) > 1e-6 {
		t.Fatalf("accuracy = %v, want 0.985 (98.5/100)", acc)
	}
}

func TestParseChangeActionRoundTrip(t *testing.T) {
	body := NewWriter(0).U8(1).String("playing").String("abc123").U32(16).U8(0).I32(42).Bytes()
	got, err := ParseChangeAction(body)
	if err != nil {
		t.Fatalf("ParseChangeAction: %v", err)
	}
	want := ChangeAction{Action: 1, InfoText: "playing", MapMD5: "abc123", Mods: 16, Mode: 0, MapID: 42}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
