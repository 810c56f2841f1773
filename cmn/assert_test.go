package cmn

import "testing"

func TestAssertPanicsOnFalse(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Assert(false) should panic")
		}
	}()
	Assert(false)
}

func TestAssertDoesNotPanicOnTrue(t *testing.T) {
	Assert(true) // must not panic
}

func TestAssertMsgUsesCallerMessage(t *testing.T) {
	defer func() {
		r := recover()
		if r != "custom message" {
			t.Fatalf("expected panic value %q, got %v", "custom message", r)
		}
	}()
	AssertMsg(false, "custom message")
}
