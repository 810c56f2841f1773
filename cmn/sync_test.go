package cmn

import (
	"testing"
	"time"
)

func TestStopChCloseIsIdempotent(t *testing.T) {
	sc := NewStopCh()
	sc.Close()
	sc.Close() // must not panic on a second close
	select {
	case <-sc.Listen():
	default:
		t.Fatal("Listen() channel should be closed/ready after Close")
	}
}

func TestStopChListenBlocksUntilClosed(t *testing.T) {
	sc := NewStopCh()
	select {
	case <-sc.Listen():
		t.Fatal("Listen() should not be ready before Close")
	default:
	}
	sc.Close()
	select {
	case <-sc.Listen():
	case <-time.After(time.Second):
		t.Fatal("Listen() should be ready immediately after Close")
	}
}

func TestDynSemaphoreAcquireReleaseRespectsSize(t *testing.T) {
	sem := NewDynSemaphore(1)
	sem.Acquire()

	acquired := make(chan struct{})
	go func() {
		sem.Acquire()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second Acquire should block while size==1 and one holder is in")
	case <-time.After(50 * time.Millisecond):
	}

	sem.Release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Acquire should unblock after Release")
	}
	sem.Release()
}

func TestDynSemaphoreSetSizeGrowsCapacity(t *testing.T) {
	sem := NewDynSemaphore(1)
	sem.Acquire()
	sem.SetSize(2)
	sem.Acquire() // must not block now that size grew to 2

	third := make(chan struct{})
	go func() {
		sem.Acquire()
		close(third)
	}()

	select {
	case <-third:
		t.Fatal("third Acquire should still block at size==2 with two holders in")
	case <-time.After(50 * time.Millisecond):
	}

	sem.Release()
	select {
	case <-third:
	case <-time.After(time.Second):
		t.Fatal("third Acquire should unblock once a holder releases")
	}
	sem.Release()
	sem.Release()
}

func TestTimeoutGroupWaitTimeoutReturnsFalseOnCompletion(t *testing.T) {
	tg := NewTimeoutGroup()
	tg.Add(1)
	go func() {
		time.Sleep(10 * time.Millisecond)
		tg.Done()
	}()
	timedOut := tg.WaitTimeout(time.Second)
	if timedOut {
		t.Fatal("WaitTimeout should report false once Done is called before the deadline")
	}
}

func TestTimeoutGroupWaitTimeoutReturnsTrueOnTimeout(t *testing.T) {
	tg := NewTimeoutGroup()
	tg.Add(1)
	timedOut := tg.WaitTimeout(20 * time.Millisecond)
	if !timedOut {
		t.Fatal("WaitTimeout should report true when the deadline elapses first")
	}
	tg.Done()
}

func TestTimeoutGroupWaitTimeoutWithStopReturnsStopped(t *testing.T) {
	tg := NewTimeoutGroup()
	tg.Add(1)
	stop := make(chan struct{})
	close(stop)
	timed, stopped := tg.WaitTimeoutWithStop(time.Second, stop)
	if timed || !stopped {
		t.Fatalf("expected stopped=true, timed=false; got timed=%v stopped=%v", timed, stopped)
	}
	tg.Done()
}
