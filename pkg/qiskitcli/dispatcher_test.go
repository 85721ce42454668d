package qiskitcli

import (
	"encoding/json"
	"testing"

	"github.com/cjliu20152/qiskit/common"
)

func pushFrame(t *testing.T, ev *common.RunningResponse) []byte {
	t.Helper()
	msg, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	buf, err := json.Marshal(&Response{
		Ok: true,
		Update: &Update{
			Type:    common.UPDATE_RUNNING,
			Message: msg,
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return buf
}

func TestDispatcherRoutesByAction(t *testing.T) {
	d := &Dispatcher{}

	var progress, done int
	d.AddHandler(common.UPDATE_RUNNING, NewRunningHandler(common.JobProgress, func(r *common.RunningResponse) error {
		progress++
		return nil
	}))
	d.AddHandler(common.UPDATE_RUNNING, NewRunningHandler(common.JobDone, func(r *common.RunningResponse) error {
		done++
		return ErrDisconnect
	}))

	frames := []*common.RunningResponse{
		{JobId: "j1", Action: common.JobProgress, CompletedShots: 256},
		{JobId: "j1", Action: common.JobProgress, CompletedShots: 512},
	}
	for _, ev := range frames {
		if err := d.process(pushFrame(t, ev)); err != nil {
			t.Fatalf("process: %v", err)
		}
	}
	if progress != 2 {
		t.Errorf("progress handler ran %d times, want 2", progress)
	}
	if done != 0 {
		t.Errorf("done handler ran %d times, want 0", done)
	}

	err := d.process(pushFrame(t, &common.RunningResponse{JobId: "j1", Action: common.JobDone}))
	if err != ErrDisconnect {
		t.Fatalf("process returned %v, want ErrDisconnect", err)
	}
	if done != 1 {
		t.Errorf("done handler ran %d times, want 1", done)
	}
}

func TestDispatcherErrors(t *testing.T) {
	d := &Dispatcher{}

	if err := d.process([]byte("{not json")); err == nil {
		t.Error("expected parse error for malformed frame")
	}

	errFrame, _ := json.Marshal(&Response{Ok: false, Error: "job not found"})
	if err := d.process(errFrame); err == nil || err.Error() != "job not found" {
		t.Errorf("error frame returned %v, want job not found", err)
	}

	okNoUpdate, _ := json.Marshal(&Response{Ok: true})
	if err := d.process(okNoUpdate); err == nil {
		t.Error("expected error for update frame without update")
	}

	if err := d.process(pushFrame(t, &common.RunningResponse{Action: common.JobQueued})); err == nil {
		t.Error("expected error when no handler is registered")
	}
}
