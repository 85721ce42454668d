package qiskitcli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cjliu20152/qiskit/common"
)

// Dispatcher routes pushed updates to the handlers registered for
// their type. Several handlers may watch the same type; they run in
// registration order.
type Dispatcher struct {
	Handlers map[common.UpdateType][]Handler
}

// ErrDisconnect tells a Listen loop to stop cleanly. Handlers return
// it once they have seen the update they were waiting for.
var ErrDisconnect error = errors.New("disconnect")

// AddHandler appends a handler for the given update type.
func (d *Dispatcher) AddHandler(utype common.UpdateType, h Handler) {
	if d.Handlers == nil {
		d.Handlers = make(map[common.UpdateType][]Handler)
	}
	d.Handlers[utype] = append(d.Handlers[utype], h)
}

func (d *Dispatcher) process(buf []byte) error {
	var res Response
	err := json.Unmarshal(buf, &res)
	if err != nil {
		return fmt.Errorf("failed to parse (%s): '%s'", err.Error(), string(buf))
	}
	if !res.Ok {
		return errors.New(res.Error)
	}
	if res.Update == nil {
		return errors.New("update frame carried no update")
	}
	handlers := d.Handlers[res.Update.Type]
	if len(handlers) == 0 {
		return fmt.Errorf("no handler for update type '%s'", res.Update.Type)
	}
	for _, h := range handlers {
		if err := h.Handle(res.Update.Message); err != nil {
			return err
		}
	}
	return nil
}
